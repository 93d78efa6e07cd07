package agent

import "errors"

var (
	// ErrMilestoneNotFound is returned when a tool call references a
	// milestone id absent from the roadmap.
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrDuplicateMilestone is returned when a generated or expanded
	// milestone reuses an id already present in the roadmap.
	ErrDuplicateMilestone = errors.New("duplicate milestone id")

	// ErrInvalidTag is returned when a supplied tag is outside the
	// closed enumeration.
	ErrInvalidTag = errors.New("invalid tag")
)
