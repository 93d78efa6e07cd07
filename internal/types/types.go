// Package types defines the shared domain model for the roadmap
// conversation engine: sessions, roadmaps, milestones, subtasks, and the
// provider-facing tool contract. Other packages depend on this one and
// never the other way around.
package types

import (
	"strings"
	"time"
)

// Phase identifies where a conversation is in the planning protocol.
// It governs which tools the provider is allowed to invoke.
type Phase string

const (
	// PhaseDiscovery gathers project specifications through questions.
	PhaseDiscovery Phase = "discovery"

	// PhaseConfirmation summarizes gathered specifications before generation.
	PhaseConfirmation Phase = "confirmation"

	// PhaseGeneration produces the high-level milestone skeleton.
	PhaseGeneration Phase = "generation"

	// PhaseOverview attaches a strategy overview to the setup milestone.
	PhaseOverview Phase = "overview_generation"

	// PhaseSubtasks fills in subtasks for queued milestones, one call each.
	PhaseSubtasks Phase = "subtask_generation"

	// PhaseEditing is the terminal steady state: chat, edit, expand.
	PhaseEditing Phase = "editing"
)

// Intent is the user's declared mode for a turn, selected in the client
// before the message is sent.
type Intent string

const (
	IntentChat   Intent = "chat"
	IntentEdit   Intent = "edit"
	IntentExpand Intent = "expand"
)

// Tag categorizes a milestone. The set is closed; provider-supplied tags
// outside it are rejected.
type Tag string

const (
	TagSetup         Tag = "setup"
	TagMVP           Tag = "mvp"
	TagFrontend      Tag = "frontend"
	TagBackend       Tag = "backend"
	TagAuth          Tag = "auth"
	TagDatabase      Tag = "database"
	TagDeployment    Tag = "deployment"
	TagTesting       Tag = "testing"
	TagDocumentation Tag = "documentation"
	TagDesign        Tag = "design"
	TagAPI           Tag = "api"
	TagIntegration   Tag = "integration"
	TagOptimization  Tag = "optimization"
	TagSecurity      Tag = "security"
)

var allTags = map[Tag]struct{}{
	TagSetup: {}, TagMVP: {}, TagFrontend: {}, TagBackend: {},
	TagAuth: {}, TagDatabase: {}, TagDeployment: {}, TagTesting: {},
	TagDocumentation: {}, TagDesign: {}, TagAPI: {}, TagIntegration: {},
	TagOptimization: {}, TagSecurity: {},
}

// ValidTag reports whether s is a member of the closed tag enumeration.
func ValidTag(s string) bool {
	_, ok := allTags[Tag(s)]
	return ok
}

// TagNames returns the enumeration as strings, for tool schemas.
func TagNames() []string {
	return []string{
		string(TagSetup), string(TagMVP), string(TagFrontend),
		string(TagBackend), string(TagAuth), string(TagDatabase),
		string(TagDeployment), string(TagTesting), string(TagDocumentation),
		string(TagDesign), string(TagAPI), string(TagIntegration),
		string(TagOptimization), string(TagSecurity),
	}
}

// Milestone lifecycle states.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Subtask is a leaf unit of work under a milestone.
type Subtask struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Completed      bool    `json:"completed"`
	EstimatedHours float64 `json:"estimated_hours,omitempty"`
}

// Milestone is a top-level unit of the roadmap with its own subtasks,
// estimates, tags, and dependency edges to other milestones.
type Milestone struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Subtasks    []Subtask `json:"subtasks"`

	EstimatedDays  int     `json:"estimated_days"`
	EstimatedHours float64 `json:"estimated_hours"`

	Tags []Tag `json:"tags"`

	// Dependencies holds ids of milestones that must complete first.
	Dependencies []string `json:"dependencies"`

	Status               string `json:"status"`
	CompletionPercentage int    `json:"completion_percentage"`

	Deliverables    []string `json:"deliverables"`
	SuccessCriteria []string `json:"success_criteria"`

	// Overview carries the strategy steps for the conventional setup
	// milestone; empty elsewhere.
	Overview []string `json:"overview,omitempty"`
}

// IsSetup reports whether this milestone plays the setup role: either
// tagged setup or titled like an environment-setup node.
func (m *Milestone) IsSetup() bool {
	for _, t := range m.Tags {
		if t == TagSetup {
			return true
		}
	}
	title := strings.ToLower(m.Title)
	return strings.Contains(title, "setup") || strings.Contains(title, "environment")
}

// SubtaskHours sums the estimated hours of the milestone's subtasks.
func (m *Milestone) SubtaskHours() float64 {
	var total float64
	for _, st := range m.Subtasks {
		total += st.EstimatedHours
	}
	return total
}

// HasDependency reports whether id is already in the dependency set.
func (m *Milestone) HasDependency(id string) bool {
	for _, dep := range m.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// Specification is the project description distilled from discovery.
type Specification struct {
	Title               string   `json:"title"`
	Description         string   `json:"description"`
	Goals               []string `json:"goals"`
	TimelineWeeks       int      `json:"timeline_weeks,omitempty"`
	TechStack           []string `json:"tech_stack"`
	ExperienceLevel     string   `json:"user_experience_level"`
	DeploymentNeeded    bool     `json:"deployment_needed"`
	AuthNeeded          bool     `json:"auth_needed"`
	CommercialGoal      bool     `json:"commercialization_goal"`
	TargetAudience      string   `json:"target_audience"`
	SimilarProjectsDone bool     `json:"similar_projects_built"`
}

// Roadmap is the plan artifact: a specification plus ordered milestones
// and derived aggregate totals.
type Roadmap struct {
	Specification Specification `json:"project_specification"`
	Milestones    []Milestone   `json:"nodes"`
	TotalWeeks    int           `json:"total_estimated_weeks,omitempty"`
	TotalHours    float64       `json:"total_estimated_hours,omitempty"`
}

// Find returns the milestone with the given id, or nil.
func (r *Roadmap) Find(id string) *Milestone {
	for i := range r.Milestones {
		if r.Milestones[i].ID == id {
			return &r.Milestones[i]
		}
	}
	return nil
}

// FindSetup returns the setup milestone, or nil when none qualifies.
func (r *Roadmap) FindSetup() *Milestone {
	for i := range r.Milestones {
		if r.Milestones[i].IsSetup() {
			return &r.Milestones[i]
		}
	}
	return nil
}

// WouldCycle reports whether replacing the named milestone's
// dependencies with deps would introduce a dependency cycle. Milestone
// dependencies must stay acyclic; callers check before applying an
// edit.
func (r *Roadmap) WouldCycle(id string, deps []string) bool {
	edges := make(map[string][]string, len(r.Milestones))
	for i := range r.Milestones {
		m := &r.Milestones[i]
		if m.ID == id {
			edges[m.ID] = deps
		} else {
			edges[m.ID] = m.Dependencies
		}
	}

	seen := make(map[string]bool, len(edges))
	var reaches func(from string) bool
	reaches = func(from string) bool {
		if from == id {
			return true
		}
		if seen[from] {
			return false
		}
		seen[from] = true
		for _, next := range edges[from] {
			if reaches(next) {
				return true
			}
		}
		return false
	}

	for _, dep := range deps {
		if reaches(dep) {
			return true
		}
	}
	return false
}

// RecomputeTotals refreshes the aggregate hour and week totals from the
// milestone list. Call after any mutation that touches estimates.
func (r *Roadmap) RecomputeTotals() {
	var hours float64
	days := 0
	for i := range r.Milestones {
		hours += r.Milestones[i].EstimatedHours
		days += r.Milestones[i].EstimatedDays
	}
	r.TotalHours = hours
	r.TotalWeeks = weeksFromDays(days)
}

// weeksFromDays rounds a day count up to whole weeks, minimum one.
func weeksFromDays(days int) int {
	weeks := (days + 6) / 7
	if weeks < 1 {
		weeks = 1
	}
	return weeks
}

// ChatMessage is one turn of the conversation log.
type ChatMessage struct {
	Role       string `json:"role"` // "user" or "assistant"
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp,omitempty"`
	ActionType string `json:"action_type,omitempty"`
}

// NewChatMessage stamps a message with the current time.
func NewChatMessage(role, content, actionType string) ChatMessage {
	return ChatMessage{
		Role:       role,
		Content:    content,
		Timestamp:  time.Now().Format(time.RFC3339),
		ActionType: actionType,
	}
}

// Session is the full conversation state for one planning session. It is
// owned by exactly one logical turn at a time; persistence between turns
// is an external concern.
type Session struct {
	ID                     string        `json:"session_id"`
	UserID                 string        `json:"user_id,omitempty"`
	Phase                  Phase         `json:"phase"`
	SpecificationsComplete bool          `json:"specifications_complete"`
	Roadmap                *Roadmap      `json:"current_roadmap,omitempty"`
	Messages               []ChatMessage `json:"messages"`

	// PendingSubtasks is the FIFO work queue of milestone ids still
	// awaiting subtask generation. It drives the continuation chain.
	PendingSubtasks []string `json:"nodes_needing_subtasks,omitempty"`
}

// NewSession creates an empty session in discovery.
func NewSession(id string) *Session {
	return &Session{
		ID:    id,
		Phase: PhaseDiscovery,
	}
}

// Append adds a message to the conversation log.
func (s *Session) Append(msg ChatMessage) {
	s.Messages = append(s.Messages, msg)
}

// Window returns the most recent n messages for the provider context.
func (s *Session) Window(n int) []ChatMessage {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}

// PopPending removes id from the pending-subtasks queue.
func (s *Session) PopPending(id string) {
	for i, queued := range s.PendingSubtasks {
		if queued == id {
			s.PendingSubtasks = append(s.PendingSubtasks[:i], s.PendingSubtasks[i+1:]...)
			return
		}
	}
}
