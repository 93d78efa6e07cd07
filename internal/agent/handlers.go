package agent

import (
	"context"
	"fmt"

	"roadmapper/internal/logging"
	"roadmapper/internal/types"
)

// uiHintGenerateRoadmap tells the client to offer a "generate roadmap"
// action after specifications are confirmed.
const uiHintGenerateRoadmap = "generate_roadmap"

type subtaskArgs struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	EstimatedHours float64 `json:"estimated_hours"`
}

type milestoneArgs struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	EstimatedDays   int           `json:"estimated_days"`
	EstimatedHours  float64       `json:"estimated_hours"`
	Tags            []string      `json:"tags"`
	Dependencies    []string      `json:"dependencies"`
	Deliverables    []string      `json:"deliverables"`
	SuccessCriteria []string      `json:"success_criteria"`
	Subtasks        []subtaskArgs `json:"subtasks"`
}

// buildMilestone validates one provider-supplied milestone and converts
// it to the domain type. New milestones always start pending with zero
// progress.
func buildMilestone(in milestoneArgs, taken map[string]bool) (types.Milestone, error) {
	if taken[in.ID] {
		return types.Milestone{}, fmt.Errorf("%w: %s", ErrDuplicateMilestone, in.ID)
	}

	tags := make([]types.Tag, 0, len(in.Tags))
	for _, t := range in.Tags {
		if !types.ValidTag(t) {
			return types.Milestone{}, fmt.Errorf("%w: %s", ErrInvalidTag, t)
		}
		tags = append(tags, types.Tag(t))
	}

	subtasks := make([]types.Subtask, 0, len(in.Subtasks))
	for _, st := range in.Subtasks {
		subtasks = append(subtasks, types.Subtask{
			ID:             st.ID,
			Title:          st.Title,
			Description:    st.Description,
			EstimatedHours: st.EstimatedHours,
		})
	}

	return types.Milestone{
		ID:              in.ID,
		Title:           in.Title,
		Description:     in.Description,
		Subtasks:        subtasks,
		EstimatedDays:   in.EstimatedDays,
		EstimatedHours:  in.EstimatedHours,
		Tags:            tags,
		Dependencies:    in.Dependencies,
		Status:          types.StatusPending,
		Deliverables:    in.Deliverables,
		SuccessCriteria: in.SuccessCriteria,
	}, nil
}

// validateDependencies checks that every dependency id references a
// milestone in the known id set. The set covers the current roadmap
// plus all milestones arriving in the same batch, so batch-internal
// references are allowed.
func validateDependencies(deps []string, known map[string]bool) error {
	for _, dep := range deps {
		if !known[dep] {
			return fmt.Errorf("dependency '%s': %w", dep, ErrMilestoneNotFound)
		}
	}
	return nil
}

func toSubtasks(in []subtaskArgs) []types.Subtask {
	out := make([]types.Subtask, 0, len(in))
	for _, st := range in {
		out = append(out, types.Subtask{
			ID:             st.ID,
			Title:          st.Title,
			Description:    st.Description,
			EstimatedHours: st.EstimatedHours,
		})
	}
	return out
}

// handleClarifyingQuestion relays the provider's question to the user.
// Questions asked during edit or expand flows carry a context prefix.
func (e *Engine) handleClarifyingQuestion(_ context.Context, s *types.Session, args map[string]any, intent types.Intent) (string, string) {
	var in struct {
		Question string `json:"question"`
		Category string `json:"category"`
	}
	if err := decodeArgs(args, &in); err != nil || in.Question == "" {
		return replyUnknownTool, ""
	}

	question := in.Question
	switch intent {
	case types.IntentExpand:
		question = "[Expansion Planning] " + question
	case types.IntentEdit:
		question = "[Node Editing] " + question
	}

	logging.AgentDebug("clarifying question (%s): %s", in.Category, in.Question)
	s.Append(types.NewChatMessage("assistant", question, "clarifying_question"))
	return question, ""
}

// handleConfirmSpecifications flips the confirmation flag and moves the
// stored phase forward. The UI hint prompts the client to trigger
// roadmap generation.
func (e *Engine) handleConfirmSpecifications(_ context.Context, s *types.Session, args map[string]any, _ types.Intent) (string, string) {
	var in struct {
		Summary string `json:"summary"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return replyUnknownTool, ""
	}

	s.Phase = types.PhaseConfirmation
	s.SpecificationsComplete = true

	reply := "Ok I think I fully understand your project's specifications\n\n" + in.Summary
	s.Append(types.NewChatMessage("assistant", reply, "specifications_complete"))
	return reply, uiHintGenerateRoadmap
}

// handleCreateHighLevelPlan builds the roadmap skeleton from the
// provider-supplied milestone list, seeds the subtask work queue with
// every milestone id, and starts the continuation chain: overview first
// when a setup milestone exists, otherwise straight to subtasks.
func (e *Engine) handleCreateHighLevelPlan(ctx context.Context, s *types.Session, args map[string]any, _ types.Intent) (string, string) {
	var in struct {
		ProjectTitle       string          `json:"project_title"`
		ProjectDescription string          `json:"project_description"`
		Nodes              []milestoneArgs `json:"nodes"`
	}
	if err := decodeArgs(args, &in); err != nil || len(in.Nodes) == 0 {
		return "Failed to generate high-level roadmap: invalid milestone list.", ""
	}

	taken := make(map[string]bool, len(in.Nodes))
	milestones := make([]types.Milestone, 0, len(in.Nodes))
	for _, n := range in.Nodes {
		m, err := buildMilestone(n, taken)
		if err != nil {
			return fmt.Sprintf("Failed to generate high-level roadmap: %v", err), ""
		}
		// Subtasks are filled one milestone per call in the next step.
		m.Subtasks = nil
		taken[m.ID] = true
		milestones = append(milestones, m)
	}
	for i := range milestones {
		if err := validateDependencies(milestones[i].Dependencies, taken); err != nil {
			return fmt.Sprintf("Failed to generate high-level roadmap: %v", err), ""
		}
	}

	roadmap := &types.Roadmap{
		Specification: types.Specification{
			Title:          in.ProjectTitle,
			Description:    in.ProjectDescription,
			Goals:          []string{"Build the project", "Deploy successfully"},
			TimelineWeeks:  4,
			TargetAudience: "General users",
		},
		Milestones: milestones,
	}
	roadmap.RecomputeTotals()

	s.Roadmap = roadmap
	s.PendingSubtasks = make([]string, 0, len(milestones))
	for i := range milestones {
		s.PendingSubtasks = append(s.PendingSubtasks, milestones[i].ID)
	}

	logging.AgentInfo("roadmap created: session=%s title=%q milestones=%d",
		s.ID, in.ProjectTitle, len(milestones))

	if setup := roadmap.FindSetup(); setup != nil {
		s.Phase = types.PhaseOverview
		return e.driveOverview(ctx, s, setup.ID)
	}
	s.Phase = types.PhaseSubtasks
	return e.driveSubtasks(ctx, s)
}

// handleAttachOverview attaches the strategy steps to the setup
// milestone and moves into subtask generation.
func (e *Engine) handleAttachOverview(ctx context.Context, s *types.Session, args map[string]any, _ types.Intent) (string, string) {
	var in struct {
		SetupNodeID string   `json:"setup_node_id"`
		Overview    []string `json:"overview"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "Failed to generate project overview: invalid arguments.", ""
	}
	if s.Roadmap == nil {
		return "No roadmap available to add overview to.", ""
	}

	setup := s.Roadmap.Find(in.SetupNodeID)
	if setup == nil {
		return fmt.Sprintf("Setup node '%s' not found in current roadmap.", in.SetupNodeID), ""
	}

	setup.Overview = in.Overview
	s.Phase = types.PhaseSubtasks

	reply := fmt.Sprintf("Added project overview to '%s' with %d strategic steps.\n\nNow generating detailed subtasks for all milestones...",
		setup.Title, len(in.Overview))
	s.Append(types.NewChatMessage("assistant", reply, "overview_generated"))

	return e.driveSubtasks(ctx, s)
}

// handleFillSubtasks attaches subtasks to one queued milestone and
// continues the chain, or finalizes the roadmap when the queue drains.
func (e *Engine) handleFillSubtasks(ctx context.Context, s *types.Session, args map[string]any, _ types.Intent) (string, string) {
	reply, ok := e.applySubtasks(s, args)
	if !ok {
		return reply, ""
	}
	if len(s.PendingSubtasks) == 0 {
		return e.finalizeRoadmap(s)
	}
	s.Append(types.NewChatMessage("assistant", reply, "subtasks_generated"))
	return e.driveSubtasks(ctx, s)
}

// applySubtasks is the pure mutation half of subtask filling: replace
// the target milestone's subtasks, fold subtask hours into its estimate,
// and remove it from the work queue. The queue entry is only removed on
// success, so a failed chain step can be retried.
func (e *Engine) applySubtasks(s *types.Session, args map[string]any) (string, bool) {
	var in struct {
		NodeID   string        `json:"node_id"`
		Subtasks []subtaskArgs `json:"subtasks"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "Failed to generate subtasks: invalid arguments.", false
	}
	if s.Roadmap == nil {
		return "No roadmap available to add subtasks to.", false
	}

	target := s.Roadmap.Find(in.NodeID)
	if target == nil {
		return fmt.Sprintf("Node '%s' not found in current roadmap.", in.NodeID), false
	}

	target.Subtasks = toSubtasks(in.Subtasks)
	if hours := target.SubtaskHours(); hours > 0 {
		target.EstimatedHours = hours
	}
	s.PopPending(in.NodeID)

	logging.AgentDebug("subtasks attached: node=%s count=%d remaining=%d",
		in.NodeID, len(in.Subtasks), len(s.PendingSubtasks))

	if len(s.PendingSubtasks) == 0 {
		return "", true
	}

	nextTitle := "next milestone"
	if next := s.Roadmap.Find(s.PendingSubtasks[0]); next != nil {
		nextTitle = next.Title
	}
	return fmt.Sprintf("Added %d subtasks to '%s'.\n\nGenerating subtasks for '%s'...",
		len(in.Subtasks), target.Title, nextTitle), true
}

// handleExpandPlan appends branch milestones to the roadmap. Every new
// milestone depends on the base milestone it branches from; new
// milestones arriving without subtasks are queued for subtask
// generation on a later turn.
func (e *Engine) handleExpandPlan(_ context.Context, s *types.Session, args map[string]any, _ types.Intent) (string, string) {
	var in struct {
		BaseNodeID      string          `json:"base_node_id"`
		ExpansionReason string          `json:"expansion_reason"`
		NewNodes        []milestoneArgs `json:"new_nodes"`
	}
	if err := decodeArgs(args, &in); err != nil || len(in.NewNodes) == 0 {
		return "Failed to expand roadmap: invalid arguments.", ""
	}
	if s.Roadmap == nil {
		return "No roadmap available to expand.", ""
	}

	base := s.Roadmap.Find(in.BaseNodeID)
	if base == nil {
		return fmt.Sprintf("Base node '%s' not found in current roadmap.", in.BaseNodeID), ""
	}

	taken := make(map[string]bool, len(s.Roadmap.Milestones))
	for i := range s.Roadmap.Milestones {
		taken[s.Roadmap.Milestones[i].ID] = true
	}

	newMilestones := make([]types.Milestone, 0, len(in.NewNodes))
	var addedHours float64
	for _, n := range in.NewNodes {
		m, err := buildMilestone(n, taken)
		if err != nil {
			return fmt.Sprintf("Failed to expand roadmap: %v", err), ""
		}
		if !m.HasDependency(in.BaseNodeID) {
			m.Dependencies = append(m.Dependencies, in.BaseNodeID)
		}
		taken[m.ID] = true
		addedHours += m.EstimatedHours
		newMilestones = append(newMilestones, m)
	}
	for i := range newMilestones {
		if err := validateDependencies(newMilestones[i].Dependencies, taken); err != nil {
			return fmt.Sprintf("Failed to expand roadmap: %v", err), ""
		}
	}

	for i := range newMilestones {
		s.Roadmap.Milestones = append(s.Roadmap.Milestones, newMilestones[i])
		if len(newMilestones[i].Subtasks) == 0 {
			s.PendingSubtasks = append(s.PendingSubtasks, newMilestones[i].ID)
		}
	}
	s.Roadmap.RecomputeTotals()

	logging.AgentInfo("roadmap expanded: session=%s base=%s added=%d",
		s.ID, in.BaseNodeID, len(newMilestones))

	reply := fmt.Sprintf("Expanded roadmap with %d new nodes for '%s'. These branch from '%s' and add %.1f hours to the project.",
		len(newMilestones), in.ExpansionReason, base.Title, addedHours)
	s.Append(types.NewChatMessage("assistant", reply, "roadmap_expanded"))
	return reply, ""
}

// handleAddSubtasks appends subtasks to an existing milestone during
// editing-phase chat, optionally overriding the milestone's hour
// estimate.
func (e *Engine) handleAddSubtasks(_ context.Context, s *types.Session, args map[string]any, _ types.Intent) (string, string) {
	var in struct {
		NodeID             string        `json:"node_id"`
		AdditionalSubtasks []subtaskArgs `json:"additional_subtasks"`
		UpdatedTotalHours  *float64      `json:"updated_total_hours"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "Failed to add subtasks: invalid arguments.", ""
	}
	if s.Roadmap == nil {
		return "No roadmap available to modify.", ""
	}

	target := s.Roadmap.Find(in.NodeID)
	if target == nil {
		return fmt.Sprintf("Node '%s' not found in current roadmap.", in.NodeID), ""
	}

	target.Subtasks = append(target.Subtasks, toSubtasks(in.AdditionalSubtasks)...)
	if in.UpdatedTotalHours != nil {
		target.EstimatedHours = *in.UpdatedTotalHours
	}
	s.Roadmap.RecomputeTotals()

	reply := fmt.Sprintf("Added %d additional subtasks to '%s'.", len(in.AdditionalSubtasks), target.Title)
	s.Append(types.NewChatMessage("assistant", reply, "subtasks_added"))
	return reply, ""
}

// handleEditMilestone applies a partial field update to one milestone.
// The edit is all-or-nothing: an invalid tag, a dependency on an
// unknown milestone, or a dependency cycle rejects the whole update
// without mutation.
func (e *Engine) handleEditMilestone(_ context.Context, s *types.Session, args map[string]any, _ types.Intent) (string, string) {
	var in struct {
		NodeID        string         `json:"node_id"`
		UpdatedFields map[string]any `json:"updated_fields"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return "Failed to edit node: invalid arguments.", ""
	}
	if s.Roadmap == nil {
		return "No roadmap available to edit.", ""
	}

	target := s.Roadmap.Find(in.NodeID)
	if target == nil {
		return fmt.Sprintf("Node '%s' not found in current roadmap.", in.NodeID), ""
	}

	var update struct {
		Title                *string   `json:"title"`
		Description          *string   `json:"description"`
		EstimatedDays        *int      `json:"estimated_days"`
		EstimatedHours       *float64  `json:"estimated_hours"`
		Tags                 *[]string `json:"tags"`
		Dependencies         *[]string `json:"dependencies"`
		Status               *string   `json:"status"`
		CompletionPercentage *int      `json:"completion_percentage"`
		Deliverables         *[]string `json:"deliverables"`
		SuccessCriteria      *[]string `json:"success_criteria"`
	}
	if err := decodeArgs(in.UpdatedFields, &update); err != nil {
		return "Failed to edit node: invalid field values.", ""
	}

	var tags []types.Tag
	if update.Tags != nil {
		for _, t := range *update.Tags {
			if !types.ValidTag(t) {
				return fmt.Sprintf("Failed to edit node: invalid tag '%s'.", t), ""
			}
			tags = append(tags, types.Tag(t))
		}
	}
	if update.Dependencies != nil {
		for _, dep := range *update.Dependencies {
			if s.Roadmap.Find(dep) == nil {
				return fmt.Sprintf("Failed to edit node: dependency '%s' not found in current roadmap.", dep), ""
			}
		}
		if s.Roadmap.WouldCycle(in.NodeID, *update.Dependencies) {
			return fmt.Sprintf("Failed to edit node: dependencies would create a cycle involving '%s'.", in.NodeID), ""
		}
	}

	if update.Title != nil {
		target.Title = *update.Title
	}
	if update.Description != nil {
		target.Description = *update.Description
	}
	if update.EstimatedDays != nil {
		target.EstimatedDays = *update.EstimatedDays
	}
	if update.EstimatedHours != nil {
		target.EstimatedHours = *update.EstimatedHours
	}
	if update.Tags != nil {
		target.Tags = tags
	}
	if update.Dependencies != nil {
		target.Dependencies = *update.Dependencies
	}
	if update.Status != nil {
		target.Status = *update.Status
	}
	if update.CompletionPercentage != nil {
		target.CompletionPercentage = *update.CompletionPercentage
	}
	if update.Deliverables != nil {
		target.Deliverables = *update.Deliverables
	}
	if update.SuccessCriteria != nil {
		target.SuccessCriteria = *update.SuccessCriteria
	}
	s.Roadmap.RecomputeTotals()

	logging.AgentDebug("milestone edited: session=%s node=%s", s.ID, in.NodeID)

	reply := fmt.Sprintf("Updated '%s' with new specifications.", target.Title)
	s.Append(types.NewChatMessage("assistant", reply, "node_edited"))
	return reply, ""
}
