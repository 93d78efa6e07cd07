package agent

import (
	"context"
	"fmt"

	"roadmapper/internal/logging"
	"roadmapper/internal/provider"
	"roadmapper/internal/tools"
	"roadmapper/internal/types"
)

// The continuation chain performs the provider round-trips that must
// happen without new user input: one overview call for the setup
// milestone, then one subtask call per queued milestone. Each call
// forces the provider to exactly one tool. A failed call halts the chain
// with the queue intact so the next user turn can resume it.

// driveOverview forces a single generate_project_overview call for the
// setup milestone and applies the result.
func (e *Engine) driveOverview(ctx context.Context, s *types.Session, setupID string) (string, string) {
	logging.AgentDebug("continuation: overview for node=%s", setupID)

	out, err := e.client.Invoke(ctx, provider.Request{
		System: overviewPrompt(s.Roadmap),
		Messages: []types.ChatMessage{
			types.NewChatMessage("user", fmt.Sprintf("Generate a project overview for the setup node '%s'", setupID), ""),
		},
		Tools:     e.registry.Definitions(tools.NameGenerateOverview),
		ForceTool: tools.NameGenerateOverview,
	})
	if err != nil {
		logging.AgentError("continuation overview failed: %v", err)
		return fmt.Sprintf("Error in automatic overview generation: %v", err), ""
	}

	switch out.Kind {
	case provider.KindToolCall:
		if out.Call.Name != tools.NameGenerateOverview {
			return replyUnknownTool, ""
		}
		return e.handleAttachOverview(ctx, s, out.Call.Input, types.IntentChat)
	case provider.KindFailure:
		return fmt.Sprintf("Error parsing overview generation arguments: %s.", out.Reason), ""
	default:
		return "Error: Could not generate overview automatically.", ""
	}
}

// driveSubtasks drains the work queue: one forced generate_node_subtasks
// call per queued milestone, applied in order. The loop replaces the
// recursive chaining a naive implementation would do, so partial
// progress survives a halted chain.
func (e *Engine) driveSubtasks(ctx context.Context, s *types.Session) (string, string) {
	for len(s.PendingSubtasks) > 0 {
		head := s.PendingSubtasks[0]
		node := s.Roadmap.Find(head)
		if node == nil {
			// A stale queue entry cannot be filled; drop it rather than
			// spin on it forever.
			logging.AgentError("continuation: queued node %s missing from roadmap", head)
			s.PopPending(head)
			continue
		}

		logging.AgentDebug("continuation: subtasks for node=%s remaining=%d", head, len(s.PendingSubtasks))

		out, err := e.client.Invoke(ctx, provider.Request{
			System: subtaskPrompt(node),
			Messages: []types.ChatMessage{
				types.NewChatMessage("user", fmt.Sprintf("Generate subtasks for '%s'", node.Title), ""),
			},
			Tools:     e.registry.Definitions(tools.NameGenerateSubtasks),
			ForceTool: tools.NameGenerateSubtasks,
		})
		if err != nil {
			logging.AgentError("continuation subtasks failed: node=%s: %v", head, err)
			return fmt.Sprintf("Error in automatic subtask generation: %v", err), ""
		}

		switch out.Kind {
		case provider.KindToolCall:
			if out.Call.Name != tools.NameGenerateSubtasks {
				return replyUnknownTool, ""
			}
			reply, ok := e.applySubtasks(s, out.Call.Input)
			if !ok {
				return reply, ""
			}
			if reply != "" {
				s.Append(types.NewChatMessage("assistant", reply, "subtasks_generated"))
			}
		case provider.KindFailure:
			return fmt.Sprintf("Error parsing subtask generation arguments: %s.", out.Reason), ""
		default:
			return "Error: Could not generate subtasks automatically.", ""
		}
	}

	return e.finalizeRoadmap(s)
}

// finalizeRoadmap closes out the generation chain: refresh aggregate
// totals, move to editing, and report the completed roadmap.
func (e *Engine) finalizeRoadmap(s *types.Session) (string, string) {
	s.Phase = types.PhaseEditing

	if s.Roadmap == nil {
		reply := "Roadmap generation completed."
		s.Append(types.NewChatMessage("assistant", reply, "roadmap_completed"))
		return reply, ""
	}

	s.Roadmap.RecomputeTotals()

	logging.AgentInfo("roadmap completed: session=%s milestones=%d hours=%.1f weeks=%d",
		s.ID, len(s.Roadmap.Milestones), s.Roadmap.TotalHours, s.Roadmap.TotalWeeks)

	reply := fmt.Sprintf("Perfect! I've completed your roadmap with detailed subtasks for all %d milestones.\n\nTotal estimated time: %.1f hours across %d weeks.\n\nYou can now expand or edit any nodes as needed!",
		len(s.Roadmap.Milestones), s.Roadmap.TotalHours, s.Roadmap.TotalWeeks)
	s.Append(types.NewChatMessage("assistant", reply, "roadmap_completed"))
	return reply, ""
}
