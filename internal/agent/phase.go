package agent

import "roadmapper/internal/types"

// DerivePhase computes the effective phase for a turn from session state
// alone. Rules are evaluated in order:
//
//  1. No roadmap and specifications unconfirmed: discovery.
//  2. No roadmap and specifications confirmed: generation.
//  3. Roadmap exists, stored phase is subtask_generation, and the work
//     queue is non-empty: stay in subtask_generation.
//  4. Roadmap exists: editing.
//
// Forward movement is gated by explicit tool calls from the provider
// (confirm_specifications_complete, generate_high_level_roadmap); it is
// never inferred from message content.
func DerivePhase(s *types.Session) types.Phase {
	if s.Roadmap == nil {
		if s.SpecificationsComplete {
			return types.PhaseGeneration
		}
		return types.PhaseDiscovery
	}
	if s.Phase == types.PhaseSubtasks && len(s.PendingSubtasks) > 0 {
		return types.PhaseSubtasks
	}
	return types.PhaseEditing
}
