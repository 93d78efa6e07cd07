package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadmapper/internal/provider"
	"roadmapper/internal/tools"
	"roadmapper/internal/types"
)

func TestExpandPlanForcesBaseDependency(t *testing.T) {
	expansion := map[string]any{
		"base_node_id":     "m1",
		"expansion_reason": "offline support",
		"new_nodes": []any{
			milestoneInput("m10", "Local Cache", 8, 3, []string{"database"}),
			milestoneInput("m11", "Sync Engine", 12, 4, []string{"backend", "integration"}),
		},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameExpandRoadmap, expansion),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)
	hoursBefore := s.Roadmap.TotalHours

	reply, _, err := e.HandleTurn(context.Background(), s, "add offline support", types.IntentExpand)
	require.NoError(t, err)
	assert.Contains(t, reply, "Expanded roadmap with 2 new nodes")
	assert.Contains(t, reply, "offline support")

	require.Len(t, s.Roadmap.Milestones, 5)
	for _, id := range []string{"m10", "m11"} {
		m := s.Roadmap.Find(id)
		require.NotNil(t, m)
		assert.True(t, m.HasDependency("m1"), "%s must depend on m1", id)
		assert.Equal(t, types.StatusPending, m.Status)
	}

	// Aggregate hours grew by exactly the new milestones' hours.
	assert.Equal(t, hoursBefore+20, s.Roadmap.TotalHours)

	// Subtask-less new milestones are queued for later generation.
	assert.Equal(t, []string{"m10", "m11"}, s.PendingSubtasks)
}

func TestExpandPlanUnknownBase(t *testing.T) {
	expansion := map[string]any{
		"base_node_id":     "m99",
		"expansion_reason": "nothing",
		"new_nodes":        []any{milestoneInput("m10", "X", 4, 2, []string{"mvp"})},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameExpandRoadmap, expansion),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "expand", types.IntentExpand)
	require.NoError(t, err)
	assert.Contains(t, reply, "'m99' not found")
	assert.Len(t, s.Roadmap.Milestones, 3)
}

func TestExpandPlanRejectsDuplicateID(t *testing.T) {
	expansion := map[string]any{
		"base_node_id":     "m1",
		"expansion_reason": "dup",
		"new_nodes":        []any{milestoneInput("m2", "Clone", 4, 2, []string{"mvp"})},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameExpandRoadmap, expansion),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "expand", types.IntentExpand)
	require.NoError(t, err)
	assert.Contains(t, reply, "duplicate milestone id")
	assert.Len(t, s.Roadmap.Milestones, 3)
}

// Expansion nodes may only depend on milestones that exist in the plan
// or arrive in the same batch.
func TestExpandPlanRejectsUnknownDependency(t *testing.T) {
	stray := milestoneInput("m10", "Orphan", 4, 2, []string{"mvp"})
	stray["dependencies"] = []any{"ghost-404"}
	expansion := map[string]any{
		"base_node_id":     "m1",
		"expansion_reason": "nothing",
		"new_nodes":        []any{stray},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameExpandRoadmap, expansion),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "expand", types.IntentExpand)
	require.NoError(t, err)
	assert.Contains(t, reply, "dependency 'ghost-404'")
	assert.Len(t, s.Roadmap.Milestones, 3)
	assert.Empty(t, s.PendingSubtasks)
}

func TestExpandPlanAllowsBatchInternalDependency(t *testing.T) {
	second := milestoneInput("m11", "Sync Engine", 12, 4, []string{"backend"})
	second["dependencies"] = []any{"m10"}
	expansion := map[string]any{
		"base_node_id":     "m1",
		"expansion_reason": "offline support",
		"new_nodes": []any{
			milestoneInput("m10", "Local Cache", 8, 3, []string{"database"}),
			second,
		},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameExpandRoadmap, expansion),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	_, _, err := e.HandleTurn(context.Background(), s, "add offline support", types.IntentExpand)
	require.NoError(t, err)
	require.Len(t, s.Roadmap.Milestones, 5)
	assert.True(t, s.Roadmap.Find("m11").HasDependency("m10"))
}

func TestEditMilestoneAppliesPresentFields(t *testing.T) {
	edit := map[string]any{
		"node_id": "m2",
		"updated_fields": map[string]any{
			"title":           "Core Backend v2",
			"estimated_hours": 25.0,
			"status":          "in_progress",
		},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameEditMilestone, edit),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "rename backend node", types.IntentEdit)
	require.NoError(t, err)
	assert.Contains(t, reply, "Updated 'Core Backend v2'")

	m := s.Roadmap.Find("m2")
	assert.Equal(t, "Core Backend v2", m.Title)
	assert.Equal(t, 25.0, m.EstimatedHours)
	assert.Equal(t, types.StatusInProgress, m.Status)
	// Untouched fields survive.
	assert.Equal(t, "", m.Description)
	assert.Equal(t, []types.Tag{types.TagBackend}, m.Tags)
	// Totals follow the edit.
	assert.Equal(t, 46.0, s.Roadmap.TotalHours)
}

func TestEditMilestoneRejectsInvalidTag(t *testing.T) {
	edit := map[string]any{
		"node_id": "m2",
		"updated_fields": map[string]any{
			"title": "Should Not Apply",
			"tags":  []any{"backend", "blockchain"},
		},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameEditMilestone, edit),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "edit", types.IntentEdit)
	require.NoError(t, err)
	assert.Contains(t, reply, "invalid tag 'blockchain'")

	// All-or-nothing: the title did not change either.
	assert.Equal(t, "Core Backend", s.Roadmap.Find("m2").Title)
}

func TestEditMilestoneRejectsUnknownDependency(t *testing.T) {
	edit := map[string]any{
		"node_id": "m2",
		"updated_fields": map[string]any{
			"dependencies": []any{"m1", "m404"},
		},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameEditMilestone, edit),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "edit", types.IntentEdit)
	require.NoError(t, err)
	assert.Contains(t, reply, "'m404' not found")
	assert.Empty(t, s.Roadmap.Find("m2").Dependencies)
}

// Dependencies stay acyclic: m3 already depends on m2, so pointing m2
// back at m3 must be rejected without mutation.
func TestEditMilestoneRejectsDependencyCycle(t *testing.T) {
	edit := map[string]any{
		"node_id": "m2",
		"updated_fields": map[string]any{
			"title":        "Should Not Apply",
			"dependencies": []any{"m3"},
		},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameEditMilestone, edit),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "edit", types.IntentEdit)
	require.NoError(t, err)
	assert.Contains(t, reply, "would create a cycle")

	m := s.Roadmap.Find("m2")
	assert.Empty(t, m.Dependencies)
	assert.Equal(t, "Core Backend", m.Title)
}

func TestEditMilestoneRejectsSelfDependency(t *testing.T) {
	edit := map[string]any{
		"node_id": "m2",
		"updated_fields": map[string]any{
			"dependencies": []any{"m2"},
		},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameEditMilestone, edit),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "edit", types.IntentEdit)
	require.NoError(t, err)
	assert.Contains(t, reply, "would create a cycle")
	assert.Empty(t, s.Roadmap.Find("m2").Dependencies)
}

func TestEditMilestoneUnknownNode(t *testing.T) {
	edit := map[string]any{
		"node_id":        "m404",
		"updated_fields": map[string]any{"title": "X"},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameEditMilestone, edit),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "edit", types.IntentEdit)
	require.NoError(t, err)
	assert.Contains(t, reply, "'m404' not found")
}

func TestAddSubtasksAppends(t *testing.T) {
	add := map[string]any{
		"node_id": "m2",
		"additional_subtasks": []any{
			subtaskInput("m2-s2", "Write integration tests", 4),
			subtaskInput("m2-s3", "Add rate limiting", 3),
		},
		"updated_total_hours": 27.0,
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameAddSubtasks, add),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "break down the backend work", types.IntentChat)
	require.NoError(t, err)
	assert.Contains(t, reply, "Added 2 additional subtasks to 'Core Backend'")

	m := s.Roadmap.Find("m2")
	require.Len(t, m.Subtasks, 3)
	assert.Equal(t, 27.0, m.EstimatedHours)
	assert.Equal(t, 48.0, s.Roadmap.TotalHours)
}

func TestAddSubtasksUnknownNode(t *testing.T) {
	add := map[string]any{
		"node_id":             "m404",
		"additional_subtasks": []any{subtaskInput("s1", "X", 2)},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameAddSubtasks, add),
	}}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _, err := e.HandleTurn(context.Background(), s, "add", types.IntentChat)
	require.NoError(t, err)
	assert.Contains(t, reply, "'m404' not found")
}

// A stale fill call after the queue drains never mutates the roadmap.
func TestFillSubtasksStaleID(t *testing.T) {
	client := &mockClient{}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, ok := e.applySubtasks(s, subtasksFor("m404", 2))
	assert.False(t, ok)
	assert.Contains(t, reply, "'m404' not found")
	assert.Len(t, s.Roadmap.Find("m1").Subtasks, 1)
}

// FillSubtasks strictly shrinks the queue and never re-adds entries.
func TestFillSubtasksShrinksQueue(t *testing.T) {
	client := &mockClient{}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)
	s.PendingSubtasks = []string{"m1", "m2", "m3"}

	for i, id := range []string{"m1", "m2", "m3"} {
		_, ok := e.applySubtasks(s, subtasksFor(id, 2, 2))
		require.True(t, ok)
		assert.Len(t, s.PendingSubtasks, 2-i)
	}
	assert.Empty(t, s.PendingSubtasks)
}

func TestAttachOverviewUnknownNode(t *testing.T) {
	client := &mockClient{}
	e := newTestEngine(client)
	s := sessionWithRoadmap(t)

	reply, _ := e.handleAttachOverview(context.Background(), s, overviewFor("m404"), types.IntentChat)
	assert.Contains(t, reply, "'m404' not found")
	for i := range s.Roadmap.Milestones {
		assert.Empty(t, s.Roadmap.Milestones[i].Overview)
	}
}

func TestCreateHighLevelPlanRejectsInvalidTag(t *testing.T) {
	plan := map[string]any{
		"project_title":       "App",
		"project_description": "desc",
		"nodes":               []any{milestoneInput("m1", "Setup", 3, 1, []string{"web3"})},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameGenerateRoadmap, plan),
	}}
	e := newTestEngine(client)

	s := types.NewSession("sess-1")
	s.SpecificationsComplete = true

	reply, _, err := e.HandleTurn(context.Background(), s, "generate", types.IntentChat)
	require.NoError(t, err)
	assert.Contains(t, reply, "invalid tag")
	assert.Nil(t, s.Roadmap)
}

func TestCreateHighLevelPlanRejectsUnknownDependency(t *testing.T) {
	second := milestoneInput("m2", "Backend", 20, 7, []string{"backend"})
	second["dependencies"] = []any{"ghost-404"}
	plan := map[string]any{
		"project_title":       "App",
		"project_description": "desc",
		"nodes": []any{
			milestoneInput("m1", "Setup", 3, 1, []string{"setup"}),
			second,
		},
	}
	client := &mockClient{outcomes: []*provider.Outcome{
		toolOutcome(tools.NameGenerateRoadmap, plan),
	}}
	e := newTestEngine(client)

	s := types.NewSession("sess-1")
	s.SpecificationsComplete = true

	reply, _, err := e.HandleTurn(context.Background(), s, "generate", types.IntentChat)
	require.NoError(t, err)
	assert.Contains(t, reply, "dependency 'ghost-404'")
	assert.Nil(t, s.Roadmap)
	assert.Empty(t, s.PendingSubtasks)
}
