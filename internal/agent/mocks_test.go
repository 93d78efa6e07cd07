package agent

import (
	"context"
	"fmt"

	"roadmapper/internal/provider"
	"roadmapper/internal/tools"
	"roadmapper/internal/types"
)

// mockClient replays a scripted sequence of outcomes and records every
// request it receives.
type mockClient struct {
	outcomes []*provider.Outcome
	errs     []error
	requests []provider.Request
}

func (m *mockClient) Invoke(_ context.Context, req provider.Request) (*provider.Outcome, error) {
	m.requests = append(m.requests, req)
	i := len(m.requests) - 1
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.outcomes) {
		return nil, fmt.Errorf("mock: unexpected call %d", i)
	}
	return m.outcomes[i], nil
}

func (m *mockClient) Model() string { return "mock" }

func toolOutcome(name string, args map[string]any) *provider.Outcome {
	return &provider.Outcome{
		Kind: provider.KindToolCall,
		Call: &types.ToolCall{Name: name, Input: args},
	}
}

func textOutcome(text string) *provider.Outcome {
	return &provider.Outcome{Kind: provider.KindText, Text: text}
}

func failureOutcome(reason string) *provider.Outcome {
	return &provider.Outcome{Kind: provider.KindFailure, Reason: reason}
}

func newTestEngine(client provider.Client) *Engine {
	e, err := New(client, tools.Catalog(), 0)
	if err != nil {
		panic(err)
	}
	return e
}

// milestoneInput builds a provider-style milestone argument map.
func milestoneInput(id, title string, hours float64, days int, tags []string) map[string]any {
	tagList := make([]any, len(tags))
	for i, t := range tags {
		tagList[i] = t
	}
	return map[string]any{
		"id":              id,
		"title":           title,
		"description":     "Work on " + title,
		"estimated_days":  days,
		"estimated_hours": hours,
		"tags":            tagList,
	}
}

func subtaskInput(id, title string, hours float64) map[string]any {
	return map[string]any{
		"id":              id,
		"title":           title,
		"description":     "Do " + title,
		"estimated_hours": hours,
	}
}

// fivePlanArgs is a generate_high_level_roadmap payload with five
// milestones, the first tagged setup.
func fivePlanArgs() map[string]any {
	return map[string]any{
		"project_title":       "Todo App",
		"project_description": "A simple todo application",
		"nodes": []any{
			milestoneInput("m1", "Project Setup & Environment", 3, 1, []string{"setup"}),
			milestoneInput("m2", "Core Backend", 20, 7, []string{"backend", "api"}),
			milestoneInput("m3", "Frontend Views", 18, 7, []string{"frontend"}),
			milestoneInput("m4", "Authentication", 12, 5, []string{"auth"}),
			milestoneInput("m5", "Deployment", 8, 3, []string{"deployment"}),
		},
	}
}

// subtasksFor builds a generate_node_subtasks payload for one node.
func subtasksFor(nodeID string, hours ...float64) map[string]any {
	items := make([]any, len(hours))
	for i, h := range hours {
		items[i] = subtaskInput(fmt.Sprintf("%s-s%d", nodeID, i+1), fmt.Sprintf("Task %d", i+1), h)
	}
	return map[string]any{"node_id": nodeID, "subtasks": items}
}

func overviewFor(setupID string) map[string]any {
	return map[string]any{
		"setup_node_id": setupID,
		"overview": []any{
			"Set up the development environment",
			"Build the core backend API",
			"Build the frontend views",
			"Add authentication",
			"Deploy to production",
		},
	}
}
