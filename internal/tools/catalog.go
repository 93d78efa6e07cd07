package tools

import (
	"roadmapper/internal/types"
)

// Tool names. Handlers are keyed by these; changing one is a protocol
// change for the provider.
const (
	NameAskClarifyingQuestion = "ask_clarifying_question"
	NameConfirmSpecifications = "confirm_specifications_complete"
	NameGenerateRoadmap       = "generate_high_level_roadmap"
	NameGenerateOverview      = "generate_project_overview"
	NameGenerateSubtasks      = "generate_node_subtasks"
	NameExpandRoadmap         = "expand_roadmap_node"
	NameAddSubtasks           = "add_subtasks_to_node"
	NameEditMilestone         = "edit_roadmap_node"
)

// questionCategories enumerate what a clarifying question may gather.
var questionCategories = []string{
	"project_vision", "core_features", "user_needs", "workflow",
	"ui_ux", "data_management", "integrations", "goals",
	"timeline", "tech_stack", "experience", "deployment",
	"auth", "audience", "commercial", "constraints", "inspiration",
}

func subtaskItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":              map[string]any{"type": "string"},
			"title":           map[string]any{"type": "string"},
			"description":     map[string]any{"type": "string"},
			"estimated_hours": map[string]any{"type": "number"},
		},
		"required": []string{"id", "title", "description"},
	}
}

func milestoneItemSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":              map[string]any{"type": "string"},
			"title":           map[string]any{"type": "string", "maxLength": 60},
			"description":     map[string]any{"type": "string", "maxLength": 200},
			"estimated_days":  map[string]any{"type": "integer"},
			"estimated_hours": map[string]any{"type": "number"},
			"tags": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
					"enum": types.TagNames(),
				},
			},
			"dependencies": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"deliverables": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"success_criteria": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"id", "title", "description", "estimated_days", "estimated_hours", "tags"},
	}
}

// Catalog returns a registry populated with every roadmap tool.
func Catalog() *Registry {
	r := NewRegistry()

	r.MustRegister(&Tool{
		Name:        NameAskClarifyingQuestion,
		Description: "Ask a focused question to gather more project information",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":        "string",
					"description": "A concise, focused question about the project",
				},
				"category": map[string]any{
					"type":        "string",
					"enum":        questionCategories,
					"description": "What category of information this question is gathering",
				},
			},
			"required": []string{"question", "category"},
		},
	})

	r.MustRegister(&Tool{
		Name:        NameConfirmSpecifications,
		Description: "Confirm that all project specifications have been gathered",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"summary": map[string]any{
					"type":        "string",
					"description": "A brief summary of the project specifications gathered",
				},
			},
			"required": []string{"summary"},
		},
	})

	r.MustRegister(&Tool{
		Name:        NameGenerateRoadmap,
		Description: "Generate high-level roadmap milestone nodes without detailed subtasks (Step 1 of 3)",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"project_title":       map[string]any{"type": "string"},
				"project_description": map[string]any{"type": "string"},
				"nodes": map[string]any{
					"type":  "array",
					"items": milestoneItemSchema(),
				},
			},
			"required": []string{"project_title", "project_description", "nodes"},
		},
	})

	r.MustRegister(&Tool{
		Name:        NameGenerateOverview,
		Description: "Generate a high-level development strategy overview for the setup node (Step 2 of 3)",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"setup_node_id": map[string]any{
					"type":        "string",
					"description": "The ID of the setup node to add overview to",
				},
				"overview": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"minItems":    5,
					"maxItems":    10,
					"description": "Strategic development steps from setup to deployment",
				},
			},
			"required": []string{"setup_node_id", "overview"},
		},
	})

	r.MustRegister(&Tool{
		Name:        NameGenerateSubtasks,
		Description: "Generate detailed subtasks for one roadmap node (Step 3 of 3)",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"node_id": map[string]any{"type": "string"},
				"subtasks": map[string]any{
					"type":  "array",
					"items": subtaskItemSchema(),
				},
			},
			"required": []string{"node_id", "subtasks"},
		},
	})

	r.MustRegister(&Tool{
		Name:        NameExpandRoadmap,
		Description: "Add new roadmap nodes that branch from an existing node to expand project scope. ONLY use this after gathering specific details about what to expand and which node to branch from.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"base_node_id": map[string]any{
					"type":        "string",
					"description": "The ID of the existing node to expand from",
				},
				"expansion_reason": map[string]any{
					"type":        "string",
					"description": "Why this expansion is needed",
				},
				"new_nodes": map[string]any{
					"type":  "array",
					"items": milestoneItemSchema(),
				},
			},
			"required": []string{"base_node_id", "expansion_reason", "new_nodes"},
		},
	})

	r.MustRegister(&Tool{
		Name:        NameAddSubtasks,
		Description: "Add more detailed subtasks to an existing roadmap node",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"node_id": map[string]any{"type": "string"},
				"additional_subtasks": map[string]any{
					"type":  "array",
					"items": subtaskItemSchema(),
				},
				"updated_total_hours": map[string]any{"type": "number"},
			},
			"required": []string{"node_id", "additional_subtasks"},
		},
	})

	r.MustRegister(&Tool{
		Name:        NameEditMilestone,
		Description: "Modify an existing roadmap node. ONLY use this after gathering specific details about which node to edit and what changes to make.",
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"node_id": map[string]any{"type": "string"},
				"updated_fields": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":           map[string]any{"type": "string"},
						"description":     map[string]any{"type": "string"},
						"estimated_days":  map[string]any{"type": "integer"},
						"estimated_hours": map[string]any{"type": "number"},
						"tags": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"deliverables": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"success_criteria": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
				},
			},
			"required": []string{"node_id", "updated_fields"},
		},
	})

	return r
}
