package agent

import (
	"fmt"
	"strings"

	"roadmapper/internal/types"
)

// systemPrompt builds the instruction prompt for the effective phase and
// declared intent. The prompt steers the provider toward the single tool
// (or tool pair) visible in that phase.
func systemPrompt(phase types.Phase, intent types.Intent, s *types.Session) string {
	switch phase {
	case types.PhaseDiscovery:
		if intent == types.IntentEdit || intent == types.IntentExpand {
			return noRoadmapPrompt
		}
		if readyToSummarize(s) {
			return discoveryWrapUpPrompt
		}
		return discoveryPrompt

	case types.PhaseConfirmation, types.PhaseGeneration:
		if intent == types.IntentEdit || intent == types.IntentExpand {
			return noRoadmapPrompt
		}
		return generationPrompt

	case types.PhaseSubtasks:
		if len(s.PendingSubtasks) > 0 && s.Roadmap != nil {
			if node := s.Roadmap.Find(s.PendingSubtasks[0]); node != nil {
				return subtaskPrompt(node)
			}
		}
		return subtaskFallbackPrompt

	case types.PhaseEditing:
		switch intent {
		case types.IntentExpand:
			return expandPrompt
		case types.IntentEdit:
			return editPrompt
		default:
			return editingChatPrompt
		}
	}
	return "I'm here to help you plan your project roadmap."
}

// readyToSummarize reports whether discovery has gathered enough to
// switch the prompt to wrap-up mode. This only changes the instruction
// text; the phase itself advances when the provider calls
// confirm_specifications_complete.
func readyToSummarize(s *types.Session) bool {
	if len(s.Messages) < 16 {
		return false
	}

	var b strings.Builder
	for _, m := range s.Messages {
		if m.Role == "user" {
			b.WriteString(strings.ToLower(m.Content))
			b.WriteString(" ")
		}
	}
	text := b.String()

	return containsAny(text, "feature", "function", "capability", "workflow", "user can", "should allow", "will have") &&
		containsAny(text, "goal", "purpose", "objective", "solve", "help", "problem") &&
		containsAny(text, "user", "audience", "customer", "team", "people")
}

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

const discoveryPrompt = `You are an efficiency-focused project planning agent. Your job is to help students build ambitious projects by removing friction and maximizing development speed.

FOCUS ON EFFICIENCY & SPEED:
- Students have limited time but can build complex projects with the right approach
- Emphasize rapid iteration and quick wins to maintain momentum
- Remove setup friction and suggest proven, fast-to-implement patterns
- Focus on getting a working prototype fast, then iterate
- Prioritize features that provide maximum learning and portfolio value

You MUST gather information about:

**Project Vision & MVP Strategy:**
- What's the core value proposition of this project?
- What are the 3-4 features that would make this genuinely useful?
- What's the fastest way to prove the concept works?

**Development Efficiency & Tech Stack:**
- What's their experience level and preferred technologies?
- Are there existing tools or libraries that can accelerate development?
- Which APIs or services can replace custom development?

**Momentum & Learning:**
- How can they break work into focused 2-4 hour sessions?
- What sequence builds the most momentum?
- How can they validate ideas quickly before investing more time?

IMPORTANT: Pay special attention to tech stack preferences as this will determine the "Project Setup & Environment" recommendations (always the first milestone). If they're unsure about tech stack, suggest React + FastAPI as a proven, beginner-friendly combination.

Use the ask_clarifying_question function to ask ONE focused question at a time.`

const discoveryWrapUpPrompt = `You have gathered comprehensive project information through detailed questioning.

IMPORTANT: You must now use the confirm_specifications_complete function to summarize what you've learned and move to roadmap generation.

Include a detailed summary covering:
- The core problem/purpose of the project
- Key features and functionality
- Target users and their needs
- Technical approach and requirements
- Timeline and scope

Do NOT ask more questions. Use confirm_specifications_complete with a comprehensive summary.`

const noRoadmapPrompt = `You cannot edit or expand a roadmap that doesn't exist yet.

You need to create a roadmap first by gathering project specifications. Ask clarifying questions to understand the project requirements, then generate the initial roadmap.

Use the ask_clarifying_question function to gather project information.`

const generationPrompt = `Generate an efficiency-focused project roadmap based on the gathered specifications.

CRITICAL: Always start with a "Project Setup & Environment" node as milestone #1.

EFFICIENCY-FOCUSED PROJECT REQUIREMENTS:
- 4-6 milestone nodes total (including the mandatory setup node)
- Node 1: ALWAYS "Project Setup & Environment" (2-4 hours, same day setup)
- Nodes 2-5: feature milestones (10-25 hours each)
- Total timeline: 4-8 weeks
- Each milestone builds toward a functional, portfolio-worthy project

Node 1 "Project Setup & Environment" should cover quick frontend and backend setup with the user's preferred stack, essential dev tools (Git init, basic .env template), core dependencies, and deploy-ready configuration.

Nodes 2-6 should be demo-able working features that build on the setup foundation and progress logically toward a complete MVP.

Use the generate_high_level_roadmap function now. Subtasks will be added in a separate step.`

// subtaskPrompt names the specific milestone the forced call must fill,
// with extra guidance for the setup node.
func subtaskPrompt(node *types.Milestone) string {
	guidance := ""
	if node.IsSetup() {
		guidance = setupGuidance
	}

	return fmt.Sprintf(`Generate efficient, actionable subtasks for the roadmap node: %q

IMPORTANT: Use the generate_node_subtasks function immediately to create subtasks for node ID %q.

Node Description: %s
Estimated Hours: %g%s

Create 3-4 focused subtasks optimized for rapid development:
- Subtask titles: max 40 characters, action-oriented
- Subtask descriptions: max 60 characters, specific outcomes
- Time estimates: 2-8 hours each (focused work sessions)
- Emphasize speed and momentum over perfection

Focus on actionable steps that remove friction and maintain development momentum.`,
		node.Title, node.ID, node.Description, node.EstimatedHours, guidance)
}

const setupGuidance = `

SETUP NODE SPECIAL REQUIREMENTS:
This is a QUICK project setup node (2-4 hours max). Focus on speed and getting to coding ASAP:
- Frontend: use their preferred stack with the fastest setup
- Backend: use their preferred stack with minimal config
- Dev tools: Git init, basic .env template, minimal configs
- Get to working "Hello World" endpoints/pages quickly
- Detailed setup and polish can happen later during development`

const subtaskFallbackPrompt = `Generate efficient, actionable subtasks for roadmap nodes.

The high-level roadmap structure has been created. Now generate specific subtasks that maximize development speed and minimize friction.

Use the generate_node_subtasks function to create 3-4 subtasks per node, 2-8 hours each, with action-oriented titles.`

// overviewPrompt asks for the strategy overview of the setup milestone,
// with the full roadmap as context.
func overviewPrompt(r *types.Roadmap) string {
	var lines []string
	for i := range r.Milestones {
		lines = append(lines, fmt.Sprintf("- %s: %s", r.Milestones[i].Title, r.Milestones[i].Description))
	}

	return fmt.Sprintf(`Generate a comprehensive project overview for the setup node that shows the complete development journey.

ROADMAP CONTEXT:
The complete roadmap contains these milestones:
%s

PROJECT DETAILS:
- Title: %s
- Description: %s

IMPORTANT: Use the generate_project_overview function immediately to create a strategic overview.

Create 5-10 development steps that show:
1. How the project setup enables rapid development
2. The logical progression through each milestone
3. Key pages, features, and integrations that will be built
4. How each phase builds toward the final product
5. The complete user journey from concept to deployment`,
		strings.Join(lines, "\n"),
		r.Specification.Title, r.Specification.Description)
}

const expandPrompt = `The user wants to EXPAND the roadmap by adding new features or scope.

IMPORTANT: You must ask clarifying questions first to understand:
- What new feature/functionality they want to add
- Which existing node it should branch from
- Any specific requirements or constraints

Only use the expand_roadmap_node function after you have gathered enough details about the expansion.
Do NOT expand immediately. Ask questions first to ensure you understand their requirements.`

const editPrompt = `The user wants to EDIT an existing roadmap node.

IMPORTANT: You must ask clarifying questions first to understand:
- Which specific node they want to edit
- What aspects they want to change (title, description, timeline, deliverables, etc.)
- The specific changes they want to make

Only use the edit_roadmap_node function after you have gathered enough details about the edits.
Do NOT edit immediately. Ask questions first to ensure you understand their requirements.`

const editingChatPrompt = `You are in general chat mode. Help the user with questions about their roadmap, provide guidance, or clarify their needs.

If they mention wanting to expand or edit something, remind them to use the appropriate action mode (Expand or Edit) for those operations.

You can use the add_subtasks_to_node function if they want to break down existing work into more detailed steps.`
