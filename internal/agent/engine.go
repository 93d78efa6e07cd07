// Package agent implements the conversation-phase state machine and the
// tool-dispatch engine. One HandleTurn call processes one user turn:
// derive the effective phase, ask the provider for a response constrained
// to that phase's tools, and route any structured tool invocation to the
// matching roadmap handler. Multi-call generation (overview, then one
// subtask call per milestone) is driven by an explicit work queue on the
// session rather than by user turns.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"roadmapper/internal/logging"
	"roadmapper/internal/provider"
	"roadmapper/internal/tools"
	"roadmapper/internal/types"
)

// defaultConversationWindow bounds the message history sent per
// provider call when no window size is configured.
const defaultConversationWindow = 10

// replyUnknownTool is returned when the provider invokes a tool outside
// the visible set.
const replyUnknownTool = "I'm not sure how to help with that."

// handlerFunc mutates the session in response to one parsed tool call
// and returns the user-facing reply plus an optional UI action hint.
type handlerFunc func(ctx context.Context, s *types.Session, args map[string]any, intent types.Intent) (string, string)

// Engine routes conversation turns between the provider and the roadmap
// handlers. Safe for sequential use; one session is processed by exactly
// one turn at a time.
type Engine struct {
	client   provider.Client
	registry *tools.Registry
	window   int
	handlers map[string]handlerFunc
}

// New builds an engine over the given provider client and tool registry.
// window bounds the message history per provider call; zero or negative
// falls back to the default. Every dispatchable tool name must be
// registered; a mismatch between the dispatch table and the catalog is
// a construction error, not a runtime surprise.
func New(client provider.Client, registry *tools.Registry, window int) (*Engine, error) {
	if window <= 0 {
		window = defaultConversationWindow
	}
	e := &Engine{client: client, registry: registry, window: window}
	e.handlers = map[string]handlerFunc{
		tools.NameAskClarifyingQuestion: e.handleClarifyingQuestion,
		tools.NameConfirmSpecifications: e.handleConfirmSpecifications,
		tools.NameGenerateRoadmap:       e.handleCreateHighLevelPlan,
		tools.NameGenerateOverview:      e.handleAttachOverview,
		tools.NameGenerateSubtasks:      e.handleFillSubtasks,
		tools.NameExpandRoadmap:         e.handleExpandPlan,
		tools.NameAddSubtasks:           e.handleAddSubtasks,
		tools.NameEditMilestone:         e.handleEditMilestone,
	}

	for name := range e.handlers {
		if !registry.Has(name) {
			return nil, fmt.Errorf("dispatch table references unregistered tool %q", name)
		}
	}
	return e, nil
}

// HandleTurn processes one user turn: appends the message, derives the
// phase, invokes the provider with the phase's visible tools, and
// dispatches the outcome. The returned UI hint, when non-empty, tells
// the client to offer a follow-up action (e.g. a generate button).
//
// Provider transport failures end the turn with an apologetic reply and
// leave the roadmap untouched; they are not returned as errors.
func (e *Engine) HandleTurn(ctx context.Context, s *types.Session, message string, intent types.Intent) (string, string, error) {
	if s == nil {
		return "", "", fmt.Errorf("nil session")
	}
	if intent == "" {
		intent = types.IntentChat
	}

	s.Append(types.NewChatMessage("user", message, string(intent)))

	phase := DerivePhase(s)
	logging.AgentDebug("turn: session=%s phase=%s intent=%s", s.ID, phase, intent)

	out, err := e.client.Invoke(ctx, provider.Request{
		System:   systemPrompt(phase, intent, s),
		Messages: s.Window(e.window),
		Tools:    e.registry.Visible(phase, intent),
	})
	if err != nil {
		logging.AgentError("provider call failed: session=%s: %v", s.ID, err)
		return fmt.Sprintf("Sorry, I encountered an error: %v", err), "", nil
	}

	reply, hint := e.dispatch(ctx, s, out, intent)
	return reply, hint, nil
}

// dispatch routes a provider outcome to the matching handler. Plain text
// is appended to the log verbatim; failures produce a diagnostic reply
// without mutating the roadmap.
func (e *Engine) dispatch(ctx context.Context, s *types.Session, out *provider.Outcome, intent types.Intent) (string, string) {
	switch out.Kind {
	case provider.KindToolCall:
		handler, ok := e.handlers[out.Call.Name]
		if !ok {
			logging.AgentDebug("unknown tool from provider: %s", out.Call.Name)
			return replyUnknownTool, ""
		}
		logging.AgentDebug("dispatching tool call: %s", out.Call.Name)
		return handler(ctx, s, out.Call.Input, intent)

	case provider.KindFailure:
		logging.AgentError("provider outcome failure: %s", out.Reason)
		return fmt.Sprintf("Sorry, %s.", out.Reason), ""

	default:
		s.Append(types.NewChatMessage("assistant", out.Text, "chat"))
		return out.Text, ""
	}
}

// decodeArgs round-trips loosely-typed tool arguments into a typed
// struct so handlers never touch raw maps.
func decodeArgs(args map[string]any, v any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
