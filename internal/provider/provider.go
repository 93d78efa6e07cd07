// Package provider abstracts a single request/response exchange with a
// reasoning provider (chat-completion LLM). A call carries the bounded
// conversation window, the tool subset visible in the current phase, and
// a selection policy; the result is a structured tool invocation, plain
// text, or a failure. Provider quirks, notably tool calls emitted as
// inline text instead of the native structured field, are normalized
// here so callers never see them.
package provider

import (
	"context"
	"time"

	"roadmapper/internal/types"
)

// Provider identifies a provider family.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
	ProviderGemini Provider = "gemini"
)

// Request is one provider exchange.
type Request struct {
	// System is the phase-specific instruction prompt.
	System string

	// Messages is the bounded conversation window, oldest first.
	Messages []types.ChatMessage

	// Tools is the subset visible in the current phase.
	Tools []types.ToolDefinition

	// ForceTool, when non-empty, constrains the provider to exactly this
	// tool. Used by the continuation chain.
	ForceTool string
}

// OutcomeKind discriminates the result of an exchange.
type OutcomeKind int

const (
	// KindToolCall means the provider selected a tool with arguments.
	KindToolCall OutcomeKind = iota

	// KindText means the provider replied in free text.
	KindText

	// KindFailure means the provider responded but the result is
	// unusable, e.g. malformed tool arguments. Transport errors are
	// returned as errors from Invoke instead.
	KindFailure
)

// Outcome is the normalized result of one exchange.
type Outcome struct {
	Kind   OutcomeKind
	Call   *types.ToolCall // set when Kind == KindToolCall
	Text   string          // set when Kind == KindText
	Reason string          // set when Kind == KindFailure
	Usage  types.Usage
}

// Client is a reasoning provider. Implementations are safe for
// sequential use from one session turn; there is no retry on transport
// failure; a failed call surfaces as an error and ends the turn.
type Client interface {
	Invoke(ctx context.Context, req Request) (*Outcome, error)
	Model() string
}

// Config selects and configures a provider family.
type Config struct {
	Provider    Provider
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}
