package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"roadmapper/internal/logging"
	"roadmapper/internal/types"
)

// OpenAIClient implements Client for OpenAI-compatible chat-completion
// APIs. It also serves Groq, which speaks the same wire protocol but
// sometimes returns tool calls as inline text; the textFallback flag
// enables the degraded-mode decoder for that family.
type OpenAIClient struct {
	apiKey       string
	baseURL      string
	model        string
	maxTokens    int
	temperature  float64
	textFallback bool
	httpClient   *http.Client
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGroqModel     = "llama-3.3-70b-versatile"
)

// NewOpenAIClient builds a client for the OpenAI or Groq family.
func NewOpenAIClient(cfg Config) *OpenAIClient {
	baseURL := cfg.BaseURL
	model := cfg.Model
	if cfg.Provider == ProviderGroq {
		if baseURL == "" {
			baseURL = defaultGroqBaseURL
		}
		if model == "" {
			model = defaultGroqModel
		}
	} else {
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		if model == "" {
			model = defaultOpenAIModel
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 8000
	}

	return &OpenAIClient{
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		model:        model,
		maxTokens:    maxTokens,
		temperature:  cfg.Temperature,
		textFallback: cfg.Provider == ProviderGroq,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string { return c.model }

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type openAITool struct {
	Type     string         `json:"type"`
	Function openAIFunction `json:"function"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Tools       []openAITool    `json:"tools,omitempty"`
	ToolChoice  any             `json:"tool_choice,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
}

type openAIToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role      string           `json:"role"`
			Content   string           `json:"content"`
			ToolCalls []openAIToolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Invoke performs one chat-completion exchange.
func (c *OpenAIClient) Invoke(ctx context.Context, req Request) (*Outcome, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	messages := make([]openAIMessage, 0, len(req.Messages)+1)
	if req.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, openAIMessage{Role: m.Role, Content: m.Content})
	}

	body := openAIRequest{
		Model:       c.model,
		Messages:    messages,
		Tools:       mapTools(req.Tools),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}
	if len(req.Tools) > 0 {
		if req.ForceTool != "" {
			body.ToolChoice = map[string]any{
				"type":     "function",
				"function": map[string]any{"name": req.ForceTool},
			}
		} else {
			body.ToolChoice = "auto"
		}
	}

	logging.ProviderDebug("[OpenAI] Invoke: model=%s messages=%d tools=%d force=%q",
		c.model, len(messages), len(req.Tools), req.ForceTool)

	resp, err := c.execute(ctx, body)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	usage := types.Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		tc := msg.ToolCalls[0]
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			logging.ProviderError("[OpenAI] malformed tool arguments for %s: %v", tc.Function.Name, err)
			return &Outcome{
				Kind:   KindFailure,
				Reason: fmt.Sprintf("could not parse arguments for tool %s", tc.Function.Name),
				Usage:  usage,
			}, nil
		}
		return &Outcome{
			Kind:  KindToolCall,
			Call:  &types.ToolCall{ID: tc.ID, Name: tc.Function.Name, Input: args},
			Usage: usage,
		}, nil
	}

	content := strings.TrimSpace(msg.Content)

	// Degraded mode: the Groq family sometimes serializes the call into
	// the content field instead of tool_calls.
	if c.textFallback && LooksLikeInlineCall(content) {
		call, ok, err := DecodeInlineCall(content)
		if err != nil {
			return &Outcome{Kind: KindFailure, Reason: err.Error(), Usage: usage}, nil
		}
		if ok {
			logging.ProviderDebug("[OpenAI] recovered inline tool call: %s", call.Name)
			return &Outcome{Kind: KindToolCall, Call: call, Usage: usage}, nil
		}
	}

	return &Outcome{Kind: KindText, Text: content, Usage: usage}, nil
}

func (c *OpenAIClient) execute(ctx context.Context, body openAIRequest) (*openAIResponse, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed openAIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	return &parsed, nil
}

func mapTools(tools []types.ToolDefinition) []openAITool {
	if len(tools) == 0 {
		return nil
	}
	result := make([]openAITool, len(tools))
	for i, t := range tools {
		result[i] = openAITool{
			Type: "function",
			Function: openAIFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		}
	}
	return result
}
