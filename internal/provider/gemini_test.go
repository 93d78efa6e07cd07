package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadmapper/internal/types"
)

func geminiServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, ":generateContent"))
		require.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		handler(w, body)
	}))
}

func geminiTestClient(baseURL string) *GeminiClient {
	return NewGeminiClient(Config{Provider: ProviderGemini, APIKey: "test-key", BaseURL: baseURL})
}

func TestGeminiInvokeFunctionCall(t *testing.T) {
	srv := geminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		tools, ok := body["tools"].([]any)
		require.True(t, ok)
		require.Len(t, tools, 1)

		writeJSON(w, map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role": "model",
					"parts": []map[string]any{{
						"functionCall": map[string]any{
							"name": "ask_clarifying_question",
							"args": map[string]any{"question": "What stack?", "category": "technical"},
						},
					}},
				},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{
				"promptTokenCount":     30,
				"candidatesTokenCount": 10,
				"totalTokenCount":      40,
			},
		})
	})
	defer srv.Close()

	out, err := geminiTestClient(srv.URL).Invoke(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, KindToolCall, out.Kind)
	assert.Equal(t, "ask_clarifying_question", out.Call.Name)
	assert.Equal(t, "What stack?", out.Call.Input["question"])
	assert.Equal(t, 40, out.Usage.TotalTokens)
}

func TestGeminiInvokeText(t *testing.T) {
	srv := geminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		sys, ok := body["systemInstruction"].(map[string]any)
		require.True(t, ok)
		parts := sys["parts"].([]any)
		require.Len(t, parts, 1)

		writeJSON(w, map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "Could you describe the project?"}},
				},
			}},
		})
	})
	defer srv.Close()

	out, err := geminiTestClient(srv.URL).Invoke(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, KindText, out.Kind)
	assert.Equal(t, "Could you describe the project?", out.Text)
}

func TestGeminiInvokeForceTool(t *testing.T) {
	srv := geminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		cfg, ok := body["toolConfig"].(map[string]any)
		require.True(t, ok)
		fc := cfg["functionCallingConfig"].(map[string]any)
		assert.Equal(t, "ANY", fc["mode"])
		allowed := fc["allowedFunctionNames"].([]any)
		assert.Equal(t, []any{"generate_node_subtasks"}, allowed)

		writeJSON(w, map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role": "model",
					"parts": []map[string]any{{
						"functionCall": map[string]any{
							"name": "generate_node_subtasks",
							"args": map[string]any{"node_id": "1"},
						},
					}},
				},
			}},
		})
	})
	defer srv.Close()

	req := sampleRequest()
	req.ForceTool = "generate_node_subtasks"
	out, err := geminiTestClient(srv.URL).Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, KindToolCall, out.Kind)
	assert.Equal(t, "generate_node_subtasks", out.Call.Name)
}

func TestGeminiInvokeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := geminiTestClient(srv.URL).Invoke(context.Background(), sampleRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiAssistantRoleMapping(t *testing.T) {
	var gotRoles []string
	srv := geminiServer(t, func(w http.ResponseWriter, body map[string]any) {
		for _, c := range body["contents"].([]any) {
			gotRoles = append(gotRoles, c.(map[string]any)["role"].(string))
		}
		writeJSON(w, map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": "ok"}},
				},
			}},
		})
	})
	defer srv.Close()

	req := sampleRequest()
	req.Messages = append(req.Messages, types.NewChatMessage("assistant", "Sounds good.", ""))
	_, err := geminiTestClient(srv.URL).Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "model"}, gotRoles)
}
