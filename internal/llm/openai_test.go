package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newOpenAITestServer(t *testing.T, handler func(body map[string]any) (int, string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		status, resp := handler(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIGateway_Complete(t *testing.T) {
	var seen map[string]any
	srv := newOpenAITestServer(t, func(body map[string]any) (int, string) {
		seen = body
		return http.StatusOK, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "test-model",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "let me check",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "calculate", "arguments": "{\"expression\":\"2+2\"}"}
					}]
				}
			}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
		}`
	})

	g, err := NewOpenAIGateway(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "test-model"})
	if err != nil {
		t.Fatalf("NewOpenAIGateway failed: %v", err)
	}

	c, err := g.Complete(context.Background(), Request{
		Messages: []Message{
			SystemMessage("sys"),
			UserMessage("what is 2+2"),
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "old", Name: "calculate", Arguments: "{}"}}},
			ToolMessage("old", "calculate", `{"result":0}`),
		},
		Tools: []ToolSchema{{Name: "calculate", Description: "math", Parameters: map[string]any{"type": "object"}}},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if c.Content != "let me check" {
		t.Errorf("Content = %q", c.Content)
	}
	if len(c.ToolCalls) != 1 || c.ToolCalls[0].ID != "call_1" || c.ToolCalls[0].Name != "calculate" {
		t.Errorf("ToolCalls = %+v", c.ToolCalls)
	}
	if c.Usage.InputTokens != 12 || c.Usage.OutputTokens != 4 {
		t.Errorf("Usage = %+v", c.Usage)
	}

	if seen["model"] != "test-model" {
		t.Errorf("model sent = %v", seen["model"])
	}
	msgs, _ := seen["messages"].([]any)
	if len(msgs) != 4 {
		t.Fatalf("messages sent = %d, want 4", len(msgs))
	}
	toolMsg, _ := msgs[3].(map[string]any)
	if toolMsg["role"] != "tool" || toolMsg["tool_call_id"] != "old" {
		t.Errorf("tool message = %v", toolMsg)
	}
	tools, _ := seen["tools"].([]any)
	if len(tools) != 1 {
		t.Errorf("tools sent = %d, want 1", len(tools))
	}
}

func TestOpenAIGateway_Unauthorized(t *testing.T) {
	srv := newOpenAITestServer(t, func(body map[string]any) (int, string) {
		return http.StatusUnauthorized, `{"error": {"message": "No auth credentials found", "code": 401}}`
	})

	g, err := NewOpenAIGateway(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL, Model: "m"})
	if err != nil {
		t.Fatalf("NewOpenAIGateway failed: %v", err)
	}

	_, err = g.Complete(context.Background(), Request{Messages: []Message{UserMessage("hi")}})
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized APIError, got %v", err)
	}
}

func TestNewOpenAIGateway_Validation(t *testing.T) {
	if _, err := NewOpenAIGateway(OpenAIConfig{Model: "m"}); err == nil {
		t.Error("expected error without API key")
	}
	if _, err := NewOpenAIGateway(OpenAIConfig{APIKey: "k"}); err == nil {
		t.Error("expected error without model")
	}
}
