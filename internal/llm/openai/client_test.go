package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cvquery-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", "gpt-4o-mini", 5*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	client.baseURL = srv.URL
	return client
}

func TestGenerateStructuredSendsSchemaFormat(t *testing.T) {
	var captured map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &captured)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"answer":"ok"}`}},
			},
		})
	})

	raw, err := client.GenerateStructured(context.Background(), llm.StructuredRequest{
		System:     "system prompt",
		Prompt:     "user prompt",
		SchemaName: "test_schema",
		Schema:     json.RawMessage(`{"type":"object"}`),
	})
	if err != nil {
		t.Fatalf("GenerateStructured: %v", err)
	}
	if string(raw) != `{"answer":"ok"}` {
		t.Fatalf("raw = %s", raw)
	}

	format, ok := captured["response_format"].(map[string]any)
	if !ok || format["type"] != "json_schema" {
		t.Fatalf("response_format = %+v", captured["response_format"])
	}
	schema, _ := format["json_schema"].(map[string]any)
	if schema["name"] != "test_schema" || schema["strict"] != true {
		t.Fatalf("json_schema = %+v", schema)
	}
	messages, _ := captured["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %+v", messages)
	}
}

func TestGenerateStructuredAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "rate_limit_error"},
		})
	})

	_, err := client.GenerateStructured(context.Background(), llm.StructuredRequest{Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateStructuredNon200NonJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>Bad Gateway</html>"))
	})

	_, err := client.GenerateStructured(context.Background(), llm.StructuredRequest{Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "http status 502") {
		t.Fatalf("err = %v, want status in message", err)
	}
}

func TestGenerateStructuredNon200WithErrorBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream exploded", "type": "server_error"},
		})
	})

	_, err := client.GenerateStructured(context.Background(), llm.StructuredRequest{Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "http status 500") || !strings.Contains(err.Error(), "upstream exploded") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateStructuredRejectsInvalidJSONContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "{not json"}},
			},
		})
	})

	_, err := client.GenerateStructured(context.Background(), llm.StructuredRequest{Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "invalid JSON") {
		t.Fatalf("err = %v", err)
	}
}

func TestGenerateStructuredMissingChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.GenerateStructured(context.Background(), llm.StructuredRequest{Prompt: "p"})
	if err == nil || !strings.Contains(err.Error(), "missing choices") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", "model", time.Second); err == nil {
		t.Fatal("expected error for empty api key")
	}
	if _, err := NewClient("key", "", time.Second); err == nil {
		t.Fatal("expected error for empty model")
	}
}
