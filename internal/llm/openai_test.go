package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newChatServer(t *testing.T, handler func(map[string]any) map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		var received map[string]any
		if err := json.NewDecoder(request.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		writer.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(writer).Encode(handler(received)); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
}

func chatPayload(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
}

func TestCreateChatCompletionSuccess(t *testing.T) {
	server := newChatServer(t, func(map[string]any) map[string]any {
		return chatPayload("  {\"ok\": true}  ")
	})
	defer server.Close()

	client := Client{HTTPBaseURL: server.URL, APIKey: "test"}
	result, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != `{"ok": true}` {
		t.Fatalf("expected trimmed content, got %q", result)
	}
}

func TestCreateChatCompletionSendsSchema(t *testing.T) {
	var captured map[string]any
	server := newChatServer(t, func(received map[string]any) map[string]any {
		captured = received
		return chatPayload("{}")
	})
	defer server.Close()

	client := Client{HTTPBaseURL: server.URL, APIKey: "test"}
	request := ChatCompletionRequest{Model: "m"}
	request.WithSchema("verdict", []byte(`{"type": "object"}`))
	if _, err := client.CreateChatCompletion(context.Background(), request); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	responseFormat, ok := captured["response_format"].(map[string]any)
	if !ok {
		t.Fatalf("request carried no response_format: %v", captured)
	}
	if responseFormat["type"] != "json_schema" {
		t.Fatalf("unexpected response_format type: %v", responseFormat["type"])
	}
	schema, ok := responseFormat["json_schema"].(map[string]any)
	if !ok || schema["name"] != "verdict" || schema["strict"] != true {
		t.Fatalf("unexpected json_schema wrapper: %v", responseFormat["json_schema"])
	}
}

func TestCreateChatCompletionEmptyMessageErrors(t *testing.T) {
	server := newChatServer(t, func(map[string]any) map[string]any {
		return map[string]any{
			"choices": []any{
				map[string]any{
					"message":       map[string]any{"role": "assistant", "content": ""},
					"finish_reason": "length",
				},
			},
		}
	})
	defer server.Close()

	client := Client{HTTPBaseURL: server.URL, APIKey: "test"}
	_, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	if err == nil {
		t.Fatalf("expected an error for an empty message")
	}
	if !strings.Contains(err.Error(), "length") {
		t.Fatalf("error must surface the finish reason, got %v", err)
	}
}

func TestCreateChatCompletionRefusal(t *testing.T) {
	server := newChatServer(t, func(map[string]any) map[string]any {
		return map[string]any{
			"choices": []any{
				map[string]any{
					"message":       map[string]any{"role": "assistant", "content": "", "refusal": "cannot comply"},
					"finish_reason": "stop",
				},
			},
		}
	})
	defer server.Close()

	client := Client{HTTPBaseURL: server.URL, APIKey: "test"}
	_, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	if err == nil || !strings.Contains(err.Error(), "cannot comply") {
		t.Fatalf("expected the refusal text in the error, got %v", err)
	}
}

func TestCreateChatCompletionHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		http.Error(writer, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := Client{HTTPBaseURL: server.URL, APIKey: "test"}
	_, err := client.CreateChatCompletion(context.Background(), ChatCompletionRequest{Model: "m"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected the status code in the error, got %v", err)
	}
}

func TestCreateEmbeddingsPreservesInputOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		// Deliberately out of order; the client must reassemble by index.
		payload := map[string]any{
			"data": []any{
				map[string]any{"index": 1, "embedding": []float32{0, 1}},
				map[string]any{"index": 0, "embedding": []float32{1, 0}},
			},
		}
		if err := json.NewEncoder(writer).Encode(payload); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer server.Close()

	client := Client{HTTPBaseURL: server.URL, APIKey: "test"}
	vectors, err := client.CreateEmbeddings(context.Background(), "embed-model", []string{"first", "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Fatalf("vectors not assembled by index: %v", vectors)
	}
}

func TestCreateEmbeddingsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		payload := map[string]any{
			"data": []any{map[string]any{"index": 0, "embedding": []float32{1}}},
		}
		if err := json.NewEncoder(writer).Encode(payload); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer server.Close()

	client := Client{HTTPBaseURL: server.URL, APIKey: "test"}
	if _, err := client.CreateEmbeddings(context.Background(), "embed-model", []string{"a", "b"}); err == nil {
		t.Fatalf("expected an error for a vector count mismatch")
	}
}

func TestCreateEmbeddingsNoInputs(t *testing.T) {
	client := Client{HTTPBaseURL: "http://unused.invalid", APIKey: "test"}
	vectors, err := client.CreateEmbeddings(context.Background(), "embed-model", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectors != nil {
		t.Fatalf("expected no vectors, got %v", vectors)
	}
}
