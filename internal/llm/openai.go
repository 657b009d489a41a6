// Package llm is a minimal HTTP client for OpenAI-compatible chat-completion
// and embedding endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type Client struct {
	HTTPBaseURL string
	APIKey      string
	HTTPClient  *http.Client
}

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model               string          `json:"model"`
	Messages            []ChatMessage   `json:"messages"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	Temperature         *float64        `json:"temperature,omitempty"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string             `json:"type"`
	JSONSchema *jsonSchemaWrapper `json:"json_schema,omitempty"`
}

type jsonSchemaWrapper struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
	Strict bool            `json:"strict,omitempty"`
}

type chatCompletionChoice struct {
	Message struct {
		Content string          `json:"content"`
		Refusal json.RawMessage `json:"refusal,omitempty"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionResponse struct {
	Choices []chatCompletionChoice `json:"choices"`
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingDatum struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Data []embeddingDatum `json:"data"`
}

// WithSchema attaches a strict response-format schema to the request.
func (r *ChatCompletionRequest) WithSchema(name string, schema []byte) {
	if len(schema) == 0 {
		return
	}
	if strings.TrimSpace(name) == "" {
		name = "response"
	}
	r.ResponseFormat = &responseFormat{
		Type:       "json_schema",
		JSONSchema: &jsonSchemaWrapper{Name: name, Schema: schema, Strict: true},
	}
}

func (c Client) CreateChatCompletion(ctx context.Context, requestPayload ChatCompletionRequest) (string, error) {
	bodyBytes, status, postErr := c.post(ctx, "/chat/completions", requestPayload)
	if postErr != nil {
		return "", postErr
	}
	bodyPreview := truncateForLog(string(bodyBytes), 512)
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("llm http error %d: %s", status, bodyPreview)
	}

	var completion chatCompletionResponse
	if decodeErr := json.Unmarshal(bodyBytes, &completion); decodeErr != nil {
		return "", fmt.Errorf("decode chat completion: %w (body=%s)", decodeErr, bodyPreview)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices (body=%s)", bodyPreview)
	}

	choice := completion.Choices[0]
	trimmed := strings.TrimSpace(choice.Message.Content)
	if trimmed == "" {
		if refusal := decodeRefusal(choice.Message.Refusal); refusal != "" {
			return "", fmt.Errorf("chat completion refusal: %s", refusal)
		}
		return "", fmt.Errorf("chat completion returned empty message (finish_reason=%s body=%s)", choice.FinishReason, bodyPreview)
	}
	return trimmed, nil
}

// CreateEmbeddings encodes inputs with the given embedding model, preserving
// input order.
func (c Client) CreateEmbeddings(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	bodyBytes, status, postErr := c.post(ctx, "/embeddings", embeddingRequest{Model: model, Input: inputs})
	if postErr != nil {
		return nil, postErr
	}
	bodyPreview := truncateForLog(string(bodyBytes), 512)
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("embeddings http error %d: %s", status, bodyPreview)
	}

	var decoded embeddingResponse
	if decodeErr := json.Unmarshal(bodyBytes, &decoded); decodeErr != nil {
		return nil, fmt.Errorf("decode embeddings: %w (body=%s)", decodeErr, bodyPreview)
	}
	if len(decoded.Data) != len(inputs) {
		return nil, fmt.Errorf("embeddings returned %d vectors for %d inputs", len(decoded.Data), len(inputs))
	}

	vectors := make([][]float32, len(inputs))
	for _, datum := range decoded.Data {
		if datum.Index < 0 || datum.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings returned out-of-range index %d", datum.Index)
		}
		vectors[datum.Index] = datum.Embedding
	}
	return vectors, nil
}

func (c Client) post(ctx context.Context, path string, payload any) ([]byte, int, error) {
	requestBytes, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return nil, 0, marshalErr
	}
	httpRequest, buildErr := http.NewRequestWithContext(ctx, http.MethodPost, c.HTTPBaseURL+path, bytes.NewReader(requestBytes))
	if buildErr != nil {
		return nil, 0, buildErr
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	httpRequest.Header.Set("Authorization", "Bearer "+c.APIKey)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	httpResponse, httpErr := httpClient.Do(httpRequest)
	if httpErr != nil {
		return nil, 0, httpErr
	}
	defer func(closer io.ReadCloser) { _ = closer.Close() }(httpResponse.Body)

	bodyBytes, readErr := io.ReadAll(httpResponse.Body)
	if readErr != nil {
		return nil, 0, readErr
	}
	return bodyBytes, httpResponse.StatusCode, nil
}

func decodeRefusal(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var refusalString string
	if err := json.Unmarshal(raw, &refusalString); err == nil {
		return strings.TrimSpace(refusalString)
	}
	return strings.TrimSpace(truncateForLog(string(raw), 200))
}

func truncateForLog(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
