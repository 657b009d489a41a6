package workflow

import (
	"context"
	"encoding/json"
	"strings"
)

// Client is the opaque language-model capability the workflow depends on:
// run a prompt, get structured text back, nondeterministic across calls.
type Client interface {
	Chat(ctx context.Context, request LLMRequest) (LLMResponse, error)
}

type LLMRequest struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	JSONSchema   []byte
	MaxTokens    int
	Temperature  float64
	Model        string
}

type LLMResponse struct {
	RawText string
}

// DecodeStrictJSON parses raw into T, rejecting unknown fields.
func DecodeStrictJSON[T any](raw string) (T, error) {
	var zero T
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	var out T
	if err := dec.Decode(&out); err != nil {
		return zero, err
	}
	return out, nil
}

func generateTyped[T any](ctx context.Context, client Client, request LLMRequest) (T, error) {
	response, chatErr := client.Chat(ctx, request)
	if chatErr != nil {
		var zero T
		return zero, chatErr
	}
	return DecodeStrictJSON[T](response.RawText)
}
