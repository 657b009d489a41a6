package llm

import (
	"context"
	"strings"

	"github.com/temirov/procurement-flow/internal/workflow"
)

// Adapter adapts workflow.LLMRequest to the concrete HTTP client and serves
// as the pipeline's embedder.
type Adapter struct {
	Client              Client
	DefaultModel        string
	DefaultTemp         float64
	DefaultTokens       int
	SupportsTemperature bool
	EmbeddingModel      string
}

func (a Adapter) Chat(ctx context.Context, request workflow.LLMRequest) (workflow.LLMResponse, error) {
	model := request.Model
	if strings.TrimSpace(model) == "" {
		model = a.DefaultModel
	}

	cr := ChatCompletionRequest{
		Model: model,
		Messages: []ChatMessage{
			{Role: "system", Content: strings.TrimSpace(request.SystemPrompt)},
			{Role: "user", Content: strings.TrimSpace(request.UserPrompt)},
		},
		MaxCompletionTokens: chooseInt(request.MaxTokens, a.DefaultTokens),
	}
	cr.WithSchema(request.SchemaName, request.JSONSchema)

	// Many 2025 models only accept the server-default temperature; only send
	// one when the model supports it and the resolved value is meaningful.
	resolvedTemp := chooseFloat(request.Temperature, a.DefaultTemp)
	if a.SupportsTemperature && resolvedTemp != 0 && resolvedTemp != 1 {
		cr.Temperature = &resolvedTemp
	}

	rawText, err := a.Client.CreateChatCompletion(ctx, cr)
	if err != nil {
		return workflow.LLMResponse{}, err
	}
	return workflow.LLMResponse{RawText: rawText}, nil
}

func (a Adapter) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	return a.Client.CreateEmbeddings(ctx, a.EmbeddingModel, inputs)
}

func chooseInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

func chooseFloat(a, b float64) float64 {
	if a > 0 {
		return a
	}
	return b
}
