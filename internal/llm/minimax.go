package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

const minimaxBaseURL = "https://api.minimax.io/v1"

// MinimaxProvider implements Provider using the MiniMax API (OpenAI-compatible).
type MinimaxProvider struct {
	client *openai.Client
	model  string
}

// NewMinimaxProvider creates a new MiniMax provider.
func NewMinimaxProvider(apiKey string, model string) *MinimaxProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = minimaxBaseURL
	return &MinimaxProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *MinimaxProvider) Name() string {
	return "minimax"
}

// Complete uses JSON mode only; MiniMax requires temperature in (0.0, 1.0].
func (p *MinimaxProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return chatCompletion(ctx, p.client, p.Name(), p.model, req, chatOptions{clampTemperature: true})
}
