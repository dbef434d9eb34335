package llm

import "context"

// Provider defines the interface for LLM providers.
//
// Complete must not retry. Errors should be *model.Error so callers can tell
// transient failures from fatal ones.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}
