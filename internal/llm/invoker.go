package llm

import (
	"context"
	"strings"

	"github.com/subhasish12345/SHOPSAGE/internal/model"
)

// systemInstructions precede the shape description in every request.
const systemInstructions = `You answer with a single JSON object and nothing else.
The object must contain the fields listed below with exactly the stated types.
Do not wrap the object in markdown and do not add commentary.

Fields:
`

// InvokerConfig holds generation parameters applied to every call.
type InvokerConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Invoker adapts a Provider to model.Invoker. It sends the rendered prompt
// as the user turn and the output shape both as text in the system turn and
// as a structured response schema for providers that accept one.
type Invoker struct {
	provider Provider
	cfg      InvokerConfig
}

// NewInvoker creates an invoker over p.
func NewInvoker(p Provider, cfg InvokerConfig) *Invoker {
	return &Invoker{provider: p, cfg: cfg}
}

// Provider returns the wrapped provider.
func (i *Invoker) Provider() Provider {
	return i.provider
}

// Messages builds the conversation sent for req.
func Messages(req model.Request) []Message {
	var sys strings.Builder
	sys.WriteString(systemInstructions)
	sys.WriteString(req.Shape.Describe())
	return []Message{
		{Role: RoleSystem, Content: sys.String()},
		{Role: RoleUser, Content: req.Prompt},
	}
}

// Invoke performs exactly one completion call.
func (i *Invoker) Invoke(ctx context.Context, req model.Request) (*model.Response, error) {
	resp, err := i.provider.Complete(ctx, CompletionRequest{
		Model:       i.cfg.Model,
		Messages:    Messages(req),
		MaxTokens:   i.cfg.MaxTokens,
		Temperature: i.cfg.Temperature,
		JSONMode:    true,
		Shape:       req.Shape,
		ShapeName:   req.Flow,
	})
	if err != nil {
		return nil, model.Classify(i.provider.Name(), err)
	}
	return &model.Response{
		Raw: resp.Content,
		Usage: model.Usage{
			Model:        resp.Model,
			InputTokens:  resp.InputTokens,
			OutputTokens: resp.OutputTokens,
			FinishReason: resp.FinishReason,
		},
	}, nil
}

// EstimateRequestTokens approximates the input tokens req will consume.
func EstimateRequestTokens(req model.Request) int {
	total := 0
	for _, m := range Messages(req) {
		total += EstimateTokens(m.Content)
	}
	return total
}
