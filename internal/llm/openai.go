package llm

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/subhasish12345/SHOPSAGE/internal/model"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAIProviderWithConfig creates an OpenAI provider from a client
// configuration, e.g. one pointing at a compatible gateway.
func NewOpenAIProviderWithConfig(cfg openai.ClientConfig, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return chatCompletion(ctx, p.client, p.Name(), p.model, req, chatOptions{structured: true})
}

// chatOptions tunes chatCompletion for OpenAI-compatible backends.
type chatOptions struct {
	// structured sends the shape as a json_schema response format instead
	// of plain JSON mode.
	structured bool
	// clampTemperature keeps the temperature within (0, 1].
	clampTemperature bool
}

// chatCompletion is shared by every provider that speaks the OpenAI chat
// completions protocol.
func chatCompletion(ctx context.Context, client *openai.Client, provider, defaultModel string, req CompletionRequest, opts chatOptions) (*CompletionResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	temp := req.Temperature
	if opts.clampTemperature {
		if temp <= 0 {
			temp = 0.01
		} else if temp > 1.0 {
			temp = 1.0
		}
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: float32(temp),
	}

	switch {
	case opts.structured && len(req.Shape) > 0:
		def := shapeDefinition(req.Shape)
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName(req.ShapeName),
				Schema: &def,
			},
		}
	case req.JSONMode || len(req.Shape) > 0:
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return nil, classifyOpenAI(provider, err)
	}

	var content, finishReason string
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		finishReason = string(resp.Choices[0].FinishReason)
	}

	return &CompletionResponse{
		Content:      content,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		Model:        resp.Model,
		FinishReason: finishReason,
	}, nil
}

// schemaName returns a response_format name, which OpenAI restricts to
// [a-zA-Z0-9_-].
func schemaName(name string) string {
	if name == "" {
		return "flow_output"
	}
	out := []rune(name)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// shapeDefinition converts a shape into a go-openai JSON Schema definition.
func shapeDefinition(fields model.Shape) jsonschema.Definition {
	return objectDefinition("", fields)
}

func objectDefinition(description string, fields []model.ShapeField) jsonschema.Definition {
	def := jsonschema.Definition{
		Type:        jsonschema.Object,
		Description: description,
		Properties:  make(map[string]jsonschema.Definition, len(fields)),
		Required:    []string{},
	}
	for _, f := range fields {
		def.Properties[f.Name] = fieldDefinition(f)
		if f.Required {
			def.Required = append(def.Required, f.Name)
		}
	}
	return def
}

func fieldDefinition(f model.ShapeField) jsonschema.Definition {
	switch f.Kind {
	case schema.KindObject:
		return objectDefinition(f.Description, f.Fields)
	case schema.KindArray:
		def := jsonschema.Definition{Type: jsonschema.Array, Description: f.Description}
		if f.Items != nil {
			items := fieldDefinition(*f.Items)
			def.Items = &items
		}
		return def
	case schema.KindNumber:
		return jsonschema.Definition{Type: jsonschema.Number, Description: f.Description}
	case schema.KindBoolean:
		return jsonschema.Definition{Type: jsonschema.Boolean, Description: f.Description}
	}
	return jsonschema.Definition{Type: jsonschema.String, Description: f.Description}
}
