package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/subhasish12345/SHOPSAGE/internal/model"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// GoogleProvider implements Provider using the Gemini API through the genai SDK.
type GoogleProvider struct {
	client *genai.Client
	model  string
}

// NewGoogleProvider creates a new Google Gemini provider. baseURL overrides
// the API endpoint when non-empty.
func NewGoogleProvider(ctx context.Context, apiKey, model, baseURL string) (*GoogleProvider, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GoogleProvider{client: client, model: model}, nil
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	modelName := req.Model
	if modelName == "" {
		modelName = p.model
	}

	var systemParts []*genai.Part
	var contents []*genai.Content
	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			systemParts = append(systemParts, genai.NewPartFromText(msg.Content))
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		}
	}
	if len(contents) == 0 {
		contents = append(contents, genai.NewContentFromText("", genai.RoleUser))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if len(systemParts) > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: systemParts}
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.JSONMode || len(req.Shape) > 0 {
		cfg.ResponseMIMEType = "application/json"
	}
	if len(req.Shape) > 0 {
		cfg.ResponseSchema = geminiSchema(req.Shape)
	}

	resp, err := p.client.Models.GenerateContent(ctx, modelName, contents, cfg)
	if err != nil {
		return nil, classifyGenAI(p.Name(), err)
	}

	out := &CompletionResponse{
		Content: resp.Text(),
		Model:   modelName,
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if len(resp.Candidates) > 0 {
		out.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// geminiSchema converts a shape into Gemini's OpenAPI-subset schema. Property
// order follows the shape so the model emits fields in declaration order.
func geminiSchema(fields model.Shape) *genai.Schema {
	return geminiObject("", fields)
}

func geminiObject(description string, fields []model.ShapeField) *genai.Schema {
	s := &genai.Schema{
		Type:        genai.TypeObject,
		Description: description,
		Properties:  make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		s.Properties[f.Name] = geminiField(f)
		s.PropertyOrdering = append(s.PropertyOrdering, f.Name)
		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}
	return s
}

func geminiField(f model.ShapeField) *genai.Schema {
	switch f.Kind {
	case schema.KindObject:
		return geminiObject(f.Description, f.Fields)
	case schema.KindArray:
		s := &genai.Schema{Type: genai.TypeArray, Description: f.Description}
		if f.Items != nil {
			s.Items = geminiField(*f.Items)
		}
		return s
	case schema.KindNumber:
		return &genai.Schema{Type: genai.TypeNumber, Description: f.Description}
	case schema.KindBoolean:
		return &genai.Schema{Type: genai.TypeBoolean, Description: f.Description}
	}
	return &genai.Schema{Type: genai.TypeString, Description: f.Description}
}
