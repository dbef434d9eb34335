package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// ShapeField describes one field the model is asked to produce.
type ShapeField struct {
	Name        string       `json:"name"`
	Kind        schema.Kind  `json:"kind"`
	Required    bool         `json:"required"`
	Description string       `json:"description,omitempty"`
	Items       *ShapeField  `json:"items,omitempty"`
	Fields      []ShapeField `json:"fields,omitempty"`
}

// Shape is the ordered output descriptor sent alongside a prompt.
type Shape []ShapeField

// Request is a rendered prompt plus the output shape the reply must match.
type Request struct {
	Flow   string `json:"flow"`
	Prompt string `json:"prompt"`
	Shape  Shape  `json:"output_shape"`
}

// Usage reports token accounting for one model call.
type Usage struct {
	Model        string `json:"model,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Response is the model's reply. Payload is set when the boundary already
// produced a structured value; otherwise Raw holds the reply text.
type Response struct {
	Payload map[string]any
	Raw     string
	Usage   Usage
}

// Invoker delivers a request to a generative model. Implementations must not
// retry or cache; failures should be returned as *Error.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (*Response, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, req Request) (*Response, error)

// Invoke calls f(ctx, req).
func (f InvokerFunc) Invoke(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Describe renders the shape as plain-text instructions, one line per field,
// with nested members indented.
func (s Shape) Describe() string {
	var b strings.Builder
	describeFields(&b, s, 0)
	return strings.TrimRight(b.String(), "\n")
}

func describeFields(b *strings.Builder, fields []ShapeField, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range fields {
		req := "required"
		if !f.Required {
			req = "optional"
		}
		fmt.Fprintf(b, "%s- %s (%s, %s)", indent, f.Name, typeName(f), req)
		if f.Description != "" {
			fmt.Fprintf(b, ": %s", f.Description)
		}
		b.WriteString("\n")
		switch {
		case f.Kind == schema.KindObject:
			describeFields(b, f.Fields, depth+1)
		case f.Kind == schema.KindArray && f.Items != nil && f.Items.Kind == schema.KindObject:
			describeFields(b, f.Items.Fields, depth+1)
		}
	}
}

func typeName(f ShapeField) string {
	if f.Kind == schema.KindArray && f.Items != nil {
		return "array of " + typeName(*f.Items)
	}
	return string(f.Kind)
}

// JSONSchema returns the shape as a JSON Schema object document.
func (s Shape) JSONSchema() map[string]any {
	return objectSchema("", s)
}

// MarshalJSONSchema encodes JSONSchema() compactly. Map keys are sorted by
// encoding/json, so the output is stable.
func (s Shape) MarshalJSONSchema() ([]byte, error) {
	return json.Marshal(s.JSONSchema())
}

func objectSchema(description string, fields []ShapeField) map[string]any {
	props := make(map[string]any, len(fields))
	required := []string{}
	for _, f := range fields {
		props[f.Name] = fieldSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
	if description != "" {
		out["description"] = description
	}
	return out
}

func fieldSchema(f ShapeField) map[string]any {
	switch f.Kind {
	case schema.KindObject:
		return objectSchema(f.Description, f.Fields)
	case schema.KindArray:
		out := map[string]any{"type": "array"}
		if f.Items != nil {
			out["items"] = fieldSchema(*f.Items)
		}
		if f.Description != "" {
			out["description"] = f.Description
		}
		return out
	}
	out := map[string]any{"type": string(f.Kind)}
	if f.Description != "" {
		out["description"] = f.Description
	}
	return out
}
