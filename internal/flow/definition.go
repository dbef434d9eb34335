// Package flow registers decision flows and runs them through the
// validate, render, invoke and parse pipeline.
package flow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/subhasish12345/SHOPSAGE/internal/model"
	"github.com/subhasish12345/SHOPSAGE/internal/prompt"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// Definition binds a name to its input and output schemas and the prompt
// template that connects them.
type Definition struct {
	Name        string
	Description string
	Input       *schema.Schema
	Output      *schema.Schema
	Template    string
}

// compile checks the definition and parses its template.
func (d Definition) compile() (*prompt.Template, error) {
	switch {
	case d.Name == "":
		return nil, fmt.Errorf("%w: empty name", ErrInvalidDefinition)
	case strings.ContainsAny(d.Name, " \t\n/"):
		return nil, fmt.Errorf("%w: name %q contains whitespace or '/'", ErrInvalidDefinition, d.Name)
	case d.Input == nil:
		return nil, fmt.Errorf("%w: %s: nil input schema", ErrInvalidDefinition, d.Name)
	case d.Output == nil || d.Output.Len() == 0:
		return nil, fmt.Errorf("%w: %s: output schema has no fields", ErrInvalidDefinition, d.Name)
	case strings.TrimSpace(d.Template) == "":
		return nil, fmt.Errorf("%w: %s: empty template", ErrInvalidDefinition, d.Name)
	}
	t, err := prompt.Compile(d.Name, d.Template, d.Input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, d.Name, err)
	}
	return t, nil
}

type definitionJSON struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Input       model.Shape `json:"input"`
	Output      model.Shape `json:"output"`
	Template    string      `json:"template,omitempty"`
}

// MarshalJSON describes the definition with its schemas as field trees.
func (d Definition) MarshalJSON() ([]byte, error) {
	out := definitionJSON{
		Name:        d.Name,
		Description: d.Description,
		Template:    d.Template,
	}
	if d.Input != nil {
		out.Input = prompt.Shape(d.Input)
	}
	if d.Output != nil {
		out.Output = prompt.Shape(d.Output)
	}
	return json.Marshal(out)
}
