package prompt

import (
	"bytes"
	"fmt"

	"github.com/subhasish12345/SHOPSAGE/internal/model"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// Render merges validated input into t and pairs the result with the shape
// derived from output. It performs no I/O, and identical arguments always
// produce identical requests.
func Render(t *Template, input schema.Value, output *schema.Schema) (model.Request, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, templateData(t.input, input)); err != nil {
		return model.Request{}, fmt.Errorf("%w: %v", ErrTemplateRender, err)
	}
	return model.Request{
		Flow:   t.name,
		Prompt: buf.String(),
		Shape:  Shape(output),
	}, nil
}

// Shape derives the output descriptor from a schema, field by field.
func Shape(s *schema.Schema) model.Shape {
	return shapeFields(s.Fields())
}

func shapeFields(fields []schema.Field) []model.ShapeField {
	if len(fields) == 0 {
		return nil
	}
	out := make([]model.ShapeField, len(fields))
	for i, f := range fields {
		out[i] = shapeField(f)
	}
	return out
}

func shapeField(f schema.Field) model.ShapeField {
	sf := model.ShapeField{
		Name:        f.Name,
		Kind:        f.Kind,
		Required:    f.Required,
		Description: f.Description,
		Fields:      shapeFields(f.Fields),
	}
	if f.Items != nil {
		items := shapeField(*f.Items)
		sf.Items = &items
	}
	return sf
}
