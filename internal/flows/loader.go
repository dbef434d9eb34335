package flows

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/subhasish12345/SHOPSAGE/internal/flow"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// ErrFlowFile is returned when a flow file cannot be turned into a
// definition.
var ErrFlowFile = errors.New("invalid flow file")

// FieldSpec is the YAML form of a schema field.
type FieldSpec struct {
	Name        string      `yaml:"name"`
	Kind        schema.Kind `yaml:"kind"`
	Optional    bool        `yaml:"optional,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Items       *FieldSpec  `yaml:"items,omitempty"`
	Fields      []FieldSpec `yaml:"fields,omitempty"`
}

// FileSpec is the YAML form of a flow definition.
type FileSpec struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Input       []FieldSpec `yaml:"input"`
	Output      []FieldSpec `yaml:"output"`
	Template    string      `yaml:"template"`
}

// ParseDefinition decodes one YAML flow definition.
func ParseDefinition(data []byte) (flow.Definition, error) {
	var spec FileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return flow.Definition{}, fmt.Errorf("%w: %v", ErrFlowFile, err)
	}
	in, err := schema.New(fieldsOf(spec.Input)...)
	if err != nil {
		return flow.Definition{}, fmt.Errorf("%w: %s: input: %w", ErrFlowFile, spec.Name, err)
	}
	out, err := schema.New(fieldsOf(spec.Output)...)
	if err != nil {
		return flow.Definition{}, fmt.Errorf("%w: %s: output: %w", ErrFlowFile, spec.Name, err)
	}
	return flow.Definition{
		Name:        spec.Name,
		Description: spec.Description,
		Input:       in,
		Output:      out,
		Template:    spec.Template,
	}, nil
}

// LoadFiles reads every file matched by patterns. Patterns use doublestar
// syntax and are resolved relative to root unless absolute. Matches are
// de-duplicated and loaded in lexical order.
func LoadFiles(root string, patterns []string) ([]flow.Definition, error) {
	seen := make(map[string]bool)
	var paths []string
	for _, pattern := range patterns {
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(root, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("flow_files %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}
	sort.Strings(paths)

	defs := make([]flow.Definition, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read flow file: %w", err)
		}
		def, err := ParseDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func fieldsOf(specs []FieldSpec) []schema.Field {
	if len(specs) == 0 {
		return nil
	}
	out := make([]schema.Field, len(specs))
	for i, s := range specs {
		out[i] = fieldOf(s)
	}
	return out
}

func fieldOf(s FieldSpec) schema.Field {
	f := schema.Field{
		Name:        s.Name,
		Kind:        s.Kind,
		Required:    !s.Optional,
		Description: s.Description,
		Fields:      fieldsOf(s.Fields),
	}
	if s.Items != nil {
		items := fieldOf(*s.Items)
		f.Items = &items
	}
	return f
}
