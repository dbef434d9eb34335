package schema

import "fmt"

// Kind is the primitive type of a field.
type Kind string

const (
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// validKinds is the set of recognized kinds.
var validKinds = map[Kind]bool{
	KindString:  true,
	KindNumber:  true,
	KindBoolean: true,
	KindArray:   true,
	KindObject:  true,
}

// Valid reports whether k is a recognized kind.
func (k Kind) Valid() bool {
	return validKinds[k]
}

// Value is a structured value conforming to a Schema.
type Value map[string]any

// Field describes one named, typed, documented field.
//
// Array fields describe their elements with Items (whose Name is ignored).
// Object fields describe their members with Fields.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Description string
	Items       *Field
	Fields      []Field
}

// Optional returns a copy of the field that may be absent.
func (f Field) Optional() Field {
	f.Required = false
	return f
}

// String declares a required string field.
func String(name, description string) Field {
	return Field{Name: name, Kind: KindString, Required: true, Description: description}
}

// Number declares a required number field.
func Number(name, description string) Field {
	return Field{Name: name, Kind: KindNumber, Required: true, Description: description}
}

// Boolean declares a required boolean field.
func Boolean(name, description string) Field {
	return Field{Name: name, Kind: KindBoolean, Required: true, Description: description}
}

// ArrayOf declares a required array field whose elements match items.
func ArrayOf(name, description string, items Field) Field {
	return Field{Name: name, Kind: KindArray, Required: true, Description: description, Items: &items}
}

// Object declares a required nested object field.
func Object(name, description string, fields ...Field) Field {
	return Field{Name: name, Kind: KindObject, Required: true, Description: description, Fields: fields}
}

// clone returns a deep copy so registered schemas cannot be changed through
// slices handed out to callers.
func (f Field) clone() Field {
	out := f
	if f.Items != nil {
		items := f.Items.clone()
		out.Items = &items
	}
	if f.Fields != nil {
		out.Fields = make([]Field, len(f.Fields))
		for i, nested := range f.Fields {
			out.Fields[i] = nested.clone()
		}
	}
	return out
}

// Schema is an ordered, immutable set of fields.
type Schema struct {
	fields []Field
}

// New builds a Schema, checking that every field has a name and a valid
// kind and that names are unique at each nesting level.
func New(fields ...Field) (*Schema, error) {
	if err := checkFields("", fields); err != nil {
		return nil, err
	}
	s := &Schema{fields: make([]Field, len(fields))}
	for i, f := range fields {
		s.fields[i] = f.clone()
	}
	return s, nil
}

// MustNew is like New but panics on an invalid definition. It is intended
// for statically declared schemas.
func MustNew(fields ...Field) *Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Fields returns a copy of the schema's fields in declaration order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.clone()
	}
	return out
}

// Len returns the number of top-level fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

func checkFields(prefix string, fields []Field) error {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		path := joinPath(prefix, f.Name)
		if f.Name == "" {
			return fmt.Errorf("%w: empty field name under %q", ErrInvalidSchema, prefix)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, path)
		}
		seen[f.Name] = true
		if err := checkField(path, f); err != nil {
			return err
		}
	}
	return nil
}

func checkField(path string, f Field) error {
	if !f.Kind.Valid() {
		return fmt.Errorf("%w: field %q has unknown kind %q", ErrInvalidSchema, path, f.Kind)
	}
	switch f.Kind {
	case KindArray:
		if f.Items == nil {
			return fmt.Errorf("%w: array field %q has no item descriptor", ErrInvalidSchema, path)
		}
		return checkField(path+"[]", *f.Items)
	case KindObject:
		return checkFields(path, f.Fields)
	}
	return nil
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
