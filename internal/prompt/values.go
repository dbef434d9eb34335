package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// jsonObject and jsonArray print as compact JSON when interpolated, while
// still allowing {{.a.b}} lookups and {{range}} iteration.
type jsonObject map[string]any

type jsonArray []any

// absent stands in for an optional field that was not supplied. It prints
// as the empty string, is false in {{if}}/{{with}}, and encodes as null.
type absent string

func (o jsonObject) String() string {
	s, err := encodeJSON(o)
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(o))
	}
	return s
}

func (o jsonObject) MarshalJSON() ([]byte, error) {
	plain := make(map[string]any, len(o))
	for k, v := range o {
		if isAbsent(v) {
			continue
		}
		plain[k] = v
	}
	return marshalCompact(plain)
}

func (a jsonArray) String() string {
	s, err := encodeJSON(a)
	if err != nil {
		return fmt.Sprintf("%v", []any(a))
	}
	return s
}

func (absent) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func isAbsent(v any) bool {
	_, ok := v.(absent)
	return ok
}

// encodeJSON encodes v compactly without HTML escaping. Object keys come out
// sorted, so equal values always encode identically.
func encodeJSON(v any) (string, error) {
	b, err := marshalCompact(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func textOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// templateData converts a validated value into template data, filling every
// absent optional field with an absent marker.
func templateData(fields []schema.Field, input schema.Value) jsonObject {
	obj := make(jsonObject, len(input))
	for k, v := range input {
		obj[k] = wrap(v)
	}
	fillAbsent(fields, obj)
	return obj
}

func wrap(v any) any {
	switch x := v.(type) {
	case schema.Value:
		return wrapMap(x)
	case map[string]any:
		return wrapMap(x)
	case []any:
		out := make(jsonArray, len(x))
		for i, item := range x {
			out[i] = wrap(item)
		}
		return out
	}
	return v
}

func wrapMap(m map[string]any) jsonObject {
	out := make(jsonObject, len(m))
	for k, v := range m {
		out[k] = wrap(v)
	}
	return out
}

func fillAbsent(fields []schema.Field, obj jsonObject) {
	for _, f := range fields {
		v, ok := obj[f.Name]
		if !ok {
			obj[f.Name] = absent("")
			continue
		}
		switch f.Kind {
		case schema.KindObject:
			if nested, ok := v.(jsonObject); ok {
				fillAbsent(f.Fields, nested)
			}
		case schema.KindArray:
			items, ok := v.(jsonArray)
			if !ok || f.Items == nil || f.Items.Kind != schema.KindObject {
				continue
			}
			for _, item := range items {
				if nested, ok := item.(jsonObject); ok {
					fillAbsent(f.Items.Fields, nested)
				}
			}
		}
	}
}
