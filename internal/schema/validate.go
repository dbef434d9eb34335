package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Validate checks value against s and returns a projection of value that
// contains only the declared fields.
//
// Validation is exhaustive: every offending field is reported, in schema
// order. Kinds are matched strictly with no coercion. A JSON null counts as
// an absent field. On failure the returned Value is nil.
func Validate(s *Schema, value any) (Value, FieldErrors) {
	obj, ok := asObject(value)
	if !ok {
		return nil, FieldErrors{{
			Expected: KindObject,
			Reason:   fmt.Sprintf("expected object, got %s", describe(value)),
		}}
	}

	var errs FieldErrors
	out := validateFields("", s.fields, obj, &errs)
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func validateFields(prefix string, fields []Field, obj map[string]any, errs *FieldErrors) Value {
	out := make(Value, len(fields))
	for _, f := range fields {
		path := joinPath(prefix, f.Name)
		raw, present := obj[f.Name]
		if !present || raw == nil {
			if f.Required {
				*errs = append(*errs, FieldError{Path: path, Expected: f.Kind, Reason: "required field is missing"})
			}
			continue
		}
		if v, ok := validateValue(path, f, raw, errs); ok {
			out[f.Name] = v
		}
	}
	return out
}

func validateValue(path string, f Field, raw any, errs *FieldErrors) (any, bool) {
	mismatch := func() (any, bool) {
		*errs = append(*errs, FieldError{
			Path:     path,
			Expected: f.Kind,
			Reason:   fmt.Sprintf("expected %s, got %s", f.Kind, describe(raw)),
		})
		return nil, false
	}

	switch f.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return mismatch()
		}
		return s, true

	case KindBoolean:
		b, ok := raw.(bool)
		if !ok {
			return mismatch()
		}
		return b, true

	case KindNumber:
		if !isNumber(raw) {
			return mismatch()
		}
		return raw, true

	case KindArray:
		items, ok := asSlice(raw)
		if !ok {
			return mismatch()
		}
		out := make([]any, len(items))
		valid := true
		for i, item := range items {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			v, ok := validateValue(itemPath, *f.Items, item, errs)
			if !ok {
				valid = false
				continue
			}
			out[i] = v
		}
		return out, valid

	case KindObject:
		obj, ok := asObject(raw)
		if !ok {
			return mismatch()
		}
		before := len(*errs)
		v := validateFields(path, f.Fields, obj, errs)
		return v, len(*errs) == before
	}

	return mismatch()
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Value:
		return m, m != nil
	case map[string]any:
		return m, m != nil
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func isNumber(v any) bool {
	switch n := v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	case json.Number:
		_, err := n.Float64()
		return err == nil
	}
	return false
}

// describe names the JSON kind of v for error messages.
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case Value, map[string]any:
		return "object"
	}
	if isNumber(v) {
		return "number"
	}
	if _, ok := asSlice(v); ok {
		return "array"
	}
	return fmt.Sprintf("%T", v)
}
