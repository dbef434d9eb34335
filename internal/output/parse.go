// Package output turns a model reply into a validated flow output.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/subhasish12345/SHOPSAGE/internal/model"
	"github.com/subhasish12345/SHOPSAGE/internal/schema"
)

// Parse checks resp against s. The structured payload is preferred; when the
// provider only returned text, the text must hold exactly one JSON object,
// optionally wrapped in a markdown code fence. There is a single attempt and
// no repair.
func Parse(s *schema.Schema, resp *model.Response) (schema.Value, schema.FieldErrors) {
	if resp == nil {
		return nil, rootError("empty model response")
	}
	if resp.Payload != nil {
		return schema.Validate(s, resp.Payload)
	}

	payload, err := Decode(resp.Raw)
	if err != nil {
		return nil, rootError(err.Error())
	}
	return schema.Validate(s, payload)
}

// Decode extracts the JSON object from a raw reply.
func Decode(raw string) (map[string]any, error) {
	text := StripFences(raw)
	if text == "" {
		return nil, fmt.Errorf("model reply is empty")
	}
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("model reply is not valid JSON")
	}
	if parsed := gjson.Parse(text); !parsed.IsObject() {
		return nil, fmt.Errorf("model reply is a JSON %s, not an object", jsonType(parsed))
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("json parse: %w", err)
	}
	return payload, nil
}

// StripFences extracts the body of a ``` or ```json fence. The fence may
// follow a line of preamble, and the closing fence may share a line with the
// JSON. A reply that starts with a JSON object is returned unchanged.
func StripFences(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		return raw
	}
	start := strings.Index(raw, fence)
	if start < 0 {
		return raw
	}
	body := raw[start+len(fence):]
	// Drop a language tag such as "json" on the opening line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	}
	if end := strings.Index(body, fence); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

const fence = "```"

func rootError(reason string) schema.FieldErrors {
	return schema.FieldErrors{{Expected: schema.KindObject, Reason: reason}}
}

func jsonType(r gjson.Result) string {
	switch {
	case r.IsArray():
		return "array"
	case r.Type == gjson.String:
		return "string"
	case r.Type == gjson.Number:
		return "number"
	case r.Type == gjson.True || r.Type == gjson.False:
		return "boolean"
	case r.Type == gjson.Null:
		return "null"
	}
	return "value"
}
