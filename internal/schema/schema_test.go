package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func shipmentSchema() *Schema {
	return MustNew(
		Object("shipmentData", "Shipment data.",
			String("orderId", "The ID of the order."),
			Object("location", "Current location.",
				Number("latitude", "Latitude."),
				Number("longitude", "Longitude."),
			),
		),
		String("trafficConditions", "Traffic."),
		ArrayOf("tags", "Free-form tags.", String("", "A tag.")).Optional(),
	)
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(String("a", ""), Number("a", ""))
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestNewRejectsNestedDuplicateNames(t *testing.T) {
	_, err := New(Object("o", "", String("x", ""), String("x", "")))
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestNewRejectsBadFields(t *testing.T) {
	tests := []struct {
		name  string
		field Field
	}{
		{"empty name", Field{Kind: KindString}},
		{"unknown kind", Field{Name: "x", Kind: "date"}},
		{"array without items", Field{Name: "x", Kind: KindArray}},
		{"array with bad items", ArrayOf("x", "", Field{Kind: "uuid"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.field); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFieldsReturnsCopy(t *testing.T) {
	s := shipmentSchema()
	fields := s.Fields()
	fields[0].Name = "mutated"
	fields[0].Fields[0].Name = "mutated"

	f := s.Fields()[0]
	if f.Name != "shipmentData" {
		t.Fatalf("first field = %q", f.Name)
	}
	if f.Fields[0].Name != "orderId" {
		t.Errorf("schema was mutated through Fields(): %q", f.Fields[0].Name)
	}
}

func TestValidateAcceptsConformingValue(t *testing.T) {
	in := map[string]any{
		"shipmentData": map[string]any{
			"orderId":  "o-1",
			"location": map[string]any{"latitude": 12.5, "longitude": -3},
		},
		"trafficConditions": "heavy",
	}

	got, errs := Validate(shipmentSchema(), in)
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := Value{
		"shipmentData": Value{
			"orderId":  "o-1",
			"location": Value{"latitude": 12.5, "longitude": -3},
		},
		"trafficConditions": "heavy",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("validated value mismatch (-want +got):\n%s", diff)
	}
}

func TestValidateReportsEveryError(t *testing.T) {
	in := map[string]any{
		"shipmentData": map[string]any{
			"location": map[string]any{"latitude": "12.5", "longitude": true},
		},
		"tags": []any{"ok", 7},
	}

	_, errs := Validate(shipmentSchema(), in)
	want := []string{
		"shipmentData.orderId",
		"shipmentData.location.latitude",
		"shipmentData.location.longitude",
		"trafficConditions",
		"tags[1]",
	}
	if diff := cmp.Diff(want, errs.Paths()); diff != "" {
		t.Errorf("error paths mismatch (-want +got):\n%s", diff)
	}
	if errs[1].Expected != KindNumber {
		t.Errorf("expected kind number, got %q", errs[1].Expected)
	}
	if errs[1].Reason != "expected number, got string" {
		t.Errorf("unexpected reason %q", errs[1].Reason)
	}
}

func TestValidateNoCoercion(t *testing.T) {
	s := MustNew(Number("n", ""), Boolean("b", ""), String("s", ""))
	_, errs := Validate(s, map[string]any{"n": "1", "b": "true", "s": 1})
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs), errs)
	}
}

func TestValidateOptionalAbsentAndNull(t *testing.T) {
	s := MustNew(String("id", ""), ArrayOf("h", "", String("", "")).Optional())

	for _, in := range []map[string]any{
		{"id": "u1"},
		{"id": "u1", "h": nil},
	} {
		got, errs := Validate(s, in)
		if errs != nil {
			t.Fatalf("unexpected errors for %v: %v", in, errs)
		}
		if _, ok := got["h"]; ok {
			t.Errorf("absent optional field should not appear in output: %v", got)
		}
	}
}

func TestValidateRequiredNullIsMissing(t *testing.T) {
	s := MustNew(String("id", ""))
	_, errs := Validate(s, map[string]any{"id": nil})
	if len(errs) != 1 || errs[0].Reason != "required field is missing" {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidateDropsUnknownFields(t *testing.T) {
	s := MustNew(String("id", ""))
	got, errs := Validate(s, map[string]any{"id": "x", "extra": 1})
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := got["extra"]; ok {
		t.Error("unknown field should be dropped")
	}
}

func TestValidateNumberTypes(t *testing.T) {
	s := MustNew(Number("n", ""))
	for _, n := range []any{1, int64(2), uint8(3), float32(1.5), 2.25, json.Number("42")} {
		if _, errs := Validate(s, map[string]any{"n": n}); errs != nil {
			t.Errorf("%T should be accepted as number: %v", n, errs)
		}
	}
}

func TestValidateTypedSlices(t *testing.T) {
	s := MustNew(ArrayOf("ids", "", String("", "")))
	got, errs := Validate(s, map[string]any{"ids": []string{"p3", "p9"}})
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if diff := cmp.Diff([]any{"p3", "p9"}, got["ids"]); diff != "" {
		t.Errorf("array not normalised (-want +got):\n%s", diff)
	}
}

func TestValidateNonObject(t *testing.T) {
	s := MustNew(String("id", ""))
	for _, in := range []any{nil, "x", []any{}, 3} {
		_, errs := Validate(s, in)
		if len(errs) != 1 || errs[0].Path != "" || errs[0].Expected != KindObject {
			t.Errorf("Validate(%v) = %v, want single root error", in, errs)
		}
	}
}

func TestFieldErrorsError(t *testing.T) {
	errs := FieldErrors{
		{Path: "a", Reason: "required field is missing"},
		{Path: "b.c", Reason: "expected number, got string"},
	}
	want := "a: required field is missing; b.c: expected number, got string"
	if errs.Error() != want {
		t.Errorf("got %q, want %q", errs.Error(), want)
	}
}
