package stage

import (
	"errors"
	"testing"

	"vellum/internal/services"
)

func TestParseRequestSnapshot_Valid(t *testing.T) {
	raw := `{"template_id": " artist-standard ", "entity": {"name": "Ana Pop"}, "terms": {"duration_years": 3}}`
	request, err := ParseRequestSnapshot(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if request.TemplateID != "artist-standard" {
		t.Fatalf("unexpected template id: %q", request.TemplateID)
	}
}

func TestParseRequestSnapshot_Empty(t *testing.T) {
	_, err := ParseRequestSnapshot("")
	if err == nil {
		t.Fatal("expected error for empty snapshot")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseRequestSnapshot_Invalid(t *testing.T) {
	_, err := ParseRequestSnapshot("{invalid json")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
