package api

import "testing"

func TestRequestField(t *testing.T) {
	payload := `{"template_id":"artist-standard","series":"lic"}`
	if got := RequestField(payload, "template_id", ""); got != "artist-standard" {
		t.Fatalf("template_id = %q", got)
	}
	if got := RequestField(payload, "missing", "fallback"); got != "fallback" {
		t.Fatalf("missing field = %q, want fallback", got)
	}
	if got := RequestField("", "template_id", "fallback"); got != "fallback" {
		t.Fatalf("empty payload = %q, want fallback", got)
	}
	if got := RequestField("{broken", "template_id", "fallback"); got != "fallback" {
		t.Fatalf("broken payload = %q, want fallback", got)
	}
}

func TestRequestEntityName(t *testing.T) {
	payload := `{"template_id":"artist-standard","entity":{"name":"Ana Pop"}}`
	if got := RequestEntityName(payload); got != "Ana Pop" {
		t.Fatalf("entity name = %q, want Ana Pop", got)
	}
	if got := RequestEntityName(`{"entity":{}}`); got != "Unknown" {
		t.Fatalf("missing name = %q, want Unknown", got)
	}
	if got := RequestEntityName(""); got != "Unknown" {
		t.Fatalf("empty payload = %q, want Unknown", got)
	}
}

func TestParseRequestFields(t *testing.T) {
	payload := `{
		"template_id": "artist-standard",
		"series": "ART",
		"entity": {"name": "Ana Pop"},
		"terms": {"duration_years": 3, "start_date": "2026-01-01"}
	}`

	fields := parseRequestFields(payload)
	if fields.entityName != "Ana Pop" {
		t.Fatalf("entityName = %q", fields.entityName)
	}
	if fields.templateID != "artist-standard" {
		t.Fatalf("templateID = %q", fields.templateID)
	}
	if fields.series != "ART" {
		t.Fatalf("series = %q", fields.series)
	}
	if fields.duration != "3 years" {
		t.Fatalf("duration = %q, want 3 years", fields.duration)
	}
}

func TestParseRequestFieldsSingularDuration(t *testing.T) {
	fields := parseRequestFields(`{"terms":{"duration_years":1}}`)
	if fields.duration != "1 year" {
		t.Fatalf("duration = %q, want 1 year", fields.duration)
	}
}
