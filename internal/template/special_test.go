package template

import (
	"testing"
	"time"

	"vellum/internal/placeholder"
)

var testDay = time.Date(2025, time.October, 30, 14, 45, 0, 0, time.UTC)

func resolved(t *testing.T, values *placeholder.Values, key string) string {
	t.Helper()
	raw, ok := values.Get(key)
	if !ok {
		t.Fatalf("missing entry %q (have %v)", key, values.Keys())
	}
	return placeholder.Format(raw)
}

func TestGenderTwoForms(t *testing.T) {
	text := "{{entity.gender:Subsemnatul:Subsemnata}} a declarat."
	tests := []struct {
		gender string
		want   string
	}{
		{"M", "Subsemnatul"},
		{"F", "Subsemnata"},
		{"O", "Subsemnatul"},
		{" m ", "Subsemnatul"},
		{"f", "Subsemnata"},
	}
	for _, tt := range tests {
		values := placeholder.FromMap(map[string]any{"entity.gender": tt.gender})
		ResolveSpecials(text, values, testDay, nil)
		if got := resolved(t, values, "entity.gender:Subsemnatul:Subsemnata"); got != tt.want {
			t.Errorf("gender %q selected %q, want %q", tt.gender, got, tt.want)
		}
	}
}

func TestGenderThreeForms(t *testing.T) {
	text := "{{entity.gender:el:ea:persoana}}"
	tests := []struct {
		gender string
		want   string
	}{
		{"M", "el"},
		{"F", "ea"},
		{"O", "persoana"},
		{"X", "persoana"},
	}
	for _, tt := range tests {
		values := placeholder.FromMap(map[string]any{"entity.gender": tt.gender})
		ResolveSpecials(text, values, testDay, nil)
		if got := resolved(t, values, "entity.gender:el:ea:persoana"); got != tt.want {
			t.Errorf("gender %q selected %q, want %q", tt.gender, got, tt.want)
		}
	}
}

func TestGenderMultipleTokens(t *testing.T) {
	text := "{{entity.gender:Subsemnatul:Subsemnata}}, {{entity.gender:născut:născută}} în..."
	values := placeholder.FromMap(map[string]any{"entity.gender": "F"})
	ResolveSpecials(text, values, testDay, nil)

	if got := resolved(t, values, "entity.gender:Subsemnatul:Subsemnata"); got != "Subsemnata" {
		t.Errorf("first token = %q", got)
	}
	if got := resolved(t, values, "entity.gender:născut:născută"); got != "născută" {
		t.Errorf("second token = %q", got)
	}
}

func TestGenderMissingValueLeavesTokenAlone(t *testing.T) {
	values := placeholder.New()
	ResolveSpecials("{{entity.gender:el:ea}}", values, testDay, nil)
	if values.Has("entity.gender:el:ea") {
		t.Error("entry emitted without a gender value")
	}
}

func TestDateEntries(t *testing.T) {
	values := placeholder.New()
	ResolveSpecials("no date tokens needed", values, testDay, nil)

	if got := resolved(t, values, "today"); got != "30.10.2025" {
		t.Errorf("today = %q", got)
	}
	if got := resolved(t, values, "today.iso"); got != "2025-10-30" {
		t.Errorf("today.iso = %q", got)
	}
	if got := resolved(t, values, "today.long"); got != "30 October 2025" {
		t.Errorf("today.long = %q", got)
	}
}

func TestPhraseSelection(t *testing.T) {
	text := "{{concert_first_years.phrase:in the first {n} year:in the first {n} years}}"
	key := "concert_first_years.phrase:in the first {n} year:in the first {n} years"
	tests := []struct {
		value any
		want  string
	}{
		{1, "in the first 1 year"},
		{2, "in the first 2 years"},
		{0, "in the first 0 years"},
		{"1", "in the first 1 year"},
		{1.0, "in the first 1 year"},
	}
	for _, tt := range tests {
		values := placeholder.FromMap(map[string]any{"concert_first_years": tt.value})
		ResolveSpecials(text, values, testDay, nil)
		if got := resolved(t, values, key); got != tt.want {
			t.Errorf("value %v resolved %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestPhraseMissingVariableUsesPluralZero(t *testing.T) {
	values := placeholder.New()
	ResolveSpecials("{{v.phrase:in {n} year:in {n} years}}", values, testDay, nil)
	if got := resolved(t, values, "v.phrase:in {n} year:in {n} years"); got != "in 0 years" {
		t.Errorf("missing variable resolved %q", got)
	}
}

func TestPhraseMultipleTokens(t *testing.T) {
	text := "{{concert_first_years.phrase:first {n} year:first {n} years}} and {{concert_last_years.phrase:last {n} year:last {n} years}}"
	values := placeholder.FromMap(map[string]any{
		"concert_first_years": 2,
		"concert_last_years":  1,
	})
	ResolveSpecials(text, values, testDay, nil)

	if got := resolved(t, values, "concert_first_years.phrase:first {n} year:first {n} years"); got != "first 2 years" {
		t.Errorf("first token = %q", got)
	}
	if got := resolved(t, values, "concert_last_years.phrase:last {n} year:last {n} years"); got != "last 1 year" {
		t.Errorf("second token = %q", got)
	}
}

func TestCombinedSpecials(t *testing.T) {
	text := "{{entity.gender:Subsemnatul:Subsemnata}}, on {{today}}, for {{concert_first_years.phrase:the first {n} year:the first {n} years}}."
	values := placeholder.FromMap(map[string]any{
		"entity.gender":       "M",
		"concert_first_years": 2,
	})
	ResolveSpecials(text, values, testDay, nil)

	if got := resolved(t, values, "entity.gender:Subsemnatul:Subsemnata"); got != "Subsemnatul" {
		t.Errorf("gender = %q", got)
	}
	if got := resolved(t, values, "today"); got != "30.10.2025" {
		t.Errorf("today = %q", got)
	}
	if got := resolved(t, values, "concert_first_years.phrase:the first {n} year:the first {n} years"); got != "the first 2 years" {
		t.Errorf("phrase = %q", got)
	}
}
