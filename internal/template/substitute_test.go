package template

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"vellum/internal/placeholder"
)

func TestSubstituteBothSpellings(t *testing.T) {
	values := placeholder.FromMap(map[string]any{"entity.name": "Ana Pop"})
	result, unresolved := Substitute("{{entity.name}} / {{ entity.name }}", values, nil)
	if result != "Ana Pop / Ana Pop" {
		t.Errorf("result = %q", result)
	}
	if len(unresolved) != 0 {
		t.Errorf("unresolved = %v", unresolved)
	}
}

func TestSubstituteCaseAndWhitespaceInsensitive(t *testing.T) {
	values := placeholder.FromMap(map[string]any{"Entity.Name": "Ana Pop"})
	result, _ := Substitute("{{ENTITY.NAME}} and {{  entity.name  }}", values, nil)
	if result != "Ana Pop and Ana Pop" {
		t.Errorf("result = %q", result)
	}
}

func TestSubstituteCleansStrayBracesOnKeys(t *testing.T) {
	values := placeholder.FromMap(map[string]any{"{{entity.name}}": "Ana Pop"})
	result, _ := Substitute("{{entity.name}}", values, nil)
	if result != "Ana Pop" {
		t.Errorf("result = %q", result)
	}
}

func TestSubstituteFormatsNumbers(t *testing.T) {
	values := placeholder.FromMap(map[string]any{
		"commission.sync.uniform": 10.0,
		"contract.duration":       5,
		"rate":                    12.5,
	})
	result, _ := Substitute("Sync: {{commission.sync.uniform}}% for {{contract.duration}} years at {{rate}}", values, nil)
	if result != "Sync: 10.0% for 5 years at 12.5" {
		t.Errorf("result = %q", result)
	}
}

func TestSubstituteLeavesUnknownTokensLiteral(t *testing.T) {
	values := placeholder.FromMap(map[string]any{"known": "yes"})
	text := "{{known}} {{missing.one}} {{known}} {{missing.one}} {{ missing.two }}"

	result, unresolved := Substitute(text, values, nil)

	if !strings.Contains(result, "{{missing.one}}") || !strings.Contains(result, "{{ missing.two }}") {
		t.Errorf("unknown tokens rewritten: %q", result)
	}
	want := []string{"missing.one", "missing.two"}
	if diff := cmp.Diff(want, unresolved); diff != "" {
		t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestSubstituteDoesNotRescanInsertedValues(t *testing.T) {
	values := placeholder.FromMap(map[string]any{
		"outer": "{{inner}}",
		"inner": "should never appear",
	})
	result, _ := Substitute("{{outer}}", values, nil)
	if result != "{{inner}}" {
		t.Errorf("inserted value was re-expanded: %q", result)
	}
}

func TestSubstituteIdempotentOnResolvedOutput(t *testing.T) {
	values := placeholder.FromMap(map[string]any{"a": "1", "b": "two"})
	first, _ := Substitute("x {{a}} y {{b}} z {{c}}", values, nil)
	second, _ := Substitute(first, values, nil)
	if first != second {
		t.Errorf("second pass changed output:\n1: %q\n2: %q", first, second)
	}
}

func TestFullPipelineFragment(t *testing.T) {
	text := "CONTRACT {{ contract.reference }}\n" +
		"{{entity.gender:Subsemnatul:Subsemnata}} {{entity.name}} declară la {{today}}:\n" +
		"{{BEGIN:has_sync_rights}}{{BEGIN:sync_uniform}}Sync: {{commission.sync.uniform}}%{{END:sync_uniform}}{{END:has_sync_rights}}\n" +
		"{{BEGIN:has_ppd_rights}}PPD: {{commission.ppd.uniform}}%{{END:has_ppd_rights}}\n" +
		"Durata: {{contract.duration.phrase:{n} an:{n} ani}}.\n"

	values := placeholder.FromMap(map[string]any{
		"contract.reference":      "ART/0042",
		"entity.name":             "Ana Pop",
		"entity.gender":           "F",
		"has_sync_rights":         1,
		"sync_uniform":            1,
		"commission.sync.uniform": 10.0,
		"has_ppd_rights":          0,
		"contract.duration":       3,
	})

	day := time.Date(2025, time.October, 30, 0, 0, 0, 0, time.UTC)
	stage1 := ProcessConditionals(text, values, nil)
	ResolveSpecials(stage1, values, day, nil)
	result, unresolved := Substitute(stage1, values, nil)

	want := "CONTRACT ART/0042\n" +
		"Subsemnata Ana Pop declară la 30.10.2025:\n" +
		"Sync: 10.0%\n" +
		"\n" +
		"Durata: 3 ani.\n"
	if result != want {
		t.Errorf("pipeline output mismatch:\ngot:  %q\nwant: %q", result, want)
	}
	if len(unresolved) != 0 {
		t.Errorf("unresolved = %v", unresolved)
	}
}

func TestScanInventory(t *testing.T) {
	text := "{{entity.name}} {{ entity.name }} {{BEGIN:has_sync_rights}}{{commission.sync.uniform}}{{END:has_sync_rights}} " +
		"{{entity.gender:el:ea}} {{n.phrase:{n} an:{n} ani}} {{today.long}} {{unknown.key}}"

	inv := Scan(text)

	if diff := cmp.Diff([]string{"entity.name", "commission.sync.uniform", "unknown.key"}, inv.Placeholders); diff != "" {
		t.Errorf("placeholders mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"has_sync_rights"}, inv.Blocks); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
	if len(inv.Gender) != 1 || len(inv.Phrases) != 1 {
		t.Errorf("specials = %v / %v", inv.Gender, inv.Phrases)
	}
	if !inv.UsesDates {
		t.Error("date usage not detected")
	}
}
