package generation

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"vellum/internal/contract"
)

var generationDay = time.Date(2025, time.October, 30, 14, 15, 0, 0, time.UTC)

const sampleRequestJSON = `{
	"template_id": "artist-standard",
	"series": "art",
	"entity": {
		"name": "Ana Pop",
		"gender": "F",
		"id_number": "2950101223344"
	},
	"terms": {
		"duration_years": 3,
		"start_date": "2025-06-01",
		"notice_period_days": 90,
		"minimum_launches_per_year": 2,
		"max_investment_per_song": "5000",
		"max_investment_per_year": 15000
	},
	"commission_by_year": {
		"1": {"concert": 20, "sync": 10},
		"2": {"concert": 20, "sync": 10},
		"3": {"concert": 25, "sync": 10}
	},
	"enabled_rights": {"concert": true, "sync": true, "ppd": false},
	"commission_structure": {
		"first_years": {"count": 2, "concert": 20},
		"middle_years": {},
		"last_years": {"count": 1, "concert": 25}
	},
	"placeholder_overrides": {"studio.name": "Harbor Lane Studio"}
}`

const sampleTemplate = `CONTRACT {{ studio.name }}
{{entity.gender:Domnul:Doamna}} {{entity.name}}, {{entity.id_number}}
Start: {{contract.start_date}} Azi: {{today.iso}}
{{BEGIN:concert_uniform}}Concert fix: {{commission.concert.uniform}}%
{{END:concert_uniform}}{{BEGIN:has_concert_rights}}Concert anul 1: {{commission.year1.concert}}%
{{END:has_concert_rights}}{{BEGIN:has_ppd_rights}}PPD: {{commission.ppd.uniform}}%
{{END:has_ppd_rights}}Sync: {{commission.sync.uniform}}% pe {{contract.duration.phrase:{n} an:{n} ani}}
Investitie: {{investment.per_song}} {{penalty.currency}}
`

const renderedSample = `CONTRACT Harbor Lane Studio
Doamna Ana Pop, 2950101223344
Start: 01.06.2025 Azi: 2025-10-30
Concert anul 1: 20.0%
Sync: 10.0% pe 3 ani
Investitie: 5,000.00 EUR
`

func TestGenerateEndToEnd(t *testing.T) {
	request, err := ParseRequest([]byte(sampleRequestJSON))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	generator := NewWithClock(nil, FixedClock(generationDay))

	result, err := generator.Generate(request, sampleTemplate)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if diff := cmp.Diff(renderedSample, result.Text); diff != "" {
		t.Errorf("rendered text mismatch (-want +got):\n%s", diff)
	}
	if len(result.Unresolved) != 0 {
		t.Errorf("unresolved = %v", result.Unresolved)
	}

	if len(result.Shares) != 3 {
		t.Fatalf("shares = %d, want 3", len(result.Shares))
	}
	start := request.Terms.StartDate
	wantRates := map[int]float64{1: 20, 2: 20, 3: 25}
	for _, share := range result.Shares {
		if share.Category != contract.CategoryConcert {
			t.Errorf("share category = %s", share.Category)
		}
		if share.Unit != contract.UnitPercent {
			t.Errorf("share unit = %s", share.Unit)
		}
		year := share.Year(start)
		if share.Value != wantRates[year] {
			t.Errorf("year %d rate = %v, want %v", year, share.Value, wantRates[year])
		}
	}

	if !result.Values.TruthyKey("sync_uniform") {
		t.Error("sync_uniform not truthy")
	}
	if result.Values.TruthyKey("has_ppd_rights") {
		t.Error("disabled ppd reported truthy")
	}
	if rate, ok := result.Values.FloatValue("commission.year3.concert"); !ok || rate != 25 {
		t.Errorf("commission.year3.concert = %v, %v", rate, ok)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	request, err := ParseRequest([]byte(sampleRequestJSON))
	if err != nil {
		t.Fatalf("ParseRequest: %v", err)
	}
	generator := NewWithClock(nil, FixedClock(generationDay))

	first, err := generator.Generate(request, sampleTemplate)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := generator.Generate(request, sampleTemplate)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if first.Text != second.Text {
		t.Error("reruns produced different documents")
	}
}

func TestGenerateWithoutCommissionData(t *testing.T) {
	request := baseRequest()
	generator := NewWithClock(nil, FixedClock(generationDay))

	result, err := generator.Generate(request, "Salut {{entity.name}}, durata {{contract.duration}}.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Text != "Salut Ana Pop, durata 3." {
		t.Errorf("text = %q", result.Text)
	}
	if result.Shares != nil {
		t.Errorf("shares = %v, want none", result.Shares)
	}
}

func TestGenerateReportsUnresolved(t *testing.T) {
	request := baseRequest()
	generator := NewWithClock(nil, FixedClock(generationDay))

	result, err := generator.Generate(request, "{{missing.key}} si {{entity.name}} si {{missing.key}}")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if diff := cmp.Diff([]string{"missing.key"}, result.Unresolved); diff != "" {
		t.Errorf("unresolved mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateRejectsInvalidRequest(t *testing.T) {
	request := baseRequest()
	request.TemplateID = ""
	generator := New(nil)

	if _, err := generator.Generate(request, "text"); err == nil {
		t.Fatal("invalid request accepted")
	}
}
