package contract

import (
	"encoding/json"
	"fmt"

	"vellum/internal/placeholder"
)

// Band is one segment of the compact commission layout: how many contract
// years it spans and the rates that apply inside it. The middle band
// carries no count; it covers whatever the first and last bands leave
// over.
type Band struct {
	Count int
	Rates Rates
}

// UnmarshalJSON decodes the irregular wire shape where the count sits
// alongside the category rates: {"count": 2, "concert": "20", ...}.
func (b *Band) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode commission band: %w", err)
	}
	band := Band{Rates: make(Rates, len(raw))}
	for name, value := range raw {
		if name == "count" {
			band.Count = int(coerceRate(value))
			continue
		}
		category, ok := ParseCategory(name)
		if !ok {
			continue
		}
		band.Rates[category] = coerceRate(value)
	}
	*b = band
	return nil
}

// MarshalJSON re-encodes the band into its wire shape.
func (b Band) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(b.Rates)+1)
	if b.Count > 0 {
		raw["count"] = b.Count
	}
	for category, rate := range b.Rates {
		raw[category.String()] = rate
	}
	return json.Marshal(raw)
}

// IsZero reports whether the band carries neither a count nor rates.
func (b Band) IsZero() bool {
	return b.Count == 0 && len(b.Rates) == 0
}

// Rate returns the band's rate for a category, 0 when absent.
func (b Band) Rate(category Category) float64 {
	return b.Rates[category]
}

// Structure is the compact first/middle/last commission layout the
// schedule expander turns into per-year share records.
type Structure struct {
	FirstYears  Band `json:"first_years"`
	MiddleYears Band `json:"middle_years"`
	LastYears   Band `json:"last_years"`
}

// IsZero reports whether no band carries data.
func (s Structure) IsZero() bool {
	return s.FirstYears.IsZero() && s.MiddleYears.IsZero() && s.LastYears.IsZero()
}

// Validate checks the band counts against the contract duration.
func (s Structure) Validate(durationYears int) error {
	if s.FirstYears.Count < 0 || s.LastYears.Count < 0 {
		return fmt.Errorf("commission band counts cannot be negative")
	}
	if total := s.FirstYears.Count + s.LastYears.Count; total > durationYears {
		return fmt.Errorf("first and last commission bands cover %d years but the contract lasts %d", total, durationYears)
	}
	return nil
}

// Placeholders emits the band counts and per-band rates under their
// template keys: commission.first_years_count,
// commission.first_years.<category>, and the last_years equivalents.
// Middle-band rates have no direct keys; templates reach them through the
// per-year share placeholders.
func (s Structure) Placeholders() *placeholder.Values {
	values := placeholder.New()
	if !s.FirstYears.IsZero() {
		values.Set("commission.first_years_count", s.FirstYears.Count)
		for _, category := range Categories() {
			if rate, ok := s.FirstYears.Rates[category]; ok {
				values.Set("commission.first_years."+category.String(), rate)
			}
		}
	}
	if !s.LastYears.IsZero() {
		values.Set("commission.last_years_count", s.LastYears.Count)
		for _, category := range Categories() {
			if rate, ok := s.LastYears.Rates[category]; ok {
				values.Set("commission.last_years."+category.String(), rate)
			}
		}
	}
	return values
}
