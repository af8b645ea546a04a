package contract

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rates maps rights categories to a commission rate for one contract year.
type Rates map[Category]float64

// Matrix is the year-by-year commission grid, keyed by 1-based contract
// year. On the wire years arrive as string keys and rates as numbers or
// numeric strings.
type Matrix map[int]Rates

// UnmarshalJSON decodes the wire shape. Year keys must be positive
// integers; unknown categories are dropped; unparseable rates become 0 but
// keep the category present.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode commission matrix: %w", err)
	}
	out := make(Matrix, len(raw))
	for yearKey, rawRates := range raw {
		year, err := strconv.Atoi(strings.TrimSpace(yearKey))
		if err != nil || year < 1 {
			return fmt.Errorf("commission matrix year %q is not a positive integer", yearKey)
		}
		rates := make(Rates, len(rawRates))
		for name, value := range rawRates {
			category, ok := ParseCategory(name)
			if !ok {
				continue
			}
			rates[category] = coerceRate(value)
		}
		out[year] = rates
	}
	*m = out
	return nil
}

// MarshalJSON re-encodes the grid into its string-keyed wire shape.
func (m Matrix) MarshalJSON() ([]byte, error) {
	raw := make(map[string]map[string]float64, len(m))
	for year, rates := range m {
		encoded := make(map[string]float64, len(rates))
		for category, rate := range rates {
			encoded[category.String()] = rate
		}
		raw[strconv.Itoa(year)] = encoded
	}
	return json.Marshal(raw)
}

// coerceRate reads a rate out of a loosely typed wire value. Anything
// unparseable counts as 0.
func coerceRate(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case int:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// MaxYear returns the highest year present, 0 for an empty grid.
func (m Matrix) MaxYear() int {
	max := 0
	for year := range m {
		if year > max {
			max = year
		}
	}
	return max
}

// Years returns the years present in ascending order.
func (m Matrix) Years() []int {
	years := make([]int, 0, len(m))
	for year := range m {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

// Rate returns the rate for a category in a year, 0 when absent.
func (m Matrix) Rate(year int, category Category) float64 {
	return m[year][category]
}

// Has reports whether the category appears in any year.
func (m Matrix) Has(category Category) bool {
	for _, rates := range m {
		if _, ok := rates[category]; ok {
			return true
		}
	}
	return false
}

// Categories returns the categories appearing anywhere in the grid, in
// canonical order.
func (m Matrix) Categories() []Category {
	out := make([]Category, 0, len(allCategories))
	for _, category := range allCategories {
		if m.Has(category) {
			out = append(out, category)
		}
	}
	return out
}

// Validate checks that every contract year in [1, duration] has an entry.
// Missing categories inside a year are fine; they read as rate 0.
func (m Matrix) Validate(durationYears int) error {
	if durationYears < 1 {
		return fmt.Errorf("contract duration must be at least one year")
	}
	for year := 1; year <= durationYears; year++ {
		if _, ok := m[year]; !ok {
			return fmt.Errorf("commission matrix is missing year %d", year)
		}
	}
	return nil
}
