package contract

import (
	"fmt"
	"strings"

	"vellum/internal/placeholder"
)

// Unit describes how a share value is denominated.
type Unit string

const (
	UnitPercent Unit = "percent"
	UnitPoints  Unit = "points"
	UnitFlat    Unit = "flat"
)

var allUnits = []Unit{UnitPercent, UnitPoints, UnitFlat}

// ParseUnit normalizes s and reports whether it names a known unit.
func ParseUnit(s string) (Unit, bool) {
	unit := Unit(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allUnits {
		if unit == known {
			return known, true
		}
	}
	return "", false
}

// Valid reports whether the unit is one of the known denominations.
func (u Unit) Valid() bool {
	_, ok := ParseUnit(string(u))
	return ok
}

func (u Unit) String() string {
	return string(u)
}

// Share is one per-year commission record, either produced by expanding a
// compact structure or loaded back from the queue store.
type Share struct {
	Category  Category `json:"category"`
	Value     float64  `json:"value"`
	Unit      Unit     `json:"unit"`
	ValidFrom Date     `json:"valid_from"`
	ValidTo   Date     `json:"valid_to"`
}

// Validate checks the share against the closed category and unit sets.
func (s Share) Validate() error {
	if !s.Category.Valid() {
		return fmt.Errorf("unknown share category %q", s.Category)
	}
	if !s.Unit.Valid() {
		return fmt.Errorf("unknown share unit %q", s.Unit)
	}
	if s.Value < 0 {
		return fmt.Errorf("share value cannot be negative")
	}
	if s.ValidFrom.IsZero() || s.ValidTo.IsZero() {
		return fmt.Errorf("share validity range is incomplete")
	}
	if s.ValidTo.Before(s.ValidFrom) {
		return fmt.Errorf("share valid_to %s precedes valid_from %s", s.ValidTo, s.ValidFrom)
	}
	return nil
}

// Year places the share in its 1-based contract year relative to start.
// An unset start pins everything to year 1.
func (s Share) Year(start Date) int {
	if start.IsZero() {
		return 1
	}
	return s.ValidFrom.DaysSince(start)/365 + 1
}

// Placeholders emits the share under its year-scoped template key,
// commission.year<N>.<category>.
func (s Share) Placeholders(start Date) *placeholder.Values {
	values := placeholder.New()
	key := fmt.Sprintf("commission.year%d.%s", s.Year(start), s.Category)
	values.Set(key, s.Value)
	return values
}
