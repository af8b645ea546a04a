package contract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	// dateLayout is the wire spelling for contract dates.
	dateLayout = "2006-01-02"
	// dottedLayout is the spelling rendered into documents.
	dottedLayout = "02.01.2006"
)

// Date is a calendar day without time-of-day or zone. The zero value is
// "unset" and marshals as null.
type Date struct {
	t time.Time
}

// NewDate builds a date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a yyyy-mm-dd string.
func ParseDate(s string) (Date, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Date{}, fmt.Errorf("date is empty")
	}
	parsed, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", trimmed, err)
	}
	return DateOf(parsed), nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// String renders the date as yyyy-mm-dd, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// Dotted renders the date as dd.mm.yyyy, the spelling documents use.
func (d Date) Dotted() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dottedLayout)
}

// Time returns the date as UTC midnight.
func (d Date) Time() time.Time {
	return d.t
}

// AddYears shifts the date by whole calendar years.
func (d Date) AddYears(years int) Date {
	return DateOf(d.t.AddDate(years, 0, 0))
}

// AddDays shifts the date by whole days.
func (d Date) AddDays(days int) Date {
	return DateOf(d.t.AddDate(0, 0, days))
}

// Before reports whether d falls before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d falls after other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether both dates name the same day.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// DaysSince returns the count of whole days from start to d, negative when
// d precedes start.
func (d Date) DaysSince(start Date) int {
	return int(d.t.Sub(start.t) / (24 * time.Hour))
}

// MarshalJSON encodes the date as a yyyy-mm-dd string, null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a yyyy-mm-dd string, the empty string, or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
