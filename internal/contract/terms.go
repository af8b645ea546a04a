package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"vellum/internal/placeholder"
)

// moneyPrinter groups thousands the way the back office prints amounts,
// e.g. 15,000.00.
var moneyPrinter = message.NewPrinter(language.English)

// Money is an amount in the contract currency. It decodes from either a
// JSON number or a numeric string, both of which appear in submitted
// requests.
type Money float64

// ParseMoney reads an amount from a string. Empty means zero.
func ParseMoney(s string) (Money, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", trimmed, err)
	}
	return Money(f), nil
}

// Format renders the amount with two decimals and thousands separators.
func (m Money) Format() string {
	return moneyPrinter.Sprintf("%.2f", float64(m))
}

// MarshalJSON encodes the amount as a plain number.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(m))
}

// UnmarshalJSON accepts numbers, numeric strings, and null.
func (m *Money) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*m = 0
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode amount: %w", err)
		}
		parsed, err := ParseMoney(raw)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return fmt.Errorf("decode amount: %w", err)
	}
	*m = Money(f)
	return nil
}

// defaultPenalty is applied when a request leaves the breach penalty unset.
const defaultPenalty Money = 50000

// Terms carries the negotiated business terms one document is generated
// from.
type Terms struct {
	DurationYears     int    `json:"duration_years"`
	StartDate         Date   `json:"start_date"`
	NoticePeriodDays  int    `json:"notice_period_days"`
	AutoRenewal       bool   `json:"auto_renewal"`
	AutoRenewalYears  int    `json:"auto_renewal_years,omitempty"`
	MinimumLaunches   int    `json:"minimum_launches_per_year"`
	InvestmentPerSong Money  `json:"max_investment_per_song"`
	InvestmentPerYear Money  `json:"max_investment_per_year"`
	PenaltyAmount     Money  `json:"penalty_amount"`
	Currency          string `json:"currency,omitempty"`
	SpecialTerms      string `json:"special_terms,omitempty"`
}

// Normalize fills the defaults submission forms leave blank.
func (t *Terms) Normalize() {
	currency := strings.ToUpper(strings.TrimSpace(t.Currency))
	if currency == "" {
		currency = "EUR"
	}
	t.Currency = currency
	if t.PenaltyAmount == 0 {
		t.PenaltyAmount = defaultPenalty
	}
}

// Validate checks the ranges the back office enforces on term values.
func (t Terms) Validate() error {
	if t.DurationYears < 1 {
		return fmt.Errorf("contract duration must be at least one year")
	}
	if t.DurationYears > 50 {
		return fmt.Errorf("contract duration %d exceeds 50 years", t.DurationYears)
	}
	if t.StartDate.IsZero() {
		return fmt.Errorf("contract start date is required")
	}
	if t.NoticePeriodDays < 0 || t.NoticePeriodDays > 365 {
		return fmt.Errorf("notice period must be between 0 and 365 days")
	}
	if t.AutoRenewal && t.AutoRenewalYears < 1 {
		return fmt.Errorf("auto renewal requires a renewal period of at least one year")
	}
	if t.AutoRenewalYears > 10 {
		return fmt.Errorf("auto renewal period %d exceeds 10 years", t.AutoRenewalYears)
	}
	if t.MinimumLaunches < 0 || t.MinimumLaunches > 100 {
		return fmt.Errorf("minimum launches per year must be between 0 and 100")
	}
	if t.InvestmentPerSong < 0 {
		return fmt.Errorf("max investment per song cannot be negative")
	}
	if t.InvestmentPerYear < 0 {
		return fmt.Errorf("max investment per year cannot be negative")
	}
	if t.PenaltyAmount < 0 {
		return fmt.Errorf("penalty amount cannot be negative")
	}
	return nil
}

// Placeholders converts the terms into their template keys. Counts stay
// numeric so phrase placeholders can pluralize them; money is formatted
// with grouping.
func (t Terms) Placeholders() *placeholder.Values {
	values := placeholder.New()
	values.Set("contract.duration", t.DurationYears)
	values.Set("contract.start_date", t.StartDate.Dotted())
	values.Set("contract.notice_period", t.NoticePeriodDays)
	values.Set("contract.auto_renewal", t.AutoRenewal)
	values.Set("contract.auto_renewal_years", t.AutoRenewalYears)
	values.Set("contract.minimum_launches", t.MinimumLaunches)
	values.Set("investment.per_song", t.InvestmentPerSong.Format())
	values.Set("investment.per_year", t.InvestmentPerYear.Format())
	values.Set("penalty.amount", t.PenaltyAmount.Format())
	values.Set("penalty.currency", t.Currency)
	return values
}
