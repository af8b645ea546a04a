package commission

import (
	"fmt"

	"vellum/internal/contract"
)

// Expand turns a compact first/middle/last layout into one share record per
// contract year and category. Year y takes the first band while y is within
// the first count, the last band once y enters the final count years, and
// the middle band otherwise. Each record spans exactly one contract year,
// valid_to one day short of the next year boundary. Zero or absent rates
// emit no record.
func Expand(structure contract.Structure, durationYears int, start contract.Date) ([]contract.Share, error) {
	if durationYears < 1 {
		return nil, fmt.Errorf("contract duration must be at least one year")
	}
	if start.IsZero() {
		return nil, fmt.Errorf("contract start date is required")
	}
	if err := structure.Validate(durationYears); err != nil {
		return nil, err
	}
	if structure.IsZero() {
		return nil, nil
	}

	shares := make([]contract.Share, 0, durationYears*len(contract.Categories()))
	for year := 1; year <= durationYears; year++ {
		band := structure.MiddleYears
		switch {
		case year <= structure.FirstYears.Count:
			band = structure.FirstYears
		case year > durationYears-structure.LastYears.Count:
			band = structure.LastYears
		}

		validFrom := start.AddYears(year - 1)
		validTo := start.AddYears(year).AddDays(-1)
		for _, category := range contract.Categories() {
			rate, ok := band.Rates[category]
			if !ok || rate == 0 {
				continue
			}
			shares = append(shares, contract.Share{
				Category:  category,
				Value:     rate,
				Unit:      contract.UnitPercent,
				ValidFrom: validFrom,
				ValidTo:   validTo,
			})
		}
	}
	return shares, nil
}
