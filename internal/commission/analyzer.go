package commission

import (
	"fmt"

	"vellum/internal/contract"
	"vellum/internal/placeholder"
)

// Analyze reduces a commission grid to the compact pattern placeholders
// templates switch on. Per category it emits has_<category>_rights, and for
// enabled categories either the uniform keys (<category>_uniform=1,
// commission.<category>.uniform, zero first/last counts) or the split keys
// around the first year whose rate diverges from year 1. Only the first
// divergence is detected; later variation is absorbed into the last-years
// rate. An empty grid yields an empty map.
func Analyze(matrix contract.Matrix, enabled map[contract.Category]bool) *placeholder.Values {
	values := placeholder.New()
	totalYears := matrix.MaxYear()
	if totalYears == 0 {
		return values
	}

	for _, category := range analyzedCategories(matrix, enabled) {
		if !categoryEnabled(category, enabled) {
			values.Set(fmt.Sprintf("has_%s_rights", category), 0)
			continue
		}
		values.Set(fmt.Sprintf("has_%s_rights", category), 1)

		firstRate := matrix.Rate(1, category)
		splitYear := 0
		for year := 2; year <= totalYears; year++ {
			if matrix.Rate(year, category) != firstRate {
				splitYear = year
				break
			}
		}

		if splitYear == 0 {
			values.Set(fmt.Sprintf("%s_uniform", category), 1)
			values.Set(fmt.Sprintf("commission.%s.uniform", category), firstRate)
			values.Set(fmt.Sprintf("%s_first_years", category), 0)
			values.Set(fmt.Sprintf("%s_last_years", category), 0)
			continue
		}

		firstCount := splitYear - 1
		values.Set(fmt.Sprintf("%s_uniform", category), 0)
		values.Set(fmt.Sprintf("%s_first_years", category), firstCount)
		values.Set(fmt.Sprintf("%s_last_years", category), totalYears-firstCount)
		values.Set(fmt.Sprintf("commission.%s.first_years", category), firstRate)
		values.Set(fmt.Sprintf("commission.%s.last_years", category), matrix.Rate(splitYear, category))
	}
	return values
}

// analyzedCategories returns the union of categories present in the grid
// and named in the flags, in canonical order.
func analyzedCategories(matrix contract.Matrix, enabled map[contract.Category]bool) []contract.Category {
	out := make([]contract.Category, 0, len(enabled))
	for _, category := range contract.Categories() {
		if matrix.Has(category) {
			out = append(out, category)
			continue
		}
		if _, flagged := enabled[category]; flagged {
			out = append(out, category)
		}
	}
	return out
}

// categoryEnabled treats categories without an explicit flag as enabled;
// presence in the grid already signals the request covers them.
func categoryEnabled(category contract.Category, enabled map[contract.Category]bool) bool {
	if flag, ok := enabled[category]; ok {
		return flag
	}
	return true
}
