package commission

import (
	"testing"

	"vellum/internal/contract"
	"vellum/internal/placeholder"
)

func wantValue(t *testing.T, values *placeholder.Values, key string, want any) {
	t.Helper()
	got, ok := values.Get(key)
	if !ok {
		t.Errorf("missing key %q", key)
		return
	}
	if got != want {
		t.Errorf("%s = %v (%T), want %v (%T)", key, got, got, want, want)
	}
}

func wantAbsent(t *testing.T, values *placeholder.Values, key string) {
	t.Helper()
	if values.Has(key) {
		t.Errorf("key %q should not be emitted", key)
	}
}

func TestAnalyzeUniformRates(t *testing.T) {
	matrix := contract.Matrix{
		1: {contract.CategoryConcert: 20, contract.CategoryImageRights: 30, contract.CategoryRights: 25},
		2: {contract.CategoryConcert: 20, contract.CategoryImageRights: 30, contract.CategoryRights: 25},
		3: {contract.CategoryConcert: 20, contract.CategoryImageRights: 30, contract.CategoryRights: 25},
	}
	enabled := map[contract.Category]bool{
		contract.CategoryConcert:     true,
		contract.CategoryImageRights: true,
		contract.CategoryRights:      true,
	}

	values := Analyze(matrix, enabled)

	wantValue(t, values, "has_concert_rights", 1)
	wantValue(t, values, "concert_uniform", 1)
	wantValue(t, values, "image_rights_uniform", 1)
	wantValue(t, values, "rights_uniform", 1)

	wantValue(t, values, "commission.concert.uniform", 20.0)
	wantValue(t, values, "commission.image_rights.uniform", 30.0)
	wantValue(t, values, "commission.rights.uniform", 25.0)

	wantValue(t, values, "concert_first_years", 0)
	wantValue(t, values, "concert_last_years", 0)
	wantAbsent(t, values, "commission.concert.first_years")
}

func TestAnalyzeFirstYearDiffers(t *testing.T) {
	matrix := contract.Matrix{
		1: {contract.CategoryConcert: 30, contract.CategoryImageRights: 40},
		2: {contract.CategoryConcert: 20, contract.CategoryImageRights: 20},
		3: {contract.CategoryConcert: 20, contract.CategoryImageRights: 20},
	}
	enabled := map[contract.Category]bool{
		contract.CategoryConcert:     true,
		contract.CategoryImageRights: true,
	}

	values := Analyze(matrix, enabled)

	wantValue(t, values, "concert_uniform", 0)
	wantValue(t, values, "image_rights_uniform", 0)
	wantValue(t, values, "concert_first_years", 1)
	wantValue(t, values, "concert_last_years", 2)
	wantValue(t, values, "image_rights_first_years", 1)
	wantValue(t, values, "image_rights_last_years", 2)
	wantValue(t, values, "commission.concert.first_years", 30.0)
	wantValue(t, values, "commission.concert.last_years", 20.0)
	wantValue(t, values, "commission.image_rights.first_years", 40.0)
	wantValue(t, values, "commission.image_rights.last_years", 20.0)
}

func TestAnalyzeLastYearDiffers(t *testing.T) {
	matrix := contract.Matrix{
		1: {contract.CategoryConcert: 20},
		2: {contract.CategoryConcert: 20},
		3: {contract.CategoryConcert: 10},
	}
	values := Analyze(matrix, map[contract.Category]bool{contract.CategoryConcert: true})

	wantValue(t, values, "concert_uniform", 0)
	wantValue(t, values, "concert_first_years", 2)
	wantValue(t, values, "concert_last_years", 1)
	wantValue(t, values, "commission.concert.first_years", 20.0)
	wantValue(t, values, "commission.concert.last_years", 10.0)
}

func TestAnalyzeAllYearsDifferentUsesFirstSplit(t *testing.T) {
	matrix := contract.Matrix{
		1: {contract.CategoryConcert: 30},
		2: {contract.CategoryConcert: 20},
		3: {contract.CategoryConcert: 10},
	}
	values := Analyze(matrix, map[contract.Category]bool{contract.CategoryConcert: true})

	wantValue(t, values, "concert_uniform", 0)
	wantValue(t, values, "concert_first_years", 1)
	wantValue(t, values, "concert_last_years", 2)
	wantValue(t, values, "commission.concert.first_years", 30.0)
	// Year 3's further drop is absorbed into the last-years rate.
	wantValue(t, values, "commission.concert.last_years", 20.0)
}

func TestAnalyzeDisabledCategory(t *testing.T) {
	matrix := contract.Matrix{
		1: {contract.CategoryConcert: 20, contract.CategoryImageRights: 30},
		2: {contract.CategoryConcert: 20, contract.CategoryImageRights: 30},
	}
	enabled := map[contract.Category]bool{
		contract.CategoryConcert:     true,
		contract.CategoryImageRights: false,
	}

	values := Analyze(matrix, enabled)

	wantValue(t, values, "concert_uniform", 1)
	wantValue(t, values, "has_image_rights_rights", 0)
	wantAbsent(t, values, "image_rights_uniform")
	wantAbsent(t, values, "commission.image_rights.uniform")
}

func TestAnalyzeSingleYearIsUniform(t *testing.T) {
	matrix := contract.Matrix{1: {contract.CategoryConcert: 25}}
	values := Analyze(matrix, map[contract.Category]bool{contract.CategoryConcert: true})

	wantValue(t, values, "concert_uniform", 1)
	wantValue(t, values, "commission.concert.uniform", 25.0)
}

func TestAnalyzeMixedPatterns(t *testing.T) {
	matrix := contract.Matrix{
		1: {contract.CategoryConcert: 20, contract.CategoryImageRights: 30, contract.CategoryRights: 25},
		2: {contract.CategoryConcert: 20, contract.CategoryImageRights: 20, contract.CategoryRights: 25},
		3: {contract.CategoryConcert: 10, contract.CategoryImageRights: 20, contract.CategoryRights: 25},
	}
	enabled := map[contract.Category]bool{
		contract.CategoryConcert:     true,
		contract.CategoryImageRights: true,
		contract.CategoryRights:      true,
	}

	values := Analyze(matrix, enabled)

	wantValue(t, values, "concert_uniform", 0)
	wantValue(t, values, "concert_first_years", 2)
	wantValue(t, values, "concert_last_years", 1)

	wantValue(t, values, "image_rights_uniform", 0)
	wantValue(t, values, "image_rights_first_years", 1)
	wantValue(t, values, "image_rights_last_years", 2)

	wantValue(t, values, "rights_uniform", 1)
	wantValue(t, values, "commission.rights.uniform", 25.0)
}

func TestAnalyzeEmptyMatrix(t *testing.T) {
	values := Analyze(contract.Matrix{}, map[contract.Category]bool{contract.CategoryConcert: true})
	if values.Len() != 0 {
		t.Fatalf("empty matrix emitted %v", values.Keys())
	}
}

func TestAnalyzeMissingFlagMeansEnabled(t *testing.T) {
	matrix := contract.Matrix{1: {contract.CategoryConcert: 20}, 2: {contract.CategoryConcert: 20}}
	values := Analyze(matrix, nil)

	wantValue(t, values, "has_concert_rights", 1)
	wantValue(t, values, "concert_uniform", 1)
}

func TestAnalyzeFlaggedCategoryAbsentFromMatrix(t *testing.T) {
	matrix := contract.Matrix{1: {contract.CategoryConcert: 20}}
	enabled := map[contract.Category]bool{
		contract.CategoryConcert: true,
		contract.CategorySync:    true,
	}
	values := Analyze(matrix, enabled)

	// Rates for the flagged-but-absent category all read as zero.
	wantValue(t, values, "has_sync_rights", 1)
	wantValue(t, values, "sync_uniform", 1)
	wantValue(t, values, "commission.sync.uniform", 0.0)
}
