package contract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category identifies a rights category a commission rate can apply to.
// The set is closed; rates keyed by anything else are dropped on decode.
type Category string

const (
	CategoryConcert       Category = "concert"
	CategoryRights        Category = "rights"
	CategoryMerchandising Category = "merchandising"
	CategoryImageRights   Category = "image_rights"
	CategoryPPD           Category = "ppd"
	CategoryEMD           Category = "emd"
	CategorySync          Category = "sync"
)

var allCategories = []Category{
	CategoryConcert,
	CategoryRights,
	CategoryMerchandising,
	CategoryImageRights,
	CategoryPPD,
	CategoryEMD,
	CategorySync,
}

var categorySet = func() map[Category]struct{} {
	set := make(map[Category]struct{}, len(allCategories))
	for _, category := range allCategories {
		set[category] = struct{}{}
	}
	return set
}()

// Categories returns every known category in canonical order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory normalizes s and reports whether it names a known category.
func ParseCategory(s string) (Category, bool) {
	category := Category(strings.ToLower(strings.TrimSpace(s)))
	_, ok := categorySet[category]
	return category, ok
}

// Valid reports whether the category belongs to the closed set.
func (c Category) Valid() bool {
	_, ok := categorySet[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

var categoryDisplayOverrides = map[Category]string{
	CategoryPPD: "PPD",
	CategoryEMD: "EMD",
}

// Display returns the category formatted for human-facing output, so
// "image_rights" becomes "Image Rights".
func (c Category) Display() string {
	if name, ok := categoryDisplayOverrides[c]; ok {
		return name
	}
	spaced := strings.ReplaceAll(string(c), "_", " ")
	return cases.Title(language.Und).String(spaced)
}
