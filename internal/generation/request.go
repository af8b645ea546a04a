package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"vellum/internal/contract"
)

// Request is the submitted generation payload: which template to render
// and the business data to render it from. Commission fields are optional;
// a request without them produces a document with no commission
// placeholders.
type Request struct {
	TemplateID          string             `json:"template_id"`
	Series              string             `json:"series,omitempty"`
	Entity              contract.Entity    `json:"entity"`
	Terms               contract.Terms     `json:"terms"`
	CommissionByYear    contract.Matrix    `json:"commission_by_year,omitempty"`
	EnabledRights       map[string]bool    `json:"enabled_rights,omitempty"`
	CommissionStructure contract.Structure `json:"commission_structure,omitempty"`
	Overrides           map[string]any     `json:"placeholder_overrides,omitempty"`
}

// ParseRequest decodes and normalizes a request JSON document.
func ParseRequest(data []byte) (*Request, error) {
	var request Request
	if err := json.Unmarshal(data, &request); err != nil {
		return nil, fmt.Errorf("decode generation request: %w", err)
	}
	request.Normalize()
	return &request, nil
}

// Normalize trims identifiers and fills term defaults.
func (r *Request) Normalize() {
	r.TemplateID = strings.TrimSpace(r.TemplateID)
	r.Series = strings.ToUpper(strings.TrimSpace(r.Series))
	r.Terms.Normalize()
}

// Validate checks everything rendering depends on. The commission matrix
// and compact structure are only held against the contract duration when
// present.
func (r *Request) Validate() error {
	if r.TemplateID == "" {
		return fmt.Errorf("template_id is required")
	}
	if err := r.Entity.Validate(); err != nil {
		return err
	}
	if err := r.Terms.Validate(); err != nil {
		return err
	}
	if len(r.CommissionByYear) > 0 {
		if err := r.CommissionByYear.Validate(r.Terms.DurationYears); err != nil {
			return err
		}
	}
	if !r.CommissionStructure.IsZero() {
		if err := r.CommissionStructure.Validate(r.Terms.DurationYears); err != nil {
			return err
		}
	}
	return nil
}

// EnabledCategories maps the request's enabled_rights onto known
// categories. Unknown names are dropped; the analyzer treats categories
// without an entry as enabled.
func (r *Request) EnabledCategories() map[contract.Category]bool {
	if len(r.EnabledRights) == 0 {
		return nil
	}
	out := make(map[contract.Category]bool, len(r.EnabledRights))
	for name, flag := range r.EnabledRights {
		category, ok := contract.ParseCategory(name)
		if !ok {
			continue
		}
		out[category] = flag
	}
	return out
}
