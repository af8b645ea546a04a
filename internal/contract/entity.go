package contract

import (
	"fmt"
	"strings"

	"vellum/internal/placeholder"
)

// Entity is the counterparty a contract is drawn up for.
type Entity struct {
	Name     string `json:"name"`
	Gender   string `json:"gender,omitempty"`
	Address  string `json:"address,omitempty"`
	IDNumber string `json:"id_number,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Validate checks the fields a document cannot be generated without.
func (e Entity) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("entity name is required")
	}
	return nil
}

// Placeholders emits the entity fields under their template keys. Empty
// fields are skipped so their tokens surface as unresolved instead of
// rendering as blank text.
func (e Entity) Placeholders() *placeholder.Values {
	values := placeholder.New()
	set := func(key, value string) {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			return
		}
		values.Set(key, trimmed)
	}
	set("entity.name", e.Name)
	set("entity.gender", e.Gender)
	set("entity.address", e.Address)
	set("entity.id_number", e.IDNumber)
	set("entity.email", e.Email)
	return values
}
