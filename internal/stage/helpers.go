package stage

import (
	"vellum/internal/generation"
	"vellum/internal/services"
)

// ParseRequestSnapshot parses the request JSON snapshot stored on a queue item.
// On failure it returns a services.ErrValidation suitable for stage Execute methods.
func ParseRequestSnapshot(raw string) (*generation.Request, error) {
	request, err := generation.ParseRequest([]byte(raw))
	if err != nil {
		return nil, services.Wrap(
			services.ErrValidation, "stage", "parse request snapshot",
			"Contract request missing or invalid; resubmit the request", err)
	}
	return request, nil
}
