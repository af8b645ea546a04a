package contract

import "vellum/internal/placeholder"

func formatForTest(value any) string {
	return placeholder.Format(value)
}
