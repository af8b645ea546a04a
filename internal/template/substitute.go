package template

import (
	"log/slog"
	"strings"

	"vellum/internal/logging"
	"vellum/internal/placeholder"
)

// Substitute replaces every {{key}} token whose key resolves in the value
// map. Matching is case-insensitive; whitespace inside the braces and
// stray braces on map keys are ignored. Inserted values go straight to the
// output and are never re-scanned. Tokens without a map entry stay
// literal; their keys are returned in order of first appearance.
func Substitute(text string, values *placeholder.Values, logger *slog.Logger) (string, []string) {
	if logger == nil {
		logger = logging.NewNop()
	}

	index := make(map[string]any, values.Len())
	for _, key := range values.Keys() {
		value, _ := values.Get(key)
		cleaned := strings.ToLower(strings.TrimSpace(strings.Trim(key, "{}")))
		if cleaned == "" {
			continue
		}
		index[cleaned] = value
	}

	var out strings.Builder
	out.Grow(len(text))
	var unresolved []string
	seen := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		if tok.kind != tokenPlaceholder {
			out.WriteString(tok.raw)
			continue
		}
		lookup := strings.ToLower(tok.body)
		value, ok := index[lookup]
		if !ok {
			out.WriteString(tok.raw)
			if _, dup := seen[lookup]; lookup != "" && !dup {
				seen[lookup] = struct{}{}
				unresolved = append(unresolved, tok.body)
				logger.Debug("placeholder not resolved", logging.String("key", tok.body))
			}
			continue
		}
		out.WriteString(placeholder.Format(value))
	}
	return out.String(), unresolved
}
