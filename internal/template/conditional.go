package template

import (
	"log/slog"
	"strings"

	"vellum/internal/logging"
	"vellum/internal/placeholder"
)

// ProcessConditionals resolves {{BEGIN:name}}...{{END:name}} regions
// against the value map. A missing or falsy flag removes the region
// together with its markers; a truthy flag keeps the interior verbatim and
// strips the markers. Blocks of different names may nest, and visibility
// composes: a shown inner block inside a hidden outer one stays hidden.
// Unmatched markers are left as literal text and logged.
func ProcessConditionals(text string, values *placeholder.Values, logger *slog.Logger) string {
	if logger == nil {
		logger = logging.NewNop()
	}
	tokens := tokenize(text)

	type openBlock struct {
		index int
		name  string
	}
	var stack []openBlock
	matched := make(map[int]bool)
	hiddenAt := make(map[int]bool)

	for i, tok := range tokens {
		switch tok.kind {
		case tokenBlockStart:
			stack = append(stack, openBlock{index: i, name: tok.body})
		case tokenBlockEnd:
			match := -1
			for j := len(stack) - 1; j >= 0; j-- {
				if strings.EqualFold(stack[j].name, tok.body) {
					match = j
					break
				}
			}
			if match < 0 {
				logger.Warn("unmatched conditional end marker left in place",
					logging.String("block", tok.body))
				continue
			}
			for _, abandoned := range stack[match+1:] {
				logger.Warn("unmatched conditional begin marker left in place",
					logging.String("block", abandoned.name))
			}
			begin := stack[match]
			stack = stack[:match]
			matched[begin.index] = true
			matched[i] = true
			hidden := !values.TruthyKey(begin.name)
			hiddenAt[begin.index] = hidden
			hiddenAt[i] = hidden
		}
	}
	for _, abandoned := range stack {
		logger.Warn("unmatched conditional begin marker left in place",
			logging.String("block", abandoned.name))
	}

	var out strings.Builder
	out.Grow(len(text))
	hiddenDepth := 0
	for i, tok := range tokens {
		isMarker := tok.kind == tokenBlockStart || tok.kind == tokenBlockEnd
		if isMarker && matched[i] {
			if hiddenAt[i] {
				if tok.kind == tokenBlockStart {
					hiddenDepth++
				} else {
					hiddenDepth--
				}
			}
			continue
		}
		if hiddenDepth == 0 {
			out.WriteString(tok.raw)
		}
	}
	return out.String()
}
