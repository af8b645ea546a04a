package template

import "strings"

// Inventory summarizes the tokens a template uses, for operator-facing
// template checks.
type Inventory struct {
	Placeholders []string
	Blocks       []string
	Gender       []string
	Phrases      []string
	UsesDates    bool
}

// Scan inventories the distinct placeholder keys, conditional block names,
// and special tokens in template text. Order follows first appearance.
func Scan(text string) Inventory {
	var inv Inventory
	seen := make(map[string]struct{})
	distinct := func(list []string, key, display string) []string {
		if _, ok := seen[key]; ok {
			return list
		}
		seen[key] = struct{}{}
		return append(list, display)
	}

	for _, tok := range tokenize(text) {
		switch tok.kind {
		case tokenBlockStart, tokenBlockEnd:
			name := strings.ToLower(tok.body)
			inv.Blocks = distinct(inv.Blocks, "block:"+name, name)
		case tokenPlaceholder:
			lower := strings.ToLower(tok.body)
			switch {
			case strings.HasPrefix(lower, genderPrefix):
				inv.Gender = distinct(inv.Gender, "gender:"+lower, tok.body)
			case indexFold(tok.body, phraseMarker) > 0:
				inv.Phrases = distinct(inv.Phrases, "phrase:"+lower, tok.body)
			case lower == "today" || lower == "today.iso" || lower == "today.long":
				inv.UsesDates = true
			default:
				inv.Placeholders = distinct(inv.Placeholders, "key:"+lower, tok.body)
			}
		}
	}
	return inv
}
