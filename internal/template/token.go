package template

import "strings"

// tokenKind classifies a lexed span of template text.
type tokenKind int

const (
	tokenText tokenKind = iota
	tokenPlaceholder
	tokenBlockStart
	tokenBlockEnd
)

// token is one lexed span. raw always holds the exact source text, so
// concatenating raws reproduces the input byte for byte.
type token struct {
	kind tokenKind
	raw  string
	// body is the trimmed interior between the braces for placeholders,
	// or the block name for BEGIN/END markers.
	body string
}

const (
	openBraces  = "{{"
	closeBraces = "}}"
)

// tokenize lexes template text into literal spans, placeholder tokens, and
// conditional block markers. A token's interior runs to the first "}}": an
// unterminated "{{", or one that runs into another "{{" first, stays
// literal text. Single braces inside an interior (phrase {n} counters)
// pass through.
func tokenize(text string) []token {
	var tokens []token
	rest := text
	for {
		open := strings.Index(rest, openBraces)
		if open < 0 {
			break
		}
		closeIdx := strings.Index(rest[open+2:], closeBraces)
		if closeIdx < 0 {
			break
		}
		if nextOpen := strings.Index(rest[open+2:], openBraces); nextOpen >= 0 && nextOpen < closeIdx {
			// Stray opener; resynchronize on the next one.
			tokens = append(tokens, token{kind: tokenText, raw: rest[:open+2+nextOpen]})
			rest = rest[open+2+nextOpen:]
			continue
		}
		if open > 0 {
			tokens = append(tokens, token{kind: tokenText, raw: rest[:open]})
		}
		end := open + 2 + closeIdx + 2
		tokens = append(tokens, classify(rest[open:end]))
		rest = rest[end:]
	}
	if rest != "" {
		tokens = append(tokens, token{kind: tokenText, raw: rest})
	}
	return tokens
}

func classify(raw string) token {
	body := strings.TrimSpace(raw[2 : len(raw)-2])
	if name, ok := markerName(body, "BEGIN"); ok {
		return token{kind: tokenBlockStart, raw: raw, body: name}
	}
	if name, ok := markerName(body, "END"); ok {
		return token{kind: tokenBlockEnd, raw: raw, body: name}
	}
	return token{kind: tokenPlaceholder, raw: raw, body: body}
}

// markerName matches "BEGIN : name" shapes case-insensitively, tolerating
// whitespace around the keyword, the colon, and the name.
func markerName(body, keyword string) (string, bool) {
	if len(body) < len(keyword) || !strings.EqualFold(body[:len(keyword)], keyword) {
		return "", false
	}
	rest := strings.TrimSpace(body[len(keyword):])
	if !strings.HasPrefix(rest, ":") {
		return "", false
	}
	name := strings.TrimSpace(rest[1:])
	if name == "" {
		return "", false
	}
	return name, true
}
