package template

import (
	"strings"
	"testing"
)

func TestTokenizeClassifiesKinds(t *testing.T) {
	text := "Heading {{entity.name}} {{BEGIN:block_a}}inner{{END:block_a}} tail"
	tokens := tokenize(text)

	var kinds []tokenKind
	for _, tok := range tokens {
		kinds = append(kinds, tok.kind)
	}
	want := []tokenKind{tokenText, tokenPlaceholder, tokenText, tokenBlockStart, tokenText, tokenBlockEnd, tokenText}
	if len(kinds) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d kind = %v, want %v", i, kinds[i], want[i])
		}
	}
	if tokens[1].body != "entity.name" {
		t.Errorf("placeholder body = %q", tokens[1].body)
	}
	if tokens[3].body != "block_a" || tokens[5].body != "block_a" {
		t.Errorf("marker bodies = %q / %q", tokens[3].body, tokens[5].body)
	}
}

func TestTokenizeMarkerWhitespaceAndCase(t *testing.T) {
	tests := []struct {
		raw  string
		kind tokenKind
		body string
	}{
		{"{{ BEGIN : concert_uniform }}", tokenBlockStart, "concert_uniform"},
		{"{{begin:x}}", tokenBlockStart, "x"},
		{"{{ End : x }}", tokenBlockEnd, "x"},
		{"{{END:has_ppd_rights}}", tokenBlockEnd, "has_ppd_rights"},
		{"{{ beginning.date }}", tokenPlaceholder, "beginning.date"},
		{"{{ending}}", tokenPlaceholder, "ending"},
		{"{{BEGIN:}}", tokenPlaceholder, "BEGIN:"},
	}
	for _, tt := range tests {
		tokens := tokenize(tt.raw)
		if len(tokens) != 1 {
			t.Errorf("tokenize(%q) produced %d tokens", tt.raw, len(tokens))
			continue
		}
		if tokens[0].kind != tt.kind || tokens[0].body != tt.body {
			t.Errorf("tokenize(%q) = kind %v body %q, want kind %v body %q",
				tt.raw, tokens[0].kind, tokens[0].body, tt.kind, tt.body)
		}
	}
}

func TestTokenizeRawRoundTrip(t *testing.T) {
	inputs := []string{
		"no tokens at all",
		"a {{x}} b {{ y }} c",
		"{{BEGIN:x}}interior{{END:x}}",
		"broken {{never closed",
		"stray {{a {{b}} tail",
		"phrase {{v.phrase:in {n} year:in {n} years}} end",
		"{{}} empty",
	}
	for _, input := range inputs {
		var rebuilt strings.Builder
		for _, tok := range tokenize(input) {
			rebuilt.WriteString(tok.raw)
		}
		if rebuilt.String() != input {
			t.Errorf("round trip mismatch:\n in: %q\nout: %q", input, rebuilt.String())
		}
	}
}

func TestTokenizeResynchronizesOnStrayOpener(t *testing.T) {
	tokens := tokenize("A{{B{{c}}")
	if len(tokens) != 2 {
		t.Fatalf("token count = %d, want 2", len(tokens))
	}
	if tokens[0].kind != tokenText || tokens[0].raw != "A{{B" {
		t.Errorf("first token = %v %q", tokens[0].kind, tokens[0].raw)
	}
	if tokens[1].kind != tokenPlaceholder || tokens[1].body != "c" {
		t.Errorf("second token = %v %q", tokens[1].kind, tokens[1].body)
	}
}

func TestTokenizePhraseKeepsSingleBraces(t *testing.T) {
	tokens := tokenize("{{v.phrase:in {n} year:in {n} years}}")
	if len(tokens) != 1 || tokens[0].kind != tokenPlaceholder {
		t.Fatalf("tokens = %+v", tokens)
	}
	if tokens[0].body != "v.phrase:in {n} year:in {n} years" {
		t.Errorf("body = %q", tokens[0].body)
	}
}
