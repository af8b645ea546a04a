package template

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"vellum/internal/logging"
	"vellum/internal/placeholder"
)

const (
	genderPrefix = "entity.gender:"
	phraseMarker = ".phrase:"

	todayDotted = "02.01.2006"
	todayISO    = "2006-01-02"
	todayLong   = "2 January 2006"
)

// ResolveSpecials scans the template for gender and phrase tokens and adds
// one resolved entry per distinct token to the value map, keyed by the
// token's exact interior. The three date keys (today, today.iso,
// today.long) are always added from the supplied day, whether or not the
// template uses them. The text itself is not modified; substitution picks
// the new entries up afterwards.
func ResolveSpecials(text string, values *placeholder.Values, today time.Time, logger *slog.Logger) {
	if logger == nil {
		logger = logging.NewNop()
	}

	values.Set("today", today.Format(todayDotted))
	values.Set("today.iso", today.Format(todayISO))
	values.Set("today.long", today.Format(todayLong))

	for _, tok := range tokenize(text) {
		if tok.kind != tokenPlaceholder {
			continue
		}
		if resolveGender(tok.body, values) {
			continue
		}
		resolvePhrase(tok.body, values, logger)
	}
}

// resolveGender handles {{entity.gender:masculine:feminine[:neutral]}}.
// M selects the first form, F the second, anything else the third when
// present and the masculine form otherwise. Without an entity.gender value
// the token is left unresolved. Reports whether the token was a gender
// token at all.
func resolveGender(body string, values *placeholder.Values) bool {
	if len(body) < len(genderPrefix) || !strings.EqualFold(body[:len(genderPrefix)], genderPrefix) {
		return false
	}
	raw, ok := values.Get("entity.gender")
	if !ok {
		return true
	}
	forms := strings.SplitN(body[len(genderPrefix):], ":", 3)
	if len(forms) < 2 {
		return true
	}
	var selected string
	switch strings.ToUpper(strings.TrimSpace(placeholder.Format(raw))) {
	case "M":
		selected = forms[0]
	case "F":
		selected = forms[1]
	default:
		if len(forms) == 3 {
			selected = forms[2]
		} else {
			selected = forms[0]
		}
	}
	values.Set(body, selected)
	return true
}

// resolvePhrase handles {{<variable>.phrase:<singular>:<plural>}} with a
// literal {n} interpolated from the variable's numeric value. A value of
// exactly 1 selects the singular phrase; everything else, including 0 and
// missing, selects the plural.
func resolvePhrase(body string, values *placeholder.Values, logger *slog.Logger) {
	idx := indexFold(body, phraseMarker)
	if idx <= 0 {
		return
	}
	variable := strings.TrimSpace(body[:idx])
	parts := strings.SplitN(body[idx+len(phraseMarker):], ":", 2)
	if len(parts) != 2 {
		return
	}
	value, ok := values.FloatValue(variable)
	if !ok {
		logger.Debug("phrase variable missing or not numeric, using 0",
			logging.String("variable", variable))
		value = 0
	}
	phrase := parts[1]
	if value == 1 {
		phrase = parts[0]
	}
	values.Set(body, strings.ReplaceAll(phrase, "{n}", strconv.Itoa(int(value))))
}

// indexFold finds the first occurrence of an ASCII needle in s,
// case-insensitively.
func indexFold(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
