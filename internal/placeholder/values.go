package placeholder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Values is the placeholder map a contract is rendered from. Keys match
// case-insensitively while the original spelling is preserved for output and
// persistence. The API is append-only: pipeline phases add entries on top of
// what earlier phases produced, they never remove them.
type Values struct {
	entries map[string]entry
}

type entry struct {
	key   string
	value any
}

// New returns an empty value map.
func New() *Values {
	return &Values{entries: make(map[string]entry)}
}

// FromMap builds a value map from a plain map.
func FromMap(m map[string]any) *Values {
	v := New()
	for key, value := range m {
		v.Set(key, value)
	}
	return v
}

func canonical(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Set adds or replaces an entry. Re-setting a key that differs only in case
// keeps a single entry under the latest spelling.
func (v *Values) Set(key string, value any) {
	if v.entries == nil {
		v.entries = make(map[string]entry)
	}
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return
	}
	v.entries[canonical(trimmed)] = entry{key: trimmed, value: value}
}

// Merge copies every entry from other into v. Later merges win on key
// collisions, mirroring how request overrides shadow derived values.
func (v *Values) Merge(other *Values) {
	if other == nil {
		return
	}
	for _, e := range other.entries {
		v.Set(e.key, e.value)
	}
}

// Get looks up a value by key, ignoring case and surrounding whitespace.
func (v *Values) Get(key string) (any, bool) {
	if v == nil || v.entries == nil {
		return nil, false
	}
	e, ok := v.entries[canonical(key)]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// Has reports whether a key is present.
func (v *Values) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Len returns the number of entries.
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// Keys returns the original key spellings sorted case-insensitively.
func (v *Values) Keys() []string {
	if v == nil {
		return nil
	}
	keys := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		keys = append(keys, e.key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return canonical(keys[i]) < canonical(keys[j])
	})
	return keys
}

// Clone returns an independent copy.
func (v *Values) Clone() *Values {
	out := New()
	if v != nil {
		for _, e := range v.entries {
			out.entries[canonical(e.key)] = e
		}
	}
	return out
}

// Map returns the entries as a plain map keyed by original spelling.
func (v *Values) Map() map[string]any {
	out := make(map[string]any, v.Len())
	if v != nil {
		for _, e := range v.entries {
			out[e.key] = e.value
		}
	}
	return out
}

// MarshalJSON serializes entries as a flat object with deterministic key order.
func (v *Values) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range v.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		value, _ := v.Get(key)
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("marshal placeholder %q: %w", key, err)
		}
		buf.Write(encoded)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores entries from a flat object. Numbers decode to int64
// when integral so formatting stays stable across a persistence round trip.
func (v *Values) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	raw := make(map[string]any)
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	v.entries = make(map[string]entry, len(raw))
	for key, value := range raw {
		if num, ok := value.(json.Number); ok {
			value = normalizeNumber(num)
		}
		v.Set(key, value)
	}
	return nil
}

func normalizeNumber(num json.Number) any {
	if !strings.ContainsAny(num.String(), ".eE") {
		if i, err := num.Int64(); err == nil {
			return i
		}
	}
	if f, err := num.Float64(); err == nil {
		return f
	}
	return num.String()
}
