package upstream

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// FieldMap lists, per canonical field, the alternate upstream paths that may
// carry it, in priority order. Upstream APIs rename fields between versions
// (snake_case vs camelCase, flattened vs nested) and the first present,
// non-null path wins. A field missing from the map is read by its own name.
type FieldMap map[string][]string

// Get returns the first present, non-null value for field.
func (m FieldMap) Get(r gjson.Result, field string) gjson.Result {
	paths, ok := m[field]
	if !ok {
		paths = []string{field}
	}
	for _, path := range paths {
		if v := r.Get(path); v.Exists() && v.Type != gjson.Null {
			return v
		}
	}
	return gjson.Result{}
}

// String returns the trimmed string value of field, or "".
func (m FieldMap) String(r gjson.Result, field string) string {
	return strings.TrimSpace(m.Get(r, field).String())
}

// Float returns the numeric value of field. Numeric strings are accepted.
// The boolean is false when the field is absent or not a number.
func (m FieldMap) Float(r gjson.Result, field string) (float64, bool) {
	return number(m.Get(r, field))
}

// Int returns the integer value of field, or 0.
func (m FieldMap) Int(r gjson.Result, field string) int {
	f, _ := m.Float(r, field)
	return int(f)
}

// Strings returns field as a list of non-empty strings. A scalar becomes a
// one-element list.
func (m FieldMap) Strings(r gjson.Result, field string) []string {
	v := m.Get(r, field)
	if !v.Exists() {
		return []string{}
	}
	if !v.IsArray() {
		if s := strings.TrimSpace(v.String()); s != "" {
			return []string{s}
		}
		return []string{}
	}
	out := make([]string, 0, len(v.Array()))
	for _, item := range v.Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func number(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Num, true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
