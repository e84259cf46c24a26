package errors

import (
	"fmt"
	"sort"
)

// Fields collects per-field validation messages keyed by JSON field name.
type Fields map[string]string

// Add records msg for field, keeping the first message reported.
func (f Fields) Add(field, msg string) {
	if _, exists := f[field]; exists {
		return
	}
	f[field] = msg
}

// Err returns a validation error carrying the collected fields, or nil.
func (f Fields) Err() error {
	if len(f) == 0 {
		return nil
	}
	return New(CodeValidation, "validation failed").WithDetails(f)
}

// Messages flattens the fields into sorted "field message" strings.
func (f Fields) Messages() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s %s", k, f[k]))
	}
	return out
}
