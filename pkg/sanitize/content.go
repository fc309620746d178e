// Package sanitize repairs artifact content trees before they reach the
// storage boundary, per the artifact store's "content sanitization is
// performed at the store boundary, not at robots" design note.
package sanitize

import "strings"

// Content walks a tree of strings, numbers, booleans, arrays and maps and
// returns an equivalent tree with every null byte stripped from string
// leaves. It never errors and never rejects input — violating content is
// silently repaired.
func Content(v any) any {
	switch t := v.(type) {
	case string:
		return stripNulls(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Content(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Content(val)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, val := range t {
			out[i] = stripNulls(val)
		}
		return out
	default:
		return v
	}
}

func stripNulls(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.ReplaceAll(s, "\x00", "")
}
