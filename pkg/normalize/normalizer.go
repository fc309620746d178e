// Package normalize implements the pure text-cleaning transform applied to
// raw extracted PDF text before it is stored as a FULL_TEXT artifact.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ligatures maps typographic ligatures to their expanded ASCII form.
// Applied after NFKD compatibility decomposition, which already expands
// every one of these runes (U+FB05 decomposes through the long s all the
// way to "st"); the explicit entries are a safety net in case a rune
// survives decomposition.
var ligatures = map[string]string{
	"ﬀ": "ff",
	"ﬁ": "fi",
	"ﬂ": "fl",
	"ﬃ": "ffi",
	"ﬄ": "ffl",
	"ﬅ": "st",
	"ﬆ": "st",
	"ſ": "s",
}

var (
	allDigitsLine    = regexp.MustCompile(`^[0-9]+$`)
	whitespaceRun    = regexp.MustCompile(`[ \t]+`)
	threeOrMoreBlank = regexp.MustCompile(`\n{3,}`)
)

// Normalizer cleans raw extracted text into a normalized form suitable for
// indexing. The zero value is ready to use.
type Normalizer struct{}

// Clean normalizes line endings to \n, expands typographic ligatures,
// drops lines whose trimmed content is only digits, collapses internal
// whitespace runs to a single space per line, collapses three-or-more
// consecutive blank lines to two, and trims leading/trailing whitespace.
//
// Clean is idempotent: Clean(Clean(x)) == Clean(x).
func (Normalizer) Clean(raw string) string {
	s := normalizeLineEndings(raw)
	s = expandLigatures(s)

	lines := strings.Split(s, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// A whitespace-only line is blank: reduce it to fully empty so
			// the newline-run collapse below sees one contiguous run.
			kept = append(kept, "")
			continue
		}
		if allDigitsLine.MatchString(trimmed) {
			continue
		}
		kept = append(kept, whitespaceRun.ReplaceAllString(line, " "))
	}
	s = strings.Join(kept, "\n")

	// Collapse any run of three-or-more newlines to exactly two. This is
	// the only collapse target that both bounds blank-line runs and keeps
	// the output free of \n\n\n sequences, which Clean's idempotence
	// depends on.
	s = threeOrMoreBlank.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

func normalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s
}

func expandLigatures(s string) string {
	s = norm.NFKD.String(s)
	for lig, expanded := range ligatures {
		s = strings.ReplaceAll(s, lig, expanded)
	}
	return s
}
