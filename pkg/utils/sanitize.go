package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// CleanText strips all markup from s and trims surrounding whitespace.
// bluemonday escapes entities on output; they are unescaped again so a
// stored "Achar & Co" stays readable. Unescaping can surface markup that was
// entity-encoded in the input, so passes repeat until the text is stable.
func CleanText(s string) string {
	for {
		next := html.UnescapeString(strict.Sanitize(s))
		if next == s {
			return strings.TrimSpace(next)
		}
		s = next
	}
}

// CleanOptional applies CleanText to an optional value. Empty results become nil.
func CleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := CleanText(*s)
	if v == "" {
		return nil
	}
	return &v
}

// CleanList applies CleanText to each entry and drops empty ones.
func CleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if v := CleanText(s); v != "" {
			out = append(out, v)
		}
	}
	return out
}
