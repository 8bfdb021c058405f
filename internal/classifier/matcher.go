package classifier

import (
	"strings"
	"unicode"
)

// normalizeWhitespace collapses every run of whitespace into a single space
// so that keywords match regardless of how the page wraps its text.
func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
				inSpace = true
			}
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// body caches the normalized forms of one response body so that many rules
// can be evaluated without re-normalizing it each time.
type body struct {
	exact string
	lower string
	ready bool
}

func newBody(raw string) *body {
	return &body{exact: normalizeWhitespace(raw)}
}

func (b *body) folded() string {
	if !b.ready {
		b.lower = strings.ToLower(b.exact)
		b.ready = true
	}
	return b.lower
}

// contains reports whether needle occurs in the body. A needle that is empty
// or only whitespace never matches.
func (b *body) contains(needle string, caseSensitive bool) bool {
	if strings.TrimSpace(needle) == "" {
		return false
	}
	needle = normalizeWhitespace(needle)
	if caseSensitive {
		return strings.Contains(b.exact, needle)
	}
	return strings.Contains(b.folded(), strings.ToLower(needle))
}
