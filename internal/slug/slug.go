// Package slug derives URL slugs from titles and resolves collisions by
// numeric suffix probing. The rewrite rules are load-bearing: existing
// published URLs depend on them staying byte-stable.
package slug

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	invalidChars = regexp.MustCompile(`[^a-z0-9 -]+`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
)

// Generate lowercases the title, drops everything outside [a-z0-9 -],
// turns whitespace runs into hyphens, collapses doubled hyphens, and trims
// the ends. The result matches ^[a-z0-9-]*$ and may be empty.
func Generate(title string) string {
	s := strings.ToLower(title)
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Ensure returns base unchanged when taken reports it free, otherwise the
// lowest-numbered base-N that is free. The probe-then-claim gap is closed
// by the unique index on the slug field, not here.
func Ensure(base string, taken func(string) (bool, error)) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		inUse, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
