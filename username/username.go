// Package username canonicalizes chat display names so they can be matched
// against desk owner names in the virtual office.
//
// Chat display names at RC carry optional trailing parentheticals for
// pronouns and batch, e.g. "Jacob Young (he/him) (S2'16)". Only those
// trailing decorations are removed. Any other parenthetical, such as a
// nickname, is part of the name.
package username

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// trailing matches one parenthetical at the very end of a name.
	trailing = regexp.MustCompile(`\([^()]*\)$`)
	// pronouns matches a parenthetical of lowercase letters and slashes.
	pronouns = regexp.MustCompile(`^\([a-z/]+\)$`)
	// cohort matches a batch parenthetical like (F2'23) or (W'19).
	cohort = regexp.MustCompile(`^\((?:W|SP|Sp|S|F|m)\d?['’]\d{2}\)$`)
)

// Normalize returns the canonical form of a chat display name: the name with
// any trailing run of pronoun and batch parentheticals removed, trimmed, and
// in Unicode normalization form C.
//
// Normalize is idempotent.
func Normalize(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	for {
		k := trailing.FindStringIndex(name)
		if k == nil || !IsDecoration(name[k[0]:]) {
			break
		}
		name = strings.TrimSpace(name[:k[0]])
	}
	return name
}

// IsDecoration reports whether s, including its parentheses, is a pronoun or
// batch parenthetical that Normalize would strip from the end of a name.
func IsDecoration(s string) bool {
	return pronouns.MatchString(s) || cohort.MatchString(s)
}
