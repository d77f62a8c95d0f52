package status

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jryio/statusbot/emoji"
)

// Parse reads a status from the arguments of a status command. The text is
// read as three optional parts in order: an emoji alias between colons, free
// text, and an expiration of the form <time:ISO8601>, each separated by
// optional whitespace. Parse never fails. Anything it cannot use becomes an
// absent field: an alias r cannot resolve, text that is only whitespace, or a
// malformed time.
//
// Only a colon-delimited alias is ever treated as an emoji, so a bare word
// like "apple" is status text.
func Parse(text string, r *emoji.Resolver) Status {
	var s Status
	rest := skipSpace(text)
	alias, rest := matchAlias(rest)
	if alias != "" && r != nil {
		s.Emoji, _ = r.Grapheme(alias)
	}
	s.Text, rest = matchText(skipSpace(rest))
	s.Expires, _ = matchTime(skipSpace(rest))
	return s
}

func skipSpace(s string) string {
	return strings.TrimLeftFunc(s, unicode.IsSpace)
}

// matchAlias matches the shortest :alias: at the start of s. The alias is
// non-empty and does not span lines.
func matchAlias(s string) (alias, rest string) {
	if !strings.HasPrefix(s, ":") {
		return "", s
	}
	body := s[1:]
	if k := strings.IndexByte(body, '\n'); k >= 0 {
		body = body[:k]
	}
	// The alias has at least one character, so "::x:" reads as ":x".
	if len(body) < 2 {
		return "", s
	}
	_, n := utf8.DecodeRuneInString(body)
	k := strings.IndexByte(body[n:], ':')
	if k < 0 {
		return "", s
	}
	k += n
	return body[:k], s[1+k+1:]
}

// matchText matches the longest run at the start of s of characters other
// than <, >, CR, LF, and tab, and trims it.
func matchText(s string) (text, rest string) {
	k := strings.IndexAny(s, "<>\r\n\t")
	if k < 0 {
		k = len(s)
	}
	return strings.TrimSpace(s[:k]), s[k:]
}

// timeLayouts are the ISO 8601 forms accepted in <time:...>.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05Z0700",
}

// matchTime matches <time:ISO8601> at the start of s.
func matchTime(s string) (time.Time, bool) {
	const prefix = "<time:"
	if !strings.HasPrefix(s, prefix) {
		return time.Time{}, false
	}
	body := s[len(prefix):]
	k := strings.IndexByte(body, '>')
	if k <= 0 {
		return time.Time{}, false
	}
	iso := strings.TrimSpace(body[:k])
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, iso)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
