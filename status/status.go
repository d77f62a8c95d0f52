// Package status defines desk statuses and parses them from chat text.
package status

import (
	"strings"
	"time"

	"github.com/jryio/statusbot/emoji"
)

// DefaultDuration is how long a status with text but no expiration lasts.
const DefaultDuration = 30 * time.Minute

// Status is a desk status. Zero fields are absent.
type Status struct {
	// Emoji is the status emoji as a grapheme, not an alias.
	Emoji string
	// Text is the status text. It never contains < or >.
	Text string
	// Expires is the time at which the status expires.
	Expires time.Time
}

// IsEmpty reports whether all of the status fields are absent.
func (s Status) IsEmpty() bool {
	return s.Emoji == "" && s.Text == "" && s.Expires.IsZero()
}

// WithDefaultExpiry returns s with an expiration of DefaultDuration after now
// if it has text but no expiration.
func (s Status) WithDefaultExpiry(now time.Time) Status {
	if s.Text != "" && s.Expires.IsZero() {
		s.Expires = now.Add(DefaultDuration)
	}
	return s
}

// String formats the status with the emoji as a grapheme.
func (s Status) String() string {
	return s.Render(nil)
}

// Render formats the status in the same shape that Parse accepts. If r is
// not nil and knows a chat alias for the emoji, the emoji is written as
// :alias: so that chat clients render it and Parse can read it back.
// Absent fields are omitted entirely.
func (s Status) Render(r *emoji.Resolver) string {
	parts := make([]string, 0, 3)
	if s.Emoji != "" {
		e := s.Emoji
		if r != nil {
			if a, ok := r.Alias(e); ok {
				e = ":" + a + ":"
			}
		}
		parts = append(parts, e)
	}
	if s.Text != "" {
		parts = append(parts, s.Text)
	}
	if !s.Expires.IsZero() {
		parts = append(parts, "<time:"+s.Expires.Format(time.RFC3339)+">")
	}
	return strings.Join(parts, " ")
}
