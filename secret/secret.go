// Package secret holds credentials that must not appear in logs or replies.
package secret

import (
	"crypto/subtle"
	"log/slog"

	"golang.org/x/crypto/sha3"
)

// Redacted is what a Secret formats as.
const Redacted = "[REDACTED]"

// Secret is a credential. Formatting or logging a Secret shows Redacted in
// place of its value; use Reveal to get the value.
type Secret string

// Reveal returns the secret value.
func (s Secret) Reveal() string {
	return string(s)
}

// String implements fmt.Stringer.
func (s Secret) String() string {
	return Redacted
}

// GoString implements fmt.GoStringer so that %#v is redacted as well.
func (s Secret) GoString() string {
	return Redacted
}

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(Redacted)
}

// IsZero reports whether the secret is empty.
func (s Secret) IsZero() bool {
	return s == ""
}

// Equal reports whether v matches the secret. The comparison takes the same
// time regardless of where the two differ or how long either is.
func (s Secret) Equal(v string) bool {
	a := sha3.Sum256([]byte(s))
	b := sha3.Sum256([]byte(v))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1
}
