// Package emoji translates between chat emoji aliases such as "apple" and the
// Unicode graphemes that the virtual office stores on desks.
//
// Chat aliases do not always match standard emoji names, so each chat alias
// maps to a list of candidate standard aliases which are tried in order.
package emoji

import (
	_ "embed"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/go-json-experiment/json"
	gemoji "github.com/kyokomi/emoji/v2"
	"go.mau.fi/util/variationselector"
)

//go:embed zulip.json
var zulipTable []byte

// Resolver maps chat aliases to graphemes and back.
// A Resolver is immutable once created and safe for concurrent use.
type Resolver struct {
	// chat maps chat aliases to candidate standard aliases.
	chat map[string][]string
	// rev maps graphemes with variation selectors removed to chat aliases.
	rev map[string]string
}

// New creates a Resolver from a table of chat aliases to comma-separated
// lists of standard aliases. Aliases are given without surrounding colons.
func New(table map[string]string) *Resolver {
	r := &Resolver{
		chat: make(map[string][]string, len(table)),
		rev:  make(map[string]string, len(table)),
	}
	for alias, cands := range table {
		var l []string
		for _, c := range strings.Split(cands, ",") {
			c = strings.Trim(strings.TrimSpace(c), ":")
			if c != "" {
				l = append(l, c)
			}
		}
		r.chat[alias] = l
	}
	// Build the reverse table in a fixed order so that the alias shown for a
	// grapheme with several chat aliases is stable: shortest, then least.
	aliases := make([]string, 0, len(r.chat))
	for alias := range r.chat {
		aliases = append(aliases, alias)
	}
	slices.SortFunc(aliases, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	for _, alias := range aliases {
		g, ok := r.Grapheme(alias)
		if !ok {
			continue
		}
		k := variationselector.Remove(g)
		if _, ok := r.rev[k]; !ok {
			r.rev[k] = alias
		}
	}
	return r
}

// Load creates a Resolver from a JSON object of chat aliases to
// comma-separated standard aliases.
func Load(r io.Reader) (*Resolver, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("couldn't read emoji table: %w", err)
	}
	var table map[string]string
	if err := json.Unmarshal(b, &table); err != nil {
		return nil, fmt.Errorf("couldn't decode emoji table: %w", err)
	}
	return New(table), nil
}

var (
	defaultResolver *Resolver
	defaultOnce     sync.Once
)

// Default returns the Resolver for the built-in Zulip alias table.
func Default() *Resolver {
	defaultOnce.Do(func() {
		var table map[string]string
		if err := json.Unmarshal(zulipTable, &table); err != nil {
			panic(fmt.Errorf("emoji: built-in table is invalid: %w", err))
		}
		defaultResolver = New(table)
	})
	return defaultResolver
}

// Grapheme returns the grapheme for a chat alias. The alias may be given with
// or without surrounding colons. The result is false if the alias is unknown
// or none of its candidates is a standard alias.
func (r *Resolver) Grapheme(alias string) (string, bool) {
	for _, c := range r.chat[strings.Trim(alias, ":")] {
		if g, ok := Standard(c); ok {
			return g, true
		}
	}
	return "", false
}

// Alias returns the chat alias for a grapheme, without colons.
// Differences in variation selectors are ignored.
func (r *Resolver) Alias(grapheme string) (string, bool) {
	a, ok := r.rev[variationselector.Remove(grapheme)]
	return a, ok
}

// Len returns the number of chat aliases the Resolver knows.
func (r *Resolver) Len() int {
	return len(r.chat)
}

var (
	standard     map[string]string
	standardOnce sync.Once
)

// Standard returns the grapheme for a standard emoji alias, with or without
// surrounding colons.
func Standard(alias string) (string, bool) {
	standardOnce.Do(func() {
		standard = gemoji.CodeMap()
	})
	g, ok := standard[":"+strings.Trim(alias, ":")+":"]
	if !ok {
		return "", false
	}
	g = strings.TrimSpace(g)
	return g, g != ""
}
