// Package directory maps chat users to their desks in the office.
//
// The desk table is rebuilt wholesale from the office on each refresh and
// swapped in atomically, so a lookup sees either the old table or the new one.
// A separate correction table lets users name their office identity when it
// differs from their chat name. Corrections live only in memory.
package directory

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jryio/statusbot/office"
	"github.com/jryio/statusbot/syncmap"
	"github.com/jryio/statusbot/username"
)

// ErrUnavailable is returned when the correction table is busy with a write.
var ErrUnavailable = errors.New("correction table unavailable")

// Source lists the desks in the office.
type Source interface {
	Desks(ctx context.Context) ([]office.Desk, error)
}

// Entry is a desk found for a user.
type Entry struct {
	// Name is the desk owner's name as the office has it.
	Name string
	// Desk is the desk ID.
	Desk int
	// Pos is the desk's position.
	Pos office.Position
}

// FetchError is returned when a refresh could not list the desks.
type FetchError struct {
	Err error
}

func (err *FetchError) Error() string {
	return "couldn't refresh directory: " + err.Err.Error()
}

func (err *FetchError) Unwrap() error {
	return err.Err
}

// snapshot is one generation of the desk table. It is never modified after
// it is published.
type snapshot struct {
	desks map[string]Entry
	at    time.Time
}

// correctionTable holds chat users' corrected office names by normalized
// chat name. *syncmap.Map satisfies it.
type correctionTable interface {
	TryLoad(key string) (v string, ok, locked bool)
	Store(key, value string)
	LoadAndDelete(key string) (string, bool)
}

// Directory finds desks by chat user.
// The zero value is not usable; create one with New.
type Directory struct {
	table       atomic.Pointer[snapshot]
	corrections correctionTable
}

// New creates an empty directory. Lookups miss until the first refresh.
func New() *Directory {
	d := &Directory{corrections: syncmap.New[string, string]()}
	d.table.Store(&snapshot{})
	return d
}

// Refresh replaces the desk table with the desks listed by src. Desks without
// an owner are left out. If listing fails, the error is a *FetchError and the
// current table stays in place.
func (d *Directory) Refresh(ctx context.Context, src Source) error {
	desks, err := src.Desks(ctx)
	if err != nil {
		return &FetchError{Err: err}
	}
	m := make(map[string]Entry, len(desks))
	for _, desk := range desks {
		if desk.Owner == nil {
			continue
		}
		k := username.Normalize(desk.Owner.Name)
		if k == "" {
			continue
		}
		m[k] = Entry{Name: desk.Owner.Name, Desk: desk.ID, Pos: desk.Pos}
	}
	d.table.Store(&snapshot{desks: m, at: time.Now()})
	return nil
}

// Lookup finds the desk for a chat user. The chat name is replaced by the
// user's correction if there is one, then normalized and looked up. If the
// correction table is busy, the lookup misses.
func (d *Directory) Lookup(chatName string) (Entry, bool) {
	name, ok, err := d.Correction(chatName)
	if err != nil {
		return Entry{}, false
	}
	if !ok {
		name = chatName
	}
	e, ok := d.table.Load().desks[username.Normalize(name)]
	return e, ok
}

// Correction returns the office name a chat user has set, if any. The error
// is ErrUnavailable if the correction table is busy.
func (d *Directory) Correction(chatName string) (string, bool, error) {
	name, ok, locked := d.corrections.TryLoad(username.Normalize(chatName))
	if !locked {
		return "", false, ErrUnavailable
	}
	return name, ok, nil
}

// SetCorrection records that a chat user's desk is under name in the office.
// The correction applies however the user decorates their chat name.
func (d *Directory) SetCorrection(chatName, name string) error {
	k := username.Normalize(chatName)
	if k == "" {
		return fmt.Errorf("no name to correct in %q", chatName)
	}
	d.corrections.Store(k, strings.TrimSpace(name))
	return nil
}

// ClearCorrection removes a chat user's correction and returns the name it
// held, if there was one.
func (d *Directory) ClearCorrection(chatName string) (string, bool) {
	return d.corrections.LoadAndDelete(username.Normalize(chatName))
}

// Len returns the number of desks in the table.
func (d *Directory) Len() int {
	return len(d.table.Load().desks)
}

// All iterates over the desk table by normalized owner name.
func (d *Directory) All() iter.Seq2[string, Entry] {
	return maps.All(d.table.Load().desks)
}

// Refreshed returns the time of the last successful refresh, or the zero
// time if there has been none.
func (d *Directory) Refreshed() time.Time {
	return d.table.Load().at
}
