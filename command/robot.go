package command

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"gitlab.com/zephyrtronium/pick"

	"github.com/jryio/statusbot/directory"
	"github.com/jryio/statusbot/emoji"
	"github.com/jryio/statusbot/metrics"
	"github.com/jryio/statusbot/office"
	"github.com/jryio/statusbot/status"
)

// Office is the part of the office API that commands use.
type Office interface {
	Desk(ctx context.Context, id int) (*office.Desk, error)
	UpdateDesk(ctx context.Context, id int, st status.Status) (*office.Desk, error)
	MoveBot(ctx context.Context, p office.Position) (*office.Bot, error)
}

// Chat is the part of the chat API that commands use.
type Chat interface {
	SendDirect(ctx context.Context, to []string, content string) error
}

// Robot is the bot state as is visible to commands.
type Robot struct {
	Log       *slog.Logger
	Office    Office
	Chat      Chat
	Directory *directory.Directory
	Emoji     *emoji.Resolver
	// Home is where the bot waits between commands.
	Home office.Position
	// Maintainers are the emails of the users who receive feedback.
	Maintainers []string
	// Signoff picks an emote to end successful replies. May be nil.
	Signoff *pick.Dist[string]
	// Diagnostics enables the diagnostic commands.
	Diagnostics bool
	// Now returns the current time. If nil, time.Now is used.
	Now func() time.Time
	// Commands counts executed commands by kind. May be nil.
	Commands metrics.Observer
	// Failures counts failed remote calls by operation. May be nil.
	Failures metrics.Observer

	// avatar is held from a command's first move of the bot until the bot
	// is home again.
	avatar sync.Mutex
}

func (robo *Robot) now() time.Time {
	if robo.Now == nil {
		return time.Now()
	}
	return robo.Now()
}

// signoff returns a space and an emote to end a reply, or nothing.
func (robo *Robot) signoff() string {
	if robo.Signoff == nil {
		return ""
	}
	e := robo.Signoff.Pick(rand.Uint32())
	if e == "" {
		return ""
	}
	return " " + e
}

func (robo *Robot) failed(op string) {
	if robo.Failures != nil {
		robo.Failures.Observe(1, op)
	}
}
