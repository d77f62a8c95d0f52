package command

import (
	"context"
	"fmt"

	"github.com/jryio/statusbot/zulip"
)

// LookupDesk shows the desk the directory finds for a name, or for the
// sender if no name is given.
func LookupDesk(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	name := call.Command.Arg
	if name == "" {
		name = call.Sender
	}
	e, ok := robo.Directory.Lookup(name)
	if !ok {
		return zulip.Content(fmt.Sprintf("No desk for **%s** among %d desks.", name, robo.Directory.Len()))
	}
	return zulip.Content(fmt.Sprintf("**%s** owns desk %d at (%d, %d) as **%s**.", name, e.Desk, e.Pos.X, e.Pos.Y, e.Name))
}

// SendHome sends the bot to its home position.
func SendHome(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	robo.avatar.Lock()
	err := goHome(ctx, robo, robo.Log)
	robo.avatar.Unlock()
	if err != nil {
		return zulip.Content("Couldn't go home: " + err.Error())
	}
	return zulip.Content(fmt.Sprintf("Went home to (%d, %d).", robo.Home.X, robo.Home.Y))
}
