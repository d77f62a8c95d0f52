package command

import (
	"context"
	"log/slog"

	"github.com/jryio/statusbot/zulip"
)

// RememberName records the user's name in Virtual RC for finding their desk.
// The name is required; clearing it is ForgetName.
func RememberName(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	name := call.Command.Arg
	if name == "" {
		return zulip.Content("Tell me your Virtual RC name with `set_name name`. To forget a name you gave before, send `clear_name`.")
	}
	if err := robo.Directory.SetCorrection(call.Sender, name); err != nil {
		robo.Log.WarnContext(ctx, "couldn't set name", slog.Any("err", err))
		return zulip.Content("Sorry, I couldn't work out your Zulip name to remember that.")
	}
	robo.Log.InfoContext(ctx, "set name", slog.String("name", name))
	if _, ok := robo.Directory.Lookup(call.Sender); !ok {
		return zulip.Content("Got it, your Virtual RC name is **" + name + "**. I don't see a desk owned by that name yet, though.")
	}
	return zulip.Content("Got it, your Virtual RC name is **" + name + "**, and I found your desk." + robo.signoff())
}

// ForgetName forgets the user's name in Virtual RC.
func ForgetName(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	prev, ok := robo.Directory.ClearCorrection(call.Sender)
	if !ok {
		return zulip.Content("You haven't given me a Virtual RC name, so there's nothing to forget.")
	}
	robo.Log.InfoContext(ctx, "cleared name", slog.String("name", prev))
	return zulip.Content("Okay, I forgot that your Virtual RC name is **" + prev + "**. I'll use your Zulip name again.")
}
