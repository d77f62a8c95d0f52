package command

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jryio/statusbot/zulip"
)

// SendFeedback forwards the user's feedback to the maintainers. The feedback
// does not say who sent it.
func SendFeedback(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	if len(robo.Maintainers) == 0 {
		return zulip.Content("Sorry, nobody is collecting feedback right now. You can [open an issue](" + issues + ") instead.")
	}
	msg := "**New Status Bot feedback**\n" + quote(call.Command.Arg)
	if err := robo.Chat.SendDirect(ctx, robo.Maintainers, msg); err != nil {
		robo.Log.ErrorContext(ctx, "couldn't send feedback", slog.Any("err", err))
		robo.failed("feedback")
		return zulip.Content("Sorry, I couldn't deliver your feedback. Try again in a bit.")
	}
	return zulip.Content("Thanks for the feedback! I passed it along." + robo.signoff())
}

// quote formats text as a Markdown quote block.
func quote(text string) string {
	return "```quote\n" + strings.TrimSpace(text) + "\n```"
}
