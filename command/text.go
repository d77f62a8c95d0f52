package command

import (
	"context"

	"github.com/jryio/statusbot/zulip"
)

const issues = "https://github.com/jryio/statusbot/issues/new"

const helpText = "**Status Bot commands**\n" +
	"* `status :emoji: text <time:...>` sets the status on your Virtual RC desk. Each part is optional, but give at least one.\n" +
	"  * `:emoji:` is a standard emoji. Custom emoji like `:sadparrot:` are ignored.\n" +
	"  * `text` is what others see. It can't contain `<` or `>`.\n" +
	"  * `<time:...>` is when the status expires. Use Zulip's [global time](https://zulip.com/help/global-times) picker and choose a time in the future. Text without a time expires after 30 minutes.\n" +
	"  * For example, `status :crab: Rewriting Status Bot <time:2025-01-01T10:00:00-04:00>`\n" +
	"* `show` shows your current status.\n" +
	"* `clear` clears your status.\n" +
	"* `feedback text` sends your feedback to the maintainers of Status Bot.\n" +
	"* `set_name name` tells Status Bot your Virtual RC name when it differs from your Zulip name.\n" +
	"* `clear_name` forgets the name you gave with `set_name`.\n" +
	"* `help` shows this message.\n" +
	"\n" +
	"Found a bug? Please [open an issue](" + issues + ")."

const missingDeskText = "**Status Bot couldn't find your desk in Virtual RC.**\n" +
	"* Check that you have [claimed a desk](https://recurse.notion.site/RC-Together-User-Guide-695cc163c76c47449347bd97a6842c3b) in Virtual RC.\n" +
	"* Status Bot looks for a desk owned by your Zulip name, ignoring pronoun and batch parentheticals like `(they/them)` and `(F2'23)`. " +
	"If your Virtual RC name is different, tell Status Bot with `set_name name`.\n" +
	"* If Status Bot still can't find your desk, please [open an issue](" + issues + ")."

// HelpText shows how to use the bot.
func HelpText(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	return zulip.Content(helpText)
}

// MissingDeskText shows what a user without a desk sees.
func MissingDeskText(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	return zulip.Content(missingDeskText)
}
