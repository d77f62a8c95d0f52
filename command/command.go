// Package command parses and executes the commands users send to the bot.
package command

import (
	"context"
	"strings"

	"github.com/jryio/statusbot/emoji"
	"github.com/jryio/statusbot/status"
	"github.com/jryio/statusbot/zulip"
)

// Kind is the kind of a command.
type Kind int

const (
	// Help shows the usage text. Anything unrecognized is Help.
	Help Kind = iota
	// Show shows the user's current status.
	Show
	// Clear clears the user's status.
	Clear
	// SetStatus sets the user's status.
	SetStatus
	// Feedback sends feedback to the maintainers.
	Feedback
	// SetName records the user's name in the office.
	SetName
	// ClearName forgets the user's name in the office.
	ClearName
	// TestMissingDesk shows the text for users without a desk.
	TestMissingDesk
	// TestLookupDesk shows the desk found for a name.
	TestLookupDesk
	// TestSendHome sends the bot home.
	TestSendHome
)

var kindNames = [...]string{
	Help:            "help",
	Show:            "show",
	Clear:           "clear",
	SetStatus:       "status",
	Feedback:        "feedback",
	SetName:         "set_name",
	ClearName:       "clear_name",
	TestMissingDesk: "test_missing_desk",
	TestLookupDesk:  "test_lookup_desk",
	TestSendHome:    "test_send_home",
}

// String returns the keyword that selects the command kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Diagnostic reports whether the kind is a diagnostic command.
func (k Kind) Diagnostic() bool {
	return k >= TestMissingDesk
}

// Command is a parsed command.
type Command struct {
	Kind Kind
	// Status is the status to set for SetStatus.
	Status status.Status
	// Arg is the text argument of Feedback, SetName, and TestLookupDesk.
	Arg string
}

// Parse parses one line of a user's message into a command. Empty input and
// unknown keywords are Help, as are feedback and status without arguments.
// Keywords are case sensitive.
func Parse(line string, r *emoji.Resolver) Command {
	f := strings.Fields(line)
	if len(f) == 0 {
		return Command{Kind: Help}
	}
	rest := strings.Join(f[1:], " ")
	switch f[0] {
	case "help":
		return Command{Kind: Help}
	case "show":
		return Command{Kind: Show}
	case "clear":
		return Command{Kind: Clear}
	case "feedback":
		if rest == "" {
			return Command{Kind: Help}
		}
		return Command{Kind: Feedback, Arg: rest}
	case "status":
		if rest == "" {
			return Command{Kind: Help}
		}
		return Command{Kind: SetStatus, Status: status.Parse(rest, r)}
	case "set_name":
		return Command{Kind: SetName, Arg: rest}
	case "clear_name":
		return Command{Kind: ClearName}
	case "test_missing_desk":
		return Command{Kind: TestMissingDesk}
	case "test_lookup_desk":
		return Command{Kind: TestLookupDesk, Arg: rest}
	case "test_send_home":
		return Command{Kind: TestSendHome}
	default:
		return Command{Kind: Help}
	}
}

// Invocation is a command invocation. An Invocation and its fields must not
// be modified or retained by any command.
type Invocation struct {
	// Sender is the display name of the user who sent the command.
	Sender string
	// Command is the parsed command.
	Command Command
}

// Func executes a command.
type Func func(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply

var funcs = [...]Func{
	Help:            HelpText,
	Show:            ShowStatus,
	Clear:           ClearStatus,
	SetStatus:       UpdateStatus,
	Feedback:        SendFeedback,
	SetName:         RememberName,
	ClearName:       ForgetName,
	TestMissingDesk: MissingDeskText,
	TestLookupDesk:  LookupDesk,
	TestSendHome:    SendHome,
}

// Do executes a command. Diagnostic commands show help unless the robot
// allows them.
func Do(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	k := call.Command.Kind
	if k < 0 || int(k) >= len(funcs) || (k.Diagnostic() && !robo.Diagnostics) {
		k = Help
	}
	if robo.Commands != nil {
		robo.Commands.Observe(1, k.String())
	}
	return funcs[k](ctx, robo, call)
}
