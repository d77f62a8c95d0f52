package command

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jryio/statusbot/directory"
	"github.com/jryio/statusbot/office"
	"github.com/jryio/statusbot/status"
	"github.com/jryio/statusbot/zulip"
)

// ShowStatus shows the status on the user's desk.
func ShowStatus(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	e, ok := robo.Directory.Lookup(call.Sender)
	if !ok {
		return zulip.Content(missingDeskText)
	}
	d, err := robo.Office.Desk(ctx, e.Desk)
	if err != nil {
		robo.Log.ErrorContext(ctx, "couldn't get desk", slog.Any("err", err), slog.Int("desk", e.Desk))
		robo.failed("desk")
		return zulip.Content("Sorry, I couldn't get your status from Virtual RC. Try again in a bit.")
	}
	st := d.Status()
	if st.IsEmpty() {
		return zulip.Content("Your status is empty.")
	}
	return zulip.Content("Your status is " + st.Render(robo.Emoji) + robo.signoff())
}

// UpdateStatus sets the status on the user's desk.
func UpdateStatus(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	st := call.Command.Status
	if st.IsEmpty() {
		return zulip.Content("I couldn't find a status in that. Custom emoji aren't supported, and text can't contain `<` or `>`. Send `help` for examples.")
	}
	now := robo.now()
	if !st.Expires.IsZero() && !st.Expires.After(now) {
		return zulip.Content("That time has already passed. Choose a time in the future for your status to expire.")
	}
	e, ok := robo.Directory.Lookup(call.Sender)
	if !ok {
		return zulip.Content(missingDeskText)
	}
	d, r := setDesk(ctx, robo, e, st.WithDefaultExpiry(now))
	if d == nil {
		return r
	}
	return zulip.Content("Your status is now " + d.Status().Render(robo.Emoji) + robo.signoff())
}

// ClearStatus clears the status on the user's desk.
func ClearStatus(ctx context.Context, robo *Robot, call *Invocation) zulip.Reply {
	e, ok := robo.Directory.Lookup(call.Sender)
	if !ok {
		return zulip.Content(missingDeskText)
	}
	d, r := setDesk(ctx, robo, e, status.Status{})
	if d == nil {
		return r
	}
	return zulip.Content("Your status is cleared." + robo.signoff())
}

// setDesk moves the bot next to a desk and sets its status, then sends the
// bot home. If it fails, the desk is nil and the reply explains why.
// No other command moves the bot until it is home again.
func setDesk(ctx context.Context, robo *Robot, e directory.Entry, st status.Status) (*office.Desk, zulip.Reply) {
	log := robo.Log.With(slog.Int("desk", e.Desk))
	robo.avatar.Lock()
	defer robo.avatar.Unlock()
	at, err := approach(ctx, robo, e)
	if err != nil {
		var nope *office.NoOpenPositionError
		if errors.As(err, &nope) {
			log.WarnContext(ctx, "no room next to desk", slog.Any("err", err))
			return nil, zulip.Content("Sorry, I couldn't find a free spot next to your desk in Virtual RC, so I couldn't change your status. Is your desk surrounded?")
		}
		log.ErrorContext(ctx, "couldn't move to desk", slog.Any("err", err))
		robo.failed("move")
		return nil, zulip.Content("Sorry, I couldn't reach Virtual RC to change your status. Try again in a bit.")
	}
	// Whatever happens with the desk, the bot has left home.
	defer goHome(context.WithoutCancel(ctx), robo, log)
	log.DebugContext(ctx, "moved next to desk", slog.Int("x", at.X), slog.Int("y", at.Y))
	d, err := robo.Office.UpdateDesk(ctx, e.Desk, st)
	if err != nil {
		log.ErrorContext(ctx, "couldn't update desk", slog.Any("err", err))
		robo.failed("update")
		return nil, zulip.Content("Sorry, Virtual RC didn't accept the change to your desk. Try again in a bit.")
	}
	log.InfoContext(ctx, "updated desk", slog.String("status", d.Status().String()))
	return d, zulip.Reply{}
}

// approach moves the bot into the first free cell next to the desk, trying
// the cells in the order of office.Adjacent. Only blocked cells are skipped;
// any other failure ends the search. Cells that coincide at the edge of the
// grid are each tried anyway. If every cell is blocked, the error is an
// *office.NoOpenPositionError.
func approach(ctx context.Context, robo *Robot, e directory.Entry) (office.Position, error) {
	for _, p := range office.Adjacent(e.Pos) {
		_, err := robo.Office.MoveBot(ctx, p)
		switch {
		case err == nil:
			return p, nil
		case errors.Is(err, office.ErrUnprocessable):
			continue
		default:
			return office.Position{}, err
		}
	}
	return office.Position{}, &office.NoOpenPositionError{Desk: e.Desk, Pos: e.Pos}
}

// goHome sends the bot home. Failure is only logged.
func goHome(ctx context.Context, robo *Robot, log *slog.Logger) error {
	_, err := robo.Office.MoveBot(ctx, robo.Home)
	if err != nil {
		log.WarnContext(ctx, "couldn't go home", slog.Any("err", err))
		robo.failed("home")
	}
	return err
}
