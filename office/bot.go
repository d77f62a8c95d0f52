package office

import (
	"context"
	"fmt"
)

// Bot is the bot's avatar.
type Bot struct {
	ID             int      `json:"id"`
	Type           string   `json:"type"`
	Name           string   `json:"name"`
	DisplayName    string   `json:"display_name"`
	Emoji          string   `json:"emoji"`
	Direction      string   `json:"direction"`
	CanBeMentioned bool     `json:"can_be_mentioned"`
	Pos            Position `json:"pos"`
}

// BotUpdate is a change to the bot's avatar. Zero fields are left as they
// are, so a position of (0, 0) must be given through X and Y explicitly.
type BotUpdate struct {
	Name           string `json:"name,omitzero"`
	Emoji          string `json:"emoji,omitzero"`
	X              *int   `json:"x,omitzero"`
	Y              *int   `json:"y,omitzero"`
	Direction      string `json:"direction,omitzero"`
	CanBeMentioned *bool  `json:"can_be_mentioned,omitzero"`
}

// UpdateBot changes the bot's avatar.
func (c *Client) UpdateBot(ctx context.Context, u BotUpdate) (*Bot, error) {
	body := struct {
		Bot *BotUpdate `json:"bot"`
	}{&u}
	var r Bot
	if err := reqjson(ctx, c, "PATCH", "/api/bots/"+c.BotID, &body, &r); err != nil {
		return nil, fmt.Errorf("couldn't update bot: %w", err)
	}
	return &r, nil
}

// MoveBot moves the bot's avatar to p. The error wraps ErrUnprocessable if
// something is in the way.
func (c *Client) MoveBot(ctx context.Context, p Position) (*Bot, error) {
	p = p.Clamp()
	return c.UpdateBot(ctx, BotUpdate{X: &p.X, Y: &p.Y})
}

// NoOpenPositionError is returned when the bot cannot stand next to a desk.
type NoOpenPositionError struct {
	// Desk is the desk the bot was trying to reach.
	Desk int
	// Pos is the desk's position.
	Pos Position
}

func (err *NoOpenPositionError) Error() string {
	return fmt.Sprintf("no open position next to desk %d at (%d, %d)", err.Desk, err.Pos.X, err.Pos.Y)
}
