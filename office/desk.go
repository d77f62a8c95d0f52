package office

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jryio/statusbot/status"
)

// Owner is the person who has claimed a desk.
type Owner struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// Desk is a desk on the office floor. Empty status fields are absent.
type Desk struct {
	ID         int       `json:"id"`
	Type       string    `json:"type"`
	Pos        Position  `json:"pos"`
	Color      string    `json:"color"`
	Emoji      string    `json:"emoji"`
	Text       string    `json:"status"`
	ExpiresAt  time.Time `json:"expires_at"`
	ProfileURL string    `json:"profile_url"`
	Owner      *Owner    `json:"owner"`
}

// Status returns the desk's status.
func (d *Desk) Status() status.Status {
	return status.Status{Emoji: d.Emoji, Text: d.Text, Expires: d.ExpiresAt}
}

// Desks lists every desk in the office.
func (c *Client) Desks(ctx context.Context) ([]Desk, error) {
	var r []Desk
	if err := reqjson(ctx, c, "GET", "/api/desks", nil, &r); err != nil {
		return nil, fmt.Errorf("couldn't list desks: %w", err)
	}
	return r, nil
}

// Desk gets a single desk. The API has no endpoint for one desk, so this
// lists all of them.
func (c *Client) Desk(ctx context.Context, id int) (*Desk, error) {
	desks, err := c.Desks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range desks {
		if desks[i].ID == id {
			return &desks[i], nil
		}
	}
	return nil, fmt.Errorf("couldn't find desk %d: %w", id, ErrNoDesk)
}

// deskUpdate is the body of a desk update. Absent fields are sent as null,
// which clears them.
type deskUpdate struct {
	BotID string `json:"bot_id"`
	Desk  struct {
		Emoji     *string    `json:"emoji"`
		Status    *string    `json:"status"`
		ExpiresAt *time.Time `json:"expires_at"`
	} `json:"desk"`
}

// UpdateDesk sets the status on a desk and returns the updated desk. Absent
// fields of st are cleared, so the zero Status clears the desk. The bot must
// already stand next to the desk.
func (c *Client) UpdateDesk(ctx context.Context, id int, st status.Status) (*Desk, error) {
	var u deskUpdate
	u.BotID = c.BotID
	if st.Emoji != "" {
		u.Desk.Emoji = &st.Emoji
	}
	if st.Text != "" {
		u.Desk.Status = &st.Text
	}
	if !st.Expires.IsZero() {
		u.Desk.ExpiresAt = &st.Expires
	}
	var r Desk
	if err := reqjson(ctx, c, "PATCH", "/api/desks/"+strconv.Itoa(id), &u, &r); err != nil {
		return nil, fmt.Errorf("couldn't update desk %d: %w", id, err)
	}
	return &r, nil
}
