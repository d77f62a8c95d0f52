// Package office is a client for the virtual office REST API: listing and
// updating desks and moving the bot's avatar.
package office

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-json-experiment/json"
	"golang.org/x/time/rate"

	"github.com/jryio/statusbot/secret"
)

// MaxResponse is the largest response body the client reads.
const MaxResponse = 284701 * 16

// DefaultTimeout is the time limit for a single API call when the client
// does not set one.
const DefaultTimeout = 10 * time.Second

var (
	// ErrUnprocessable is returned when the API answers 422. Moving the bot
	// gives this when the target cell is blocked.
	ErrUnprocessable = errors.New("unprocessable request")
	// ErrBadRequest is returned when the API answers 400.
	ErrBadRequest = errors.New("bad request")
	// ErrServer is returned when the API answers with a 5xx status.
	ErrServer = errors.New("server error")
	// ErrNoDesk is returned when a desk is not in the desk list.
	ErrNoDesk = errors.New("no such desk")
)

// Client holds the context for requests to the office API.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Site is the base URL of the office, e.g. https://recurse.rctogether.com.
	Site string
	// BotID is the ID of the bot's avatar.
	BotID string
	// AppID and Secret are the application's credentials.
	AppID  secret.Secret
	Secret secret.Secret
	// Limiter paces requests. If nil, requests are not paced.
	Limiter *rate.Limiter
	// Timeout limits each call. If zero, DefaultTimeout is used.
	Timeout time.Duration
}

// reqjson performs an HTTP request and decodes the response as JSON into u.
// The request body, if any, is encoded from in. The response body is
// truncated to MaxResponse bytes.
func reqjson[Resp any](ctx context.Context, client *Client, method, ep string, in any, u *Resp) error {
	if client.Limiter != nil {
		if err := client.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("couldn't wait to %s %s: %w", method, ep, err)
		}
	}
	d := client.Timeout
	if d <= 0 {
		d = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("couldn't encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	target, err := client.apiurl(ep)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("couldn't make request: %w", err)
	}
	req.SetBasicAuth(client.AppID.Reveal(), client.Secret.Reveal())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	hc := client.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("couldn't %s %s: %w", method, ep, err)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponse))
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("couldn't read response: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusOK: // do nothing
	case resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s %s failed: %s (%w)", method, ep, b, ErrUnprocessable)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%s %s failed: %s (%w)", method, ep, b, ErrBadRequest)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s %s failed: %s (%w)", method, ep, resp.Status, ErrServer)
	default:
		return fmt.Errorf("%s %s failed: %s (%s)", method, ep, b, resp.Status)
	}
	if u == nil {
		return nil
	}
	if err := json.Unmarshal(b, u); err != nil {
		return fmt.Errorf("couldn't decode JSON response: %w", err)
	}
	return nil
}

// apiurl creates a URL for the given endpoint on the office site.
func (c *Client) apiurl(ep string) (string, error) {
	u, err := url.JoinPath(c.Site, ep)
	if err != nil {
		return "", fmt.Errorf("couldn't make URL for %s: %w", ep, err)
	}
	return u, nil
}
