package zulip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/jryio/statusbot/secret"
)

// DefaultTimeout is the time limit for a single API call when the client
// does not set one.
const DefaultTimeout = 10 * time.Second

// Client holds the context for requests to the chat API.
type Client struct {
	// HTTP is the HTTP client for performing requests.
	// If nil, http.DefaultClient is used.
	HTTP *http.Client
	// Site is the base URL of the chat server, e.g. https://recurse.zulipchat.com.
	Site string
	// Email and APIKey are the bot's credentials.
	Email  string
	APIKey secret.Secret
	// Timeout limits each call. If zero, DefaultTimeout is used.
	Timeout time.Duration
}

// APIError is an error result from the chat API.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Code is the machine-readable error code, if any.
	Code string
	// Msg is the human-readable error message.
	Msg string
}

func (err *APIError) Error() string {
	if err.Code != "" {
		return fmt.Sprintf("chat API error %d %s: %s", err.Status, err.Code, err.Msg)
	}
	return fmt.Sprintf("chat API error %d: %s", err.Status, err.Msg)
}

// result is the envelope of every chat API response.
type result struct {
	Result string `json:"result"`
	Msg    string `json:"msg"`
	Code   string `json:"code"`
}

// reqform posts a form to the chat API and checks the result envelope.
func (c *Client) reqform(ctx context.Context, ep string, form url.Values) error {
	d := c.Timeout
	if d <= 0 {
		d = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	target, err := url.JoinPath(c.Site, ep)
	if err != nil {
		return fmt.Errorf("couldn't make URL for %s: %w", ep, err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", target, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("couldn't make request: %w", err)
	}
	req.SetBasicAuth(c.Email, c.APIKey.Reveal())
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("couldn't POST %s: %w", ep, err)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("couldn't read response: %w", err)
	}
	var r result
	if err := json.Unmarshal(b, &r); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &APIError{Status: resp.StatusCode, Msg: resp.Status}
		}
		return fmt.Errorf("couldn't decode JSON response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || r.Result != "success" {
		return &APIError{Status: resp.StatusCode, Code: r.Code, Msg: r.Msg}
	}
	return nil
}

// SendDirect sends a direct message to the users with the given emails.
func (c *Client) SendDirect(ctx context.Context, to []string, content string) error {
	if len(to) == 0 {
		return errors.New("couldn't send message: no recipients")
	}
	recip, err := json.Marshal(to)
	if err != nil {
		return fmt.Errorf("couldn't encode recipients: %w", err)
	}
	form := url.Values{
		"type":    {"direct"},
		"to":      {string(recip)},
		"content": {content},
	}
	if err := c.reqform(ctx, "/api/v1/messages", form); err != nil {
		return fmt.Errorf("couldn't send message: %w", err)
	}
	return nil
}
