package office

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/time/rate"

	"github.com/jryio/statusbot/status"
)

type reqspy struct {
	// got is the first request the round tripper received.
	got *http.Request
	// body is the body of got.
	body []byte
	// respond is the response the round tripper returns.
	respond *http.Response
}

func (r *reqspy) RoundTrip(req *http.Request) (*http.Response, error) {
	if r.got != nil {
		return nil, errors.New("already have a request")
	}
	r.got = req
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		r.body = b
	}
	return r.respond, nil
}

//go:embed testdata/*.json
var jsonFiles embed.FS

// apiresp creates a reqspy responding with the given testdata document.
func apiresp(status int, file string) *reqspy {
	f, err := jsonFiles.Open(path.Join("testdata/", file))
	if err != nil {
		panic(err)
	}
	return &reqspy{
		respond: &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Body:       f,
		},
	}
}

// textresp creates a reqspy responding with the given text.
func textresp(status int, text string) *reqspy {
	return &reqspy{
		respond: &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Body:       io.NopCloser(strings.NewReader(text)),
		},
	}
}

func testClient(spy *reqspy) *Client {
	return &Client{
		HTTP:   &http.Client{Transport: spy},
		Site:   "https://recurse.rctogether.test",
		BotID:  "150139",
		AppID:  "bocchi",
		Secret: "ryo",
	}
}

func TestReqJSON(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		spy := textresp(200, `1`)
		cl := testClient(spy)
		var u int
		err := reqjson(context.Background(), cl, "GET", "/api/bocchi", nil, &u)
		if err != nil {
			t.Errorf("failed to request: %v", err)
		}
		if u != 1 {
			t.Errorf("didn't get the result: want 1, got %d", u)
		}
		if got := spy.got.URL.String(); got != "https://recurse.rctogether.test/api/bocchi" {
			t.Errorf(`request went to the wrong place: want "https://recurse.rctogether.test/api/bocchi", got %q`, got)
		}
		user, pass, ok := spy.got.BasicAuth()
		if !ok || user != "bocchi" || pass != "ryo" {
			t.Errorf("wrong authorization: want bocchi:ryo, got %q:%q (%t)", user, pass, ok)
		}
		if got := spy.got.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("wrong content type: want application/json, got %q", got)
		}
		if len(spy.body) != 0 {
			t.Errorf("GET had a body: %q", spy.body)
		}
	})
	statuses := []struct {
		name string
		code int
		want error
	}{
		{"unprocessable", 422, ErrUnprocessable},
		{"bad", 400, ErrBadRequest},
		{"server", 500, ErrServer},
		{"gateway", 502, ErrServer},
	}
	for _, c := range statuses {
		t.Run(c.name, func(t *testing.T) {
			cl := testClient(textresp(c.code, `{"error":"no"}`))
			var u int
			err := reqjson(context.Background(), cl, "GET", "/api/bocchi", nil, &u)
			if !errors.Is(err, c.want) {
				t.Errorf("wrong error: want %v, got %v", c.want, err)
			}
		})
	}
	t.Run("other", func(t *testing.T) {
		cl := testClient(textresp(404, `{"error":"no"}`))
		var u int
		err := reqjson(context.Background(), cl, "GET", "/api/bocchi", nil, &u)
		if err == nil {
			t.Error("no error for 404")
		}
	})
	t.Run("malformed", func(t *testing.T) {
		cl := testClient(textresp(200, `{`))
		var u int
		err := reqjson(context.Background(), cl, "GET", "/api/bocchi", nil, &u)
		if err == nil {
			t.Error("no error for malformed response")
		}
	})
	t.Run("canceled", func(t *testing.T) {
		spy := textresp(200, `1`)
		cl := testClient(spy)
		cl.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		var u int
		err := reqjson(ctx, cl, "GET", "/api/bocchi", nil, &u)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("wrong error: want %v, got %v", context.Canceled, err)
		}
		if spy.got != nil {
			t.Error("made a request with a canceled context")
		}
	})
}

func TestDesks(t *testing.T) {
	spy := apiresp(200, "desks.json")
	cl := testClient(spy)
	desks, err := cl.Desks(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []Desk{
		{
			ID:         101,
			Type:       "Desk",
			Pos:        Position{12, 30},
			Color:      "light-orange",
			Emoji:      "🦀",
			Text:       "Learning Rust today",
			ExpiresAt:  time.Date(2024, 9, 29, 12, 0, 0, 0, time.FixedZone("", -6*60*60)),
			ProfileURL: "https://www.recurse.com/directory/1234-jacob-young",
			Owner:      &Owner{ID: 1234, Name: "Jacob Young", ImageURL: "https://example.com/jacob.png"},
		},
		{
			ID:    102,
			Type:  "Desk",
			Pos:   Position{13, 30},
			Color: "light-orange",
		},
		{
			ID:         103,
			Type:       "Desk",
			Pos:        Position{0, 0},
			Color:      "light-orange",
			ProfileURL: "https://www.recurse.com/directory/5678-zoe",
			Owner:      &Owner{ID: 5678, Name: "Zoë Nakamura", ImageURL: "https://example.com/zoe.png"},
		},
	}
	if diff := cmp.Diff(want, desks); diff != "" {
		t.Errorf("wrong result (-want +got):\n%s", diff)
	}
	if spy.got.Method != "GET" || spy.got.URL.Path != "/api/desks" {
		t.Errorf("wrong request: %s %s", spy.got.Method, spy.got.URL.Path)
	}
}

func TestDesk(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		cl := testClient(apiresp(200, "desks.json"))
		d, err := cl.Desk(context.Background(), 103)
		if err != nil {
			t.Fatal(err)
		}
		if d.ID != 103 || d.Owner == nil || d.Owner.Name != "Zoë Nakamura" {
			t.Errorf("wrong desk: %+v", d)
		}
		if !d.Status().IsEmpty() {
			t.Errorf("desk should have an empty status, got %v", d.Status())
		}
	})
	t.Run("missing", func(t *testing.T) {
		cl := testClient(apiresp(200, "desks.json"))
		_, err := cl.Desk(context.Background(), 999)
		if !errors.Is(err, ErrNoDesk) {
			t.Errorf("wrong error: want %v, got %v", ErrNoDesk, err)
		}
	})
}

func TestUpdateDesk(t *testing.T) {
	at := time.Date(2025, 1, 1, 13, 0, 0, 0, time.FixedZone("", -4*60*60))
	cases := []struct {
		name string
		st   status.Status
		want map[string]any
	}{
		{
			name: "full",
			st:   status.Status{Emoji: "🍎", Text: "watching the keynote", Expires: at},
			want: map[string]any{
				"bot_id": "150139",
				"desk": map[string]any{
					"emoji":      "🍎",
					"status":     "watching the keynote",
					"expires_at": "2025-01-01T13:00:00-04:00",
				},
			},
		},
		{
			name: "clear",
			st:   status.Status{},
			want: map[string]any{
				"bot_id": "150139",
				"desk": map[string]any{
					"emoji":      nil,
					"status":     nil,
					"expires_at": nil,
				},
			},
		},
		{
			name: "emoji",
			st:   status.Status{Emoji: "🍎"},
			want: map[string]any{
				"bot_id": "150139",
				"desk": map[string]any{
					"emoji":      "🍎",
					"status":     nil,
					"expires_at": nil,
				},
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spy := apiresp(200, "desk.json")
			cl := testClient(spy)
			d, err := cl.UpdateDesk(context.Background(), 101, c.st)
			if err != nil {
				t.Fatal(err)
			}
			if d.ID != 101 || d.Emoji != "🍎" {
				t.Errorf("wrong desk: %+v", d)
			}
			if spy.got.Method != "PATCH" || spy.got.URL.Path != "/api/desks/101" {
				t.Errorf("wrong request: %s %s", spy.got.Method, spy.got.URL.Path)
			}
			var got map[string]any
			if err := json.Unmarshal(spy.body, &got); err != nil {
				t.Fatalf("couldn't decode request body %q: %v", spy.body, err)
			}
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("wrong request body (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMoveBot(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		spy := apiresp(200, "bot.json")
		cl := testClient(spy)
		b, err := cl.MoveBot(context.Background(), Position{0, 30})
		if err != nil {
			t.Fatal(err)
		}
		if b.ID != 150139 || b.Pos != (Position{11, 30}) {
			t.Errorf("wrong bot: %+v", b)
		}
		if spy.got.Method != "PATCH" || spy.got.URL.Path != "/api/bots/150139" {
			t.Errorf("wrong request: %s %s", spy.got.Method, spy.got.URL.Path)
		}
		var got map[string]any
		if err := json.Unmarshal(spy.body, &got); err != nil {
			t.Fatalf("couldn't decode request body %q: %v", spy.body, err)
		}
		want := map[string]any{"bot": map[string]any{"x": 0.0, "y": 30.0}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("wrong request body (-want +got):\n%s", diff)
		}
	})
	t.Run("blocked", func(t *testing.T) {
		cl := testClient(textresp(422, `{"errors":["Must not be in a block"]}`))
		_, err := cl.MoveBot(context.Background(), Position{1, 1})
		if !errors.Is(err, ErrUnprocessable) {
			t.Errorf("wrong error: want %v, got %v", ErrUnprocessable, err)
		}
	})
}

func TestNoOpenPositionError(t *testing.T) {
	var err error = &NoOpenPositionError{Desk: 101, Pos: Position{12, 30}}
	var p *NoOpenPositionError
	if !errors.As(fmt.Errorf("couldn't set status: %w", err), &p) || p.Desk != 101 {
		t.Errorf("couldn't unwrap error: %v", err)
	}
	if got := err.Error(); !strings.Contains(got, "101") {
		t.Errorf("error doesn't name the desk: %q", got)
	}
}
