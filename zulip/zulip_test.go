package zulip

import (
	"context"
	"embed"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
)

//go:embed testdata/*.json
var jsonFiles embed.FS

func TestDecodeWebhook(t *testing.T) {
	b, err := jsonFiles.ReadFile("testdata/webhook.json")
	if err != nil {
		t.Fatal(err)
	}
	var got OutgoingWebhook
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("couldn't decode webhook: %v", err)
	}
	want := OutgoingWebhook{
		BotEmail:    "status-bot@recurse.zulipchat.com",
		BotFullName: "Status Bot",
		Data:        "status :apple: watching the keynote <time:2025-01-01T13:00:00-04:00>",
		Trigger:     DirectMessage,
		Token:       "xvOzfurIutdRRVLzpXrIIHXJvNfaJLJ0",
		Message: Message{
			ID:             112,
			Type:           "private",
			Client:         "website",
			Content:        "status :apple: watching the keynote <time:2025-01-01T13:00:00-04:00>",
			Timestamp:      1527876931,
			SenderID:       5,
			SenderFullName: "Jacob Young (he/him) (S2'16)",
			SenderEmail:    "jacob@example.com",
			AvatarURL:      "https://secure.gravatar.com/avatar/1f4f?d=identicon&version=1",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("wrong result (-want +got):\n%s", diff)
	}
}

func TestTrigger(t *testing.T) {
	cases := []struct {
		t    Trigger
		want bool
	}{
		{DirectMessage, true},
		{PrivateMessage, true},
		{Mention, false},
		{"", false},
		{"stream", false},
	}
	for _, c := range cases {
		if got := c.t.IsDirect(); got != c.want {
			t.Errorf("wrong IsDirect for %q: want %t, got %t", c.t, c.want, got)
		}
	}
}

func TestReply(t *testing.T) {
	cases := []struct {
		name string
		r    Reply
		want string
	}{
		{"none", NoReply(), `{"response_not_required":true}`},
		{"zero", Reply{}, `{"response_not_required":true}`},
		{"content", Content("**Status set**"), `{"content":"**Status set**"}`},
		{"empty-content", Content(""), `{"content":""}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			b, err := json.Marshal(c.r)
			if err != nil {
				t.Fatal(err)
			}
			if got := string(b); got != c.want {
				t.Errorf("wrong encoding: want %s, got %s", c.want, got)
			}
		})
	}
	if !NoReply().IsNoReply() || Content("").IsNoReply() {
		t.Error("wrong IsNoReply")
	}
	if got := Content("hi").Text(); got != "hi" {
		t.Errorf("wrong text: want %q, got %q", "hi", got)
	}
}

type reqspy struct {
	// got is the first request the round tripper received.
	got *http.Request
	// form is the decoded body of got.
	form url.Values
	// respond is the response the round tripper returns.
	respond *http.Response
}

func (r *reqspy) RoundTrip(req *http.Request) (*http.Response, error) {
	if r.got != nil {
		return nil, errors.New("already have a request")
	}
	r.got = req
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}
	req.Body.Close()
	r.form, err = url.ParseQuery(string(b))
	if err != nil {
		return nil, err
	}
	return r.respond, nil
}

func textresp(status int, text string) *reqspy {
	return &reqspy{
		respond: &http.Response{
			StatusCode: status,
			Status:     http.StatusText(status),
			Body:       io.NopCloser(strings.NewReader(text)),
		},
	}
}

func TestSendDirect(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		spy := textresp(200, `{"result":"success","msg":"","id":42}`)
		cl := Client{
			HTTP:   &http.Client{Transport: spy},
			Site:   "https://recurse.zulipchat.test",
			Email:  "status-bot@recurse.zulipchat.com",
			APIKey: "kita",
		}
		err := cl.SendDirect(context.Background(), []string{"jacob@example.com", "nijika@example.com"}, "feedback: great bot")
		if err != nil {
			t.Fatalf("failed to send: %v", err)
		}
		if got := spy.got.URL.String(); got != "https://recurse.zulipchat.test/api/v1/messages" {
			t.Errorf("request went to the wrong place: %q", got)
		}
		if spy.got.Method != "POST" {
			t.Errorf("wrong method: want POST, got %s", spy.got.Method)
		}
		user, pass, ok := spy.got.BasicAuth()
		if !ok || user != "status-bot@recurse.zulipchat.com" || pass != "kita" {
			t.Errorf("wrong authorization: got %q:%q (%t)", user, pass, ok)
		}
		want := url.Values{
			"type":    {"direct"},
			"to":      {`["jacob@example.com","nijika@example.com"]`},
			"content": {"feedback: great bot"},
		}
		if diff := cmp.Diff(want, spy.form); diff != "" {
			t.Errorf("wrong form (-want +got):\n%s", diff)
		}
	})
	t.Run("error", func(t *testing.T) {
		spy := textresp(400, `{"result":"error","msg":"Invalid email 'x'","code":"BAD_REQUEST"}`)
		cl := Client{HTTP: &http.Client{Transport: spy}, Site: "https://recurse.zulipchat.test"}
		err := cl.SendDirect(context.Background(), []string{"x"}, "hi")
		var ae *APIError
		if !errors.As(err, &ae) {
			t.Fatalf("wrong error type: %#v", err)
		}
		want := &APIError{Status: 400, Code: "BAD_REQUEST", Msg: "Invalid email 'x'"}
		if diff := cmp.Diff(want, ae); diff != "" {
			t.Errorf("wrong error (-want +got):\n%s", diff)
		}
	})
	t.Run("not-json", func(t *testing.T) {
		spy := textresp(502, `<html>bad gateway</html>`)
		cl := Client{HTTP: &http.Client{Transport: spy}, Site: "https://recurse.zulipchat.test"}
		err := cl.SendDirect(context.Background(), []string{"x"}, "hi")
		var ae *APIError
		if !errors.As(err, &ae) || ae.Status != 502 {
			t.Errorf("wrong error: %v", err)
		}
	})
	t.Run("no-recipients", func(t *testing.T) {
		spy := textresp(200, `{"result":"success","msg":""}`)
		cl := Client{HTTP: &http.Client{Transport: spy}, Site: "https://recurse.zulipchat.test"}
		if err := cl.SendDirect(context.Background(), nil, "hi"); err == nil {
			t.Error("no error sending to nobody")
		}
		if spy.got != nil {
			t.Error("made a request with no recipients")
		}
	})
}
