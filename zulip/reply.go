package zulip

import "github.com/go-json-experiment/json"

// Reply is the bot's answer to a webhook: either no reply at all or a
// Markdown message.
type Reply struct {
	content string
	// some distinguishes Content("") from NoReply.
	some bool
}

// NoReply is the reply that tells the chat server not to respond.
func NoReply() Reply {
	return Reply{}
}

// Content is a reply with a Markdown message.
func Content(text string) Reply {
	return Reply{content: text, some: true}
}

// IsNoReply reports whether r is NoReply.
func (r Reply) IsNoReply() bool {
	return !r.some
}

// Text returns the reply's message, or the empty string for NoReply.
func (r Reply) Text() string {
	return r.content
}

// wireReply is the JSON shape of a Reply. Exactly one field is present.
type wireReply struct {
	ResponseNotRequired bool    `json:"response_not_required,omitzero"`
	Content             *string `json:"content,omitzero"`
}

// MarshalJSON encodes the reply as {"response_not_required":true} or
// {"content":"..."}.
func (r Reply) MarshalJSON() ([]byte, error) {
	var w wireReply
	if r.some {
		w.Content = &r.content
	} else {
		w.ResponseNotRequired = true
	}
	return json.Marshal(&w)
}
