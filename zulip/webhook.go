// Package zulip holds the chat side of the bot: the outgoing webhook that the
// chat server posts for each message to the bot, the reply to it, and a
// client for sending messages through the chat REST API.
package zulip

// Trigger is what caused the chat server to call the webhook.
type Trigger string

const (
	// DirectMessage is a message sent to the bot directly.
	DirectMessage Trigger = "direct_message"
	// PrivateMessage is the name older servers use for DirectMessage.
	PrivateMessage Trigger = "private_message"
	// Mention is a message in a channel that mentions the bot.
	Mention Trigger = "mention"
)

// IsDirect reports whether the trigger is a direct message to the bot.
func (t Trigger) IsDirect() bool {
	return t == DirectMessage || t == PrivateMessage
}

// OutgoingWebhook is the body the chat server posts to the bot.
type OutgoingWebhook struct {
	// BotEmail is the email of the bot user.
	BotEmail string `json:"bot_email"`
	// BotFullName is the full name of the bot user.
	BotFullName string `json:"bot_full_name"`
	// Data is the message content as raw Markdown.
	Data string `json:"data"`
	// Trigger is what caused the webhook.
	Trigger Trigger `json:"trigger"`
	// Token is the fixed token of the bot, used to check that the request
	// came from the chat server.
	Token string `json:"token"`
	// Message describes the message that triggered the webhook.
	Message Message `json:"message"`
}

// Message is a chat message.
type Message struct {
	ID             int64  `json:"id"`
	Type           string `json:"type"`
	Client         string `json:"client"`
	Content        string `json:"content"`
	Subject        string `json:"subject"`
	Timestamp      int64  `json:"timestamp"`
	SenderID       int64  `json:"sender_id"`
	SenderFullName string `json:"sender_full_name"`
	SenderEmail    string `json:"sender_email"`
	AvatarURL      string `json:"avatar_url"`
}
