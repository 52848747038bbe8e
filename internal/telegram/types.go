// Package telegram is a thin client for the Telegram Bot API: sendMessage for
// outbound relays and getUpdates for the polling producer. Only the fields the
// relay needs are modeled.
package telegram

import (
	"strconv"
	"strings"
)

// Update is one entry from getUpdates. UpdateID is the poll cursor source;
// Message is nil for update kinds we do not handle (edits, callbacks, ...).
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message is an inbound Telegram message.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// User is the sender of a message.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID        int64  `json:"id"`
	Type      string `json:"type,omitempty"`
	Title     string `json:"title,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// ChatID returns the chat identifier as the opaque string used by the
// registry and the sendMessage call.
func (c Chat) ChatID() string { return strconv.FormatInt(c.ID, 10) }

// Label picks a best-effort display name for the chat: group title, then
// username, then first name, then "unknown".
func (c Chat) Label() string {
	for _, v := range []string{c.Title, c.Username, c.FirstName} {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return "unknown"
}
