// Package services – IngestService
//
// This file implements the shared inbound-message path used by both
// producers: the long-polling loop and the Telegram webhook. Every message
// registers its chat with the registry and gets a reply; reply failures are
// logged and swallowed so neither producer ever treats them as fatal.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alertline/go-alert-relay/internal/domain"
	"github.com/alertline/go-alert-relay/internal/telegram"
)

// Registerer is the registry mutation contract required by ingestion.
type Registerer interface {
	Register(id, label string) (domain.ChatRecord, bool, error)
}

// IngestService turns inbound Telegram messages into registry entries and
// conversational replies.
type IngestService struct {
	Registry Registerer
	Sender   Sender
	Log      zerolog.Logger
}

// NewIngestService constructs an IngestService.
func NewIngestService(reg Registerer, sender Sender, log zerolog.Logger) *IngestService {
	return &IngestService{Registry: reg, Sender: sender, Log: log}
}

// HandleMessage registers the message's chat and replies.
//
// Recognized commands (/start, /chatid, /help) get dedicated replies; a first
// contact from an unknown chat gets the welcome; everything else gets a short
// echo. All failures are logged and never propagated — the webhook producer
// in particular must report success to Telegram regardless.
func (s *IngestService) HandleMessage(ctx context.Context, msg *telegram.Message) {
	if msg == nil {
		return
	}

	chatID := msg.Chat.ChatID()
	_, isNew, err := s.Registry.Register(chatID, msg.Chat.Label())
	if err != nil {
		// In-memory registration succeeded; only the snapshot flush failed.
		s.Log.Error().Err(err).Str("chat_id", chatID).Msg("chat registration persist failed")
	}

	reply := s.replyFor(msg, chatID, isNew)
	if reply == "" {
		return
	}
	if _, err := s.Sender.SendMessage(ctx, chatID, reply); err != nil {
		s.Log.Warn().Err(err).Str("chat_id", chatID).Msg("reply send failed")
	}
}

// replyFor selects the reply text for an inbound message.
func (s *IngestService) replyFor(msg *telegram.Message, chatID string, isNew bool) string {
	text := strings.TrimSpace(msg.Text)
	cmd := text
	if i := strings.IndexAny(cmd, " @"); i > 0 && strings.HasPrefix(cmd, "/") {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		return welcomeText(chatID)
	case "/chatid":
		return fmt.Sprintf("Your chat ID is <code>%s</code>", chatID)
	case "/help":
		return "Available commands:\n" +
			"/start – register this chat for alerts\n" +
			"/chatid – show this chat's ID\n" +
			"/help – this message"
	}

	if isNew {
		return welcomeText(chatID)
	}
	if text == "" {
		return ""
	}
	return fmt.Sprintf("You said: %s", text)
}

// welcomeText greets a chat and surfaces its id so users can wire it into
// their alert configuration.
func welcomeText(chatID string) string {
	return fmt.Sprintf(
		"✅ <b>Registered!</b>\nThis chat will receive alerts.\nChat ID: <code>%s</code>",
		chatID,
	)
}
