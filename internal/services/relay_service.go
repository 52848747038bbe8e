// Package services – RelayService
//
// This file implements the alert relay: the shared-secret authorization gate,
// destination resolution, and the broadcast fan-out that sends one message to
// N chats while aggregating per-destination outcomes.
package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alertline/go-alert-relay/internal/config"
	"github.com/alertline/go-alert-relay/internal/domain"
	"github.com/alertline/go-alert-relay/internal/telegram"
)

// Sender is the outbound Telegram contract required by the relay and the
// ingest path. Implementations must be safe for concurrent use.
type Sender interface {
	// SendMessage delivers text to chatID and returns the created message.
	SendMessage(ctx context.Context, chatID, text string) (*telegram.Message, error)
}

// ChatRegistry is the destination-registry contract required by the relay.
type ChatRegistry interface {
	All() []domain.ChatRecord
	DefaultChatID() string
}

// RelayResult is the outcome of a successful Relay call. Exactly one of the
// two branches is populated: Message for single mode, Broadcast otherwise.
type RelayResult struct {
	// Mode is the relay mode the call ran under.
	Mode string
	// Message is the Telegram message created in single mode.
	Message *telegram.Message
	// Broadcast is the aggregated fan-out result in broadcast mode.
	Broadcast *domain.BroadcastResult
}

// RelayService authorizes inbound alerts and dispatches them to Telegram.
type RelayService struct {
	// Registry resolves default and broadcast destinations.
	Registry ChatRegistry
	// Sender performs the outbound Telegram calls.
	Sender Sender
	// Auth mirrors config.RelayConfig: the shared secret and whether the
	// gate is enforced.
	AuthRequired bool
	Secret       string

	Log zerolog.Logger
}

// NewRelayService constructs a RelayService from the relay configuration.
func NewRelayService(reg ChatRegistry, sender Sender, rc config.RelayConfig, log zerolog.Logger) *RelayService {
	return &RelayService{
		Registry:     reg,
		Sender:       sender,
		AuthRequired: rc.AuthRequired,
		Secret:       rc.WebhookSecret,
		Log:          log,
	}
}

// Relay validates req and sends its text according to mode.
//
// In single mode the destination is req.ChatID, falling back to the registry
// default; a Telegram-level failure propagates as *telegram.APIError so the
// caller can surface the upstream status verbatim. In broadcast mode every
// registered chat is attempted and the call never fails as a whole once
// validation passes.
func (s *RelayService) Relay(ctx context.Context, req domain.AlertRequest, mode string) (*RelayResult, error) {
	if err := s.authorize(req.Secret); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrMissingText
	}

	if mode == config.RelayModeBroadcast {
		res := s.Broadcast(ctx, chatIDs(s.Registry.All()), req.Text)
		alertsRelayed.WithLabelValues(mode, "ok").Inc()
		return &RelayResult{Mode: mode, Broadcast: &res}, nil
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = s.Registry.DefaultChatID()
	}
	if chatID == "" {
		return nil, ErrMissingChatID
	}

	msg, err := s.Sender.SendMessage(ctx, chatID, req.Text)
	if err != nil {
		telegramSends.WithLabelValues("error").Inc()
		alertsRelayed.WithLabelValues(mode, "error").Inc()
		return nil, err
	}
	telegramSends.WithLabelValues("ok").Inc()
	alertsRelayed.WithLabelValues(mode, "ok").Inc()
	s.Log.Info().Str("chat_id", chatID).Int64("message_id", msg.MessageID).Msg("alert relayed")
	return &RelayResult{Mode: mode, Message: msg}, nil
}

// Broadcast sends text to every chat in chatIDs, one call per destination.
// Failures are isolated: a failing send never aborts or skips the remaining
// destinations, and results are reported in input order.
func (s *RelayService) Broadcast(ctx context.Context, chatIDs []string, text string) domain.BroadcastResult {
	res := domain.BroadcastResult{
		Results: make([]domain.SendResult, 0, len(chatIDs)),
	}
	for _, id := range chatIDs {
		res.Attempted++
		if _, err := s.Sender.SendMessage(ctx, id, text); err != nil {
			telegramSends.WithLabelValues("error").Inc()
			s.Log.Warn().Err(err).Str("chat_id", id).Msg("broadcast send failed")
			res.Results = append(res.Results, domain.SendResult{ChatID: id, Success: false, Error: err.Error()})
			continue
		}
		telegramSends.WithLabelValues("ok").Inc()
		res.Succeeded++
		res.Results = append(res.Results, domain.SendResult{ChatID: id, Success: true})
	}
	s.Log.Info().Int("attempted", res.Attempted).Int("succeeded", res.Succeeded).Msg("broadcast complete")
	return res
}

// authorize enforces the shared-secret gate when configured.
// Comparison is exact-string, matching the documented contract; a
// constant-time compare would be a hardening follow-up.
func (s *RelayService) authorize(secret string) error {
	if !s.AuthRequired || s.Secret == "" {
		return nil
	}
	if secret == "" {
		return ErrMissingSecret
	}
	if secret != s.Secret {
		return ErrInvalidSecret
	}
	return nil
}

// chatIDs projects records to their identifiers, preserving order.
func chatIDs(records []domain.ChatRecord) []string {
	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	return ids
}
