// Alert intake HTTP handlers.
//
// This file exposes the alert-relay endpoints:
//   - POST /tv-webhook  (TradingView alert intake; single or broadcast mode)
//   - POST /broadcast   (explicit broadcast to every registered chat)
//
// Handlers are transport-thin: they parse the loosely-specified alert
// payloads, call the relay service, and translate results (including the
// Telegram API's own error payloads) into HTTP responses.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/alertline/go-alert-relay/internal/config"
	"github.com/alertline/go-alert-relay/internal/domain"
	"github.com/alertline/go-alert-relay/internal/obslog"
	"github.com/alertline/go-alert-relay/internal/services"
	"github.com/alertline/go-alert-relay/internal/sysutil"
	"github.com/alertline/go-alert-relay/internal/telegram"
)

// HeaderRelaySecret is the header form of the shared secret. Both alert
// endpoints accept it as an alternative to the body field.
const HeaderRelaySecret = "X-Relay-Secret"

//
// Service contracts
//

// RelayService defines the alert-dispatch operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type RelayService interface {
	// Relay authorizes req and sends its text according to mode.
	Relay(ctx context.Context, req domain.AlertRequest, mode string) (*services.RelayResult, error)
}

// IngestService handles inbound Telegram messages pushed via webhook.
type IngestService interface {
	// HandleMessage registers the chat and replies; it never fails.
	HandleMessage(ctx context.Context, msg *telegram.Message)
}

// RegistryReader exposes the read-only registry views used by status
// endpoints.
type RegistryReader interface {
	All() []domain.ChatRecord
	DefaultChatID() string
	Count() int
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints of the relay.
type Handlers struct {
	relay    RelayService
	ingest   IngestService
	registry RegistryReader
	events   *obslog.Ring
	mode     string // relay mode for /tv-webhook: single|broadcast
}

// New constructs a Handlers instance bound to the given services. events may
// be nil to disable event recording.
func New(relay RelayService, ingest IngestService, registry RegistryReader, events *obslog.Ring, mode string) *Handlers {
	return &Handlers{relay: relay, ingest: ingest, registry: registry, events: events, mode: mode}
}

//
// DTOs
//

// alertPayload is the loose JSON shape accepted on alert intake. TradingView
// templates vary, so the message body may arrive under text, message, or
// alert.
type alertPayload struct {
	Secret  string `json:"secret"`
	ChatID  string `json:"chat_id"`
	Text    string `json:"text"`
	Message string `json:"message"`
	Alert   string `json:"alert"`
}

// AlertResponse is the success envelope for a single-destination relay.
type AlertResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	MessageID int64  `json:"message_id"`
}

// BroadcastResponse is the success envelope for a broadcast relay.
type BroadcastResponse struct {
	Success bool                `json:"success"`
	Sent    int                 `json:"sent"`
	Results []domain.SendResult `json:"results"`
}

//
// Helpers
//

// parseAlertRequest normalizes the request body into an AlertRequest.
// JSON bodies may use text/message/alert for the body and carry the secret
// inline; non-JSON bodies are treated as raw alert text. The secret header
// fills in when the body carries none.
func parseAlertRequest(c *gin.Context) (domain.AlertRequest, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return domain.AlertRequest{}, err
	}

	var req domain.AlertRequest
	var p alertPayload
	if json.Unmarshal(raw, &p) == nil {
		req = domain.AlertRequest{
			Secret: p.Secret,
			ChatID: p.ChatID,
			Text:   sysutil.FirstNonEmpty(p.Text, p.Message, p.Alert),
		}
	} else {
		req = domain.AlertRequest{Text: strings.TrimSpace(string(raw))}
	}

	if req.Secret == "" {
		req.Secret = c.GetHeader(HeaderRelaySecret)
	}
	return req, nil
}

// failRelay maps service-level relay errors onto HTTP responses. Telegram
// API errors pass the upstream status and description through verbatim.
func failRelay(c *gin.Context, err error) {
	var apiErr *telegram.APIError
	switch {
	case errors.Is(err, services.ErrMissingSecret):
		fail(c, http.StatusUnauthorized, ErrCodeMissingSecret, err.Error())
	case errors.Is(err, services.ErrInvalidSecret):
		fail(c, http.StatusUnauthorized, ErrCodeInvalidSecret, err.Error())
	case errors.Is(err, services.ErrMissingChatID):
		fail(c, http.StatusBadRequest, ErrCodeMissingChatID, err.Error())
	case errors.Is(err, services.ErrMissingText):
		fail(c, http.StatusBadRequest, ErrCodeMissingText, err.Error())
	case errors.As(err, &apiErr):
		status := apiErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		fail(c, status, ErrCodeTelegramError, apiErr.Description)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// record appends an observability event when the ring is wired.
func (h *Handlers) record(ev obslog.Event) {
	if h.events != nil {
		h.events.Record(ev)
	}
}

//
// Handlers
//

// TVWebhook receives a TradingView alert and relays it to Telegram using the
// configured relay mode.
func (h *Handlers) TVWebhook(c *gin.Context) {
	req, err := parseAlertRequest(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable request body")
		return
	}

	res, err := h.relay.Relay(c.Request.Context(), req, h.mode)
	if err != nil {
		h.record(obslog.Event{Kind: "alert", ChatID: req.ChatID, OK: false, Detail: err.Error()})
		failRelay(c, err)
		return
	}

	if res.Broadcast != nil {
		h.record(obslog.Event{Kind: "alert", OK: true, Detail: "broadcast"})
		ok(c, http.StatusOK, BroadcastResponse{
			Success: true,
			Sent:    res.Broadcast.Succeeded,
			Results: res.Broadcast.Results,
		})
		return
	}

	h.record(obslog.Event{Kind: "alert", ChatID: req.ChatID, OK: true})
	ok(c, http.StatusOK, AlertResponse{
		Success:   true,
		Message:   "Alert sent",
		MessageID: res.Message.MessageID,
	})
}

// Broadcast sends one message to every registered chat. It never hard-fails
// once validation passes: per-destination outcomes are reported instead.
func (h *Handlers) Broadcast(c *gin.Context) {
	req, err := parseAlertRequest(c)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable request body")
		return
	}

	res, err := h.relay.Relay(c.Request.Context(), req, config.RelayModeBroadcast)
	if err != nil {
		h.record(obslog.Event{Kind: "broadcast", OK: false, Detail: err.Error()})
		failRelay(c, err)
		return
	}

	h.record(obslog.Event{Kind: "broadcast", OK: true})
	ok(c, http.StatusOK, BroadcastResponse{
		Success: true,
		Sent:    res.Broadcast.Succeeded,
		Results: res.Broadcast.Results,
	})
}
