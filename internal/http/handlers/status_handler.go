// Status and introspection handlers: registered chats, health, recent events.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alertline/go-alert-relay/internal/domain"
	"github.com/alertline/go-alert-relay/internal/utils"
)

// ChatIDsResponse lists every registered destination.
type ChatIDsResponse struct {
	Count         int                 `json:"count"`
	DefaultChatID string              `json:"default_chat_id,omitempty"`
	ChatIDs       []domain.ChatRecord `json:"chat_ids"`
}

// ChatIDs returns the full registry contents.
func (h *Handlers) ChatIDs(c *gin.Context) {
	records := h.registry.All()
	ok(c, http.StatusOK, ChatIDsResponse{
		Count:         len(records),
		DefaultChatID: h.registry.DefaultChatID(),
		ChatIDs:       records,
	})
}

// Health reports liveness plus a registry summary.
func (h *Handlers) Health(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{
		"status":           "ok",
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"registered_chats": h.registry.Count(),
		"default_chat_id":  h.registry.DefaultChatID(),
	})
}

// Logs returns recent relay events from the observability ring, newest
// first. The optional limit query bounds the result.
func (h *Handlers) Logs(c *gin.Context) {
	if h.events == nil {
		ok(c, http.StatusOK, gin.H{"count": 0, "events": []any{}})
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 0)
	events := h.events.Recent(limit)
	ok(c, http.StatusOK, gin.H{"count": len(events), "events": events})
}
