// Telegram webhook handler: the push-based ingestion producer.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alertline/go-alert-relay/internal/obslog"
	"github.com/alertline/go-alert-relay/internal/telegram"
)

// TelegramWebhook receives update pushes from Telegram itself.
//
// It always answers 200 {"ok":true}: Telegram disables webhook delivery after
// repeated non-success responses, so internal failures are swallowed by the
// ingest service and never surfaced here. A body we cannot decode is also
// acknowledged.
func (h *Handlers) TelegramWebhook(c *gin.Context) {
	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		ok(c, http.StatusOK, gin.H{"ok": true})
		return
	}

	if update.Message != nil {
		h.ingest.HandleMessage(c.Request.Context(), update.Message)
		h.record(obslog.Event{
			Kind:   "telegram_update",
			ChatID: update.Message.Chat.ChatID(),
			OK:     true,
		})
	}

	ok(c, http.StatusOK, gin.H{"ok": true})
}
