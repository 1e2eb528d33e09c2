package handlers

import (
	"context"
	"io"
	"net/http"

	"vetflow/models"
	"vetflow/services/inbox"
	"vetflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Inbox is the conversational path behind the webhook.
type Inbox interface {
	HandleInbound(ctx context.Context, msg models.InboundMessage) (*inbox.Result, error)
	HandleStatus(ctx context.Context, update models.StatusUpdate) error
}

type WhatsAppHandler struct {
	Inbox       Inbox
	VerifyToken string
	Logger      *zap.Logger
}

func NewWhatsAppHandler(ib Inbox, verifyToken string, logger *zap.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{Inbox: ib, VerifyToken: verifyToken, Logger: logger}
}

// Verify answers the subscription handshake.
func (h *WhatsAppHandler) Verify(c *gin.Context) {
	challenge, ok := inbox.VerifySubscription(
		c.Query("hub.mode"), c.Query("hub.verify_token"), c.Query("hub.challenge"), h.VerifyToken)
	if !ok {
		utils.JSONError(c, http.StatusForbidden, "Verification failed", "")
		return
	}
	c.String(http.StatusOK, challenge)
}

// Receive handles a webhook callback. Processing failures are logged and
// still acknowledged so the provider does not redeliver indefinitely.
func (h *WhatsAppHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Unreadable body", err.Error())
		return
	}
	event, err := inbox.ParseWebhook(body)
	if err != nil {
		h.Logger.Warn("Ignoring malformed webhook", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	ctx := c.Request.Context()
	switch {
	case event.Status != nil:
		if err := h.Inbox.HandleStatus(ctx, *event.Status); err != nil {
			h.Logger.Error("Failed to apply status update",
				zap.String("messageID", event.Status.MessageID), zap.Error(err))
		}
	case event.Message != nil:
		result, err := h.Inbox.HandleInbound(ctx, *event.Message)
		if err != nil {
			h.Logger.Error("Failed to handle inbound message",
				zap.String("messageID", event.Message.MessageID), zap.Error(err))
			break
		}
		if result.Suppressed {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "limited": true})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
