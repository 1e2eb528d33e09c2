package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"vetflow/services/billing"
	"vetflow/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxStripeBody is Stripe's recommended cap on webhook payloads.
const maxStripeBody = 65536

type TopUps interface {
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*billing.TopUpResult, error)
}

type StripeHandler struct {
	TopUps TopUps
	Logger *zap.Logger
}

func NewStripeHandler(topUps TopUps, logger *zap.Logger) *StripeHandler {
	return &StripeHandler{TopUps: topUps, Logger: logger}
}

// Webhook verifies and applies a Stripe event.
func (h *StripeHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxStripeBody))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Unreadable body", err.Error())
		return
	}

	result, err := h.TopUps.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, billing.ErrInvalidSignature) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid signature", "")
		return
	}
	if err != nil {
		h.Logger.Error("Stripe webhook failed", zap.Error(err))
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
