package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizcraft-service/internal/app"
	"quizcraft-service/internal/infra/stripepay"
	"quizcraft-service/internal/logger"
)

type PaymentHandler struct {
	payments *app.PaymentService
	provider *stripepay.Provider
	log      *logger.Logger
}

// NewPaymentHandler wires the payment routes. provider may be nil when no
// billing key is configured; the webhook then rejects everything.
func NewPaymentHandler(payments *app.PaymentService, provider *stripepay.Provider, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, provider: provider, log: log}
}

func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req struct {
		Amount   float64           `json:"amount"`
		Currency string            `json:"currency"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	id := identityFrom(c)
	intent, err := h.payments.CreateIntent(c.Request.Context(), id.UserID, id.Email, req.Amount, req.Currency, req.Metadata)
	if err != nil {
		respondServiceError(c, err, "failed to create payment intent")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"client_secret":     intent.ClientSecret,
		"payment_intent_id": intent.ID,
	})
}

func (h *PaymentHandler) Confirm(c *gin.Context) {
	var req struct {
		PaymentIntentID string `json:"payment_intent_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	intent, err := h.payments.Confirm(c.Request.Context(), req.PaymentIntentID)
	if err != nil {
		respondServiceError(c, err, "failed to confirm payment")
		return
	}
	if intent.Status != "succeeded" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success":        false,
			"message":        "payment not successful",
			"payment_status": intent.Status,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "payment confirmed successfully",
		"payment_status": intent.Status,
		"payment_id":     intent.ID,
	})
}

// Webhook verifies the provider signature and acknowledges events. Premium
// grants triggered by these events live outside this service for now.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	if h.provider == nil {
		respondError(c, http.StatusServiceUnavailable, "payment system not configured", nil)
		return
	}
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read payload", err)
		return
	}
	event, err := h.provider.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "webhook signature verification failed", err)
		return
	}
	switch event.Type {
	case "payment_intent.succeeded",
		"payment_intent.payment_failed",
		"customer.subscription.created",
		"customer.subscription.deleted":
		h.log.Info("stripe event", "type", event.Type, "id", event.ID)
	default:
		h.log.Debug("unhandled stripe event", "type", event.Type)
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
