package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/http/middleware"
	"travelagency/internal/payments"
	"travelagency/internal/utils"
)

// MaxWebhookBytes bounds the Stripe payload we are willing to verify.
const MaxWebhookBytes = 64 << 10

func (h *Handler) AdminListPayments(c *gin.Context) {
	f := models.PaymentFilter{
		Status:    strings.TrimSpace(c.Query("status")),
		BookingID: queryInt64(c, "booking_id"),
		InquiryID: queryInt64(c, "inquiry_id"),
	}
	page, err := h.payments(c).List(c.Request.Context(), f, pagination(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) AdminGetPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.payments(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// RefundPayment asks the provider for a refund; the status change itself
// arrives later through the charge.refunded webhook.
func (h *Handler) RefundPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.payments(c).Refund(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, p)
}

// StripeWebhook verifies the signature over the raw body, then reconciles the
// event in one transaction. Errors answer 500 so Stripe retries.
func (h *Handler) StripeWebhook(c *gin.Context) {
	reqID := middleware.GetRequestID(c)

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", "payload too large", nil)
			return
		}
		respondError(c, http.StatusBadRequest, "invalid_payload", "cannot read payload", nil)
		return
	}

	ev, err := h.Webhooks.Verify(body, c.GetHeader("Stripe-Signature"))
	switch {
	case errors.Is(err, payments.ErrNotConfigured):
		utils.LogError(reqID, "webhook", "verify", err)
		respondError(c, http.StatusServiceUnavailable, "service_unavailable", "webhook not configured", nil)
		return
	case err != nil:
		utils.LogEvent(reqID, "webhook", "verify", "rejected delivery with invalid signature")
		if h.WebhookEvents != nil {
			h.WebhookEvents.WithLabelValues("unknown", "invalid_signature").Inc()
		}
		respondError(c, http.StatusBadRequest, "invalid_signature", "invalid signature", nil)
		return
	}

	res, err := h.payments(c).HandleWebhook(c.Request.Context(), ev)
	if err != nil {
		if domain.IsValidation(err) {
			RespondDomainError(c, err)
			return
		}
		utils.LogError(reqID, "webhook", ev.Type, err)
		respondError(c, http.StatusInternalServerError, "internal_error", "webhook processing failed", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": res.Duplicate})
}
