package handler

import (
	"errors"
	"io"
	"net/http"

	"membership-checkout-bridge/internal/dto"
	"membership-checkout-bridge/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type WebhookHandler struct {
	processor service.WebhookProcessor
	logger    zerolog.Logger
}

func NewWebhookHandler(processor service.WebhookProcessor, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		processor: processor,
		logger:    logger.With().Str("component", "webhook_handler").Logger(),
	}
}

// StripeWebhook receives signed event envelopes from Stripe. The body is
// read as the unmodified raw byte stream; no binding middleware touches
// this route, otherwise the signature check would fail.
func (h *WebhookHandler) StripeWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "unreadable body"})
	}

	signature := c.Request().Header.Get("Stripe-Signature")

	if err := h.processor.Process(ctx, payload, signature); err != nil {
		h.logger.Error().Err(err).Msg("webhook processing failed")
		return c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSecretUnconfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrInvalidSignature), errors.Is(err, service.ErrUnreadableBody):
		return http.StatusBadRequest
	default:
		// ErrUpstreamFetch, ErrDraftCreateFailed: Stripe retries on 5xx.
		return http.StatusInternalServerError
	}
}
