package service

import (
	"context"
	"strconv"

	"membership-checkout-bridge/internal/client"
	"membership-checkout-bridge/internal/model"

	"github.com/rs/zerolog"
)

// OrderWriter performs the two-phase order write against the commerce
// backend: create a draft, then complete it. Phase 1 failure is the only
// hard failure; a created-but-not-completed draft can be finished manually
// in the backend UI, so phase 2 failures are logged and the result stays Ok.
//
// The writer is not idempotent. Calling it twice with the same payload
// creates two drafts; redelivered events do the same (known gap).
type OrderWriter interface {
	CreateAndComplete(ctx context.Context, draft *model.OrderDraftPayload, currency string) model.OrderResult
}

type shopifyOrderWriter struct {
	shopify client.ShopifyClient
	logger  zerolog.Logger
}

func NewOrderWriter(shopify client.ShopifyClient, logger zerolog.Logger) OrderWriter {
	return &shopifyOrderWriter{
		shopify: shopify,
		logger:  logger.With().Str("component", "order_writer").Logger(),
	}
}

func (w *shopifyOrderWriter) CreateAndComplete(ctx context.Context, draft *model.OrderDraftPayload, currency string) model.OrderResult {
	created, err := w.shopify.CreateDraftOrder(ctx, draft, currency)
	if err != nil {
		w.logger.Error().Err(err).Str("email", draft.Email).Msg("draft order create failed")
		return model.OrderResult{Ok: false, Error: err.Error()}
	}

	w.logger.Info().Int64("draft_id", created.ID).Msg("draft order created")

	completed, err := w.shopify.CompleteDraftOrder(ctx, created.ID)
	if err != nil {
		// The draft exists; an operator can complete it by hand. Do not
		// downgrade the result.
		w.logger.Warn().Err(err).Int64("draft_id", created.ID).Msg("draft order complete failed, draft left pending")
		return model.OrderResult{Ok: true}
	}

	result := model.OrderResult{Ok: true}
	if completed.OrderID != 0 {
		result.OrderID = strconv.FormatInt(completed.OrderID, 10)
	}
	result.CustomerID = w.resolveCustomerID(ctx, completed.OrderID, draft.Email)

	return result
}

// resolveCustomerID tries the order lookup first, then falls back to a
// customer search by email. Either may legitimately come back empty.
func (w *shopifyOrderWriter) resolveCustomerID(ctx context.Context, orderID int64, email string) string {
	if orderID != 0 {
		if cust, err := w.shopify.GetOrderCustomer(ctx, orderID); err == nil && cust.ID != 0 {
			return strconv.FormatInt(cust.ID, 10)
		} else if err != nil {
			w.logger.Debug().Err(err).Int64("order_id", orderID).Msg("customer lookup by order failed")
		}
	}

	if email != "" {
		if cust, err := w.shopify.FindCustomerByEmail(ctx, email); err == nil && cust.ID != 0 {
			return strconv.FormatInt(cust.ID, 10)
		} else if err != nil {
			w.logger.Debug().Err(err).Msg("customer lookup by email failed")
		}
	}

	return ""
}
