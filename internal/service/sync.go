package service

import (
	"context"
	"fmt"

	"membership-checkout-bridge/internal/client"
	"membership-checkout-bridge/internal/config"
	"membership-checkout-bridge/internal/model"

	"github.com/rs/zerolog"
)

// SubscriptionSyncAdapter mirrors purchases and cancellations into the
// subscription tracker. Every operation is best-effort: the adapter never
// raises past its boundary and callers only log its failures. With the
// feature flag off both operations are immediate no-ops with zero outbound
// calls, so the adapter is safe to leave wired in unconfigured environments.
type SubscriptionSyncAdapter interface {
	CreateSubscription(ctx context.Context, email string, plan model.PlanSelection, customerID, originOrderID string) model.SyncResult
	CancelSubscription(ctx context.Context, email string) model.SyncResult
}

type syncAdapterImpl struct {
	enabled bool
	cfg     config.Sync
	client  client.SyncClient
	logger  zerolog.Logger
}

func NewSubscriptionSyncAdapter(syncCfg config.Sync, syncClient client.SyncClient, logger zerolog.Logger) SubscriptionSyncAdapter {
	return &syncAdapterImpl{
		enabled: syncCfg.Enabled,
		cfg:     syncCfg,
		client:  syncClient,
		logger:  logger.With().Str("component", "subscription_sync").Logger(),
	}
}

func (a *syncAdapterImpl) CreateSubscription(ctx context.Context, email string, plan model.PlanSelection, customerID, originOrderID string) model.SyncResult {
	if !a.enabled {
		return model.SyncResult{Ok: true}
	}
	if email == "" {
		return model.SyncResult{Ok: false, Error: "sync create: missing email"}
	}
	if customerID == "" {
		return model.SyncResult{Ok: false, Error: "sync create: missing external customer id"}
	}

	variantID, sellingPlanID := a.planRefs(plan)

	err := a.client.CreateSubscription(ctx, &client.SubscriptionCreateRequest{
		Email:         email,
		CustomerID:    customerID,
		OriginOrderID: originOrderID,
		VariantID:     variantID,
		SellingPlanID: sellingPlanID,
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("plan", string(plan)).Msg("sync subscription create failed")
		return model.SyncResult{Ok: false, Error: err.Error()}
	}

	a.logger.Info().Str("plan", string(plan)).Str("order_id", originOrderID).Msg("subscription synced")
	return model.SyncResult{Ok: true}
}

func (a *syncAdapterImpl) CancelSubscription(ctx context.Context, email string) model.SyncResult {
	if !a.enabled {
		return model.SyncResult{Ok: true}
	}
	if email == "" {
		return model.SyncResult{Ok: false, Error: "sync cancel: missing email"}
	}

	ids, err := a.client.ListSubscriptionIDs(ctx, email)
	if err != nil {
		a.logger.Warn().Err(err).Msg("sync subscription lookup failed")
		return model.SyncResult{Ok: false, Error: err.Error()}
	}
	if len(ids) == 0 {
		return model.SyncResult{Ok: false, Error: "sync cancel: no subscriptions found for customer"}
	}

	// Cancel each id independently; one failure must not abort the rest.
	failed := 0
	for _, id := range ids {
		if err := a.client.CancelSubscription(ctx, id); err != nil {
			failed++
			a.logger.Warn().Err(err).Str("subscription_id", id).Msg("sync subscription cancel failed")
		}
	}
	if failed > 0 {
		return model.SyncResult{Ok: false, Error: fmt.Sprintf("sync cancel: %d of %d cancellations failed", failed, len(ids))}
	}

	a.logger.Info().Int("cancelled", len(ids)).Msg("subscriptions cancelled in sync system")
	return model.SyncResult{Ok: true}
}

func (a *syncAdapterImpl) planRefs(plan model.PlanSelection) (variantID, sellingPlanID string) {
	if plan == model.PlanMonthly {
		return a.cfg.MonthlyVariantID, a.cfg.MonthlySellingPlanID
	}
	return a.cfg.YearlyVariantID, a.cfg.YearlySellingPlanID
}
