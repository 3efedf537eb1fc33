package service

import (
	"context"
	"fmt"
	"testing"

	"membership-checkout-bridge/internal/client"
	"membership-checkout-bridge/internal/config"
	"membership-checkout-bridge/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncClient struct {
	createCalls int
	listCalls   int
	cancelCalls int

	createErr error
	listIDs   []string
	listErr   error
	cancelErr map[string]error

	lastCreate *client.SubscriptionCreateRequest
	cancelled  []string
}

func (f *fakeSyncClient) CreateSubscription(_ context.Context, req *client.SubscriptionCreateRequest) error {
	f.createCalls++
	f.lastCreate = req
	return f.createErr
}

func (f *fakeSyncClient) ListSubscriptionIDs(_ context.Context, _ string) ([]string, error) {
	f.listCalls++
	return f.listIDs, f.listErr
}

func (f *fakeSyncClient) CancelSubscription(_ context.Context, id string) error {
	f.cancelCalls++
	f.cancelled = append(f.cancelled, id)
	return f.cancelErr[id]
}

func enabledSyncCfg() config.Sync {
	return config.Sync{
		Enabled:              true,
		YearlyVariantID:      "var_y",
		MonthlyVariantID:     "var_m",
		YearlySellingPlanID:  "sp_y",
		MonthlySellingPlanID: "sp_m",
	}
}

func TestSyncDisabledIsNoOp(t *testing.T) {
	fc := &fakeSyncClient{}
	a := NewSubscriptionSyncAdapter(config.Sync{Enabled: false}, fc, zerolog.Nop())

	create := a.CreateSubscription(context.Background(), "a@b.com", model.PlanYearly, "777", "900")
	cancel := a.CancelSubscription(context.Background(), "a@b.com")

	assert.True(t, create.Ok)
	assert.True(t, cancel.Ok)
	assert.Equal(t, 0, fc.createCalls)
	assert.Equal(t, 0, fc.listCalls)
	assert.Equal(t, 0, fc.cancelCalls)
}

func TestSyncCreateValidatesInputs(t *testing.T) {
	fc := &fakeSyncClient{}
	a := NewSubscriptionSyncAdapter(enabledSyncCfg(), fc, zerolog.Nop())

	noEmail := a.CreateSubscription(context.Background(), "", model.PlanYearly, "777", "900")
	assert.False(t, noEmail.Ok)

	noCustomer := a.CreateSubscription(context.Background(), "a@b.com", model.PlanYearly, "", "900")
	assert.False(t, noCustomer.Ok)

	assert.Equal(t, 0, fc.createCalls)
}

func TestSyncCreatePicksPlanRefs(t *testing.T) {
	fc := &fakeSyncClient{}
	a := NewSubscriptionSyncAdapter(enabledSyncCfg(), fc, zerolog.Nop())

	result := a.CreateSubscription(context.Background(), "a@b.com", model.PlanMonthly, "777", "900")
	require.True(t, result.Ok)
	require.NotNil(t, fc.lastCreate)
	assert.Equal(t, "var_m", fc.lastCreate.VariantID)
	assert.Equal(t, "sp_m", fc.lastCreate.SellingPlanID)
	assert.Equal(t, "900", fc.lastCreate.OriginOrderID)
}

func TestSyncCreateFailureIsReportedNotRaised(t *testing.T) {
	fc := &fakeSyncClient{createErr: fmt.Errorf("sync error 500")}
	a := NewSubscriptionSyncAdapter(enabledSyncCfg(), fc, zerolog.Nop())

	result := a.CreateSubscription(context.Background(), "a@b.com", model.PlanYearly, "777", "900")
	assert.False(t, result.Ok)
	assert.Contains(t, result.Error, "500")
}

func TestSyncCancelAllSubscriptions(t *testing.T) {
	fc := &fakeSyncClient{listIDs: []string{"sub_1", "sub_2"}}
	a := NewSubscriptionSyncAdapter(enabledSyncCfg(), fc, zerolog.Nop())

	result := a.CancelSubscription(context.Background(), "a@b.com")
	assert.True(t, result.Ok)
	assert.Equal(t, []string{"sub_1", "sub_2"}, fc.cancelled)
}

func TestSyncCancelPartialFailureContinues(t *testing.T) {
	fc := &fakeSyncClient{
		listIDs:   []string{"sub_1", "sub_2", "sub_3"},
		cancelErr: map[string]error{"sub_2": fmt.Errorf("sync error 500")},
	}
	a := NewSubscriptionSyncAdapter(enabledSyncCfg(), fc, zerolog.Nop())

	result := a.CancelSubscription(context.Background(), "a@b.com")

	// one failure does not abort the others
	assert.Equal(t, 3, fc.cancelCalls)
	assert.False(t, result.Ok)
	assert.Contains(t, result.Error, "1 of 3")
}

func TestSyncCancelMissingEmail(t *testing.T) {
	fc := &fakeSyncClient{}
	a := NewSubscriptionSyncAdapter(enabledSyncCfg(), fc, zerolog.Nop())

	result := a.CancelSubscription(context.Background(), "")
	assert.False(t, result.Ok)
	assert.Equal(t, 0, fc.listCalls)
}

func TestSyncCancelNoSubscriptionsFound(t *testing.T) {
	fc := &fakeSyncClient{listIDs: nil}
	a := NewSubscriptionSyncAdapter(enabledSyncCfg(), fc, zerolog.Nop())

	result := a.CancelSubscription(context.Background(), "a@b.com")
	assert.False(t, result.Ok)
	assert.Equal(t, 0, fc.cancelCalls)
}
