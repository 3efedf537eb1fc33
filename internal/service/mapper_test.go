package service

import (
	"testing"

	"membership-checkout-bridge/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapLineItemsPaidWithCatalog(t *testing.T) {
	m := NewLineItemMapper()

	items := m.MapLineItems(model.PlanYearly, "99.99", &CatalogRef{ProductID: 1, VariantID: 111})
	require.Len(t, items, 1)

	line, ok := items[0].(model.CatalogLine)
	require.True(t, ok)
	assert.Equal(t, int64(111), line.VariantID)
	// the override mirrors what Stripe actually charged, not list price
	assert.Equal(t, "99.99", line.PriceOverride)
	assert.Equal(t, 1, line.Quantity)
}

func TestMapLineItemsPaidWithoutCatalog(t *testing.T) {
	m := NewLineItemMapper()

	items := m.MapLineItems(model.PlanYearly, "99.99", nil)
	require.Len(t, items, 1)

	line, ok := items[0].(model.CustomLine)
	require.True(t, ok)
	assert.Equal(t, "Platinum Membership Yearly", line.Title)
	assert.Equal(t, "99.99", line.Price)
}

func TestMapLineItemsTrialNeverCatalog(t *testing.T) {
	m := NewLineItemMapper()

	// even with a catalog mapping, a trial must use a free-text line:
	// a bare variant reference would bill the catalog list price
	items := m.MapLineItems(model.PlanMonthly, "0.00", &CatalogRef{ProductID: 1, VariantID: 111})
	require.Len(t, items, 1)

	line, ok := items[0].(model.CustomLine)
	require.True(t, ok)
	assert.Equal(t, "Platinum Membership Monthly Trial", line.Title)
	assert.Equal(t, "0.00", line.Price)
}

func TestLineTitles(t *testing.T) {
	m := NewLineItemMapper()

	tests := []struct {
		plan   model.PlanSelection
		amount string
		want   string
	}{
		{model.PlanYearly, "0.00", "Platinum Membership Yearly Trial"},
		{model.PlanMonthly, "0.00", "Platinum Membership Monthly Trial"},
		{model.PlanYearly, "99.99", "Platinum Membership Yearly"},
		{model.PlanMonthly, "12.99", "Platinum Membership Monthly (after trial)"},
	}

	for _, tt := range tests {
		items := m.MapLineItems(tt.plan, tt.amount, nil)
		line := items[0].(model.CustomLine)
		assert.Equal(t, tt.want, line.Title)
	}
}

func attrMap(attrs []model.NoteAttribute) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Key] = a.Value
	}
	return out
}

func TestBuildNoteInitialPurchase(t *testing.T) {
	m := NewLineItemMapper()

	note, attrs := m.BuildNote(NoteInput{
		SessionID: "cs_1",
		Plan:      model.PlanYearly,
		Catalog:   &CatalogRef{ProductID: 22, VariantID: 111},
		Attribution: map[string]string{
			"utm_source":   "newsletter",
			"utm_campaign": " spring ",
			"utm_medium":   "   ",
			"unrelated":    "dropped",
		},
	})

	got := attrMap(attrs)
	assert.Equal(t, "cs_1", got["stripe_session_id"])
	assert.Equal(t, "yearly", got["plan"])
	assert.Equal(t, "22", got["product_id"])
	assert.Equal(t, "111", got["variant_id"])
	assert.Equal(t, "newsletter", got["utm_source"])
	assert.Equal(t, "spring", got["utm_campaign"])

	// blank and non-allow-listed attribution is omitted, not empty
	assert.NotContains(t, got, "utm_medium")
	assert.NotContains(t, got, "unrelated")
	assert.NotContains(t, got, "order_type")

	assert.Contains(t, note, "yearly")
	assert.Contains(t, note, "cs_1")
	assert.Contains(t, note, "newsletter")
}

func TestBuildNoteRecurring(t *testing.T) {
	m := NewLineItemMapper()

	note, attrs := m.BuildNote(NoteInput{
		InvoiceID:      "in_1",
		SubscriptionID: "sub_1",
		Plan:           model.PlanMonthly,
		Recurring:      true,
	})

	got := attrMap(attrs)
	assert.Equal(t, "in_1", got["stripe_invoice_id"])
	assert.Equal(t, "sub_1", got["stripe_subscription_id"])
	assert.Equal(t, "recurring", got["order_type"])
	assert.Equal(t, "monthly", got["plan"])
	assert.NotContains(t, got, "stripe_session_id")

	assert.Contains(t, note, "in_1")
	assert.Contains(t, note, "sub_1")
}

func TestBuildNoteKeysUnique(t *testing.T) {
	m := NewLineItemMapper()

	// an attribution key colliding with a reserved key must not duplicate it
	_, attrs := m.BuildNote(NoteInput{
		SessionID:   "cs_1",
		Plan:        model.PlanYearly,
		Attribution: map[string]string{"utm_source": "x", "plan": "spoofed"},
	})

	seen := map[string]int{}
	for _, a := range attrs {
		seen[a.Key]++
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, key)
	}

	got := attrMap(attrs)
	assert.Equal(t, "yearly", got["plan"])
}
