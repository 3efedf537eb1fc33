package service

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stripe/stripe-go/v76"
)

func makeEvent(t *testing.T, eventType string, object interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return stripe.Event{
		ID:   "evt_test",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestClassifySubscriptionDeleted(t *testing.T) {
	c := NewEventClassifier()

	got, err := c.Classify(makeEvent(t, "customer.subscription.deleted", map[string]interface{}{
		"id": "sub_1", "status": "canceled", "customer": "cus_1",
	}))
	require.NoError(t, err)
	assert.Equal(t, ClassCancellation, got.Kind)
	assert.Equal(t, "sub_1", got.Subscription.ID)
}

func TestClassifySubscriptionUpdated(t *testing.T) {
	c := NewEventClassifier()

	terminal := []string{"canceled", "unpaid", "incomplete_expired"}
	for _, status := range terminal {
		t.Run(status, func(t *testing.T) {
			got, err := c.Classify(makeEvent(t, "customer.subscription.updated", map[string]interface{}{
				"id": "sub_1", "status": status,
			}))
			require.NoError(t, err)
			assert.Equal(t, ClassCancellation, got.Kind)
		})
	}

	live := []string{"active", "trialing", "past_due", "incomplete"}
	for _, status := range live {
		t.Run(status, func(t *testing.T) {
			got, err := c.Classify(makeEvent(t, "customer.subscription.updated", map[string]interface{}{
				"id": "sub_1", "status": status,
			}))
			require.NoError(t, err)
			assert.Equal(t, ClassIgnored, got.Kind)
		})
	}
}

func TestClassifyCheckoutSessionCompleted(t *testing.T) {
	c := NewEventClassifier()

	got, err := c.Classify(makeEvent(t, "checkout.session.completed", map[string]interface{}{
		"id": "cs_1", "amount_total": 9999,
	}))
	require.NoError(t, err)
	assert.Equal(t, ClassInitialPurchase, got.Kind)
	assert.Equal(t, "cs_1", got.Session.ID)
}

func TestClassifyInvoicePaid(t *testing.T) {
	c := NewEventClassifier()

	invoice := func(mutate func(map[string]interface{})) map[string]interface{} {
		inv := map[string]interface{}{
			"id":             "in_1",
			"subscription":   "sub_1",
			"amount_paid":    9999,
			"billing_reason": "subscription_cycle",
		}
		mutate(inv)
		return inv
	}

	t.Run("subscription cycle is recurring", func(t *testing.T) {
		got, err := c.Classify(makeEvent(t, "invoice.paid", invoice(func(m map[string]interface{}) {})))
		require.NoError(t, err)
		assert.Equal(t, ClassRecurringCharge, got.Kind)
		assert.Equal(t, "sub_1", got.Invoice.Subscription.ID)
	})

	t.Run("subscription create is recurring", func(t *testing.T) {
		got, err := c.Classify(makeEvent(t, "invoice.paid", invoice(func(m map[string]interface{}) {
			m["billing_reason"] = "subscription_create"
		})))
		require.NoError(t, err)
		assert.Equal(t, ClassRecurringCharge, got.Kind)
	})

	t.Run("no subscription ignored", func(t *testing.T) {
		got, err := c.Classify(makeEvent(t, "invoice.paid", invoice(func(m map[string]interface{}) {
			delete(m, "subscription")
		})))
		require.NoError(t, err)
		assert.Equal(t, ClassIgnored, got.Kind)
	})

	t.Run("zero amount ignored", func(t *testing.T) {
		// trial-start invoices carry amount_paid 0 and must not create orders
		got, err := c.Classify(makeEvent(t, "invoice.paid", invoice(func(m map[string]interface{}) {
			m["amount_paid"] = 0
		})))
		require.NoError(t, err)
		assert.Equal(t, ClassIgnored, got.Kind)
	})

	t.Run("manual billing reason ignored", func(t *testing.T) {
		got, err := c.Classify(makeEvent(t, "invoice.paid", invoice(func(m map[string]interface{}) {
			m["billing_reason"] = "manual"
		})))
		require.NoError(t, err)
		assert.Equal(t, ClassIgnored, got.Kind)
	})
}

func TestClassifyUnknownTypesIgnored(t *testing.T) {
	c := NewEventClassifier()

	for _, eventType := range []string{
		"payment_intent.succeeded",
		"charge.refunded",
		"customer.created",
		"invoice.payment_failed",
	} {
		got, err := c.Classify(makeEvent(t, eventType, map[string]interface{}{"id": "obj_1"}))
		require.NoError(t, err)
		assert.Equal(t, ClassIgnored, got.Kind, eventType)
		assert.Equal(t, fmt.Sprintf("event type %q not handled", eventType), got.Reason)
	}
}
