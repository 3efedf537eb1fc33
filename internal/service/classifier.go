package service

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
)

// ClassificationKind is the handling path an event is routed to. The
// classifier is stateless; these are one-shot outcomes, not persisted state.
type ClassificationKind string

const (
	ClassIgnored         ClassificationKind = "ignored"
	ClassCancellation    ClassificationKind = "cancellation"
	ClassInitialPurchase ClassificationKind = "initial_purchase"
	ClassRecurringCharge ClassificationKind = "recurring_charge"
)

// Classification carries the routing decision plus the decoded payload
// object for the matched path. Reason explains Ignored outcomes for the log.
type Classification struct {
	Kind         ClassificationKind
	Session      *stripe.CheckoutSession
	Invoice      *stripe.Invoice
	Subscription *stripe.Subscription
	Reason       string
}

type EventClassifier interface {
	Classify(event stripe.Event) (Classification, error)
}

type eventClassifierImpl struct{}

func NewEventClassifier() EventClassifier {
	return &eventClassifierImpl{}
}

// Subscription statuses that mean the subscription is effectively over.
// Stripe spells it "canceled"; "cancelled" is kept for older payloads.
var cancellationStatuses = map[string]bool{
	"canceled":           true,
	"cancelled":          true,
	"unpaid":             true,
	"incomplete_expired": true,
}

// Billing reasons that represent a real subscription charge. Everything
// else (manual invoices, zero-amount trial starts) would double-create
// orders if allowed through.
var recurringBillingReasons = map[stripe.InvoiceBillingReason]bool{
	stripe.InvoiceBillingReasonSubscriptionCycle:  true,
	stripe.InvoiceBillingReasonSubscriptionCreate: true,
}

func (c *eventClassifierImpl) Classify(event stripe.Event) (Classification, error) {
	switch event.Type {
	case "customer.subscription.deleted":
		sub, err := decodeSubscription(event)
		if err != nil {
			return Classification{}, err
		}
		return Classification{Kind: ClassCancellation, Subscription: sub}, nil

	case "customer.subscription.updated":
		sub, err := decodeSubscription(event)
		if err != nil {
			return Classification{}, err
		}
		if cancellationStatuses[string(sub.Status)] {
			return Classification{Kind: ClassCancellation, Subscription: sub}, nil
		}
		return Classification{
			Kind:         ClassIgnored,
			Subscription: sub,
			Reason:       fmt.Sprintf("subscription status %q is not terminal", sub.Status),
		}, nil

	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return Classification{}, fmt.Errorf("%w: decode checkout session: %v", ErrUnreadableBody, err)
		}
		return Classification{Kind: ClassInitialPurchase, Session: &sess}, nil

	case "invoice.paid":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return Classification{}, fmt.Errorf("%w: decode invoice: %v", ErrUnreadableBody, err)
		}
		if inv.Subscription == nil || inv.Subscription.ID == "" {
			return Classification{Kind: ClassIgnored, Invoice: &inv, Reason: "invoice has no subscription"}, nil
		}
		if inv.AmountPaid <= 0 {
			return Classification{Kind: ClassIgnored, Invoice: &inv, Reason: "zero-amount invoice"}, nil
		}
		if !recurringBillingReasons[inv.BillingReason] {
			return Classification{
				Kind:    ClassIgnored,
				Invoice: &inv,
				Reason:  fmt.Sprintf("billing reason %q not handled", inv.BillingReason),
			}, nil
		}
		return Classification{Kind: ClassRecurringCharge, Invoice: &inv}, nil

	default:
		return Classification{
			Kind:   ClassIgnored,
			Reason: fmt.Sprintf("event type %q not handled", event.Type),
		}, nil
	}
}

func decodeSubscription(event stripe.Event) (*stripe.Subscription, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("%w: decode subscription: %v", ErrUnreadableBody, err)
	}
	return &sub, nil
}
