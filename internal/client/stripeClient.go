package client

import (
	"context"
	"fmt"

	"membership-checkout-bridge/internal/config"

	"github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"
)

// StripeClient covers the read dependencies of the webhook pipeline plus
// the two boundary operations (checkout session, billing portal).
type StripeClient interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error)
	GetPrice(ctx context.Context, priceID string) (*stripe.Price, error)
	CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (*stripe.BillingPortalSession, error)
}

type stripeClientImpl struct {
	api *stripeclient.API
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	api := &stripeclient.API{}
	api.Init(stripeCfg.SecretKey, nil)

	return &stripeClientImpl{api: api}
}

func (c *stripeClientImpl) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create checkout session: %w", err)
	}
	return sess, nil
}

func (c *stripeClientImpl) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("customer")
	params.AddExpand("subscription")

	sess, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get checkout session %s: %w", sessionID, err)
	}
	return sess, nil
}

func (c *stripeClientImpl) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("customer")

	sub, err := c.api.Subscriptions.Get(subscriptionID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get subscription %s: %w", subscriptionID, err)
	}
	return sub, nil
}

func (c *stripeClientImpl) GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := c.api.Customers.Get(customerID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get customer %s: %w", customerID, err)
	}
	return cust, nil
}

func (c *stripeClientImpl) GetPrice(ctx context.Context, priceID string) (*stripe.Price, error) {
	params := &stripe.PriceParams{}
	params.Context = ctx

	price, err := c.api.Prices.Get(priceID, params)
	if err != nil {
		return nil, fmt.Errorf("stripe get price %s: %w", priceID, err)
	}
	return price, nil
}

func (c *stripeClientImpl) CreateBillingPortalSession(ctx context.Context, customerID, returnURL string) (*stripe.BillingPortalSession, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := c.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create billing portal session: %w", err)
	}
	return sess, nil
}
