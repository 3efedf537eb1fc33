package service

import (
	"context"
	"fmt"

	"membership-checkout-bridge/internal/client"
	"membership-checkout-bridge/internal/config"
	"membership-checkout-bridge/internal/dto"
	"membership-checkout-bridge/internal/model"

	"github.com/stripe/stripe-go/v76"
)

// CheckoutService backs the browser-facing boundary endpoints. Each
// operation is a single outbound Stripe call plus input validation; no
// state is held between requests.
type CheckoutService interface {
	CreateSession(ctx context.Context, req *dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error)
	BillingPortal(ctx context.Context, customerID string) (*dto.BillingPortalResponse, error)
	PlanConfig() *dto.ConfigResponse
	ProductDetails(ctx context.Context) (*dto.ProductsResponse, error)
}

type checkoutServiceImpl struct {
	stripeClient client.StripeClient
	cfg          config.Stripe
	baseURL      string
}

func NewCheckoutService(stripeClient client.StripeClient, stripeCfg config.Stripe, baseURL string) CheckoutService {
	return &checkoutServiceImpl{
		stripeClient: stripeClient,
		cfg:          stripeCfg,
		baseURL:      baseURL,
	}
}

func (s *checkoutServiceImpl) CreateSession(ctx context.Context, req *dto.CheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	if req.Plan != string(model.PlanYearly) && req.Plan != string(model.PlanMonthly) {
		return nil, fmt.Errorf("invalid plan %q", req.Plan)
	}

	priceID := s.cfg.YearlyPriceID
	if req.Plan == string(model.PlanMonthly) {
		priceID = s.cfg.MonthlyPriceID
	}

	// Plan and attribution ride along as metadata on both the session and
	// the subscription so every later webhook event carries them.
	metadata := map[string]string{"plan": req.Plan}
	for _, key := range attributionKeys {
		if v := req.Attribution[key]; v != "" {
			metadata[key] = v
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:          stripe.String(s.successURL()),
		CancelURL:           stripe.String(s.cancelURL()),
		AllowPromotionCodes: stripe.Bool(true),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	if s.cfg.TrialDays > 0 {
		params.SubscriptionData.TrialPeriodDays = stripe.Int64(s.cfg.TrialDays)
	}

	sess, err := s.stripeClient.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, err
	}

	return &dto.CheckoutSessionResponse{SessionID: sess.ID, URL: sess.URL}, nil
}

func (s *checkoutServiceImpl) BillingPortal(ctx context.Context, customerID string) (*dto.BillingPortalResponse, error) {
	if customerID == "" {
		return nil, fmt.Errorf("missing customer id")
	}

	sess, err := s.stripeClient.CreateBillingPortalSession(ctx, customerID, s.baseURL)
	if err != nil {
		return nil, err
	}
	return &dto.BillingPortalResponse{URL: sess.URL}, nil
}

func (s *checkoutServiceImpl) PlanConfig() *dto.ConfigResponse {
	return &dto.ConfigResponse{
		PublishableKey: s.cfg.PublishableKey,
		YearlyPriceID:  s.cfg.YearlyPriceID,
		MonthlyPriceID: s.cfg.MonthlyPriceID,
	}
}

func (s *checkoutServiceImpl) ProductDetails(ctx context.Context) (*dto.ProductsResponse, error) {
	plans := []struct {
		plan    model.PlanSelection
		priceID string
	}{
		{model.PlanYearly, s.cfg.YearlyPriceID},
		{model.PlanMonthly, s.cfg.MonthlyPriceID},
	}

	resp := &dto.ProductsResponse{}
	for _, p := range plans {
		if p.priceID == "" {
			continue
		}
		price, err := s.stripeClient.GetPrice(ctx, p.priceID)
		if err != nil {
			return nil, err
		}
		detail := dto.PlanDetail{
			Plan:     string(p.plan),
			PriceID:  p.priceID,
			Amount:   model.FormatAmount(price.UnitAmount),
			Currency: string(price.Currency),
		}
		if price.Recurring != nil {
			detail.Interval = string(price.Recurring.Interval)
		}
		resp.Plans = append(resp.Plans, detail)
	}
	return resp, nil
}

func (s *checkoutServiceImpl) successURL() string {
	if s.cfg.SuccessURL != "" {
		return s.cfg.SuccessURL
	}
	return s.baseURL + "/success?session_id={CHECKOUT_SESSION_ID}"
}

func (s *checkoutServiceImpl) cancelURL() string {
	if s.cfg.CancelURL != "" {
		return s.cfg.CancelURL
	}
	return s.baseURL
}
