package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"membership-checkout-bridge/internal/config"
)

// SyncClient talks to the subscription-tracking system. Records created
// there are for lifecycle tracking only; the long-horizon billing policy
// means the tracker never actually re-bills anyone.
type SyncClient interface {
	CreateSubscription(ctx context.Context, req *SubscriptionCreateRequest) error
	ListSubscriptionIDs(ctx context.Context, email string) ([]string, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

type SubscriptionCreateRequest struct {
	Email         string `json:"email"`
	CustomerID    string `json:"customer_id"`
	OriginOrderID string `json:"origin_order_id"`
	VariantID     string `json:"variant_id"`
	SellingPlanID string `json:"selling_plan_id"`
}

type syncClientImpl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewSyncClient(syncCfg *config.Sync) SyncClient {
	return &syncClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: syncCfg.BaseURL,
		apiKey:  syncCfg.APIKey,
	}
}

// NewSyncClientWithBaseURL is used by tests to point the client at a fake
// sync API.
func NewSyncClientWithBaseURL(baseURL, apiKey string) SyncClient {
	return &syncClientImpl{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

type syncBillingPolicy struct {
	Interval      string `json:"interval"`
	IntervalCount int    `json:"interval_count"`
	Anchor        string `json:"anchor,omitempty"`
}

type syncSubscriptionLine struct {
	VariantID     string `json:"variant_id"`
	SellingPlanID string `json:"selling_plan_id"`
	Quantity      int    `json:"quantity"`
}

type syncCreatePayload struct {
	Email          string                 `json:"email"`
	CustomerID     string                 `json:"customer_id"`
	OriginOrderID  string                 `json:"origin_order_id"`
	BillingPolicy  syncBillingPolicy      `json:"billing_policy"`
	DeliveryPolicy syncBillingPolicy      `json:"delivery_policy"`
	Lines          []syncSubscriptionLine `json:"lines"`
}

func (c *syncClientImpl) CreateSubscription(ctx context.Context, req *SubscriptionCreateRequest) error {
	// Anchor the next billing date ~10 years out: the record is tracked,
	// never re-billed.
	anchor := time.Now().UTC().AddDate(10, 0, 0).Format(time.RFC3339)

	payload := map[string]syncCreatePayload{
		"subscription": {
			Email:         req.Email,
			CustomerID:    req.CustomerID,
			OriginOrderID: req.OriginOrderID,
			BillingPolicy: syncBillingPolicy{
				Interval:      "year",
				IntervalCount: 10,
				Anchor:        anchor,
			},
			DeliveryPolicy: syncBillingPolicy{
				Interval:      "year",
				IntervalCount: 10,
			},
			Lines: []syncSubscriptionLine{
				{
					VariantID:     req.VariantID,
					SellingPlanID: req.SellingPlanID,
					Quantity:      1,
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal sync subscription: %w", err)
	}

	return c.do(ctx, http.MethodPost, "/subscriptions", bytes.NewReader(body), nil)
}

func (c *syncClientImpl) ListSubscriptionIDs(ctx context.Context, email string) ([]string, error) {
	path := "/subscriptions?email=" + url.QueryEscape(email)

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return normalizeSubscriptionIDs(raw)
}

func (c *syncClientImpl) CancelSubscription(ctx context.Context, subscriptionID string) error {
	path := fmt.Sprintf("/subscriptions/%s/cancel", url.PathEscape(subscriptionID))
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

type syncSubscriptionRef struct {
	ID string `json:"id"`
}

// normalizeSubscriptionIDs accepts every response shape the sync API has
// been observed to return for "the customer's subscriptions":
//
//  1. a bare list:        [{"id": "..."}, ...]
//  2. a nested envelope:  {"data": {"subscriptions": [{"id": "..."}]}}
//  3. a single object:    {"id": "..."}
//
// Each shape is tried in turn; the first successful decode wins.
func normalizeSubscriptionIDs(raw json.RawMessage) ([]string, error) {
	var list []syncSubscriptionRef
	if err := json.Unmarshal(raw, &list); err == nil {
		return collectIDs(list), nil
	}

	var envelope struct {
		Data *struct {
			Subscriptions []syncSubscriptionRef `json:"subscriptions"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return collectIDs(envelope.Data.Subscriptions), nil
	}

	var single syncSubscriptionRef
	if err := json.Unmarshal(raw, &single); err == nil && single.ID != "" {
		return []string{single.ID}, nil
	}

	return nil, fmt.Errorf("unrecognized subscription list shape: %s", string(raw))
}

func collectIDs(refs []syncSubscriptionRef) []string {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.ID != "" {
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

func (c *syncClientImpl) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read sync response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sync error %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode sync response: %w", err)
		}
	}
	return nil
}
