package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"membership-checkout-bridge/internal/config"
	"membership-checkout-bridge/internal/model"
)

// ShopifyClient wraps the Admin REST endpoints the order writer depends on:
// draft-order create/complete and the two customer-resolution lookups.
type ShopifyClient interface {
	CreateDraftOrder(ctx context.Context, draft *model.OrderDraftPayload, currency string) (*DraftOrder, error)
	CompleteDraftOrder(ctx context.Context, draftID int64) (*DraftOrder, error)
	GetOrderCustomer(ctx context.Context, orderID int64) (*ShopifyCustomer, error)
	FindCustomerByEmail(ctx context.Context, email string) (*ShopifyCustomer, error)
}

type DraftOrder struct {
	ID      int64  `json:"id"`
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

type ShopifyCustomer struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type shopifyClientImpl struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
}

func NewShopifyClient(shopifyCfg *config.Shopify) ShopifyClient {
	return &shopifyClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     fmt.Sprintf("https://%s/admin/api/%s", shopifyCfg.ShopDomain, shopifyCfg.APIVersion),
		accessToken: shopifyCfg.AccessToken,
	}
}

// NewShopifyClientWithBaseURL is used by tests to point the client at a
// fake Admin API.
func NewShopifyClientWithBaseURL(baseURL, accessToken string) ShopifyClient {
	return &shopifyClientImpl{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		baseURL:     baseURL,
		accessToken: accessToken,
	}
}

type shopifyLineItem struct {
	VariantID int64  `json:"variant_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price,omitempty"`
}

type shopifyNoteAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type shopifyDraftOrderRequest struct {
	LineItems      []shopifyLineItem      `json:"line_items"`
	Email          string                 `json:"email,omitempty"`
	Note           string                 `json:"note,omitempty"`
	NoteAttributes []shopifyNoteAttribute `json:"note_attributes,omitempty"`
	Tags           string                 `json:"tags,omitempty"`
	SourceName     string                 `json:"source_name,omitempty"`
	Currency       string                 `json:"currency,omitempty"`
}

func encodeLineItems(items []model.LineItem) []shopifyLineItem {
	out := make([]shopifyLineItem, 0, len(items))
	for _, item := range items {
		switch line := item.(type) {
		case model.CatalogLine:
			out = append(out, shopifyLineItem{
				VariantID: line.VariantID,
				Quantity:  line.Quantity,
				Price:     line.PriceOverride,
			})
		case model.CustomLine:
			out = append(out, shopifyLineItem{
				Title:    line.Title,
				Quantity: line.Quantity,
				Price:    line.Price,
			})
		}
	}
	return out
}

func encodeNoteAttributes(attrs []model.NoteAttribute) []shopifyNoteAttribute {
	out := make([]shopifyNoteAttribute, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, shopifyNoteAttribute{Name: attr.Key, Value: attr.Value})
	}
	return out
}

func (c *shopifyClientImpl) CreateDraftOrder(ctx context.Context, draft *model.OrderDraftPayload, currency string) (*DraftOrder, error) {
	payload := map[string]shopifyDraftOrderRequest{
		"draft_order": {
			LineItems:      encodeLineItems(draft.LineItems),
			Email:          draft.Email,
			Note:           draft.Note,
			NoteAttributes: encodeNoteAttributes(draft.NoteAttributes),
			Tags:           draft.Tags,
			SourceName:     draft.SourceName,
			Currency:       strings.ToUpper(currency),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal draft order: %w", err)
	}

	var result struct {
		DraftOrder *DraftOrder     `json:"draft_order"`
		Errors     json.RawMessage `json:"errors"`
	}
	if err := c.do(ctx, http.MethodPost, "/draft_orders.json", bytes.NewReader(body), &result); err != nil {
		return nil, err
	}
	// Shopify reports validation failures as an errors object alongside a
	// 2xx-adjacent status in some API versions; treat either as failure.
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("shopify draft order errors: %s", string(result.Errors))
	}
	if result.DraftOrder == nil {
		return nil, fmt.Errorf("shopify draft order response missing draft_order")
	}
	return result.DraftOrder, nil
}

func (c *shopifyClientImpl) CompleteDraftOrder(ctx context.Context, draftID int64) (*DraftOrder, error) {
	path := fmt.Sprintf("/draft_orders/%d/complete.json", draftID)

	var result struct {
		DraftOrder *DraftOrder `json:"draft_order"`
	}
	if err := c.do(ctx, http.MethodPut, path, nil, &result); err != nil {
		return nil, err
	}
	if result.DraftOrder == nil {
		return nil, fmt.Errorf("shopify complete response missing draft_order")
	}
	return result.DraftOrder, nil
}

func (c *shopifyClientImpl) GetOrderCustomer(ctx context.Context, orderID int64) (*ShopifyCustomer, error) {
	path := fmt.Sprintf("/orders/%d.json?fields=id,customer", orderID)

	var result struct {
		Order struct {
			ID       int64            `json:"id"`
			Customer *ShopifyCustomer `json:"customer"`
		} `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if result.Order.Customer == nil {
		return nil, fmt.Errorf("order %d has no customer", orderID)
	}
	return result.Order.Customer, nil
}

func (c *shopifyClientImpl) FindCustomerByEmail(ctx context.Context, email string) (*ShopifyCustomer, error) {
	query := url.QueryEscape(fmt.Sprintf("email:%s", email))
	path := "/customers/search.json?query=" + query

	var result struct {
		Customers []*ShopifyCustomer `json:"customers"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	if len(result.Customers) == 0 {
		return nil, fmt.Errorf("no customer found for email")
	}
	return result.Customers[0], nil
}

func (c *shopifyClientImpl) do(ctx context.Context, method, path string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read shopify response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("shopify error %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode shopify response: %w", err)
	}
	return nil
}
