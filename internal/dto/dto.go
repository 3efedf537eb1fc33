package dto

type CheckoutSessionRequest struct {
	Plan        string            `json:"plan"`
	Email       string            `json:"email"`
	Attribution map[string]string `json:"attribution"`
}

type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type BillingPortalRequest struct {
	CustomerID string `json:"customer_id"`
}

type BillingPortalResponse struct {
	URL string `json:"url"`
}

type ConfigResponse struct {
	PublishableKey string `json:"publishable_key"`
	YearlyPriceID  string `json:"yearly_price_id"`
	MonthlyPriceID string `json:"monthly_price_id"`
}

type PlanDetail struct {
	Plan     string `json:"plan"`
	PriceID  string `json:"price_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}

type ProductsResponse struct {
	Plans []PlanDetail `json:"plans"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
