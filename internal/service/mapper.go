package service

import (
	"fmt"
	"strconv"
	"strings"

	"membership-checkout-bridge/internal/model"
)

// Fixed line-item titles for the free-text fallback. Exactly one of the
// four is ever used per order.
const (
	titleYearlyTrial  = "Platinum Membership Yearly Trial"
	titleMonthlyTrial = "Platinum Membership Monthly Trial"
	titleYearlyPaid   = "Platinum Membership Yearly"
	titleMonthlyPaid  = "Platinum Membership Monthly (after trial)"
)

// attributionKeys is the allow-list of marketing-attribution metadata
// propagated from checkout to the order.
var attributionKeys = []string{
	"utm_source",
	"utm_medium",
	"utm_campaign",
	"utm_term",
	"utm_content",
	"referrer",
}

// CatalogRef points at the commerce-backend product configuration for a
// plan. Nil means no mapping is configured and lines fall back to free text.
type CatalogRef struct {
	ProductID int64
	VariantID int64
}

// NoteInput collects the facts that end up in the order note and its
// structured attributes.
type NoteInput struct {
	SessionID      string
	InvoiceID      string
	SubscriptionID string
	Plan           model.PlanSelection
	Catalog        *CatalogRef
	Attribution    map[string]string
	Recurring      bool
}

type LineItemMapper interface {
	MapLineItems(plan model.PlanSelection, amountFormatted string, catalog *CatalogRef) []model.LineItem
	BuildNote(in NoteInput) (string, []model.NoteAttribute)
}

type lineItemMapperImpl struct{}

func NewLineItemMapper() LineItemMapper {
	return &lineItemMapperImpl{}
}

// MapLineItems picks the order line for a charge. Paid charges with a
// configured catalog mapping use a catalog line whose price override equals
// the charged amount. Trials always use a free-text line: a bare variant
// reference would bill the catalog list price over a zero-amount trial.
func (m *lineItemMapperImpl) MapLineItems(plan model.PlanSelection, amountFormatted string, catalog *CatalogRef) []model.LineItem {
	isTrial := amountFormatted == "0.00"

	if !isTrial && catalog != nil && catalog.VariantID != 0 {
		return []model.LineItem{
			model.CatalogLine{
				VariantID:     catalog.VariantID,
				Quantity:      1,
				PriceOverride: amountFormatted,
			},
		}
	}

	return []model.LineItem{
		model.CustomLine{
			Title:    lineTitle(plan, isTrial),
			Quantity: 1,
			Price:    amountFormatted,
		},
	}
}

func lineTitle(plan model.PlanSelection, isTrial bool) string {
	switch {
	case isTrial && plan == model.PlanMonthly:
		return titleMonthlyTrial
	case isTrial:
		return titleYearlyTrial
	case plan == model.PlanMonthly:
		return titleMonthlyPaid
	default:
		return titleYearlyPaid
	}
}

// BuildNote produces the operator-readable order note and the structured
// note attributes. The Stripe identifier(s) and plan are always present;
// attribution fields are included only when non-blank after trimming.
func (m *lineItemMapperImpl) BuildNote(in NoteInput) (string, []model.NoteAttribute) {
	attrs := make([]model.NoteAttribute, 0, 12)
	seen := make(map[string]bool)

	add := func(key, value string) {
		value = strings.TrimSpace(value)
		if value == "" || seen[key] {
			return
		}
		seen[key] = true
		attrs = append(attrs, model.NoteAttribute{Key: key, Value: value})
	}

	if in.SessionID != "" {
		add("stripe_session_id", in.SessionID)
	}
	if in.InvoiceID != "" {
		add("stripe_invoice_id", in.InvoiceID)
	}
	if in.SubscriptionID != "" {
		add("stripe_subscription_id", in.SubscriptionID)
	}
	add("plan", string(in.Plan))
	if in.Recurring {
		add("order_type", "recurring")
	}
	if in.Catalog != nil {
		if in.Catalog.ProductID != 0 {
			add("product_id", strconv.FormatInt(in.Catalog.ProductID, 10))
		}
		if in.Catalog.VariantID != 0 {
			add("variant_id", strconv.FormatInt(in.Catalog.VariantID, 10))
		}
	}
	for _, key := range attributionKeys {
		add(key, in.Attribution[key])
	}

	var note strings.Builder
	note.WriteString(fmt.Sprintf("Platinum Membership %s purchase via Stripe", in.Plan))
	if in.Recurring {
		note.WriteString(fmt.Sprintf(" (recurring charge, invoice %s, subscription %s)", in.InvoiceID, in.SubscriptionID))
	} else if in.SessionID != "" {
		note.WriteString(fmt.Sprintf(" (checkout session %s)", in.SessionID))
	}
	if src := strings.TrimSpace(in.Attribution["utm_source"]); src != "" {
		note.WriteString(fmt.Sprintf(", attributed to %s", src))
	}
	note.WriteString(".")

	return note.String(), attrs
}
