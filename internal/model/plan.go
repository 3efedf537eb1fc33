package model

import "github.com/shopspring/decimal"

// PlanSelection identifies which membership plan a purchase belongs to.
// It is attached as Stripe metadata at checkout-session creation and echoed
// back on every later event for that subscription.
type PlanSelection string

const (
	PlanYearly  PlanSelection = "yearly"
	PlanMonthly PlanSelection = "monthly"
)

// ParsePlan resolves the plan carried in processor metadata. Missing or
// unrecognized values fall back to yearly; a purchase event must always
// resolve to exactly one plan.
func ParsePlan(raw string) PlanSelection {
	switch raw {
	case string(PlanMonthly):
		return PlanMonthly
	default:
		return PlanYearly
	}
}

// ChargeOutcome is derived from a verified purchase event, never stored.
type ChargeOutcome struct {
	Plan            PlanSelection
	AmountFormatted string
	IsTrial         bool
	CurrencyCode    string
}

// FormatAmount converts a smallest-currency-unit amount into a fixed
// two-decimal string. Integer decimal math only; float display formatting
// can round 0.1+0.2 style amounts incorrectly.
func FormatAmount(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// NewChargeOutcome derives the charge outcome for a purchase event.
// A zero amount marks the charge as a trial.
func NewChargeOutcome(planMeta string, amountCents int64, currency string) ChargeOutcome {
	amount := FormatAmount(amountCents)
	return ChargeOutcome{
		Plan:            ParsePlan(planMeta),
		AmountFormatted: amount,
		IsTrial:         amount == "0.00",
		CurrencyCode:    currency,
	}
}
