package service

import (
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// SignatureVerifier proves an inbound payload originated from Stripe.
// It must be fed the exact bytes received on the wire: a parse/re-encode
// round trip can reorder keys or change whitespace and break the HMAC.
type SignatureVerifier interface {
	Verify(payload []byte, signatureHeader string) (stripe.Event, error)
}

type stripeSignatureVerifier struct {
	secret string
}

func NewSignatureVerifier(webhookSecret string) SignatureVerifier {
	return &stripeSignatureVerifier{secret: webhookSecret}
}

func (v *stripeSignatureVerifier) Verify(payload []byte, signatureHeader string) (stripe.Event, error) {
	if v.secret == "" {
		// Deployment misconfiguration, not a forged request.
		return stripe.Event{}, ErrSecretUnconfigured
	}
	if signatureHeader == "" {
		return stripe.Event{}, fmt.Errorf("%w: missing Stripe-Signature header", ErrInvalidSignature)
	}

	// The endpoint's API version is configured on the Stripe account, not
	// here; a mismatch with the SDK's pinned version is not a forgery
	// signal, so only the HMAC outcome decides validity.
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}
