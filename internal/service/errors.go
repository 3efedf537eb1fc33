package service

import "errors"

// Failures in the primary chain (verify → classify → map → create-draft)
// are fatal to the request so Stripe's retry mechanism redelivers. Failures
// after the draft exists (complete, sync) are logged and never surfaced.
var (
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrUnreadableBody     = errors.New("unreadable webhook payload")
	ErrSecretUnconfigured = errors.New("webhook signing secret not configured")
	ErrUpstreamFetch      = errors.New("stripe fetch failed")
	ErrDraftCreateFailed  = errors.New("draft order create failed")
)
