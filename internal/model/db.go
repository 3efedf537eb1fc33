package model

import "time"

// WebhookEventLog records every verified, non-ignored webhook delivery for
// operator visibility. It is observational only: redelivered events are
// recorded with Duplicate=true and still processed, so redelivery of a
// purchase event still produces a second draft order.
type WebhookEventLog struct {
	ID             string `gorm:"primaryKey;size:36"`
	EventID        string `gorm:"size:128;index;not null"`
	EventType      string `gorm:"size:64;index"`
	Classification string `gorm:"size:32"`
	Outcome        string `gorm:"size:255"`
	Duplicate      bool
	CreatedAt      time.Time
}
