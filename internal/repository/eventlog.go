package repository

import (
	"context"
	"time"

	"membership-checkout-bridge/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventLogRepository records processed webhook deliveries. It is an
// operator-facing log, not a dedup store: Seen only marks redeliveries in
// the log entry, it never suppresses processing.
type EventLogRepository interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Record(ctx context.Context, eventID, eventType, classification, outcome string, duplicate bool) error
}

type eventLogRepositoryImpl struct {
	db *gorm.DB
}

func NewEventLogRepository(db *gorm.DB) EventLogRepository {
	return &eventLogRepositoryImpl{db: db}
}

func (r *eventLogRepositoryImpl) Seen(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.WebhookEventLog{}).
		Where("event_id = ?", eventID).
		Count(&count).Error

	return count > 0, err
}

func (r *eventLogRepositoryImpl) Record(ctx context.Context, eventID, eventType, classification, outcome string, duplicate bool) error {
	return r.db.WithContext(ctx).Create(&model.WebhookEventLog{
		ID:             uuid.NewString(),
		EventID:        eventID,
		EventType:      eventType,
		Classification: classification,
		Outcome:        outcome,
		Duplicate:      duplicate,
		CreatedAt:      time.Now(),
	}).Error
}
