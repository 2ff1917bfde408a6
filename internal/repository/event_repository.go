package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parkpass/ticketing/internal/model"
)

// EventRepository stores the ticket audit trail.
type EventRepository interface {
	Record(ctx context.Context, event *model.TicketEvent) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.TicketEvent, error)
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Record(ctx context.Context, event *model.TicketEvent) error {
	return translate("record event", r.db.WithContext(ctx).Create(event).Error, nil)
}

func (r *GormEventRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]model.TicketEvent, error) {
	var events []model.TicketEvent
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, translate("list events", err, nil)
	}
	return events, nil
}
