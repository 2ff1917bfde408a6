package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type of an audit event.
type EventType string

const (
	EventTypeBookingCreated  EventType = "booking_created"
	EventTypePaymentRecorded EventType = "payment_recorded"
	EventTypeTicketUsed      EventType = "ticket_used"
	EventTypeTicketCancelled EventType = "ticket_cancelled"
	EventTypeTicketDeleted   EventType = "ticket_deleted"
)

// ticket_events: audit trail of ticket mutations.
//
// BookingID has no foreign key: the trail outlives hard-deleted tickets.
type TicketEvent struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	EventType EventType `gorm:"type:varchar(64);not null;index"`

	BookingID uuid.UUID  `gorm:"type:uuid;not null;index"`
	TicketNo  string     `gorm:"type:varchar(8);index"`
	ParkID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	ActorRole string     `gorm:"type:varchar(32)"`

	Details string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;index"`
}

func (e *TicketEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
