package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Redemption status of a ticket.
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// Payment status, independent of TicketStatus.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return true
	}
	return false
}

// bookings
//
// One row is both the booking (before payment) and the ticket (after).
// TotalAmount and CreatedAt are write-once.
type Booking struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	TicketNo string    `gorm:"type:varchar(8);index:idx_bookings_ticket_no,unique,where:ticket_no <> ''"`

	ParkID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_bookings_park_date,priority:1"`
	VisitDate datatypes.Date `gorm:"not null;index:idx_bookings_park_date,priority:2"`

	VisitorName  string `gorm:"type:varchar(255);not null"`
	VisitorEmail string `gorm:"type:varchar(255);not null;index"`
	VisitorPhone string `gorm:"type:varchar(32)"`

	Adults      int   `gorm:"not null"`
	Children    int   `gorm:"not null"`
	TotalAmount int64 `gorm:"not null;<-:create"`

	Status        TicketStatus  `gorm:"type:varchar(16);not null;default:'active';index"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(16);not null;default:'pending'"`
	PaymentID     string        `gorm:"type:varchar(64)"`
	PaymentMethod string        `gorm:"type:varchar(32)"`

	UsedAt       *time.Time
	IsDownloaded bool `gorm:"not null;default:false"`
	IsPrinted    bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;<-:create"`
	UpdatedAt time.Time `gorm:"not null"`

	Park *Park `gorm:"foreignKey:ParkID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Visitors is the party size.
func (b *Booking) Visitors() int {
	return b.Adults + b.Children
}
