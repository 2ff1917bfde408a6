package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/parkpass/ticketing/internal/model"
)

// SaleRow is one paid booking inside a report window.
type SaleRow struct {
	CreatedAt   time.Time
	TotalAmount int64
}

// VisitRow sums the visitors holding non-cancelled bookings for one date.
type VisitRow struct {
	VisitDate time.Time
	Adults    int64
	Children  int64
}

type ParkVisitors struct {
	ParkID   uuid.UUID
	Visitors int64
}

// ReportRepository reads the aggregates behind the admin reports. A nil
// parkIDs means every park; an empty non-nil slice matches nothing.
type ReportRepository interface {
	// SalesBetween lists completed payments booked in [from, to).
	SalesBetween(ctx context.Context, parkIDs []uuid.UUID, from, to time.Time) ([]SaleRow, error)
	// VisitorsBetween groups visitors by visit date in [from, to), both UTC midnights.
	VisitorsBetween(ctx context.Context, parkIDs []uuid.UUID, from, to time.Time) ([]VisitRow, error)
	// VisitorsByPark ranks parks by visitors, most visited first.
	VisitorsByPark(ctx context.Context, parkIDs []uuid.UUID) ([]ParkVisitors, error)
}

func (r *GormBookingRepository) scoped(ctx context.Context, parkIDs []uuid.UUID) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.Booking{})
	if parkIDs != nil {
		q = q.Where("park_id IN ?", parkIDs)
	}
	return q
}

func (r *GormBookingRepository) SalesBetween(
	ctx context.Context,
	parkIDs []uuid.UUID,
	from, to time.Time,
) ([]SaleRow, error) {
	rows := []SaleRow{}
	if parkIDs != nil && len(parkIDs) == 0 {
		return rows, nil
	}
	err := r.scoped(ctx, parkIDs).
		Select("created_at, total_amount").
		Where("payment_status = ? AND created_at >= ? AND created_at < ?",
			model.PaymentStatusCompleted, from.UTC(), to.UTC()).
		Order("created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("sum sales", err, nil)
	}
	return rows, nil
}

func (r *GormBookingRepository) VisitorsBetween(
	ctx context.Context,
	parkIDs []uuid.UUID,
	from, to time.Time,
) ([]VisitRow, error) {
	rows := []VisitRow{}
	if parkIDs != nil && len(parkIDs) == 0 {
		return rows, nil
	}
	err := r.scoped(ctx, parkIDs).
		Select("visit_date, SUM(adults) AS adults, SUM(children) AS children").
		Where("status <> ? AND visit_date >= ? AND visit_date < ?",
			model.TicketStatusCancelled, datatypes.Date(from), datatypes.Date(to)).
		Group("visit_date").
		Order("visit_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("sum visitors", err, nil)
	}
	return rows, nil
}

func (r *GormBookingRepository) VisitorsByPark(ctx context.Context, parkIDs []uuid.UUID) ([]ParkVisitors, error) {
	rows := []ParkVisitors{}
	if parkIDs != nil && len(parkIDs) == 0 {
		return rows, nil
	}
	err := r.scoped(ctx, parkIDs).
		Select("park_id, SUM(adults + children) AS visitors").
		Where("status <> ?", model.TicketStatusCancelled).
		Group("park_id").
		Order("visitors DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, translate("rank parks", err, nil)
	}
	return rows, nil
}
