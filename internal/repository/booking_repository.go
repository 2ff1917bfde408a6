package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/ticketing"
)

// BookingFilter narrows admin listings. A nil ParkIDs means every park; an
// empty non-nil slice matches nothing.
type BookingFilter struct {
	ParkIDs       []uuid.UUID
	Status        model.TicketStatus
	PaymentStatus model.PaymentStatus
	VisitDate     *time.Time
	Search        string // ticket number, visitor email or name
}

type BookingRepository interface {
	ticketing.BookingCounter

	CreateBooking(ctx context.Context, booking *model.Booking) error
	// FindBooking resolves an internal id or a ticket number.
	FindBooking(ctx context.Context, ref string) (*model.Booking, error)
	TicketNoExists(ctx context.Context, ticketNo string) (bool, error)
	// Conditional update: applies only while status == expected.
	// Returns ticketing.ErrConflict when the row no longer matches.
	UpdateStatus(
		ctx context.Context,
		id uuid.UUID,
		expected, next model.TicketStatus,
		fields map[string]any,
	) (*model.Booking, error)
	// UpdatePayment is UpdateStatus that additionally requires the payment
	// not to be completed yet.
	UpdatePayment(
		ctx context.Context,
		id uuid.UUID,
		expected model.TicketStatus,
		fields map[string]any,
	) (*model.Booking, error)
	DeleteBooking(ctx context.Context, id uuid.UUID) error
	MarkPrinted(ctx context.Context, id uuid.UUID) error
	MarkDownloaded(ctx context.Context, id uuid.UUID) error
	CountByPark(ctx context.Context, parkID uuid.UUID) (int64, error)
	List(ctx context.Context, filter BookingFilter, limit, offset int) ([]model.Booking, int64, error)
}

type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) CreateBooking(ctx context.Context, booking *model.Booking) error {
	err := r.db.WithContext(ctx).Omit("Park").Create(booking).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ticketing.ErrDuplicateTicketNo
	}
	return translate("create booking", err, nil)
}

func (r *GormBookingRepository) getByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).Preload("Park").First(&b, "id = ?", id).Error; err != nil {
		return nil, translate("get booking", err, ticketing.ErrTicketNotFound)
	}
	return &b, nil
}

func (r *GormBookingRepository) FindBooking(ctx context.Context, ref string) (*model.Booking, error) {
	ref = strings.TrimSpace(ref)
	if id, err := uuid.Parse(ref); err == nil {
		return r.getByID(ctx, id)
	}

	no := ticketing.NormalizeTicketNo(ref)
	if !ticketing.IsTicketNo(no) {
		return nil, ticketing.ErrTicketNotFound
	}
	var b model.Booking
	if err := r.db.WithContext(ctx).Preload("Park").First(&b, "ticket_no = ?", no).Error; err != nil {
		return nil, translate("find booking", err, ticketing.ErrTicketNotFound)
	}
	return &b, nil
}

func (r *GormBookingRepository) TicketNoExists(ctx context.Context, ticketNo string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("ticket_no = ?", ticketNo).
		Count(&n).Error
	if err != nil {
		return false, translate("check ticket number", err, nil)
	}
	return n > 0, nil
}

// CountActiveBookings returns the number of visitors (adults + children)
// holding active bookings for the park on visitDate.
func (r *GormBookingRepository) CountActiveBookings(
	ctx context.Context,
	parkID uuid.UUID,
	visitDate time.Time,
) (int, error) {
	var visitors int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Select("COALESCE(SUM(adults + children), 0)").
		Where("park_id = ? AND visit_date = ? AND status = ?", parkID, datatypes.Date(visitDate), model.TicketStatusActive).
		Scan(&visitors).Error
	if err != nil {
		return 0, translate("count active bookings", err, nil)
	}
	return int(visitors), nil
}

// UpdateStatus is a single UPDATE ... WHERE id = ? AND status = ?, so two gate
// scans racing on the same ticket cannot both win.
func (r *GormBookingRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	expected, next model.TicketStatus,
	fields map[string]any,
) (*model.Booking, error) {
	update := map[string]any{
		"status": next,
	}
	for k, v := range fields {
		update[k] = v
	}

	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(update)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ticketing.ErrDuplicateTicketNo
		}
		return nil, translate("update booking status", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return nil, ticketing.ErrConflict
	}
	return r.getByID(ctx, id)
}

func (r *GormBookingRepository) UpdatePayment(
	ctx context.Context,
	id uuid.UUID,
	expected model.TicketStatus,
	fields map[string]any,
) (*model.Booking, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND status = ? AND payment_status <> ?", id, expected, model.PaymentStatusCompleted).
		Updates(fields)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ticketing.ErrDuplicateTicketNo
		}
		return nil, translate("update booking payment", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return nil, ticketing.ErrConflict
	}
	return r.getByID(ctx, id)
}

func (r *GormBookingRepository) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Booking{}, "id = ?", id)
	if res.Error != nil {
		return translate("delete booking", res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return ticketing.ErrTicketNotFound
	}
	return nil
}

func (r *GormBookingRepository) MarkPrinted(ctx context.Context, id uuid.UUID) error {
	return r.setFlag(ctx, id, "is_printed")
}

func (r *GormBookingRepository) MarkDownloaded(ctx context.Context, id uuid.UUID) error {
	return r.setFlag(ctx, id, "is_downloaded")
}

// setFlag only ever sets a flag to true.
func (r *GormBookingRepository) setFlag(ctx context.Context, id uuid.UUID, column string) error {
	res := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Update(column, true)
	if res.Error != nil {
		return translate("set "+column, res.Error, nil)
	}
	if res.RowsAffected == 0 {
		return ticketing.ErrTicketNotFound
	}
	return nil
}

func (r *GormBookingRepository) CountByPark(ctx context.Context, parkID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("park_id = ?", parkID).
		Count(&n).Error
	return n, translate("count park bookings", err, nil)
}

func (r *GormBookingRepository) List(
	ctx context.Context,
	filter BookingFilter,
	limit, offset int,
) ([]model.Booking, int64, error) {
	var (
		bookings []model.Booking
		total    int64
	)

	if filter.ParkIDs != nil && len(filter.ParkIDs) == 0 {
		return []model.Booking{}, 0, nil
	}

	q := r.db.WithContext(ctx).Model(&model.Booking{})
	if filter.ParkIDs != nil {
		q = q.Where("park_id IN ?", filter.ParkIDs)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.VisitDate != nil {
		q = q.Where("visit_date = ?", datatypes.Date(*filter.VisitDate))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(ticket_no = ? OR LOWER(visitor_email) LIKE ? OR LOWER(visitor_name) LIKE ?)",
			ticketing.NormalizeTicketNo(s), like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate("count bookings", err, nil)
	}

	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Preload("Park").Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, 0, translate("list bookings", err, nil)
	}

	return bookings, total, nil
}
