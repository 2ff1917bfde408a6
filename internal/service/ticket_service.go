package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/pagination"
	"github.com/parkpass/ticketing/internal/repository"
	"github.com/parkpass/ticketing/internal/ticketing"
)

// maxTicketNoAttempts bounds the retries on a ticket number collision.
const maxTicketNoAttempts = 5

// TicketService runs the booking and ticket lifecycle on top of the stores.
type TicketService struct {
	parks    repository.ParkRepository
	bookings repository.BookingRepository
	events   repository.EventRepository

	log       *logrus.Logger
	now       func() time.Time
	loc       *time.Location
	ticketNos func() (string, error)
}

func NewTicketService(
	parks repository.ParkRepository,
	bookings repository.BookingRepository,
	events repository.EventRepository,
	log *logrus.Logger,
	loc *time.Location,
) *TicketService {
	if loc == nil {
		loc = time.UTC
	}
	return &TicketService{
		parks:    parks,
		bookings: bookings,
		events:   events,
		log:       log,
		now:       time.Now,
		loc:       loc,
		ticketNos: ticketing.NewTicketNo,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *TicketService) WithClock(now func() time.Time) *TicketService {
	s.now = now
	return s
}

// WithTicketNoSource replaces the ticket number generator, for tests.
func (s *TicketService) WithTicketNoSource(next func() (string, error)) *TicketService {
	s.ticketNos = next
	return s
}

// Today is the current calendar date in the parks' timezone, as UTC midnight.
func (s *TicketService) Today() time.Time {
	return ticketing.CalendarDate(s.now(), s.loc)
}

// CreateBooking validates req, prices it and stores a new active, unpaid
// booking with a fresh ticket number.
func (s *TicketService) CreateBooking(ctx context.Context, req ticketing.BookingRequest) (*model.Booking, error) {
	v, err := ticketing.ValidateBookingRequest(ctx, s.parks, s.bookings, s.Today(), req)
	if err != nil {
		return nil, err
	}

	total, err := ticketing.ComputeTotal(v.Park, req.Adults, req.Children)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	for attempt := 1; ; attempt++ {
		no, err := s.uniqueTicketNo(ctx)
		if err != nil {
			return nil, err
		}
		booking = &model.Booking{
			TicketNo:      no,
			ParkID:        v.Park.ID,
			VisitDate:     dateOf(v.VisitDate),
			VisitorName:   trim(req.VisitorName),
			VisitorEmail:  trim(req.VisitorEmail),
			VisitorPhone:  trim(req.VisitorPhone),
			Adults:        req.Adults,
			Children:      req.Children,
			TotalAmount:   total,
			Status:        model.TicketStatusActive,
			PaymentStatus: model.PaymentStatusPending,
		}
		err = s.bookings.CreateBooking(ctx, booking)
		if err == nil {
			break
		}
		if errors.Is(err, ticketing.ErrDuplicateTicketNo) && attempt < maxTicketNoAttempts {
			s.log.WithField("attempt", attempt).Warn("ticket number collision, retrying")
			continue
		}
		return nil, err
	}
	booking.Park = v.Park

	s.record(ctx, booking, model.EventTypeBookingCreated, nil, fmt.Sprintf("total=%d", total))
	s.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"ticket_no":  booking.TicketNo,
		"park_id":    booking.ParkID,
		"visit_date": v.VisitDate.Format(ticketing.DateLayout),
		"visitors":   booking.Visitors(),
		"total":      total,
	}).Info("booking created")

	return booking, nil
}

// Quote is a price preview.
type Quote struct {
	ParkID     uuid.UUID `json:"parkId"`
	Adults     int       `json:"adults"`
	Children   int       `json:"children"`
	AdultPrice int64     `json:"adultPrice"`
	ChildPrice int64     `json:"childPrice"`
	Total      int64     `json:"totalAmount"`
	Currency   string    `json:"currency"`
}

// PreviewPrice prices a party without booking anything. It goes through
// ComputeTotal, so previews and stored totals never disagree.
func (s *TicketService) PreviewPrice(ctx context.Context, parkID uuid.UUID, adults, children int) (*Quote, error) {
	park, err := s.parks.GetPark(ctx, parkID)
	if err != nil {
		return nil, err
	}
	if !park.IsActive {
		return nil, &ticketing.FieldError{Field: "parkId", Err: ticketing.ErrParkUnavailable, Detail: "park is not active"}
	}
	total, err := ticketing.ComputeTotal(park, adults, children)
	if err != nil {
		return nil, err
	}
	return &Quote{
		ParkID:     park.ID,
		Adults:     adults,
		Children:   children,
		AdultPrice: park.AdultPrice,
		ChildPrice: park.ChildPrice,
		Total:      total,
		Currency:   ticketing.Currency,
	}, nil
}

// GetBooking is the visitor-facing lookup used on the confirmation page.
func (s *TicketService) GetBooking(ctx context.Context, ref string) (*model.Booking, error) {
	return s.bookings.FindBooking(ctx, ref)
}

// RecordPayment applies the payment outcome to a booking. A completed payment
// guarantees the ticket number is present afterwards.
func (s *TicketService) RecordPayment(ctx context.Context, ref string, res ticketing.PaymentResult) (*model.Booking, error) {
	b, err := s.bookings.FindBooking(ctx, ref)
	if err != nil {
		return nil, err
	}

	var updated *model.Booking
	for attempt := 1; ; attempt++ {
		t, err := ticketing.RecordPayment(b, res, func() (string, error) { return s.uniqueTicketNo(ctx) })
		if err != nil {
			return nil, err
		}
		updated, err = s.bookings.UpdatePayment(ctx, b.ID, t.From, t.Fields)
		if err == nil {
			break
		}
		if errors.Is(err, ticketing.ErrDuplicateTicketNo) && attempt < maxTicketNoAttempts {
			continue
		}
		if errors.Is(err, ticketing.ErrConflict) {
			return nil, s.explainConflict(ctx, b.ID, ticketing.EventRecordPayment)
		}
		return nil, err
	}

	s.record(ctx, updated, model.EventTypePaymentRecorded, nil,
		fmt.Sprintf("status=%s method=%s", res.Status, res.Method))
	s.log.WithFields(logrus.Fields{
		"booking_id":     updated.ID,
		"ticket_no":      updated.TicketNo,
		"payment_status": updated.PaymentStatus,
	}).Info("payment recorded")

	return updated, nil
}

// MarkTicketUsed redeems a ticket at the gate. The status change is a
// conditional update, so of two concurrent scans exactly one succeeds.
func (s *TicketService) MarkTicketUsed(ctx context.Context, actor ticketing.Actor, ref string) (*model.Booking, error) {
	b, err := s.authorizedTicket(ctx, actor, ref, ticketing.ActionMarkUsed)
	if err != nil {
		return nil, err
	}

	t, err := ticketing.MarkUsed(b, s.now().UTC())
	if err != nil {
		return nil, err
	}

	updated, err := s.bookings.UpdateStatus(ctx, b.ID, t.From, t.To, t.Fields)
	if err != nil {
		if errors.Is(err, ticketing.ErrConflict) {
			return nil, s.explainConflict(ctx, b.ID, ticketing.EventMarkUsed)
		}
		return nil, err
	}

	s.record(ctx, updated, model.EventTypeTicketUsed, &actor, "")
	s.log.WithFields(logrus.Fields{
		"ticket_no": updated.TicketNo,
		"park_id":   updated.ParkID,
		"actor_id":  actor.UserID,
	}).Info("ticket used")

	return updated, nil
}

// CancelTicket cancels an active ticket. Cancelling a cancelled ticket
// returns it unchanged.
func (s *TicketService) CancelTicket(ctx context.Context, actor ticketing.Actor, ref string) (*model.Booking, error) {
	b, err := s.authorizedTicket(ctx, actor, ref, ticketing.ActionCancel)
	if err != nil {
		return nil, err
	}

	t, noop, err := ticketing.Cancel(b)
	if err != nil {
		return nil, err
	}
	if noop {
		return b, nil
	}

	updated, err := s.bookings.UpdateStatus(ctx, b.ID, t.From, t.To, t.Fields)
	if err != nil {
		if !errors.Is(err, ticketing.ErrConflict) {
			return nil, err
		}
		if err := s.explainConflict(ctx, b.ID, ticketing.EventCancel); err != nil {
			return nil, err
		}
		// someone else cancelled it first
		return s.bookings.FindBooking(ctx, b.ID.String())
	}

	s.record(ctx, updated, model.EventTypeTicketCancelled, &actor, "")
	s.log.WithFields(logrus.Fields{
		"ticket_no": updated.TicketNo,
		"park_id":   updated.ParkID,
		"actor_id":  actor.UserID,
	}).Info("ticket cancelled")

	return updated, nil
}

// DeleteTicket hard-deletes a ticket in any status.
func (s *TicketService) DeleteTicket(ctx context.Context, actor ticketing.Actor, ref string) error {
	b, err := s.authorizedTicket(ctx, actor, ref, ticketing.ActionDelete)
	if err != nil {
		return err
	}
	if err := s.bookings.DeleteBooking(ctx, b.ID); err != nil {
		return err
	}

	s.record(ctx, b, model.EventTypeTicketDeleted, &actor, fmt.Sprintf("status=%s", b.Status))
	s.log.WithFields(logrus.Fields{
		"ticket_no": b.TicketNo,
		"park_id":   b.ParkID,
		"actor_id":  actor.UserID,
	}).Info("ticket deleted")

	return nil
}

// GetTicket returns a ticket the actor may view.
func (s *TicketService) GetTicket(ctx context.Context, actor ticketing.Actor, ref string) (*model.Booking, error) {
	return s.authorizedTicket(ctx, actor, ref, ticketing.ActionView)
}

// TicketHistory returns the audit trail of a ticket the actor may view.
func (s *TicketService) TicketHistory(ctx context.Context, actor ticketing.Actor, ref string) ([]model.TicketEvent, error) {
	b, err := s.authorizedTicket(ctx, actor, ref, ticketing.ActionView)
	if err != nil {
		return nil, err
	}
	return s.events.ListByBooking(ctx, b.ID)
}

// MarkPrinted and MarkDownloaded only flip presentation flags; they are
// allowed in every status.
func (s *TicketService) MarkPrinted(ctx context.Context, ref string) error {
	b, err := s.bookings.FindBooking(ctx, ref)
	if err != nil {
		return err
	}
	return s.bookings.MarkPrinted(ctx, b.ID)
}

func (s *TicketService) MarkDownloaded(ctx context.Context, ref string) error {
	b, err := s.bookings.FindBooking(ctx, ref)
	if err != nil {
		return err
	}
	return s.bookings.MarkDownloaded(ctx, b.ID)
}

// TicketQuery filters an admin ticket listing.
type TicketQuery struct {
	ParkID        *uuid.UUID
	Status        model.TicketStatus
	PaymentStatus model.PaymentStatus
	VisitDate     *time.Time
	Search        string
}

// ListTickets pages through the tickets of the parks the actor may view.
func (s *TicketService) ListTickets(
	ctx context.Context,
	actor ticketing.Actor,
	q TicketQuery,
	page, size int,
) (pagination.Page[model.Booking], error) {
	if !actor.Role.Valid() {
		return pagination.Page[model.Booking]{}, ticketing.ErrWrongRole
	}

	filter := repository.BookingFilter{
		ParkIDs:       ticketing.ParkScope(actor),
		Status:        q.Status,
		PaymentStatus: q.PaymentStatus,
		VisitDate:     q.VisitDate,
		Search:        q.Search,
	}
	if q.ParkID != nil {
		if err := ticketing.AuthorizePark(actor, *q.ParkID, ticketing.ActionView); err != nil {
			return pagination.Page[model.Booking]{}, err
		}
		filter.ParkIDs = []uuid.UUID{*q.ParkID}
	}

	page, size, offset := pagination.Normalize(page, size)
	items, total, err := s.bookings.List(ctx, filter, size, offset)
	if err != nil {
		return pagination.Page[model.Booking]{}, err
	}
	return pagination.New(items, page, size, total), nil
}

// uniqueTicketNo draws ticket numbers until one is not taken yet. The unique
// index still catches a number claimed between this check and the write.
func (s *TicketService) uniqueTicketNo(ctx context.Context) (string, error) {
	for attempt := 1; attempt <= maxTicketNoAttempts; attempt++ {
		no, err := s.ticketNos()
		if err != nil {
			return "", err
		}
		taken, err := s.bookings.TicketNoExists(ctx, no)
		if err != nil {
			return "", err
		}
		if !taken {
			return no, nil
		}
		s.log.WithField("attempt", attempt).Warn("ticket number already taken, drawing another")
	}
	return "", ticketing.ErrDuplicateTicketNo
}

// authorizedTicket loads a ticket and runs the guard before anything else
// touches it.
func (s *TicketService) authorizedTicket(
	ctx context.Context,
	actor ticketing.Actor,
	ref string,
	action ticketing.Action,
) (*model.Booking, error) {
	b, err := s.bookings.FindBooking(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := ticketing.Authorize(actor, b, action); err != nil {
		s.log.WithFields(logrus.Fields{
			"ticket_no": b.TicketNo,
			"action":    action,
			"actor_id":  actor.UserID,
			"role":      actor.Role,
		}).Warn("ticket action denied")
		return nil, err
	}
	return b, nil
}

// explainConflict re-reads a ticket after a lost conditional update.
func (s *TicketService) explainConflict(ctx context.Context, id uuid.UUID, ev ticketing.Event) error {
	current, err := s.bookings.FindBooking(ctx, id.String())
	if err != nil {
		return err
	}
	return ticketing.ExplainConflict(current, ev)
}

// record writes an audit event. A failure is logged, never returned: the
// ticket mutation has already been committed.
func (s *TicketService) record(
	ctx context.Context,
	b *model.Booking,
	eventType model.EventType,
	actor *ticketing.Actor,
	details string,
) {
	ev := &model.TicketEvent{
		EventType: eventType,
		BookingID: b.ID,
		TicketNo:  b.TicketNo,
		ParkID:    b.ParkID,
		Details:   details,
	}
	if actor != nil {
		id := actor.UserID
		ev.ActorID = &id
		ev.ActorRole = string(actor.Role)
	}
	if err := s.events.Record(ctx, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": b.ID,
			"event":      eventType,
		}).Warn("failed to record ticket event")
	}
}
