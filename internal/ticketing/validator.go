package ticketing

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parkpass/ticketing/internal/model"
)

// DateLayout is the wire format of a visit date.
const DateLayout = "2006-01-02"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ParkStore resolves park references.
// Implementations return ErrParkNotFound for unknown ids.
type ParkStore interface {
	GetPark(ctx context.Context, id uuid.UUID) (*model.Park, error)
}

// BookingCounter reports how many visitors already hold active bookings
// for a park on a date.
type BookingCounter interface {
	CountActiveBookings(ctx context.Context, parkID uuid.UUID, visitDate time.Time) (int, error)
}

// BookingRequest is a visitor's booking as submitted.
type BookingRequest struct {
	ParkID       uuid.UUID
	VisitDate    string
	VisitorName  string
	VisitorEmail string
	VisitorPhone string
	Adults       int
	Children     int
}

// ValidatedBooking carries what validation resolved, so callers don't look it up twice.
type ValidatedBooking struct {
	Park      *model.Park
	VisitDate time.Time
}

// ValidateBookingRequest runs the checks in order and returns the first failure:
// park, visit date, email, visitor name, party size, capacity.
// today is the current calendar date in the park's locale, expressed as UTC midnight.
func ValidateBookingRequest(
	ctx context.Context,
	parks ParkStore,
	counter BookingCounter,
	today time.Time,
	req BookingRequest,
) (*ValidatedBooking, error) {
	if req.ParkID == uuid.Nil {
		return nil, fieldErr("parkId", ErrParkUnavailable, "park is required")
	}
	park, err := parks.GetPark(ctx, req.ParkID)
	if err != nil {
		if errors.Is(err, ErrParkNotFound) {
			return nil, fieldErr("parkId", ErrParkUnavailable, "park not found")
		}
		return nil, WrapStore("get park", err)
	}
	if !park.IsActive {
		return nil, fieldErr("parkId", ErrParkUnavailable, "park is not active")
	}

	visitDate, err := ParseVisitDate(req.VisitDate)
	if err != nil {
		return nil, err
	}
	if visitDate.Before(today) {
		return nil, fieldErr("visitDate", ErrInvalidVisitDate, "date is in the past")
	}

	if !emailPattern.MatchString(strings.TrimSpace(req.VisitorEmail)) {
		return nil, fieldErr("visitorEmail", ErrInvalidEmail, "")
	}
	if strings.TrimSpace(req.VisitorName) == "" {
		return nil, fieldErr("visitorName", ErrMissingField, "")
	}

	if err := CheckPartySize(req.Adults, req.Children); err != nil {
		return nil, err
	}

	booked, err := counter.CountActiveBookings(ctx, park.ID, visitDate)
	if err != nil {
		return nil, WrapStore("count active bookings", err)
	}
	if !fits(park.Capacity, booked, req.Adults, req.Children) {
		return nil, fieldErr("partySize", ErrCapacityExceeded, "not enough places left for this date")
	}

	return &ValidatedBooking{Park: park, VisitDate: visitDate}, nil
}

// fits reports whether adults+children more visitors fit next to booked.
// Counts are compared against what is left so no sum can wrap.
func fits(capacity, booked, adults, children int) bool {
	left := capacity - booked
	if booked < 0 || left < 0 {
		return false
	}
	if adults > left {
		return false
	}
	return children <= left-adults
}

// ParseVisitDate parses a YYYY-MM-DD date into UTC midnight.
func ParseVisitDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fieldErr("visitDate", ErrInvalidVisitDate, "date is required")
	}
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fieldErr("visitDate", ErrInvalidVisitDate, "expected YYYY-MM-DD")
	}
	return d, nil
}

// CalendarDate returns the calendar date of t as seen in loc, as UTC midnight.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
