package ticketing

import (
	"errors"
	"fmt"
)

// Business errors. Callers compare with errors.Is; the transport layer owns
// the wording shown to users.
var (
	ErrParkUnavailable           = errors.New("park unavailable")
	ErrInvalidVisitDate          = errors.New("invalid visit date")
	ErrInvalidEmail              = errors.New("invalid email")
	ErrInvalidPartySize          = errors.New("invalid party size")
	ErrInvalidPriceConfiguration = errors.New("invalid price configuration")
	ErrCapacityExceeded          = errors.New("capacity exceeded")
	ErrMissingField              = errors.New("required field missing")
	ErrFieldTooLong              = errors.New("field too long")
	ErrInvalidPeriod             = errors.New("invalid report period")

	ErrTicketNotFound          = errors.New("ticket not found")
	ErrAlreadyUsed             = errors.New("ticket already used")
	ErrTicketCancelled         = errors.New("ticket cancelled")
	ErrCannotCancelUsedTicket  = errors.New("cannot cancel used ticket")
	ErrPaymentAlreadyCompleted = errors.New("payment already completed")
	ErrInvalidPaymentStatus    = errors.New("invalid payment status")
	ErrConflict                = errors.New("concurrent update conflict")
	ErrDuplicateTicketNo       = errors.New("duplicate ticket number")

	ErrPermissionDenied = errors.New("permission denied")
	ErrWrongPark        = fmt.Errorf("%w: ticket belongs to a different park", ErrPermissionDenied)
	ErrWrongRole        = fmt.Errorf("%w: role not allowed", ErrPermissionDenied)

	ErrParkNotFound     = errors.New("park not found")
	ErrDistrictNotFound = errors.New("district not found")
	ErrDistrictHasParks = errors.New("district still has parks")
	ErrParkHasBookings  = errors.New("park still has bookings")
	ErrInvalidCapacity  = errors.New("invalid capacity")
)

// FieldError names the request field that failed a check.
type FieldError struct {
	Field  string
	Err    error
	Detail string
}

func (e *FieldError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Detail)
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(field string, err error, detail string) error {
	return &FieldError{Field: field, Err: err, Detail: detail}
}

// StoreError is an infrastructure failure of a collaborator (timeout, driver
// error). It is never one of the business errors above.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// WrapStore wraps err as a StoreError unless it already carries a business error.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsBusiness(err) {
		return err
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

var businessErrors = []error{
	ErrParkUnavailable, ErrInvalidVisitDate, ErrInvalidEmail, ErrInvalidPartySize,
	ErrInvalidPriceConfiguration, ErrCapacityExceeded, ErrMissingField, ErrFieldTooLong, ErrInvalidPeriod,
	ErrTicketNotFound, ErrAlreadyUsed, ErrTicketCancelled, ErrCannotCancelUsedTicket,
	ErrPaymentAlreadyCompleted, ErrInvalidPaymentStatus, ErrConflict, ErrDuplicateTicketNo,
	ErrPermissionDenied, ErrParkNotFound, ErrDistrictNotFound, ErrDistrictHasParks,
	ErrParkHasBookings, ErrInvalidCapacity,
}

// IsBusiness reports whether err belongs to the business taxonomy.
func IsBusiness(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
