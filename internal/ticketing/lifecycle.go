package ticketing

import (
	"fmt"
	"time"

	"github.com/parkpass/ticketing/internal/model"
)

// Event is a command applied to a ticket.
type Event string

const (
	EventMarkUsed      Event = "mark_used"
	EventCancel        Event = "cancel"
	EventRecordPayment Event = "record_payment"
)

// Delete is not listed: it is allowed from every status and removes the row.
var transitions = map[model.TicketStatus]map[Event]model.TicketStatus{
	model.TicketStatusActive: {
		EventMarkUsed:      model.TicketStatusUsed,
		EventCancel:        model.TicketStatusCancelled,
		EventRecordPayment: model.TicketStatusActive,
	},
	model.TicketStatusUsed:      {},
	model.TicketStatusCancelled: {},
}

// Next returns the status ev leads to from `from`, or the error that blocks it.
func Next(from model.TicketStatus, ev Event) (model.TicketStatus, error) {
	allowed, ok := transitions[from]
	if !ok {
		return "", fmt.Errorf("unknown ticket status %q", from)
	}
	if to, ok := allowed[ev]; ok {
		return to, nil
	}
	return "", blockedBy(from, ev)
}

func blockedBy(from model.TicketStatus, ev Event) error {
	switch from {
	case model.TicketStatusUsed:
		if ev == EventCancel {
			return ErrCannotCancelUsedTicket
		}
		return ErrAlreadyUsed
	case model.TicketStatusCancelled:
		return ErrTicketCancelled
	}
	return fmt.Errorf("event %q not allowed from status %q", ev, from)
}

// IsTerminal reports whether no status transition can leave s.
func IsTerminal(s model.TicketStatus) bool {
	allowed, ok := transitions[s]
	return ok && len(allowed) == 0
}

// Transition is a conditional status update: it applies only while the
// stored status still equals From.
type Transition struct {
	From   model.TicketStatus
	To     model.TicketStatus
	Fields map[string]any
}

// MarkUsed builds the gate-redemption transition for b.
func MarkUsed(b *model.Booking, now time.Time) (Transition, error) {
	to, err := Next(b.Status, EventMarkUsed)
	if err != nil {
		return Transition{}, err
	}
	return Transition{
		From:   b.Status,
		To:     to,
		Fields: map[string]any{"used_at": now},
	}, nil
}

// Cancel builds the cancel transition for b. noop is true when b is already
// cancelled: cancelling twice succeeds without touching the row.
func Cancel(b *model.Booking) (t Transition, noop bool, err error) {
	if b.Status == model.TicketStatusCancelled {
		return Transition{}, true, nil
	}
	to, err := Next(b.Status, EventCancel)
	if err != nil {
		return Transition{}, false, err
	}
	return Transition{From: b.Status, To: to}, false, nil
}

// Column widths of the payment fields.
const (
	MaxPaymentIDLength     = 64
	MaxPaymentMethodLength = 32
)

// PaymentResult is the outcome reported by the payment flow.
type PaymentResult struct {
	Status    model.PaymentStatus
	PaymentID string
	Method    string
}

// RecordPayment builds the payment transition for b. newTicketNo is used only
// when b has no ticket number yet.
func RecordPayment(b *model.Booking, res PaymentResult, newTicketNo func() (string, error)) (Transition, error) {
	to, err := Next(b.Status, EventRecordPayment)
	if err != nil {
		return Transition{}, err
	}
	if !res.Status.Valid() || res.Status == model.PaymentStatusPending {
		return Transition{}, fieldErr("paymentStatus", ErrInvalidPaymentStatus, string(res.Status))
	}
	if b.PaymentStatus == model.PaymentStatusCompleted {
		return Transition{}, ErrPaymentAlreadyCompleted
	}
	if len(res.Method) > MaxPaymentMethodLength {
		return Transition{}, fieldErr("paymentMethod", ErrFieldTooLong, fmt.Sprintf("at most %d characters", MaxPaymentMethodLength))
	}
	if len(res.PaymentID) > MaxPaymentIDLength {
		return Transition{}, fieldErr("paymentId", ErrFieldTooLong, fmt.Sprintf("at most %d characters", MaxPaymentIDLength))
	}

	fields := map[string]any{
		"payment_status": res.Status,
		"payment_method": res.Method,
	}
	if res.Status == model.PaymentStatusCompleted {
		if res.PaymentID == "" {
			return Transition{}, fieldErr("paymentId", ErrMissingField, "")
		}
		fields["payment_id"] = res.PaymentID
		if b.TicketNo == "" {
			no, err := newTicketNo()
			if err != nil {
				return Transition{}, err
			}
			fields["ticket_no"] = no
		}
	}
	return Transition{From: b.Status, To: to, Fields: fields}, nil
}

// ExplainConflict turns a lost conditional update into the precise error for
// the current state of the ticket. A nil error with cancel means the other
// writer already cancelled it.
func ExplainConflict(current *model.Booking, ev Event) error {
	if ev == EventCancel && current.Status == model.TicketStatusCancelled {
		return nil
	}
	if _, err := Next(current.Status, ev); err != nil {
		return err
	}
	if ev == EventRecordPayment && current.PaymentStatus == model.PaymentStatusCompleted {
		return ErrPaymentAlreadyCompleted
	}
	return ErrConflict
}
