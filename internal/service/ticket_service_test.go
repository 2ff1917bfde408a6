package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/parkpass/ticketing/internal/model"
	"github.com/parkpass/ticketing/internal/ticketing"
)

func TestTicketService_CreateBooking_ComputesTotal(t *testing.T) {
	env := newTestEnv(t)

	b := env.book(t, env.park, 2, 1)

	if b.TotalAmount != 29000 {
		t.Fatalf("total = %d, want 29000", b.TotalAmount)
	}
	if b.Status != model.TicketStatusActive || b.PaymentStatus != model.PaymentStatusPending {
		t.Fatalf("status = %s/%s", b.Status, b.PaymentStatus)
	}
	if !ticketing.IsTicketNo(b.TicketNo) {
		t.Fatalf("ticket no %q has wrong shape", b.TicketNo)
	}
	if got := time.Time(b.VisitDate); !got.Equal(time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("visit date = %v", got)
	}

	events, err := env.events.ListByBooking(context.Background(), b.ID)
	if err != nil || len(events) != 1 || events[0].EventType != model.EventTypeBookingCreated {
		t.Fatalf("audit trail = %v, %v", events, err)
	}
}

func TestTicketService_CreateBooking_EmptyParty(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tickets.CreateBooking(context.Background(), ticketing.BookingRequest{
		ParkID:       env.park.ID,
		VisitDate:    "2026-10-25",
		VisitorName:  "Ananya Rao",
		VisitorEmail: "ananya@example.com",
	})
	if !errors.Is(err, ticketing.ErrInvalidPartySize) {
		t.Fatalf("expected ErrInvalidPartySize, got %v", err)
	}
}

func TestTicketService_CreateBooking_Capacity(t *testing.T) {
	env := newTestEnv(t)

	env.book(t, env.park, 4, 2)
	b := env.book(t, env.park, 3, 1) // exactly full

	_, err := env.tickets.CreateBooking(context.Background(), ticketing.BookingRequest{
		ParkID: env.park.ID, VisitDate: "2026-10-25",
		VisitorName: "Late", VisitorEmail: "late@example.com", Adults: 1,
	})
	var fe *ticketing.FieldError
	if !errors.Is(err, ticketing.ErrCapacityExceeded) || !errors.As(err, &fe) || fe.Field != "partySize" {
		t.Fatalf("expected capacity error on partySize, got %v", err)
	}

	// cancelled bookings free their places
	if _, err := env.tickets.CancelTicket(context.Background(), env.superAdmin, b.TicketNo); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	env.book(t, env.park, 1, 0)
}

func TestTicketService_CreateBooking_HugePartyIsCapacityError(t *testing.T) {
	env := newTestEnv(t)
	env.book(t, env.park, 1, 0)

	_, err := env.tickets.CreateBooking(context.Background(), ticketing.BookingRequest{
		ParkID: env.park.ID, VisitDate: "2026-10-25",
		VisitorName: "Crowd", VisitorEmail: "crowd@example.com",
		Adults: math.MaxInt, Children: math.MaxInt,
	})
	var fe *ticketing.FieldError
	if !errors.Is(err, ticketing.ErrCapacityExceeded) || !errors.As(err, &fe) || fe.Field != "partySize" {
		t.Fatalf("expected capacity error on partySize, got %v", err)
	}
}

// ticketNoSequence hands out nos in order, then falls back to random numbers.
func ticketNoSequence(nos ...string) func() (string, error) {
	var (
		mu   sync.Mutex
		next int
	)
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if next >= len(nos) {
			return ticketing.NewTicketNo()
		}
		no := nos[next]
		next++
		return no, nil
	}
}

func TestTicketService_CreateBooking_SkipsTakenTicketNo(t *testing.T) {
	env := newTestEnv(t)
	env.tickets.WithTicketNoSource(ticketNoSequence("AAAA1111"))
	first := env.book(t, env.park, 1, 0)
	if first.TicketNo != "AAAA1111" {
		t.Fatalf("first ticket no = %q", first.TicketNo)
	}

	env.tickets.WithTicketNoSource(ticketNoSequence("AAAA1111", "BBBB2222"))
	second := env.book(t, env.park, 1, 0)
	if second.TicketNo != "BBBB2222" {
		t.Fatalf("taken number must be skipped, got %q", second.TicketNo)
	}
}

func TestTicketService_CreateBooking_TicketNoExhausted(t *testing.T) {
	env := newTestEnv(t)
	env.tickets.WithTicketNoSource(ticketNoSequence("AAAA1111"))
	env.book(t, env.park, 1, 0)

	taken := make([]string, maxTicketNoAttempts)
	for i := range taken {
		taken[i] = "AAAA1111"
	}
	env.tickets.WithTicketNoSource(ticketNoSequence(taken...))
	_, err := env.tickets.CreateBooking(context.Background(), ticketing.BookingRequest{
		ParkID: env.park.ID, VisitDate: "2026-10-25",
		VisitorName: "Unlucky", VisitorEmail: "unlucky@example.com", Adults: 1,
	})
	if !errors.Is(err, ticketing.ErrDuplicateTicketNo) {
		t.Fatalf("expected ErrDuplicateTicketNo, got %v", err)
	}
}

func TestTicketService_CreateBooking_PastDateAndInactivePark(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := ticketing.BookingRequest{
		ParkID: env.park.ID, VisitDate: "2026-10-18",
		VisitorName: "A", VisitorEmail: "a@example.com", Adults: 1,
	}
	if _, err := env.tickets.CreateBooking(ctx, req); !errors.Is(err, ticketing.ErrInvalidVisitDate) {
		t.Fatalf("past date err = %v", err)
	}

	req.VisitDate = "2026-10-19"
	if _, err := env.tickets.CreateBooking(ctx, req); err != nil {
		t.Fatalf("today must be bookable: %v", err)
	}

	if _, err := env.catalog.SetParkActive(ctx, env.superAdmin, env.park.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := env.tickets.CreateBooking(ctx, req); !errors.Is(err, ticketing.ErrParkUnavailable) {
		t.Fatalf("inactive park err = %v", err)
	}
}

func TestTicketService_PreviewPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	q, err := env.tickets.PreviewPrice(ctx, env.park.ID, 2, 1)
	if err != nil {
		t.Fatalf("PreviewPrice: %v", err)
	}
	if q.Total != 29000 || q.Currency != "INR" {
		t.Fatalf("quote = %+v", q)
	}

	if _, err := env.tickets.PreviewPrice(ctx, env.park.ID, 0, 0); !errors.Is(err, ticketing.ErrInvalidPartySize) {
		t.Fatalf("empty party err = %v", err)
	}
	if _, err := env.tickets.PreviewPrice(ctx, uuid.New(), 1, 0); !errors.Is(err, ticketing.ErrParkNotFound) {
		t.Fatalf("unknown park err = %v", err)
	}
}

func TestTicketService_MarkUsed_WrongPark(t *testing.T) {
	env := newTestEnv(t)
	b := env.book(t, env.park, 1, 0)

	_, err := env.tickets.MarkTicketUsed(context.Background(), checker(env.other), b.TicketNo)
	if !errors.Is(err, ticketing.ErrWrongPark) || !errors.Is(err, ticketing.ErrPermissionDenied) {
		t.Fatalf("expected wrong-park permission error, got %v", err)
	}

	got, _ := env.tickets.GetBooking(context.Background(), b.TicketNo)
	if got.Status != model.TicketStatusActive {
		t.Fatalf("denied call changed status to %s", got.Status)
	}
}

func TestTicketService_MarkUsed_ThenTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.book(t, env.park, 1, 0)
	gate := checker(env.park)

	used, err := env.tickets.MarkTicketUsed(ctx, gate, b.TicketNo)
	if err != nil {
		t.Fatalf("MarkTicketUsed: %v", err)
	}
	if used.Status != model.TicketStatusUsed || used.UsedAt == nil || !used.UsedAt.Equal(testNow) {
		t.Fatalf("used = %s at %v", used.Status, used.UsedAt)
	}

	if _, err := env.tickets.MarkTicketUsed(ctx, gate, b.TicketNo); !errors.Is(err, ticketing.ErrAlreadyUsed) {
		t.Fatalf("second scan err = %v", err)
	}
	if _, err := env.tickets.CancelTicket(ctx, env.superAdmin, b.TicketNo); !errors.Is(err, ticketing.ErrCannotCancelUsedTicket) {
		t.Fatalf("cancel used err = %v", err)
	}
}

func TestTicketService_CancelIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.book(t, env.park, 1, 0)
	admin := parkAdmin(env.park)

	first, err := env.tickets.CancelTicket(ctx, admin, b.ID.String())
	if err != nil || first.Status != model.TicketStatusCancelled {
		t.Fatalf("first cancel = %v, %v", first, err)
	}
	second, err := env.tickets.CancelTicket(ctx, admin, b.TicketNo)
	if err != nil || second.Status != model.TicketStatusCancelled {
		t.Fatalf("second cancel = %v, %v", second, err)
	}
	if _, err := env.tickets.MarkTicketUsed(ctx, admin, b.TicketNo); !errors.Is(err, ticketing.ErrTicketCancelled) {
		t.Fatalf("use cancelled err = %v", err)
	}

	events, _ := env.events.ListByBooking(ctx, b.ID)
	if len(events) != 2 {
		t.Fatalf("expected created+cancelled events, got %d", len(events))
	}
}

func TestTicketService_ConcurrentMarkUsed(t *testing.T) {
	env := newTestEnv(t)
	b := env.book(t, env.park, 1, 0)
	gate := checker(env.park)

	const scanners = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		wins     int
		failures []error
	)
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.tickets.MarkTicketUsed(context.Background(), gate, b.TicketNo)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	for _, err := range failures {
		if !errors.Is(err, ticketing.ErrAlreadyUsed) && !errors.Is(err, ticketing.ErrConflict) {
			t.Fatalf("loser got %v", err)
		}
	}

	stored, err := env.tickets.GetBooking(context.Background(), b.TicketNo)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != model.TicketStatusUsed {
		t.Fatalf("stored status = %s, want used", stored.Status)
	}
	if stored.UsedAt == nil || !stored.UsedAt.Equal(testNow) {
		t.Fatalf("used_at = %v, want %v", stored.UsedAt, testNow)
	}
}

func TestTicketService_DeleteIsFinal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.book(t, env.park, 1, 0)
	admin := parkAdmin(env.park)

	if _, err := env.tickets.MarkTicketUsed(ctx, admin, b.TicketNo); err != nil {
		t.Fatalf("use: %v", err)
	}
	if err := env.tickets.DeleteTicket(ctx, admin, b.TicketNo); err != nil {
		t.Fatalf("delete used ticket: %v", err)
	}

	if _, err := env.tickets.GetTicket(ctx, admin, b.TicketNo); !errors.Is(err, ticketing.ErrTicketNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
	if _, err := env.tickets.MarkTicketUsed(ctx, admin, b.ID.String()); !errors.Is(err, ticketing.ErrTicketNotFound) {
		t.Fatalf("use after delete err = %v", err)
	}
	if _, err := env.tickets.CancelTicket(ctx, admin, b.TicketNo); !errors.Is(err, ticketing.ErrTicketNotFound) {
		t.Fatalf("cancel after delete err = %v", err)
	}
	if err := env.tickets.DeleteTicket(ctx, admin, b.TicketNo); !errors.Is(err, ticketing.ErrTicketNotFound) {
		t.Fatalf("second delete err = %v", err)
	}

	// the audit trail survives the row
	events, err := env.events.ListByBooking(ctx, b.ID)
	if err != nil || len(events) != 3 {
		t.Fatalf("audit trail = %v, %v", events, err)
	}
	var deleted bool
	for _, ev := range events {
		deleted = deleted || ev.EventType == model.EventTypeTicketDeleted
	}
	if !deleted {
		t.Fatalf("no %s event in %v", model.EventTypeTicketDeleted, events)
	}
}

func TestTicketService_ForeignActorDeniedEveryAction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.book(t, env.park, 1, 0)

	for _, actor := range []ticketing.Actor{checker(env.other), parkAdmin(env.other), {UserID: uuid.New(), Role: "visitor"}} {
		if _, err := env.tickets.GetTicket(ctx, actor, b.TicketNo); !errors.Is(err, ticketing.ErrPermissionDenied) {
			t.Fatalf("%s get: %v", actor.Role, err)
		}
		if _, err := env.tickets.MarkTicketUsed(ctx, actor, b.TicketNo); !errors.Is(err, ticketing.ErrPermissionDenied) {
			t.Fatalf("%s use: %v", actor.Role, err)
		}
		if _, err := env.tickets.CancelTicket(ctx, actor, b.TicketNo); !errors.Is(err, ticketing.ErrPermissionDenied) {
			t.Fatalf("%s cancel: %v", actor.Role, err)
		}
		if err := env.tickets.DeleteTicket(ctx, actor, b.TicketNo); !errors.Is(err, ticketing.ErrPermissionDenied) {
			t.Fatalf("%s delete: %v", actor.Role, err)
		}
	}
}

func TestTicketService_RecordPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.book(t, env.park, 2, 0)

	_, err := env.tickets.RecordPayment(ctx, b.ID.String(), ticketing.PaymentResult{Status: model.PaymentStatusPending})
	if !errors.Is(err, ticketing.ErrInvalidPaymentStatus) {
		t.Fatalf("pending result err = %v", err)
	}

	failed, err := env.tickets.RecordPayment(ctx, b.ID.String(), ticketing.PaymentResult{Status: model.PaymentStatusFailed, Method: "card"})
	if err != nil || failed.PaymentStatus != model.PaymentStatusFailed {
		t.Fatalf("failed payment = %v, %v", failed, err)
	}

	paid, err := env.tickets.RecordPayment(ctx, b.TicketNo, ticketing.PaymentResult{
		Status: model.PaymentStatusCompleted, PaymentID: "pay_9X", Method: "upi",
	})
	if err != nil {
		t.Fatalf("completed payment: %v", err)
	}
	if paid.PaymentStatus != model.PaymentStatusCompleted || paid.PaymentID != "pay_9X" || paid.PaymentMethod != "upi" {
		t.Fatalf("paid = %+v", paid)
	}
	if paid.TicketNo != b.TicketNo || paid.Status != model.TicketStatusActive {
		t.Fatalf("payment changed ticket no or status: %s %s", paid.TicketNo, paid.Status)
	}

	_, err = env.tickets.RecordPayment(ctx, b.TicketNo, ticketing.PaymentResult{
		Status: model.PaymentStatusCompleted, PaymentID: "pay_again", Method: "upi",
	})
	if !errors.Is(err, ticketing.ErrPaymentAlreadyCompleted) {
		t.Fatalf("double payment err = %v", err)
	}
}

func TestTicketService_RecordPayment_AssignsMissingTicketNo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	legacy := &model.Booking{
		ParkID: env.park.ID, VisitorName: "Legacy", VisitorEmail: "legacy@example.com",
		Adults: 1, TotalAmount: 12000,
		Status: model.TicketStatusActive, PaymentStatus: model.PaymentStatusPending,
	}
	if err := env.bookings.CreateBooking(ctx, legacy); err != nil {
		t.Fatalf("seed: %v", err)
	}

	paid, err := env.tickets.RecordPayment(ctx, legacy.ID.String(), ticketing.PaymentResult{
		Status: model.PaymentStatusCompleted, PaymentID: "pay_1", Method: "card",
	})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if !ticketing.IsTicketNo(paid.TicketNo) {
		t.Fatalf("ticket no not assigned: %q", paid.TicketNo)
	}
}

func TestTicketService_RecordPayment_SkipsTakenTicketNo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.tickets.WithTicketNoSource(ticketNoSequence("CCCC3333"))
	env.book(t, env.park, 1, 0)

	legacy := &model.Booking{
		ParkID: env.park.ID, VisitorName: "Legacy", VisitorEmail: "legacy@example.com",
		Adults: 1, TotalAmount: 12000,
		Status: model.TicketStatusActive, PaymentStatus: model.PaymentStatusPending,
	}
	if err := env.bookings.CreateBooking(ctx, legacy); err != nil {
		t.Fatalf("seed: %v", err)
	}

	env.tickets.WithTicketNoSource(ticketNoSequence("CCCC3333", "DDDD4444"))
	paid, err := env.tickets.RecordPayment(ctx, legacy.ID.String(), ticketing.PaymentResult{
		Status: model.PaymentStatusCompleted, PaymentID: "pay_2", Method: "card",
	})
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if paid.TicketNo != "DDDD4444" {
		t.Fatalf("ticket no = %q, want DDDD4444", paid.TicketNo)
	}
}

func TestTicketService_ListTicketsScoping(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.book(t, env.park, 1, 0)
	env.book(t, env.park, 1, 0)
	env.book(t, env.other, 1, 0)

	page, err := env.tickets.ListTickets(ctx, env.superAdmin, TicketQuery{}, 1, 10)
	if err != nil || page.Total != 3 {
		t.Fatalf("super-admin total = %d, %v", page.Total, err)
	}

	page, err = env.tickets.ListTickets(ctx, checker(env.park), TicketQuery{}, 1, 1)
	if err != nil || page.Total != 2 || len(page.Items) != 1 || !page.HasNext {
		t.Fatalf("checker page = %+v, %v", page, err)
	}

	otherID := env.other.ID
	if _, err := env.tickets.ListTickets(ctx, checker(env.park), TicketQuery{ParkID: &otherID}, 1, 10); !errors.Is(err, ticketing.ErrWrongPark) {
		t.Fatalf("foreign park filter err = %v", err)
	}
}

func TestTicketService_PrintAndDownloadFlags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	b := env.book(t, env.park, 1, 0)

	if err := env.tickets.MarkPrinted(ctx, b.TicketNo); err != nil {
		t.Fatalf("MarkPrinted: %v", err)
	}
	if err := env.tickets.MarkDownloaded(ctx, b.ID.String()); err != nil {
		t.Fatalf("MarkDownloaded: %v", err)
	}
	got, _ := env.tickets.GetBooking(ctx, b.TicketNo)
	if !got.IsPrinted || !got.IsDownloaded {
		t.Fatalf("flags = printed %v downloaded %v", got.IsPrinted, got.IsDownloaded)
	}
	if err := env.tickets.MarkPrinted(ctx, "ZZZZ9999"); !errors.Is(err, ticketing.ErrTicketNotFound) {
		t.Fatalf("unknown ticket err = %v", err)
	}
}
