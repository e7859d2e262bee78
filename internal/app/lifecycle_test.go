package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rooms_svc/internal/app"
	"rooms_svc/internal/domain"
	"rooms_svc/internal/storage/memory"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func approved(amount float64) domain.Payment {
	return domain.Payment{Method: "CARD", TransactionID: "tx", Amount: amount, Status: domain.PaymentApproved}
}

// fixture wires a reservation service over in-memory stores with one
// seeded room projection.
func fixture(t *testing.T) (*app.ReservationService, *memory.ProjectionRepo, *memory.ReservationRepo) {
	t.Helper()
	rooms := memory.NewProjectionRepo()
	ledger := memory.NewReservationRepo()
	if err := rooms.Upsert(context.Background(), domain.RoomProjection{RoomID: 1, Capacity: 2, NightlyPrice: 100}); err != nil {
		t.Fatal(err)
	}
	return app.NewReservationService(ledger, rooms, nil), rooms, ledger
}

func pastStay() domain.Reservation {
	return domain.Reservation{
		RoomID:     1,
		GuestID:    "g1",
		CheckIn:    date(2026, time.January, 10),
		CheckOut:   date(2026, time.January, 15),
		TotalPrice: 500,
	}
}

func TestCreate_StartsReservadaWithSummary(t *testing.T) {
	svc, rooms, _ := fixture(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, pastStay())
	if err != nil {
		t.Fatal(err)
	}
	if r.ID == "" || r.State != domain.StateReservada {
		t.Fatalf("got id=%q state=%s, want assigned id in RESERVADA", r.ID, r.State)
	}
	if r.Payments == nil || len(r.Payments) != 0 {
		t.Fatal("new reservation must carry an empty, non-nil payment list")
	}

	p, err := rooms.GetByRoomID(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Reservations) != 1 || p.Reservations[0].ReservationID != r.ID {
		t.Fatalf("projection summaries = %+v, want exactly the created reservation", p.Reservations)
	}
	if p.Reservations[0].State != domain.StateReservada {
		t.Fatalf("summary state = %s, want RESERVADA", p.Reservations[0].State)
	}
}

func TestCreate_RejectsBadDates(t *testing.T) {
	svc, _, _ := fixture(t)
	r := pastStay()
	r.CheckOut = r.CheckIn
	if _, err := svc.Create(context.Background(), r); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

func TestRegisterPayment_FirstApprovalConfirms(t *testing.T) {
	svc, rooms, _ := fixture(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, pastStay())

	r, err := svc.RegisterPayment(ctx, r.ID, approved(200))
	if err != nil {
		t.Fatal(err)
	}
	if r.State != domain.StateConfirmada {
		t.Fatalf("state after first approval = %s, want CONFIRMADA", r.State)
	}
	if r.Payments[0].Date.IsZero() {
		t.Fatal("payment date must default to now")
	}

	// Second approval adds a payment but changes no state.
	r, err = svc.RegisterPayment(ctx, r.ID, approved(300))
	if err != nil {
		t.Fatal(err)
	}
	if r.State != domain.StateConfirmada || len(r.Payments) != 2 {
		t.Fatalf("state=%s payments=%d, want CONFIRMADA with 2 payments", r.State, len(r.Payments))
	}

	p, _ := rooms.GetByRoomID(ctx, 1)
	if p.Reservations[0].State != domain.StateConfirmada {
		t.Fatalf("summary state = %s, want CONFIRMADA", p.Reservations[0].State)
	}
}

func TestRegisterPayment_PendingDoesNotConfirm(t *testing.T) {
	svc, _, _ := fixture(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, pastStay())

	r, err := svc.RegisterPayment(ctx, r.ID, domain.Payment{Amount: 500, Status: domain.PaymentPending})
	if err != nil {
		t.Fatal(err)
	}
	if r.State != domain.StateReservada {
		t.Fatalf("state = %s, want RESERVADA after pending payment", r.State)
	}
}

func TestRegisterPayment_GuardedStates(t *testing.T) {
	svc, _, ledger := fixture(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, pastStay())

	for _, st := range []domain.ReservationState{domain.StateCancelada, domain.StateFinalizada} {
		stored, _ := ledger.Get(ctx, r.ID)
		stored.SetState(st)
		_ = ledger.Update(ctx, stored)
		if _, err := svc.RegisterPayment(ctx, r.ID, approved(1)); !errors.Is(err, domain.ErrInvalidState) {
			t.Fatalf("%s: want ErrInvalidState, got %v", st, err)
		}
	}
}

func TestCheckIn_RequiresConfirmada(t *testing.T) {
	svc, _, _ := fixture(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, pastStay())

	if _, err := svc.CheckIn(ctx, r.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("check-in on RESERVADA: want ErrInvalidState, got %v", err)
	}

	r, _ = svc.RegisterPayment(ctx, r.ID, approved(500))
	r, err := svc.CheckIn(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if r.State != domain.StateEfectuada {
		t.Fatalf("state = %s, want EFECTUADA", r.State)
	}
}

func TestCheckOut_FinalizadaNeedsReviewAndFullPayment(t *testing.T) {
	ctx := context.Background()
	toCheckedIn := func(t *testing.T, svc *app.ReservationService, paid float64) domain.Reservation {
		t.Helper()
		r, err := svc.Create(ctx, pastStay())
		if err != nil {
			t.Fatal(err)
		}
		if r, err = svc.RegisterPayment(ctx, r.ID, approved(paid)); err != nil {
			t.Fatal(err)
		}
		if r, err = svc.CheckIn(ctx, r.ID); err != nil {
			t.Fatal(err)
		}
		return r
	}

	t.Run("paid and reviewed", func(t *testing.T) {
		svc, _, _ := fixture(t)
		r := toCheckedIn(t, svc, 500)
		r, err := svc.CheckOut(ctx, r.ID, &domain.Review{Rating: 5, Comment: "impecable"})
		if err != nil {
			t.Fatal(err)
		}
		if r.State != domain.StateFinalizada {
			t.Fatalf("state = %s, want FINALIZADA", r.State)
		}
		if r.HostReview == nil || r.HostReview.CreatedAt.IsZero() {
			t.Fatal("host review must be stored with a timestamp")
		}
	})

	t.Run("underpaid", func(t *testing.T) {
		svc, _, _ := fixture(t)
		r := toCheckedIn(t, svc, 300)
		r, err := svc.CheckOut(ctx, r.ID, &domain.Review{Rating: 4})
		if err != nil {
			t.Fatal(err)
		}
		if r.State != domain.StateAdeudada {
			t.Fatalf("state = %s, want ADEUDADA when payments fall short", r.State)
		}
	})

	t.Run("no review", func(t *testing.T) {
		svc, _, _ := fixture(t)
		r := toCheckedIn(t, svc, 500)
		r, err := svc.CheckOut(ctx, r.ID, nil)
		if err != nil {
			t.Fatal(err)
		}
		if r.State != domain.StateAdeudada {
			t.Fatalf("state = %s, want ADEUDADA without a host review", r.State)
		}
	})
}

func TestAddClientRating_OnlyAfterStay(t *testing.T) {
	svc, _, ledger := fixture(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, pastStay())

	if _, err := svc.AddClientRating(ctx, r.ID, domain.Review{Rating: 5}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("rating on RESERVADA: want ErrInvalidState, got %v", err)
	}

	stored, _ := ledger.Get(ctx, r.ID)
	stored.SetState(domain.StateAdeudada)
	_ = ledger.Update(ctx, stored)

	got, err := svc.AddClientRating(ctx, r.ID, domain.Review{Rating: 3, Comment: "regular"})
	if err != nil {
		t.Fatal(err)
	}
	if got.ClientReview == nil || got.ClientReview.Rating != 3 {
		t.Fatalf("client review = %+v, want rating 3 stored", got.ClientReview)
	}

	// Future stay: rating must wait for the check-out date.
	future := pastStay()
	future.CheckIn = time.Now().Add(24 * time.Hour)
	future.CheckOut = time.Now().Add(72 * time.Hour)
	fr, _ := svc.Create(ctx, future)
	fs, _ := ledger.Get(ctx, fr.ID)
	fs.SetState(domain.StateFinalizada)
	_ = ledger.Update(ctx, fs)
	if _, err := svc.AddClientRating(ctx, fr.ID, domain.Review{Rating: 5}); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("rating before check-out date: want ErrInvalidState, got %v", err)
	}
}

func TestCancel_PullsOnlyItsSummary(t *testing.T) {
	svc, rooms, _ := fixture(t)
	ctx := context.Background()

	first, _ := svc.Create(ctx, pastStay())
	other := pastStay()
	other.CheckIn = date(2026, time.February, 1)
	other.CheckOut = date(2026, time.February, 5)
	second, _ := svc.Create(ctx, other)

	if _, err := svc.Cancel(ctx, first.ID); err != nil {
		t.Fatal(err)
	}

	p, _ := rooms.GetByRoomID(ctx, 1)
	if len(p.Reservations) != 1 || p.Reservations[0].ReservationID != second.ID {
		t.Fatalf("summaries after cancel = %+v, want only %s", p.Reservations, second.ID)
	}

	got, err := svc.Get(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.State != domain.StateCancelada {
		t.Fatalf("ledger state = %s, want CANCELADA", got.State)
	}
}

func TestCancel_Guards(t *testing.T) {
	svc, _, _ := fixture(t)
	ctx := context.Background()

	r, _ := svc.Create(ctx, pastStay())
	if _, err := svc.RegisterPayment(ctx, r.ID, approved(100)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Cancel(ctx, r.ID); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("cancel with payments: want ErrInvalidState, got %v", err)
	}
}

func TestOwnerHolds_BlockAvailability(t *testing.T) {
	svc, rooms, _ := fixture(t)
	ctx := context.Background()

	hold := pastStay()
	if _, err := svc.Block(ctx, hold); err != nil {
		t.Fatal(err)
	}

	in, out := hold.CheckIn, hold.CheckOut
	res, err := rooms.Search(ctx, domain.SearchCriteria{CheckIn: &in, CheckOut: &out})
	if err != nil {
		t.Fatal(err)
	}
	if len(res) != 0 {
		t.Fatalf("blocked room returned by availability search: %+v", res)
	}
}

func TestDelete_RemovesLedgerAndSummary(t *testing.T) {
	svc, rooms, _ := fixture(t)
	ctx := context.Background()
	r, _ := svc.Create(ctx, pastStay())

	if err := svc.Delete(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, r.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
	p, _ := rooms.GetByRoomID(ctx, 1)
	if len(p.Reservations) != 0 {
		t.Fatalf("summaries after delete = %+v, want none", p.Reservations)
	}
}
