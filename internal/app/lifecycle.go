package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"rooms_svc/internal/domain"
)

// ReservationService owns the reservation state machine. Every mutation
// writes the ledger first, then pushes the derived summary change into
// the room projection best-effort: the two stores share no transaction,
// so a failed projection write leaves the summary stale until the next
// transition, never the ledger.
type ReservationService struct {
	ledger domain.ReservationRepository
	rooms  domain.RoomProjectionRepository
	cache  domain.Cache
	now    func() time.Time
}

func NewReservationService(ledger domain.ReservationRepository, rooms domain.RoomProjectionRepository, cache domain.Cache) *ReservationService {
	return &ReservationService{ledger: ledger, rooms: rooms, cache: cache, now: time.Now}
}

func (s *ReservationService) Get(ctx context.Context, id string) (domain.Reservation, error) {
	return s.ledger.Get(ctx, id)
}

func (s *ReservationService) List(ctx context.Context) ([]domain.Reservation, error) {
	return s.ledger.List(ctx)
}

// Create opens a reservation in RESERVADA with an empty payment list and
// appends its summary to the owning room projection.
func (s *ReservationService) Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	if r.RoomID == 0 || !r.CheckOut.After(r.CheckIn) {
		return domain.Reservation{}, fmt.Errorf("%w: reservation needs a room and a valid date range", domain.ErrInvalidInput)
	}
	r.ID = uuid.NewString()
	r.SetState(domain.StateReservada)
	r.Payments = []domain.Payment{}
	r.HostReview, r.ClientReview = nil, nil

	if err := s.ledger.Insert(ctx, r); err != nil {
		return domain.Reservation{}, err
	}
	s.appendSummary(ctx, r)
	log.Info().Str("reservation_id", r.ID).Int64("room_id", r.RoomID).Msg("reservation created")
	return r, nil
}

// RegisterPayment appends a payment fact. The first APPROVED payment on a
// RESERVADA reservation confirms it; later approvals change nothing.
func (s *ReservationService) RegisterPayment(ctx context.Context, id string, p domain.Payment) (domain.Reservation, error) {
	r, err := s.ledger.Get(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if r.State == domain.StateCancelada || r.State == domain.StateFinalizada {
		return domain.Reservation{}, fmt.Errorf("%w: cannot register payments on a %s reservation", domain.ErrInvalidState, r.State)
	}
	if p.Date.IsZero() {
		p.Date = s.now()
	}
	r.Payments = append(r.Payments, p)

	if r.State == domain.StateReservada && r.HasApprovedPayment() {
		r.SetState(domain.StateConfirmada)
		log.Info().Str("reservation_id", id).Msg("reservation confirmed by approved payment")
	}
	if err := s.ledger.Update(ctx, r); err != nil {
		return domain.Reservation{}, err
	}
	s.patchSummary(ctx, r)
	return r, nil
}

// CheckIn moves CONFIRMADA to EFECTUADA.
func (s *ReservationService) CheckIn(ctx context.Context, id string) (domain.Reservation, error) {
	r, err := s.ledger.Get(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if r.State != domain.StateConfirmada {
		return domain.Reservation{}, fmt.Errorf("%w: check-in requires CONFIRMADA, got %s", domain.ErrInvalidState, r.State)
	}
	r.SetState(domain.StateEfectuada)
	if err := s.ledger.Update(ctx, r); err != nil {
		return domain.Reservation{}, err
	}
	s.patchSummary(ctx, r)
	return r, nil
}

// CheckOut closes the stay. With a host review (rating > 0) and approved
// payments covering the total price the reservation is FINALIZADA;
// missing either leaves it ADEUDADA. The host review is stored either way
// when present.
func (s *ReservationService) CheckOut(ctx context.Context, id string, hostReview *domain.Review) (domain.Reservation, error) {
	r, err := s.ledger.Get(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if r.State != domain.StateEfectuada {
		return domain.Reservation{}, fmt.Errorf("%w: check-out requires EFECTUADA, got %s", domain.ErrInvalidState, r.State)
	}

	reviewed := hostReview != nil && hostReview.Rating > 0
	paid := r.ApprovedTotal() >= r.TotalPrice

	if reviewed && paid {
		r.SetState(domain.StateFinalizada)
	} else {
		r.SetState(domain.StateAdeudada)
		log.Warn().Str("reservation_id", id).Bool("reviewed", reviewed).Bool("paid", paid).Msg("check-out left reservation in debt")
	}
	if reviewed {
		hostReview.CreatedAt = s.now()
		r.HostReview = hostReview
	}
	if err := s.ledger.Update(ctx, r); err != nil {
		return domain.Reservation{}, err
	}
	s.patchSummary(ctx, r)
	return r, nil
}

// AddClientRating attaches the guest's review after the stay. Allowed on
// FINALIZADA and ADEUDADA only, and only once the check-out date passed.
func (s *ReservationService) AddClientRating(ctx context.Context, id string, rating domain.Review) (domain.Reservation, error) {
	r, err := s.ledger.Get(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if r.State != domain.StateFinalizada && r.State != domain.StateAdeudada {
		return domain.Reservation{}, fmt.Errorf("%w: rating requires FINALIZADA or ADEUDADA, got %s", domain.ErrInvalidState, r.State)
	}
	if s.now().Before(r.CheckOut) {
		return domain.Reservation{}, fmt.Errorf("%w: rating is only allowed after the check-out date", domain.ErrInvalidState)
	}
	rating.CreatedAt = s.now()
	r.ClientReview = &rating
	if err := s.ledger.Update(ctx, r); err != nil {
		return domain.Reservation{}, err
	}
	return r, nil
}

// Cancel voids a reservation that has no payments and hasn't been used.
// The summary is pulled from the projection entirely, not just re-marked.
func (s *ReservationService) Cancel(ctx context.Context, id string) (domain.Reservation, error) {
	r, err := s.ledger.Get(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	switch r.State {
	case domain.StateEfectuada, domain.StateFinalizada, domain.StateAdeudada:
		return domain.Reservation{}, fmt.Errorf("%w: cannot cancel a %s reservation", domain.ErrInvalidState, r.State)
	}
	if len(r.Payments) > 0 {
		return domain.Reservation{}, fmt.Errorf("%w: cannot cancel a reservation with registered payments", domain.ErrInvalidState)
	}
	r.SetState(domain.StateCancelada)
	if err := s.ledger.Update(ctx, r); err != nil {
		return domain.Reservation{}, err
	}
	s.pullSummary(ctx, r.RoomID, r.ID)
	log.Info().Str("reservation_id", id).Msg("reservation cancelled")
	return r, nil
}

// Block records an owner block: a reservation-like entry in BLOQUEADA
// that occupies the room for its date range.
func (s *ReservationService) Block(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	return s.ownerHold(ctx, r, domain.StateBloqueada)
}

// Close records an owner closure (CERRADA), same mechanics as Block.
func (s *ReservationService) Close(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	return s.ownerHold(ctx, r, domain.StateCerrada)
}

func (s *ReservationService) ownerHold(ctx context.Context, r domain.Reservation, st domain.ReservationState) (domain.Reservation, error) {
	if r.RoomID == 0 || !r.CheckOut.After(r.CheckIn) {
		return domain.Reservation{}, fmt.Errorf("%w: hold needs a room and a valid date range", domain.ErrInvalidInput)
	}
	r.ID = uuid.NewString()
	r.SetState(st)
	if r.Payments == nil {
		r.Payments = []domain.Payment{}
	}
	if err := s.ledger.Insert(ctx, r); err != nil {
		return domain.Reservation{}, err
	}
	s.appendSummary(ctx, r)
	log.Info().Str("reservation_id", r.ID).Int64("room_id", r.RoomID).Str("state", string(st)).Msg("owner hold recorded")
	return r, nil
}

// Delete removes a reservation from the ledger, pulling its summary from
// the projection first.
func (s *ReservationService) Delete(ctx context.Context, id string) error {
	r, err := s.ledger.Get(ctx, id)
	if err != nil {
		return err
	}
	s.pullSummary(ctx, r.RoomID, r.ID)
	return s.ledger.Delete(ctx, id)
}

// Projection writes below are best-effort by design: the ledger is
// authoritative and the projection is allowed brief divergence.

func (s *ReservationService) appendSummary(ctx context.Context, r domain.Reservation) {
	if err := s.rooms.AppendSummary(ctx, r.RoomID, r.Summary()); err != nil {
		log.Error().Err(err).Str("reservation_id", r.ID).Int64("room_id", r.RoomID).Msg("append summary failed; projection stale")
		return
	}
	s.invalidate(ctx, r.RoomID)
}

func (s *ReservationService) patchSummary(ctx context.Context, r domain.Reservation) {
	p := domain.SummaryPatch{ReservationID: r.ID, State: r.State}
	if err := s.rooms.PatchSummary(ctx, r.RoomID, p); err != nil {
		log.Error().Err(err).Str("reservation_id", r.ID).Int64("room_id", r.RoomID).Msg("patch summary failed; projection stale")
		return
	}
	s.invalidate(ctx, r.RoomID)
}

func (s *ReservationService) pullSummary(ctx context.Context, roomID int64, reservationID string) {
	if err := s.rooms.PullSummary(ctx, roomID, reservationID); err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID).Int64("room_id", roomID).Msg("pull summary failed; projection stale")
		return
	}
	s.invalidate(ctx, roomID)
}

func (s *ReservationService) invalidate(ctx context.Context, roomID int64) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, roomCacheKey(roomID))
	}
}
