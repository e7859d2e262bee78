package memory

import (
	"context"
	"sync"

	"rooms_svc/internal/domain"
)

type ReservationRepo struct {
	mu   sync.RWMutex
	byID map[string]domain.Reservation
}

func NewReservationRepo() *ReservationRepo {
	return &ReservationRepo{byID: make(map[string]domain.Reservation)}
}

func (r *ReservationRepo) Insert(_ context.Context, res domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[res.ID] = cloneReservation(res)
	return nil
}

func (r *ReservationRepo) Get(_ context.Context, id string) (domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.byID[id]
	if !ok {
		return domain.Reservation{}, domain.ErrNotFound
	}
	return cloneReservation(res), nil
}

func (r *ReservationRepo) Update(_ context.Context, res domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[res.ID]; !ok {
		return domain.ErrNotFound
	}
	r.byID[res.ID] = cloneReservation(res)
	return nil
}

func (r *ReservationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *ReservationRepo) List(_ context.Context) ([]domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Reservation, 0, len(r.byID))
	for _, res := range r.byID {
		out = append(out, cloneReservation(res))
	}
	return out, nil
}

func cloneReservation(res domain.Reservation) domain.Reservation {
	res.Payments = append([]domain.Payment(nil), res.Payments...)
	if res.HostReview != nil {
		v := *res.HostReview
		res.HostReview = &v
	}
	if res.ClientReview != nil {
		v := *res.ClientReview
		res.ClientReview = &v
	}
	return res
}

// ProcessedEvents is the in-memory idempotency record.
type ProcessedEvents struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewProcessedEvents() *ProcessedEvents {
	return &ProcessedEvents{seen: make(map[string]struct{})}
}

func (p *ProcessedEvents) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[eventID]; ok {
		return false, nil
	}
	p.seen[eventID] = struct{}{}
	return true, nil
}

func (p *ProcessedEvents) Forget(_ context.Context, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.seen, eventID)
	return nil
}
