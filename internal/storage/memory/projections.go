// Package memory holds mutex-guarded map implementations of the
// repository ports. They back the unit tests and local development runs;
// production wiring uses the mongo and mysql packages.
package memory

import (
	"context"
	"fmt"
	"sync"

	"rooms_svc/internal/domain"
)

type ProjectionRepo struct {
	mu    sync.RWMutex
	rooms map[int64]domain.RoomProjection // keyed by external room id
}

func NewProjectionRepo() *ProjectionRepo {
	return &ProjectionRepo{rooms: make(map[int64]domain.RoomProjection)}
}

func (r *ProjectionRepo) Upsert(_ context.Context, p domain.RoomProjection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.rooms[p.RoomID]; ok {
		// Replays must not wipe summaries the lifecycle engine appended.
		p.Reservations = prev.Reservations
	}
	if p.ID == "" {
		p.ID = fmt.Sprintf("mem-%d", p.RoomID)
	}
	r.rooms[p.RoomID] = p
	return nil
}

func (r *ProjectionRepo) GetByRoomID(_ context.Context, roomID int64) (domain.RoomProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.rooms[roomID]
	if !ok {
		return domain.RoomProjection{}, domain.ErrNotFound
	}
	return clone(p), nil
}

func (r *ProjectionRepo) List(_ context.Context) ([]domain.RoomProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomProjection, 0, len(r.rooms))
	for _, p := range r.rooms {
		out = append(out, clone(p))
	}
	return out, nil
}

func (r *ProjectionRepo) ApplyPatch(_ context.Context, roomID int64, patch domain.ProjectionPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.NightlyPrice != nil {
		p.NightlyPrice = *patch.NightlyPrice
	}
	if patch.Capacity != nil {
		p.Capacity = *patch.Capacity
	}
	if patch.Amenities != nil {
		p.Amenities = append([]string(nil), patch.Amenities...)
	}
	r.rooms[roomID] = p
	return nil
}

func (r *ProjectionRepo) RepriceRoomType(_ context.Context, roomTypeID int64, nightlyPrice float64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, p := range r.rooms {
		if p.RoomTypeID == roomTypeID {
			p.NightlyPrice = nightlyPrice
			r.rooms[id] = p
			n++
		}
	}
	return n, nil
}

func (r *ProjectionRepo) DeleteByRoomID(_ context.Context, roomID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[roomID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.rooms, roomID)
	return nil
}

func (r *ProjectionRepo) Search(_ context.Context, c domain.SearchCriteria) ([]domain.RoomProjection, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.RoomProjection
	for _, p := range r.rooms {
		if c.Matches(p) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *ProjectionRepo) AppendSummary(_ context.Context, roomID int64, s domain.ReservationSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Reservations = append(p.Reservations, s)
	r.rooms[roomID] = p
	return nil
}

func (r *ProjectionRepo) PatchSummary(_ context.Context, roomID int64, patch domain.SummaryPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range p.Reservations {
		if p.Reservations[i].ReservationID == patch.ReservationID {
			p.Reservations[i].State = patch.State
			r.rooms[roomID] = p
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *ProjectionRepo) PullSummary(_ context.Context, roomID int64, reservationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := p.Reservations[:0]
	for _, s := range p.Reservations {
		if s.ReservationID != reservationID {
			kept = append(kept, s)
		}
	}
	p.Reservations = kept
	r.rooms[roomID] = p
	return nil
}

func clone(p domain.RoomProjection) domain.RoomProjection {
	p.Amenities = append([]string(nil), p.Amenities...)
	p.Reservations = append([]domain.ReservationSummary(nil), p.Reservations...)
	if p.Hotel != nil {
		h := *p.Hotel
		p.Hotel = &h
	}
	return p
}
