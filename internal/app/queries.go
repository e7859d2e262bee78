package app

import (
	"context"
	"fmt"
	"time"

	"rooms_svc/internal/domain"
)

func roomCacheKey(roomID int64) string { return fmt.Sprintf("room:%d", roomID) }

// RoomQueryService serves projection reads. Single-room lookups go
// through the cache (invalidated by the synchronizer and the lifecycle
// engine); search always hits the store since criteria keys don't cache
// well and results go stale with every reservation.
type RoomQueryService struct {
	rooms    domain.RoomProjectionRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewRoomQueryService(r domain.RoomProjectionRepository, c domain.Cache, ttl time.Duration) *RoomQueryService {
	return &RoomQueryService{rooms: r, cache: c, cacheTTL: ttl}
}

func (s *RoomQueryService) GetRoom(ctx context.Context, roomID int64) (domain.RoomProjection, error) {
	key := roomCacheKey(roomID)
	if s.cache != nil {
		var r domain.RoomProjection
		if ok, _ := s.cache.Get(ctx, key, &r); ok {
			return r, nil
		}
	}
	r, err := s.rooms.GetByRoomID(ctx, roomID)
	if err != nil {
		return domain.RoomProjection{}, err
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, r, int(s.cacheTTL.Seconds()))
	}
	return r, nil
}

func (s *RoomQueryService) ListRooms(ctx context.Context) ([]domain.RoomProjection, error) {
	return s.rooms.List(ctx)
}

// SearchAvailable composes the guest's filters into one store query.
// Read-only; no side effects.
func (s *RoomQueryService) SearchAvailable(ctx context.Context, c domain.SearchCriteria) ([]domain.RoomProjection, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.rooms.Search(ctx, c)
}
