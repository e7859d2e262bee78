package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"rooms_svc/internal/app"
	"rooms_svc/internal/domain"
	"rooms_svc/internal/storage/memory"
)

// fakeCache is an in-memory domain.Cache that counts hits and misses.
type fakeCache struct {
	data   map[string][]byte
	hits   int
	misses int
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	b, ok := c.data[key]
	if !ok {
		c.misses++
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = b
	return nil
}

func (c *fakeCache) Del(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func TestGetRoom_CacheAside(t *testing.T) {
	rooms := memory.NewProjectionRepo()
	cache := newFakeCache()
	ctx := context.Background()
	_ = rooms.Upsert(ctx, domain.RoomProjection{RoomID: 1, Number: "101", NightlyPrice: 90})
	svc := app.NewRoomQueryService(rooms, cache, time.Minute)

	first, err := svc.GetRoom(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.GetRoom(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if cache.misses != 1 || cache.hits != 1 {
		t.Fatalf("hits=%d misses=%d, want one miss then one hit", cache.hits, cache.misses)
	}
	if first.Number != second.Number || second.NightlyPrice != 90 {
		t.Fatalf("cached read diverged: %+v vs %+v", first, second)
	}
}

func TestGetRoom_MissingRoom(t *testing.T) {
	svc := app.NewRoomQueryService(memory.NewProjectionRepo(), nil, time.Minute)
	if _, err := svc.GetRoom(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSearchAvailable_ValidatesBeforeQuerying(t *testing.T) {
	svc := app.NewRoomQueryService(memory.NewProjectionRepo(), nil, time.Minute)
	in := date(2026, time.March, 1)
	_, err := svc.SearchAvailable(context.Background(), domain.SearchCriteria{CheckIn: &in})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for a one-sided range, got %v", err)
	}
}

func TestLifecycleInvalidatesCachedRoom(t *testing.T) {
	rooms := memory.NewProjectionRepo()
	cache := newFakeCache()
	ctx := context.Background()
	_ = rooms.Upsert(ctx, domain.RoomProjection{RoomID: 1})

	queries := app.NewRoomQueryService(rooms, cache, time.Minute)
	reservations := app.NewReservationService(memory.NewReservationRepo(), rooms, cache)

	if _, err := queries.GetRoom(ctx, 1); err != nil {
		t.Fatal(err)
	}
	r, err := reservations.Create(ctx, domain.Reservation{
		RoomID:   1,
		CheckIn:  date(2026, time.April, 1),
		CheckOut: date(2026, time.April, 5),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := queries.GetRoom(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Reservations) != 1 || got.Reservations[0].ReservationID != r.ID {
		t.Fatalf("read after create = %+v, want the fresh summary, not the cached copy", got.Reservations)
	}
}
