package domain

import (
	"context"
	"time"
)

// RoomProjectionRepository is the document-store port for the denormalized
// room collection. Patch methods write absolute values; re-applying them
// is harmless.
type RoomProjectionRepository interface {
	Upsert(ctx context.Context, r RoomProjection) error
	GetByRoomID(ctx context.Context, roomID int64) (RoomProjection, error)
	List(ctx context.Context) ([]RoomProjection, error)
	ApplyPatch(ctx context.Context, roomID int64, p ProjectionPatch) error
	RepriceRoomType(ctx context.Context, roomTypeID int64, nightlyPrice float64) (int64, error)
	DeleteByRoomID(ctx context.Context, roomID int64) error
	Search(ctx context.Context, c SearchCriteria) ([]RoomProjection, error)

	// Embedded-summary writes, used only by the reservation lifecycle.
	AppendSummary(ctx context.Context, roomID int64, s ReservationSummary) error
	PatchSummary(ctx context.Context, roomID int64, p SummaryPatch) error
	PullSummary(ctx context.Context, roomID int64, reservationID string) error
}

// ReservationRepository is the ledger port; it is the only authority on
// reservation lifecycle state.
type ReservationRepository interface {
	Insert(ctx context.Context, r Reservation) error
	Get(ctx context.Context, id string) (Reservation, error)
	Update(ctx context.Context, r Reservation) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Reservation, error)
}

// MasterRepository reads and writes the relational master store. Lookups
// feed the change-event publisher; the write paths are the thin admin
// surface that triggers it.
type MasterRepository interface {
	RoomType(ctx context.Context, id int64) (RoomType, error)
	Hotel(ctx context.Context, id int64) (Hotel, error)
	// CurrentRate returns the first rate whose window contains at;
	// ok is false when no rate is current.
	CurrentRate(ctx context.Context, roomTypeID int64, at time.Time) (rate Rate, ok bool, err error)

	SaveRoom(ctx context.Context, r *Room) (isNew bool, err error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	InsertRate(ctx context.Context, r *Rate) error
}

// EventPublisher pushes one event onto the bus.
type EventPublisher interface {
	Publish(ctx context.Context, ev RoomEvent) error
}

// ProcessedEventStore records event ids the consumer has already applied.
// MarkProcessed returns false when the id was seen before. Forget releases
// a mark whose apply failed, so the broker's redelivery gets through.
type ProcessedEventStore interface {
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
