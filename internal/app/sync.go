package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"rooms_svc/internal/domain"
)

// Synchronizer applies bus events to the room projection store. It is an
// idempotent consumer: each event id is recorded when its effect lands
// (a failed apply releases the record again), so duplicates of applied
// events are acknowledged without effect while requeued failures still
// get their redelivery.
type Synchronizer struct {
	rooms domain.RoomProjectionRepository
	seen  domain.ProcessedEventStore
	cache domain.Cache
}

func NewSynchronizer(rooms domain.RoomProjectionRepository, seen domain.ProcessedEventStore, cache domain.Cache) *Synchronizer {
	return &Synchronizer{rooms: rooms, seen: seen, cache: cache}
}

// Handle dispatches one event by kind. Returned errors wrapping
// ErrUnknownEventKind or ErrInvalidInput are fatal for the message (the
// bus adapter dead-letters them); anything else is retriable.
func (s *Synchronizer) Handle(ctx context.Context, ev domain.RoomEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	if s.seen != nil {
		first, err := s.seen.MarkProcessed(ctx, ev.EventID)
		if err != nil {
			return fmt.Errorf("mark processed: %w", err)
		}
		if !first {
			log.Debug().Str("event_id", ev.EventID).Str("kind", string(ev.Kind)).Msg("duplicate event discarded")
			return nil
		}
	}

	if err := s.apply(ctx, ev); err != nil {
		// Release the mark or the requeued redelivery would be discarded
		// as a duplicate and the event lost.
		if s.seen != nil {
			if ferr := s.seen.Forget(ctx, ev.EventID); ferr != nil {
				log.Error().Err(ferr).Str("event_id", ev.EventID).Msg("release of processed mark failed; redelivery will be dropped")
			}
		}
		return err
	}
	return nil
}

func (s *Synchronizer) apply(ctx context.Context, ev domain.RoomEvent) error {
	switch ev.Kind {
	case domain.EventRoomCreated:
		if err := s.rooms.Upsert(ctx, projectionFrom(ev.Room)); err != nil {
			return fmt.Errorf("upsert room %d: %w", ev.Room.RoomID, err)
		}
		s.invalidate(ctx, ev.Room.RoomID)

	case domain.EventRoomUpdated:
		// Only price, capacity and amenities move post-creation in this flow.
		patch := domain.ProjectionPatch{
			NightlyPrice: &ev.Room.NightlyPrice,
			Capacity:     &ev.Room.Capacity,
			Amenities:    ev.Room.Amenities,
		}
		if err := s.rooms.ApplyPatch(ctx, ev.Room.RoomID, patch); err != nil {
			// A missing projection on update is reportable: the CREAR for
			// this room was lost or not applied yet.
			return fmt.Errorf("patch room %d: %w", ev.Room.RoomID, err)
		}
		s.invalidate(ctx, ev.Room.RoomID)

	case domain.EventRateChanged:
		n, err := s.rooms.RepriceRoomType(ctx, ev.Rate.RoomTypeID, ev.Rate.NewPrice)
		if err != nil {
			return fmt.Errorf("reprice room type %d: %w", ev.Rate.RoomTypeID, err)
		}
		log.Info().Int64("room_type_id", ev.Rate.RoomTypeID).
			Float64("price", ev.Rate.NewPrice).
			Int64("rooms", n).
			Msg("room type repriced")

	case domain.EventRoomDeleted:
		err := s.rooms.DeleteByRoomID(ctx, ev.Room.RoomID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete room %d: %w", ev.Room.RoomID, err)
		}
		s.invalidate(ctx, ev.Room.RoomID)
	}
	return nil
}

func (s *Synchronizer) invalidate(ctx context.Context, roomID int64) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, roomCacheKey(roomID))
	}
}

// projectionFrom builds a fresh projection from a CREAR payload. The
// embedded reservation list starts empty; only the lifecycle engine
// writes to it.
func projectionFrom(snap *domain.RoomSnapshot) domain.RoomProjection {
	return domain.RoomProjection{
		RoomID:       snap.RoomID,
		Number:       snap.Number,
		RoomTypeID:   snap.RoomTypeID,
		RoomTypeName: snap.RoomTypeName,
		RoomTypeDesc: snap.RoomTypeDescription,
		Capacity:     snap.Capacity,
		NightlyPrice: snap.NightlyPrice,
		Amenities:    snap.Amenities,
		Hotel:        snap.Hotel,
		Reservations: []domain.ReservationSummary{},
	}
}
