package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"rooms_svc/internal/domain"
)

// ChangePublisher assembles denormalized change events from the master
// store and pushes them onto the bus. Publishing is best-effort: a bus
// failure is logged and swallowed so the master-store write is never
// rolled back. The projection catches up on the next event for the room.
type ChangePublisher struct {
	master domain.MasterRepository
	bus    domain.EventPublisher
	now    func() time.Time
}

func NewChangePublisher(m domain.MasterRepository, bus domain.EventPublisher) *ChangePublisher {
	return &ChangePublisher{master: m, bus: bus, now: time.Now}
}

// RoomSaved emits CREAR for a new room, ACTUALIZAR_DATOS otherwise.
// Snapshot assembly errors (dangling room type reference) are surfaced;
// publish errors are not.
func (p *ChangePublisher) RoomSaved(ctx context.Context, room domain.Room, isNew bool) error {
	snap, err := p.snapshot(ctx, room)
	if err != nil {
		return err
	}
	ev := domain.NewRoomUpdated(snap)
	if isNew {
		ev = domain.NewRoomCreated(snap)
	}
	p.publish(ctx, ev)
	return nil
}

// RoomDeleted emits ELIMINAR carrying only the room id.
func (p *ChangePublisher) RoomDeleted(ctx context.Context, roomID int64) {
	p.publish(ctx, domain.NewRoomDeleted(roomID))
}

// RateEffective emits ACTUALIZAR_PRECIO for every room of the rate's
// type, independent of any single room.
func (p *ChangePublisher) RateEffective(ctx context.Context, rate domain.Rate) {
	p.publish(ctx, domain.NewRateChanged(rate.RoomTypeID, rate.NightlyPrice))
}

// snapshot resolves room type, optional hotel and the currently-effective
// rate into the flat event payload. No current rate means price 0.0.
func (p *ChangePublisher) snapshot(ctx context.Context, room domain.Room) (domain.RoomSnapshot, error) {
	rt, err := p.master.RoomType(ctx, room.RoomTypeID)
	if err != nil {
		return domain.RoomSnapshot{}, err
	}

	price := 0.0
	if rate, ok, err := p.master.CurrentRate(ctx, rt.ID, p.now()); err != nil {
		return domain.RoomSnapshot{}, err
	} else if ok {
		price = rate.NightlyPrice
	}

	snap := domain.RoomSnapshot{
		RoomID:              room.ID,
		Number:              room.Number,
		RoomTypeID:          rt.ID,
		RoomTypeName:        rt.Name,
		RoomTypeDescription: rt.Description,
		Capacity:            rt.Capacity,
		NightlyPrice:        price,
	}

	if room.HotelID != nil {
		h, err := p.master.Hotel(ctx, *room.HotelID)
		if err != nil {
			return domain.RoomSnapshot{}, err
		}
		snap.Amenities = h.Amenities
		snap.Hotel = &domain.HotelSnapshot{
			ID:           h.ID,
			Name:         h.Name,
			Address:      h.Address,
			Lat:          h.Lat,
			Lon:          h.Lon,
			Phone:        h.Phone,
			ContactEmail: h.ContactEmail,
			Category:     h.Category,
		}
	}
	return snap, nil
}

func (p *ChangePublisher) publish(ctx context.Context, ev domain.RoomEvent) {
	if err := p.bus.Publish(ctx, ev); err != nil {
		log.Error().Err(err).
			Str("event_id", ev.EventID).
			Str("kind", string(ev.Kind)).
			Msg("event publish failed; projection will diverge until next event")
	}
}
