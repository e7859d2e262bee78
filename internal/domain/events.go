package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventRoomCreated EventKind = "CREAR"
	EventRoomUpdated EventKind = "ACTUALIZAR_DATOS"
	EventRateChanged EventKind = "ACTUALIZAR_PRECIO"
	EventRoomDeleted EventKind = "ELIMINAR"
)

// RoomSnapshot is the denormalized room payload carried by CREAR and
// ACTUALIZAR_DATOS events: room, resolved type, effective price, owning
// hotel and amenities all flattened at publish time.
type RoomSnapshot struct {
	RoomID              int64          `json:"roomId"`
	Number              string         `json:"number,omitempty"`
	RoomTypeID          int64          `json:"roomTypeId,omitempty"`
	RoomTypeName        string         `json:"roomTypeName,omitempty"`
	RoomTypeDescription string         `json:"roomTypeDescription,omitempty"`
	Capacity            int            `json:"capacity,omitempty"`
	NightlyPrice        float64        `json:"nightlyPrice,omitempty"`
	Amenities           []string       `json:"amenities,omitempty"`
	Hotel               *HotelSnapshot `json:"hotel,omitempty"`
}

// RateChange is the ACTUALIZAR_PRECIO payload; it targets a room type,
// not an individual room.
type RateChange struct {
	RoomTypeID int64   `json:"roomTypeId"`
	NewPrice   float64 `json:"newPrice"`
}

// RoomEvent is the bus envelope. Construct events through the New*
// functions so each kind carries exactly the payload it needs; Validate
// enforces the same shape on the consuming side. EventID makes redelivery
// detectable: consumers record processed ids and drop duplicates.
type RoomEvent struct {
	EventID string        `json:"eventId"`
	Kind    EventKind     `json:"eventType"`
	Room    *RoomSnapshot `json:"room,omitempty"`
	Rate    *RateChange   `json:"rate,omitempty"`
}

func NewRoomCreated(snap RoomSnapshot) RoomEvent {
	return RoomEvent{EventID: uuid.NewString(), Kind: EventRoomCreated, Room: &snap}
}

func NewRoomUpdated(snap RoomSnapshot) RoomEvent {
	return RoomEvent{EventID: uuid.NewString(), Kind: EventRoomUpdated, Room: &snap}
}

// NewRoomDeleted carries only the room id.
func NewRoomDeleted(roomID int64) RoomEvent {
	return RoomEvent{EventID: uuid.NewString(), Kind: EventRoomDeleted, Room: &RoomSnapshot{RoomID: roomID}}
}

func NewRateChanged(roomTypeID int64, newPrice float64) RoomEvent {
	return RoomEvent{EventID: uuid.NewString(), Kind: EventRateChanged, Rate: &RateChange{RoomTypeID: roomTypeID, NewPrice: newPrice}}
}

// Validate rejects envelopes whose payload does not match their kind.
// An unrecognized kind returns ErrUnknownEventKind so the consumer can
// dead-letter the message instead of retrying it forever.
func (e RoomEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: missing eventId", ErrInvalidInput)
	}
	switch e.Kind {
	case EventRoomCreated, EventRoomUpdated:
		if e.Room == nil || e.Room.RoomID == 0 {
			return fmt.Errorf("%w: %s event without room payload", ErrInvalidInput, e.Kind)
		}
	case EventRoomDeleted:
		if e.Room == nil || e.Room.RoomID == 0 {
			return fmt.Errorf("%w: ELIMINAR event without room id", ErrInvalidInput)
		}
	case EventRateChanged:
		if e.Rate == nil || e.Rate.RoomTypeID == 0 {
			return fmt.Errorf("%w: ACTUALIZAR_PRECIO event without rate payload", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEventKind, e.Kind)
	}
	return nil
}
