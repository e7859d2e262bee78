package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"rooms_svc/internal/app"
	"rooms_svc/internal/domain"
)

// fakeMaster serves canned master-store rows.
type fakeMaster struct {
	roomTypes map[int64]domain.RoomType
	hotels    map[int64]domain.Hotel
	rates     map[int64]domain.Rate // keyed by room type

	rooms  map[int64]domain.Room
	nextID int64
}

func newFakeMaster() *fakeMaster {
	return &fakeMaster{
		roomTypes: map[int64]domain.RoomType{},
		hotels:    map[int64]domain.Hotel{},
		rates:     map[int64]domain.Rate{},
		rooms:     map[int64]domain.Room{},
		nextID:    100,
	}
}

func (f *fakeMaster) RoomType(_ context.Context, id int64) (domain.RoomType, error) {
	rt, ok := f.roomTypes[id]
	if !ok {
		return domain.RoomType{}, domain.ErrNotFound
	}
	return rt, nil
}

func (f *fakeMaster) Hotel(_ context.Context, id int64) (domain.Hotel, error) {
	h, ok := f.hotels[id]
	if !ok {
		return domain.Hotel{}, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeMaster) CurrentRate(_ context.Context, roomTypeID int64, at time.Time) (domain.Rate, bool, error) {
	r, ok := f.rates[roomTypeID]
	if !ok || !r.CurrentAt(at) {
		return domain.Rate{}, false, nil
	}
	return r, true, nil
}

func (f *fakeMaster) SaveRoom(_ context.Context, r *domain.Room) (bool, error) {
	isNew := r.ID == 0
	if isNew {
		f.nextID++
		r.ID = f.nextID
	}
	f.rooms[r.ID] = *r
	return isNew, nil
}

func (f *fakeMaster) GetRoom(_ context.Context, id int64) (domain.Room, error) {
	r, ok := f.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeMaster) DeleteRoom(_ context.Context, id int64) error {
	if _, ok := f.rooms[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rooms, id)
	return nil
}

func (f *fakeMaster) InsertRate(_ context.Context, r *domain.Rate) error {
	r.ID = 1
	f.rates[r.RoomTypeID] = *r
	return nil
}

// captureBus records published events; fails every publish when broken.
type captureBus struct {
	events []domain.RoomEvent
	broken bool
}

func (b *captureBus) Publish(_ context.Context, ev domain.RoomEvent) error {
	if b.broken {
		return errors.New("broker unavailable")
	}
	b.events = append(b.events, ev)
	return nil
}

func seededMaster() *fakeMaster {
	m := newFakeMaster()
	m.roomTypes[10] = domain.RoomType{ID: 10, Name: "Doble", Description: "dos plazas", Capacity: 2}
	m.hotels[5] = domain.Hotel{
		ID: 5, Name: "Hotel Centro", Address: "San Martín 1200",
		Lat: -31.63, Lon: -60.70, Category: 4,
		Amenities: []string{"WIFI", "POOL"},
	}
	return m
}

func hotelID(id int64) *int64 { return &id }

func TestRoomSaved_NewRoomSnapshot(t *testing.T) {
	m := seededMaster()
	start := date(2026, time.January, 1)
	m.rates[10] = domain.Rate{ID: 1, RoomTypeID: 10, NightlyPrice: 150, Start: &start}
	bus := &captureBus{}
	pub := app.NewChangePublisher(m, bus)

	room := domain.Room{ID: 1, Number: "204", RoomTypeID: 10, HotelID: hotelID(5)}
	if err := pub.RoomSaved(context.Background(), room, true); err != nil {
		t.Fatal(err)
	}

	if len(bus.events) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.events))
	}
	ev := bus.events[0]
	if ev.Kind != domain.EventRoomCreated || ev.EventID == "" {
		t.Fatalf("event = %+v, want CREAR with id", ev)
	}
	snap := ev.Room
	if snap.RoomTypeName != "Doble" || snap.Capacity != 2 || snap.NightlyPrice != 150 {
		t.Fatalf("snapshot = %+v, want resolved type and current rate", snap)
	}
	if snap.Hotel == nil || snap.Hotel.Name != "Hotel Centro" || len(snap.Amenities) != 2 {
		t.Fatalf("snapshot = %+v, want embedded hotel and its amenities", snap)
	}
}

func TestRoomSaved_NoCurrentRateFallsBackToZero(t *testing.T) {
	m := seededMaster()
	bus := &captureBus{}
	pub := app.NewChangePublisher(m, bus)

	room := domain.Room{ID: 1, Number: "204", RoomTypeID: 10}
	if err := pub.RoomSaved(context.Background(), room, false); err != nil {
		t.Fatal(err)
	}
	ev := bus.events[0]
	if ev.Kind != domain.EventRoomUpdated {
		t.Fatalf("kind = %s, want ACTUALIZAR_DATOS for an existing room", ev.Kind)
	}
	if ev.Room.NightlyPrice != 0 {
		t.Fatalf("price = %v, want 0 when no rate is current", ev.Room.NightlyPrice)
	}
	if ev.Room.Hotel != nil {
		t.Fatal("room without a hotel must publish no hotel block")
	}
}

func TestRoomSaved_DanglingRoomTypeSurfaces(t *testing.T) {
	bus := &captureBus{}
	pub := app.NewChangePublisher(newFakeMaster(), bus)
	err := pub.RoomSaved(context.Background(), domain.Room{ID: 1, RoomTypeID: 99}, true)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if len(bus.events) != 0 {
		t.Fatal("nothing must be published for an unresolvable snapshot")
	}
}

func TestRoomSaved_PublishFailureSwallowed(t *testing.T) {
	m := seededMaster()
	pub := app.NewChangePublisher(m, &captureBus{broken: true})
	if err := pub.RoomSaved(context.Background(), domain.Room{ID: 1, RoomTypeID: 10}, true); err != nil {
		t.Fatalf("publish failure must not surface, got %v", err)
	}
}

func TestRoomDeleted_CarriesOnlyRoomID(t *testing.T) {
	bus := &captureBus{}
	pub := app.NewChangePublisher(newFakeMaster(), bus)
	pub.RoomDeleted(context.Background(), 42)

	ev := bus.events[0]
	if ev.Kind != domain.EventRoomDeleted || ev.Room.RoomID != 42 {
		t.Fatalf("event = %+v, want ELIMINAR for room 42", ev)
	}
	if ev.Room.Number != "" || ev.Room.Hotel != nil {
		t.Fatalf("delete payload = %+v, want the id alone", ev.Room)
	}
}

func TestCreateRate_AnnouncesOnlyCurrentRates(t *testing.T) {
	m := seededMaster()
	bus := &captureBus{}
	svc := app.NewMasterService(m, app.NewChangePublisher(m, bus))
	ctx := context.Background()

	// A window already containing today fans out.
	if _, err := svc.CreateRate(ctx, domain.Rate{RoomTypeID: 10, NightlyPrice: 130}); err != nil {
		t.Fatal(err)
	}
	if len(bus.events) != 1 || bus.events[0].Kind != domain.EventRateChanged {
		t.Fatalf("events = %+v, want one ACTUALIZAR_PRECIO", bus.events)
	}
	if bus.events[0].Rate.NewPrice != 130 || bus.events[0].Rate.RoomTypeID != 10 {
		t.Fatalf("rate payload = %+v", bus.events[0].Rate)
	}

	// A future window stays quiet until it becomes effective.
	start := time.Now().Add(48 * time.Hour)
	if _, err := svc.CreateRate(ctx, domain.Rate{RoomTypeID: 10, NightlyPrice: 200, Start: &start}); err != nil {
		t.Fatal(err)
	}
	if len(bus.events) != 1 {
		t.Fatalf("future rate must not publish, events = %d", len(bus.events))
	}
}
