package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"rooms_svc/internal/domain"
)

// MasterService is the thin admin surface over the relational master
// store. Every successful write fans out as a change event; event
// trouble never rolls the write back.
type MasterService struct {
	master    domain.MasterRepository
	publisher *ChangePublisher
	now       func() time.Time
}

func NewMasterService(m domain.MasterRepository, p *ChangePublisher) *MasterService {
	return &MasterService{master: m, publisher: p, now: time.Now}
}

func (s *MasterService) SaveRoom(ctx context.Context, room domain.Room) (domain.Room, error) {
	if room.RoomTypeID == 0 {
		return domain.Room{}, fmt.Errorf("%w: room type is required", domain.ErrInvalidInput)
	}
	// Validate references up front so the event snapshot can't dangle.
	if _, err := s.master.RoomType(ctx, room.RoomTypeID); err != nil {
		return domain.Room{}, fmt.Errorf("room type %d: %w", room.RoomTypeID, err)
	}
	if room.HotelID != nil {
		if _, err := s.master.Hotel(ctx, *room.HotelID); err != nil {
			return domain.Room{}, fmt.Errorf("hotel %d: %w", *room.HotelID, err)
		}
	}
	isNew, err := s.master.SaveRoom(ctx, &room)
	if err != nil {
		return domain.Room{}, err
	}
	if err := s.publisher.RoomSaved(ctx, room, isNew); err != nil {
		log.Error().Err(err).Int64("room_id", room.ID).Msg("room change event not published")
	}
	return room, nil
}

func (s *MasterService) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	return s.master.GetRoom(ctx, id)
}

func (s *MasterService) DeleteRoom(ctx context.Context, id int64) error {
	if err := s.master.DeleteRoom(ctx, id); err != nil {
		return err
	}
	s.publisher.RoomDeleted(ctx, id)
	return nil
}

// CreateRate stores the rate and, when its window already contains now,
// announces the new effective price for the room type.
func (s *MasterService) CreateRate(ctx context.Context, rate domain.Rate) (domain.Rate, error) {
	if rate.RoomTypeID == 0 {
		return domain.Rate{}, fmt.Errorf("%w: room type is required", domain.ErrInvalidInput)
	}
	if _, err := s.master.RoomType(ctx, rate.RoomTypeID); err != nil {
		return domain.Rate{}, fmt.Errorf("room type %d: %w", rate.RoomTypeID, err)
	}
	if err := s.master.InsertRate(ctx, &rate); err != nil {
		return domain.Rate{}, err
	}
	if rate.CurrentAt(s.now()) {
		s.publisher.RateEffective(ctx, rate)
	}
	return rate, nil
}
