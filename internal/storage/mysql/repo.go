// Package mysql implements the relational master-store port. Pricing,
// room types and hotels live here; the projection only ever receives
// denormalized snapshots assembled from these tables.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"rooms_svc/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) RoomType(ctx context.Context, id int64) (domain.RoomType, error) {
	var rt domain.RoomType
	err := r.db.QueryRowContext(ctx, getRoomTypeSQL, id).
		Scan(&rt.ID, &rt.Name, &rt.Description, &rt.Capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RoomType{}, domain.ErrNotFound
	}
	return rt, err
}

func (r *Repo) Hotel(ctx context.Context, id int64) (domain.Hotel, error) {
	var (
		h             domain.Hotel
		phone, email  sql.NullString
		amenitiesJSON []byte
	)
	err := r.db.QueryRowContext(ctx, getHotelSQL, id).
		Scan(&h.ID, &h.Name, &h.Address, &h.Lat, &h.Lon, &phone, &email, &h.Category, &amenitiesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Hotel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Hotel{}, err
	}
	h.Phone = phone.String
	h.ContactEmail = email.String
	if len(amenitiesJSON) > 0 {
		if err := json.Unmarshal(amenitiesJSON, &h.Amenities); err != nil {
			return domain.Hotel{}, err
		}
	}
	return h, nil
}

func (r *Repo) CurrentRate(ctx context.Context, roomTypeID int64, at time.Time) (domain.Rate, bool, error) {
	var (
		rate       domain.Rate
		start, end sql.NullTime
	)
	day := at.Format("2006-01-02")
	err := r.db.QueryRowContext(ctx, currentRateSQL, roomTypeID, day, day).
		Scan(&rate.ID, &rate.RoomTypeID, &rate.NightlyPrice, &start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Rate{}, false, nil
	}
	if err != nil {
		return domain.Rate{}, false, err
	}
	if start.Valid {
		rate.Start = &start.Time
	}
	if end.Valid {
		rate.End = &end.Time
	}
	return rate, true, nil
}

func (r *Repo) GetRoom(ctx context.Context, id int64) (domain.Room, error) {
	var (
		room    domain.Room
		hotelID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, getRoomSQL, id).
		Scan(&room.ID, &room.Number, &room.RoomTypeID, &hotelID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Room{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	if hotelID.Valid {
		room.HotelID = &hotelID.Int64
	}
	return room, nil
}

// SaveRoom inserts when the id is zero and updates otherwise; the caller
// uses isNew to pick the event kind.
func (r *Repo) SaveRoom(ctx context.Context, room *domain.Room) (bool, error) {
	hotelID := sql.NullInt64{}
	if room.HotelID != nil {
		hotelID = sql.NullInt64{Int64: *room.HotelID, Valid: true}
	}
	if room.ID == 0 {
		res, err := r.db.ExecContext(ctx, insertRoomSQL, room.Number, room.RoomTypeID, hotelID)
		if err != nil {
			return false, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return false, err
		}
		room.ID = id
		return true, nil
	}
	res, err := r.db.ExecContext(ctx, updateRoomSQL, room.Number, room.RoomTypeID, hotelID, room.ID)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is 0 for a no-op update too; confirm existence.
		if _, err := r.GetRoom(ctx, room.ID); err != nil {
			return false, err
		}
	}
	return false, nil
}

func (r *Repo) DeleteRoom(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteRoomSQL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) InsertRate(ctx context.Context, rate *domain.Rate) error {
	var start, end any
	if rate.Start != nil {
		start = rate.Start.Format("2006-01-02")
	}
	if rate.End != nil {
		end = rate.End.Format("2006-01-02")
	}
	res, err := r.db.ExecContext(ctx, insertRateSQL, rate.RoomTypeID, rate.NightlyPrice, start, end)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rate.ID = id
	return nil
}
