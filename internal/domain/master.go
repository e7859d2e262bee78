package domain

import "time"

// Master-store entities. The relational store owns these; the projection
// only ever sees denormalized snapshots of them.

type Room struct {
	ID         int64
	Number     string
	RoomTypeID int64
	HotelID    *int64
}

type RoomType struct {
	ID          int64
	Name        string
	Description string
	Capacity    int
}

// Rate prices a room type per night. Open-ended when a boundary is nil.
type Rate struct {
	ID           int64
	RoomTypeID   int64
	NightlyPrice float64
	Start        *time.Time
	End          *time.Time
}

// CurrentAt reports whether the rate's window contains t. A rate with no
// window is always current.
func (r Rate) CurrentAt(t time.Time) bool {
	if r.Start != nil && r.Start.After(t) {
		return false
	}
	if r.End != nil && r.End.Before(t) {
		return false
	}
	return true
}

// Hotel as owned by the master store, amenities included.
type Hotel struct {
	ID           int64
	Name         string
	Address      string
	Lat, Lon     float64
	Phone        string
	ContactEmail string
	Category     int
	Amenities    []string
}
