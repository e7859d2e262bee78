package domain

import "time"

// HotelSnapshot is the read-only hotel copy embedded in a room projection.
type HotelSnapshot struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"long"`
	Phone        string  `json:"phone,omitempty"`
	ContactEmail string  `json:"contactEmail,omitempty"`
	Category     int     `json:"category"`
}

// ReservationSummary mirrors the key fields of a reservation inside its
// room projection. Availability filtering reads reservation state from
// here and nowhere else.
type ReservationSummary struct {
	ReservationID string           `json:"reservationId"`
	CheckIn       time.Time        `json:"checkIn"`
	CheckOut      time.Time        `json:"checkOut"`
	TotalPrice    float64          `json:"totalPrice"`
	State         ReservationState `json:"state"`
}

// RoomProjection is the denormalized, search-optimized room document.
// Created by the first CREAR event for a room id, patched in place by
// later events, removed on ELIMINAR.
type RoomProjection struct {
	ID           string               `json:"id,omitempty"`
	RoomID       int64                `json:"roomId"`
	Number       string               `json:"number"`
	RoomTypeID   int64                `json:"roomTypeId"`
	RoomTypeName string               `json:"roomTypeName"`
	RoomTypeDesc string               `json:"roomTypeDescription"`
	Capacity     int                  `json:"capacity"`
	NightlyPrice float64              `json:"nightlyPrice"`
	Amenities    []string             `json:"amenities"`
	Hotel        *HotelSnapshot       `json:"hotel,omitempty"`
	Reservations []ReservationSummary `json:"reservations"`
}
