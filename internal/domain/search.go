package domain

import (
	"fmt"
	"math"
	"time"
)

// SearchCriteria is the availability filter set. Every field is optional;
// supplied filters combine with logical AND.
type SearchCriteria struct {
	CheckIn           *time.Time
	CheckOut          *time.Time
	GuestCount        *int
	MinPrice          *float64
	MaxPrice          *float64
	MinCategory       *int
	MaxCategory       *int
	Amenities         []string
	Lat               *float64
	Lon               *float64
	MaxDistanceMeters *float64
}

func (c SearchCriteria) HasDateRange() bool { return c.CheckIn != nil && c.CheckOut != nil }

func (c SearchCriteria) HasGeo() bool {
	return c.Lat != nil && c.Lon != nil && c.MaxDistanceMeters != nil
}

// Validate rejects internally inconsistent criteria: a one-sided date
// range, check-out not after check-in, or a partial geo triple.
func (c SearchCriteria) Validate() error {
	if (c.CheckIn == nil) != (c.CheckOut == nil) {
		return fmt.Errorf("%w: checkIn and checkOut must be supplied together", ErrInvalidInput)
	}
	if c.HasDateRange() && !c.CheckOut.After(*c.CheckIn) {
		return fmt.Errorf("%w: checkOut must be after checkIn", ErrInvalidInput)
	}
	geoFields := 0
	for _, set := range []bool{c.Lat != nil, c.Lon != nil, c.MaxDistanceMeters != nil} {
		if set {
			geoFields++
		}
	}
	if geoFields != 0 && geoFields != 3 {
		return fmt.Errorf("%w: lat, long and maxDistanceMeters must be supplied together", ErrInvalidInput)
	}
	return nil
}

// Overlaps implements half-open interval intersection: [aStart, aEnd)
// and [bStart, bEnd) overlap iff aStart < bEnd and aEnd > bStart.
// Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Matches evaluates the criteria against a single projection in memory.
// The Mongo repository compiles the same semantics into a compound query;
// this predicate backs the in-memory repository and is the reference for
// both.
func (c SearchCriteria) Matches(r RoomProjection) bool {
	if c.GuestCount != nil && r.Capacity < *c.GuestCount {
		return false
	}
	if c.MinPrice != nil && r.NightlyPrice < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && r.NightlyPrice > *c.MaxPrice {
		return false
	}
	if c.MinCategory != nil && (r.Hotel == nil || r.Hotel.Category < *c.MinCategory) {
		return false
	}
	if c.MaxCategory != nil && (r.Hotel == nil || r.Hotel.Category > *c.MaxCategory) {
		return false
	}
	if !hasAllAmenities(r.Amenities, c.Amenities) {
		return false
	}
	if c.HasGeo() {
		if r.Hotel == nil {
			return false
		}
		if haversineMeters(*c.Lat, *c.Lon, r.Hotel.Lat, r.Hotel.Lon) > *c.MaxDistanceMeters {
			return false
		}
	}
	if c.HasDateRange() {
		for _, s := range r.Reservations {
			if s.State.BlocksAvailability() && Overlaps(s.CheckIn, s.CheckOut, *c.CheckIn, *c.CheckOut) {
				return false
			}
		}
	}
	return true
}

// hasAllAmenities: the room's set must be a superset of the wanted set.
func hasAllAmenities(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	set := make(map[string]struct{}, len(have))
	for _, a := range have {
		set[a] = struct{}{}
	}
	for _, w := range want {
		if _, ok := set[w]; !ok {
			return false
		}
	}
	return true
}

const earthRadiusMeters = 6_371_000

// haversineMeters: great-circle distance between two lat/lon pairs.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
