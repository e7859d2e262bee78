package mongo

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"rooms_svc/internal/domain"
)

func pint(i int) *int              { return &i }
func pfloat(f float64) *float64    { return &f }
func ptime(t time.Time) *time.Time { return &t }

func TestBuildSearchFilter_EmptyCriteria(t *testing.T) {
	got := buildSearchFilter(domain.SearchCriteria{})
	if len(got) != 0 {
		t.Fatalf("empty criteria must build an empty filter, got %v", got)
	}
}

func TestBuildSearchFilter_FieldConditions(t *testing.T) {
	c := domain.SearchCriteria{
		GuestCount:  pint(2),
		MinPrice:    pfloat(50),
		MaxPrice:    pfloat(150),
		MinCategory: pint(3),
		Amenities:   []string{"WIFI", "POOL"},
	}
	got := buildSearchFilter(c)

	if !reflect.DeepEqual(got["capacity"], bson.M{"$gte": 2}) {
		t.Fatalf("capacity = %v", got["capacity"])
	}
	if !reflect.DeepEqual(got["nightlyPrice"], bson.M{"$gte": 50.0, "$lte": 150.0}) {
		t.Fatalf("nightlyPrice = %v", got["nightlyPrice"])
	}
	if !reflect.DeepEqual(got["hotel.category"], bson.M{"$gte": 3}) {
		t.Fatalf("hotel.category = %v", got["hotel.category"])
	}
	if !reflect.DeepEqual(got["amenities"], bson.M{"$all": []string{"WIFI", "POOL"}}) {
		t.Fatalf("amenities = %v", got["amenities"])
	}
	if _, ok := got["$or"]; ok {
		t.Fatal("no dates given, no availability clause expected")
	}
}

func TestBuildSearchFilter_GeoClause(t *testing.T) {
	c := domain.SearchCriteria{Lat: pfloat(-31.63), Lon: pfloat(-60.70), MaxDistanceMeters: pfloat(5000)}
	got := buildSearchFilter(c)

	want := bson.M{
		"$nearSphere": bson.M{
			"$geometry":    newGeoPoint(-31.63, -60.70),
			"$maxDistance": 5000.0,
		},
	}
	if !reflect.DeepEqual(got["hotel.location"], want) {
		t.Fatalf("hotel.location = %v, want %v", got["hotel.location"], want)
	}
	// GeoJSON orders coordinates longitude first.
	pt := newGeoPoint(-31.63, -60.70)
	if pt.Coordinates[0] != -60.70 || pt.Coordinates[1] != -31.63 {
		t.Fatalf("coordinates = %v, want [lon, lat]", pt.Coordinates)
	}
}

func TestBuildSearchFilter_AvailabilityDisjunction(t *testing.T) {
	in := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	out := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	got := buildSearchFilter(domain.SearchCriteria{CheckIn: ptime(in), CheckOut: ptime(out)})

	or, ok := got["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("$or = %v, want three branches", got["$or"])
	}

	wantOverlap := bson.M{"reservations": bson.M{"$not": bson.M{"$elemMatch": bson.M{
		"state":    bson.M{"$in": blockingStates},
		"checkIn":  bson.M{"$lt": out},
		"checkOut": bson.M{"$gt": in},
	}}}}
	if !reflect.DeepEqual(or[2], wantOverlap) {
		t.Fatalf("overlap branch = %v, want %v", or[2], wantOverlap)
	}
}

func TestBlockingStates_MatchDomainRule(t *testing.T) {
	all := []domain.ReservationState{
		domain.StateReservada, domain.StateConfirmada, domain.StateEfectuada,
		domain.StateFinalizada, domain.StateAdeudada, domain.StateCancelada,
		domain.StateBloqueada, domain.StateCerrada,
	}
	inFilter := func(s domain.ReservationState) bool {
		for _, v := range blockingStates {
			if v == string(s) {
				return true
			}
		}
		return false
	}
	for _, s := range all {
		if inFilter(s) != s.BlocksAvailability() {
			t.Fatalf("state %s: filter and domain rule disagree", s)
		}
	}
}
