package mongo

import (
	"go.mongodb.org/mongo-driver/bson"

	"rooms_svc/internal/domain"
)

// blockingStates are the summary states that occupy a date range.
// RESERVADA and the terminal/cancelled states never block.
var blockingStates = bson.A{
	string(domain.StateConfirmada),
	string(domain.StateEfectuada),
	string(domain.StateBloqueada),
	string(domain.StateCerrada),
}

// buildSearchFilter compiles the criteria into one compound filter.
// Field conditions at the top level AND together; the availability check
// is a disjunction: no reservation list, an empty one, or no blocking
// summary whose half-open interval overlaps the requested range.
func buildSearchFilter(c domain.SearchCriteria) bson.M {
	filter := bson.M{}

	if c.GuestCount != nil {
		filter["capacity"] = bson.M{"$gte": *c.GuestCount}
	}

	if c.MinPrice != nil || c.MaxPrice != nil {
		price := bson.M{}
		if c.MinPrice != nil {
			price["$gte"] = *c.MinPrice
		}
		if c.MaxPrice != nil {
			price["$lte"] = *c.MaxPrice
		}
		filter["nightlyPrice"] = price
	}

	if c.MinCategory != nil || c.MaxCategory != nil {
		cat := bson.M{}
		if c.MinCategory != nil {
			cat["$gte"] = *c.MinCategory
		}
		if c.MaxCategory != nil {
			cat["$lte"] = *c.MaxCategory
		}
		filter["hotel.category"] = cat
	}

	if len(c.Amenities) > 0 {
		filter["amenities"] = bson.M{"$all": c.Amenities}
	}

	if c.HasGeo() {
		filter["hotel.location"] = bson.M{
			"$nearSphere": bson.M{
				"$geometry":    newGeoPoint(*c.Lat, *c.Lon),
				"$maxDistance": *c.MaxDistanceMeters,
			},
		}
	}

	if c.HasDateRange() {
		filter["$or"] = bson.A{
			bson.M{"reservations": bson.M{"$exists": false}},
			bson.M{"reservations": bson.M{"$size": 0}},
			bson.M{"reservations": bson.M{"$not": bson.M{"$elemMatch": bson.M{
				"state":    bson.M{"$in": blockingStates},
				"checkIn":  bson.M{"$lt": *c.CheckOut},
				"checkOut": bson.M{"$gt": *c.CheckIn},
			}}}},
		}
	}

	return filter
}
