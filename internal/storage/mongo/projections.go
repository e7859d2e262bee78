package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rooms_svc/internal/domain"
)

type ProjectionRepo struct {
	col *mongo.Collection
}

func NewProjectionRepo(db *mongo.Database) *ProjectionRepo {
	return &ProjectionRepo{col: db.Collection(roomsCollection)}
}

// Upsert writes the projection keyed by external room id. A replayed
// CREAR only resets master-owned fields; $setOnInsert keeps any embedded
// summaries the lifecycle engine already appended.
func (r *ProjectionRepo) Upsert(ctx context.Context, p domain.RoomProjection) error {
	set := bson.M{
		"roomId":              p.RoomID,
		"number":              p.Number,
		"roomTypeId":          p.RoomTypeID,
		"roomTypeName":        p.RoomTypeName,
		"roomTypeDescription": p.RoomTypeDesc,
		"capacity":            p.Capacity,
		"nightlyPrice":        p.NightlyPrice,
		"amenities":           p.Amenities,
	}
	if p.Hotel != nil {
		set["hotel"] = toHotelDoc(p.Hotel)
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"roomId": p.RoomID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"reservations": bson.A{}},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *ProjectionRepo) GetByRoomID(ctx context.Context, roomID int64) (domain.RoomProjection, error) {
	var doc roomDoc
	err := r.col.FindOne(ctx, bson.M{"roomId": roomID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.RoomProjection{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.RoomProjection{}, err
	}
	return fromRoomDoc(doc), nil
}

func (r *ProjectionRepo) List(ctx context.Context) ([]domain.RoomProjection, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	return decodeRooms(ctx, cur)
}

func (r *ProjectionRepo) ApplyPatch(ctx context.Context, roomID int64, p domain.ProjectionPatch) error {
	if p.IsZero() {
		return nil
	}
	set := bson.M{}
	if p.NightlyPrice != nil {
		set["nightlyPrice"] = *p.NightlyPrice
	}
	if p.Capacity != nil {
		set["capacity"] = *p.Capacity
	}
	if p.Amenities != nil {
		set["amenities"] = p.Amenities
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"roomId": roomID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("room %d: %w", roomID, domain.ErrNotFound)
	}
	return nil
}

// RepriceRoomType sets the nightly price of every projection of the room
// type, regardless of individual room identity.
func (r *ProjectionRepo) RepriceRoomType(ctx context.Context, roomTypeID int64, nightlyPrice float64) (int64, error) {
	res, err := r.col.UpdateMany(ctx,
		bson.M{"roomTypeId": roomTypeID},
		bson.M{"$set": bson.M{"nightlyPrice": nightlyPrice}},
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (r *ProjectionRepo) DeleteByRoomID(ctx context.Context, roomID int64) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"roomId": roomID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProjectionRepo) Search(ctx context.Context, c domain.SearchCriteria) ([]domain.RoomProjection, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	cur, err := r.col.Find(ctx, buildSearchFilter(c))
	if err != nil {
		return nil, err
	}
	return decodeRooms(ctx, cur)
}

func (r *ProjectionRepo) AppendSummary(ctx context.Context, roomID int64, s domain.ReservationSummary) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"roomId": roomID},
		bson.M{"$push": bson.M{"reservations": toSummaryDoc(s)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("room %d: %w", roomID, domain.ErrNotFound)
	}
	return nil
}

// PatchSummary rewrites the state of the summary matched by reservation
// id through the positional operator.
func (r *ProjectionRepo) PatchSummary(ctx context.Context, roomID int64, p domain.SummaryPatch) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"roomId": roomID, "reservations.reservationId": p.ReservationID},
		bson.M{"$set": bson.M{"reservations.$.state": string(p.State)}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("summary %s on room %d: %w", p.ReservationID, roomID, domain.ErrNotFound)
	}
	return nil
}

// PullSummary removes the embedded entry entirely (cancellation path).
func (r *ProjectionRepo) PullSummary(ctx context.Context, roomID int64, reservationID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"roomId": roomID},
		bson.M{"$pull": bson.M{"reservations": bson.M{"reservationId": reservationID}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("room %d: %w", roomID, domain.ErrNotFound)
	}
	return nil
}

func decodeRooms(ctx context.Context, cur *mongo.Cursor) ([]domain.RoomProjection, error) {
	defer cur.Close(ctx)
	var out []domain.RoomProjection
	for cur.Next(ctx) {
		var doc roomDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, fromRoomDoc(doc))
	}
	return out, cur.Err()
}
