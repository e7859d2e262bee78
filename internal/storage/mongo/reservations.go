package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"rooms_svc/internal/domain"
)

type ReservationRepo struct {
	col *mongo.Collection
}

func NewReservationRepo(db *mongo.Database) *ReservationRepo {
	return &ReservationRepo{col: db.Collection(reservationsCollection)}
}

func (r *ReservationRepo) Insert(ctx context.Context, res domain.Reservation) error {
	_, err := r.col.InsertOne(ctx, toReservationDoc(res))
	return err
}

func (r *ReservationRepo) Get(ctx context.Context, id string) (domain.Reservation, error) {
	var doc reservationDoc
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Reservation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Reservation{}, err
	}
	return fromReservationDoc(doc), nil
}

func (r *ReservationRepo) Update(ctx context.Context, res domain.Reservation) error {
	out, err := r.col.ReplaceOne(ctx, bson.M{"_id": res.ID}, toReservationDoc(res))
	if err != nil {
		return err
	}
	if out.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	out, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if out.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReservationRepo) List(ctx context.Context) ([]domain.Reservation, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []domain.Reservation
	for cur.Next(ctx) {
		var doc reservationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, fromReservationDoc(doc))
	}
	return out, cur.Err()
}

// ProcessedEvents discards duplicate bus deliveries: the event id is the
// document key, so the second insert of the same id fails with a
// duplicate-key error and reports the event as already applied.
type ProcessedEvents struct {
	col *mongo.Collection
}

func NewProcessedEvents(db *mongo.Database) *ProcessedEvents {
	return &ProcessedEvents{col: db.Collection(processedCollection)}
}

func (p *ProcessedEvents) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	_, err := p.col.InsertOne(ctx, bson.M{"_id": eventID, "processedAt": time.Now().UTC()})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *ProcessedEvents) Forget(ctx context.Context, eventID string) error {
	_, err := p.col.DeleteOne(ctx, bson.M{"_id": eventID})
	return err
}
