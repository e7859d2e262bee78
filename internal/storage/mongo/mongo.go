// Package mongo implements the document-store ports on MongoDB: the
// denormalized room collection, the reservation ledger, and the
// processed-event record backing the idempotent consumer.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	roomsCollection        = "rooms"
	reservationsCollection = "reservations"
	processedCollection    = "processed_events"

	// Processed-event records only need to outlive the bus redelivery
	// horizon; 30 days is generous.
	processedTTL = 30 * 24 * time.Hour
)

// Connect opens a client and verifies the deployment is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the indexes the access patterns depend on:
// room lookup by external id, radius queries on the embedded hotel
// location, and duplicate-event detection.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(roomsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "roomId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "hotel.location", Value: "2dsphere"}},
		},
	})
	if err != nil {
		return err
	}
	_, err = db.Collection(processedCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "processedAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(processedTTL.Seconds())),
	})
	return err
}
