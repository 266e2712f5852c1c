package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes backing availability lookups. The unique
// index on (provider_id, date) enforces the one-exception-per-date invariant
// at the storage layer.
func (r *MongoAvailabilityRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.weeklyColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_provider"),
	}); err != nil {
		return fmt.Errorf("failed to create weekly availability index: %w", err)
	}

	if _, err := r.exceptionColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_provider_date"),
	}); err != nil {
		return fmt.Errorf("failed to create availability exception index: %w", err)
	}

	if _, err := r.policyColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "provider_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_provider"),
	}); err != nil {
		return fmt.Errorf("failed to create session policy index: %w", err)
	}
	return nil
}
