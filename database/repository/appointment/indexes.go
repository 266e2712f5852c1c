package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes on the appointments collection. The
// compound (provider_id, date, status, start, end) index keeps the conflict
// scan inside InsertIfFree an index lookup rather than a collection scan.
func (r *MongoAppointmentRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys: bson.D{
				{Key: "provider_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "status", Value: 1},
				{Key: "start", Value: 1},
				{Key: "end", Value: 1},
			},
			Options: options.Index().SetName("provider_date_status_range_idx"),
		},
		{
			Keys:    bson.D{{Key: "subject_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("subject_date_idx"),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}

	// One guard document per provider per date; the unique index makes
	// concurrent first-booking upserts collide instead of duplicating.
	calendarIdx := mongo.IndexModel{
		Keys:    bson.D{{Key: "provider_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("unique_provider_date"),
	}
	if _, err := r.calendar.Indexes().CreateOne(ctx, calendarIdx); err != nil {
		return fmt.Errorf("failed to create calendar index: %w", err)
	}
	return nil
}
