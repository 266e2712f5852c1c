package availabilityRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"counselhub/config"
	"counselhub/database"
	"counselhub/models"
)

const queryTimeout = 5 * time.Second

// MongoAvailabilityRepo implements AvailabilityRepository using MongoDB.
type MongoAvailabilityRepo struct {
	weeklyColl    *mongo.Collection
	exceptionColl *mongo.Collection
	policyColl    *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a new instance of MongoAvailabilityRepo.
func NewMongoAvailabilityRepo() *MongoAvailabilityRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoAvailabilityRepo{
		weeklyColl:    db.Collection("weekly_availability"),
		exceptionColl: db.Collection("availability_exceptions"),
		policyColl:    db.Collection("session_policies"),
	}
}

func (r *MongoAvailabilityRepo) GetWeekly(ctx context.Context, providerID string) (*models.WeeklyAvailability, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var weekly models.WeeklyAvailability
	filter := bson.M{"provider_id": providerID}
	if err := r.weeklyColl.FindOne(ctx, filter).Decode(&weekly); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching weekly availability for provider %s: %w", providerID, err)
	}
	return &weekly, nil
}

func (r *MongoAvailabilityRepo) UpsertWeekly(ctx context.Context, weekly *models.WeeklyAvailability) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"provider_id": weekly.ProviderID}
	update := bson.M{"$set": weekly}
	opts := options.Update().SetUpsert(true)
	if _, err := r.weeklyColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error upserting weekly availability for provider %s: %w", weekly.ProviderID, err)
	}
	return nil
}

func (r *MongoAvailabilityRepo) GetException(ctx context.Context, providerID, date string) (*models.AvailabilityException, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var exc models.AvailabilityException
	filter := bson.M{"provider_id": providerID, "date": date}
	if err := r.exceptionColl.FindOne(ctx, filter).Decode(&exc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching availability exception for provider %s on %s: %w", providerID, date, err)
	}
	return &exc, nil
}

func (r *MongoAvailabilityRepo) UpsertException(ctx context.Context, exc *models.AvailabilityException) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"provider_id": exc.ProviderID, "date": exc.Date}
	update := bson.M{"$set": exc}
	opts := options.Update().SetUpsert(true)
	if _, err := r.exceptionColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error upserting availability exception for provider %s on %s: %w", exc.ProviderID, exc.Date, err)
	}
	return nil
}

func (r *MongoAvailabilityRepo) DeleteException(ctx context.Context, providerID, date string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"provider_id": providerID, "date": date}
	res, err := r.exceptionColl.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("error deleting availability exception for provider %s on %s: %w", providerID, date, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoAvailabilityRepo) GetSessionPolicy(ctx context.Context, providerID string) (*models.SessionPolicy, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var policy models.SessionPolicy
	filter := bson.M{"provider_id": providerID}
	if err := r.policyColl.FindOne(ctx, filter).Decode(&policy); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching session policy for provider %s: %w", providerID, err)
	}
	return &policy, nil
}

func (r *MongoAvailabilityRepo) UpsertSessionPolicy(ctx context.Context, policy *models.SessionPolicy) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"provider_id": policy.ProviderID}
	update := bson.M{"$set": policy}
	opts := options.Update().SetUpsert(true)
	if _, err := r.policyColl.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error upserting session policy for provider %s: %w", policy.ProviderID, err)
	}
	return nil
}
