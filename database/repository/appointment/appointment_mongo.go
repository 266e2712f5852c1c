package appointmentRepo

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

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
// calendar holds one guard document per (provider_id, date); see
// InsertIfFree for why it exists.
type MongoAppointmentRepo struct {
	coll     *mongo.Collection
	calendar *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new instance of MongoAppointmentRepo.
func NewMongoAppointmentRepo() *MongoAppointmentRepo {
	db := database.MongoClient.Database(config.AppConfig.DatabaseName)
	return &MongoAppointmentRepo{
		coll:     db.Collection("appointments"),
		calendar: db.Collection("provider_calendars"),
	}
}

// activeFilter matches appointments that occupy a slot for the provider on
// the date.
func activeFilter(providerID, date string) bson.M {
	return bson.M{
		"provider_id": providerID,
		"date":        date,
		"status":      bson.M{"$in": models.ActiveStatuses},
	}
}

// overlapFilter additionally matches the half-open interval [start, end).
func overlapFilter(providerID, date string, start, end int) bson.M {
	f := activeFilter(providerID, date)
	f["start"] = bson.M{"$lt": end}
	f["end"] = bson.M{"$gt": start}
	return f
}

func (r *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var appt models.Appointment
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (r *MongoAppointmentRepo) ListActiveByProviderDate(ctx context.Context, providerID, date string) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, activeFilter(providerID, date), opts)
	if err != nil {
		return nil, fmt.Errorf("error fetching active appointments for provider %s on %s: %w", providerID, date, err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding active appointments: %w", err)
	}
	return appts, nil
}

func (r *MongoAppointmentRepo) CountActiveByProviderDate(ctx context.Context, providerID, date string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, activeFilter(providerID, date))
	if err != nil {
		return 0, fmt.Errorf("error counting active appointments for provider %s on %s: %w", providerID, date, err)
	}
	return count, nil
}

func (r *MongoAppointmentRepo) UpdateStatus(ctx context.Context, id string, fromStatuses []string, change models.StatusChange, expectedVersion int) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{
		"id":      id,
		"status":  bson.M{"$in": fromStatuses},
		"version": expectedVersion,
	}
	update := bson.M{
		"$set":  bson.M{"status": change.Status, "updated_at": change.ChangedAt},
		"$inc":  bson.M{"version": 1},
		"$push": bson.M{"status_history": change},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Appointment
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error updating status of appointment %s: %w", id, err)
	}

	// The guard failed: distinguish a missing document from a lost race.
	count, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if countErr != nil {
		return nil, fmt.Errorf("error checking appointment %s after failed update: %w", id, countErr)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrVersionMismatch
}

func (r *MongoAppointmentRepo) AttachFeedback(ctx context.Context, id string, fb models.AppointmentFeedback, expectedVersion int) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"id": id, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{"feedback": fb, "updated_at": fb.SubmittedAt},
		"$inc": bson.M{"version": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Appointment
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("error attaching feedback to appointment %s: %w", id, err)
	}

	count, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if countErr != nil {
		return nil, fmt.Errorf("error checking appointment %s after failed feedback update: %w", id, countErr)
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrVersionMismatch
}

func (r *MongoAppointmentRepo) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := bson.M{}
	if filter.ProviderID != "" {
		query["provider_id"] = filter.ProviderID
	}
	if filter.SubjectID != "" {
		query["subject_id"] = filter.SubjectID
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}
