package appointmentRepo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"counselhub/models"
)

// InsertIfFree performs "check conflicts, then insert" as one atomic unit.
// Counting and inserting alone is not enough under snapshot isolation: two
// concurrent transactions can each count zero overlaps and insert distinct
// documents without ever touching a common one, so the storage engine
// raises no write conflict and both commit. The transaction therefore
// first bumps a sequence on the provider's per-date calendar document.
// Racing bookings for the same (provider, date) then collide on that
// document: the loser aborts with a transient error, WithTransaction
// retries it on a fresh snapshot, and the re-run count sees the winner's
// appointment and returns ErrSlotTaken.
func (r *MongoAppointmentRepo) InsertIfFree(ctx context.Context, appt *models.Appointment, dailyLimit int) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) (interface{}, error) {
		if err := r.bumpCalendar(sc, appt.ProviderID, appt.Date); err != nil {
			return nil, err
		}

		overlapping, err := r.coll.CountDocuments(sc, overlapFilter(appt.ProviderID, appt.Date, appt.Start, appt.End))
		if err != nil {
			return nil, fmt.Errorf("overlap check failed: %w", err)
		}
		if overlapping > 0 {
			return nil, ErrSlotTaken
		}

		if dailyLimit > 0 {
			active, err := r.coll.CountDocuments(sc, activeFilter(appt.ProviderID, appt.Date))
			if err != nil {
				return nil, fmt.Errorf("daily limit check failed: %w", err)
			}
			if active >= int64(dailyLimit) {
				return nil, ErrDailyLimit
			}
		}

		if _, err := r.coll.InsertOne(sc, appt); err != nil {
			return nil, fmt.Errorf("insert appointment failed: %w", err)
		}
		return nil, nil
	}

	// WithTransaction retries the callback on transient errors, which is
	// exactly how a lost calendar write-conflict resolves; business errors
	// like ErrSlotTaken abort and surface unchanged.
	if _, err := sess.WithTransaction(ctx, txnFn); err != nil {
		return err
	}
	return nil
}

// bumpCalendar writes the shared calendar document for the provider's
// date, creating it on first booking. The sequence value itself carries no
// meaning; the write exists to force concurrent bookings for the same
// calendar day onto a common document so exactly one transaction commits.
func (r *MongoAppointmentRepo) bumpCalendar(sc mongo.SessionContext, providerID, date string) error {
	filter := bson.M{"provider_id": providerID, "date": date}
	update := bson.M{"$inc": bson.M{"seq": 1}}
	opts := options.Update().SetUpsert(true)
	if _, err := r.calendar.UpdateOne(sc, filter, update, opts); err != nil {
		return fmt.Errorf("calendar guard write failed: %w", err)
	}
	return nil
}
