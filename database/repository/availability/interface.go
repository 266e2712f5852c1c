package availabilityRepo

import (
	"context"
	"errors"

	"counselhub/models"
)

// ErrNotFound is returned when the requested availability record does not
// exist. Callers must distinguish this from "unavailable on that date".
var ErrNotFound = errors.New("availability record not found")

// AvailabilityRepository provides access to a provider's weekly template,
// its date-specific exceptions and its session policy.
type AvailabilityRepository interface {
	GetWeekly(ctx context.Context, providerID string) (*models.WeeklyAvailability, error)
	UpsertWeekly(ctx context.Context, weekly *models.WeeklyAvailability) error

	// GetException returns ErrNotFound when no exception exists for the
	// (provider, date) pair.
	GetException(ctx context.Context, providerID, date string) (*models.AvailabilityException, error)
	UpsertException(ctx context.Context, exc *models.AvailabilityException) error
	DeleteException(ctx context.Context, providerID, date string) error

	GetSessionPolicy(ctx context.Context, providerID string) (*models.SessionPolicy, error)
	UpsertSessionPolicy(ctx context.Context, policy *models.SessionPolicy) error
}
