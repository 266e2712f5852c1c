package appointmentRepo

import (
	"context"
	"errors"

	"counselhub/models"
)

// Sentinel errors translated by the scheduling service into its own
// taxonomy.
var (
	ErrNotFound        = errors.New("appointment not found")
	ErrSlotTaken       = errors.New("slot overlaps an active appointment")
	ErrDailyLimit      = errors.New("daily appointment limit reached")
	ErrVersionMismatch = errors.New("appointment was modified concurrently")
)

// AppointmentRepository is the booking ledger: the persisted set of
// appointments per (provider, date) and the operations the engine needs
// over it. InsertIfFree is the single serialization point for bookings;
// everything else is a conditional single-document update or a read.
type AppointmentRepository interface {
	// InsertIfFree atomically re-checks the no-overlap invariant (and the
	// provider's daily cap when dailyLimit > 0) and inserts the appointment.
	// It returns ErrSlotTaken or ErrDailyLimit when the check fails; in that
	// case nothing is written.
	InsertIfFree(ctx context.Context, appt *models.Appointment, dailyLimit int) error

	GetByID(ctx context.Context, id string) (*models.Appointment, error)

	// ListActiveByProviderDate returns appointments with status pending or
	// confirmed for the provider on the date, ordered by start time.
	ListActiveByProviderDate(ctx context.Context, providerID, date string) ([]models.Appointment, error)

	CountActiveByProviderDate(ctx context.Context, providerID, date string) (int64, error)

	// UpdateStatus transitions the appointment to change.Status, appending
	// change to the status history, guarded by the expected current statuses
	// and version. It returns the updated document, ErrNotFound if the id
	// does not exist, or ErrVersionMismatch when the guard fails.
	UpdateStatus(ctx context.Context, id string, fromStatuses []string, change models.StatusChange, expectedVersion int) (*models.Appointment, error)

	// AttachFeedback sets the feedback document without touching status or
	// history. Guarded by version like UpdateStatus.
	AttachFeedback(ctx context.Context, id string, fb models.AppointmentFeedback, expectedVersion int) (*models.Appointment, error)

	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
}
