package scheduling

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"

	appointmentRepo "counselhub/database/repository/appointment"
	availabilityRepo "counselhub/database/repository/availability"
	"counselhub/models"
)

// SchedulingService is the engine behind slot listing, booking and the
// appointment lifecycle. Slot listing is advisory and may race with other
// bookers; CreateAppointment re-validates against the ledger atomically and
// is the only authority on whether a slot is actually free.
type SchedulingService interface {
	// Availability.
	ResolveDay(ctx context.Context, providerID, date string) (models.DaySchedule, error)
	SetWeeklyAvailability(ctx context.Context, weekly *models.WeeklyAvailability) error
	SetException(ctx context.Context, exc *models.AvailabilityException) error
	RemoveException(ctx context.Context, providerID, date string) error
	SetSessionPolicy(ctx context.Context, policy *models.SessionPolicy) error

	// Slots and booking.
	FreeSlots(ctx context.Context, providerID, date string, durationMinutes int) ([]models.Slot, error)
	CreateAppointment(ctx context.Context, req models.AppointmentRequest) (*models.Appointment, error)

	// Lifecycle.
	Confirm(ctx context.Context, id string, actor models.Actor) (*models.Appointment, error)
	Cancel(ctx context.Context, id string, actor models.Actor, reason string) (*models.Appointment, error)
	Complete(ctx context.Context, id string, actor models.Actor) (*models.Appointment, error)
	MarkNoShow(ctx context.Context, id string, actor models.Actor, reason string) (*models.Appointment, error)
	AttachFeedback(ctx context.Context, id string, actor models.Actor, fb models.AppointmentFeedback) (*models.Appointment, error)
	ExpirePending(ctx context.Context, id string) error

	// Listing.
	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error)
}

// DefaultSchedulingService implements SchedulingService.
type DefaultSchedulingService struct {
	AvailabilityRepo availabilityRepo.AvailabilityRepository
	AppointmentRepo  appointmentRepo.AppointmentRepository

	// Cache serves advisory free-slot listings; nil disables caching.
	Cache *redis.Client
	// TaskClient schedules the pending-expiry sweep; nil disables it.
	TaskClient *asynq.Client

	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time
}

func (s *DefaultSchedulingService) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}
