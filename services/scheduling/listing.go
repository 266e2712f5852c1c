package scheduling

import (
	"context"

	"counselhub/models"
)

// GetAppointment fetches one appointment with its full status history.
func (s *DefaultSchedulingService) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	return s.getByID(ctx, id)
}

// ListAppointments returns appointments matching the filter, ordered by
// date and start time.
func (s *DefaultSchedulingService) ListAppointments(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	if filter.ProviderID == "" && filter.SubjectID == "" {
		return nil, newError(CodeValidation, "providerId or subjectId filter is required")
	}
	if filter.Status != "" {
		switch filter.Status {
		case models.StatusPending, models.StatusConfirmed, models.StatusCompleted,
			models.StatusCancelled, models.StatusNoShow:
		default:
			return nil, newError(CodeValidation, "unknown status %q", filter.Status)
		}
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 200
	}
	return s.AppointmentRepo.List(ctx, filter)
}
