package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appointmentRepo "counselhub/database/repository/appointment"
	"counselhub/models"
	"counselhub/services/tasks"
	"counselhub/utils"
)

// CreateAppointment books a slot. Input validation and the policy checks
// run first on a plain read; the no-overlap invariant is then re-checked
// inside the ledger's atomic insert, because the read could have raced
// another booker. Losing that race yields SLOT_CONFLICT and the caller is
// expected to re-fetch free slots and pick again; the engine never retries
// on its own.
func (s *DefaultSchedulingService) CreateAppointment(ctx context.Context, req models.AppointmentRequest) (*models.Appointment, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	now := s.now()
	day, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, newError(CodeValidation, "invalid date %q, expected YYYY-MM-DD", req.Date)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, now.Location()).
		Add(time.Duration(req.Start) * time.Minute)
	if !start.After(now) {
		return nil, newError(CodeValidation, "appointment start must be in the future")
	}

	policy, err := s.sessionPolicy(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if policy.AdvanceBookingDays > 0 {
		horizon := now.AddDate(0, 0, policy.AdvanceBookingDays)
		if start.After(horizon) {
			return nil, newError(CodeValidation, "appointments can be booked at most %d days ahead", policy.AdvanceBookingDays)
		}
	}

	schedule, err := s.ResolveDay(ctx, req.ProviderID, req.Date)
	if err != nil {
		return nil, err
	}
	if !schedule.IsAvailable || !containsInterval(schedule.Intervals, req.Start, req.End) {
		return nil, newError(CodeValidation, "requested time %s-%s is outside the provider's working hours",
			models.MinuteLabel(req.Start), models.MinuteLabel(req.End))
	}

	appt := &models.Appointment{
		ID:         uuid.New().String(),
		ProviderID: req.ProviderID,
		SubjectID:  req.SubjectID,
		Date:       req.Date,
		Start:      req.Start,
		End:        req.End,
		Type:       req.Type,
		Status:     models.StatusPending,
		Reason:     req.Reason,
		Notes:      req.Notes,
		StatusHistory: []models.StatusChange{{
			Status:    models.StatusPending,
			ChangedBy: req.SubjectID,
			ChangedAt: now,
			Reason:    "created",
		}},
		CancellationPolicy: policy.Cancellation,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.AppointmentRepo.InsertIfFree(ctx, appt, policy.MaxAppointmentsPerDay); err != nil {
		switch {
		case errors.Is(err, appointmentRepo.ErrSlotTaken):
			return nil, newError(CodeSlotConflict, "slot %s-%s on %s is no longer available",
				models.MinuteLabel(req.Start), models.MinuteLabel(req.End), req.Date)
		case errors.Is(err, appointmentRepo.ErrDailyLimit):
			return nil, newError(CodeDailyLimitReached, "provider %s accepts at most %d appointments on %s",
				req.ProviderID, policy.MaxAppointmentsPerDay, req.Date)
		default:
			return nil, err
		}
	}

	s.invalidateSlotCache(ctx, req.ProviderID, req.Date)
	s.scheduleExpiry(appt, start)

	return appt, nil
}

func validateRequest(req *models.AppointmentRequest) error {
	if req.ProviderID == "" {
		return newError(CodeValidation, "providerId is required")
	}
	if req.SubjectID == "" {
		return newError(CodeValidation, "subjectId is required")
	}
	if req.Start < 0 || req.End > 24*60 || req.Start >= req.End {
		return newError(CodeValidation, "time range [%d, %d) is invalid", req.Start, req.End)
	}
	if req.Type == "" {
		req.Type = models.TypeInPerson
	}
	switch req.Type {
	case models.TypeOnline, models.TypeInPerson, models.TypePhone:
	default:
		return newError(CodeValidation, "unknown session type %q", req.Type)
	}
	return nil
}

// containsInterval reports whether [start, end) fits entirely inside one
// of the day's work intervals.
func containsInterval(intervals []models.WorkInterval, start, end int) bool {
	for _, iv := range intervals {
		if start >= iv.Start && end <= iv.End {
			return true
		}
	}
	return false
}

// scheduleExpiry enqueues the pending-expiry sweep at the appointment's
// start time. Enqueue failures are logged, never surfaced: the booking
// already committed and an unconfirmed appointment simply stays pending
// until a later sweep or manual action.
func (s *DefaultSchedulingService) scheduleExpiry(appt *models.Appointment, fireAt time.Time) {
	if s.TaskClient == nil {
		return
	}
	task, opts, err := tasks.NewExpirePendingTask(appt.ID, fireAt)
	if err != nil {
		utils.GetLogger().Warn("failed to build expiry task",
			zap.String("appointmentID", appt.ID), zap.Error(err))
		return
	}
	if _, err := s.TaskClient.Enqueue(task, opts...); err != nil {
		utils.GetLogger().Warn("failed to enqueue expiry task",
			zap.String("appointmentID", appt.ID), zap.Error(err))
	}
}
