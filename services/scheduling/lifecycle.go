package scheduling

import (
	"context"
	"errors"
	"time"

	appointmentRepo "counselhub/database/repository/appointment"
	"counselhub/models"
)

// SystemActor is recorded for transitions performed by the engine itself,
// such as the pending-expiry sweep.
const SystemActor = "system"

// transitions is the appointment state machine: pending and confirmed are
// the only states with outgoing edges; completed, cancelled and no_show
// are terminal.
var transitions = map[string][]string{
	models.StatusPending:   {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed: {models.StatusCompleted, models.StatusCancelled, models.StatusNoShow},
}

func canTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Confirm moves a pending appointment to confirmed.
func (s *DefaultSchedulingService) Confirm(ctx context.Context, id string, actor models.Actor) (*models.Appointment, error) {
	return s.transition(ctx, id, models.StatusConfirmed, actor, "", nil)
}

// Cancel moves an active appointment to cancelled, subject to the
// cancellation policy snapshotted at creation. No separate release step
// follows: a cancelled appointment stops matching the active-status filter,
// which by itself frees the slot for other bookers.
func (s *DefaultSchedulingService) Cancel(ctx context.Context, id string, actor models.Actor, reason string) (*models.Appointment, error) {
	guard := func(appt *models.Appointment) error {
		if !appt.CancellationPolicy.AllowCancellation {
			return newError(CodeCancellationDisallowed, "this appointment does not allow cancellation")
		}
		start, err := appt.StartTime(s.now().Location())
		if err != nil {
			return newError(CodeValidation, "appointment has an invalid date: %v", err)
		}
		// Strict comparison: exactly MinNoticeHours of notice is not enough.
		notice := time.Duration(appt.CancellationPolicy.MinNoticeHours) * time.Hour
		if start.Sub(s.now()) <= notice {
			return newError(CodeCancellationExpired, "cancellation requires more than %d hours notice",
				appt.CancellationPolicy.MinNoticeHours)
		}
		return nil
	}
	return s.transition(ctx, id, models.StatusCancelled, actor, reason, guard)
}

// Complete marks a confirmed appointment as held. Feedback may be attached
// afterwards without further status changes.
func (s *DefaultSchedulingService) Complete(ctx context.Context, id string, actor models.Actor) (*models.Appointment, error) {
	return s.transition(ctx, id, models.StatusCompleted, actor, "", nil)
}

// MarkNoShow records that the subject did not attend a confirmed
// appointment.
func (s *DefaultSchedulingService) MarkNoShow(ctx context.Context, id string, actor models.Actor, reason string) (*models.Appointment, error) {
	return s.transition(ctx, id, models.StatusNoShow, actor, reason, nil)
}

// transition loads the appointment, checks the actor and the state
// machine, runs the optional guard, then commits through a conditional
// update keyed on the observed status and version. A concurrent actor
// winning the race surfaces as CONCURRENT_UPDATE; callers may re-read and
// retry.
func (s *DefaultSchedulingService) transition(ctx context.Context, id, to string, actor models.Actor, reason string, guard func(*models.Appointment) error) (*models.Appointment, error) {
	appt, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkActor(appt, actor); err != nil {
		return nil, err
	}
	if !canTransition(appt.Status, to) {
		return nil, newError(CodeInvalidTransition, "cannot move appointment from %s to %s", appt.Status, to)
	}
	if guard != nil {
		if err := guard(appt); err != nil {
			return nil, err
		}
	}

	change := models.StatusChange{
		Status:    to,
		ChangedBy: actor.ID,
		ChangedAt: s.now(),
		Reason:    reason,
	}
	updated, err := s.AppointmentRepo.UpdateStatus(ctx, id, []string{appt.Status}, change, appt.Version)
	if err != nil {
		return nil, translateRepoError(err, id)
	}

	s.invalidateSlotCache(ctx, updated.ProviderID, updated.Date)
	return updated, nil
}

// AttachFeedback stores session feedback on a completed appointment. The
// status and its history are untouched; only the version moves.
func (s *DefaultSchedulingService) AttachFeedback(ctx context.Context, id string, actor models.Actor, fb models.AppointmentFeedback) (*models.Appointment, error) {
	appt, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkActor(appt, actor); err != nil {
		return nil, err
	}
	if appt.Status != models.StatusCompleted {
		return nil, newError(CodeInvalidTransition, "feedback can only be attached to completed appointments, not %s", appt.Status)
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return nil, newError(CodeValidation, "rating must be between 1 and 5")
	}
	fb.SubmittedBy = actor.ID
	fb.SubmittedAt = s.now()

	updated, err := s.AppointmentRepo.AttachFeedback(ctx, id, fb, appt.Version)
	if err != nil {
		return nil, translateRepoError(err, id)
	}
	return updated, nil
}

// ExpirePending is the sweep entry point invoked at an appointment's start
// time. Appointments that are no longer pending, or whose start moved into
// the future, are left alone; the rest are cancelled on behalf of the
// system, bypassing the notice-window policy.
func (s *DefaultSchedulingService) ExpirePending(ctx context.Context, id string) error {
	appt, err := s.getByID(ctx, id)
	if err != nil {
		if CodeOf(err) == CodeNotFound {
			return nil
		}
		return err
	}
	if appt.Status != models.StatusPending {
		return nil
	}
	start, err := appt.StartTime(s.now().Location())
	if err != nil {
		return newError(CodeValidation, "appointment %s has an invalid date: %v", id, err)
	}
	if start.After(s.now()) {
		return nil
	}

	change := models.StatusChange{
		Status:    models.StatusCancelled,
		ChangedBy: SystemActor,
		ChangedAt: s.now(),
		Reason:    "not confirmed before session start",
	}
	if _, err := s.AppointmentRepo.UpdateStatus(ctx, id, []string{models.StatusPending}, change, appt.Version); err != nil {
		// Someone else changed it first; the sweep has nothing left to do.
		if errors.Is(err, appointmentRepo.ErrVersionMismatch) {
			return nil
		}
		return translateRepoError(err, id)
	}

	s.invalidateSlotCache(ctx, appt.ProviderID, appt.Date)
	return nil
}

func (s *DefaultSchedulingService) getByID(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.AppointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}
	return appt, nil
}

// checkActor enforces ownership: a subject may only act on their own
// appointments, a provider only on their own calendar. Staff act on
// anything. Who holds which role is the host's decision.
func checkActor(appt *models.Appointment, actor models.Actor) error {
	if actor.ID == "" {
		return newError(CodePermissionDenied, "acting identity is required")
	}
	switch actor.Role {
	case models.RoleStaff:
		return nil
	case models.RoleProvider:
		if actor.ID == appt.ProviderID {
			return nil
		}
	case models.RoleSubject:
		if actor.ID == appt.SubjectID {
			return nil
		}
	}
	return newError(CodePermissionDenied, "actor %s may not modify this appointment", actor.ID)
}

func translateRepoError(err error, id string) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrNotFound):
		return newError(CodeNotFound, "appointment %s not found", id)
	case errors.Is(err, appointmentRepo.ErrVersionMismatch):
		return newError(CodeConcurrentUpdate, "appointment %s was modified concurrently, re-fetch and retry", id)
	default:
		return err
	}
}
