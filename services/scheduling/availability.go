package scheduling

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	availabilityRepo "counselhub/database/repository/availability"
	"counselhub/models"
	"counselhub/utils"
)

const dateLayout = "2006-01-02"

// ResolveDay produces the effective schedule for a provider on a date.
// A dated exception fully overrides the weekly template; otherwise the
// template entry for the date's weekday applies. A provider with no
// availability record at all yields NOT_FOUND, which is distinct from
// "configured but unavailable that day".
func (s *DefaultSchedulingService) ResolveDay(ctx context.Context, providerID, date string) (models.DaySchedule, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return models.DaySchedule{}, newError(CodeValidation, "invalid date %q, expected YYYY-MM-DD", date)
	}

	schedule := models.DaySchedule{ProviderID: providerID, Date: date}

	exc, err := s.AvailabilityRepo.GetException(ctx, providerID, date)
	if err != nil && !errors.Is(err, availabilityRepo.ErrNotFound) {
		return models.DaySchedule{}, err
	}

	if exc != nil {
		schedule.IsAvailable = exc.IsAvailable
		if !exc.IsAvailable {
			return schedule, nil
		}
		if len(exc.AlternativeSlots) > 0 {
			schedule.Intervals = exc.AlternativeSlots
			return schedule, nil
		}
		// Available with no alternative slots supplied: the weekly
		// intervals for that weekday still apply.
	}

	weekly, werr := s.AvailabilityRepo.GetWeekly(ctx, providerID)
	if werr != nil {
		if errors.Is(werr, availabilityRepo.ErrNotFound) {
			if exc != nil {
				// An exception without a template has nothing to fall
				// back to; treat the day as having no intervals.
				utils.GetLogger().Warn("availability exception without weekly template",
					zap.String("providerID", providerID), zap.String("date", date))
				return schedule, nil
			}
			return models.DaySchedule{}, newError(CodeNotFound, "provider %s has no availability configured", providerID)
		}
		return models.DaySchedule{}, werr
	}

	tmpl := weekly.Days[day.Weekday()]
	if exc == nil {
		schedule.IsAvailable = tmpl.IsAvailable
	}
	if schedule.IsAvailable {
		schedule.Intervals = tmpl.Intervals
	}
	return schedule, nil
}

// SetWeeklyAvailability validates and stores a provider's weekly template.
func (s *DefaultSchedulingService) SetWeeklyAvailability(ctx context.Context, weekly *models.WeeklyAvailability) error {
	if weekly.ProviderID == "" {
		return newError(CodeValidation, "providerId is required")
	}
	for i := range weekly.Days {
		weekly.Days[i].Weekday = time.Weekday(i)
		if err := validateIntervals(weekly.Days[i].Intervals); err != nil {
			return newError(CodeValidation, "%s: %v", time.Weekday(i), err)
		}
	}
	weekly.UpdatedAt = s.now()
	return s.AvailabilityRepo.UpsertWeekly(ctx, weekly)
}

// SetException validates and stores a date-specific override.
func (s *DefaultSchedulingService) SetException(ctx context.Context, exc *models.AvailabilityException) error {
	if exc.ProviderID == "" {
		return newError(CodeValidation, "providerId is required")
	}
	if _, err := time.Parse(dateLayout, exc.Date); err != nil {
		return newError(CodeValidation, "invalid date %q, expected YYYY-MM-DD", exc.Date)
	}
	if err := validateIntervals(exc.AlternativeSlots); err != nil {
		return newError(CodeValidation, "alternativeSlots: %v", err)
	}
	exc.UpdatedAt = s.now()
	return s.AvailabilityRepo.UpsertException(ctx, exc)
}

// RemoveException restores the weekly template for the given date.
func (s *DefaultSchedulingService) RemoveException(ctx context.Context, providerID, date string) error {
	if err := s.AvailabilityRepo.DeleteException(ctx, providerID, date); err != nil {
		if errors.Is(err, availabilityRepo.ErrNotFound) {
			return newError(CodeNotFound, "no exception for provider %s on %s", providerID, date)
		}
		return err
	}
	return nil
}

// SetSessionPolicy validates and stores a provider's booking rules. The
// policy applies to future bookings only; existing appointments keep the
// cancellation policy snapshotted at creation.
func (s *DefaultSchedulingService) SetSessionPolicy(ctx context.Context, policy *models.SessionPolicy) error {
	if policy.ProviderID == "" {
		return newError(CodeValidation, "providerId is required")
	}
	if policy.DefaultDurationMinutes <= 0 {
		return newError(CodeValidation, "defaultDurationMinutes must be positive")
	}
	if policy.BreakBetweenSessionsMinutes < 0 || policy.MaxAppointmentsPerDay < 0 ||
		policy.AdvanceBookingDays < 0 || policy.Cancellation.MinNoticeHours < 0 {
		return newError(CodeValidation, "policy values must not be negative")
	}
	return s.AvailabilityRepo.UpsertSessionPolicy(ctx, policy)
}

// sessionPolicy fetches the provider's policy, falling back to defaults
// when none is configured.
func (s *DefaultSchedulingService) sessionPolicy(ctx context.Context, providerID string) (*models.SessionPolicy, error) {
	policy, err := s.AvailabilityRepo.GetSessionPolicy(ctx, providerID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrNotFound) {
			return models.DefaultSessionPolicy(providerID), nil
		}
		return nil, err
	}
	return policy, nil
}

// validateIntervals enforces the interval invariant: start < end, sorted,
// non-overlapping, within a single day.
func validateIntervals(intervals []models.WorkInterval) error {
	prevEnd := -1
	for _, iv := range intervals {
		if iv.Start < 0 || iv.End > 24*60 {
			return errors.New("interval out of day bounds")
		}
		if iv.Start >= iv.End {
			return errors.New("interval start must be before end")
		}
		if iv.Start < prevEnd {
			return errors.New("intervals must be sorted and non-overlapping")
		}
		prevEnd = iv.End
	}
	return nil
}
