package scheduling

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"counselhub/models"
	"counselhub/utils"
)

// slotCacheTTL bounds how stale an advisory listing can get. Mutations
// also invalidate eagerly, so the TTL only covers writers outside this
// process.
const slotCacheTTL = 30 * time.Second

// FreeSlots lists the bookable slots for a provider on a date. The result
// is advisory: it can race with concurrent bookers, and only
// CreateAppointment decides authoritatively. A generated slot is withheld
// when its interval overlaps any active appointment, the same rule the
// write path enforces, so the two paths cannot disagree on what counts as
// taken.
func (s *DefaultSchedulingService) FreeSlots(ctx context.Context, providerID, date string, durationMinutes int) ([]models.Slot, error) {
	if providerID == "" {
		return nil, newError(CodeValidation, "providerId is required")
	}

	policy, err := s.sessionPolicy(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if durationMinutes <= 0 {
		durationMinutes = policy.DefaultDurationMinutes
	}

	if cached, ok := s.cachedSlots(ctx, providerID, date, durationMinutes); ok {
		return cached, nil
	}

	day, err := s.ResolveDay(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	candidates := GenerateSlots(day, durationMinutes, policy.BreakBetweenSessionsMinutes)
	if len(candidates) == 0 {
		s.cacheSlots(ctx, providerID, date, durationMinutes, []models.Slot{})
		return []models.Slot{}, nil
	}

	booked, err := s.AppointmentRepo.ListActiveByProviderDate(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	free := make([]models.Slot, 0, len(candidates))
	for _, slot := range candidates {
		if !overlapsAny(slot, booked) {
			free = append(free, slot)
		}
	}

	s.cacheSlots(ctx, providerID, date, durationMinutes, free)
	return free, nil
}

// overlapsAny reports whether the slot's half-open interval intersects any
// active appointment.
func overlapsAny(slot models.Slot, appts []models.Appointment) bool {
	for _, a := range appts {
		if slot.Start < a.End && slot.End > a.Start {
			return true
		}
	}
	return false
}

// Listings for one (provider, date) share a redis hash keyed by duration,
// so invalidation is a single DEL regardless of how many durations were
// requested.
func slotCacheKey(providerID, date string) string {
	return "freeslots:" + providerID + ":" + date
}

func (s *DefaultSchedulingService) cachedSlots(ctx context.Context, providerID, date string, duration int) ([]models.Slot, bool) {
	if s.Cache == nil {
		return nil, false
	}
	raw, err := s.Cache.HGet(ctx, slotCacheKey(providerID, date), strconv.Itoa(duration)).Result()
	if err != nil {
		if err != redis.Nil {
			utils.GetLogger().Warn("slot cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var slots []models.Slot
	if err := json.Unmarshal([]byte(raw), &slots); err != nil {
		// Drop the corrupt field rather than leaving it to re-miss until
		// the TTL clears it.
		if delErr := s.Cache.HDel(ctx, slotCacheKey(providerID, date), strconv.Itoa(duration)).Err(); delErr != nil {
			utils.GetLogger().Warn("slot cache cleanup failed", zap.Error(delErr))
		}
		return nil, false
	}
	return slots, true
}

func (s *DefaultSchedulingService) cacheSlots(ctx context.Context, providerID, date string, duration int, slots []models.Slot) {
	if s.Cache == nil {
		return
	}
	b, err := json.Marshal(slots)
	if err != nil {
		return
	}
	key := slotCacheKey(providerID, date)
	pipe := s.Cache.Pipeline()
	pipe.HSet(ctx, key, strconv.Itoa(duration), b)
	pipe.Expire(ctx, key, slotCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		utils.GetLogger().Warn("slot cache write failed", zap.Error(err))
	}
}

// invalidateSlotCache drops the advisory listing after a mutation changed
// the ledger for the (provider, date).
func (s *DefaultSchedulingService) invalidateSlotCache(ctx context.Context, providerID, date string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, slotCacheKey(providerID, date)).Err(); err != nil {
		utils.GetLogger().Warn("slot cache invalidation failed",
			zap.String("providerID", providerID), zap.String("date", date), zap.Error(err))
	}
}
