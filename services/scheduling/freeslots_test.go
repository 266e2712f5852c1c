package scheduling

import (
	"context"
	"reflect"
	"testing"

	"counselhub/models"
)

func TestFreeSlotsSubtractsOverlappingAppointments(t *testing.T) {
	svc, avail, ledger := newTestService(testNow)
	_ = avail.UpsertWeekly(context.Background(), weekdayTemplate("prov-1", models.WorkInterval{Start: 540, End: 720}))
	_ = avail.UpsertSessionPolicy(context.Background(), &models.SessionPolicy{
		ProviderID:             "prov-1",
		DefaultDurationMinutes: 60,
	})

	// A 45 minute appointment straddling the 10:00 and 11:00 hour slots.
	// Subtraction is by interval overlap, so both generated slots that it
	// touches must be withheld even though neither shares its start time.
	_ = ledger.InsertIfFree(context.Background(), &models.Appointment{
		ID: "a1", ProviderID: "prov-1", Date: "2026-09-07",
		Start: 615, End: 660, Status: models.StatusPending,
	}, 0)

	slots, err := svc.FreeSlots(context.Background(), "prov-1", "2026-09-07", 60)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	got := slotTimes(slots)
	want := [][2]int{{540, 600}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FreeSlots = %v, want %v", got, want)
	}
}

func TestFreeSlotsIgnoresInactiveAppointments(t *testing.T) {
	svc, avail, ledger := newTestService(testNow)
	_ = avail.UpsertWeekly(context.Background(), weekdayTemplate("prov-1", models.WorkInterval{Start: 540, End: 720}))

	// Cancelled and completed appointments do not occupy their slots.
	ledger.appts["c1"] = &models.Appointment{
		ID: "c1", ProviderID: "prov-1", Date: "2026-09-07",
		Start: 540, End: 600, Status: models.StatusCancelled,
	}
	ledger.appts["c2"] = &models.Appointment{
		ID: "c2", ProviderID: "prov-1", Date: "2026-09-07",
		Start: 600, End: 660, Status: models.StatusCompleted,
	}

	slots, err := svc.FreeSlots(context.Background(), "prov-1", "2026-09-07", 60)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if len(slots) != 3 {
		t.Errorf("expected all 3 slots free, got %v", slotTimes(slots))
	}
}

func TestFreeSlotsUsesDefaultDuration(t *testing.T) {
	svc, avail, _ := newTestService(testNow)
	_ = avail.UpsertWeekly(context.Background(), weekdayTemplate("prov-1", models.WorkInterval{Start: 540, End: 720}))
	_ = avail.UpsertSessionPolicy(context.Background(), &models.SessionPolicy{
		ProviderID:                  "prov-1",
		DefaultDurationMinutes:      90,
		BreakBetweenSessionsMinutes: 0,
	})

	slots, err := svc.FreeSlots(context.Background(), "prov-1", "2026-09-07", 0)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	want := [][2]int{{540, 630}, {630, 720}}
	if !reflect.DeepEqual(slotTimes(slots), want) {
		t.Errorf("FreeSlots = %v, want %v", slotTimes(slots), want)
	}
}

func TestFreeSlotsUnavailableDayIsEmpty(t *testing.T) {
	svc, avail, _ := newTestService(testNow)
	_ = avail.UpsertWeekly(context.Background(), weekdayTemplate("prov-1", models.WorkInterval{Start: 540, End: 720}))
	_ = avail.UpsertException(context.Background(), &models.AvailabilityException{
		ProviderID: "prov-1",
		Date:       "2026-09-07",
	})

	slots, err := svc.FreeSlots(context.Background(), "prov-1", "2026-09-07", 60)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots on an excepted day, got %v", slotTimes(slots))
	}
}
