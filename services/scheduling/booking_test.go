package scheduling

import (
	"context"
	"sync"
	"testing"

	"counselhub/models"
)

func bookingRequest() models.AppointmentRequest {
	return models.AppointmentRequest{
		ProviderID: "prov-1",
		SubjectID:  "subj-1",
		Date:       "2026-09-07",
		Start:      540,
		End:        600,
	}
}

func TestCreateAppointmentSuccess(t *testing.T) {
	svc, avail, _ := newTestService(testNow)
	_ = avail.UpsertWeekly(context.Background(), weekdayTemplate("prov-1", models.WorkInterval{Start: 540, End: 720}))

	appt, err := svc.CreateAppointment(context.Background(), bookingRequest())
	if err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if appt.ID == "" {
		t.Error("expected a generated appointment ID")
	}
	if appt.Status != models.StatusPending {
		t.Errorf("new appointment status = %s, want pending", appt.Status)
	}
	if appt.Type != models.TypeInPerson {
		t.Errorf("session type should default to in_person, got %s", appt.Type)
	}
	if appt.Version != 1 {
		t.Errorf("new appointment version = %d, want 1", appt.Version)
	}
	if len(appt.StatusHistory) != 1 {
		t.Fatalf("expected one history entry, got %d", len(appt.StatusHistory))
	}
	entry := appt.StatusHistory[0]
	if entry.Status != models.StatusPending || entry.ChangedBy != "subj-1" {
		t.Errorf("unexpected initial history entry %+v", entry)
	}
	// Provider has no stored policy, so the default cancellation terms are
	// snapshotted onto the appointment.
	if !appt.CancellationPolicy.AllowCancellation || appt.CancellationPolicy.MinNoticeHours != 24 {
		t.Errorf("unexpected policy snapshot %+v", appt.CancellationPolicy)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	svc, avail, _ := newTestService(testNow)
	_ = avail.UpsertWeekly(context.Background(), weekdayTemplate("prov-1", models.WorkInterval{Start: 540, End: 720}))

	tests := []struct {
		name   string
		mutate func(*models.AppointmentRequest)
	}{
		{"missing provider", func(r *models.AppointmentRequest) { r.ProviderID = "" }},
		{"missing subject", func(r *models.AppointmentRequest) { r.SubjectID = "" }},
		{"inverted range", func(r *models.AppointmentRequest) { r.Start, r.End = 600, 540 }},
		{"end past midnight", func(r *models.AppointmentRequest) { r.End = 25 * 60 }},
		{"unknown session type", func(r *models.AppointmentRequest) { r.Type = "telepathy" }},
		{"malformed date", func(r *models.AppointmentRequest) { r.Date = "07/09/2026" }},
		{"start in the past", func(r *models.AppointmentRequest) {
			// testNow is 08:00 on 2026-09-01.
			r.Date = "2026-09-01"
			r.Start, r.End = 420, 480
		}},
		{"beyond advance window", func(r *models.AppointmentRequest) { r.Date = "2026-10-15" }},
		{"outside working hours", func(r *models.AppointmentRequest) { r.Start, r.End = 480, 540 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bookingRequest()
			tt.mutate(&req)
			_, err := svc.CreateAppointment(context.Background(), req)
			if CodeOf(err) != CodeValidation {
				t.Errorf("expected VALIDATION, got %v", err)
			}
		})
	}
}

func TestCreateAppointmentSlotConflict(t *testing.T) {
	svc, avail, _ := newTestService(testNow)
	_ = avail.UpsertWeekly(context.Background(), weekdayTemplate("prov-1", models.WorkInterval{Start: 540, End: 720}))

	if _, err := svc.CreateAppointment(context.Background(), bookingRequest()); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// A different subject requesting an overlapping range loses.
	req := bookingRequest()
	req.SubjectID = "subj-2"
	req.Start, req.End = 570, 630
	_, err := svc.CreateAppointment(context.Background(), req)
	if CodeOf(err) != CodeSlotConflict {
		t.Errorf("expected SLOT_CONFLICT, got %v", err)
	}
}

func TestCreateAppointmentDailyLimit(t *testing.T) {
	svc, avail, _ := newTestService(testNow)
	_ = avail.UpsertWeekly(context.Background(), weekdayTemplate("prov-1", models.WorkInterval{Start: 540, End: 720}))
	policy := models.DefaultSessionPolicy("prov-1")
	policy.MaxAppointmentsPerDay = 2
	_ = avail.UpsertSessionPolicy(context.Background(), policy)

	for i, start := range []int{540, 600} {
		req := bookingRequest()
		req.Start, req.End = start, start+60
		if _, err := svc.CreateAppointment(context.Background(), req); err != nil {
			t.Fatalf("booking %d: %v", i, err)
		}
	}

	req := bookingRequest()
	req.Start, req.End = 660, 720
	_, err := svc.CreateAppointment(context.Background(), req)
	if CodeOf(err) != CodeDailyLimitReached {
		t.Errorf("expected DAILY_LIMIT_REACHED, got %v", err)
	}
}

func TestCreateAppointmentConcurrentSingleWinner(t *testing.T) {
	svc, avail, ledger := newTestService(testNow)
	_ = avail.UpsertWeekly(context.Background(), weekdayTemplate("prov-1", models.WorkInterval{Start: 540, End: 720}))

	const bookers = 16
	var wg sync.WaitGroup
	errs := make([]error, bookers)
	for i := 0; i < bookers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := bookingRequest()
			_, errs[i] = svc.CreateAppointment(context.Background(), req)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case CodeOf(err) == CodeSlotConflict:
		default:
			t.Errorf("unexpected error from concurrent booking: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("expected exactly one winning booking, got %d", winners)
	}

	// The ledger must hold no overlapping active appointments afterwards.
	appts, _ := ledger.ListActiveByProviderDate(context.Background(), "prov-1", "2026-09-07")
	for i := range appts {
		for j := i + 1; j < len(appts); j++ {
			if appts[i].Start < appts[j].End && appts[i].End > appts[j].Start {
				t.Errorf("overlapping active appointments %s and %s", appts[i].ID, appts[j].ID)
			}
		}
	}
}
