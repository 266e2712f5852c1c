package scheduling

import (
	"context"
	"sync"
	"time"

	appointmentRepo "counselhub/database/repository/appointment"
	availabilityRepo "counselhub/database/repository/availability"
	"counselhub/models"
)

// memAvailabilityRepo is an in-memory AvailabilityRepository.
type memAvailabilityRepo struct {
	mu         sync.Mutex
	weekly     map[string]*models.WeeklyAvailability
	exceptions map[string]*models.AvailabilityException // providerID|date
	policies   map[string]*models.SessionPolicy
}

func newMemAvailabilityRepo() *memAvailabilityRepo {
	return &memAvailabilityRepo{
		weekly:     make(map[string]*models.WeeklyAvailability),
		exceptions: make(map[string]*models.AvailabilityException),
		policies:   make(map[string]*models.SessionPolicy),
	}
}

func (m *memAvailabilityRepo) GetWeekly(_ context.Context, providerID string) (*models.WeeklyAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.weekly[providerID]
	if !ok {
		return nil, availabilityRepo.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memAvailabilityRepo) UpsertWeekly(_ context.Context, weekly *models.WeeklyAvailability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *weekly
	m.weekly[weekly.ProviderID] = &cp
	return nil
}

func (m *memAvailabilityRepo) GetException(_ context.Context, providerID, date string) (*models.AvailabilityException, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.exceptions[providerID+"|"+date]
	if !ok {
		return nil, availabilityRepo.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memAvailabilityRepo) UpsertException(_ context.Context, exc *models.AvailabilityException) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *exc
	m.exceptions[exc.ProviderID+"|"+exc.Date] = &cp
	return nil
}

func (m *memAvailabilityRepo) DeleteException(_ context.Context, providerID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := providerID + "|" + date
	if _, ok := m.exceptions[key]; !ok {
		return availabilityRepo.ErrNotFound
	}
	delete(m.exceptions, key)
	return nil
}

func (m *memAvailabilityRepo) GetSessionPolicy(_ context.Context, providerID string) (*models.SessionPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.policies[providerID]
	if !ok {
		return nil, availabilityRepo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memAvailabilityRepo) UpsertSessionPolicy(_ context.Context, policy *models.SessionPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *policy
	m.policies[policy.ProviderID] = &cp
	return nil
}

// memAppointmentRepo is an in-memory AppointmentRepository. InsertIfFree
// models the Mongo implementation's concurrency behavior: the conflict
// check runs on a snapshot, and the commit is valid only while the
// per-(provider, date) calendar sequence is unchanged since that snapshot.
// A moved sequence means a concurrent booking committed first, and the
// whole check-and-insert retries on a fresh snapshot.
type memAppointmentRepo struct {
	mu     sync.Mutex
	appts  map[string]*models.Appointment
	calSeq map[string]int // providerID|date
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{
		appts:  make(map[string]*models.Appointment),
		calSeq: make(map[string]int),
	}
}

func isActive(status string) bool {
	return status == models.StatusPending || status == models.StatusConfirmed
}

func (m *memAppointmentRepo) InsertIfFree(_ context.Context, appt *models.Appointment, dailyLimit int) error {
	key := appt.ProviderID + "|" + appt.Date
	for {
		m.mu.Lock()
		seq := m.calSeq[key]
		var snapshot []models.Appointment
		for _, existing := range m.appts {
			if existing.ProviderID == appt.ProviderID && existing.Date == appt.Date && isActive(existing.Status) {
				snapshot = append(snapshot, *existing)
			}
		}
		m.mu.Unlock()

		conflict := false
		for _, existing := range snapshot {
			if appt.Start < existing.End && appt.End > existing.Start {
				conflict = true
			}
		}

		m.mu.Lock()
		if m.calSeq[key] != seq {
			// Lost the calendar write conflict; retry on a fresh snapshot.
			m.mu.Unlock()
			continue
		}
		if conflict {
			m.mu.Unlock()
			return appointmentRepo.ErrSlotTaken
		}
		if dailyLimit > 0 && len(snapshot) >= dailyLimit {
			m.mu.Unlock()
			return appointmentRepo.ErrDailyLimit
		}
		m.calSeq[key]++
		cp := *appt
		m.appts[appt.ID] = &cp
		m.mu.Unlock()
		return nil
	}
}

func (m *memAppointmentRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	appt, ok := m.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	cp := *appt
	cp.StatusHistory = append([]models.StatusChange(nil), appt.StatusHistory...)
	return &cp, nil
}

func (m *memAppointmentRepo) ListActiveByProviderDate(_ context.Context, providerID, date string) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, appt := range m.appts {
		if appt.ProviderID == providerID && appt.Date == date && isActive(appt.Status) {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (m *memAppointmentRepo) CountActiveByProviderDate(_ context.Context, providerID, date string) (int64, error) {
	appts, _ := m.ListActiveByProviderDate(context.Background(), providerID, date)
	return int64(len(appts)), nil
}

func (m *memAppointmentRepo) UpdateStatus(_ context.Context, id string, fromStatuses []string, change models.StatusChange, expectedVersion int) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appt, ok := m.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	matched := false
	for _, s := range fromStatuses {
		if appt.Status == s {
			matched = true
			break
		}
	}
	if !matched || appt.Version != expectedVersion {
		return nil, appointmentRepo.ErrVersionMismatch
	}

	appt.Status = change.Status
	appt.UpdatedAt = change.ChangedAt
	appt.Version++
	appt.StatusHistory = append(appt.StatusHistory, change)

	cp := *appt
	cp.StatusHistory = append([]models.StatusChange(nil), appt.StatusHistory...)
	return &cp, nil
}

func (m *memAppointmentRepo) AttachFeedback(_ context.Context, id string, fb models.AppointmentFeedback, expectedVersion int) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	appt, ok := m.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrNotFound
	}
	if appt.Version != expectedVersion {
		return nil, appointmentRepo.ErrVersionMismatch
	}
	fbCopy := fb
	appt.Feedback = &fbCopy
	appt.UpdatedAt = fb.SubmittedAt
	appt.Version++

	cp := *appt
	cp.StatusHistory = append([]models.StatusChange(nil), appt.StatusHistory...)
	return &cp, nil
}

func (m *memAppointmentRepo) List(_ context.Context, filter models.AppointmentFilter) ([]models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Appointment
	for _, appt := range m.appts {
		if filter.ProviderID != "" && appt.ProviderID != filter.ProviderID {
			continue
		}
		if filter.SubjectID != "" && appt.SubjectID != filter.SubjectID {
			continue
		}
		if filter.Date != "" && appt.Date != filter.Date {
			continue
		}
		if filter.Status != "" && appt.Status != filter.Status {
			continue
		}
		out = append(out, *appt)
	}
	return out, nil
}

// newTestService wires the engine to in-memory repos with a frozen clock.
func newTestService(now time.Time) (*DefaultSchedulingService, *memAvailabilityRepo, *memAppointmentRepo) {
	avail := newMemAvailabilityRepo()
	ledger := newMemAppointmentRepo()
	svc := &DefaultSchedulingService{
		AvailabilityRepo: avail,
		AppointmentRepo:  ledger,
		Clock:            func() time.Time { return now },
	}
	return svc, avail, ledger
}

// weekdayTemplate builds a weekly availability with the same intervals on
// every day of the week.
func weekdayTemplate(providerID string, intervals ...models.WorkInterval) *models.WeeklyAvailability {
	weekly := &models.WeeklyAvailability{ProviderID: providerID}
	for i := range weekly.Days {
		weekly.Days[i] = models.DayTemplate{
			Weekday:     time.Weekday(i),
			IsAvailable: true,
			Intervals:   intervals,
		}
	}
	return weekly
}
