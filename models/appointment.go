package models

import "time"

// Appointment statuses. An appointment is created pending and only ever
// moves forward through the lifecycle; cancelled, completed and no_show
// are terminal. Rows are never deleted, so "is this slot free" is always
// derived from status.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Session types.
const (
	TypeOnline   = "online"
	TypeInPerson = "in_person"
	TypePhone    = "phone"
)

// ActiveStatuses are the statuses that occupy a slot. Every query that
// answers "is this interval free" must filter on exactly this set.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// StatusChange is one entry in an appointment's audit trail.
type StatusChange struct {
	Status    string    `bson:"status" json:"status"`
	ChangedBy string    `bson:"changed_by" json:"changedBy"`
	ChangedAt time.Time `bson:"changed_at" json:"changedAt"`
	Reason    string    `bson:"reason,omitempty" json:"reason,omitempty"`
}

// AppointmentFeedback may be attached after a session completes. It never
// alters the appointment's status.
type AppointmentFeedback struct {
	Rating      int       `bson:"rating" json:"rating"`
	Comment     string    `bson:"comment,omitempty" json:"comment,omitempty"`
	SubmittedBy string    `bson:"submitted_by" json:"submittedBy"`
	SubmittedAt time.Time `bson:"submitted_at" json:"submittedAt"`
}

// Appointment is the persisted booking record. Start/End are minutes from
// midnight on Date; the pair is half-open and Start < End. For a fixed
// (provider, date) no two appointments with an active status may overlap.
type Appointment struct {
	ID         string `bson:"id" json:"id"`
	ProviderID string `bson:"provider_id" json:"providerId"`
	SubjectID  string `bson:"subject_id" json:"subjectId"`
	Date       string `bson:"date" json:"date"` // "2006-01-02"
	Start      int    `bson:"start" json:"start"`
	End        int    `bson:"end" json:"end"`
	Type       string `bson:"type" json:"type"`
	Status     string `bson:"status" json:"status"`
	Reason     string `bson:"reason,omitempty" json:"reason,omitempty"`
	Notes      string `bson:"notes,omitempty" json:"notes,omitempty"`

	StatusHistory []StatusChange       `bson:"status_history" json:"statusHistory"`
	Feedback      *AppointmentFeedback `bson:"feedback,omitempty" json:"feedback,omitempty"`

	// Snapshot of the provider's cancellation policy at creation time,
	// so later policy edits do not affect in-flight appointments.
	CancellationPolicy CancellationPolicy `bson:"cancellation_policy" json:"cancellationPolicy"`

	Version   int       `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsTerminal reports whether the appointment can no longer change status.
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// StartTime returns the absolute start of the appointment in the given
// location.
func (a *Appointment) StartTime(loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", a.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(a.Start) * time.Minute), nil
}

// AppointmentRequest is the payload for creating an appointment.
type AppointmentRequest struct {
	ProviderID string `json:"providerId" binding:"required"`
	SubjectID  string `json:"subjectId" binding:"required"`
	Date       string `json:"date" binding:"required"` // "2006-01-02"
	Start      int    `json:"start"`
	End        int    `json:"end" binding:"required"`
	Type       string `json:"type"`
	Reason     string `json:"reason,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// AppointmentFilter narrows appointment listings. Zero-valued fields are
// ignored.
type AppointmentFilter struct {
	ProviderID string
	SubjectID  string
	Date       string
	Status     string
	Limit      int64
}

// Actor identifies who is performing a lifecycle action. Identity and role
// come from the host's auth layer; the engine only checks ownership.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"` // "subject", "provider" or "staff"
}

// Actor roles.
const (
	RoleSubject  = "subject"
	RoleProvider = "provider"
	RoleStaff    = "staff"
)

// ExpirePendingPayload is the asynq task payload for the pending-expiry
// sweep scheduled at an appointment's start time.
type ExpirePendingPayload struct {
	AppointmentID string `json:"appointmentId"`
}
