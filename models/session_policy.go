package models

// CancellationPolicy governs whether and how late an appointment may be
// cancelled. MinNoticeHours is enforced with a strict comparison: an
// appointment is cancellable only while more than MinNoticeHours remain
// before its start.
type CancellationPolicy struct {
	AllowCancellation bool `bson:"allowCancellation" json:"allowCancellation"`
	MinNoticeHours    int  `bson:"minNoticeHours" json:"minNoticeHours"`
}

// SessionPolicy holds a provider's booking rules.
type SessionPolicy struct {
	ProviderID                  string             `bson:"provider_id" json:"providerId"`
	DefaultDurationMinutes      int                `bson:"defaultDurationMinutes" json:"defaultDurationMinutes"`
	BreakBetweenSessionsMinutes int                `bson:"breakBetweenSessionsMinutes" json:"breakBetweenSessionsMinutes"`
	MaxAppointmentsPerDay       int                `bson:"maxAppointmentsPerDay" json:"maxAppointmentsPerDay"` // 0 means unlimited
	AdvanceBookingDays          int                `bson:"advanceBookingDays" json:"advanceBookingDays"`       // 0 means unlimited
	Cancellation                CancellationPolicy `bson:"cancellation" json:"cancellation"`
}

// DefaultSessionPolicy returns the policy applied to providers that have
// not configured one yet.
func DefaultSessionPolicy(providerID string) *SessionPolicy {
	return &SessionPolicy{
		ProviderID:                  providerID,
		DefaultDurationMinutes:      60,
		BreakBetweenSessionsMinutes: 0,
		MaxAppointmentsPerDay:       0,
		AdvanceBookingDays:          30,
		Cancellation: CancellationPolicy{
			AllowCancellation: true,
			MinNoticeHours:    24,
		},
	}
}
