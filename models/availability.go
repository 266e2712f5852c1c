package models

import "time"

// WorkInterval is a contiguous working range within a single day,
// expressed in minutes from midnight. The range is half-open: a
// provider working [540, 720) accepts sessions starting at 9:00 AM
// and finishing no later than 12:00 PM.
type WorkInterval struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// DayTemplate describes one weekday of a provider's recurring schedule.
type DayTemplate struct {
	Weekday     time.Weekday   `bson:"weekday" json:"weekday"`
	IsAvailable bool           `bson:"isAvailable" json:"isAvailable"`
	Intervals   []WorkInterval `bson:"intervals,omitempty" json:"intervals,omitempty"`
}

// WeeklyAvailability is a provider's recurring weekly working-hour template.
// Days is indexed by time.Weekday (Sunday = 0). Intervals within a day must
// be sorted and non-overlapping, with start < end.
type WeeklyAvailability struct {
	ProviderID string         `bson:"provider_id" json:"providerId"`
	Days       [7]DayTemplate `bson:"days" json:"days"`
	UpdatedAt  time.Time      `bson:"updated_at" json:"updatedAt"`
}

// AvailabilityException overrides the weekly template for one calendar date.
// When IsAvailable is true and AlternativeSlots is empty, the weekly
// intervals for that weekday still apply; supplied AlternativeSlots replace
// them entirely. At most one exception exists per (provider, date).
type AvailabilityException struct {
	ProviderID       string         `bson:"provider_id" json:"providerId"`
	Date             string         `bson:"date" json:"date"` // "2006-01-02"
	IsAvailable      bool           `bson:"isAvailable" json:"isAvailable"`
	AlternativeSlots []WorkInterval `bson:"alternativeSlots,omitempty" json:"alternativeSlots,omitempty"`
	Reason           string         `bson:"reason,omitempty" json:"reason,omitempty"`
	UpdatedAt        time.Time      `bson:"updated_at" json:"updatedAt"`
}

// DaySchedule is the resolved schedule for one provider on one date,
// after applying any exception on top of the weekly template.
type DaySchedule struct {
	ProviderID  string         `json:"providerId"`
	Date        string         `json:"date"`
	IsAvailable bool           `json:"isAvailable"`
	Intervals   []WorkInterval `json:"intervals,omitempty"`
}
