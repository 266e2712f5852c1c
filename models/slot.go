package models

import "fmt"

// Slot is a candidate bookable interval produced by the slot generator.
// It is ephemeral: slots are derived from availability plus the booking
// ledger and are never persisted on their own.
type Slot struct {
	Start int    `json:"start"` // minutes from midnight
	End   int    `json:"end"`   // minutes from midnight
	Label string `json:"label"` // e.g. "09:00 - 10:00"
}

// NewSlot builds a Slot with its display label attached.
func NewSlot(start, end int) Slot {
	return Slot{
		Start: start,
		End:   end,
		Label: fmt.Sprintf("%s - %s", MinuteLabel(start), MinuteLabel(end)),
	}
}

// MinuteLabel formats a minute-of-day value as "HH:MM".
func MinuteLabel(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
