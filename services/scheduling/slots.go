package scheduling

import "counselhub/models"

// GenerateSlots turns a resolved day schedule into the candidate bookable
// slots for a session of durationMinutes with breakMinutes between
// sessions. It is a pure function: same input, same output, in order.
//
// Packing is greedy left-to-right with no look-ahead. A cursor walks each
// work interval; a slot is emitted whenever a full session still fits, and
// the cursor then advances by duration plus break. Remainders near an
// interval's end that cannot hold a full session are dropped: partial
// slots are never offered.
func GenerateSlots(day models.DaySchedule, durationMinutes, breakMinutes int) []models.Slot {
	if !day.IsAvailable || durationMinutes <= 0 {
		return nil
	}
	if breakMinutes < 0 {
		breakMinutes = 0
	}

	var slots []models.Slot
	for _, iv := range day.Intervals {
		for cursor := iv.Start; cursor+durationMinutes <= iv.End; cursor += durationMinutes + breakMinutes {
			slots = append(slots, models.NewSlot(cursor, cursor+durationMinutes))
		}
	}
	return slots
}
