package reservation

import (
	"strings"
	"time"
)

// The chain runs two fixed seating shifts. A first-shift start is paired
// with the earliest second-shift start that fits a full service after it.
var (
	firstShiftSlots  = []string{"10:30", "12:15", "14:00", "15:45", "17:30", "19:15", "21:00"}
	secondShiftSlots = []string{"12:00", "13:45", "15:30", "17:15", "19:00", "20:45", "22:30"}
)

// serviceDuration is the fixed time a table is held for one party.
const serviceDuration = 90 * time.Minute

const clockLayout = "15:04"

// SplitSlot splits a paired slot string ("HH:MM - HH:MM") into its start and
// end, trimmed. ok is false for single-value slots.
func SplitSlot(slot string) (from, to string, ok bool) {

	if !strings.Contains(slot, "-") {
		return "", "", false
	}

	parts := strings.SplitN(slot, "-", 2)

	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

// NextServiceTime derives the slot end for a single start time: the start
// plus the service duration, snapped to the first second-shift start that is
// not earlier. Empty when the start does not parse or no shift start fits.
func NextServiceTime(start string) string {

	startTime, err := time.Parse(clockLayout, start)
	if err != nil {
		return ""
	}

	calculated := startTime.Add(serviceDuration)

	for _, slot := range secondShiftSlots {

		slotTime, err := time.Parse(clockLayout, slot)
		if err != nil {
			continue
		}

		if !slotTime.Before(calculated) {
			return slot
		}
	}

	return ""
}

// FirstShiftSlots lists the selectable start times, in order.
func FirstShiftSlots() []string {
	return append([]string(nil), firstShiftSlots...)
}
