package utils

import "time"

const slotLabelLayout = "Monday, January 2 at 3:04 PM"

// SlotLabel renders a human-readable label for a slot window, e.g.
// "Monday, November 10 at 1:00 PM – Monday, November 10 at 2:00 PM".
// The label is denormalized onto bookings at claim time.
func SlotLabel(start, end time.Time) string {
	if start.IsZero() {
		return "Presentation slot"
	}
	label := start.Format(slotLabelLayout)
	if !end.IsZero() {
		label += " – " + end.Format(slotLabelLayout)
	}
	return label
}
