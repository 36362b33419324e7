package models

import (
	"strings"
	"time"
)

// SlotStatus is the closed set of availability states.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotPending   SlotStatus = "pending"
	SlotBooked    SlotStatus = "booked"
)

// ParseSlotStatus normalizes a raw status string into a SlotStatus.
func ParseSlotStatus(raw string) (SlotStatus, bool) {
	switch SlotStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case SlotAvailable:
		return SlotAvailable, true
	case SlotPending:
		return SlotPending, true
	case SlotBooked:
		return SlotBooked, true
	}
	return "", false
}

// DefaultLocation is applied whenever a slot's location is left blank.
const DefaultLocation = "To be confirmed"

// Availability is a bookable presentation time window. Slots are never
// physically deleted; retirement sets IsActive false. Version backs the
// optimistic write on the claim path.
type Availability struct {
	ID       int64      `json:"id"`
	Start    time.Time  `json:"start"`
	End      time.Time  `json:"end"`
	Location string     `json:"location"`
	Capacity *int       `json:"capacity"`
	Status   SlotStatus `json:"status"`
	IsActive bool       `json:"isActive"`
	Version  int64      `json:"-"`
}

// NormalizeLocation fills the default when blank.
func NormalizeLocation(location string) string {
	if strings.TrimSpace(location) == "" {
		return DefaultLocation
	}
	return location
}
