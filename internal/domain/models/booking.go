package models

import (
	"strings"
	"time"
)

// BookingStatus is the closed set of booking lifecycle states.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

// ParseBookingStatus normalizes a raw status string into a BookingStatus.
func ParseBookingStatus(raw string) (BookingStatus, bool) {
	switch BookingStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case BookingPending:
		return BookingPending, true
	case BookingConfirmed:
		return BookingConfirmed, true
	case BookingRejected:
		return BookingRejected, true
	case BookingCancelled:
		return BookingCancelled, true
	}
	return "", false
}

// IsTerminal reports whether the booking has released its slot.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingRejected || s == BookingCancelled
}

// SlotStatusFor is the single propagation table from booking state to slot
// state. All callers go through here so the two entities cannot drift.
func (s BookingStatus) SlotStatusFor() (SlotStatus, bool) {
	switch s {
	case BookingPending:
		return SlotPending, true
	case BookingConfirmed:
		return SlotBooked, true
	case BookingRejected, BookingCancelled:
		return SlotAvailable, true
	}
	return "", false
}

// Booking is a school's request to occupy a slot. SlotLabel and the
// presentation times are denormalized from the slot at claim time so later
// slot edits never rewrite what the requester was shown. CancellationToken is
// generated once and never changes.
type Booking struct {
	ID                int64         `json:"id"`
	Name              string        `json:"name"`
	Email             string        `json:"email"`
	Phone             string        `json:"phone"`
	School            string        `json:"school"`
	PresentationType  string        `json:"presentationType"`
	Location          string        `json:"location"`
	ExtraNotes        string        `json:"extraNotes,omitempty"`
	SlotID            string        `json:"slotId"`
	SlotLabel         string        `json:"slotLabel"`
	PresentationStart time.Time     `json:"presentationStart"`
	PresentationEnd   time.Time     `json:"presentationEnd"`
	Status            BookingStatus `json:"status"`
	CancellationToken string        `json:"-"`
	CreatedAt         time.Time     `json:"createdAt"`
}
