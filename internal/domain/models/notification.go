package models

import "time"

// NotificationKind identifies which booking event a notification describes.
type NotificationKind string

const (
	NotifyBookingPending   NotificationKind = "booking_pending"
	NotifyBookingConfirmed NotificationKind = "booking_confirmed"
	NotifyBookingRejected  NotificationKind = "booking_rejected"
	NotifyBookingCancelled NotificationKind = "booking_cancelled"
)

// RoutingKey maps a kind to the topic-exchange routing key used by the
// message-queue fanout.
func (k NotificationKind) RoutingKey() string {
	switch k {
	case NotifyBookingPending:
		return "booking.created"
	case NotifyBookingConfirmed:
		return "booking.confirmed"
	case NotifyBookingRejected:
		return "booking.rejected"
	case NotifyBookingCancelled:
		return "booking.cancelled"
	}
	return "booking.unknown"
}

// BookingEvent carries enough of a booking snapshot for downstream consumers.
type BookingEvent struct {
	BookingID int64     `json:"booking_id"`
	SlotID    string    `json:"slot_id"`
	Status    string    `json:"status"`
	School    string    `json:"school"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// NewBookingEvent snapshots a booking for publishing.
func NewBookingEvent(b Booking) BookingEvent {
	return BookingEvent{
		BookingID: b.ID,
		SlotID:    b.SlotID,
		Status:    string(b.Status),
		School:    b.School,
		Start:     b.PresentationStart,
		End:       b.PresentationEnd,
	}
}
