package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"redapi/internal/domain"
	"redapi/internal/domain/models"
	"redapi/internal/repositories"
	"redapi/internal/utils"

	"github.com/google/uuid"
)

// SlotStore is the contract the engine needs from availability storage.
// Save must reject writes whose version no longer matches the stored row.
type SlotStore interface {
	Get(id int64) (models.Availability, error)
	List(onlyActiveUpcoming bool) ([]models.Availability, error)
	Count() (int, error)
	Save(models.Availability) (models.Availability, error)
}

// BookingStore is the contract the engine needs from booking storage.
type BookingStore interface {
	Get(id int64) (models.Booking, error)
	GetByCancellationToken(token string) (models.Booking, error)
	GetLatestBySlot(slotID string) (models.Booking, error)
	ListByStatus(status models.BookingStatus) ([]models.Booking, error)
	List() ([]models.Booking, error)
	Save(models.Booking) (models.Booking, error)
}

// Notifier consumes booking events. Implementations absorb their own failures;
// nothing here may roll back a state transition.
type Notifier interface {
	Notify(kind models.NotificationKind, booking models.Booking)
}

// ReservationService is the booking/slot state machine. Every operation
// re-reads current store state before deciding; nothing is cached across calls.
type ReservationService struct {
	Slots     SlotStore
	Bookings  BookingStore
	Notifier  Notifier
	RequestID string
}

// ClaimDetails carries the requester contact fields for a new booking.
type ClaimDetails struct {
	Name             string
	Email            string
	Phone            string
	School           string
	PresentationType string
	Location         string
	ExtraNotes       string
}

// claimAttempts bounds the optimistic retry loop on slot writes.
const claimAttempts = 3

// ClaimSlot reserves an available slot for a school. The slot write is the
// serialization point: of N concurrent claims on one slot, exactly one CAS
// save wins and the rest re-read, see the slot pending, and get a conflict.
func (s ReservationService) ClaimSlot(slotID int64, d ClaimDetails) (models.Booking, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		slot, err := s.Slots.Get(slotID)
		if err != nil {
			return models.Booking{}, err
		}
		if !slot.IsActive {
			return models.Booking{}, domain.ConflictError{Resource: "slot", Msg: "this slot is no longer active"}
		}
		if slot.Status != models.SlotAvailable {
			return models.Booking{}, domain.ConflictError{Resource: "slot", Msg: "this slot has already been booked"}
		}

		slot.Status = models.SlotPending
		saved, err := s.Slots.Save(slot)
		if errors.Is(err, repositories.ErrStaleSlot) {
			continue
		}
		if err != nil {
			return models.Booking{}, err
		}

		booking := models.Booking{
			Name:              d.Name,
			Email:             d.Email,
			Phone:             d.Phone,
			School:            d.School,
			PresentationType:  d.PresentationType,
			Location:          d.Location,
			ExtraNotes:        d.ExtraNotes,
			SlotID:            strconv.FormatInt(saved.ID, 10),
			SlotLabel:         utils.SlotLabel(saved.Start, saved.End),
			PresentationStart: saved.Start,
			PresentationEnd:   saved.End,
			Status:            models.BookingPending,
			CancellationToken: uuid.NewString(),
			CreatedAt:         time.Now(),
		}
		created, err := s.Bookings.Save(booking)
		if err != nil {
			s.releaseSlot(saved)
			return models.Booking{}, err
		}

		utils.LogEvent(s.RequestID, "reservation", "claim_slot",
			fmt.Sprintf("booking_id=%d slot_id=%d", created.ID, saved.ID))
		s.notify(models.NotifyBookingPending, created)
		return created, nil
	}
	return models.Booking{}, domain.ConflictError{Resource: "slot", Msg: "this slot has already been booked"}
}

// AdminTransition moves a booking to a new status on the admin path and
// propagates the change to the referenced slot.
func (s ReservationService) AdminTransition(bookingID int64, rawStatus string) (models.Booking, error) {
	newStatus, ok := models.ParseBookingStatus(rawStatus)
	if !ok {
		return models.Booking{}, domain.ValidationError{Field: "status", Msg: "unsupported booking status: " + rawStatus}
	}

	booking, err := s.Bookings.Get(bookingID)
	if err != nil {
		return models.Booking{}, err
	}

	if booking.Status == models.BookingCancelled && newStatus != models.BookingCancelled {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "cancelled bookings cannot be updated"}
	}
	if newStatus == booking.Status {
		return booking, nil
	}

	booking.Status = newStatus
	saved, err := s.Bookings.Save(booking)
	if err != nil {
		return models.Booking{}, err
	}

	s.propagateSlotStatus(saved)

	utils.LogEvent(s.RequestID, "reservation", "admin_transition",
		fmt.Sprintf("booking_id=%d status=%s", saved.ID, saved.Status))

	switch saved.Status {
	case models.BookingConfirmed:
		s.notify(models.NotifyBookingConfirmed, saved)
	case models.BookingRejected:
		s.notify(models.NotifyBookingRejected, saved)
	case models.BookingCancelled:
		s.notify(models.NotifyBookingCancelled, saved)
	}
	return saved, nil
}

// GetByCancellationToken resolves the booking a self-service token points at.
func (s ReservationService) GetByCancellationToken(token string) (models.Booking, error) {
	return s.Bookings.GetByCancellationToken(token)
}

// SelfCancel cancels a booking through its cancellation token. Cancelling an
// already cancelled booking is an idempotent success; a rejected booking
// refuses cancellation.
func (s ReservationService) SelfCancel(token string) (models.Booking, error) {
	booking, err := s.Bookings.GetByCancellationToken(token)
	if err != nil {
		return models.Booking{}, err
	}

	if booking.Status == models.BookingCancelled {
		return booking, nil
	}
	if booking.Status == models.BookingRejected {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "this booking request has already been rejected"}
	}

	booking.Status = models.BookingCancelled
	saved, err := s.Bookings.Save(booking)
	if err != nil {
		return models.Booking{}, err
	}

	s.propagateSlotStatus(saved)

	utils.LogEvent(s.RequestID, "reservation", "self_cancel", fmt.Sprintf("booking_id=%d", saved.ID))
	s.notify(models.NotifyBookingCancelled, saved)
	return saved, nil
}

// DisableSlot retires a slot: inactive, available, and with no non-terminal
// booking left pointing at it. The forced booking cancellation is a
// consistency fix-up, so it sends no notification.
func (s ReservationService) DisableSlot(slotID int64) error {
	disabled := false
	for attempt := 0; attempt < claimAttempts; attempt++ {
		slot, err := s.Slots.Get(slotID)
		if err != nil {
			return err
		}
		slot.IsActive = false
		slot.Status = models.SlotAvailable
		if _, err := s.Slots.Save(slot); errors.Is(err, repositories.ErrStaleSlot) {
			continue
		} else if err != nil {
			return err
		}
		disabled = true
		break
	}
	if !disabled {
		return domain.ConflictError{Resource: "slot", Msg: "slot is being modified concurrently"}
	}

	latest, err := s.Bookings.GetLatestBySlot(strconv.FormatInt(slotID, 10))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}
	if !latest.Status.IsTerminal() {
		latest.Status = models.BookingCancelled
		if _, err := s.Bookings.Save(latest); err != nil {
			return err
		}
	}

	utils.LogEvent(s.RequestID, "reservation", "disable_slot", fmt.Sprintf("slot_id=%d", slotID))
	return nil
}

// releaseSlot undoes a claim whose booking insert failed, restoring the slot
// to available so the hold does not outlive the failed claim. Best effort: a
// racing admin write wins.
func (s ReservationService) releaseSlot(slot models.Availability) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		slot.Status = models.SlotAvailable
		if _, err := s.Slots.Save(slot); !errors.Is(err, repositories.ErrStaleSlot) {
			if err != nil {
				utils.LogEvent(s.RequestID, "reservation", "release_slot",
					fmt.Sprintf("slot_id=%d error=%v", slot.ID, err))
			}
			return
		}
		reread, err := s.Slots.Get(slot.ID)
		if err != nil {
			return
		}
		slot = reread
	}
}

// propagateSlotStatus pushes a booking's status onto its slot. A blank or
// unparsable slot id, or a slot that no longer exists, is tolerated: the
// booking transition stands and the slot is left alone.
func (s ReservationService) propagateSlotStatus(b models.Booking) {
	if strings.TrimSpace(b.SlotID) == "" {
		return
	}
	slotID, err := strconv.ParseInt(b.SlotID, 10, 64)
	if err != nil {
		return
	}
	target, ok := b.Status.SlotStatusFor()
	if !ok {
		return
	}

	for attempt := 0; attempt < claimAttempts; attempt++ {
		slot, err := s.Slots.Get(slotID)
		if err != nil {
			return
		}
		if slot.Status == target {
			return
		}
		slot.Status = target
		if _, err := s.Slots.Save(slot); errors.Is(err, repositories.ErrStaleSlot) {
			continue
		}
		return
	}
}

func (s ReservationService) notify(kind models.NotificationKind, b models.Booking) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Notify(kind, b)
}
