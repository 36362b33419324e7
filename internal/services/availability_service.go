package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"redapi/internal/domain"
	"redapi/internal/domain/models"
	"redapi/internal/repositories"
	"redapi/internal/utils"
)

// AvailabilityService manages the slot pool: CRUD, the public listing, and
// the seed routine. Booking-driven slot transitions live in ReservationService.
type AvailabilityService struct {
	Slots     SlotStore
	Bookings  BookingStore
	RequestID string
}

// SlotPatch carries optional overlays for an update; nil fields are untouched.
type SlotPatch struct {
	Start    *time.Time
	End      *time.Time
	Location *string
	Capacity *int
	Status   *string
	IsActive *bool
}

// SlotWithBooking pairs a slot with the booking occupying it, when booked.
type SlotWithBooking struct {
	models.Availability
	Booking *models.Booking `json:"booking,omitempty"`
}

// CreateSlot adds a new active, available slot.
func (s AvailabilityService) CreateSlot(start, end time.Time, location string, capacity *int) (models.Availability, error) {
	if start.IsZero() || end.IsZero() {
		return models.Availability{}, domain.ValidationError{Field: "start", Msg: "start and end are required"}
	}
	if !end.After(start) {
		return models.Availability{}, domain.ValidationError{Field: "end", Msg: "end time must be after start time"}
	}

	slot := models.Availability{
		Start:    start,
		End:      end,
		Location: models.NormalizeLocation(location),
		Capacity: capacity,
		Status:   models.SlotAvailable,
		IsActive: true,
	}
	saved, err := s.Slots.Save(slot)
	if err != nil {
		return models.Availability{}, err
	}
	utils.LogEvent(s.RequestID, "availability", "create_slot", fmt.Sprintf("slot_id=%d", saved.ID))
	return saved, nil
}

// UpdateSlot applies a patch to a slot. The end-after-start rule is checked on
// the final state, after every overlay. A status overlay is refused while a
// non-terminal booking references the slot; the booking state machine owns
// those transitions.
func (s AvailabilityService) UpdateSlot(id int64, patch SlotPatch) (models.Availability, error) {
	for attempt := 0; attempt < claimAttempts; attempt++ {
		slot, err := s.Slots.Get(id)
		if err != nil {
			return models.Availability{}, err
		}

		if patch.Start != nil {
			slot.Start = *patch.Start
		}
		if patch.End != nil {
			slot.End = *patch.End
		}
		if patch.Location != nil {
			slot.Location = models.NormalizeLocation(*patch.Location)
		}
		if patch.Capacity != nil {
			slot.Capacity = patch.Capacity
		}
		if patch.Status != nil {
			status, ok := models.ParseSlotStatus(*patch.Status)
			if !ok {
				return models.Availability{}, domain.ValidationError{Field: "status", Msg: "unsupported slot status: " + *patch.Status}
			}
			if status != slot.Status {
				occupied, err := s.hasNonTerminalBooking(id)
				if err != nil {
					return models.Availability{}, err
				}
				if occupied {
					return models.Availability{}, domain.ConflictError{Resource: "slot", Msg: "a booking still holds this slot; update the booking instead"}
				}
				slot.Status = status
			}
		}
		if patch.IsActive != nil {
			slot.IsActive = *patch.IsActive
		}

		if !slot.End.After(slot.Start) {
			return models.Availability{}, domain.ValidationError{Field: "end", Msg: "end time must be after start time"}
		}

		saved, err := s.Slots.Save(slot)
		if errors.Is(err, repositories.ErrStaleSlot) {
			continue
		}
		if err != nil {
			return models.Availability{}, err
		}
		utils.LogEvent(s.RequestID, "availability", "update_slot", fmt.Sprintf("slot_id=%d", saved.ID))
		return saved, nil
	}
	return models.Availability{}, domain.ConflictError{Resource: "slot", Msg: "slot is being modified concurrently"}
}

// ListSlots returns every slot for the admin view.
func (s AvailabilityService) ListSlots() ([]models.Availability, error) {
	return s.Slots.List(false)
}

// ListPublic returns active upcoming slots, each carrying the occupying
// booking's details when the slot is booked.
func (s AvailabilityService) ListPublic() ([]SlotWithBooking, error) {
	slots, err := s.Slots.List(true)
	if err != nil {
		return nil, err
	}

	out := make([]SlotWithBooking, 0, len(slots))
	for _, slot := range slots {
		entry := SlotWithBooking{Availability: slot}
		if slot.Status == models.SlotBooked {
			if b, err := s.Bookings.GetLatestBySlot(strconv.FormatInt(slot.ID, 10)); err == nil {
				entry.Booking = &b
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s AvailabilityService) hasNonTerminalBooking(slotID int64) (bool, error) {
	latest, err := s.Bookings.GetLatestBySlot(strconv.FormatInt(slotID, 10))
	if err != nil {
		if domain.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return !latest.Status.IsTerminal(), nil
}

// Seed populates weekday hour slots for the launch window when the pool is
// empty. Gated by SEED_AVAILABILITY.
func (s AvailabilityService) Seed() error {
	count, err := s.Slots.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	capacity := 35
	startDate := time.Date(2025, time.November, 10, 13, 0, 0, 0, time.Local)
	endDate := time.Date(2025, time.November, 28, 13, 0, 0, 0, time.Local)

	created := 0
	for pointer := startDate; !pointer.After(endDate); pointer = pointer.AddDate(0, 0, 1) {
		switch pointer.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		c := capacity
		if _, err := s.CreateSlot(pointer, pointer.Add(time.Hour), models.DefaultLocation, &c); err != nil {
			return err
		}
		created++
	}
	utils.LogEvent(s.RequestID, "availability", "seed", fmt.Sprintf("slots=%d", created))
	return nil
}
