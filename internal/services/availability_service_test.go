package services

import (
	"testing"
	"time"

	"redapi/internal/domain"
	"redapi/internal/domain/models"
	"redapi/internal/repositories"
)

func newAvailabilityService() AvailabilityService {
	return AvailabilityService{
		Slots:    repositories.NewMemoryAvailabilityStore(),
		Bookings: repositories.NewMemoryBookingStore(),
	}
}

func TestCreateSlotDefaultsLocation(t *testing.T) {
	svc := newAvailabilityService()
	start := time.Now().Add(24 * time.Hour)

	slot, err := svc.CreateSlot(start, start.Add(time.Hour), "  ", nil)
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	if slot.Location != models.DefaultLocation {
		t.Fatalf("location = %q, want %q", slot.Location, models.DefaultLocation)
	}
	if slot.Status != models.SlotAvailable || !slot.IsActive {
		t.Fatalf("slot = status:%s active:%v", slot.Status, slot.IsActive)
	}
}

func TestCreateSlotEndBeforeStart(t *testing.T) {
	svc := newAvailabilityService()
	start := time.Now().Add(24 * time.Hour)

	if _, err := svc.CreateSlot(start, start, "", nil); !domain.IsValidation(err) {
		t.Fatalf("equal times: err = %v, want validation", err)
	}
	if _, err := svc.CreateSlot(start, start.Add(-time.Hour), "", nil); !domain.IsValidation(err) {
		t.Fatalf("end before start: err = %v, want validation", err)
	}
}

func TestUpdateSlotChecksFinalWindow(t *testing.T) {
	svc := newAvailabilityService()
	start := time.Now().Add(24 * time.Hour)
	slot, err := svc.CreateSlot(start, start.Add(time.Hour), "", nil)
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	// moving start past the existing end must fail on the merged result
	badStart := start.Add(2 * time.Hour)
	if _, err := svc.UpdateSlot(slot.ID, SlotPatch{Start: &badStart}); !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}

	// moving both is fine
	newEnd := badStart.Add(time.Hour)
	updated, err := svc.UpdateSlot(slot.ID, SlotPatch{Start: &badStart, End: &newEnd})
	if err != nil {
		t.Fatalf("UpdateSlot: %v", err)
	}
	if !updated.Start.Equal(badStart) || !updated.End.Equal(newEnd) {
		t.Fatalf("window = %v..%v", updated.Start, updated.End)
	}
}

func TestUpdateSlotStatusRefusedWhileOccupied(t *testing.T) {
	svc := newAvailabilityService()
	start := time.Now().Add(24 * time.Hour)
	slot, err := svc.CreateSlot(start, start.Add(time.Hour), "", nil)
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	engine := ReservationService{Slots: svc.Slots, Bookings: svc.Bookings}
	booking, err := engine.ClaimSlot(slot.ID, testDetails())
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	status := "available"
	if _, err := svc.UpdateSlot(slot.ID, SlotPatch{Status: &status}); !domain.IsConflict(err) {
		t.Fatalf("err = %v, want conflict while booking is non-terminal", err)
	}

	// once the booking is terminal the admin may force the status
	if _, err := engine.SelfCancel(booking.CancellationToken); err != nil {
		t.Fatalf("SelfCancel: %v", err)
	}
	forced := "Booked"
	updated, err := svc.UpdateSlot(slot.ID, SlotPatch{Status: &forced})
	if err != nil {
		t.Fatalf("UpdateSlot: %v", err)
	}
	if updated.Status != models.SlotBooked {
		t.Fatalf("status = %s, want lower-cased booked", updated.Status)
	}
}

func TestUpdateSlotUnsupportedStatus(t *testing.T) {
	svc := newAvailabilityService()
	start := time.Now().Add(24 * time.Hour)
	slot, err := svc.CreateSlot(start, start.Add(time.Hour), "", nil)
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	status := "reserved"
	if _, err := svc.UpdateSlot(slot.ID, SlotPatch{Status: &status}); !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestListPublicAttachesBookingWhenBooked(t *testing.T) {
	svc := newAvailabilityService()
	start := time.Now().Add(24 * time.Hour)
	slot, err := svc.CreateSlot(start, start.Add(time.Hour), "", nil)
	if err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}

	engine := ReservationService{Slots: svc.Slots, Bookings: svc.Bookings}
	booking, err := engine.ClaimSlot(slot.ID, testDetails())
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}
	if _, err := engine.AdminTransition(booking.ID, "confirmed"); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	listed, err := svc.ListPublic()
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d slots, want 1", len(listed))
	}
	if listed[0].Booking == nil || listed[0].Booking.ID != booking.ID {
		t.Fatal("booked slot should carry its booking details")
	}
}

func TestSeedCreatesWeekdaySlotsOnce(t *testing.T) {
	svc := newAvailabilityService()

	if err := svc.Seed(); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	slots, err := svc.ListSlots()
	if err != nil {
		t.Fatalf("ListSlots: %v", err)
	}
	// 2025-11-10 .. 2025-11-28 holds 15 weekdays
	if len(slots) != 15 {
		t.Fatalf("seeded %d slots, want 15", len(slots))
	}
	for _, s := range slots {
		switch s.Start.Weekday() {
		case time.Saturday, time.Sunday:
			t.Fatalf("seeded a weekend slot at %v", s.Start)
		}
		if s.Capacity == nil || *s.Capacity != 35 {
			t.Fatalf("capacity = %v, want 35", s.Capacity)
		}
	}

	// second run must be a no-op
	if err := svc.Seed(); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	again, err := svc.ListSlots()
	if err != nil {
		t.Fatalf("ListSlots: %v", err)
	}
	if len(again) != len(slots) {
		t.Fatalf("re-seed grew the pool to %d", len(again))
	}
}
