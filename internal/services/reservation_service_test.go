package services

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"redapi/internal/domain"
	"redapi/internal/domain/models"
	"redapi/internal/repositories"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.NotificationKind
}

func (r *recordingNotifier) Notify(kind models.NotificationKind, _ models.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, kind)
}

func (r *recordingNotifier) kinds() []models.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.NotificationKind, len(r.events))
	copy(out, r.events)
	return out
}

func newTestEngine(t *testing.T) (ReservationService, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	return ReservationService{
		Slots:    repositories.NewMemoryAvailabilityStore(),
		Bookings: repositories.NewMemoryBookingStore(),
		Notifier: notifier,
	}, notifier
}

func mustCreateSlot(t *testing.T, slots SlotStore) models.Availability {
	t.Helper()
	slot, err := slots.Save(models.Availability{
		Start:    time.Date(2025, time.November, 10, 13, 0, 0, 0, time.Local),
		End:      time.Date(2025, time.November, 10, 14, 0, 0, 0, time.Local),
		Location: models.DefaultLocation,
		Status:   models.SlotAvailable,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	return slot
}

func testDetails() ClaimDetails {
	return ClaimDetails{
		Name:             "Jordan Lee",
		Email:            "jordan@example.org",
		Phone:            "403-555-0101",
		School:           "Maple Ridge Elementary",
		PresentationType: "Grade 5 program",
		Location:         "Gymnasium",
	}
}

func TestClaimSlotCreatesPendingBooking(t *testing.T) {
	svc, notifier := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)

	booking, err := svc.ClaimSlot(slot.ID, testDetails())
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}
	if booking.Status != models.BookingPending {
		t.Fatalf("booking status = %s, want pending", booking.Status)
	}
	if booking.CancellationToken == "" {
		t.Fatal("cancellation token not generated")
	}
	if booking.SlotID != strconv.FormatInt(slot.ID, 10) {
		t.Fatalf("slot id = %q", booking.SlotID)
	}
	if booking.SlotLabel == "" || booking.PresentationStart.IsZero() {
		t.Fatal("slot details not denormalized onto booking")
	}

	updated, err := svc.Slots.Get(slot.ID)
	if err != nil {
		t.Fatalf("reload slot: %v", err)
	}
	if updated.Status != models.SlotPending {
		t.Fatalf("slot status = %s, want pending", updated.Status)
	}

	kinds := notifier.kinds()
	if len(kinds) != 1 || kinds[0] != models.NotifyBookingPending {
		t.Fatalf("notifications = %v, want one pending", kinds)
	}

	// second claim on the now-pending slot
	if _, err := svc.ClaimSlot(slot.ID, testDetails()); !domain.IsConflict(err) {
		t.Fatalf("second claim error = %v, want conflict", err)
	}
}

func TestClaimSlotInactive(t *testing.T) {
	svc, _ := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)
	slot.IsActive = false
	if _, err := svc.Slots.Save(slot); err != nil {
		t.Fatalf("save: %v", err)
	}

	if _, err := svc.ClaimSlot(slot.ID, testDetails()); !domain.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestClaimSlotMissing(t *testing.T) {
	svc, _ := newTestEngine(t)
	if _, err := svc.ClaimSlot(999, testDetails()); !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestClaimSlotSerializablePerSlot(t *testing.T) {
	svc, _ := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)

	const claims = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < claims; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.ClaimSlot(slot.ID, testDetails())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case domain.IsConflict(err):
				conflicts++
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins)
	}
	if conflicts != claims-1 {
		t.Fatalf("conflicts = %d, want %d", conflicts, claims-1)
	}
}

func TestAdminTransitionSameStatusNoOp(t *testing.T) {
	svc, notifier := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)
	booking, err := svc.ClaimSlot(slot.ID, testDetails())
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	before := len(notifier.kinds())
	same, err := svc.AdminTransition(booking.ID, "pending")
	if err != nil {
		t.Fatalf("AdminTransition: %v", err)
	}
	if same.Status != models.BookingPending {
		t.Fatalf("status = %s", same.Status)
	}
	if len(notifier.kinds()) != before {
		t.Fatal("no-op transition fired a notification")
	}
}

func TestAdminTransitionUnsupportedStatus(t *testing.T) {
	svc, _ := newTestEngine(t)
	if _, err := svc.AdminTransition(1, "archived"); !domain.IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestAdminTransitionCancelledImmutable(t *testing.T) {
	svc, _ := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)
	booking, err := svc.ClaimSlot(slot.ID, testDetails())
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}
	if _, err := svc.AdminTransition(booking.ID, "cancelled"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	for _, status := range []string{"pending", "confirmed", "rejected"} {
		if _, err := svc.AdminTransition(booking.ID, status); !domain.IsConflict(err) {
			t.Fatalf("transition to %s: err = %v, want conflict", status, err)
		}
	}

	// re-cancel is an idempotent no-op
	b, err := svc.AdminTransition(booking.ID, "cancelled")
	if err != nil {
		t.Fatalf("re-cancel: %v", err)
	}
	if b.Status != models.BookingCancelled {
		t.Fatalf("status = %s", b.Status)
	}
}

func TestAdminTransitionPropagatesSlotStatus(t *testing.T) {
	svc, notifier := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)
	booking, err := svc.ClaimSlot(slot.ID, testDetails())
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	cases := []struct {
		status   string
		wantSlot models.SlotStatus
		wantKind models.NotificationKind
	}{
		{"confirmed", models.SlotBooked, models.NotifyBookingConfirmed},
		{"rejected", models.SlotAvailable, models.NotifyBookingRejected},
	}
	for _, tc := range cases {
		if _, err := svc.AdminTransition(booking.ID, tc.status); err != nil {
			t.Fatalf("transition to %s: %v", tc.status, err)
		}
		reloaded, err := svc.Slots.Get(slot.ID)
		if err != nil {
			t.Fatalf("reload slot: %v", err)
		}
		if reloaded.Status != tc.wantSlot {
			t.Fatalf("after %s slot status = %s, want %s", tc.status, reloaded.Status, tc.wantSlot)
		}
		kinds := notifier.kinds()
		if kinds[len(kinds)-1] != tc.wantKind {
			t.Fatalf("after %s last notification = %s, want %s", tc.status, kinds[len(kinds)-1], tc.wantKind)
		}
	}
}

func TestAdminTransitionToleratesMissingSlot(t *testing.T) {
	svc, _ := newTestEngine(t)
	booking, err := svc.Bookings.Save(models.Booking{
		Name:      "Jordan Lee",
		Email:     "jordan@example.org",
		SlotID:    "not-a-number",
		Status:    models.BookingPending,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed booking: %v", err)
	}

	updated, err := svc.AdminTransition(booking.ID, "confirmed")
	if err != nil {
		t.Fatalf("AdminTransition: %v", err)
	}
	if updated.Status != models.BookingConfirmed {
		t.Fatalf("status = %s", updated.Status)
	}
}

func TestSelfCancelIdempotent(t *testing.T) {
	svc, _ := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)
	booking, err := svc.ClaimSlot(slot.ID, testDetails())
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}

	first, err := svc.SelfCancel(booking.CancellationToken)
	if err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	second, err := svc.SelfCancel(booking.CancellationToken)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if first.Status != models.BookingCancelled || second.Status != models.BookingCancelled {
		t.Fatalf("statuses = %s, %s", first.Status, second.Status)
	}

	reloaded, err := svc.Slots.Get(slot.ID)
	if err != nil {
		t.Fatalf("reload slot: %v", err)
	}
	if reloaded.Status != models.SlotAvailable {
		t.Fatalf("slot status = %s, want available", reloaded.Status)
	}
}

func TestSelfCancelRejectedBooking(t *testing.T) {
	svc, _ := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)
	booking, err := svc.ClaimSlot(slot.ID, testDetails())
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}
	if _, err := svc.AdminTransition(booking.ID, "rejected"); err != nil {
		t.Fatalf("reject: %v", err)
	}

	if _, err := svc.SelfCancel(booking.CancellationToken); !domain.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestSelfCancelUnknownToken(t *testing.T) {
	svc, _ := newTestEngine(t)
	if _, err := svc.SelfCancel("no-such-token"); !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDisableSlotCancelsOccupant(t *testing.T) {
	svc, notifier := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)
	booking, err := svc.ClaimSlot(slot.ID, testDetails())
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}
	before := len(notifier.kinds())

	if err := svc.DisableSlot(slot.ID); err != nil {
		t.Fatalf("DisableSlot: %v", err)
	}

	reloaded, err := svc.Slots.Get(slot.ID)
	if err != nil {
		t.Fatalf("reload slot: %v", err)
	}
	if reloaded.IsActive || reloaded.Status != models.SlotAvailable {
		t.Fatalf("slot = active:%v status:%s, want inactive/available", reloaded.IsActive, reloaded.Status)
	}

	occupant, err := svc.Bookings.Get(booking.ID)
	if err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if occupant.Status != models.BookingCancelled {
		t.Fatalf("booking status = %s, want cancelled", occupant.Status)
	}

	// consistency fix-up, not a user cancellation
	if len(notifier.kinds()) != before {
		t.Fatal("DisableSlot fired a notification")
	}
}

func TestDisableSlotMissing(t *testing.T) {
	svc, _ := newTestEngine(t)
	if err := svc.DisableSlot(42); !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestClaimConfirmSelfCancelRoundTrip(t *testing.T) {
	svc, _ := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)

	booking, err := svc.ClaimSlot(slot.ID, testDetails())
	if err != nil {
		t.Fatalf("ClaimSlot: %v", err)
	}
	if _, err := svc.AdminTransition(booking.ID, "confirmed"); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	final, err := svc.SelfCancel(booking.CancellationToken)
	if err != nil {
		t.Fatalf("SelfCancel: %v", err)
	}

	if final.Status != models.BookingCancelled {
		t.Fatalf("booking status = %s, want cancelled", final.Status)
	}
	reloaded, err := svc.Slots.Get(slot.ID)
	if err != nil {
		t.Fatalf("reload slot: %v", err)
	}
	if reloaded.Status != models.SlotAvailable || !reloaded.IsActive {
		t.Fatalf("slot = status:%s active:%v, want available/active", reloaded.Status, reloaded.IsActive)
	}
}

type failingBookingStore struct {
	BookingStore
}

func (f failingBookingStore) Save(models.Booking) (models.Booking, error) {
	return models.Booking{}, domain.InternalError{Err: errors.New("insert failed")}
}

func TestClaimSlotReleasesHoldWhenBookingInsertFails(t *testing.T) {
	svc, notifier := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)
	svc.Bookings = failingBookingStore{BookingStore: svc.Bookings}

	if _, err := svc.ClaimSlot(slot.ID, testDetails()); err == nil {
		t.Fatal("ClaimSlot succeeded despite the booking insert failing")
	}

	reloaded, err := svc.Slots.Get(slot.ID)
	if err != nil {
		t.Fatalf("reload slot: %v", err)
	}
	if reloaded.Status != models.SlotAvailable {
		t.Fatalf("slot status = %s after failed claim, want available", reloaded.Status)
	}
	if len(notifier.kinds()) != 0 {
		t.Fatalf("notifications sent for a failed claim: %v", notifier.kinds())
	}
}

type staleSlotStore struct {
	SlotStore
}

func (s staleSlotStore) Save(models.Availability) (models.Availability, error) {
	return models.Availability{}, repositories.ErrStaleSlot
}

func TestDisableSlotSurfacesContention(t *testing.T) {
	svc, _ := newTestEngine(t)
	slot := mustCreateSlot(t, svc.Slots)
	inner := svc.Slots
	svc.Slots = staleSlotStore{SlotStore: inner}

	if err := svc.DisableSlot(slot.ID); !domain.IsConflict(err) {
		t.Fatalf("err = %v, want conflict", err)
	}

	reloaded, err := inner.Get(slot.ID)
	if err != nil {
		t.Fatalf("reload slot: %v", err)
	}
	if !reloaded.IsActive {
		t.Fatal("slot deactivated even though every save was reported stale")
	}
}
