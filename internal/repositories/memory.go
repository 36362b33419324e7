package repositories

import (
	"sort"
	"sync"
	"time"

	"redapi/internal/domain"
	"redapi/internal/domain/models"
)

// In-memory store implementations. They back the MEMORY_STORE dev mode and the
// service tests, and enforce the same version compare-and-swap as MySQL.

type MemoryAvailabilityStore struct {
	mu     sync.Mutex
	nextID int64
	slots  map[int64]models.Availability
}

func NewMemoryAvailabilityStore() *MemoryAvailabilityStore {
	return &MemoryAvailabilityStore{nextID: 1, slots: map[int64]models.Availability{}}
}

func (s *MemoryAvailabilityStore) Get(id int64) (models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.slots[id]
	if !ok {
		return models.Availability{}, domain.NotFoundError{Resource: "availability slot"}
	}
	return a, nil
}

func (s *MemoryAvailabilityStore) List(onlyActiveUpcoming bool) ([]models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	out := []models.Availability{}
	for _, a := range s.slots {
		if onlyActiveUpcoming && (!a.IsActive || !a.Start.After(now)) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *MemoryAvailabilityStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots), nil
}

func (s *MemoryAvailabilityStore) Save(a models.Availability) (models.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == 0 {
		a.ID = s.nextID
		s.nextID++
		a.Version = 1
		s.slots[a.ID] = a
		return a, nil
	}

	current, ok := s.slots[a.ID]
	if !ok {
		return models.Availability{}, domain.NotFoundError{Resource: "availability slot"}
	}
	if current.Version != a.Version {
		return models.Availability{}, ErrStaleSlot
	}
	a.Version++
	s.slots[a.ID] = a
	return a, nil
}

type MemoryBookingStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]models.Booking
}

func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{nextID: 1, bookings: map[int64]models.Booking{}}
}

func (s *MemoryBookingStore) Get(id int64) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (s *MemoryBookingStore) GetByCancellationToken(token string) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookings {
		if b.CancellationToken == token {
			return b, nil
		}
	}
	return models.Booking{}, domain.NotFoundError{Resource: "booking"}
}

func (s *MemoryBookingStore) GetLatestBySlot(slotID string) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest models.Booking
	found := false
	for _, b := range s.bookings {
		if b.SlotID != slotID {
			continue
		}
		if !found || b.CreatedAt.After(latest.CreatedAt) || (b.CreatedAt.Equal(latest.CreatedAt) && b.ID > latest.ID) {
			latest = b
			found = true
		}
	}
	if !found {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return latest, nil
}

func (s *MemoryBookingStore) ListByStatus(status models.BookingStatus) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Booking{}
	for _, b := range s.bookings {
		if b.Status == status {
			out = append(out, b)
		}
	}
	sortBookingsNewestFirst(out)
	return out, nil
}

func (s *MemoryBookingStore) List() ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	sortBookingsNewestFirst(out)
	return out, nil
}

func (s *MemoryBookingStore) Save(b models.Booking) (models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == 0 {
		b.ID = s.nextID
		s.nextID++
	} else {
		current, ok := s.bookings[b.ID]
		if !ok {
			return models.Booking{}, domain.NotFoundError{Resource: "booking"}
		}
		// Re-check cancelled-immutability under the lock so a racing
		// transition cannot revive a booking that just got cancelled.
		if current.Status == models.BookingCancelled && b.Status != models.BookingCancelled {
			return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "cancelled bookings cannot be updated"}
		}
	}
	s.bookings[b.ID] = b
	return b, nil
}

func sortBookingsNewestFirst(bs []models.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].CreatedAt.After(bs[j].CreatedAt)
		}
		return bs[i].ID > bs[j].ID
	})
}

type MemoryPresentationTypeStore struct {
	mu     sync.Mutex
	nextID int64
	types  map[int64]models.PresentationType
}

func NewMemoryPresentationTypeStore() *MemoryPresentationTypeStore {
	return &MemoryPresentationTypeStore{nextID: 1, types: map[int64]models.PresentationType{}}
}

func (s *MemoryPresentationTypeStore) List() ([]models.PresentationType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.PresentationType, 0, len(s.types))
	for _, pt := range s.types {
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryPresentationTypeStore) Save(pt models.PresentationType) (models.PresentationType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pt.ID == 0 {
		pt.ID = s.nextID
		s.nextID++
	}
	s.types[pt.ID] = pt
	return pt, nil
}
