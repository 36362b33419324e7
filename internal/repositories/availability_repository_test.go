package repositories

import (
	"errors"
	"testing"
	"time"

	"redapi/internal/domain"
	"redapi/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func testSlot() models.Availability {
	return models.Availability{
		ID:       3,
		Start:    time.Date(2025, time.November, 10, 13, 0, 0, 0, time.Local),
		End:      time.Date(2025, time.November, 10, 14, 0, 0, 0, time.Local),
		Location: models.DefaultLocation,
		Status:   models.SlotAvailable,
		IsActive: true,
		Version:  2,
	}
}

func TestAvailabilitySaveInsertAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO availability").
		WillReturnResult(sqlmock.NewResult(7, 1))

	slot := testSlot()
	slot.ID = 0
	saved, err := AvailabilityRepository{DB: db}.Save(slot)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID != 7 || saved.Version != 1 {
		t.Fatalf("saved = id:%d version:%d, want id:7 version:1", saved.ID, saved.Version)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAvailabilitySaveIncrementsVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE availability").
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved, err := AvailabilityRepository{DB: db}.Save(testSlot())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Version != 3 {
		t.Fatalf("version = %d, want 3", saved.Version)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAvailabilitySaveStaleWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	// row exists but version moved on: zero rows affected
	mock.ExpectExec("UPDATE availability").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM availability").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	_, err = AvailabilityRepository{DB: db}.Save(testSlot())
	if !errors.Is(err, ErrStaleSlot) {
		t.Fatalf("err = %v, want ErrStaleSlot", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAvailabilitySaveVanishedRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE availability").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM availability").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err = AvailabilityRepository{DB: db}.Save(testSlot())
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestAvailabilityGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM availability WHERE id=").
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "location", "capacity", "status", "is_active", "version"}))

	_, err = AvailabilityRepository{DB: db}.Get(99)
	if !domain.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestAvailabilityGetScansRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	start := time.Date(2025, time.November, 10, 13, 0, 0, 0, time.Local)
	mock.ExpectQuery("SELECT (.+) FROM availability WHERE id=").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "start_time", "end_time", "location", "capacity", "status", "is_active", "version"}).
			AddRow(3, start, start.Add(time.Hour), "Gym", 35, "pending", true, 4))

	slot, err := AvailabilityRepository{DB: db}.Get(3)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if slot.Status != models.SlotPending || slot.Version != 4 {
		t.Fatalf("slot = status:%s version:%d", slot.Status, slot.Version)
	}
	if slot.Capacity == nil || *slot.Capacity != 35 {
		t.Fatalf("capacity = %v, want 35", slot.Capacity)
	}
}
