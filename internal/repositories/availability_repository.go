package repositories

import (
	"database/sql"
	"errors"
	"time"

	"redapi/internal/domain"
	"redapi/internal/domain/models"
)

// ErrStaleSlot signals an optimistic write lost the race: the slot row changed
// between read and save. Callers re-read and retry.
var ErrStaleSlot = errors.New("availability: stale write")

// AvailabilityRepository wraps DB access for availability slots. Save is a
// compare-and-swap on the version column so concurrent claims cannot both win.
type AvailabilityRepository struct {
	DB *sql.DB
}

const availabilityDDL = `
CREATE TABLE IF NOT EXISTS availability (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	start_time DATETIME NOT NULL,
	end_time DATETIME NOT NULL,
	location VARCHAR(255) NOT NULL DEFAULT 'To be confirmed',
	capacity INT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'available',
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	version BIGINT NOT NULL DEFAULT 1,
	KEY idx_active_start (is_active, start_time)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`

// EnsureSchema creates the availability table when missing.
func (r AvailabilityRepository) EnsureSchema() error {
	_, err := r.DB.Exec(availabilityDDL)
	return err
}

const availabilityColumns = `id, start_time, end_time, location, capacity, status, is_active, version`

func scanAvailability(row interface{ Scan(...any) error }) (models.Availability, error) {
	var (
		a        models.Availability
		capacity sql.NullInt64
		status   string
	)
	if err := row.Scan(&a.ID, &a.Start, &a.End, &a.Location, &capacity, &status, &a.IsActive, &a.Version); err != nil {
		return models.Availability{}, err
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		a.Capacity = &c
	}
	a.Status, _ = models.ParseSlotStatus(status)
	return a, nil
}

// Get loads a single slot by id.
func (r AvailabilityRepository) Get(id int64) (models.Availability, error) {
	row := r.DB.QueryRow(`SELECT `+availabilityColumns+` FROM availability WHERE id=?`, id)
	a, err := scanAvailability(row)
	if err == sql.ErrNoRows {
		return models.Availability{}, domain.NotFoundError{Resource: "availability slot", Err: err}
	}
	if err != nil {
		return models.Availability{}, domain.InternalError{Err: err}
	}
	return a, nil
}

// List returns slots ordered by start time. When onlyActiveUpcoming is set it
// returns active slots starting after now, matching the public listing.
func (r AvailabilityRepository) List(onlyActiveUpcoming bool) ([]models.Availability, error) {
	query := `SELECT ` + availabilityColumns + ` FROM availability ORDER BY start_time ASC`
	args := []any{}
	if onlyActiveUpcoming {
		query = `SELECT ` + availabilityColumns + ` FROM availability WHERE is_active=1 AND start_time > ? ORDER BY start_time ASC`
		args = append(args, time.Now())
	}

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	out := []models.Availability{}
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

// Count reports how many slots exist; used by the seed routine.
func (r AvailabilityRepository) Count() (int, error) {
	var n int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM availability`).Scan(&n); err != nil {
		return 0, domain.InternalError{Err: err}
	}
	return n, nil
}

// Save upserts a slot. Inserts assign the id; updates are conditioned on the
// version read by the caller and return ErrStaleSlot when the row moved on.
func (r AvailabilityRepository) Save(a models.Availability) (models.Availability, error) {
	var capacity any
	if a.Capacity != nil {
		capacity = *a.Capacity
	}

	if a.ID == 0 {
		res, err := r.DB.Exec(`INSERT INTO availability (start_time, end_time, location, capacity, status, is_active, version)
			VALUES (?,?,?,?,?,?,1)`,
			a.Start, a.End, a.Location, capacity, string(a.Status), a.IsActive)
		if err != nil {
			return models.Availability{}, domain.InternalError{Err: err}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return models.Availability{}, domain.InternalError{Err: err}
		}
		a.ID = id
		a.Version = 1
		return a, nil
	}

	res, err := r.DB.Exec(`UPDATE availability
		SET start_time=?, end_time=?, location=?, capacity=?, status=?, is_active=?, version=version+1
		WHERE id=? AND version=?`,
		a.Start, a.End, a.Location, capacity, string(a.Status), a.IsActive, a.ID, a.Version)
	if err != nil {
		return models.Availability{}, domain.InternalError{Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Availability{}, domain.InternalError{Err: err}
	}
	if affected == 0 {
		var exists int
		if err := r.DB.QueryRow(`SELECT COUNT(*) FROM availability WHERE id=?`, a.ID).Scan(&exists); err == nil && exists == 0 {
			return models.Availability{}, domain.NotFoundError{Resource: "availability slot"}
		}
		return models.Availability{}, ErrStaleSlot
	}
	a.Version++
	return a, nil
}
