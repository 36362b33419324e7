package repositories

import (
	"database/sql"

	"redapi/internal/domain"
	"redapi/internal/domain/models"
)

// BookingRepository wraps DB access for booking records.
type BookingRepository struct {
	DB *sql.DB
}

const bookingDDL = `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	teacher_name VARCHAR(255) NOT NULL,
	email VARCHAR(255) NOT NULL,
	phone VARCHAR(100) NOT NULL,
	school VARCHAR(255) NOT NULL,
	presentation_type VARCHAR(255) NOT NULL,
	presentation_location VARCHAR(255) NOT NULL,
	extra_notes TEXT,
	slot_id VARCHAR(64) NOT NULL,
	slot_label TEXT NOT NULL,
	presentation_start DATETIME NOT NULL,
	presentation_end DATETIME NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	cancellation_token VARCHAR(64) NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE KEY uniq_cancellation_token (cancellation_token),
	KEY idx_slot_created (slot_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`

// EnsureSchema creates the bookings table when missing.
func (r BookingRepository) EnsureSchema() error {
	_, err := r.DB.Exec(bookingDDL)
	return err
}

const bookingColumns = `id, teacher_name, email, phone, school, presentation_type, presentation_location, extra_notes, slot_id, slot_label, presentation_start, presentation_end, status, cancellation_token, created_at`

func scanBooking(row interface{ Scan(...any) error }) (models.Booking, error) {
	var (
		b      models.Booking
		notes  sql.NullString
		end    sql.NullTime
		status string
	)
	err := row.Scan(&b.ID, &b.Name, &b.Email, &b.Phone, &b.School, &b.PresentationType, &b.Location,
		&notes, &b.SlotID, &b.SlotLabel, &b.PresentationStart, &end, &status, &b.CancellationToken, &b.CreatedAt)
	if err != nil {
		return models.Booking{}, err
	}
	b.ExtraNotes = notes.String
	if end.Valid {
		b.PresentationEnd = end.Time
	}
	b.Status, _ = models.ParseBookingStatus(status)
	return b, nil
}

func (r BookingRepository) getOne(query string, args ...any) (models.Booking, error) {
	row := r.DB.QueryRow(query, args...)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	return b, nil
}

// Get loads a booking by id.
func (r BookingRepository) Get(id int64) (models.Booking, error) {
	return r.getOne(`SELECT `+bookingColumns+` FROM bookings WHERE id=?`, id)
}

// GetByCancellationToken loads the booking holding the given token.
func (r BookingRepository) GetByCancellationToken(token string) (models.Booking, error) {
	return r.getOne(`SELECT `+bookingColumns+` FROM bookings WHERE cancellation_token=?`, token)
}

// GetLatestBySlot returns the most recently created booking against a slot,
// i.e. the booking currently occupying it when non-terminal.
func (r BookingRepository) GetLatestBySlot(slotID string) (models.Booking, error) {
	return r.getOne(`SELECT `+bookingColumns+` FROM bookings WHERE slot_id=? ORDER BY created_at DESC, id DESC LIMIT 1`, slotID)
}

func (r BookingRepository) list(query string, args ...any) ([]models.Booking, error) {
	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, domain.InternalError{Err: err}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

// ListByStatus returns bookings in a status, newest first.
func (r BookingRepository) ListByStatus(status models.BookingStatus) ([]models.Booking, error) {
	return r.list(`SELECT `+bookingColumns+` FROM bookings WHERE status=? ORDER BY created_at DESC`, string(status))
}

// List returns every booking, newest first.
func (r BookingRepository) List() ([]models.Booking, error) {
	return r.list(`SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`)
}

// Save upserts a booking; inserts assign the id.
func (r BookingRepository) Save(b models.Booking) (models.Booking, error) {
	var notes any
	if b.ExtraNotes != "" {
		notes = b.ExtraNotes
	}
	var end any
	if !b.PresentationEnd.IsZero() {
		end = b.PresentationEnd
	}

	if b.ID == 0 {
		res, err := r.DB.Exec(`INSERT INTO bookings
			(teacher_name, email, phone, school, presentation_type, presentation_location, extra_notes,
			 slot_id, slot_label, presentation_start, presentation_end, status, cancellation_token, created_at)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			b.Name, b.Email, b.Phone, b.School, b.PresentationType, b.Location, notes,
			b.SlotID, b.SlotLabel, b.PresentationStart, end, string(b.Status), b.CancellationToken, b.CreatedAt)
		if err != nil {
			return models.Booking{}, domain.InternalError{Err: err}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return models.Booking{}, domain.InternalError{Err: err}
		}
		b.ID = id
		return b, nil
	}

	// The cancellation token and created_at are immutable after insert. The
	// status guard re-checks cancelled-immutability atomically with the write:
	// a booking that raced into cancelled cannot be revived by a stale caller.
	res, err := r.DB.Exec(`UPDATE bookings
		SET teacher_name=?, email=?, phone=?, school=?, presentation_type=?, presentation_location=?,
		    extra_notes=?, slot_id=?, slot_label=?, presentation_start=?, presentation_end=?, status=?
		WHERE id=? AND (status <> 'cancelled' OR ? = 'cancelled')`,
		b.Name, b.Email, b.Phone, b.School, b.PresentationType, b.Location,
		notes, b.SlotID, b.SlotLabel, b.PresentationStart, end, string(b.Status), b.ID, string(b.Status))
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Booking{}, domain.InternalError{Err: err}
	}
	if affected == 0 {
		// The driver reports rows changed, not matched: a concurrent identical
		// write (two cancellations racing on one token) matches the row but
		// changes nothing. Re-read to tell that apart from the guard firing.
		current, err := r.Get(b.ID)
		if err != nil {
			return models.Booking{}, err
		}
		if current.Status == b.Status {
			return current, nil
		}
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "cancelled bookings cannot be updated"}
	}
	return b, nil
}
