package repositories

import (
	"database/sql"

	"redapi/internal/domain"
	"redapi/internal/domain/models"
)

// PresentationTypeRepository wraps DB access for the program catalogue.
type PresentationTypeRepository struct {
	DB *sql.DB
}

const presentationTypeDDL = `
CREATE TABLE IF NOT EXISTS presentation_types (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	description TEXT,
	duration_min INT NOT NULL,
	grade_min INT NULL,
	grade_max INT NULL,
	is_active TINYINT(1) NOT NULL DEFAULT 1
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`

// EnsureSchema creates the presentation_types table when missing.
func (r PresentationTypeRepository) EnsureSchema() error {
	_, err := r.DB.Exec(presentationTypeDDL)
	return err
}

// List returns every presentation type.
func (r PresentationTypeRepository) List() ([]models.PresentationType, error) {
	rows, err := r.DB.Query(`SELECT id, name, description, duration_min, grade_min, grade_max, is_active
		FROM presentation_types ORDER BY id ASC`)
	if err != nil {
		return nil, domain.InternalError{Err: err}
	}
	defer rows.Close()

	out := []models.PresentationType{}
	for rows.Next() {
		var (
			pt          models.PresentationType
			description sql.NullString
			gradeMin    sql.NullInt64
			gradeMax    sql.NullInt64
		)
		if err := rows.Scan(&pt.ID, &pt.Name, &description, &pt.DurationMin, &gradeMin, &gradeMax, &pt.IsActive); err != nil {
			return nil, domain.InternalError{Err: err}
		}
		pt.Description = description.String
		if gradeMin.Valid {
			v := int(gradeMin.Int64)
			pt.GradeMin = &v
		}
		if gradeMax.Valid {
			v := int(gradeMax.Int64)
			pt.GradeMax = &v
		}
		out = append(out, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.InternalError{Err: err}
	}
	return out, nil
}

// Save inserts a new presentation type and assigns its id.
func (r PresentationTypeRepository) Save(pt models.PresentationType) (models.PresentationType, error) {
	var description any
	if pt.Description != "" {
		description = pt.Description
	}
	var gradeMin, gradeMax any
	if pt.GradeMin != nil {
		gradeMin = *pt.GradeMin
	}
	if pt.GradeMax != nil {
		gradeMax = *pt.GradeMax
	}

	res, err := r.DB.Exec(`INSERT INTO presentation_types (name, description, duration_min, grade_min, grade_max, is_active)
		VALUES (?,?,?,?,?,?)`,
		pt.Name, description, pt.DurationMin, gradeMin, gradeMax, pt.IsActive)
	if err != nil {
		return models.PresentationType{}, domain.InternalError{Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.PresentationType{}, domain.InternalError{Err: err}
	}
	pt.ID = id
	return pt, nil
}
