package models

// PresentationType describes one of the programs schools can request.
type PresentationType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	DurationMin int    `json:"durationMin"`
	GradeMin    *int   `json:"gradeMin"`
	GradeMax    *int   `json:"gradeMax"`
	IsActive    bool   `json:"isActive"`
}
