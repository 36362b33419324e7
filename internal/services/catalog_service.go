package services

import (
	"strings"

	"redapi/internal/domain"
	"redapi/internal/domain/models"
)

// PresentationTypeStore is the contract for the program catalogue.
type PresentationTypeStore interface {
	List() ([]models.PresentationType, error)
	Save(models.PresentationType) (models.PresentationType, error)
}

// CatalogService manages the presentation-type catalogue.
type CatalogService struct {
	Types PresentationTypeStore
}

func (s CatalogService) List() ([]models.PresentationType, error) {
	return s.Types.List()
}

// Create validates and stores a new presentation type. Programs shorter than
// ten minutes are not offered.
func (s CatalogService) Create(pt models.PresentationType) (models.PresentationType, error) {
	if strings.TrimSpace(pt.Name) == "" {
		return models.PresentationType{}, domain.ValidationError{Field: "name", Msg: "name is required"}
	}
	if pt.DurationMin < 10 {
		return models.PresentationType{}, domain.ValidationError{Field: "durationMin", Msg: "duration must be at least 10 minutes"}
	}
	pt.IsActive = true
	return s.Types.Save(pt)
}
