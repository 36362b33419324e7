package handlers

import (
	"net/http"

	"redapi/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// GET /api/presentation-types
func (a API) ListPresentationTypes(c *gin.Context) {
	types, err := a.catalog().List()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

type createPresentationTypeRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	DurationMin int    `json:"durationMin" binding:"required"`
	GradeMin    *int   `json:"gradeMin"`
	GradeMax    *int   `json:"gradeMax"`
}

// POST /api/presentation-types (admin)
func (a API) CreatePresentationType(c *gin.Context) {
	var req createPresentationTypeRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	pt, err := a.catalog().Create(models.PresentationType{
		Name:        req.Name,
		Description: req.Description,
		DurationMin: req.DurationMin,
		GradeMin:    req.GradeMin,
		GradeMax:    req.GradeMax,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pt)
}
