package handlers

import (
	"net/http"
	"strconv"
	"time"

	"redapi/internal/services"

	"github.com/gin-gonic/gin"
)

type createAvailabilityRequest struct {
	Start    time.Time `json:"start" binding:"required"`
	End      time.Time `json:"end" binding:"required"`
	Location string    `json:"location"`
	Capacity *int      `json:"capacity"`
}

type updateAvailabilityRequest struct {
	Start    *time.Time `json:"start"`
	End      *time.Time `json:"end"`
	Location *string    `json:"location"`
	Capacity *int       `json:"capacity"`
	Status   *string    `json:"status"`
	IsActive *bool      `json:"isActive"`
}

// GET /api/admin/availability
func (a API) AdminListAvailability(c *gin.Context) {
	slots, err := a.availability(c).ListSlots()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}

// POST /api/admin/availability
func (a API) AdminCreateAvailability(c *gin.Context) {
	var req createAvailabilityRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	slot, err := a.availability(c).CreateSlot(req.Start, req.End, req.Location, req.Capacity)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, slot)
}

// PATCH /api/admin/availability/:id
func (a API) AdminUpdateAvailability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid slot id", err)
		return
	}

	var req updateAvailabilityRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	slot, err := a.availability(c).UpdateSlot(id, services.SlotPatch{
		Start:    req.Start,
		End:      req.End,
		Location: req.Location,
		Capacity: req.Capacity,
		Status:   req.Status,
		IsActive: req.IsActive,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, slot)
}

// DELETE /api/admin/availability/:id
func (a API) AdminDisableAvailability(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid slot id", err)
		return
	}

	if err := a.reservations(c).DisableSlot(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
