package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"redapi/internal/domain/models"

	"github.com/gin-gonic/gin"
)

// GET /api/admin/bookings?status=
func (a API) AdminListBookings(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		bookings, err := a.Bookings.List()
		if err != nil {
			RespondDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	status, ok := models.ParseBookingStatus(raw)
	if !ok {
		RespondError(c, http.StatusBadRequest, "unsupported booking status: "+raw, nil)
		return
	}
	bookings, err := a.Bookings.ListByStatus(status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// PATCH /api/admin/bookings/:id/status
func (a API) AdminUpdateBookingStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid booking id", err)
		return
	}

	status := strings.TrimSpace(c.Query("status"))
	if status == "" {
		var body struct {
			Status string `json:"status"`
		}
		_ = c.ShouldBindJSON(&body)
		status = strings.TrimSpace(body.Status)
	}
	if status == "" {
		RespondError(c, http.StatusBadRequest, "status is required", nil)
		return
	}

	booking, err := a.reservations(c).AdminTransition(id, status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GET /api/admin/bookings/report
func (a API) AdminBookingsReport(c *gin.Context) {
	pdf, filename, err := a.docs(c).GenerateBookingsReport(strings.TrimSpace(c.Query("status")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
