package handlers

import (
	"net/http"

	"redapi/internal/domain/models"
	"redapi/internal/services"

	"github.com/gin-gonic/gin"
)

type createBookingRequest struct {
	Name             string `json:"name" binding:"required"`
	Email            string `json:"email" binding:"required,email"`
	Phone            string `json:"phone" binding:"required"`
	School           string `json:"school" binding:"required"`
	PresentationType string `json:"presentationType" binding:"required"`
	Location         string `json:"location" binding:"required"`
	ExtraNotes       string `json:"extraNotes"`
	SlotID           int64  `json:"slotId" binding:"required"`
}

// POST /api/bookings
func (a API) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	booking, err := a.reservations(c).ClaimSlot(req.SlotID, services.ClaimDetails{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		School:           req.School,
		PresentationType: req.PresentationType,
		Location:         req.Location,
		ExtraNotes:       req.ExtraNotes,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

type cancellationResponse struct {
	BookingID        int64  `json:"bookingId"`
	Status           string `json:"status"`
	SlotLabel        string `json:"slotLabel"`
	TeacherName      string `json:"teacherName"`
	School           string `json:"school"`
	PresentationType string `json:"presentationType"`
	Location         string `json:"location"`
}

func toCancellationResponse(b models.Booking) cancellationResponse {
	return cancellationResponse{
		BookingID:        b.ID,
		Status:           string(b.Status),
		SlotLabel:        b.SlotLabel,
		TeacherName:      b.Name,
		School:           b.School,
		PresentationType: b.PresentationType,
		Location:         b.Location,
	}
}

// GET /api/bookings/cancellations/:token
func (a API) GetBookingForCancellation(c *gin.Context) {
	booking, err := a.reservations(c).GetByCancellationToken(c.Param("token"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCancellationResponse(booking))
}

// POST /api/bookings/cancellations/:token
func (a API) CancelBooking(c *gin.Context) {
	booking, err := a.reservations(c).SelfCancel(c.Param("token"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCancellationResponse(booking))
}
