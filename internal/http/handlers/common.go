package handlers

import (
	"net/http"

	"redapi/internal/http/middleware"
	"redapi/internal/services"

	"github.com/gin-gonic/gin"
)

// API bundles the stores and services the handlers dispatch to. Services are
// built per request so log lines carry the request id.
type API struct {
	Slots    services.SlotStore
	Bookings services.BookingStore
	Types    services.PresentationTypeStore
	Notifier services.Notifier
	Sessions *services.SessionService
	DBCheck  func() error
}

func (a API) reservations(c *gin.Context) services.ReservationService {
	return services.ReservationService{
		Slots:     a.Slots,
		Bookings:  a.Bookings,
		Notifier:  a.Notifier,
		RequestID: middleware.GetRequestID(c),
	}
}

func (a API) availability(c *gin.Context) services.AvailabilityService {
	return services.AvailabilityService{
		Slots:     a.Slots,
		Bookings:  a.Bookings,
		RequestID: middleware.GetRequestID(c),
	}
}

func (a API) docs(c *gin.Context) services.DocsService {
	return services.DocsService{
		Bookings:  a.Bookings,
		RequestID: middleware.GetRequestID(c),
	}
}

func (a API) catalog() services.CatalogService {
	return services.CatalogService{Types: a.Types}
}

// RespondError sends standard error payload with request_id included.
func RespondError(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"message":    message,
		"request_id": middleware.GetRequestID(c),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.JSON(status, payload)
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil {
		RespondError(c, http.StatusBadRequest, "request body is required", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid payload", err)
		return false
	}
	return true
}
