package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/availability
func (a API) PublicAvailability(c *gin.Context) {
	slots, err := a.availability(c).ListPublic()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, slots)
}
