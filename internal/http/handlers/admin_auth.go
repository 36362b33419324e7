package handlers

import (
	"net/http"

	"redapi/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/admin/auth/login
func (a API) AdminLogin(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	token, err := a.Sessions.Authenticate(req.Username, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if token == "" {
		RespondError(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":            token,
		"expiresInMinutes": int64(a.Sessions.TTL().Minutes()),
	})
}

// POST /api/admin/auth/logout
func (a API) AdminLogout(c *gin.Context) {
	token := c.GetHeader(middleware.AdminTokenHeader)
	if token == "" {
		RespondError(c, http.StatusBadRequest, "missing admin token", nil)
		return
	}
	a.Sessions.Invalidate(token)
	c.Status(http.StatusNoContent)
}
