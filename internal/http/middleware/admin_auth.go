package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminTokenHeader carries the opaque admin session token on every mutating
// admin call except login.
const AdminTokenHeader = "X-Admin-Token"

// SessionValidator is what the gate needs from the session store.
type SessionValidator interface {
	IsValid(token string) bool
}

// AdminAuth rejects requests without a live admin session.
func AdminAuth(sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		token := c.GetHeader(AdminTokenHeader)
		if !sessions.IsValid(token) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "invalid or expired admin session",
				"code":       "unauthorized",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}
