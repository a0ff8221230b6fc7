package middlewares

import (
	"net/http"

	"github.com/anylearn/anylearn/internal/domain/account"
	"github.com/gin-gonic/gin"
)

// RequireRole gates a route group to one role. Admins pass every gate;
// per-resource checks (course ownership) still run behind it.
func (m *SessionMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := RoleFromContext(c)

		if !ok || role == "" {
			abortUnauthorized(c, "Missing identity context")
			return
		}
		if role != required && role != account.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": required + " role required",
				},
			})
			return
		}
		c.Next()
	}
}
