package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldserve-backend/internal/shared/response"
)

// requireRole gates a route group on the role claim set by AuthMiddleware
func requireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("role")
		if !exists {
			response.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "access denied: "+role+" role required")
			c.Abort()
			return
		}

		if actual, ok := v.(string); !ok || actual != role {
			response.ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", "access denied: "+role+" role required")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AdminMiddleware restricts a group to admin users
func AdminMiddleware() gin.HandlerFunc {
	return requireRole("admin")
}
