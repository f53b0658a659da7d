package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"fieldserve-backend/internal/shared/response"
)

// Recovery turns a handler panic into a 500 with the standard envelope
// instead of a dropped connection
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString("request_id")).
					Str("path", c.Request.URL.Path).
					Interface("panic", r).
					Msg("panic recovered")

				response.ErrorResponse(c, http.StatusInternalServerError, "SYS_INTERNAL_ERROR", "internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
