package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const CtxRequestIDKey = "request_id"

// RequestIDMiddleware tags every request with an id, reusing the caller's
// X-Request-ID when present so ids correlate across services.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(CtxRequestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
