package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"formcraft-backend-go/internal/core"
)

const requestIDKey = "requestID"

// RequestID tags every request with an id, reusing a well-formed incoming
// X-Request-Id, and records the client origin for the activity trail.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)

		ctx := core.WithClientInfo(c.Request.Context(), core.ClientInfo{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetRequestID returns the id assigned by RequestID.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
