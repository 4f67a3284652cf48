package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CorrelationIDHeader is read from the request and echoed on every response.
const CorrelationIDHeader = "X-Correlation-Id"

// RequestID stores the caller's correlation id, or a new one, under
// "request_id" in the gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Header(CorrelationIDHeader, id)

		c.Next()
	}
}
