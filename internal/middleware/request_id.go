package middleware

import (
	"spa-portal/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// maxInboundRequestIDLen guards the log stream against oversized
// client-supplied correlation ids.
const maxInboundRequestIDLen = 64

// RequestID reuses a sane inbound correlation id or mints a fresh one, and
// echoes it back so clients can quote it in support requests.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" || len(rid) > maxInboundRequestIDLen {
			rid = uuid.New().String()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(contextutil.WithRequestID(c.Request.Context(), rid))

		c.Header(requestIDHeader, rid)
		c.Next()
	}
}
