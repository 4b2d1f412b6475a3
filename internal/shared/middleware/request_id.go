package middleware

import (
	"bookshelf-backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID giữ lại X-Request-ID từ client, nếu không có thì sinh uuid mới
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(shared.CtxRequestID, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
