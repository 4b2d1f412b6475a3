package middleware

import (
	"runtime/debug"

	"bookshelf-backend/internal/shared"
	"bookshelf-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", c.GetString(shared.CtxRequestID)).
					Interface("error", err).
					Bytes("stack", debug.Stack()).
					Msg("Panic recovered")

				response.InternalServerError(c, "Internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
