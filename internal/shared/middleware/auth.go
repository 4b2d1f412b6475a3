package middleware

import (
	"strings"

	"bookshelf-backend/internal/shared"
	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TokenValidator là phần của jwt.Manager mà middleware cần
type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware xác thực Bearer token và set user_id (uuid.UUID), user_email vào context
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Unauthorized(c, "Missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(shared.CtxRequestID)).Msg("Rejected token")
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID())
		if err != nil {
			response.Unauthorized(c, "Invalid subject in token")
			c.Abort()
			return
		}

		c.Set(shared.CtxUserID, userID)
		c.Set(shared.CtxUserEmail, claims.Email)
		c.Next()
	}
}

// BearerToken tách token khỏi header "Bearer <token>" (scheme không phân biệt hoa thường)
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserID đọc user id đã được AuthMiddleware set
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(shared.CtxUserID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// OptionalUserID trả về nil nếu request không đi qua AuthMiddleware
func OptionalUserID(c *gin.Context) *uuid.UUID {
	id, ok := GetUserID(c)
	if !ok {
		return nil
	}
	return &id
}
