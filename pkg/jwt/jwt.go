package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims: sub = user id, email đi kèm để downstream không phải query lại users
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID trả về subject của token
func (c *Claims) UserID() string {
	return c.Subject
}

// Manager ký và verify access token HS256
type Manager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewManager(secret string, expiry time.Duration) *Manager {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Expiry là thời gian sống của access token
func (m *Manager) Expiry() time.Duration {
	return m.expiry
}

// GenerateAccessToken issues a token expiring after the configured expiry.
func (m *Manager) GenerateAccessToken(userID, email string) (string, error) {
	now := m.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken verify chữ ký, thuật toán và hạn dùng
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
