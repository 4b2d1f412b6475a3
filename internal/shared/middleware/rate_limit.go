package middleware

import (
	"sync"
	"time"

	"bookshelf-backend/internal/shared/response"
	"bookshelf-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// IPRateLimiter giữ một token bucket cho mỗi client IP
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	rps      rate.Limit
	burst    int
	idleTTL  time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		idleTTL:  10 * time.Minute,
	}
}

// Allow consumes one token for ip. Idle visitors are dropped lazily.
func (l *IPRateLimiter) Allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.limiters[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = v
		if len(l.limiters) > 1024 {
			l.evict(now)
		}
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

func (l *IPRateLimiter) evict(now time.Time) {
	for ip, v := range l.limiters {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.limiters, ip)
		}
	}
}

// RateLimit trả về 429 khi IP vượt quá rps/burst
func RateLimit(l *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(utils.ExtractClientIP(c)) {
			response.TooManyRequests(c, "Too many requests, slow down")
			c.Abort()
			return
		}
		c.Next()
	}
}
