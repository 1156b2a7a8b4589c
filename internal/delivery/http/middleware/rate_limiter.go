package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// rateLimiter implementa um token bucket por IP. Usado na rota de
// login para conter tentativas de força bruta.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func NewRateLimiter(maxRequests int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     maxRequests,
		window:   window,
	}

	// Limpeza periódica de visitantes expirados
	go rl.cleanup()

	return rl
}

func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) getVisitor(ip string) *visitor {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists || time.Since(v.lastReset) > rl.window {
		v = &visitor{
			tokens:    rl.rate,
			lastReset: time.Now(),
		}
		rl.visitors[ip] = v
	}

	return v
}

// RateLimitMiddleware cria um middleware Gin de rate limiting por IP
func RateLimitMiddleware(maxRequests int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(maxRequests, window)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		v := limiter.getVisitor(ip)

		limiter.mu.Lock()
		if v.tokens <= 0 {
			limiter.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Muitas requisições",
				"retry_after": limiter.window.Seconds(),
			})
			c.Abort()
			return
		}
		v.tokens--
		limiter.mu.Unlock()

		c.Next()
	}
}
