// File: /middleware/middleware.go
package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrorHandler turns errors attached with c.Error into a 500 when the handler
// did not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last()
		log.WithError(err.Err).WithField("path", c.Request.URL.Path).Error("request error")

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
	}
}

// RateLimiter is a coarse per-IP token bucket in front of the whole API.
type RateLimiter struct {
	limiters map[string]*visitor
	mutex    sync.Mutex
	rate     rate.Limit
	interval time.Duration
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(requestsPerMinute int, burst int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	interval := time.Minute / time.Duration(requestsPerMinute)
	return &RateLimiter{
		limiters: make(map[string]*visitor),
		rate:     rate.Every(interval),
		interval: interval,
		burst:    burst,
	}
}

// GetLimiter returns the limiter for a client IP
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	v, exists := rl.limiters[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// CleanupLimiters drops visitors idle for longer than maxIdle.
func (rl *RateLimiter) CleanupLimiters(maxIdle time.Duration) int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxIdle)
	for key, v := range rl.limiters {
		if v.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// RateLimit rejects clients that exceed the limiter with 429.
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.GetLimiter(c.ClientIP())

		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(rl.interval.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please slow down"})
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Next()
	}
}

// ValidateJSON requires a JSON content type on write requests that carry a body.
func ValidateJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodDelete, http.MethodOptions, http.MethodHead:
			c.Next()
			return
		}
		if c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		if !strings.Contains(c.GetHeader("Content-Type"), "application/json") {
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"error": "Content-Type must be application/json",
			})
			return
		}
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
			"user_id": c.GetString(ContextUserID),
		})

		msg := fmt.Sprintf("%s %s", c.Request.Method, c.Request.URL.Path)
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error(msg)
		case status >= http.StatusBadRequest:
			entry.Warn(msg)
		default:
			entry.Info(msg)
		}
	}
}

func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

// CORS allows the configured web origin to call the API with credentials.
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allow := origin
		if origin == "*" && c.GetHeader("Origin") != "" {
			// credentialed requests cannot use the wildcard
			allow = c.GetHeader("Origin")
		}
		c.Header("Access-Control-Allow-Origin", allow)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
