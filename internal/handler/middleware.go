package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"link-router/pkg/logger"
)

// ipLimiters stores rate limiters per IP. The map is shared by every request
// handler, so access is mutex-guarded.
var (
	ipLimiters   = make(map[string]*rate.Limiter)
	ipLimitersMu sync.Mutex
)

// LoggerMiddleware logs HTTP requests with structured logging
func LoggerMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		// Process request
		c.Next()

		latency := time.Since(start)

		log.Info("HTTP request",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"host", c.Request.Host,
			"path", path,
			"ip", c.ClientIP(),
			"latency", latency,
			"user_agent", c.Request.UserAgent(),
		)
	}
}

// SecurityHeadersMiddleware adds security-related headers
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")

		c.Next()
	}
}

// RateLimitMiddleware implements IP-based rate limiting
func RateLimitMiddleware(requestsPerMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		ipLimitersMu.Lock()
		limiter, exists := ipLimiters[clientIP]
		if !exists {
			limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute)
			ipLimiters[clientIP] = limiter
		}
		ipLimitersMu.Unlock()

		if !limiter.Allow() {
			c.String(http.StatusTooManyRequests, "Too many requests, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}

// TimeoutMiddleware sets a deadline for request processing so a slow store
// call degrades to a fast error instead of a hanging request.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
