package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/auth"
	"github.com/vovakirdan/wireboard/internal/metrics"
)

const (
	// ContextKeyRole is the context key for storing the API key role.
	ContextKeyRole = "role"

	apiKeyHeader = "apikey"
	apiKeyQuery  = "apikey"
)

// APIKeyMiddleware rejects requests without a valid project API key. With
// no secret configured every request passes.
func APIKeyMiddleware(cfg *auth.Config, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled() {
			c.Next()
			return
		}

		claims, err := auth.ValidateKey(cfg, extractAPIKey(c))
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Request.URL.Path).Msg("rejected api key")
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid api key"})
			c.Abort()
			return
		}

		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

// extractAPIKey reads the key from "Authorization: Bearer <key>", the
// apikey header, or the apikey query parameter, in that order. Browsers
// cannot set headers on a WebSocket handshake, hence the query form.
func extractAPIKey(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	if key := c.GetHeader(apiKeyHeader); key != "" {
		return key
	}
	return c.Query(apiKeyQuery)
}

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(limiter *rateLimiter, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.allow(c.ClientIP()) {
			metrics.RateLimitHits.Inc()
			logger.Warn().Str("client_ip", c.ClientIP()).Msg("insert rate limit exceeded")
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoggerMiddleware creates a middleware that logs HTTP requests.
func LoggerMiddleware(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Process request
		c.Next()

		// Log after request
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Msg("http request")
	}
}

// MetricsMiddleware records Prometheus request metrics. Routes are labelled
// by their pattern to keep cardinality bounded.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
