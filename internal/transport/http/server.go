package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wireboard/internal/auth"
	"github.com/vovakirdan/wireboard/internal/config"
	"github.com/vovakirdan/wireboard/internal/core"
	"github.com/vovakirdan/wireboard/internal/pubsub"
	"github.com/vovakirdan/wireboard/internal/store"
)

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewServer builds the HTTP server. Inserts are announced through pub; the
// realtime endpoint subscribes on hub. pub is usually hub itself, or the
// Redis bus when several instances share one database.
func NewServer(hub *core.Hub, pub pubsub.Publisher, st store.Store, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(MetricsMiddleware())

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	keys := &auth.Config{Secret: []byte(cfg.APIKeySecret), Issuer: cfg.APIKeyIssuer}
	gated := router.Group("/", APIKeyMiddleware(keys, logger))

	messages := NewMessageHandlers(st, pub, cfg, logger)
	limiter := newRateLimiter(cfg.InsertRateLimit)
	gated.GET("/api/:table", messages.List)
	gated.POST("/api/:table", RateLimitMiddleware(limiter, logger), messages.Insert)

	gated.GET("/ws", NewWSHandler(hub, cfg.Table, logger).Handle)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
