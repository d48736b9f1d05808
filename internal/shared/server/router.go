package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mailmind-backend/internal/documents"
	"mailmind-backend/internal/services/health"
	"mailmind-backend/internal/shared/config"
	"mailmind-backend/internal/shared/metrics"
	"mailmind-backend/internal/shared/server/middleware"
	"mailmind-backend/internal/suggestions"
)

// RouterDeps carries the handlers the router mounts. Construction of the
// dependencies happens in bootstrap; the router only wires them.
type RouterDeps struct {
	Config             config.Config
	Health             *health.Service
	DocumentsHandler   *documents.Handler
	SuggestionsHandler *suggestions.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil)
	}

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, healthSvc.Status(c.Request.Context()))
	})

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.Config.Env))
	authed.Use(middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodGet && c.FullPath() == "/api/v1/suggestions/:id" {
				return "POLLING"
			}
			return "DEFAULT"
		},
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 25, Burst: 50},
			"POLLING": {Rate: 100, Burst: 200},
		},
	}))
	registerMeRoutes(authed)
	if deps.DocumentsHandler != nil {
		deps.DocumentsHandler.RegisterRoutes(authed)
	}
	if deps.SuggestionsHandler != nil {
		deps.SuggestionsHandler.RegisterRoutes(authed)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
