package handler

import (
	"webhook-dispatch-service/internal/adapter/http/middleware"
	redisStore "webhook-dispatch-service/internal/adapter/storage/redis"
	"webhook-dispatch-service/internal/core/ports"
	"webhook-dispatch-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Dispatcher     ports.DispatcherService
	RetrySvc       ports.RetryService
	DeliveryLogs   ports.DeliveryLogRepository
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// Internal service-to-service API
	serviceAuth := middleware.ServiceAuth(deps.TokenSvc, deps.Logger)
	v1 := r.Group("/internal/v1", serviceAuth)

	eventHandler := NewEventHandler(deps.Dispatcher)
	v1.POST("/events", rl("events"), eventHandler.DispatchEvent)

	deliveryHandler := NewDeliveryHandler(deps.DeliveryLogs)
	v1.GET("/organizations/:id/deliveries", rl("deliveries"), deliveryHandler.List)
	v1.GET("/deliveries/:id", rl("deliveries"), deliveryHandler.Get)

	maintenanceHandler := NewMaintenanceHandler(deps.RetrySvc)
	v1.POST("/retries/sweep", rl("maintenance"), maintenanceHandler.Sweep)
	v1.POST("/maintenance/prune", rl("maintenance"), maintenanceHandler.Prune)

	return r
}
