package routes

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arklim/casting-agency/internal/core/domain"
	"github.com/arklim/casting-agency/internal/infra/config"
	"github.com/arklim/casting-agency/internal/infra/security"
	"github.com/arklim/casting-agency/internal/transport/http/handlers"
	"github.com/arklim/casting-agency/internal/transport/http/middleware"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Actors handlers.ActorService
	Movies handlers.MovieService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Authorizer  middleware.Authorizer
	RateLimiter *middleware.RateLimiter
	HTTPMetrics *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
	Services    ServiceSet
	JWTManager  *security.JWTManager
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(handlers.Recovery))
	r.Use(middleware.Tracing(deps.Config.Telemetry.ServiceName))
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(deps.HTTPMetrics.Handler())
	r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins, deps.Config.CORS.MaxAge))
	r.NoRoute(handlers.NotFound)

	healthOptions := []handlers.HealthOption{handlers.WithHealthLogger(deps.Logger)}
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("postgres", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}
	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(metricsHandler(deps.Gatherer)))

	if deps.JWTManager != nil {
		r.GET("/.well-known/jwks.json", handlers.NewJWKSHandler(deps.JWTManager).Keys)
	}

	if deps.Authorizer == nil || deps.Services.Actors == nil || deps.Services.Movies == nil {
		return r
	}

	api := r.Group("")
	api.Use(writeRateLimit(deps)...)

	require := func(permission domain.Permission) gin.HandlerFunc {
		return middleware.RequirePermission(deps.Authorizer, permission)
	}

	actors := handlers.NewActorHandler(deps.Services.Actors)
	api.GET("/actors", require(domain.PermissionReadActors), actors.List)
	api.POST("/actors", require(domain.PermissionCreateActor), actors.Create)
	api.PATCH("/actors/:id", require(domain.PermissionUpdateActor), actors.Update)
	api.DELETE("/actors/:id", require(domain.PermissionDeleteActor), actors.Delete)

	movies := handlers.NewMovieHandler(deps.Services.Movies)
	api.GET("/movies", require(domain.PermissionReadMovies), movies.List)
	api.POST("/movies", require(domain.PermissionCreateMovie), movies.Create)
	api.PATCH("/movies/:id", require(domain.PermissionUpdateMovie), movies.Update)
	api.DELETE("/movies/:id", require(domain.PermissionDeleteMovie), movies.Delete)
	api.GET("/movies/:id/actors", require(domain.PermissionReadMovies), movies.ListCast)
	api.PUT("/movies/:id/actors/:actor_id", require(domain.PermissionUpdateMovie), movies.Cast)
	api.DELETE("/movies/:id/actors/:actor_id", require(domain.PermissionUpdateMovie), movies.Uncast)

	return r
}

func metricsHandler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func writeRateLimit(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || !deps.Config.RateLimit.Enabled {
		return nil
	}

	rule := middleware.RateLimitRule{
		Name:       "writes",
		Limit:      deps.Config.RateLimit.WriteMaxAttempts,
		Window:     deps.Config.RateLimit.WindowDuration,
		Methods:    []string{http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete},
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}
