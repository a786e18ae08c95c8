package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/infra/config"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/transport/http/handlers"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/transport/http/middleware"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Events       *usecase.EventService
	RoomRequests *usecase.RoomRequestService
	RoomChanges  *usecase.RoomChangeService
	Invitations  *usecase.InvitationService
	Ratings      *usecase.RatingService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	Verifier    *middleware.TokenVerifier
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
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
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Verifier)

	var mutate []gin.HandlerFunc
	if deps.RateLimiter != nil {
		mutate = append(mutate, deps.RateLimiter.Limit())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(authMiddleware)
	{
		eventHandler := handlers.NewEventHandler(deps.Services.Events)
		cancelHandler := handlers.NewCancelRequestHandler(deps.Services.Events)
		roomRequestHandler := handlers.NewRoomRequestHandler(deps.Services.RoomRequests)
		roomChangeHandler := handlers.NewRoomChangeHandler(deps.Services.RoomChanges)
		invitationHandler := handlers.NewInvitationHandler(deps.Services.Invitations)
		ratingHandler := handlers.NewRatingHandler(deps.Services.Ratings)

		eventsGroup := api.Group("/events")
		eventHandler.RegisterRoutes(eventsGroup, mutate...)

		// Event-scoped sub-resources.
		eventsGroup.GET("/:id/room-requests", roomRequestHandler.ListByEvent)
		eventsGroup.GET("/:id/invitations", invitationHandler.ListByEvent)
		eventsGroup.POST("/:id/invitations", append(append([]gin.HandlerFunc{}, mutate...), invitationHandler.Invite)...)
		eventsGroup.GET("/:id/ratings", ratingHandler.ListByEvent)
		eventsGroup.POST("/:id/ratings", append(append([]gin.HandlerFunc{}, mutate...), ratingHandler.Submit)...)
		eventsGroup.PATCH("/:id/ratings", append(append([]gin.HandlerFunc{}, mutate...), ratingHandler.Edit)...)

		// Completion is driven by the scheduler, not end users.
		eventsGroup.POST("/:id/complete", middleware.RequireAdmin(), eventHandler.Complete)

		cancelGroup := api.Group("/event-cancel-requests")
		cancelHandler.RegisterRoutes(cancelGroup, mutate...)

		roomRequestGroup := api.Group("/room-requests")
		roomRequestHandler.RegisterRoutes(roomRequestGroup, mutate...)

		roomChangeGroup := api.Group("/room-change-requests")
		roomChangeHandler.RegisterRoutes(roomChangeGroup, mutate...)

		invitationGroup := api.Group("/invitations")
		invitationHandler.RegisterRoutes(invitationGroup, mutate...)
	}

	return r
}
