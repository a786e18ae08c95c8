package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/domain"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/core/port"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/infra/config"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/infra/database"
	kafkainfra "github.com/trannguyensonthanh/ttcs-event-service/internal/infra/kafka"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/infra/logger"
	redisinfra "github.com/trannguyensonthanh/ttcs-event-service/internal/infra/redis"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/infra/telemetry"
	postgresrepo "github.com/trannguyensonthanh/ttcs-event-service/internal/repository/postgres"
	redisrepo "github.com/trannguyensonthanh/ttcs-event-service/internal/repository/redis"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/transport/http/middleware"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/transport/http/routes"
	"github.com/trannguyensonthanh/ttcs-event-service/internal/usecase"
)

// Application owns the wired service graph and the HTTP server lifecycle.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
	kafka  *kafkainfra.Producer
	tracer *telemetry.TracerProvider
}

// New wires configuration into a runnable application.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init redis: %w", err)
	}

	staleViews := redisrepo.NewStaleViewStore(redisClient.Client(), cfg.Redis.StaleViewPrefix, cfg.Redis.StaleViewTTL)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitStore(redisClient.Client(), cfg.Redis.RateLimitPrefix, rateLimitWindow*2)
	rateLimiter := middleware.NewRateLimiter(rateLimitStore, cfg.RateLimit.MutationMaxAttempts, rateLimitWindow, log)

	var publisher port.NotificationPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, notifications disabled", zap.Error(err))
		} else {
			publisher = kafkainfra.NewNotificationPublisher(producer, log)
			log.Info("kafka notification publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, notifications disabled")
	}

	repos := postgresrepo.NewRepositories(pool)
	engine := domain.NewPermissionEngine()

	eventService := usecase.NewEventService(engine, repos.Events, repos.CancelRequests, publisher, staleViews, log)
	roomRequestService := usecase.NewRoomRequestService(engine, repos.RoomRequests, repos.Events, publisher, staleViews, log)
	roomChangeService := usecase.NewRoomChangeService(engine, repos.RoomChanges, repos.RoomRequests, publisher, staleViews, log)
	invitationService := usecase.NewInvitationService(engine, repos.Invitations, repos.Events, publisher, staleViews, log)
	ratingService := usecase.NewRatingService(engine, repos.Ratings, repos.Events, repos.Invitations, publisher, staleViews, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		redisClient.Close()
		pool.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	verifier := middleware.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	ginEngine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Verifier:    verifier,
		RateLimiter: rateLimiter,
		Metrics:     httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Events:       eventService,
			RoomRequests: roomRequestService,
			RoomChanges:  roomChangeService,
			Invitations:  invitationService,
			Ratings:      ratingService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: ginEngine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
		kafka:  producer,
		tracer: tracer,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down cleanly.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.kafka != nil {
			_ = a.kafka.Close()
		}
	}()
	defer func() {
		if a.tracer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = a.tracer.Shutdown(shutdownCtx)
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting event service API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
