package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/scheduling-api/internal/config"
	appointmentHandler "github.com/jwalitptl/scheduling-api/internal/handler/appointment"
	clientHandler "github.com/jwalitptl/scheduling-api/internal/handler/client"
	clinicHandler "github.com/jwalitptl/scheduling-api/internal/handler/clinic"
	"github.com/jwalitptl/scheduling-api/internal/handler/health"
	"github.com/jwalitptl/scheduling-api/internal/handler/integration"
	professionalHandler "github.com/jwalitptl/scheduling-api/internal/handler/professional"
	"github.com/jwalitptl/scheduling-api/internal/handler/prometheus"
	"github.com/jwalitptl/scheduling-api/internal/middleware"
	"github.com/jwalitptl/scheduling-api/internal/repository/postgres"
	"github.com/jwalitptl/scheduling-api/internal/router"
	appointmentService "github.com/jwalitptl/scheduling-api/internal/service/appointment"
	"github.com/jwalitptl/scheduling-api/internal/service/availability"
	clientService "github.com/jwalitptl/scheduling-api/internal/service/client"
	clinicService "github.com/jwalitptl/scheduling-api/internal/service/clinic"
	eventService "github.com/jwalitptl/scheduling-api/internal/service/event"
	professionalService "github.com/jwalitptl/scheduling-api/internal/service/professional"
	"github.com/jwalitptl/scheduling-api/pkg/auth"
	"github.com/jwalitptl/scheduling-api/pkg/clock"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/messaging/redis"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
	"github.com/jwalitptl/scheduling-api/pkg/monitoring"
	"github.com/jwalitptl/scheduling-api/pkg/security"
	"github.com/jwalitptl/scheduling-api/pkg/validator"
)

const integrationRateLimitPrefix = "scheduling:ratelimit:integration"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Log.JSON,
	})
	lg.SetGlobal()

	if err := run(cfg, lg); err != nil {
		lg.Fatal(err, "api stopped")
	}
}

func run(cfg *config.Config, lg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := validator.RegisterWithGin(); err != nil {
		return err
	}

	flush, err := monitoring.InitSentry(monitoring.SentryConfig{
		DSN:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	})
	if err != nil {
		return err
	}
	defer flush()

	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	defaultZone, err := time.LoadLocation(cfg.Scheduling.DefaultTimezone)
	if err != nil {
		return fmt.Errorf("invalid default timezone: %w", err)
	}

	registry := prom.NewRegistry()
	m := metrics.NewMetrics(registry, "scheduling")
	clk := clock.New()

	clinicRepo := postgres.NewClinicRepository(db)
	professionalRepo := postgres.NewProfessionalRepository(db)
	clientRepo := postgres.NewClientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	clinicSvc := clinicService.NewService(clinicRepo, defaultZone, cfg.Scheduling.ClinicCacheTTL)
	availabilitySvc := availability.NewService(clinicSvc, professionalRepo, appointmentRepo, clk, m, lg)
	professionalSvc := professionalService.NewService(clinicSvc, professionalRepo)
	clientSvc := clientService.NewService(clientRepo)
	eventSvc := eventService.NewEventService(outboxRepo, lg)
	appointmentSvc := appointmentService.NewService(clinicSvc, clientRepo, professionalRepo, appointmentRepo,
		availabilitySvc, eventSvc, clk, m, lg)

	checks := map[string]health.Pinger{"postgres": db}

	var integrationLimiter *middleware.RedisRateLimiter
	if cfg.Redis.URL != "" {
		rdb, err := redis.NewClient(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		checks["redis"] = health.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		integrationLimiter = middleware.NewRedisRateLimiter(rdb, cfg.RateLimit.IntegrationLimit,
			cfg.RateLimit.IntegrationWindow, integrationRateLimitPrefix, lg)
	} else {
		lg.Warn("Redis not configured; integration rate limit disabled")
	}

	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.SessionTTL)
	if cfg.Auth.IntegrationTokenHash == "" {
		lg.Warn("Integration token hash not configured; integration API will reject every call")
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins

	r := router.NewRouter(
		router.Handlers{
			Clinic:       clinicHandler.NewHandler(clinicSvc),
			Professional: professionalHandler.NewHandler(professionalSvc, availabilitySvc, clinicSvc),
			Client:       clientHandler.NewHandler(clientSvc),
			Appointment:  appointmentHandler.NewHandler(appointmentSvc),
			Integration:  integration.NewHandler(clinicSvc, availabilitySvc, professionalSvc, clientSvc, appointmentSvc),
			Health:       health.NewHandler(checks),
			Metrics:      prometheus.New(registry, "scheduling"),
		},
		middleware.NewSessionAuth(jwtSvc, cfg.Auth.SessionCookie),
		middleware.NewServiceToken(cfg.Auth.IntegrationTokenHash, security.NewBcryptHasher(0), cfg.Auth.TokenCacheTTL),
		integrationLimiter,
		router.RouterConfig{
			Mode:                cfg.Server.Mode,
			RequestTimeout:      cfg.Server.RequestTimeout,
			MaxBodyBytes:        cfg.Server.MaxBodyBytes,
			RateLimit:           rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:           cfg.RateLimit.Burst,
			CORSConfig:          corsConfig,
			IntegrationFailOpen: cfg.RateLimit.FailOpen,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		lg.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	lg.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	lg.Info("Server exited properly")
	return nil
}
