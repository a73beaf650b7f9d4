package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/scheduling-api/internal/config"
	"github.com/jwalitptl/scheduling-api/internal/handler/health"
	"github.com/jwalitptl/scheduling-api/internal/handler/prometheus"
	"github.com/jwalitptl/scheduling-api/internal/repository/postgres"
	appointmentService "github.com/jwalitptl/scheduling-api/internal/service/appointment"
	"github.com/jwalitptl/scheduling-api/internal/service/availability"
	clinicService "github.com/jwalitptl/scheduling-api/internal/service/clinic"
	eventService "github.com/jwalitptl/scheduling-api/internal/service/event"
	internalWorker "github.com/jwalitptl/scheduling-api/internal/worker"
	"github.com/jwalitptl/scheduling-api/pkg/clock"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/messaging"
	"github.com/jwalitptl/scheduling-api/pkg/messaging/kafka"
	"github.com/jwalitptl/scheduling-api/pkg/messaging/redis"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
	"github.com/jwalitptl/scheduling-api/pkg/worker"
)

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
		lg.Fatal(err, "worker stopped")
	}
}

func run(cfg *config.Config, lg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	m := metrics.NewMetrics(registry, "scheduling_worker")
	clk := clock.New()

	outboxRepo := postgres.NewOutboxRepository(db)
	professionalRepo := postgres.NewProfessionalRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	clinicSvc := clinicService.NewService(postgres.NewClinicRepository(db), defaultZone, cfg.Scheduling.ClinicCacheTTL)
	availabilitySvc := availability.NewService(clinicSvc, professionalRepo, appointmentRepo, clk, m, lg)
	appointmentSvc := appointmentService.NewService(clinicSvc, postgres.NewClientRepository(db), professionalRepo,
		appointmentRepo, availabilitySvc, eventService.NewEventService(outboxRepo, lg), clk, m, lg)

	checks := map[string]health.Pinger{"postgres": db}

	broker, err := newBroker(ctx, cfg, lg)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	if broker != nil {
		defer broker.Close()
		checks["broker"] = health.PingFunc(broker.Ping)

		processor, err := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
			BatchSize:     cfg.Outbox.BatchSize,
			PollInterval:  cfg.Outbox.PollInterval,
			RetryAttempts: cfg.Outbox.RetryAttempts,
			RetryDelay:    cfg.Outbox.RetryDelay,
			Lease:         cfg.Outbox.Lease,
			TopicPrefix:   cfg.Broker.TopicPrefix,
		}, clk, lg.WithFields(map[string]interface{}{"component": "outbox"}), m)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			processor.Start(ctx)
		}()
	} else {
		lg.Warn("Broker disabled; outbox events stay pending")
	}

	retention := internalWorker.NewRetentionWorker(appointmentSvc, outboxRepo, internalWorker.RetentionConfig{
		CancelledRetention: cfg.Scheduling.CancelledRetention,
		ProcessedRetention: cfg.Outbox.ProcessedRetention,
		Interval:           cfg.Scheduling.RetentionInterval,
	}, clk, lg.WithFields(map[string]interface{}{"component": "retention"}))
	wg.Add(1)
	go func() {
		defer wg.Done()
		retention.Start(ctx)
	}()

	gin.SetMode(cfg.Server.Mode)
	srv := healthServer(cfg.Worker.HealthPort, health.NewHandler(checks), prometheus.New(registry, "scheduling_worker"))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error(err, "Health server failed")
		}
	}()

	lg.Info("Worker started", "broker", cfg.Broker.Driver, "health_port", cfg.Worker.HealthPort)
	<-ctx.Done()
	lg.Info("Shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error(err, "Health server forced to shutdown")
	}
	wg.Wait()
	return nil
}

// newBroker returns nil for the none driver.
func newBroker(ctx context.Context, cfg *config.Config, lg *logger.Logger) (messaging.Broker, error) {
	switch strings.ToLower(cfg.Broker.Driver) {
	case "redis":
		client, err := redis.NewClient(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return nil, err
		}
		return redis.NewRedisBroker(client, lg.Zerolog()), nil
	case "kafka":
		broker, err := kafka.NewKafkaBroker(kafka.Config{
			Brokers: cfg.Broker.KafkaBrokers,
			GroupID: cfg.Broker.KafkaGroupID,
		}, lg.Zerolog())
		if err != nil {
			return nil, err
		}
		return broker, nil
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported broker driver %q", cfg.Broker.Driver)
}

func healthServer(port int, h *health.Handler, metricsHandler *prometheus.Handler) *http.Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	h.RegisterRoutes(engine)
	engine.GET("/metrics", metricsHandler.Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
