package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-ops-api/internal/config"
	checkinHandler "github.com/jwalitptl/clinic-ops-api/internal/handler/checkin"
	healthHandler "github.com/jwalitptl/clinic-ops-api/internal/handler/health"
	reportHandler "github.com/jwalitptl/clinic-ops-api/internal/handler/report"
	"github.com/jwalitptl/clinic-ops-api/internal/middleware"
	"github.com/jwalitptl/clinic-ops-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-ops-api/internal/router"
	checkinService "github.com/jwalitptl/clinic-ops-api/internal/service/checkin"
	eventService "github.com/jwalitptl/clinic-ops-api/internal/service/event"
	reportService "github.com/jwalitptl/clinic-ops-api/internal/service/report"
	"github.com/jwalitptl/clinic-ops-api/pkg/logger"
	messagingRedis "github.com/jwalitptl/clinic-ops-api/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-ops-api/pkg/metrics"
	"github.com/jwalitptl/clinic-ops-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger.Setup(cfg.Server.LogLevel)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	checkinRepo := postgres.NewCheckinRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	m := metrics.New("clinic_ops")

	eventSvc := eventService.NewService(outboxRepo)
	checkinSvc := checkinService.NewService(checkinRepo, patientRepo, eventSvc, m, nil)
	reportSvc := reportService.NewService(checkinRepo, m, nil)

	broker, err := messagingRedis.NewBroker(messagingRedis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	r := router.New(router.Config{
		RateLimit:     rate.Limit(cfg.Server.RateLimitRPS),
		RateBurst:     cfg.Server.RateLimitBurst,
		Timeout:       cfg.Server.Timeout(),
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "clinic_ops_http",
	},
		checkinHandler.NewHandler(checkinSvc),
		reportHandler.NewHandler(reportSvc),
		healthHandler.NewHandler(db, broker.Client()),
	)
	r.Setup()

	processorCtx, stopProcessor := context.WithCancel(context.Background())
	defer stopProcessor()

	outboxProcessor := worker.NewOutboxProcessor(outboxRepo, broker, worker.OutboxProcessorConfig{
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval(),
		RetryAttempts: cfg.Outbox.RetryAttempts,
		RetryDelay:    cfg.Outbox.RetryDelay(),
		Retention:     time.Duration(cfg.Outbox.RetentionDays) * 24 * time.Hour,
	}, m)
	go outboxProcessor.Start(processorCtx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopProcessor()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
