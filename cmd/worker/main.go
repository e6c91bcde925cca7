package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jwalitptl/clinic-ops-api/internal/email"
	"github.com/jwalitptl/clinic-ops-api/internal/repository/postgres"
	reportService "github.com/jwalitptl/clinic-ops-api/internal/service/report"
	"github.com/jwalitptl/clinic-ops-api/internal/worker"
	"github.com/jwalitptl/clinic-ops-api/pkg/metrics"
)

// Config comes entirely from the environment; the worker ships as a
// standalone container without the API's config file.
type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	SMTPHost     string `envconfig:"SMTP_HOST" required:"true"`
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"SMTP_USERNAME"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string `envconfig:"SMTP_FROM" required:"true"`

	DigestRecipients []string `envconfig:"DIGEST_RECIPIENTS" required:"true"`
	DigestHour       int      `envconfig:"DIGEST_HOUR" default:"6"`
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	checkinRepo := postgres.NewCheckinRepository(db)
	reports := reportService.NewService(checkinRepo, metrics.New("clinic_worker"), nil)
	mailer := email.NewService(email.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})

	digest := worker.NewDigest(reports, mailer, logger, cfg.DigestRecipients, cfg.DigestHour)

	ctx, stop := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		stop()
	}()

	digest.Run(ctx)
}
