package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/joho/godotenv"

	"projecthub/internal/config"
	"projecthub/internal/health"
	"projecthub/internal/logger"
	"projecthub/internal/notify"
	"projecthub/internal/repository"
	"projecthub/internal/service"
)

var version = "dev"

func main() {
	runJob := flag.String("run", "", "run one job now and exit ("+strings.Join(jobNames, ", ")+")")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg.Server)

	if err := run(cfg, log, *runJob); err != nil {
		log.Error("projecthub stopped with error", "error", err)
		os.Exit(1)
	}
}

var jobNames = []string{
	service.JobReminders,
	service.JobRecurrence,
	service.JobWeeklyDigest,
	service.JobRetention,
	service.JobHealthCheck,
}

func run(cfg *config.Config, log *slog.Logger, runJob string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := repository.NewDB(cfg.Database.URL, log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)

	notifier, closeNotifier, err := buildNotifier(ctx, cfg.Notify, log)
	if err != nil {
		return err
	}
	defer closeNotifier()

	healthJob := service.NewHealthCheckJob(repository.NewPinger(db), log)
	scheduler := service.NewScheduler(loc, log)

	jobs := []struct {
		name    string
		cadence service.Cadence
		fn      service.JobFunc
	}{
		{service.JobReminders, service.Hourly(), service.NewReminderJob(taskRepo, notificationRepo, notifier, service.ReminderConfig{
			DueSoonWindow: cfg.Jobs.DueSoonWindow,
			Location:      loc,
			FrontendURL:   cfg.Notify.FrontendURL,
		}, log).Run},
		{service.JobRecurrence, service.EveryNHours(6), service.NewRecurrenceJob(taskRepo, service.RecurrenceConfig{
			GuardWindow: cfg.Jobs.GuardWindow,
			Location:    loc,
		}, log).Run},
		{service.JobWeeklyDigest, service.WeeklyAt(cfg.DigestWeekday(), cfg.Jobs.DigestHour, 0), service.NewDigestJob(taskRepo, userRepo, notifier, service.DigestConfig{
			Window:      cfg.Jobs.DigestWindow,
			FrontendURL: cfg.Notify.FrontendURL,
		}, log).Run},
		{service.JobRetention, service.DailyAt(0, 0), service.NewRetentionJob(notificationRepo, cfg.Jobs.RetentionHorizon, log).Run},
		{service.JobHealthCheck, service.EveryNMinutes(5), healthJob.Run},
	}
	for _, j := range jobs {
		if err := scheduler.Register(j.name, j.cadence, j.fn); err != nil {
			return err
		}
	}

	if runJob != "" {
		res, err := scheduler.Trigger(ctx, runJob)
		if err != nil {
			return err
		}
		return res.Err
	}

	// Prime the store snapshot so readiness is known before the first tick.
	if _, err := scheduler.Trigger(ctx, service.JobHealthCheck); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           health.NewHandler(scheduler, healthJob, version, log).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		log.Info("health endpoint listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvErr <- err
		}
	}()

	scheduler.Start()
	log.Info("projecthub jobs started", "version", version, "timezone", loc.String())

	select {
	case <-ctx.Done():
	case err = <-srvErr:
		log.Error("health endpoint failed", "error", err)
	}

	log.Info("shutting down", "grace", cfg.Server.ShutdownGrace)
	if !scheduler.Stop(cfg.Server.ShutdownGrace) {
		log.Warn("jobs still running at shutdown")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Warn("health endpoint shutdown", "error", shutdownErr)
	}
	log.Info("shutdown complete")
	return err
}

// buildNotifier assembles the delivery channels that are configured. Email
// is always present and logs instead of sending when EMAIL_FROM is empty.
func buildNotifier(ctx context.Context, cfg config.NotifyConfig, log *slog.Logger) (notify.Notifier, func(), error) {
	var sender notify.Sender
	if cfg.EmailFrom != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.EmailRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("aws config: %w", err)
		}
		ses, err := notify.NewSESSender(awsCfg, cfg.EmailFrom, cfg.EmailEndpoint)
		if err != nil {
			return nil, nil, err
		}
		sender = ses
	} else {
		log.Warn("EMAIL_FROM not set, email delivery is simulated")
	}
	channels := notify.Multi{notify.NewEmailNotifier(sender, log)}
	closers := []func() error{}

	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramToken)
		if err != nil {
			return nil, nil, fmt.Errorf("telegram: %w", err)
		}
		channels = append(channels, tg)
	}
	if cfg.KafkaBrokers != "" {
		kn := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		channels = append(channels, kn)
		closers = append(closers, kn.Close)
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("closing notifier", "error", err)
			}
		}
	}
	return channels, closeAll, nil
}
