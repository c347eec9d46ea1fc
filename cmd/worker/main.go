package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/lumina-spa/lumina/internal/app"
	"github.com/lumina-spa/lumina/internal/appointments"
	"github.com/lumina-spa/lumina/internal/clients"
	jobmetrics "github.com/lumina-spa/lumina/internal/jobs"
	"github.com/lumina-spa/lumina/internal/notify"
	"github.com/lumina-spa/lumina/internal/platform/db"
	"github.com/lumina-spa/lumina/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	client, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	var notifier notify.Notifier = notify.LogNotifier{Logger: logger}
	if cfg.SMSEnabled {
		// No gateway binding ships yet; deployments set SMS_ENABLED once one
		// lands behind the notify.Notifier contract.
		logger.Warn("SMS_ENABLED set but no gateway is built in, using log notifier",
			slog.String("from", cfg.SMSFrom))
	}

	metrics := jobmetrics.NewMetrics(nil)
	reminderJob := jobs.NewReminderJob(
		appointments.NewRepository(pool),
		clients.NewRepository(pool),
		notifier,
		logger,
		metrics,
	)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeAppointmentReminder, Handler: reminderJob.HandleReminder},
			{Type: jobs.TaskTypeReminderSweep, Handler: reminderJob.SweepHandler(client.EnqueueAppointmentReminder)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 18 * * *", Task: jobs.NewReminderSweepTask()},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting")
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
