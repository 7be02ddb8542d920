package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"financeia/internal/alerts"
	"financeia/internal/amqp"
	"financeia/internal/cli"
	"financeia/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)

	logger.Info("starting alert-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the alert worker")
		os.Exit(1)
	}
	if cfg.SMTPHost == "" {
		logger.Error("SMTP_HOST is required for the alert worker")
		os.Exit(1)
	}

	st := cli.OpenStore(logger, cfg)
	defer st.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	scanner := alerts.NewScanner(st, amqpClient, logger, cfg.ProjectionHorizonMonths, cfg.AlertDaysAhead)
	mailer := alerts.NewMailer(alerts.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	}, logger)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)

	// The scan runs on a cron schedule, plus once at startup so a restart
	// never skips a day.
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.AlertSchedule, func() {
		if _, err := scanner.Run(ctx, time.Now()); err != nil {
			logger.Error("scheduled alert scan failed", log.FieldError, err)
		}
	})
	if err != nil {
		logger.Error("invalid alert schedule", log.FieldError, err, "schedule", cfg.AlertSchedule)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := scanner.Run(gctx, time.Now()); err != nil {
			logger.Error("startup alert scan failed", log.FieldError, err)
		}
		return nil
	})
	g.Go(func() error {
		return amqpClient.ConsumeInvoiceAlerts(gctx, mailer.SendInvoiceAlert)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
}
