package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"financeia/internal/auth"
	"financeia/internal/cli"
	"financeia/internal/export"
	httpserver "financeia/internal/http"
	"financeia/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)

	logger.Info("starting financeia API")

	cfg := cli.LoadAndValidateConfig(logger)
	st := cli.OpenStore(logger, cfg)
	defer st.Close()

	authSvc := auth.NewService(st, cfg.JWTSecret, cfg.TokenTTL)

	// Google Sheets statement sync is optional.
	var sheetsClient *export.SheetsClient
	if cfg.GoogleSpreadsheetID != "" {
		var err error
		sheetsClient, err = export.NewSheetsClient(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		logger.Info("Google Sheets disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	server := httpserver.NewServer(":"+cfg.Port, st, authSvc, logger, httpserver.Options{
		HorizonMonths:  cfg.ProjectionHorizonMonths,
		AlertDaysAhead: cfg.AlertDaysAhead,
		ExportLocale:   cfg.ExportLocale,
		Sheets:         sheetsClient,
	})

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", log.FieldError, err)
		}
	})

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
