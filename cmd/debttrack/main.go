package main

import (
	"context"
	"os"
	"time"

	"debttrack/internal/backend"
	"debttrack/internal/cli"
	apphttp "debttrack/internal/http"
	"debttrack/internal/log"
	"debttrack/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp, true)
	logger.Info("Starting debttrack", "port", cfg.Port, "backend", cfg.DataBackend)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	analytics := services.NewAnalyticsService(res.Store, services.AnalyticsConfig{
		LookbackMonths: cfg.LookbackMonths,
		HistoryMonths:  cfg.InterestHistoryMonths,
	})

	var ready apphttp.Pinger
	if p, ok := res.Store.(apphttp.Pinger); ok {
		ready = p
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:            ":" + cfg.Port,
		Ledger:          services.NewLedgerService(res.Store, res.Publisher),
		Analytics:       analytics,
		Export:          services.NewExportService(analytics, res.Exporter),
		Tokens:          apphttp.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer),
		Ready:           ready,
		Logger:          logger,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CacheSize:       cfg.CacheSize,
		CacheTTL:        cfg.CacheTTL,
	})

	ctx, stop := cli.SignalContext()
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", log.FieldError, err.Error())
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	start := time.Now()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", log.FieldError, err.Error())
		return
	}
	logger.Info("Server stopped", log.FieldDuration, time.Since(start).Milliseconds())
}
