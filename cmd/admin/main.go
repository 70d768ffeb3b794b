package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"finitefield.org/imast-web/internal/admin/dashboard"
	"finitefield.org/imast-web/internal/admin/httpserver"
	"finitefield.org/imast-web/internal/admin/inventory"
	"finitefield.org/imast-web/internal/app"
	"finitefield.org/imast-web/internal/platform/config"
	"finitefield.org/imast-web/internal/platform/observability"
)

func main() {
	var envFile string
	flag.StringVar(&envFile, "env", ".env", "dotenv file with SITE_* settings")
	flag.Parse()

	logger, err := observability.NewLogger(os.Getenv("SITE_LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger = logger.Named("admin")

	site, err := app.Load(context.Background(), logger, config.WithEnvFile(envFile))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	defer func() {
		_ = site.Close()
	}()
	cfg := site.Config.Admin

	srv := httpserver.New(httpserver.Config{
		Address:          cfg.Address,
		BasePath:         cfg.BasePath,
		Environment:      cfg.Environment,
		DashboardService: dashboard.NewStaticService(),
		InventoryService: inventory.NewStaticService(),
		Logger:           logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("admin server listening", zap.String("addr", cfg.Address), zap.String("base_path", cfg.BasePath))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
