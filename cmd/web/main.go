package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"finitefield.org/imast-web/internal/app"
	"finitefield.org/imast-web/internal/platform/config"
	"finitefield.org/imast-web/internal/platform/observability"
)

func main() {
	var envFile string
	flag.StringVar(&envFile, "env", ".env", "dotenv file with SITE_* settings")
	flag.Parse()

	ctx := context.Background()
	// The level is read before config so that config loading itself is logged.
	logger, err := observability.NewLogger(os.Getenv("SITE_LOG_LEVEL"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger = logger.Named("web")

	site, err := app.Load(ctx, logger, config.WithEnvFile(envFile))
	if err != nil {
		logger.Fatal("failed to load site", zap.Error(err))
	}
	defer func() {
		if err := site.Close(); err != nil {
			logger.Warn("secret resolver close error", zap.Error(err))
		}
	}()
	cfg := site.Config

	srv, err := newServer(site, logger)
	if err != nil {
		logger.Fatal("failed to initialise server", zap.Error(err))
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          log.New(observability.NewPrintfAdapter(logger.Named("http")), "", 0),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.With(zap.String("addr", httpServer.Addr), zap.Bool("dev_mode", cfg.Server.DevMode))
	go func() {
		serverLogger.Info("web listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
