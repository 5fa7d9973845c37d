package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/pantry/pkg/application/services"
	"github.com/vsinha/pantry/pkg/config"
	"github.com/vsinha/pantry/pkg/infrastructure/events"
	"github.com/vsinha/pantry/pkg/infrastructure/repositories/file"
	"github.com/vsinha/pantry/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/pantry/pkg/interfaces/httpapi"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		return err
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	journal, err := events.NewFileJournal(cfg.LogFile)
	if err != nil {
		logger.Error("failed to open journal", slog.String("error", err.Error()))
		return err
	}

	// A load warning is logged by the service; the server still starts.
	service, _ := services.NewInventoryService(ctx, memory.NewInventoryRepository(), file.NewStateStore(cfg.DataFile), journal, logger)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(httpapi.NewInventoryAPI(service, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("pantry API listening",
			slog.String("addr", cfg.HTTPAddr),
			slog.String("data_file", cfg.DataFile),
			slog.String("date", service.Date().String()))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("pantry API server exited", slog.String("addr", cfg.HTTPAddr), slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down", slog.String("error", err.Error()))
		return err
	}
	logger.Info("pantry API stopped")
	return nil
}
