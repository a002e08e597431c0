package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/app"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/config"
	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("crop advisory backend stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.New(cfg.App, "crop-advisory")
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Info("no .env file loaded, using process environment", "error", envErr)
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	var telemetryDone <-chan struct{}
	if cfg.MQTT.Enabled {
		telemetryDone = runTelemetry(ctx, func(ctx context.Context) (disconnecter, error) {
			sub, err := a.StartTelemetry(ctx)
			if err != nil {
				return nil, err
			}
			return sub, nil
		}, logger)
	} else {
		logger.Info("telemetry disabled, weather and soil arrive over HTTP only")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("crop advisory backend listening", "addr", cfg.Server.Addr)
	err = runServer(ctx, srv)

	// The subscriber writes to the store, so it must be gone before a.Close.
	stop()
	if telemetryDone != nil {
		<-telemetryDone
	}
	return err
}

type disconnecter interface {
	Disconnect()
}

// runTelemetry starts the subscriber and disconnects it once ctx is done.
// The returned channel closes after the disconnect.
func runTelemetry(ctx context.Context, start func(context.Context) (disconnecter, error), logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		sub, err := start(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error("telemetry subscriber failed", "error", err)
			}
			return
		}
		<-ctx.Done()
		sub.Disconnect()
	}()
	return done
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
