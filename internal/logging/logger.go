package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/Mayur-Rahangdale245/Smart-Crop-Advisory/internal/config"
)

// New builds the process logger: colored text in dev, JSON otherwise.
func New(cfg config.AppConfig, appName string) *slog.Logger {
	return newWithWriter(os.Stdout, cfg, appName)
}

func newWithWriter(w io.Writer, cfg config.AppConfig, appName string) *slog.Logger {
	if cfg.Dev() {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"env", cfg.Env,
	)
}

// Discard returns a logger that drops every record. Tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
