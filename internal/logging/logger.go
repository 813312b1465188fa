package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"climate-server/internal/config"
)

// New returns the process logger: colourised tint output for dev builds,
// JSON lines for anything built with a real version.
func New(cfg config.Config, version string, appName string) *slog.Logger {
	return newTo(os.Stdout, cfg, version, appName)
}

func newTo(w io.Writer, cfg config.Config, version string, appName string) *slog.Logger {
	if version == "dev" {
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
		"version", version,
		"env", cfg.AppEnv,
	)
}

// StdLogger adapts logger for libraries that want a *log.Logger.
func StdLogger(logger *slog.Logger, level slog.Level) *log.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return slog.NewLogLogger(logger.Handler(), level)
}
