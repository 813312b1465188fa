package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"climate-server/internal/config"
	"climate-server/internal/logging"
)

func NewServer(cfg config.Config, mux *http.ServeMux, metrics *Metrics) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           wrap(mux, metrics),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          logging.StdLogger(slog.Default(), slog.LevelWarn),
	}
}
