package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"climate-server/internal/logging"
)

func NewMux(db *sql.DB, reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db)
	if reg != nil {
		// Compression is left to the gzip middleware.
		mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{
			ErrorLog:           logging.StdLogger(slog.Default(), slog.LevelError),
			Registry:           reg,
			DisableCompression: true,
		}))
	}
	return mux
}
