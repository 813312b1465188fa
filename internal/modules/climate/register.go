package climate

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"climate-server/internal/modules/climate/controller"
	"climate-server/internal/modules/climate/repository"
)

const countTimeout = 2 * time.Second

func RegisterFeature(mux *http.ServeMux, db *sql.DB, reg prometheus.Registerer, queryTimeout time.Duration) {
	climateRepository := repository.NewRepository(db)
	climateController := controller.NewClimateController(climateRepository, queryTimeout)
	climateController.RegisterRoutes(mux)
	if reg != nil {
		registerRowGauges(reg, climateRepository)
	}
}

// registerRowGauges exposes store row counts, queried on every scrape.
func registerRowGauges(reg prometheus.Registerer, repo repository.ClimateRepository) {
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "climate_stations",
			Help: "Rows in the station table",
		},
		func() float64 {
			stations, _ := queryCounts(repo)
			return stations
		},
	))
	reg.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "climate_measurements",
			Help: "Rows in the measurement table",
		},
		func() float64 {
			_, measurements := queryCounts(repo)
			return measurements
		},
	))
}

func queryCounts(repo repository.ClimateRepository) (float64, float64) {
	ctx, cancel := context.WithTimeout(context.Background(), countTimeout)
	defer cancel()
	stations, measurements, err := repo.Counts(ctx)
	if err != nil {
		slog.Warn("metrics row count failed", "error", err)
		return 0, 0
	}
	return float64(stations), float64(measurements)
}
