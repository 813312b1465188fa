package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"climate-server/internal/modules/climate/types"
)

//go:embed sql/list-stations.sql
var listStationsSQL string

//go:embed sql/max-measurement-date.sql
var maxMeasurementDateSQL string

//go:embed sql/precipitation-in-range.sql
var precipitationInRangeSQL string

//go:embed sql/temperatures-for-station.sql
var temperaturesForStationSQL string

//go:embed sql/temperature-stats.sql
var temperatureStatsSQL string

//go:embed sql/count-rows.sql
var countRowsSQL string

// ErrNoMeasurements is returned when an aggregate needs at least one
// measurement row and the table is empty.
var ErrNoMeasurements = errors.New("no measurements available")

type ClimateRepository interface {
	ListStations(ctx context.Context) ([]types.Station, error)
	MaxMeasurementDate(ctx context.Context) (time.Time, error)
	PrecipitationInRange(ctx context.Context, start, end time.Time) ([]types.Precipitation, error)
	TemperaturesForStation(ctx context.Context, stationID string, start, end time.Time) ([]types.TemperatureObservation, error)
	// TemperatureStats returns nil stats when no measurement falls in the
	// range. A nil end leaves the range open above.
	TemperatureStats(ctx context.Context, start time.Time, end *time.Time) (*types.TemperatureStats, error)
	Counts(ctx context.Context) (stations int, measurements int, err error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) ClimateRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) ListStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, listStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()
	out := []types.Station{}
	for rows.Next() {
		var (
			s    types.Station
			name sql.NullString
		)
		if err := rows.Scan(&s.ID, &name); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		if name.Valid {
			s.Name = &name.String
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) MaxMeasurementDate(ctx context.Context) (time.Time, error) {
	var raw sql.NullString
	if err := r.db.QueryRowContext(ctx, maxMeasurementDateSQL).Scan(&raw); err != nil {
		return time.Time{}, fmt.Errorf("max measurement date: %w", err)
	}
	if !raw.Valid {
		return time.Time{}, ErrNoMeasurements
	}
	return parseStoredDate(raw.String)
}

func (r *repositoryImpl) PrecipitationInRange(ctx context.Context, start, end time.Time) ([]types.Precipitation, error) {
	rows, err := r.db.QueryContext(ctx, precipitationInRangeSQL, formatDate(start), formatDate(end))
	if err != nil {
		return nil, fmt.Errorf("precipitation in range: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close precipitation rows", "error", err)
		}
	}()
	out := []types.Precipitation{}
	for rows.Next() {
		var (
			p    types.Precipitation
			prcp sql.NullFloat64
		)
		if err := rows.Scan(&p.Date, &prcp); err != nil {
			return nil, fmt.Errorf("scan precipitation: %w", err)
		}
		if prcp.Valid {
			v := prcp.Float64
			p.Value = &v
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) TemperaturesForStation(ctx context.Context, stationID string, start, end time.Time) ([]types.TemperatureObservation, error) {
	rows, err := r.db.QueryContext(ctx, temperaturesForStationSQL, stationID, formatDate(start), formatDate(end))
	if err != nil {
		return nil, fmt.Errorf("temperatures for station %q: %w", stationID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close temperature rows", "error", err)
		}
	}()
	out := []types.TemperatureObservation{}
	for rows.Next() {
		var o types.TemperatureObservation
		if err := rows.Scan(&o.Date, &o.Value); err != nil {
			return nil, fmt.Errorf("scan temperature: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) TemperatureStats(ctx context.Context, start time.Time, end *time.Time) (*types.TemperatureStats, error) {
	var endArg any
	if end != nil {
		endArg = formatDate(*end)
	}
	var tmin, tavg, tmax sql.NullFloat64
	err := r.db.QueryRowContext(ctx, temperatureStatsSQL, formatDate(start), endArg).Scan(&tmin, &tavg, &tmax)
	if err != nil {
		return nil, fmt.Errorf("temperature stats: %w", err)
	}
	// Aggregates over zero rows come back as a single all-NULL row.
	if !tmin.Valid || !tavg.Valid || !tmax.Valid {
		return nil, nil
	}
	return &types.TemperatureStats{Min: tmin.Float64, Avg: tavg.Float64, Max: tmax.Float64}, nil
}

func (r *repositoryImpl) Counts(ctx context.Context) (int, int, error) {
	var stations, measurements int
	if err := r.db.QueryRowContext(ctx, countRowsSQL).Scan(&stations, &measurements); err != nil {
		return 0, 0, fmt.Errorf("count rows: %w", err)
	}
	return stations, measurements, nil
}

func formatDate(t time.Time) string {
	return t.Format(types.DateLayout)
}

// parseStoredDate accepts only the plain YYYY-MM-DD form. Range queries
// compare the column as text against that form, so a timestamp-style max
// date would fall outside its own window.
func parseStoredDate(s string) (time.Time, error) {
	t, err := time.Parse(types.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse measurement date %q: %w", s, err)
	}
	return t, nil
}
