package controller

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/types"
	"climate-server/internal/modules/climate/views"
	"climate-server/internal/utils"
)

const indexTitle = "Hawaii Climate API"

func (c *climateControllerImpl) queryContext(r *http.Request) (context.Context, context.CancelFunc) {
	if c.queryTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), c.queryTimeout)
}

// writeStoreError maps a data access failure to a response. Details stay in
// the log.
func writeStoreError(ctx context.Context, w http.ResponseWriter, what string, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		slog.Warn(what+": store deadline exceeded", "error", err)
		utils.WriteError(w, http.StatusGatewayTimeout, msgTimedOut)
	case errors.Is(err, repository.ErrNoMeasurements):
		slog.Error(what+": measurement table is empty")
		utils.WriteError(w, http.StatusInternalServerError, repository.ErrNoMeasurements.Error())
	default:
		slog.Error(what+": store query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load "+what)
	}
}

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := c.renderIndex(&buf, &views.IndexData{Title: indexTitle, Routes: routes}); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("index: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.queryContext(r)
	defer cancel()

	stations, err := c.repository.ListStations(ctx)
	if err != nil {
		writeStoreError(ctx, w, "stations", err)
		return
	}
	utils.WriteResponse(w, r, http.StatusOK, stations)
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := c.queryContext(r)
	defer cancel()

	start, end, err := c.trailingYear(ctx)
	if err != nil {
		writeStoreError(ctx, w, "precipitation", err)
		return
	}
	rows, err := c.repository.PrecipitationInRange(ctx, start, end)
	if err != nil {
		writeStoreError(ctx, w, "precipitation", err)
		return
	}
	byDate := make(map[string]*float64, len(rows))
	for _, p := range rows {
		byDate[p.Date] = p.Value
	}
	utils.WriteResponse(w, r, http.StatusOK, byDate)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	stationID := r.URL.Query().Get("station")
	if stationID == "" {
		utils.WriteError(w, http.StatusBadRequest, msgMissingStation)
		return
	}

	ctx, cancel := c.queryContext(r)
	defer cancel()

	start, end, err := c.trailingYear(ctx)
	if err != nil {
		writeStoreError(ctx, w, "temperature observations", err)
		return
	}
	rows, err := c.repository.TemperaturesForStation(ctx, stationID, start, end)
	if err != nil {
		writeStoreError(ctx, w, "temperature observations", err)
		return
	}
	byDate := make(map[string]float64, len(rows))
	for _, o := range rows {
		byDate[o.Date] = o.Value
	}
	utils.WriteResponse(w, r, http.StatusOK, byDate)
}

func (c *climateControllerImpl) handleStatsFrom(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.PathValue("start"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	c.writeStats(w, r, start, nil)
}

func (c *climateControllerImpl) handleStatsRange(w http.ResponseWriter, r *http.Request) {
	start, err := parseDate(r.PathValue("start"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	end, err := parseDate(r.PathValue("end"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, msgInvalidDate)
		return
	}
	if end.Before(start) {
		utils.WriteError(w, http.StatusBadRequest, msgEndBeforeStart)
		return
	}
	c.writeStats(w, r, start, &end)
}

func (c *climateControllerImpl) handleStatsMalformed(w http.ResponseWriter, r *http.Request) {
	utils.WriteError(w, http.StatusBadRequest, msgInvalidDate)
}

func (c *climateControllerImpl) writeStats(w http.ResponseWriter, r *http.Request, start time.Time, end *time.Time) {
	ctx, cancel := c.queryContext(r)
	defer cancel()

	stats, err := c.repository.TemperatureStats(ctx, start, end)
	if err != nil {
		writeStoreError(ctx, w, "temperature stats", err)
		return
	}
	if stats == nil {
		utils.WriteError(w, http.StatusNotFound, msgNoData)
		return
	}

	summary := types.TemperatureSummary{
		StartDate: start.Format(types.DateLayout),
		EndDate:   "N/A",
		TMin:      stats.Min,
		TAvg:      stats.Avg,
		TMax:      stats.Max,
	}
	if end != nil {
		summary.EndDate = end.Format(types.DateLayout)
	}
	utils.WriteResponse(w, r, http.StatusOK, summary)
}
