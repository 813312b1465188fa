package controller

import (
	"io"
	"net/http"
	"time"

	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/views"
)

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	repository   repository.ClimateRepository
	queryTimeout time.Duration
	renderIndex  func(w io.Writer, data *views.IndexData) error
}

// NewClimateController serves the climate routes from repository. Each
// request's store work is bounded by queryTimeout; zero means no bound
// beyond the request context.
func NewClimateController(repository repository.ClimateRepository, queryTimeout time.Duration) ClimateController {
	return &climateControllerImpl{
		repository:   repository,
		queryTimeout: queryTimeout,
		renderIndex:  views.RenderIndex,
	}
}

// routes is listed on the index page in this order.
var routes = []views.Route{
	{Path: "/api/v1/stations", Description: "all stations (code and name)"},
	{Path: "/api/v1/precipitation", Description: "precipitation by date for the last year of data"},
	{Path: "/api/v1/tobs?station=<station_id>", Description: "temperature observations for a station over the last year of data"},
	{Path: "/api/v1.0/<start>", Description: "min/avg/max temperature from start (YYYY-MM-DD)"},
	{Path: "/api/v1.0/<start>/<end>", Description: "min/avg/max temperature between start and end, inclusive"},
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1/tobs", c.handleTobs)
	mux.HandleFunc("GET /api/v1.0/{start}", c.handleStatsFrom)
	mux.HandleFunc("GET /api/v1.0/{start}/{end}", c.handleStatsRange)
	// Anything deeper (e.g. an unescaped 2017/01/01) is a malformed date, not a missing page.
	mux.HandleFunc("GET /api/v1.0/{rest...}", c.handleStatsMalformed)
}
