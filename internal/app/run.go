package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"climate-server/internal/config"
	"climate-server/internal/db"
	"climate-server/internal/httpapi"
	"climate-server/internal/modules/climate"
	"climate-server/internal/modules/climate/repository"
	"climate-server/internal/modules/climate/views"
)

const shutdownTimeout = 10 * time.Second

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dbDriver", cfg.Driver,
		"sqlitePath", cfg.Path,
		"dsnOverride", cfg.DSN != "",
		"maxOpenConns", cfg.MaxOpenConns,
		"maxIdleConns", cfg.MaxIdleConns,
		"connMaxLifetime", cfg.ConnMaxLifetime,
		"queryTimeout", cfg.QueryTimeout,
		"logSQL", cfg.LogSQL,
	)
	dbConn, err := db.Open(cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	checkCtx, checkCancel := context.WithTimeout(ctx, 5*time.Second)
	err = repository.ValidateSchema(checkCtx, dbConn, slog.Default())
	checkCancel()
	if err != nil {
		return err
	}
	slog.Info("database connection successful", "path", cfg.Path)

	if err := views.LoadTemplates(); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := httpapi.NewMetrics(reg)
	mux := httpapi.NewMux(dbConn, reg)
	climate.RegisterFeature(mux, dbConn, reg, cfg.QueryTimeout)

	srv := httpapi.NewServer(cfg, mux, metrics)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
