package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	Driver          string
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// QueryTimeout bounds every store round-trip made while serving a request.
	QueryTimeout time.Duration
	// LogSQL wraps the driver so each statement is logged at debug level.
	LogSQL bool
}

// fileConfig mirrors the env keys for the optional CONFIG_FILE (YAML).
// Values are kept as strings so file and env go through the same parsing.
type fileConfig struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`
	HTTPAddr string `yaml:"http_addr"`
	LogSQL   string `yaml:"log_sql"`
	DB       struct {
		Driver          string `yaml:"driver"`
		DSN             string `yaml:"dsn"`
		Path            string `yaml:"path"`
		MaxOpenConns    string `yaml:"max_open_conns"`
		MaxIdleConns    string `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		QueryTimeout    string `yaml:"query_timeout"`
	} `yaml:"db"`
}

// LoadFromEnv builds the config from environment variables. If CONFIG_FILE
// names a YAML file, its values are used for any variable left unset.
func LoadFromEnv() (Config, error) {
	var fc fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("CONFIG_FILE %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("CONFIG_FILE %q: %w", path, err)
		}
	}

	appEnv := setting("APP_ENV", fc.AppEnv, "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(setting("LOG_LEVEL", fc.LogLevel, "info"))
	if err != nil {
		return Config{}, err
	}

	driver := setting("DB_DRIVER", fc.DB.Driver, "sqlite3")
	if driver != "sqlite3" {
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3)", driver)
	}

	maxOpenConnsStr := setting("DB_MAX_OPEN_CONNS", fc.DB.MaxOpenConns, "4")
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	maxIdleConnsStr := setting("DB_MAX_IDLE_CONNS", fc.DB.MaxIdleConns, "4")
	maxIdleConns, err := strconv.Atoi(maxIdleConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %q: %w", maxIdleConnsStr, err)
	}

	connMaxLifetimeStr := setting("DB_CONN_MAX_LIFETIME", fc.DB.ConnMaxLifetime, "0s")
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	queryTimeoutStr := setting("QUERY_TIMEOUT", fc.DB.QueryTimeout, "5s")
	queryTimeout, err := time.ParseDuration(queryTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid QUERY_TIMEOUT %q: %w", queryTimeoutStr, err)
	}
	if queryTimeout <= 0 {
		return Config{}, fmt.Errorf("invalid QUERY_TIMEOUT %q: must be > 0", queryTimeoutStr)
	}

	logSQLStr := setting("LOG_SQL", fc.LogSQL, "false")
	logSQL, err := strconv.ParseBool(logSQLStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_SQL %q: %w", logSQLStr, err)
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        setting("HTTP_ADDR", fc.HTTPAddr, ":8080"),
		Driver:          driver,
		DSN:             setting("DB_DSN", fc.DB.DSN, ""),
		Path:            setting("SQLITE_PATH", fc.DB.Path, "Resources/hawaii.sqlite"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
		QueryTimeout:    queryTimeout,
		LogSQL:          logSQL,
	}, nil
}

// setting returns the trimmed env value for key, falling back to the file
// value and then to def.
func setting(key, fromFile, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := strings.TrimSpace(fromFile); v != "" {
		return v
	}
	return def
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
