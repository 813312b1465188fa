package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"climate-server/internal/config"

	_ "github.com/mattn/go-sqlite3"
)

// Open connects to the climate store read-only. The file must already exist;
// the service never creates or migrates it.
func Open(cfg config.Config) (*sql.DB, error) {
	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.LogSQL {
		db = sql.OpenDB(NewLoggingConnector(dsn, slog.Default()))
	} else {
		db, err = sql.Open(cfg.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// readOnlyParams are appended to every file DSN:
//   - mode=ro: sqlite refuses to create or write the file
//   - _query_only: PRAGMA query_only on each connection
//   - _busy_timeout: wait out a writer holding the lock
var readOnlyParams = []string{
	"mode=ro",
	"_query_only=true",
	"_busy_timeout=5000",
}

func buildDSN(cfg config.Config) (string, error) {
	if cfg.DSN != "" {
		return readOnlyURI(cfg.DSN)
	}

	path := cfg.Path
	if path == "" {
		return "", fmt.Errorf("sqlite store: no path configured")
	}

	// "file:" paths may carry their own query string; only plain paths are
	// checked on disk.
	if strings.HasPrefix(path, "file:") {
		return readOnlyURI(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("sqlite store %q: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("sqlite store %q: is a directory", path)
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(readOnlyParams, "&")), nil
}

// readOnlyURI turns dsn into a file: URI carrying every readOnlyParams key
// it does not already set. A dsn asking for any mode other than ro, or
// turning query_only off, is rejected.
func readOnlyURI(dsn string) (string, error) {
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}

	set := map[string]string{}
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		for _, kv := range strings.Split(dsn[i+1:], "&") {
			k, v, _ := strings.Cut(kv, "=")
			set[k] = v
		}
	}
	if mode, ok := set["mode"]; ok && mode != "ro" {
		return "", fmt.Errorf("sqlite dsn %q: mode=%s not allowed, store is read-only", dsn, mode)
	}
	if q, ok := set["_query_only"]; ok {
		if on, err := strconv.ParseBool(q); err != nil || !on {
			return "", fmt.Errorf("sqlite dsn %q: _query_only=%s not allowed, store is read-only", dsn, q)
		}
	}

	var missing []string
	for _, param := range readOnlyParams {
		k, _, _ := strings.Cut(param, "=")
		if _, ok := set[k]; !ok {
			missing = append(missing, param)
		}
	}
	if len(missing) == 0 {
		return dsn, nil
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(missing, "&"), nil
}
