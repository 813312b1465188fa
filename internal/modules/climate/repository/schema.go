package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"climate-server/internal/logging"
	"climate-server/internal/modules/climate/types"
)

// ErrSchemaMismatch means the store lacks a table or column the service reads.
var ErrSchemaMismatch = errors.New("store schema mismatch")

// ValidateSchema checks every types.RequiredColumns entry against the live
// store: tables via sqlite_master, columns via pragma_table_info, so only
// real column names count. Nothing is created or altered.
func ValidateSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	gdb, err := gorm.Open(&sqlite.Dialector{Conn: db}, &gorm.Config{
		Logger: gormlogger.New(
			logging.StdLogger(logger, slog.LevelWarn),
			gormlogger.Config{
				SlowThreshold:             time.Second,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return fmt.Errorf("schema check: %w", err)
	}
	gdb = gdb.WithContext(ctx)
	migrator := gdb.Migrator()

	var missing []string
	for _, rc := range types.RequiredColumns {
		stmt := &gorm.Statement{DB: gdb}
		if err := stmt.Parse(rc.Record); err != nil {
			return fmt.Errorf("schema check: parse %T: %w", rc.Record, err)
		}
		table := stmt.Schema.Table
		if !migrator.HasTable(table) {
			missing = append(missing, "table "+table)
			continue
		}

		var names []string
		if err := gdb.Raw(`SELECT name FROM pragma_table_info(?)`, table).Scan(&names).Error; err != nil {
			return fmt.Errorf("schema check: columns of %s: %w", table, err)
		}
		present := make(map[string]bool, len(names))
		for _, name := range names {
			present[strings.ToLower(name)] = true
		}

		for _, fieldName := range rc.Columns {
			field := stmt.Schema.LookUpField(fieldName)
			if field == nil {
				return fmt.Errorf("schema check: %s has no field %s", stmt.Schema.Name, fieldName)
			}
			if !present[strings.ToLower(field.DBName)] {
				missing = append(missing, "column "+table+"."+field.DBName)
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}
