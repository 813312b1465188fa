package db

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"testing"
)

// captureHandler records log records for assertion in tests.
type captureHandler struct {
	mu      sync.Mutex
	records []capturedRecord
}

type capturedRecord struct {
	level slog.Level
	attrs map[string]slog.Value
}

func (h *captureHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }

func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := map[string]slog.Value{"msg": slog.StringValue(r.Message)}
	r.Attrs(func(a slog.Attr) bool {
		m[a.Key] = a.Value
		return true
	})
	h.records = append(h.records, capturedRecord{level: r.Level, attrs: m})
	return nil
}

func (h *captureHandler) WithAttrs(_ []slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(_ string) slog.Handler { return h }

func (h *captureHandler) sqlRecords(t *testing.T) []capturedRecord {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []capturedRecord
	for _, r := range h.records {
		if r.attrs["msg"].String() == "sql" {
			out = append(out, r)
		}
	}
	return out
}

func (h *captureHandler) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = nil
}

func openLogged(t *testing.T, handler *captureHandler) *sql.DB {
	t.Helper()
	conn := sql.OpenDB(NewLoggingConnector(":memory:", slog.New(handler)))
	// One connection keeps every statement on the same in-memory database.
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func lastSQL(t *testing.T, h *captureHandler) capturedRecord {
	t.Helper()
	recs := h.sqlRecords(t)
	if len(recs) == 0 {
		t.Fatal("expected at least one sql log record")
	}
	return recs[len(recs)-1]
}

func TestNewLoggingConnector_nilLoggerUsesDefault(t *testing.T) {
	c := NewLoggingConnector(":memory:", nil)
	lc, ok := c.(*loggingConnector)
	if !ok {
		t.Fatalf("connector type = %T", c)
	}
	if lc.logger == nil {
		t.Fatal("logger is nil")
	}
	if c.Driver() == nil {
		t.Fatal("Driver() is nil")
	}
}

func TestLoggingConnector_ExecAndQueryLogged(t *testing.T) {
	handler := &captureHandler{}
	conn := openLogged(t, handler)

	if _, err := conn.Exec(`CREATE TABLE station (station TEXT, name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	got := lastSQL(t, handler)
	if got.attrs["op"].String() != "exec" {
		t.Errorf("op: got %q, want exec", got.attrs["op"].String())
	}
	if got.attrs["sql"].String() != `CREATE TABLE station (station TEXT, name TEXT)` {
		t.Errorf("sql: got %q", got.attrs["sql"].String())
	}
	if got.level != slog.LevelDebug {
		t.Errorf("level: got %v, want debug", got.level)
	}
	if _, ok := got.attrs["duration"]; !ok {
		t.Error("expected duration attribute")
	}

	handler.reset()
	var one int
	if err := conn.QueryRow(`SELECT 1`).Scan(&one); err != nil {
		t.Fatalf("query row: %v", err)
	}
	got = lastSQL(t, handler)
	if got.attrs["op"].String() != "query" {
		t.Errorf("op: got %q, want query", got.attrs["op"].String())
	}
	if got.attrs["sql"].String() != `SELECT 1` {
		t.Errorf("sql: got %q", got.attrs["sql"].String())
	}
}

func TestLoggingConnector_ArgsLogged(t *testing.T) {
	handler := &captureHandler{}
	conn := openLogged(t, handler)

	if _, err := conn.Exec(`CREATE TABLE measurement (station TEXT, date TEXT, tobs REAL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	handler.reset()

	rows, err := conn.Query(`SELECT tobs FROM measurement WHERE station = ? AND date >= ?`, "USC00519281", "2016-08-23")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	_ = rows.Close()

	got := lastSQL(t, handler)
	args, ok := got.attrs["args"]
	if !ok {
		t.Fatal("expected args attribute in log")
	}
	list, ok := args.Any().([]string)
	if !ok {
		t.Fatalf("args type = %T; want []string", args.Any())
	}
	if len(list) != 2 || list[0] != "USC00519281" || list[1] != "2016-08-23" {
		t.Errorf("args = %v", list)
	}
}

func TestLoggingConnector_FailedPrepareLoggedAtWarn(t *testing.T) {
	handler := &captureHandler{}
	conn := openLogged(t, handler)

	if _, err := conn.Query(`SELECT * FROM no_such_table`); err == nil {
		t.Fatal("query on missing table succeeded")
	}
	got := lastSQL(t, handler)
	if got.attrs["op"].String() != "prepare" {
		t.Errorf("op: got %q, want prepare", got.attrs["op"].String())
	}
	if got.level != slog.LevelWarn {
		t.Errorf("level: got %v, want warn", got.level)
	}
	if _, ok := got.attrs["error"]; !ok {
		t.Error("expected error attribute")
	}
}

func TestLoggingConnector_PingSucceeds(t *testing.T) {
	conn := openLogged(t, &captureHandler{})
	if err := conn.Ping(); err != nil {
		t.Fatalf("ping: %v", err)
	}
}
