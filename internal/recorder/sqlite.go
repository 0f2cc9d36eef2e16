package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"ResultsMonitor/internal/model"
)

// SQLiteRecorder appends observed results to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
// dbPath is a local file, ":memory:", or a libsql:// (or http(s)://) URL of a
// remote libsql server.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	driver := driverFor(dbPath)
	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	// a single connection keeps :memory: databases visible to every statement
	db.SetMaxOpenConns(1)

	if driver == "sqlite" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}

	r := &SQLiteRecorder{db: db, now: time.Now}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] %s recorder opened", driver)
	return r, nil
}

func driverFor(dsn string) string {
	for _, scheme := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(dsn, scheme) {
			return "libsql"
		}
	}
	return "sqlite"
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS result_events (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			event_type    TEXT NOT NULL,
			module        TEXT NOT NULL,
			month         TEXT,
			class_mark    INTEGER,
			progress_mark INTEGER,
			final_mark    INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_result_events_ts ON result_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_result_events_module ON result_events(module)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordBaseline(results model.ResultSet) error {
	return r.record(EventBaseline, results)
}

func (r *SQLiteRecorder) RecordChanges(changed model.ResultSet) error {
	return r.record(EventChange, changed)
}

func (r *SQLiteRecorder) record(event EventType, results model.ResultSet) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO result_events
		(timestamp, event_type, module, month, class_mark, progress_mark, final_mark)
		VALUES (?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	ts := r.now().Unix()
	for _, module := range results.Modules() {
		res := results[module]
		if _, err := stmt.Exec(ts, string(event), module, res.Month,
			res.ClassMark, res.ProgressMark, res.FinalMark); err != nil {
			return fmt.Errorf("insert %s: %w", module, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
