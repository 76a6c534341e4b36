package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN         string
	MaxConns    int
	DialTimeout time.Duration
}

// Store wraps the document-store connection. The DSN selects the driver:
// postgres:// and postgresql:// URLs go through pgx, everything else is
// treated as a sqlite path (":memory:" included).
type Store struct {
	db       *sql.DB
	postgres bool
	logger   *slog.Logger
}

// Open connects, pings, and bootstraps the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver, postgres := driverFor(cfg.DSN)
	logger.Info("connecting to database", "driver", driver)

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, postgres: postgres, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("successfully connected to database")
	return s, nil
}

func driverFor(dsn string) (name string, postgres bool) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", true
	}
	return "sqlite", false
}

// Close closes the database connection gracefully.
func (s *Store) Close() {
	s.logger.Info("closing database connection")
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close database", "error", err)
	}
}

// HealthCheck pings to catch DSN and connectivity issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	s.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}

// rebind rewrites ? placeholders to $N for postgres. Queries are written
// with ? throughout; sqlite takes them as-is.
func (s *Store) rebind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		month TEXT NOT NULL,
		year INTEGER NOT NULL,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		job_id TEXT NOT NULL REFERENCES jobs(id),
		file_type TEXT NOT NULL,
		filename TEXT NOT NULL,
		source_path TEXT NOT NULL,
		file_ext TEXT NOT NULL,
		file_size INTEGER NOT NULL,
		content_hash TEXT NOT NULL,
		uploaded_at TEXT NOT NULL,
		UNIQUE (job_id, file_type)
	)`,
	`CREATE TABLE IF NOT EXISTS extractions (
		job_id TEXT NOT NULL REFERENCES jobs(id),
		doc_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		extracted_at TEXT NOT NULL,
		PRIMARY KEY (job_id, doc_type)
	)`,
	`CREATE TABLE IF NOT EXISTS validation_results (
		job_id TEXT PRIMARY KEY REFERENCES jobs(id),
		payload TEXT NOT NULL,
		validated_at TEXT NOT NULL
	)`,
}

// migrate bootstraps the schema. The DDL sticks to the type and upsert
// subset both backends share.
func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.Error("failed to apply schema", "error", err)
			return err
		}
	}
	return nil
}

// Timestamps are stored as RFC 3339 text so the same schema serves both
// backends.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
