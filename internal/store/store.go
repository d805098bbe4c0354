package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "modernc.org/sqlite"
)

type Config struct {
	Driver          Driver
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

// FilePath returns the database file behind a file-backed DSN. It reports
// false for server databases and in-memory stores.
func (c Config) FilePath() (string, bool) {
	switch c.Driver {
	case DriverSQLite, DriverDuckDB:
	default:
		return "", false
	}
	dsn := strings.TrimSpace(c.DSN)
	dsn = strings.TrimPrefix(dsn, "file:")
	if idx := strings.IndexByte(dsn, '?'); idx >= 0 {
		dsn = dsn[:idx]
	}
	if dsn == "" || dsn == ":memory:" {
		return "", false
	}
	if unescaped, err := url.PathUnescape(dsn); err == nil {
		dsn = unescaped
	}
	return dsn, true
}

func Open(ctx context.Context, cfg Config) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}
	if strings.TrimSpace(cfg.DSN) == "" && cfg.Driver != DriverDuckDB {
		return nil, Dialect{}, fmt.Errorf("store dsn is required")
	}

	db, err := sql.Open(dialect.driverName, cfg.DSN)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("open %s store: %w", cfg.Driver, err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 && cfg.Driver == DriverSQLite {
		maxOpen = 1
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("ping %s store: %w", cfg.Driver, err)
	}

	return db, dialect, nil
}

// ProbeTable fails when the table cannot be read.
func ProbeTable(ctx context.Context, db *sql.DB, dialect Dialect, table string) error {
	rows, err := db.QueryContext(ctx, "SELECT 1 FROM "+dialect.QuoteIdent(table)+" LIMIT 1")
	if err != nil {
		return fmt.Errorf("probe table %q: %w", table, err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("probe table %q: %w", table, err)
	}
	return nil
}
