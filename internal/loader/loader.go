package loader

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/cinequery/cinequery/internal/observability"
	"github.com/cinequery/cinequery/internal/query"
	"github.com/cinequery/cinequery/internal/query/sqlengine"
	"github.com/cinequery/cinequery/internal/schema"
	"github.com/cinequery/cinequery/internal/storage"
	"github.com/cinequery/cinequery/internal/store"
)

const (
	DefaultBatchSize  = 200
	DefaultSampleRows = 5
)

// ObjectOpener streams s3://bucket/key sources.
type ObjectOpener interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, storage.ObjectInfo, error)
}

type Loader struct {
	DB      *sql.DB
	Dialect store.Dialect
	Objects ObjectOpener
	Logger  *slog.Logger
	// LockPath names the advisory lock file held for the duration of a load.
	// Empty disables locking.
	LockPath     string
	BatchSize    int
	LockInterval time.Duration
	// LockTimeout bounds the wait for a lock held elsewhere.
	LockTimeout time.Duration
}

type LoadRequest struct {
	Source string
	Table  string
	// Format overrides detection from the source extension.
	Format     Format
	SampleRows int
}

type Summary struct {
	Table    string          `json:"table"`
	Source   string          `json:"source"`
	Format   Format          `json:"format"`
	Columns  []schema.Column `json:"columns"`
	RowCount int64           `json:"row_count"`
	Sample   query.Result    `json:"sample"`
	Duration time.Duration   `json:"-"`
}

// Load replaces the target table with the contents of the source file.
// The drop, create and inserts share one transaction, so a failed load
// leaves any previous table untouched.
func (l *Loader) Load(ctx context.Context, req LoadRequest) (Summary, error) {
	if l.DB == nil {
		return Summary{}, fmt.Errorf("database handle is required")
	}
	source := strings.TrimSpace(req.Source)
	if source == "" {
		return Summary{}, fmt.Errorf("source is required")
	}
	table := strings.TrimSpace(req.Table)
	if table == "" {
		table = schema.MoviesTable
	}
	format := req.Format
	if format == "" {
		detected, err := FormatFor(source)
		if err != nil {
			return Summary{}, err
		}
		format = detected
	}
	start := time.Now()

	if l.LockPath != "" {
		unlock, err := l.acquireLock(ctx)
		if err != nil {
			return Summary{}, err
		}
		defer unlock()
	}

	data, err := l.read(ctx, source, format)
	if err != nil {
		return Summary{}, err
	}
	if err := l.replaceTable(ctx, table, data); err != nil {
		return Summary{}, err
	}

	count, err := l.countRows(ctx, table)
	if err != nil {
		return Summary{}, err
	}
	sampleRows := req.SampleRows
	if sampleRows <= 0 {
		sampleRows = DefaultSampleRows
	}
	sample, err := l.sample(ctx, table, data.columns, sampleRows)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Table:    table,
		Source:   source,
		Format:   format,
		Columns:  data.columns,
		RowCount: count,
		Sample:   sample,
		Duration: time.Since(start),
	}
	observability.ObserveLoad(count)
	l.logger().Info("dataset loaded",
		slog.String("table", table),
		slog.String("source", source),
		slog.String("format", string(format)),
		slog.Int64("rows", count),
		slog.Int("columns", len(data.columns)),
		slog.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (l *Loader) acquireLock(ctx context.Context) (func(), error) {
	interval := l.LockInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	timeout := l.LockTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	lock := flock.New(l.LockPath)
	locked, err := lock.TryLockContext(waitCtx, interval)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("load lock %s is held by another process after %s", l.LockPath, timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire load lock %s: %w", l.LockPath, err)
	}
	if !locked {
		return nil, fmt.Errorf("load lock %s is held by another process", l.LockPath)
	}
	return func() { _ = lock.Unlock() }, nil
}

func (l *Loader) read(ctx context.Context, source string, format Format) (dataset, error) {
	var raw []byte
	if storage.IsObjectURI(source) {
		if l.Objects == nil {
			return dataset{}, fmt.Errorf("object storage is not configured for %s", source)
		}
		body, _, err := l.Objects.Open(ctx, source)
		if err != nil {
			return dataset{}, fmt.Errorf("open %s: %w", source, err)
		}
		defer func() { _ = body.Close() }()
		raw, err = io.ReadAll(body)
		if err != nil {
			return dataset{}, fmt.Errorf("read %s: %w", source, err)
		}
	} else {
		content, err := os.ReadFile(source)
		if err != nil {
			return dataset{}, fmt.Errorf("read %s: %w", source, err)
		}
		raw = content
	}

	var (
		data dataset
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = readCSV(bytes.NewReader(raw))
	case FormatParquet:
		data, err = readParquet(bytes.NewReader(raw), int64(len(raw)))
	default:
		return dataset{}, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return dataset{}, fmt.Errorf("parse %s: %w", source, err)
	}
	return data, nil
}

func (l *Loader) replaceTable(ctx context.Context, table string, data dataset) (err error) {
	tx, err := l.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+l.Dialect.QuoteIdent(table)); err != nil {
		return fmt.Errorf("drop table %q: %w", table, err)
	}
	if _, err = tx.ExecContext(ctx, createTableSQL(l.Dialect, table, data.columns)); err != nil {
		return fmt.Errorf("create table %q: %w", table, err)
	}

	batchSize := l.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	for offset := 0; offset < len(data.rows); offset += batchSize {
		end := min(offset+batchSize, len(data.rows))
		batch := data.rows[offset:end]
		statement := insertSQL(l.Dialect, table, data.columns, len(batch))
		args := make([]any, 0, len(batch)*len(data.columns))
		for _, row := range batch {
			args = append(args, row...)
		}
		if _, err = tx.ExecContext(ctx, statement, args...); err != nil {
			return fmt.Errorf("insert rows %d-%d into %q: %w", offset+1, end, table, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit load transaction: %w", err)
	}
	return nil
}

func (l *Loader) countRows(ctx context.Context, table string) (int64, error) {
	var count int64
	if err := l.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+l.Dialect.QuoteIdent(table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows in %q: %w", table, err)
	}
	return count, nil
}

// sample returns the best rated titles when the loaded columns allow it.
func (l *Loader) sample(ctx context.Context, table string, columns []schema.Column, limit int) (query.Result, error) {
	statement, ok := sampleSQL(l.Dialect, table, columns, limit)
	if !ok {
		return query.Result{Columns: []string{}, Rows: [][]any{}}, nil
	}
	result, err := sqlengine.NewEngine(l.DB, sqlengine.Options{}).Execute(ctx, query.Request{SQL: statement})
	if err != nil {
		return query.Result{}, fmt.Errorf("sample %q: %w", table, err)
	}
	return result, nil
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
