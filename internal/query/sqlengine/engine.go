package sqlengine

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cinequery/cinequery/internal/query"
	"github.com/cinequery/cinequery/internal/store"
)

type Options struct {
	// ReadOnly rejects statements that do not start with SELECT or WITH and
	// runs the rest in a transaction that is always rolled back.
	ReadOnly bool
	// Driver selects the store specific read-only guard. sqlite connections
	// additionally get PRAGMA query_only.
	Driver store.Driver
	// RowLimit caps materialized rows when a request sets none. Zero means
	// unlimited.
	RowLimit int
}

// Engine executes statements against a single long-lived database handle.
type Engine struct {
	DB      *sql.DB
	Options Options
}

func NewEngine(db *sql.DB, opts Options) *Engine {
	return &Engine{DB: db, Options: opts}
}

func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	if e.DB == nil {
		return query.Result{}, fmt.Errorf("database handle is required")
	}
	sqlText := stripTrailingSemicolons(request.SQL)
	if sqlText == "" {
		return query.Result{}, fmt.Errorf("sql is required")
	}
	if hasStatementSeparator(sqlText) {
		return query.Result{}, query.ErrMultipleStatements
	}
	if e.Options.ReadOnly && !IsReadOnly(sqlText) {
		return query.Result{}, query.ErrStatementNotAllowed
	}
	rowLimit := request.RowLimit
	if rowLimit <= 0 {
		rowLimit = e.Options.RowLimit
	}

	start := time.Now()
	if !e.Options.ReadOnly {
		result, err := collect(ctx, e.DB, sqlText, rowLimit)
		if err != nil {
			return query.Result{}, err
		}
		result.Duration = time.Since(start)
		return result, nil
	}

	result, err := e.executeReadOnly(ctx, sqlText, rowLimit)
	if err != nil {
		return query.Result{}, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// executeReadOnly pins one connection, enables the driver's read-only guard
// and runs the statement in a transaction that is never committed.
func (e *Engine) executeReadOnly(ctx context.Context, sqlText string, rowLimit int) (query.Result, error) {
	conn, err := e.DB.Conn(ctx)
	if err != nil {
		return query.Result{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if e.Options.Driver == store.DriverSQLite {
		if _, err := conn.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
			return query.Result{}, fmt.Errorf("enable query_only: %w", err)
		}
		defer func() { _, _ = conn.ExecContext(context.Background(), "PRAGMA query_only = OFF") }()
	}

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: supportsReadOnlyTx(e.Options.Driver)})
	if err != nil {
		return query.Result{}, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	return collect(ctx, tx, sqlText, rowLimit)
}

func supportsReadOnlyTx(driver store.Driver) bool {
	return driver == store.DriverPostgres || driver == store.DriverMySQL
}

func collect(ctx context.Context, q queryer, sqlText string, rowLimit int) (query.Result, error) {
	rows, err := q.QueryContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, fmt.Errorf("query columns: %w", err)
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		if rowLimit > 0 && len(resultRows) >= rowLimit {
			break
		}
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return query.Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, fmt.Errorf("iterate rows: %w", err)
	}

	return query.Result{Columns: columns, Rows: resultRows}, nil
}

// IsReadOnly reports whether the statement starts with SELECT or WITH.
func IsReadOnly(sqlText string) bool {
	normalized := strings.ToLower(strings.TrimSpace(sqlText))
	if normalized == "" {
		return false
	}
	return strings.HasPrefix(normalized, "select") || strings.HasPrefix(normalized, "with")
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		case float64:
			// JSON has no representation for NaN or infinities.
			if math.IsNaN(typed) || math.IsInf(typed, 0) {
				normalized[i] = strconv.FormatFloat(typed, 'g', -1, 64)
			} else {
				normalized[i] = typed
			}
		case float32:
			if f := float64(typed); math.IsNaN(f) || math.IsInf(f, 0) {
				normalized[i] = strconv.FormatFloat(f, 'g', -1, 32)
			} else {
				normalized[i] = typed
			}
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}

// hasStatementSeparator reports a semicolon outside string literals,
// quoted identifiers and comments.
func hasStatementSeparator(sqlText string) bool {
	for i := 0; i < len(sqlText); i++ {
		switch c := sqlText[i]; c {
		case ';':
			return true
		case '\'', '"', '`':
			i = skipQuoted(sqlText, i, c)
		case '-':
			if i+1 < len(sqlText) && sqlText[i+1] == '-' {
				for i < len(sqlText) && sqlText[i] != '\n' {
					i++
				}
			}
		case '/':
			if i+1 < len(sqlText) && sqlText[i+1] == '*' {
				end := strings.Index(sqlText[i+2:], "*/")
				if end < 0 {
					return false
				}
				i += end + 3
			}
		}
	}
	return false
}

// skipQuoted returns the index of the closing quote, treating a doubled
// quote as an escaped one.
func skipQuoted(sqlText string, start int, quote byte) int {
	for i := start + 1; i < len(sqlText); i++ {
		if sqlText[i] != quote {
			continue
		}
		if i+1 < len(sqlText) && sqlText[i+1] == quote {
			i++
			continue
		}
		return i
	}
	return len(sqlText)
}
