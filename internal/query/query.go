package query

import (
	"context"
	"errors"
	"time"
)

var (
	ErrStatementNotAllowed = errors.New("only read-only SELECT/WITH statements are allowed")
	ErrMultipleStatements  = errors.New("only a single SQL statement can be executed")
)

type Request struct {
	SQL      string
	RowLimit int
}

// Result holds a fully materialized result set in column order.
type Result struct {
	Columns  []string      `json:"columns"`
	Rows     [][]any       `json:"rows"`
	Duration time.Duration `json:"-"`
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}
