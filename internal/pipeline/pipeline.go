package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cinequery/cinequery/internal/nl2sql"
	"github.com/cinequery/cinequery/internal/observability"
	"github.com/cinequery/cinequery/internal/query"
	"github.com/cinequery/cinequery/internal/schema"
)

var ErrQuestionRequired = errors.New("question is required")

const EmptyQueryMessage = "failed to generate SQL query"

type FailureKind string

const (
	KindGeneration FailureKind = "generation"
	KindEmptyQuery FailureKind = "empty_query"
	KindExecution  FailureKind = "execution"
)

// Failure ends one submission. SQL is set once a statement was generated.
type Failure struct {
	Kind    FailureKind
	Message string
	SQL     string
	Err     error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Message
	}
	return f.Message + ": " + f.Err.Error()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

type Translation struct {
	Question string        `json:"question"`
	SQL      string        `json:"sql"`
	Provider string        `json:"provider,omitempty"`
	Model    string        `json:"model,omitempty"`
	Duration time.Duration `json:"-"`
}

type Outcome struct {
	Translation
	Result query.Result
}

type Pipeline struct {
	Table     schema.Table
	Completer nl2sql.Completer
	Engine    query.Engine
	Logger    *slog.Logger
	// RowLimit is forwarded to the engine; zero keeps the engine default.
	RowLimit int
	// QueryTimeout bounds execution of the generated statement when set.
	QueryTimeout time.Duration
}

func New(table schema.Table, completer nl2sql.Completer, engine query.Engine, logger *slog.Logger) *Pipeline {
	return &Pipeline{Table: table, Completer: completer, Engine: engine, Logger: logger}
}

// Translate turns a question into SQL without running it.
func (p *Pipeline) Translate(ctx context.Context, question string) (Translation, error) {
	translation, err := p.translate(ctx, question)
	observability.ObserveTranslate(outcomeFor(err))
	return translation, err
}

// Ask translates the question and executes the resulting statement. An
// execution failure still returns the generated SQL in the outcome.
func (p *Pipeline) Ask(ctx context.Context, question string) (Outcome, error) {
	outcome, err := p.ask(ctx, question)
	observability.ObserveAsk(outcomeFor(err))
	if err != nil {
		p.logger().WarnContext(ctx, "ask failed",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("outcome", outcomeFor(err)),
			slog.String("sql", outcome.SQL),
			slog.String("error", err.Error()),
		)
		return outcome, err
	}
	p.logger().InfoContext(ctx, "ask answered",
		slog.String("trace_id", observability.TraceIDFromContext(ctx)),
		slog.String("sql", outcome.SQL),
		slog.Int("rows", len(outcome.Result.Rows)),
		slog.Duration("completion_duration", outcome.Duration),
		slog.Duration("query_duration", outcome.Result.Duration),
	)
	return outcome, nil
}

func (p *Pipeline) ask(ctx context.Context, question string) (Outcome, error) {
	translation, err := p.translate(ctx, question)
	if err != nil {
		return Outcome{Translation: translation}, err
	}
	if p.Engine == nil {
		return Outcome{Translation: translation}, fmt.Errorf("query engine is required")
	}

	execCtx := ctx
	if p.QueryTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, p.QueryTimeout)
		defer cancel()
	}
	start := time.Now()
	result, err := p.Engine.Execute(execCtx, query.Request{SQL: translation.SQL, RowLimit: p.RowLimit})
	if err != nil {
		observability.ObserveQuery(-1, time.Since(start))
		return Outcome{Translation: translation}, &Failure{
			Kind:    KindExecution,
			Message: "error executing SQL query",
			SQL:     translation.SQL,
			Err:     err,
		}
	}
	if result.Duration == 0 {
		result.Duration = time.Since(start)
	}
	observability.ObserveQuery(len(result.Rows), result.Duration)
	return Outcome{Translation: translation, Result: result}, nil
}

func (p *Pipeline) translate(ctx context.Context, question string) (Translation, error) {
	translation := Translation{Question: question}
	if strings.TrimSpace(question) == "" {
		return translation, ErrQuestionRequired
	}
	if p.Completer == nil {
		return translation, fmt.Errorf("completer is required")
	}

	prompt := nl2sql.BuildPrompt(p.Table, question)
	start := time.Now()
	completion, err := p.Completer.Complete(ctx, prompt)
	translation.Duration = time.Since(start)
	observability.ObserveCompletion(translation.Duration)
	if err != nil {
		return translation, &Failure{Kind: KindGeneration, Message: "error generating SQL query", Err: err}
	}
	translation.Provider = completion.Provider
	translation.Model = completion.Model
	if !completion.Succeeded() || strings.TrimSpace(completion.Text) == "" {
		return translation, &Failure{Kind: KindEmptyQuery, Message: EmptyQueryMessage}
	}
	translation.SQL = strings.TrimSpace(completion.Text)
	return translation, nil
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}

func outcomeFor(err error) string {
	if err == nil {
		return observability.OutcomeOK
	}
	if errors.Is(err, ErrQuestionRequired) {
		return observability.OutcomeQuestionRequired
	}
	var failure *Failure
	if errors.As(err, &failure) {
		switch failure.Kind {
		case KindGeneration:
			return observability.OutcomeGenerationFailed
		case KindEmptyQuery:
			return observability.OutcomeEmptyQuery
		case KindExecution:
			return observability.OutcomeExecutionFailed
		}
	}
	return "error"
}
