package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cinequery/cinequery/internal/loader"
	"github.com/cinequery/cinequery/internal/nl2sql"
	"github.com/cinequery/cinequery/internal/query"
	"github.com/cinequery/cinequery/internal/query/sqlengine"
	"github.com/cinequery/cinequery/internal/schema"
	"github.com/cinequery/cinequery/internal/store"
)

func TestAskRejectsBlankQuestionWithoutCallingCompleter(t *testing.T) {
	completer := &fakeCompleter{completion: okCompletion("SELECT 1;")}
	engine := &fakeEngine{}
	p := newTestPipeline(completer, engine)

	for _, question := range []string{"", "   ", "\n\t"} {
		_, err := p.Ask(context.Background(), question)
		require.ErrorIs(t, err, ErrQuestionRequired)
	}
	require.Empty(t, completer.prompts)
	require.Empty(t, engine.requests)
}

func TestAskSendsPromptAndExecutesGeneratedSQL(t *testing.T) {
	completer := &fakeCompleter{completion: okCompletion("  SELECT Title FROM movies LIMIT 1;  ")}
	engine := &fakeEngine{result: query.Result{Columns: []string{"Title"}, Rows: [][]any{{"Dangal"}}}}
	p := newTestPipeline(completer, engine)
	p.RowLimit = 100

	question := "What is the top rated movie?"
	outcome, err := p.Ask(context.Background(), question)
	require.NoError(t, err)
	require.Len(t, completer.prompts, 1)
	require.Equal(t, nl2sql.BuildPrompt(schema.Movies(), question), completer.prompts[0])
	require.Equal(t, []query.Request{{SQL: "SELECT Title FROM movies LIMIT 1;", RowLimit: 100}}, engine.requests)
	require.Equal(t, "SELECT Title FROM movies LIMIT 1;", outcome.SQL)
	require.Equal(t, question, outcome.Question)
	require.Equal(t, "test-model", outcome.Model)
	require.Equal(t, [][]any{{"Dangal"}}, outcome.Result.Rows)
}

func TestAskReportsEmptyCompletionWithoutExecuting(t *testing.T) {
	for name, completion := range map[string]nl2sql.Completion{
		"empty status": {Status: nl2sql.CompletionEmpty},
		"blank text":   {Status: nl2sql.CompletionOK, Text: "   "},
	} {
		t.Run(name, func(t *testing.T) {
			engine := &fakeEngine{}
			p := newTestPipeline(&fakeCompleter{completion: completion}, engine)

			_, err := p.Ask(context.Background(), "anything")
			var failure *Failure
			require.ErrorAs(t, err, &failure)
			require.Equal(t, KindEmptyQuery, failure.Kind)
			require.Contains(t, err.Error(), "failed to generate SQL query")
			require.Empty(t, engine.requests)
		})
	}
}

func TestAskReportsGenerationFailure(t *testing.T) {
	cause := &nl2sql.StatusError{StatusCode: 401, Body: "bad key"}
	engine := &fakeEngine{}
	p := newTestPipeline(&fakeCompleter{err: cause}, engine)

	_, err := p.Ask(context.Background(), "anything")
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, KindGeneration, failure.Kind)
	var statusErr *nl2sql.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Empty(t, engine.requests)
}

func TestAskReportsExecutionFailureWithSQL(t *testing.T) {
	engine := &fakeEngine{err: errors.New(`execute query: near "SELEKT": syntax error`)}
	p := newTestPipeline(&fakeCompleter{completion: okCompletion("SELEKT bad syntax")}, engine)

	outcome, err := p.Ask(context.Background(), "anything")
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, KindExecution, failure.Kind)
	require.Equal(t, "SELEKT bad syntax", failure.SQL)
	require.Equal(t, "SELEKT bad syntax", outcome.SQL)
	require.Contains(t, err.Error(), `near "SELEKT": syntax error`)
}

func TestTranslateDoesNotExecute(t *testing.T) {
	engine := &fakeEngine{}
	p := newTestPipeline(&fakeCompleter{completion: okCompletion("SELECT COUNT(*) FROM movies;")}, engine)

	translation, err := p.Translate(context.Background(), "how many titles?")
	require.NoError(t, err)
	require.Equal(t, "SELECT COUNT(*) FROM movies;", translation.SQL)
	require.Empty(t, engine.requests)

	_, err = p.Translate(context.Background(), " ")
	require.ErrorIs(t, err, ErrQuestionRequired)
}

func TestAskAgainstLoadedSQLiteStore(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, DSN: filepath.Join(t.TempDir(), "movies.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = (&loader.Loader{DB: db, Dialect: dialect}).Load(ctx, loader.LoadRequest{Source: "../loader/testdata/movies.csv"})
	require.NoError(t, err)

	engine := sqlengine.NewEngine(db, sqlengine.Options{})
	p := newTestPipeline(&fakeCompleter{completion: okCompletion("SELECT * FROM movies LIMIT 1;")}, engine)
	outcome, err := p.Ask(ctx, "show me one title")
	require.NoError(t, err)
	require.Len(t, outcome.Result.Rows, 1)
	require.Len(t, outcome.Result.Columns, 21)
	require.Equal(t, "Dangal", outcome.Result.Rows[0][0])

	p.Completer = &fakeCompleter{completion: okCompletion("SELEKT bad syntax")}
	_, err = p.Ask(ctx, "break it")
	var failure *Failure
	require.ErrorAs(t, err, &failure)
	require.Equal(t, KindExecution, failure.Kind)
	require.True(t, strings.Contains(err.Error(), "SELEKT"), err.Error())

	p.Completer = &fakeCompleter{completion: okCompletion("SELECT 1; DROP TABLE movies;")}
	_, err = p.Ask(ctx, "sneak a drop in")
	require.ErrorAs(t, err, &failure)
	require.ErrorIs(t, err, query.ErrMultipleStatements)

	p.Completer = &fakeCompleter{completion: okCompletion("SELECT 9e999 AS x;")}
	outcome, err = p.Ask(ctx, "overflow")
	require.NoError(t, err)
	require.Equal(t, "+Inf", outcome.Result.Rows[0][0])

	p.Completer = &fakeCompleter{completion: okCompletion("SELECT Title FROM movies WHERE Title = 'Scam 1992';")}
	outcome, err = p.Ask(ctx, "still alive?")
	require.NoError(t, err)
	require.Len(t, outcome.Result.Rows, 1)
}

func TestOutcomeFor(t *testing.T) {
	require.Equal(t, "ok", outcomeFor(nil))
	require.Equal(t, "question_required", outcomeFor(ErrQuestionRequired))
	require.Equal(t, "empty_query", outcomeFor(&Failure{Kind: KindEmptyQuery}))
	require.Equal(t, "execution_failed", outcomeFor(&Failure{Kind: KindExecution}))
	require.Equal(t, "error", outcomeFor(errors.New("boom")))
}

func newTestPipeline(completer nl2sql.Completer, engine query.Engine) *Pipeline {
	return New(schema.Movies(), completer, engine, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func okCompletion(text string) nl2sql.Completion {
	return nl2sql.Completion{Text: text, Status: nl2sql.CompletionOK, Provider: "fake", Model: "test-model"}
}

type fakeCompleter struct {
	completion nl2sql.Completion
	err        error
	prompts    []string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) (nl2sql.Completion, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return nl2sql.Completion{}, f.err
	}
	return f.completion, nil
}

type fakeEngine struct {
	result   query.Result
	err      error
	requests []query.Request
}

func (f *fakeEngine) Execute(_ context.Context, request query.Request) (query.Result, error) {
	f.requests = append(f.requests, request)
	if f.err != nil {
		return query.Result{}, f.err
	}
	return f.result, nil
}
