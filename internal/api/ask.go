package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cinequery/cinequery/internal/auth"
	"github.com/cinequery/cinequery/internal/pipeline"
	"github.com/cinequery/cinequery/internal/query"
)

const maxQuestionBodyBytes = 64 << 10

type questionRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question string         `json:"question"`
	SQL      string         `json:"sql"`
	Columns  []string       `json:"columns"`
	Rows     [][]any        `json:"rows"`
	Model    string         `json:"model,omitempty"`
	Stats    map[string]any `json:"stats"`
}

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if err := auth.RequireRole(r.Context(), auth.RoleQueryReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return
	}
	if deps.Table.Name == "" {
		writeError(r.Context(), w, http.StatusNotImplemented, "SCHEMA_NOT_CONFIGURED", "table description is not configured", false, nil)
		return
	}
	writeJSON(w, http.StatusOK, deps.Table)
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	question, ok := decodeQuestion(deps, w, r)
	if !ok {
		return
	}

	outcome, err := deps.Pipeline.Ask(r.Context(), question)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}

	rows := outcome.Result.Rows
	if rows == nil {
		rows = [][]any{}
	}
	columns := outcome.Result.Columns
	if columns == nil {
		columns = []string{}
	}
	body, err := json.Marshal(askResponse{
		Question: outcome.Question,
		SQL:      outcome.SQL,
		Columns:  columns,
		Rows:     rows,
		Model:    outcome.Model,
		Stats: map[string]any{
			"row_count":     len(rows),
			"completion_ms": outcome.Duration.Milliseconds(),
			"duration_ms":   outcome.Result.Duration.Milliseconds(),
		},
	})
	if err != nil {
		writeError(r.Context(), w, http.StatusUnprocessableEntity, "RESULT_ENCODING_FAILED", "query result cannot be encoded as JSON", false, map[string]any{
			"sql":     outcome.SQL,
			"details": err.Error(),
		})
		return
	}
	writeRawJSON(w, http.StatusOK, append(body, '\n'))
}

func handleTranslate(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	question, ok := decodeQuestion(deps, w, r)
	if !ok {
		return
	}

	translation, err := deps.Pipeline.Translate(r.Context(), question)
	if err != nil {
		writePipelineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"question": translation.Question,
		"sql":      translation.SQL,
		"provider": translation.Provider,
		"model":    translation.Model,
	})
}

func decodeQuestion(deps Dependencies, w http.ResponseWriter, r *http.Request) (string, bool) {
	if deps.Pipeline == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "PIPELINE_NOT_CONFIGURED", "question pipeline is not configured", false, nil)
		return "", false
	}
	if err := auth.RequireRole(r.Context(), auth.RoleQueryReader); err != nil {
		writeError(r.Context(), w, http.StatusForbidden, "FORBIDDEN", err.Error(), false, nil)
		return "", false
	}

	var req questionRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuestionBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid question request body", false, map[string]any{"details": err.Error()})
		return "", false
	}
	return req.Question, true
}

func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, pipeline.ErrQuestionRequired) {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	var failure *pipeline.Failure
	if !errors.As(err, &failure) {
		writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL", "question could not be answered", true, map[string]any{"details": err.Error()})
		return
	}
	switch failure.Kind {
	case pipeline.KindGeneration:
		writeError(r.Context(), w, http.StatusBadGateway, "GENERATION_FAILED", "error generating SQL query", true, map[string]any{"details": failureDetails(failure)})
	case pipeline.KindEmptyQuery:
		writeError(r.Context(), w, http.StatusBadGateway, "EMPTY_QUERY", pipeline.EmptyQueryMessage, true, nil)
	case pipeline.KindExecution:
		code := "QUERY_EXECUTION_FAILED"
		if errors.Is(err, query.ErrStatementNotAllowed) || errors.Is(err, query.ErrMultipleStatements) {
			code = "SQL_NOT_ALLOWED"
		}
		writeError(r.Context(), w, http.StatusUnprocessableEntity, code, "error executing SQL query", false, map[string]any{
			"sql":     failure.SQL,
			"details": failureDetails(failure),
		})
	default:
		writeError(r.Context(), w, http.StatusInternalServerError, "INTERNAL", failure.Error(), true, nil)
	}
}

func failureDetails(failure *pipeline.Failure) string {
	if failure.Err == nil {
		return failure.Message
	}
	return failure.Err.Error()
}
