package cinequeryctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

const (
	outputTable = "table"
	outputJSON  = "json"
)

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("cinequeryctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "cinequery API base URL")
	apiKey := fs.String("api-key", defaults.APIKey, "API key for authenticated requests")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 90*time.Second), "HTTP timeout (e.g. 30s)")
	output := fs.String("output", outputTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}
	if *output != outputTable && *output != outputJSON {
		_, _ = fmt.Fprintf(stderr, "unknown output format %q\n", *output)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	command := strings.TrimSpace(fs.Arg(0))
	question := strings.Join(fs.Args()[1:], " ")
	method, path := "", ""
	var body any
	switch command {
	case "health":
		method, path = http.MethodGet, "/v1/health"
	case "ready":
		method, path = http.MethodGet, "/v1/ready"
	case "schema":
		method, path = http.MethodGet, "/v1/schema"
	case "ask":
		method, path = http.MethodPost, "/v1/ask"
		body = map[string]string{"question": question}
	case "translate":
		method, path = http.MethodPost, "/v1/query/translate"
		body = map[string]string{"question": question}
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}
	if body != nil && strings.TrimSpace(question) == "" {
		_, _ = fmt.Fprintf(stderr, "%s needs a question, e.g. cinequeryctl %s \"top rated thrillers\"\n", command, command)
		return 2
	}

	endpoint := strings.TrimRight(*baseURL, "/") + path
	code, responseBody, err := doRequest(ctx, client, method, endpoint, *apiKey, body)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	if code >= 400 {
		writeFailure(stderr, code, responseBody)
		return 1
	}

	if *output == outputTable {
		switch command {
		case "ask":
			if rendered, ok := renderAnswer(responseBody); ok {
				_, _ = fmt.Fprintln(stdout, rendered)
				return 0
			}
		case "schema":
			if rendered, ok := renderSchema(responseBody); ok {
				_, _ = fmt.Fprintln(stdout, rendered)
				return 0
			}
		case "translate":
			var translated struct {
				SQL string `json:"sql"`
			}
			if err := json.Unmarshal(responseBody, &translated); err == nil && translated.SQL != "" {
				_, _ = fmt.Fprintln(stdout, translated.SQL)
				return 0
			}
		}
	}

	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

func doRequest(ctx context.Context, client *http.Client, method, url, apiKey string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("X-API-Key", strings.TrimSpace(apiKey))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// writeFailure prints the envelope message, plus the generated SQL when the
// server reports one.
func writeFailure(w io.Writer, code int, raw []byte) {
	var envelope struct {
		ErrorCode string         `json:"error_code"`
		Message   string         `json:"message"`
		Context   map[string]any `json:"context"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.ErrorCode == "" {
		_, _ = fmt.Fprintf(w, "http %d: %s\n", code, strings.TrimSpace(string(raw)))
		return
	}
	_, _ = fmt.Fprintf(w, "http %d %s: %s\n", code, envelope.ErrorCode, envelope.Message)
	if sql, ok := envelope.Context["sql"].(string); ok && sql != "" {
		_, _ = fmt.Fprintf(w, "sql: %s\n", sql)
	}
	if details, ok := envelope.Context["details"].(string); ok && details != "" {
		_, _ = fmt.Fprintf(w, "details: %s\n", details)
	}
}

func renderAnswer(raw []byte) (string, bool) {
	var answer struct {
		SQL     string   `json:"sql"`
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
		Stats   struct {
			RowCount int `json:"row_count"`
		} `json:"stats"`
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&answer); err != nil || answer.SQL == "" {
		return "", false
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(answer.Columns))
	for i, column := range answer.Columns {
		header[i] = column
	}
	tw.AppendHeader(header)
	for _, row := range answer.Rows {
		cells := make(table.Row, len(row))
		for i, value := range row {
			cells[i] = formatCell(value)
		}
		tw.AppendRow(cells)
	}

	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "sql: %s\n", answer.SQL)
	if len(answer.Columns) > 0 {
		b.WriteString(tw.Render())
		b.WriteString("\n")
	}
	_, _ = fmt.Fprintf(&b, "(%d rows)", answer.Stats.RowCount)
	return b.String(), true
}

func renderSchema(raw []byte) (string, bool) {
	var described struct {
		Name    string `json:"name"`
		Columns []struct {
			Name        string `json:"name"`
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"columns"`
	}
	if err := json.Unmarshal(raw, &described); err != nil || len(described.Columns) == 0 {
		return "", false
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(described.Name)
	tw.AppendHeader(table.Row{"#", "Column", "Type", "Description"})
	for i, column := range described.Columns {
		tw.AppendRow(table.Row{i + 1, column.Name, column.Type, column.Description})
	}
	return tw.Render(), true
}

func formatCell(value any) string {
	switch typed := value.(type) {
	case nil:
		return "NULL"
	case json.Number:
		return typed.String()
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	default:
		return fmt.Sprint(typed)
	}
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: cinequeryctl [flags] <command> [question]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health                GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready                 GET /v1/ready")
	_, _ = fmt.Fprintln(w, "  schema                GET /v1/schema")
	_, _ = fmt.Fprintln(w, "  ask <question>        POST /v1/ask")
	_, _ = fmt.Fprintln(w, "  translate <question>  POST /v1/query/translate")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
