package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ask outcomes recorded on cinequery_ask_total.
const (
	OutcomeOK               = "ok"
	OutcomeQuestionRequired = "question_required"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeEmptyQuery       = "empty_query"
	OutcomeExecutionFailed  = "execution_failed"
)

var (
	askTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinequery_ask_total",
			Help: "Total number of natural-language questions by outcome.",
		},
		[]string{"outcome"},
	)
	translateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinequery_translate_total",
			Help: "Total number of SQL previews by outcome.",
		},
		[]string{"outcome"},
	)
	completionLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinequery_completion_latency_ms",
			Help:    "Completion service round-trip latency in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 20000, 60000},
		},
	)
	queryLatencyMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinequery_query_latency_ms",
			Help:    "Generated query execution latency in milliseconds.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
	)
	queryRowsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinequery_query_rows_returned",
			Help:    "Rows returned per executed query.",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 10000},
		},
	)
	loadRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cinequery_load_rows_total",
			Help: "Total number of rows written by the dataset loader.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		askTotal,
		translateTotal,
		completionLatencyMs,
		queryLatencyMs,
		queryRowsReturned,
		loadRowsTotal,
	)
}

func ObserveAsk(outcome string) {
	askTotal.WithLabelValues(outcome).Inc()
}

func ObserveTranslate(outcome string) {
	translateTotal.WithLabelValues(outcome).Inc()
}

func ObserveCompletion(elapsed time.Duration) {
	completionLatencyMs.Observe(float64(elapsed.Milliseconds()))
}

func ObserveQuery(rows int, elapsed time.Duration) {
	queryLatencyMs.Observe(float64(elapsed.Milliseconds()))
	if rows >= 0 {
		queryRowsReturned.Observe(float64(rows))
	}
}

func ObserveLoad(rows int64) {
	if rows > 0 {
		loadRowsTotal.Add(float64(rows))
	}
}
