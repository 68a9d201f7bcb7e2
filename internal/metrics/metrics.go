// Package metrics собирает prometheus метрики цикла сбора новостей.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "newsdigest"

var (
	CyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Scrape cycles by outcome",
		},
		[]string{"status"},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a full scrape cycle",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	ArticlesSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_saved_total",
			Help:      "Save attempts by result (inserted, duplicate, exists, error)",
		},
		[]string{"result"},
	)

	AcquisitionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisition_attempts_total",
			Help:      "Content acquisition attempts per strategy",
		},
		[]string{"strategy", "result"},
	)

	Summaries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Summarization calls by result",
		},
		[]string{"result"},
	)

	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_total",
			Help:      "Source fetches by source and result",
		},
		[]string{"source", "result"},
	)
)

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

func RecordCycle(ok bool, seconds float64) {
	CyclesTotal.WithLabelValues(result(ok)).Inc()
	CycleDuration.Observe(seconds)
}

func RecordSave(res string) {
	ArticlesSaved.WithLabelValues(res).Inc()
}

func RecordAcquisition(strategy string, ok bool) {
	AcquisitionAttempts.WithLabelValues(strategy, result(ok)).Inc()
}

func RecordSummary(ok bool) {
	Summaries.WithLabelValues(result(ok)).Inc()
}

func RecordSourceFetch(source string, ok bool) {
	SourceFetches.WithLabelValues(source, result(ok)).Inc()
}
