package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// History reader
	HistoryFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tipjar",
		Subsystem: "history",
		Name:      "fetches_total",
		Help:      "Total history fetches by outcome kind",
	}, []string{"result"})

	HistoryFetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tipjar",
		Subsystem: "history",
		Name:      "fetch_duration_seconds",
		Help:      "History fetch duration including log query and block lookups",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	HistoryLogsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tipjar",
		Subsystem: "history",
		Name:      "logs_skipped_total",
		Help:      "Logs dropped while rebuilding history",
	}, []string{"reason"})

	HistoryTimestampFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tipjar",
		Subsystem: "history",
		Name:      "timestamp_fallbacks_total",
		Help:      "Records that used wall-clock time because the block lookup failed",
	})

	HistoryRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tipjar",
		Subsystem: "history",
		Name:      "records",
		Help:      "Records returned by the last successful fetch",
	})

	// Tip submitter
	TipTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tipjar",
		Subsystem: "submit",
		Name:      "transitions_total",
		Help:      "Tip attempt state transitions",
	}, []string{"status"})

	TipErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tipjar",
		Subsystem: "submit",
		Name:      "errors_total",
		Help:      "Tip attempts that ended in error, by error kind",
	}, []string{"kind"})

	// HTTP API
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tipjar",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "HTTP requests by route and status code",
	}, []string{"route", "code"})
)
