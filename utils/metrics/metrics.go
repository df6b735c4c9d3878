// Package metrics provides Prometheus metrics for rebang.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rebang"

var (
	// FeedFetchTotal counts collaborator feed fetches by route namespace and outcome.
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetch_total",
			Help:      "Total number of collaborator feed fetches",
		},
		[]string{"namespace", "status"},
	)

	// FeedFetchDuration measures collaborator feed fetch latency.
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_fetch_duration_seconds",
			Help:      "Duration of collaborator feed fetches in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30, 60},
		},
		[]string{"namespace"},
	)

	// AggregateSourceTotal counts per-source outcomes inside aggregations.
	AggregateSourceTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_source_total",
			Help:      "Aggregated source outcomes",
		},
		[]string{"source", "status"},
	)

	// MediaProxyTotal counts media proxy requests by outcome.
	MediaProxyTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_proxy_total",
			Help:      "Total number of media proxy requests",
		},
		[]string{"status"},
	)

	// MediaProxyRejections counts validation rejections by reason.
	MediaProxyRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_proxy_rejections_total",
			Help:      "Media proxy targets rejected by validation",
		},
		[]string{"reason"},
	)

	// JournalSourcesAccessible reports how many journal sources passed the last probe.
	JournalSourcesAccessible = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "journal_sources_accessible",
			Help:      "Journal sources that passed the most recent probe round",
		},
	)
)

// RecordFeedFetch records one collaborator fetch.
func RecordFeedFetch(ns, status string, seconds float64) {
	FeedFetchTotal.WithLabelValues(ns, status).Inc()
	FeedFetchDuration.WithLabelValues(ns).Observe(seconds)
}

func RecordAggregateSource(source string, ok bool) {
	AggregateSourceTotal.WithLabelValues(source, statusLabel(ok)).Inc()
}

func RecordMediaProxy(status string) {
	MediaProxyTotal.WithLabelValues(status).Inc()
}

func RecordMediaRejection(reason string) {
	MediaProxyRejections.WithLabelValues(reason).Inc()
	MediaProxyTotal.WithLabelValues("rejected").Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
