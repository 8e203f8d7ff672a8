// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finder

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-finder request statistics.  A nil *Metrics
// records nothing.  The collectors are not registered anywhere; pass
// Collectors() to a prometheus.Registerer.
type Metrics struct {
	requests  *prometheus.HistogramVec
	processed *prometheus.CounterVec
	heavy     *prometheus.CounterVec
}

// NewMetrics creates a set of collectors with the given metric
// namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "finder",
			Name:      "request_duration_seconds",
			Help:      "Time spent evaluating locators",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"finder", "outcome"}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "finder",
			Name:      "processed_items_total",
			Help:      "Number of items examined while evaluating locators",
		}, []string{"finder"}),
		heavy: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "finder",
			Name:      "heavy_requests_total",
			Help:      "Number of requests over the heavy request thresholds",
		}, []string{"finder"}),
	}
}

// Collectors returns every collector of m.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.requests, m.processed, m.heavy}
}

func (m *Metrics) observe(finder string, elapsed time.Duration, processed int, heavy bool, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.requests.WithLabelValues(finder, outcome).Observe(elapsed.Seconds())
	m.processed.WithLabelValues(finder).Add(float64(processed))
	if heavy {
		m.heavy.WithLabelValues(finder).Inc()
	}
}
