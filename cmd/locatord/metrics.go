// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/coordinate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// summaryGauge publishes coordinate.Summary records as a gauge.
type summaryGauge struct {
	gauge *prometheus.GaugeVec
}

func newSummaryGauge() *summaryGauge {
	return &summaryGauge{
		gauge: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "diffeo",
				Subsystem: "coordinate",
				Name:      "coordinate_summary",
				Help:      "Summary of coordinate work specs",
			},
			[]string{
				"namespace",
				"work_spec",
				"status",
			},
		),
	}
}

// Observe replaces the gauge values with one summary.
func (s *summaryGauge) Observe(summary coordinate.Summary) {
	s.gauge.Reset()
	for _, record := range summary {
		s.gauge.With(prometheus.Labels{
			"namespace": record.Namespace,
			"work_spec": record.WorkSpec,
			"status":    record.Status.String(),
		}).Set(float64(record.Count))
	}
}

// Run observes the summary of coord every interval until ctx is done.
func (s *summaryGauge) Run(ctx context.Context, coord coordinate.Coordinate, clk clock.Clock, interval time.Duration, log logrus.FieldLogger) error {
	ticker := clk.Ticker(interval)
	defer ticker.Stop()
	for {
		summary, err := coord.Summarize()
		if err != nil {
			log.WithError(err).Warn("summarizing coordinate")
		} else {
			s.Observe(summary)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
