// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finders"
	"github.com/diffeo/go-locator/locator"
	"github.com/diffeo/go-locator/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixture = `
namespaces:
  - name: ""
    workers:
      - name: w1
        mode: run
    work_specs:
      - data: {name: spec}
        work_units:
          - name: a
            age: 3m
          - name: b
            status: pending
            worker: w1
            age: 2m
          - name: c
            age: 1m
`

func newCoordinate(t *testing.T, clk clock.Clock) coordinate.Coordinate {
	c := memory.NewWithClock(clk)
	require.NoError(t, memory.LoadFixture(c, strings.NewReader(fixture)))
	return c
}

func newFinders(t *testing.T) *finders.Finders {
	clk := clock.NewMock()
	ns, err := newCoordinate(t, clk).Namespace("")
	require.NoError(t, err)
	logger, _ := logtest.NewNullLogger()
	config := DefaultConfig()
	config.WorkUnits.Count = 2
	return finders.New(ns, config.FinderSettings(logger, clk, nil))
}

func TestQuery(t *testing.T) {
	f := newFinders(t)
	var out bytes.Buffer
	err := query{Kind: "work_unit", Text: "workSpec:spec"}.Run(context.Background(), &out, f)
	if assert.NoError(t, err) {
		assert.Equal(t,
			"workSpec:(name:spec),name:c\n"+
				"workSpec:(name:spec),name:b\n"+
				"next: workSpec:spec,start:2,count:2\n",
			out.String())
	}

	out.Reset()
	err = query{Kind: "worker", Text: "mode:run", Item: true}.Run(context.Background(), &out, f)
	if assert.NoError(t, err) {
		assert.Equal(t, "name:w1\n", out.String())
	}

	out.Reset()
	err = query{Kind: "work_spec"}.Run(context.Background(), &out, f)
	if assert.NoError(t, err) {
		assert.Equal(t, "name:spec\n", out.String())
	}
}

func TestQueryErrors(t *testing.T) {
	f := newFinders(t)
	var out bytes.Buffer
	err := query{Kind: "attempt"}.Run(context.Background(), &out, f)
	assert.Error(t, err)

	err = query{Kind: "work_spec", Text: "bogus:1"}.Run(context.Background(), &out, f)
	assert.IsType(t, locator.ErrBadRequest{}, err)

	err = query{Kind: "work_unit", Text: "name:zzz", Item: true}.Run(context.Background(), &out, f)
	assert.IsType(t, locator.ErrNotFound{}, err)
	assert.Empty(t, out.String())
}

func TestHandlerMetrics(t *testing.T) {
	clk := clock.NewMock()
	logger, _ := logtest.NewNullLogger()
	registry := prometheus.NewRegistry()
	handler := newHandler(DefaultConfig(), newCoordinate(t, clk), clk, logger, registry)

	req := httptest.NewRequest(http.MethodGet, "/namespace/-/work_unit?locator=status:pending", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `diffeo_finder_processed_items_total{finder="work_unit"} 3`)
}

func TestSummaryGauge(t *testing.T) {
	clk := clock.NewMock()
	coord := newCoordinate(t, clk)
	summary := newSummaryGauge()
	logger, _ := logtest.NewNullLogger()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, summary.Run(ctx, coord, clk, time.Minute, logger))

	assert.Equal(t, 2.0, testutil.ToFloat64(summary.gauge.WithLabelValues("", "spec", "available")))
	assert.Equal(t, 1.0, testutil.ToFloat64(summary.gauge.WithLabelValues("", "spec", "pending")))

	summary.Observe(coordinate.Summary{})
	assert.Equal(t, 0, testutil.CollectAndCount(summary.gauge))
}
