// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/restserver"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
)

var serveCommand = cli.Command{
	Name:  "serve",
	Usage: "run the HTTP REST interface",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "http",
			Usage: "[ip]:port for HTTP REST interface",
		},
		cli.BoolFlag{
			Name:  "log-requests",
			Usage: "log all requests",
		},
	},
	Action: func(c *cli.Context) error {
		if c.IsSet("http") {
			app.Config.HTTP = c.String("http")
		}
		if c.Bool("log-requests") {
			app.Config.LogRequests = true
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, app.Config, app.Coordinate, app.Clock, app.Logger)
	},
}

// newHandler builds the HTTP handler: the REST API plus /metrics
// served from registry.
func newHandler(config Config, coord coordinate.Coordinate, clk clock.Clock, logger *logrus.Logger, registry *prometheus.Registry) http.Handler {
	metrics := finder.NewMetrics("diffeo")
	registry.MustRegister(metrics.Collectors()...)

	reqLogger := logger
	if config.LogRequests {
		reqLogger = &logrus.Logger{
			Out:       logger.Out,
			Formatter: logger.Formatter,
			Hooks:     logger.Hooks,
			Level:     logrus.DebugLevel,
		}
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	restserver.PopulateRouter(r, coord, restserver.Settings{
		Finders:     config.FinderSettings(reqLogger, clk, metrics),
		Logger:      reqLogger,
		LogRequests: config.LogRequests,
	})
	return r
}

// serve runs the HTTP server and the summary publisher until ctx is
// done or either fails.
func serve(ctx context.Context, config Config, coord coordinate.Coordinate, clk clock.Clock, logger *logrus.Logger) error {
	registry := prometheus.NewRegistry()
	summary := newSummaryGauge()
	registry.MustRegister(summary.gauge)
	server := &http.Server{
		Addr:    config.HTTP,
		Handler: newHandler(config, coord, clk, logger, registry),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("http", config.HTTP).Info("serving")
		err := server.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		return server.Shutdown(context.Background())
	})
	g.Go(func() error {
		return summary.Run(ctx, coord, clk, config.SummaryInterval, logger)
	})
	return g.Wait()
}
