// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Command locatord serves locator queries over a Coordinate job
// queue through a read-only HTTP REST interface.
//
//     locatord --config locatord.yaml serve
//     locatord --backend memory:fixture.yaml query --kind worker --locator mode:run
package main

import (
	"os"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/backend"
	"github.com/diffeo/go-locator/coordinate"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// app holds the state every command shares, set up before any of
// them runs.
var app struct {
	Config     Config
	Coordinate coordinate.Coordinate
	Clock      clock.Clock
	Logger     *logrus.Logger
}

func main() {
	var backendFlag backend.Backend
	cliApp := cli.NewApp()
	cliApp.Name = "locatord"
	cliApp.Usage = "query the Coordinate job queue system by locator"
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "global configuration YAML or TOML file",
		},
		cli.GenericFlag{
			Name:  "backend",
			Value: &backendFlag,
			Usage: "impl[:address] of the storage backend",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "logging level (debug, info, warning, error)",
		},
	}
	cliApp.Commands = []cli.Command{
		serveCommand,
		queryCommand,
	}
	cliApp.Before = func(c *cli.Context) error {
		return setup(c, &backendFlag)
	}
	if err := cliApp.Run(os.Args); err != nil {
		logrus.WithField("err", err).Fatal("locatord failed")
	}
}

// setup loads the configuration and creates the backend.
func setup(c *cli.Context, backendFlag *backend.Backend) error {
	var err error
	app.Config = DefaultConfig()
	if filename := c.GlobalString("config"); filename != "" {
		app.Config, err = LoadConfig(filename)
		if err != nil {
			return err
		}
	}
	if c.GlobalIsSet("log-level") {
		app.Config.LogLevel = c.GlobalString("log-level")
	}
	app.Logger, err = app.Config.Logger()
	if err != nil {
		return err
	}

	b := *backendFlag
	if !c.GlobalIsSet("backend") {
		if err = b.Set(app.Config.Backend); err != nil {
			return err
		}
	}
	app.Clock = clock.New()
	app.Coordinate, err = b.Coordinate(app.Clock)
	if err != nil {
		return err
	}
	app.Logger.WithField("backend", b.String()).Debug("created backend")
	return nil
}
