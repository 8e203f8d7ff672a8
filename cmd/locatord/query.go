// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/finders"
	"github.com/urfave/cli"
)

var queryCommand = cli.Command{
	Name:  "query",
	Usage: "run one locator and print the canonical locators it finds",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "locator",
			Usage: "locator to evaluate; empty selects the first page",
		},
		cli.StringFlag{
			Name:  "namespace",
			Usage: "Coordinate namespace name",
		},
		cli.StringFlag{
			Name:  "kind",
			Value: "work_unit",
			Usage: "work_spec, work_unit, or worker",
		},
		cli.BoolFlag{
			Name:  "item",
			Usage: "expect exactly one item",
		},
	},
	Action: func(c *cli.Context) error {
		ns, err := app.Coordinate.Namespace(c.String("namespace"))
		if err != nil {
			return err
		}
		f := finders.New(ns, app.Config.FinderSettings(app.Logger, app.Clock, nil))
		q := query{
			Kind: c.String("kind"),
			Text: c.String("locator"),
			Item: c.Bool("item"),
		}
		err = q.Run(context.Background(), c.App.Writer, f)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		return nil
	},
}

// query is one command-line locator query.
type query struct {
	Kind string
	Text string
	Item bool
}

// Run evaluates q and writes one canonical locator per line, then a
// "next:" line with the next page locator if there is one.
func (q query) Run(ctx context.Context, w io.Writer, f *finders.Finders) error {
	switch q.Kind {
	case "work_spec":
		return runQuery(ctx, w, f.WorkSpecs, q)
	case "work_unit":
		return runQuery(ctx, w, f.WorkUnits, q)
	case "worker":
		return runQuery(ctx, w, f.Workers, q)
	default:
		return fmt.Errorf("unknown kind %q", q.Kind)
	}
}

func runQuery[T any](ctx context.Context, w io.Writer, f *finder.Finder[T], q query) error {
	if q.Item {
		item, err := f.Item(ctx, q.Text)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, f.CanonicalLocator(item))
		return err
	}
	result, err := f.Items(ctx, q.Text)
	if err != nil {
		return err
	}
	for _, item := range result.Entries {
		if _, err = fmt.Fprintln(w, f.CanonicalLocator(item)); err != nil {
			return err
		}
	}
	if next, ok := result.NextPageLocator(q.Text); ok {
		_, err = fmt.Fprintln(w, "next:", next)
	}
	return err
}

