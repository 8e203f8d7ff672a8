// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package finders binds the generic locator finder to the Coordinate
// model.  Each namespace gets three finders: one over its work specs,
// one over its work units, and one over its workers.  Work unit and
// worker locators may embed work spec and worker locators as
// sub-locators, as in
//
//     workSpec:(prefix:ingest,paused:false),status:failed,worker:(mode:run)
package finders

import (
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/locator"
)

// Defaults holds the paging defaults of one finder.  Zero or less
// means no limit.
type Defaults struct {
	Count       int `mapstructure:"default_count"`
	LookupLimit int `mapstructure:"default_lookup_limit"`
}

// Settings configures the finders of a namespace.
type Settings struct {
	// Finder is shared by all three finders.
	Finder finder.Settings

	WorkSpecs Defaults `mapstructure:"work_specs"`
	WorkUnits Defaults `mapstructure:"work_units"`
	Workers   Defaults `mapstructure:"workers"`
}

func (s Settings) clock() clock.Clock {
	if s.Finder.Clock == nil {
		return clock.New()
	}
	return s.Finder.Clock
}

// Finders holds the finders of one namespace.
type Finders struct {
	Namespace coordinate.Namespace
	WorkSpecs *finder.Finder[coordinate.WorkSpec]
	WorkUnits *finder.Finder[coordinate.WorkUnit]
	Workers   *finder.Finder[coordinate.Worker]
}

// New creates all of the finders for ns.
func New(ns coordinate.Namespace, settings Settings) *Finders {
	specs := WorkSpecs(ns, settings)
	workers := Workers(ns, settings)
	return &Finders{
		Namespace: ns,
		WorkSpecs: specs,
		WorkUnits: workUnits(ns, settings, specs, workers),
		Workers:   workers,
	}
}

// subFilter adapts a filter over one type into a filter over another,
// through a function that finds the related item.  Items without a
// related item never match.
func subFilter[T, U any](filter finder.ItemFilter[U], related func(T) (U, bool)) finder.ItemFilter[T] {
	return finder.FilterFunc[T](func(item T) bool {
		other, ok := related(item)
		return ok && filter.IsIncluded(other)
	})
}

// subLocatorName returns the name a sub-locator selects when it is a
// bare value or a lone name:<value>.
func subLocatorName(text string) (string, bool) {
	loc, err := locator.Create(text, nil)
	if err != nil {
		return "", false
	}
	if name, ok := loc.SingleValue(); ok {
		return name, true
	}
	if names := loc.DimensionNames(); len(names) != 1 || names[0] != "name" {
		return "", false
	}
	name, ok, err := loc.SingleDimensionValue("name")
	return name, ok && err == nil
}

// singleName returns the name a locator selects directly, either as a
// bare value or as its only name dimension value.  It marks what it
// reads used.
func singleName(loc *locator.Locator) (string, bool) {
	if name, ok := loc.SingleValue(); ok {
		return name, true
	}
	if !loc.Has("name") {
		return "", false
	}
	names := loc.DimensionValue("name")
	if len(names) != 1 {
		return "", false
	}
	return names[0], true
}

// parseTime reads an absolute RFC 3339 time, or a duration meaning
// that long before now.
func parseTime(clk clock.Clock, dimension, text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if t, err := time.Parse(time.RFC3339, text); err == nil {
		return t, nil
	}
	if d, err := time.ParseDuration(text); err == nil {
		return clk.Now().Add(-d), nil
	}
	return time.Time{}, locator.ErrLocatorProcess{Message: fmt.Sprintf(
		"Invalid value '%s' of dimension '%s': should be an RFC 3339 time or a duration like 90m",
		text, dimension)}
}

func notFound(kind, name string) error {
	return locator.ErrNotFound{Message: fmt.Sprintf("No %s named '%s'", kind, name)}
}

