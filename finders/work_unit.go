// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finders

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/locator"
)

// WorkUnitLocator returns the canonical locator of a work unit.
func WorkUnitLocator(unit coordinate.WorkUnit) string {
	return locator.Of("workSpec", WorkSpecLocator(unit.WorkSpec()), "name", unit.Name())
}

func workUnitName(unit coordinate.WorkUnit) string {
	return unit.Name()
}

// newestFirst produces the work units of some work specs, newest
// first across all of them.  Work units created at the same time are
// ordered by work spec and then by name.
func newestFirst(specs finder.ItemHolder[coordinate.WorkSpec]) (finder.ItemHolder[coordinate.WorkUnit], error) {
	var units []coordinate.WorkUnit
	for _, spec := range finder.Collect(specs) {
		more, err := spec.WorkUnits(coordinate.WorkUnitQuery{})
		if err == coordinate.ErrGone {
			continue
		}
		if err != nil {
			return nil, err
		}
		units = append(units, more...)
	}
	sort.SliceStable(units, func(i, j int) bool {
		ci, cj := units[i].Created(), units[j].Created()
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		si, sj := units[i].WorkSpec().Name(), units[j].WorkSpec().Name()
		if si != sj {
			return si < sj
		}
		return units[i].Name() < units[j].Name()
	})
	return finder.Of(units...), nil
}

func statusFilter(_ context.Context, value string) (finder.ItemFilter[coordinate.WorkUnit], error) {
	status, err := coordinate.ParseWorkUnitStatus(value)
	if err != nil {
		return nil, locator.ErrLocatorProcess{Message: fmt.Sprintf(
			"Invalid value '%s' of dimension 'status': should be one of %s",
			value, strings.Join(coordinate.StatusNames(), ", "))}
	}
	if status == coordinate.AnyStatus {
		return finder.AcceptAll[coordinate.WorkUnit](), nil
	}
	return finder.FilterFunc[coordinate.WorkUnit](func(unit coordinate.WorkUnit) bool {
		actual, err := unit.Status()
		return err == nil && actual == status
	}), nil
}

func minPriorityFilter(_ context.Context, value string) (finder.ItemFilter[coordinate.WorkUnit], error) {
	least, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, locator.ErrLocatorProcess{Message: fmt.Sprintf(
			"Invalid value '%s' of dimension 'minPriority': should be a number", value)}
	}
	return finder.FilterFunc[coordinate.WorkUnit](func(unit coordinate.WorkUnit) bool {
		priority, err := unit.Priority()
		return err == nil && priority >= least
	}), nil
}

// dataFilter matches "key=value" against the work unit data, where
// key may be dotted to reach into nested maps.  A bare "key" matches
// work units that have the key at all.
func dataFilter(_ context.Context, value string) (finder.ItemFilter[coordinate.WorkUnit], error) {
	key, expected, compare := strings.Cut(value, "=")
	if key == "" {
		return nil, locator.ErrLocatorProcess{Message: fmt.Sprintf(
			"Invalid value '%s' of dimension 'dataKey': should be key or key=value", value)}
	}
	return finder.FilterFunc[coordinate.WorkUnit](func(unit coordinate.WorkUnit) bool {
		data, err := unit.Data()
		if err != nil {
			return false
		}
		actual, present := coordinate.DataValue(data, key)
		if !present {
			return false
		}
		return !compare || fmt.Sprint(actual) == expected
	}), nil
}

// WorkUnits creates the work unit finder of a namespace, with its own
// work spec and worker finders for sub-locators.
func WorkUnits(ns coordinate.Namespace, settings Settings) *finder.Finder[coordinate.WorkUnit] {
	return workUnits(ns, settings, WorkSpecs(ns, settings), Workers(ns, settings))
}

func workUnits(
	ns coordinate.Namespace,
	settings Settings,
	specs *finder.Finder[coordinate.WorkSpec],
	workers *finder.Finder[coordinate.Worker],
) *finder.Finder[coordinate.WorkUnit] {
	clk := settings.clock()
	all := func(ctx context.Context) (finder.ItemHolder[coordinate.WorkUnit], error) {
		holder, err := allWorkSpecs(ns)(ctx)
		if err != nil {
			return nil, err
		}
		return newestFirst(holder)
	}

	binding := finder.NewTypedBinding(all, WorkUnitLocator).
		Dimension(locator.Dimension{
			Name:        "workSpec",
			Syntax:      "<work spec locator>",
			Description: "Work units of matching work specs",
		}, func(ctx context.Context, value string) (finder.ItemFilter[coordinate.WorkUnit], error) {
			filter, err := specs.Filter(ctx, value)
			if err != nil {
				return nil, err
			}
			return subFilter(filter, func(unit coordinate.WorkUnit) (coordinate.WorkSpec, bool) {
				return unit.WorkSpec(), true
			}), nil
		}).
		StringDimension(locator.Dimension{
			Name:        "name",
			Description: "Work unit name; with a single workSpec, finds the work unit directly",
		}, workUnitName).
		PrefixDimension(locator.Dimension{
			Name:        "prefix",
			Description: "Work unit name prefix",
		}, workUnitName).
		Dimension(locator.Dimension{
			Name:        "status",
			Syntax:      "available|pending|finished|failed|any",
			Description: "Work unit status; repeat for alternatives",
		}, statusFilter).
		Dimension(locator.Dimension{
			Name:        "worker",
			Syntax:      "<worker locator>",
			Description: "Work units last assigned to a matching worker",
		}, func(ctx context.Context, value string) (finder.ItemFilter[coordinate.WorkUnit], error) {
			filter, err := workers.Filter(ctx, value)
			if err != nil {
				return nil, err
			}
			return subFilter(filter, func(unit coordinate.WorkUnit) (coordinate.Worker, bool) {
				w, err := unit.Worker()
				return w, err == nil && w != nil
			}), nil
		}).
		Dimension(locator.Dimension{
			Name:        "minPriority",
			Syntax:      "<number>",
			Description: "Least work unit priority",
		}, minPriorityFilter).
		Dimension(locator.Dimension{
			Name:        "createdAfter",
			Syntax:      "<RFC 3339 time>|<duration>",
			Description: "Work units created after this time, or within this long before now",
		}, func(_ context.Context, value string) (finder.ItemFilter[coordinate.WorkUnit], error) {
			after, err := parseTime(clk, "createdAfter", value)
			if err != nil {
				return nil, err
			}
			// the scan runs newest first, so the first older unit ends it
			return finder.StoppingFilter[coordinate.WorkUnit]{
				Include: func(unit coordinate.WorkUnit) bool { return unit.Created().After(after) },
				Stop:    func(unit coordinate.WorkUnit) bool { return !unit.Created().After(after) },
			}, nil
		}).
		Dimension(locator.Dimension{
			Name:        "createdBefore",
			Syntax:      "<RFC 3339 time>|<duration>",
			Description: "Work units created before this time, or more than this long before now",
		}, func(_ context.Context, value string) (finder.ItemFilter[coordinate.WorkUnit], error) {
			before, err := parseTime(clk, "createdBefore", value)
			if err != nil {
				return nil, err
			}
			return finder.FilterFunc[coordinate.WorkUnit](func(unit coordinate.WorkUnit) bool {
				return unit.Created().Before(before)
			}), nil
		}).
		Dimension(locator.Dimension{
			Name:        "dataKey",
			Syntax:      "<key>[=<value>]",
			Description: "Work units whose data has this key, or this value under it",
			Hidden:      true,
		}, dataFilter).
		Alternatives("status").
		Prefilter("workSpec", func(ctx context.Context, value string) (finder.ItemHolder[coordinate.WorkUnit], error) {
			filter, err := specs.Filter(ctx, value)
			if err != nil {
				return nil, err
			}
			holder, err := allWorkSpecs(ns)(ctx)
			if err != nil {
				return nil, err
			}
			return newestFirst(holder.Filter(filter.IsIncluded))
		}).
		SingleItem(func(_ context.Context, loc *locator.Locator) (coordinate.WorkUnit, bool, error) {
			if !loc.Has("workSpec") || !loc.Has("name") {
				return nil, false, nil
			}
			specLocs, names := loc.DimensionValue("workSpec"), loc.DimensionValue("name")
			if len(specLocs) != 1 || len(names) != 1 {
				return nil, false, nil
			}
			specName, ok := subLocatorName(specLocs[0])
			if !ok {
				return nil, false, nil
			}
			spec, err := ns.WorkSpec(specName)
			if _, missing := err.(coordinate.ErrNoSuchWorkSpec); missing {
				return nil, false, notFound("work spec", specName)
			}
			if err != nil {
				return nil, false, err
			}
			unit, err := spec.WorkUnit(names[0])
			if err != nil {
				return nil, false, err
			}
			if unit == nil {
				return nil, false, notFound("work unit", names[0])
			}
			return unit, true, nil
		}).
		Unique(WorkUnitLocator).
		Defaults(settings.WorkUnits.Count, settings.WorkUnits.LookupLimit)
	return finder.New[coordinate.WorkUnit]("work_unit", binding, settings.Finder)
}
