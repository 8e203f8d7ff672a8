// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finders

import (
	"context"

	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/locator"
)

// WorkSpecLocator returns the canonical locator of a work spec.
func WorkSpecLocator(spec coordinate.WorkSpec) string {
	return locator.Of("name", spec.Name())
}

func workSpecName(spec coordinate.WorkSpec) string {
	return spec.Name()
}

// workSpecMeta returns the metadata of a work spec, or zero values if
// it has gone away.
func workSpecMeta(spec coordinate.WorkSpec) coordinate.WorkSpecMeta {
	meta, err := spec.Meta()
	if err != nil {
		return coordinate.WorkSpecMeta{}
	}
	return meta
}

// allWorkSpecs produces the work specs of ns in name order.  Work
// specs destroyed while the scan runs are skipped.
func allWorkSpecs(ns coordinate.Namespace) func(context.Context) (finder.ItemHolder[coordinate.WorkSpec], error) {
	return func(context.Context) (finder.ItemHolder[coordinate.WorkSpec], error) {
		names, err := ns.WorkSpecNames()
		if err != nil {
			return nil, err
		}
		return func(yield func(coordinate.WorkSpec) bool) {
			for _, name := range names {
				spec, err := ns.WorkSpec(name)
				if err != nil {
					continue
				}
				if !yield(spec) {
					return
				}
			}
		}, nil
	}
}

// WorkSpecs creates the work spec finder of a namespace.
func WorkSpecs(ns coordinate.Namespace, settings Settings) *finder.Finder[coordinate.WorkSpec] {
	binding := finder.NewTypedBinding(allWorkSpecs(ns), WorkSpecLocator).
		StringDimension(locator.Dimension{
			Name:        "name",
			Description: "Work spec name; a bare value is a name too",
		}, workSpecName).
		PrefixDimension(locator.Dimension{
			Name:        "prefix",
			Description: "Work spec name prefix",
		}, workSpecName).
		BoolDimension(locator.Dimension{
			Name:        "paused",
			Description: "Whether the work spec is paused",
		}, func(spec coordinate.WorkSpec) bool { return workSpecMeta(spec).Paused }).
		BoolDimension(locator.Dimension{
			Name:        "continuous",
			Description: "Whether the work spec generates its own work units",
		}, func(spec coordinate.WorkSpec) bool { return workSpecMeta(spec).Continuous }).
		StringDimension(locator.Dimension{
			Name:        "runtime",
			Description: "Required language runtime",
		}, func(spec coordinate.WorkSpec) string { return workSpecMeta(spec).Runtime }).
		StringDimension(locator.Dimension{
			Name:        "then",
			Description: "Name of the work spec that runs next",
		}, func(spec coordinate.WorkSpec) string { return workSpecMeta(spec).NextWorkSpecName }).
		MinIntDimension(locator.Dimension{
			Name:        "minPriority",
			Description: "Least work spec priority",
		}, func(spec coordinate.WorkSpec) int { return workSpecMeta(spec).Priority }).
		SingleValue("name").
		SingleItem(func(_ context.Context, loc *locator.Locator) (coordinate.WorkSpec, bool, error) {
			name, ok := singleName(loc)
			if !ok {
				return nil, false, nil
			}
			spec, err := ns.WorkSpec(name)
			if _, missing := err.(coordinate.ErrNoSuchWorkSpec); missing {
				return nil, false, notFound("work spec", name)
			}
			if err != nil {
				return nil, false, err
			}
			return spec, true, nil
		}).
		Unique(workSpecName).
		Defaults(settings.WorkSpecs.Count, settings.WorkSpecs.LookupLimit)
	return finder.New[coordinate.WorkSpec]("work_spec", binding, settings.Finder)
}
