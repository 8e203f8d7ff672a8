// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finders

import (
	"context"

	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/locator"
)

// ChildrenContextItem is the name under which the restserver binds a
// worker's children for "$contextItem:children".
const ChildrenContextItem = "children"

// WorkerLocator returns the canonical locator of a worker.
func WorkerLocator(w coordinate.Worker) string {
	return locator.Of("name", w.Name())
}

func workerName(w coordinate.Worker) string {
	return w.Name()
}

func allWorkers(ns coordinate.Namespace) func(context.Context) (finder.ItemHolder[coordinate.Worker], error) {
	return func(context.Context) (finder.ItemHolder[coordinate.Worker], error) {
		workers, err := ns.Workers()
		if err != nil {
			return nil, err
		}
		return finder.Of(workers...), nil
	}
}

// findWorker looks up an existing worker by name.  Namespace.Worker
// would create it.
func findWorker(ns coordinate.Namespace, name string) (coordinate.Worker, error) {
	workers, err := ns.Workers()
	if err != nil {
		return nil, err
	}
	for _, w := range workers {
		if w.Name() == name {
			return w, nil
		}
	}
	return nil, notFound("worker", name)
}

// Workers creates the worker finder of a namespace.
func Workers(ns coordinate.Namespace, settings Settings) *finder.Finder[coordinate.Worker] {
	var self *finder.Finder[coordinate.Worker]
	binding := finder.NewTypedBinding(allWorkers(ns), WorkerLocator).
		StringDimension(locator.Dimension{
			Name:        "name",
			Description: "Worker name; a bare value is a name too",
		}, workerName).
		PrefixDimension(locator.Dimension{
			Name:        "prefix",
			Description: "Worker name prefix",
		}, workerName).
		Dimension(locator.Dimension{
			Name:        "parent",
			Syntax:      "<worker locator>",
			Description: "Workers whose parent matches",
		}, func(ctx context.Context, value string) (finder.ItemFilter[coordinate.Worker], error) {
			filter, err := self.Filter(ctx, value)
			if err != nil {
				return nil, err
			}
			return subFilter(filter, func(w coordinate.Worker) (coordinate.Worker, bool) {
				parent, err := w.Parent()
				return parent, err == nil && parent != nil
			}), nil
		}).
		Dimension(locator.Dimension{
			Name:        "child",
			Syntax:      "<worker locator>",
			Description: "Workers with at least one matching child",
		}, func(ctx context.Context, value string) (finder.ItemFilter[coordinate.Worker], error) {
			filter, err := self.Filter(ctx, value)
			if err != nil {
				return nil, err
			}
			return finder.FilterFunc[coordinate.Worker](func(w coordinate.Worker) bool {
				children, err := w.Children()
				if err != nil {
					return false
				}
				for _, child := range children {
					if filter.IsIncluded(child) {
						return true
					}
				}
				return false
			}), nil
		}).
		BoolDimension(locator.Dimension{
			Name:        "active",
			Description: "Whether the worker is alive",
		}, func(w coordinate.Worker) bool {
			active, err := w.Active()
			return err == nil && active
		}).
		StringDimension(locator.Dimension{
			Name:        "mode",
			Description: "Worker-reported mode",
		}, func(w coordinate.Worker) string {
			mode, _ := w.Mode()
			return mode
		}).
		SingleValue("name").
		SingleItem(func(_ context.Context, loc *locator.Locator) (coordinate.Worker, bool, error) {
			name, ok := singleName(loc)
			if !ok {
				return nil, false, nil
			}
			w, err := findWorker(ns, name)
			if err != nil {
				return nil, false, err
			}
			return w, true, nil
		}).
		Unique(workerName).
		Defaults(settings.Workers.Count, settings.Workers.LookupLimit)
	self = finder.New[coordinate.Worker]("worker", binding, settings.Finder)
	return self
}
