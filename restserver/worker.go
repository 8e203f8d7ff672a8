// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/finders"
	"github.com/diffeo/go-locator/locator"
	"github.com/diffeo/go-locator/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) fillWorkerShort(namespace coordinate.Namespace, worker coordinate.Worker, short *restdata.WorkerShort) error {
	short.Name = worker.Name()
	short.Locator = finders.WorkerLocator(worker)
	return buildURLs(api.Router,
		"namespace", namespace.Name(),
		"locator", short.Locator,
	).URL(&short.URL, "worker").Error
}

func (api *restAPI) fillWorker(namespace coordinate.Namespace, worker coordinate.Worker, result *restdata.Worker) error {
	err := api.fillWorkerShort(namespace, worker, &result.WorkerShort)
	if err == nil {
		err = buildURLs(api.Router,
			"namespace", namespace.Name(),
			"worker", result.Locator,
		).
			URL(&result.ChildrenURL, "workerChildren").
			Error
	}
	if err == nil {
		active := locator.Of("worker", result.Locator, "status", "pending")
		err = buildURLs(api.Router, "namespace", namespace.Name()).
			Query(&result.ActiveWorkUnitsURL, "workUnits", active).
			Error
	}
	var parent coordinate.Worker
	if err == nil {
		parent, err = worker.Parent()
	}
	if err == nil && parent != nil {
		result.Parent = parent.Name()
		err = buildURLs(api.Router,
			"namespace", namespace.Name(),
			"locator", finders.WorkerLocator(parent),
		).
			URL(&result.ParentURL, "worker").
			Error
	}
	var children []coordinate.Worker
	if err == nil {
		children, err = worker.Children()
	}
	if err == nil && len(children) > 0 {
		result.ChildURLs = make([]string, len(children))
		for i, child := range children {
			err = buildURLs(api.Router,
				"namespace", namespace.Name(),
				"locator", finders.WorkerLocator(child),
			).
				URL(&result.ChildURLs[i], "worker").
				Error
			if err != nil {
				break
			}
		}
	}
	if err == nil {
		result.Active, err = worker.Active()
	}
	if err == nil {
		result.Mode, err = worker.Mode()
	}
	if err == nil {
		result.LastSeen, err = worker.LastSeen()
	}
	return err
}

func (api *restAPI) workerList(ctx *requestContext, route, text string, result *finder.PagedSearchResult[coordinate.Worker], params ...string) (interface{}, error) {
	var err error
	list := restdata.WorkerList{}
	params = append([]string{"namespace", ctx.Namespace.Name()}, params...)
	list.Page, err = pageOf(buildURLs(api.Router, params...), route, text, result)
	if err != nil {
		return nil, err
	}
	list.Workers = make([]restdata.WorkerShort, len(result.Entries))
	for i, worker := range result.Entries {
		if err = api.fillWorkerShort(ctx.Namespace, worker, &list.Workers[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// WorkersGet returns one page of the workers a locator selects.
func (api *restAPI) WorkersGet(ctx *requestContext) (interface{}, error) {
	result, err := ctx.Finders.Workers.Items(ctx.Context, ctx.Query)
	if err != nil {
		return nil, err
	}
	return api.workerList(ctx, "workers", ctx.Query, result)
}

// WorkerGet returns the single worker a locator selects.
func (api *restAPI) WorkerGet(ctx *requestContext) (interface{}, error) {
	worker, err := ctx.Finders.Workers.Item(ctx.Context, ctx.Locator)
	if err != nil {
		return nil, err
	}
	repr := restdata.Worker{}
	if err = api.fillWorker(ctx.Namespace, worker, &repr); err != nil {
		return nil, err
	}
	return repr, nil
}

// WorkerChildrenGet returns one page of the children of a worker,
// filtered by the query locator.  The children are bound as context
// items, so the query runs as "item:($contextItem:children),<query>".
// A childless worker still has its query checked.
func (api *restAPI) WorkerChildrenGet(ctx *requestContext) (interface{}, error) {
	worker, err := ctx.Finders.Workers.Item(ctx.Context, ctx.Locator)
	if err != nil {
		return nil, err
	}
	children, err := worker.Children()
	if err != nil {
		return nil, err
	}
	extra, err := childrenQuery(ctx.Query)
	if err != nil {
		return nil, err
	}
	var result *finder.PagedSearchResult[coordinate.Worker]
	if len(children) == 0 {
		if extra != "" {
			if err = ctx.Finders.Workers.Check(ctx.Context, extra); err != nil {
				return nil, err
			}
		}
		result = &finder.PagedSearchResult[coordinate.Worker]{Count: finder.Unlimited, LookupLimit: finder.Unlimited}
	} else {
		bound := finder.WithContextItems(ctx.Context, finders.ChildrenContextItem, children...)
		text := locator.Of(finder.ItemDimension, locator.Of(finder.ContextItemDimension, finders.ChildrenContextItem))
		if extra != "" {
			text += "," + extra
		}
		result, err = ctx.Finders.Workers.Items(bound, text)
		if err != nil {
			return nil, err
		}
	}
	return api.workerList(ctx, "workerChildren", ctx.Query, result, "worker", ctx.Locator)
}

// childrenQuery rewrites a query locator so it can follow other
// dimensions: a bare single value becomes and:(<value>).
func childrenQuery(text string) (string, error) {
	parsed, err := locator.Parse(text)
	if err != nil {
		return "", err
	}
	switch {
	case parsed.IsEmpty():
		return "", nil
	case parsed.IsSingleValue():
		return locator.Of(finder.AndDimension, parsed.String()), nil
	default:
		return parsed.String(), nil
	}
}

// PopulateWorker adds the worker routes to a namespace router.
func (api *restAPI) PopulateWorker(r *mux.Router) {
	r.Path("/worker").Name("workers").Handler(api.handler(api.WorkersGet))
	r.Path("/worker/{locator}").Name("worker").Handler(api.handler(api.WorkerGet))
	r.Path("/worker/{worker}/children").Name("workerChildren").Handler(api.handler(api.WorkerChildrenGet))
}
