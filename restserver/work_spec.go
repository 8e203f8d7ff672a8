// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finders"
	"github.com/diffeo/go-locator/locator"
	"github.com/diffeo/go-locator/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) fillWorkSpecShort(namespace coordinate.Namespace, spec coordinate.WorkSpec, short *restdata.WorkSpecShort) error {
	short.Name = spec.Name()
	short.Locator = finders.WorkSpecLocator(spec)
	return buildURLs(api.Router,
		"namespace", namespace.Name(),
		"locator", short.Locator,
	).URL(&short.URL, "workSpec").Error
}

func (api *restAPI) fillWorkSpec(namespace coordinate.Namespace, spec coordinate.WorkSpec, repr *restdata.WorkSpec) error {
	err := api.fillWorkSpecShort(namespace, spec, &repr.WorkSpecShort)
	if err == nil {
		repr.Data, err = spec.Data()
	}
	var meta coordinate.WorkSpecMeta
	if err == nil {
		meta, err = spec.Meta()
	}
	if err == nil {
		repr.Priority = meta.Priority
		repr.Weight = meta.Weight
		repr.Paused = meta.Paused
		repr.Continuous = meta.Continuous
		repr.MaxRunning = meta.MaxRunning
		repr.Then = meta.NextWorkSpecName
		repr.Runtime = meta.Runtime
	}
	var counts map[coordinate.WorkUnitStatus]int
	if err == nil {
		counts, err = spec.CountWorkUnitStatus()
	}
	if err == nil {
		repr.Counts = make(map[string]int, len(counts))
		for status, count := range counts {
			repr.Counts[status.String()] = count
		}
		err = buildURLs(api.Router, "namespace", namespace.Name()).
			Query(&repr.WorkUnitsURL, "workUnits", locator.Of("workSpec", repr.Locator)).
			Error
	}
	return err
}

// WorkSpecsGet returns one page of the work specs a locator selects.
func (api *restAPI) WorkSpecsGet(ctx *requestContext) (interface{}, error) {
	result, err := ctx.Finders.WorkSpecs.Items(ctx.Context, ctx.Query)
	if err != nil {
		return nil, err
	}
	list := restdata.WorkSpecList{}
	list.Page, err = pageOf(buildURLs(api.Router, "namespace", ctx.Namespace.Name()), "workSpecs", ctx.Query, result)
	if err != nil {
		return nil, err
	}
	list.WorkSpecs = make([]restdata.WorkSpecShort, len(result.Entries))
	for i, spec := range result.Entries {
		if err = api.fillWorkSpecShort(ctx.Namespace, spec, &list.WorkSpecs[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// WorkSpecGet returns the single work spec a locator selects.
func (api *restAPI) WorkSpecGet(ctx *requestContext) (interface{}, error) {
	spec, err := ctx.Finders.WorkSpecs.Item(ctx.Context, ctx.Locator)
	if err != nil {
		return nil, err
	}
	repr := restdata.WorkSpec{}
	if err = api.fillWorkSpec(ctx.Namespace, spec, &repr); err != nil {
		return nil, err
	}
	return repr, nil
}

// PopulateWorkSpec adds the work spec routes to a namespace router.
func (api *restAPI) PopulateWorkSpec(r *mux.Router) {
	r.Path("/work_spec").Name("workSpecs").Handler(api.handler(api.WorkSpecsGet))
	r.Path("/work_spec/{locator}").Name("workSpec").Handler(api.handler(api.WorkSpecGet))
}
