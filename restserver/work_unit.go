// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finders"
	"github.com/diffeo/go-locator/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) fillWorkUnitShort(namespace coordinate.Namespace, unit coordinate.WorkUnit, short *restdata.WorkUnitShort) error {
	short.Name = unit.Name()
	short.WorkSpec = unit.WorkSpec().Name()
	short.Locator = finders.WorkUnitLocator(unit)
	return buildURLs(api.Router,
		"namespace", namespace.Name(),
		"locator", short.Locator,
	).URL(&short.URL, "workUnit").Error
}

func (api *restAPI) fillWorkUnit(namespace coordinate.Namespace, unit coordinate.WorkUnit, repr *restdata.WorkUnit) error {
	err := api.fillWorkUnitShort(namespace, unit, &repr.WorkUnitShort)
	if err == nil {
		repr.Data, err = unit.Data()
	}
	if err == nil {
		repr.Status, err = unit.Status()
	}
	if err == nil {
		repr.Priority, err = unit.Priority()
	}
	if err == nil {
		repr.Created = unit.Created()
		err = buildURLs(api.Router,
			"namespace", namespace.Name(),
			"locator", finders.WorkSpecLocator(unit.WorkSpec()),
		).URL(&repr.WorkSpecURL, "workSpec").Error
	}
	var worker coordinate.Worker
	if err == nil {
		worker, err = unit.Worker()
	}
	if err == nil && worker != nil {
		err = buildURLs(api.Router,
			"namespace", namespace.Name(),
			"locator", finders.WorkerLocator(worker),
		).URL(&repr.WorkerURL, "worker").Error
	}
	return err
}

// WorkUnitsGet returns one page of the work units a locator selects.
func (api *restAPI) WorkUnitsGet(ctx *requestContext) (interface{}, error) {
	result, err := ctx.Finders.WorkUnits.Items(ctx.Context, ctx.Query)
	if err != nil {
		return nil, err
	}
	list := restdata.WorkUnitList{}
	list.Page, err = pageOf(buildURLs(api.Router, "namespace", ctx.Namespace.Name()), "workUnits", ctx.Query, result)
	if err != nil {
		return nil, err
	}
	list.WorkUnits = make([]restdata.WorkUnitShort, len(result.Entries))
	for i, unit := range result.Entries {
		if err = api.fillWorkUnitShort(ctx.Namespace, unit, &list.WorkUnits[i]); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// WorkUnitGet returns the single work unit a locator selects.
func (api *restAPI) WorkUnitGet(ctx *requestContext) (interface{}, error) {
	unit, err := ctx.Finders.WorkUnits.Item(ctx.Context, ctx.Locator)
	if err != nil {
		return nil, err
	}
	repr := restdata.WorkUnit{}
	if err = api.fillWorkUnit(ctx.Namespace, unit, &repr); err != nil {
		return nil, err
	}
	return repr, nil
}

// PopulateWorkUnit adds the work unit routes to a namespace router.
func (api *restAPI) PopulateWorkUnit(r *mux.Router) {
	r.Path("/work_unit").Name("workUnits").Handler(api.handler(api.WorkUnitsGet))
	r.Path("/work_unit/{locator}").Name("workUnit").Handler(api.handler(api.WorkUnitGet))
}
