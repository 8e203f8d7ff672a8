// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"

	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/restdata"
)

// Namespace runs locator queries against one namespace.  List calls
// take an optional locator and return one page; an empty locator
// selects the default first page.  Single item calls take a locator
// that must select exactly one item.
type Namespace struct {
	resource
	Representation restdata.Namespace
}

// Refresh reloads the namespace document.
func (ns *Namespace) Refresh(ctx context.Context) error {
	ns.Representation = restdata.Namespace{}
	return ns.Get(ctx, &ns.Representation)
}

// Name returns the name of the namespace.
func (ns *Namespace) Name() string {
	return ns.Representation.Name
}

// Summary returns the work unit counts of the namespace.
func (ns *Namespace) Summary(ctx context.Context) (coordinate.Summary, error) {
	var summary coordinate.Summary
	err := ns.GetFrom(ctx, ns.Representation.SummaryURL, map[string]interface{}{}, &summary)
	return summary, err
}

func queryVars(locator string) map[string]interface{} {
	vars := map[string]interface{}{}
	if locator != "" {
		vars["locator"] = locator
	}
	return vars
}

func itemVars(locator string) map[string]interface{} {
	return map[string]interface{}{"locator": restdata.EncodePathSegment(locator)}
}

// WorkSpecs returns one page of the work specs locator selects.
func (ns *Namespace) WorkSpecs(ctx context.Context, locator string) (*restdata.WorkSpecList, error) {
	list := &restdata.WorkSpecList{}
	err := ns.GetFrom(ctx, ns.Representation.WorkSpecsURL, queryVars(locator), list)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// WorkSpec returns the one work spec locator selects.
func (ns *Namespace) WorkSpec(ctx context.Context, locator string) (*restdata.WorkSpec, error) {
	spec := &restdata.WorkSpec{}
	err := ns.GetFrom(ctx, ns.Representation.WorkSpecURL, itemVars(locator), spec)
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// WorkUnits returns one page of the work units locator selects.
func (ns *Namespace) WorkUnits(ctx context.Context, locator string) (*restdata.WorkUnitList, error) {
	list := &restdata.WorkUnitList{}
	err := ns.GetFrom(ctx, ns.Representation.WorkUnitsURL, queryVars(locator), list)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// WorkUnit returns the one work unit locator selects.
func (ns *Namespace) WorkUnit(ctx context.Context, locator string) (*restdata.WorkUnit, error) {
	unit := &restdata.WorkUnit{}
	err := ns.GetFrom(ctx, ns.Representation.WorkUnitURL, itemVars(locator), unit)
	if err != nil {
		return nil, err
	}
	return unit, nil
}

// Workers returns one page of the workers locator selects.
func (ns *Namespace) Workers(ctx context.Context, locator string) (*restdata.WorkerList, error) {
	list := &restdata.WorkerList{}
	err := ns.GetFrom(ctx, ns.Representation.WorkersURL, queryVars(locator), list)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Worker returns the one worker locator selects.
func (ns *Namespace) Worker(ctx context.Context, locator string) (*restdata.Worker, error) {
	worker := &restdata.Worker{}
	err := ns.GetFrom(ctx, ns.Representation.WorkerURL, itemVars(locator), worker)
	if err != nil {
		return nil, err
	}
	return worker, nil
}

// WorkerChildren returns one page of the children of the worker
// selected by worker, filtered by locator.
func (ns *Namespace) WorkerChildren(ctx context.Context, worker, locator string) (*restdata.WorkerList, error) {
	vars := queryVars(locator)
	vars["worker"] = restdata.EncodePathSegment(worker)
	list := &restdata.WorkerList{}
	err := ns.GetFrom(ctx, ns.Representation.WorkerChildrenURL, vars, list)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Follow fetches a URL from a previous response, such as a page's
// next_href, into out.  It returns false without a request if href
// is empty.
func (ns *Namespace) Follow(ctx context.Context, href string, out interface{}) (bool, error) {
	if href == "" {
		return false, nil
	}
	url, err := ns.URL.Parse(href)
	if err == nil {
		err = ns.Do(ctx, url, out)
	}
	return err == nil, err
}
