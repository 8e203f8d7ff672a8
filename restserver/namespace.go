// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/restdata"
	"github.com/gorilla/mux"
)

func (api *restAPI) fillNamespaceShort(name string, summary *restdata.NamespaceShort) error {
	summary.Name = name
	return buildURLs(api.Router, "namespace", name).
		URL(&summary.URL, "namespace").
		Error
}

func (api *restAPI) fillNamespace(namespace coordinate.Namespace, result *restdata.Namespace) error {
	err := api.fillNamespaceShort(namespace.Name(), &result.NamespaceShort)
	if err == nil {
		err = buildURLs(api.Router, "namespace", result.Name).
			URL(&result.SummaryURL, "namespaceSummary").
			QueryTemplate(&result.WorkSpecsURL, "workSpecs", "locator").
			Template(&result.WorkSpecURL, "workSpec", "locator").
			QueryTemplate(&result.WorkUnitsURL, "workUnits", "locator").
			Template(&result.WorkUnitURL, "workUnit", "locator").
			QueryTemplate(&result.WorkersURL, "workers", "locator").
			Template(&result.WorkerURL, "worker", "locator").
			Error
	}
	if err == nil {
		// two parameters: fill in the path one by hand
		var children string
		err = buildURLs(api.Router, "namespace", result.Name).
			Template(&children, "workerChildren", "worker").
			Error
		result.WorkerChildrenURL = children + "{?locator}"
	}
	return err
}

// NamespaceList gets a list of all namespaces known in the system.
func (api *restAPI) NamespaceList(ctx *requestContext) (interface{}, error) {
	namespaces, err := api.Coordinate.Namespaces()
	if err != nil {
		return nil, err
	}
	result := restdata.NamespaceList{}
	for _, name := range namespaces {
		summary := restdata.NamespaceShort{}
		err = api.fillNamespaceShort(name, &summary)
		if err != nil {
			return nil, err
		}
		result.Namespaces = append(result.Namespaces, summary)
	}
	return result, nil
}

// NamespaceGet returns the query templates of a namespace.
func (api *restAPI) NamespaceGet(ctx *requestContext) (interface{}, error) {
	result := restdata.Namespace{}
	err := api.fillNamespace(ctx.Namespace, &result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// NamespaceSummaryGet produces a summary for a namespace.
func (api *restAPI) NamespaceSummaryGet(ctx *requestContext) (interface{}, error) {
	summary, err := ctx.Namespace.Summarize()
	if err != nil {
		return nil, err
	}
	summary.Sort()
	return summary, nil
}

// PopulateNamespace adds namespace-specific routes to a router.
// r should be rooted at the root of the URL tree, e.g. "/".
func (api *restAPI) PopulateNamespace(r *mux.Router) {
	r.Path("/namespace").Name("namespaces").Handler(api.handler(api.NamespaceList))
	r.Path("/namespace/{namespace}").Name("namespace").Handler(api.handler(api.NamespaceGet))
	r.Path("/namespace/{namespace}/summary").Name("namespaceSummary").Handler(api.handler(api.NamespaceSummaryGet))
	sr := r.PathPrefix("/namespace/{namespace}").Subrouter()
	api.PopulateWorkSpec(sr)
	api.PopulateWorkUnit(sr)
	api.PopulateWorker(sr)
}
