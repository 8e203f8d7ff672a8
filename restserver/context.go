// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"context"
	"net/http"
	"net/url"

	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finders"
	"github.com/diffeo/go-locator/restdata"
	"github.com/gorilla/mux"
)

// requestContext holds all of the information and objects that can be
// extracted from URL parameters.
type requestContext struct {
	// Context is the context of the HTTP request.
	Context context.Context

	Namespace coordinate.Namespace
	Finders   *finders.Finders

	// Locator is the decoded {locator} path parameter, or the
	// {worker} one of worker sub-resources.
	Locator string

	// Query is the "locator" query parameter.
	Query string

	QueryParams url.Values
}

func (api *restAPI) Context(req *http.Request) (ctx *requestContext, err error) {
	ctx = &requestContext{
		Context:     req.Context(),
		QueryParams: req.URL.Query(),
	}
	ctx.Query = ctx.QueryParams.Get("locator")
	vars := mux.Vars(req)

	if namespace, present := vars["namespace"]; present {
		namespace, err = restdata.DecodePathSegment(namespace)
		if err != nil {
			return nil, err
		}
		ctx.Namespace, err = api.Coordinate.Namespace(namespace)
		if err != nil {
			return nil, err
		}
		ctx.Finders = api.Finders(ctx.Namespace)
	}

	for _, key := range []string{"locator", "worker"} {
		if loc, present := vars[key]; present {
			ctx.Locator, err = restdata.DecodePathSegment(loc)
			if err != nil {
				return nil, err
			}
		}
	}
	return ctx, nil
}
