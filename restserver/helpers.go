// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains various HTTP-related helpers.

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/restdata"
	"github.com/gorilla/mux"
)

type urlBuilder struct {
	Router *mux.Router
	Params []string
	Error  error
}

func buildURLs(router *mux.Router, params ...string) *urlBuilder {
	// Encode all of the values in params
	for i, value := range params {
		if i%2 == 1 {
			params[i] = restdata.EncodePathSegment(value)
		}
	}
	return &urlBuilder{Router: router, Params: params}
}

func (u *urlBuilder) Route(route string) *mux.Route {
	if u.Error != nil {
		return nil
	}
	r := u.Router.Get(route)
	if r == nil {
		u.Error = fmt.Errorf("No such route %q", route)
	}
	return r
}

func (u *urlBuilder) build(route string, params []string) *url.URL {
	r := u.Route(route)
	if u.Error != nil {
		return nil
	}
	var built *url.URL
	built, u.Error = r.URL(params...)
	return built
}

// URL fills in the URL of a route.
func (u *urlBuilder) URL(out *string, route string) *urlBuilder {
	if built := u.build(route, u.Params); built != nil {
		*out = built.String()
	}
	return u
}

// Template fills in the URL of a route with one path parameter left
// as a URI template variable.
func (u *urlBuilder) Template(out *string, route, param string) *urlBuilder {
	params := append([]string{param, "---"}, u.Params...)
	if built := u.build(route, params); built != nil {
		*out = strings.Replace(built.String(), "---", "{"+param+"}", 1)
	}
	return u
}

// QueryTemplate fills in the URL of a route followed by an optional
// query parameter URI template, like "/work_spec{?locator}".
func (u *urlBuilder) QueryTemplate(out *string, route, param string) *urlBuilder {
	if built := u.build(route, u.Params); built != nil {
		*out = built.String() + "{?" + param + "}"
	}
	return u
}

// Query fills in the URL of a route with a "locator" query
// parameter.  An empty locator leaves the query out.
func (u *urlBuilder) Query(out *string, route, locator string) *urlBuilder {
	if built := u.build(route, u.Params); built != nil {
		if locator != "" {
			built.RawQuery = url.Values{"locator": {locator}}.Encode()
		}
		*out = built.String()
	}
	return u
}

// pageOf describes a finder result page, with links to its neighbors
// built from the list route and the locator the page came from.
func pageOf[T any](u *urlBuilder, route, text string, result *finder.PagedSearchResult[T]) (restdata.Page, error) {
	page := restdata.Page{
		Start:              result.Start,
		Count:              result.Count,
		ProcessedCount:     result.ProcessedCount,
		LookupLimitReached: result.LookupLimitReached,
	}
	if next, ok := result.NextPageLocator(text); ok {
		u.Query(&page.NextURL, route, next)
	}
	if prev, ok := result.PrevPageLocator(text); ok {
		u.Query(&page.PrevURL, route, prev)
	}
	return page, u.Error
}
