// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"net/http"
	"sync"

	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/finders"
	"github.com/diffeo/go-locator/restdata"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Settings configures the REST API.
type Settings struct {
	// Finders configures the locator finders of every namespace.
	Finders finders.Settings

	// Logger receives request logs.  If nil, the logrus standard
	// logger is used.
	Logger logrus.FieldLogger

	// LogRequests logs every request at debug level, not only
	// failed ones.
	LogRequests bool
}

// NewRouter creates a new HTTP handler that processes all locator
// queries.  All resources are under the URL path root, e.g.
// /namespace/foo/work_spec.  For more control over this setup, create
// a mux.Router and call PopulateRouter instead.
func NewRouter(c coordinate.Coordinate, settings Settings) http.Handler {
	r := mux.NewRouter()
	PopulateRouter(r, c, settings)
	return r
}

// PopulateRouter adds the locator query routes to an existing
// github.com/gorilla/mux router object.  This can be used, for
// instance, to place the interface under a subpath:
//
//     r := mux.NewRouter()
//     s := r.PathPrefix("/locator").Subrouter()
//     PopulateRouter(s, memory.New(), restserver.Settings{})
func PopulateRouter(r *mux.Router, c coordinate.Coordinate, settings Settings) {
	if settings.Logger == nil {
		settings.Logger = logrus.StandardLogger()
	}
	api := &restAPI{
		Coordinate: c,
		Router:     r,
		Settings:   settings,
		finders:    make(map[string]*finders.Finders),
	}
	api.PopulateRouter(r)
}

// restAPI holds the persistent state for the REST API.
type restAPI struct {
	Coordinate coordinate.Coordinate
	Router     *mux.Router
	Settings   Settings

	mu      sync.Mutex
	finders map[string]*finders.Finders
}

// Finders returns the finders of a namespace, creating them on first
// use.
func (api *restAPI) Finders(ns coordinate.Namespace) *finders.Finders {
	api.mu.Lock()
	defer api.mu.Unlock()
	f := api.finders[ns.Name()]
	if f == nil {
		f = finders.New(ns, api.Settings.Finders)
		api.finders[ns.Name()] = f
	}
	return f
}

// handler creates a GET-only resource handler.
func (api *restAPI) handler(get func(*requestContext) (interface{}, error)) *resourceHandler {
	return &resourceHandler{
		Context:     api.Context,
		Get:         get,
		Log:         api.Settings.Logger,
		LogRequests: api.Settings.LogRequests,
	}
}

// PopulateRouter adds all URL paths to a router.
func (api *restAPI) PopulateRouter(r *mux.Router) {
	api.PopulateNamespace(r)
	r.Path("/").Name("root").Handler(api.handler(api.RootDocument))
}

func (api *restAPI) RootDocument(ctx *requestContext) (interface{}, error) {
	resp := restdata.RootData{}
	err := buildURLs(api.Router).
		URL(&resp.URL, "root").
		URL(&resp.NamespacesURL, "namespaces").
		Template(&resp.NamespaceURL, "namespace", "namespace").
		Error
	return resp, err
}
