// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient is an HTTP client for the locator query service
// in the "restserver" package.
//
// The server in github.com/diffeo/go-locator/cmd/locatord runs a
// compatible REST server.  Call New() with the base URL of that
// service; for instance,
//
//     c, err := restclient.New(ctx, "http://localhost:5980/")
//     ns, err := c.Namespace(ctx, "")
//     failed, err := ns.WorkUnits(ctx, "workSpec:(prefix:ingest),status:failed")
//
// Errors the server reports come back as their locator package
// types, so callers can tell a bad locator (locator.ErrBadRequest)
// from one that matched nothing (locator.ErrNotFound).
package restclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/diffeo/go-locator/restdata"
)

// Client talks to a locator query server.
type Client struct {
	resource
	Representation restdata.RootData
}

// New creates a client for the server at baseURL, using
// http.DefaultClient.  It fetches the root document, so it fails if
// the server is not reachable.
func New(ctx context.Context, baseURL string) (*Client, error) {
	return NewWithClient(ctx, baseURL, nil)
}

// NewWithClient creates a client for the server at baseURL that
// sends its requests through httpClient.
func NewWithClient(ctx context.Context, baseURL string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{resource: resource{URL: base, Client: httpClient}}
	if err = c.Refresh(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh reloads the root document.
func (c *Client) Refresh(ctx context.Context) error {
	c.Representation = restdata.RootData{}
	return c.Get(ctx, &c.Representation)
}

// Namespaces returns the names of all namespaces.
func (c *Client) Namespaces(ctx context.Context) ([]string, error) {
	resp := restdata.NamespaceList{}
	err := c.GetFrom(ctx, c.Representation.NamespacesURL, map[string]interface{}{}, &resp)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(resp.Namespaces))
	for i, ns := range resp.Namespaces {
		names[i] = ns.Name
	}
	return names, nil
}

// Namespace fetches the query templates of a namespace.
func (c *Client) Namespace(ctx context.Context, name string) (*Namespace, error) {
	var err error
	ns := &Namespace{resource: resource{Client: c.Client}}
	ns.URL, err = c.Template(c.Representation.NamespaceURL, map[string]interface{}{
		"namespace": restdata.EncodePathSegment(name),
	})
	if err == nil {
		err = ns.Refresh(ctx)
	}
	if err != nil {
		return nil, err
	}
	return ns, nil
}
