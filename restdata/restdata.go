// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restdata defines common data structures shared between the
// restserver and restclient packages.  Generally JSON encodings of
// these are passed across the wire as the
// application/vnd.diffeo.locator.v1+json MIME type.
//
// API Usage
//
// HTTP GET the root document at its specified URL.  This will return
// a JSON serialization of the RootData object.  That serialization
// has links to other resources; follow these links, possibly filling
// in template values, to get to other resources.
//
// Many of the URL fields are RFC 6570 URI templates.  The namespace
// representation, for instance, looks like
//
//     {
//         "work_specs_url": "/namespace/-/work_spec{?locator}",
//         "work_spec_url": "/namespace/-/work_spec/{locator}"
//     }
//
// where "locator" is a locator string such as "prefix:ingest,count:10".
// The list endpoints return one page of results; the "next_href" and
// "prev_href" fields of the page, when present, point at the
// neighboring pages.  The single item endpoints return one object, or
// 404 if the locator matches nothing.
//
// Encoding Considerations
//
// A name or locator that appears in a URL path must be made of ASCII
// characters that can be represented unescaped.  Others are escaped by
// encoding their byte representations using the base64 URL-safe
// encoding with no padding, and prepending a hyphen.  Names that would
// be otherwise safe and begin with hyphens are also encoded.  Query
// parameters use ordinary URL escaping.
//
// Timestamps, when they appear, are represented in JSON as RFC 3339
// strings, "2012-03-04T05:06:07.890Z".
//
// Errors
//
// Errors are returned as encodings of the ErrorResponse type, with
// status 400 for malformed or unsupported locators, 404 when nothing
// matches, and 500 otherwise.  The "error" field carries a stable
// code that restclient maps back to the locator and coordinate error
// types.
package restdata

import (
	"time"

	"github.com/diffeo/go-locator/coordinate"
)

// V1JSONMediaType is the preferred, most specific MIME type for the
// JSON representation of this content.
const V1JSONMediaType = "application/vnd.diffeo.locator.v1+json"

// JSONMediaType requests the most recent version of the JSON
// representation of this content.
const JSONMediaType = "application/vnd.diffeo.locator+json"

// DataDict is an arbitrary user-provided data dictionary.
type DataDict map[string]interface{}

// Resource is a base type for all resources in this module.
type Resource struct {
	// URL points at this resource.  If this record is a "short"
	// record, the contents of this URL are the full record.
	URL string `json:"url"`
}

// NamedResource is a resource with a name.
type NamedResource struct {
	Resource

	// Name holds the name of this resource.
	Name string `json:"name"`
}

// RootData is returned by the root path.
type RootData struct {
	Resource

	// NamespacesURL points at the namespace list, a NamespaceList.
	NamespacesURL string `json:"namespaces_url"`

	// NamespaceURL points at a single Namespace.  It is a URI
	// template with a single parameter, "namespace".
	NamespaceURL string `json:"namespace_url"`
}

// NamespaceShort provides minimal data to identify a single namespace.
type NamespaceShort struct {
	NamedResource
}

// NamespaceList is a list of NamespaceShort.
type NamespaceList struct {
	Namespaces []NamespaceShort `json:"namespaces"`
}

// Namespace provides the query templates of a namespace.  The list
// templates take an optional "locator" query parameter and return a
// page; the single item templates take a required "locator" path
// parameter.
type Namespace struct {
	NamespaceShort

	// SummaryURL returns a coordinate.Summary of the namespace.
	SummaryURL string `json:"summary_url"`

	WorkSpecsURL string `json:"work_specs_url"`
	WorkSpecURL  string `json:"work_spec_url"`
	WorkUnitsURL string `json:"work_units_url"`
	WorkUnitURL  string `json:"work_unit_url"`
	WorkersURL   string `json:"workers_url"`
	WorkerURL    string `json:"worker_url"`

	// WorkerChildrenURL lists the children of the worker its
	// "worker" locator selects, filtered by its "locator".
	WorkerChildrenURL string `json:"worker_children_url"`
}

// Page describes which part of the matching items a list holds.
type Page struct {
	// Start is the number of matching items skipped.
	Start int `json:"start"`

	// Count is the page size, or -1 if unlimited.
	Count int `json:"count"`

	// ProcessedCount is how many items were examined.
	ProcessedCount int `json:"processed_count"`

	// LookupLimitReached is true if the search stopped early
	// because it examined as many items as it was allowed to.
	LookupLimitReached bool `json:"lookup_limit_reached,omitempty"`

	// NextURL points at the next page, if there may be one.
	NextURL string `json:"next_href,omitempty"`

	// PrevURL points at the previous page, if there is one.
	PrevURL string `json:"prev_href,omitempty"`
}

// WorkSpecShort identifies a work spec.
type WorkSpecShort struct {
	NamedResource

	// Locator is the canonical locator of this work spec.
	Locator string `json:"locator"`
}

// WorkSpecList is one page of WorkSpecShort.
type WorkSpecList struct {
	Page
	WorkSpecs []WorkSpecShort `json:"work_specs"`
}

// WorkSpec contains all of the details for a single work spec.
type WorkSpec struct {
	WorkSpecShort

	// Data is the user-provided data dictionary.
	Data DataDict `json:"data"`

	Priority   int    `json:"priority"`
	Weight     int    `json:"weight"`
	Paused     bool   `json:"paused"`
	Continuous bool   `json:"continuous"`
	MaxRunning int    `json:"max_running"`
	Then       string `json:"then,omitempty"`
	Runtime    string `json:"runtime,omitempty"`

	// Counts holds the number of work units in each status.
	Counts map[string]int `json:"counts"`

	// WorkUnitsURL lists the work units of this work spec.
	WorkUnitsURL string `json:"work_units_url"`
}

// WorkUnitShort identifies a work unit.
type WorkUnitShort struct {
	NamedResource

	// WorkSpec is the name of the work spec of this work unit.
	WorkSpec string `json:"work_spec"`

	// Locator is the canonical locator of this work unit.
	Locator string `json:"locator"`
}

// WorkUnitList is one page of WorkUnitShort.
type WorkUnitList struct {
	Page
	WorkUnits []WorkUnitShort `json:"work_units"`
}

// WorkUnit contains all of the details for a single work unit.
type WorkUnit struct {
	WorkUnitShort

	Data     DataDict                  `json:"data,omitempty"`
	Status   coordinate.WorkUnitStatus `json:"status"`
	Priority float64                   `json:"priority"`
	Created  time.Time                 `json:"created"`

	WorkSpecURL string `json:"work_spec_url"`

	// WorkerURL points at the worker this work unit was last
	// assigned to, if any.
	WorkerURL string `json:"worker_url,omitempty"`
}

// WorkerShort identifies a worker.
type WorkerShort struct {
	NamedResource

	// Locator is the canonical locator of this worker.
	Locator string `json:"locator"`
}

// WorkerList is one page of WorkerShort.
type WorkerList struct {
	Page
	Workers []WorkerShort `json:"workers"`
}

// Worker contains all of the details for a single worker.
type Worker struct {
	WorkerShort

	Parent    string   `json:"parent,omitempty"`
	ParentURL string   `json:"parent_url,omitempty"`
	ChildURLs []string `json:"child_urls,omitempty"`

	Active   bool      `json:"active"`
	Mode     string    `json:"mode"`
	LastSeen time.Time `json:"last_seen"`

	// ActiveWorkUnitsURL lists the work units this worker is
	// performing now.
	ActiveWorkUnitsURL string `json:"active_work_units_url"`

	// ChildrenURL lists the children of this worker.
	ChildrenURL string `json:"children_url"`
}

// ErrorResponse is returned for any error.
type ErrorResponse struct {
	// Error is a stable error code, such as "ErrNotFound".
	Error string `json:"error"`

	// Message is the human-readable error message.
	Message string `json:"message"`

	// Value carries a parameter of some errors, such as the
	// missing work spec name of ErrNoSuchWorkSpec.
	Value string `json:"value,omitempty"`

	// Stack holds a stack trace if the server panicked.
	Stack string `json:"stack,omitempty"`
}
