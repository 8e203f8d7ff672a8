// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restserver publishes locator queries over a Coordinate as a
// read-only REST service.  The restclient package is a matching client.
//
// The complete REST API is defined in the restdata package.  In
// particular, note that the URLs described here are not actually part
// of the API: clients should start from the root document and follow
// the URL templates it and the namespace documents return.
//
// HTTP Considerations
//
// Only GET and HEAD are supported.  Clients should use the standard
// HTTP Accept: header to request a format.  See "MIME Types" below.
//
// This interface does not (currently) support HTTP caching or
// authentication headers.
//
// MIME Types
//
// This interface understands MIME types as follows:
//
//     application/vnd.diffeo.locator.v1+json
//
// JSON representation of version 1 of this interface.
//
//     application/vnd.diffeo.locator+json
//     application/json
//     text/json
//
// JSON representation of latest version of this interface.
//
// URL Scheme
//
// Namespaces are addressed by name.  Everything inside a namespace is
// addressed by locator: a list resource takes an optional "locator"
// query parameter, and a single-item resource takes a locator as its
// last path component.  The locator "name:bar" in the path of
// /namespace/foo/work_spec/name:bar selects the work spec "bar".  If a
// name or locator is not URL-safe printable ASCII, it must be base64
// encoded using the URL-safe alphabet (RFC 4648 section 5), with no
// padding, and adding an additional - at the front:
// /namespace/-Zm9v is the same resource as /namespace/foo.
// Correspondingly, a single - means "empty".
//
// List resources return one page of results.  The page carries
// next_href and prev_href links whose locators have their start and
// count dimensions adjusted.
//
// Errors map to HTTP status codes: a malformed or unknown locator is
// 400 Bad Request, an item locator that selects nothing is 404 Not
// Found, and one that selects several items is 500.
//
// The following URLs are defined:
//
//     /
//     /namespace
//     /namespace/{namespace}
//     /namespace/{namespace}/summary
//     /namespace/{namespace}/work_spec{?locator}
//     /namespace/{namespace}/work_spec/{locator}
//     /namespace/{namespace}/work_unit{?locator}
//     /namespace/{namespace}/work_unit/{locator}
//     /namespace/{namespace}/worker{?locator}
//     /namespace/{namespace}/worker/{locator}
//     /namespace/{namespace}/worker/{worker}/children{?locator}
package restserver
