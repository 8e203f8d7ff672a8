// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"encoding/base64"
	"fmt"
)

// A path segment carries a namespace name, a worker name, or the text
// of a locator.  Text made only of RFC 3986 unreserved characters and
// ":" goes into the URL unchanged; anything else, including locators
// with sub-locators, is written as "-" followed by unpadded URL-safe
// base64.

func segmentSafe(text string) bool {
	if text == "" || text[0] == '-' {
		return false
	}
	for _, c := range text {
		switch {
		case c == '-', c == '.', c == '_', c == ':':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// EncodePathSegment returns text in a form that can be placed in a
// single URL path segment.
func EncodePathSegment(text string) string {
	if segmentSafe(text) {
		return text
	}
	return "-" + base64.RawURLEncoding.EncodeToString([]byte(text))
}

// DecodePathSegment undoes EncodePathSegment.  A segment that starts
// with "-" but is not valid base64 produces ErrBadRequest.
func DecodePathSegment(segment string) (string, error) {
	if segment == "" || segment[0] != '-' {
		return segment, nil
	}
	bytes, err := base64.RawURLEncoding.DecodeString(segment[1:])
	if err != nil {
		return "", ErrBadRequest{Err: fmt.Errorf("bad path segment %q: %v", segment, err)}
	}
	return string(bytes), nil
}
