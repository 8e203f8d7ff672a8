// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"

	"github.com/diffeo/go-locator/coordinate"
	"github.com/diffeo/go-locator/locator"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound wraps an error that should produce a 404 Not Found
// response.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e ErrNotFound) Unwrap() error { return e.Err }

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int { return http.StatusNotFound }

// ErrBadRequest wraps an error in HTTP headers or URL parameters, which
// produces a 400 Bad Request response.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e ErrBadRequest) Unwrap() error { return e.Err }

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int { return http.StatusBadRequest }

// StatusOf returns the HTTP status code an error should produce.  A
// locator.ErrBadRequest anywhere in the chain gives 400, a
// locator.ErrNotFound or coordinate.ErrNoSuchWorkSpec gives 404, and
// otherwise the outermost ErrorStatus wins, defaulting to 500.
func StatusOf(err error) int {
	var (
		badRequest locator.ErrBadRequest
		notFound   locator.ErrNotFound
		noSpec     coordinate.ErrNoSuchWorkSpec
		withStatus ErrorStatus
	)
	switch {
	case errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.As(err, &noSpec):
		return http.StatusNotFound
	case errors.As(err, &withStatus):
		return withStatus.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// sentinelErrors are the Coordinate error values that travel by name.
var sentinelErrors = map[string]error{
	"ErrNoWorkSpecName":  coordinate.ErrNoWorkSpecName,
	"ErrBadWorkSpecName": coordinate.ErrBadWorkSpecName,
	"ErrNotPending":      coordinate.ErrNotPending,
	"ErrNotAvailable":    coordinate.ErrNotAvailable,
	"ErrWorkerCycle":     coordinate.ErrWorkerCycle,
	"ErrWrongBackend":    coordinate.ErrWrongBackend,
	"ErrGone":            coordinate.ErrGone,
}

// messageErrors rebuild locator errors from their name and message.
var messageErrors = map[string]func(string) error{
	"ErrBadRequest": func(m string) error { return locator.ErrBadRequest{Message: m} },
	"ErrNotFound":   func(m string) error { return locator.ErrNotFound{Message: m} },
	"ErrOperation":  func(m string) error { return locator.ErrOperation{Message: m} },
}

// FromError fills in e from an error.  Wrappers from this package are
// looked through, and well-known locator and Coordinate errors get a
// specific e.Error code that ToError can reverse.
func (e *ErrorResponse) FromError(err error) {
	e.Message = err.Error()
	for name, sentinel := range sentinelErrors {
		if errors.Is(err, sentinel) {
			e.Error = name
			return
		}
	}
	var (
		noSpec     coordinate.ErrNoSuchWorkSpec
		badRequest locator.ErrBadRequest
		notFound   locator.ErrNotFound
		operation  locator.ErrOperation
	)
	switch {
	case errors.As(err, &noSpec):
		e.Error = "ErrNoSuchWorkSpec"
		e.Value = noSpec.Name
	case errors.As(err, &badRequest):
		e.Error = "ErrBadRequest"
		e.Message = badRequest.Message
	case errors.As(err, &notFound):
		e.Error = "ErrNotFound"
		e.Message = notFound.Message
	case errors.As(err, &operation):
		e.Error = "ErrOperation"
		e.Message = operation.Message
	}
}

// ToError converts e back to a locator or Coordinate error, if that is
// possible.  If not, returns a plain error with e.Message text.
func (e *ErrorResponse) ToError() error {
	if sentinel, ok := sentinelErrors[e.Error]; ok {
		return sentinel
	}
	if build, ok := messageErrors[e.Error]; ok {
		return build(e.Message)
	}
	if e.Error == "ErrNoSuchWorkSpec" {
		return coordinate.ErrNoSuchWorkSpec{Name: e.Value}
	}
	return errors.New(e.Message)
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//     defer func() {
//         if obj := recover(); obj != nil {
//             resp := restdata.ErrorResponse{}
//             resp.FromPanic(obj)
//             // write resp out as makes sense
//         }
//    }
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Error = "panic"
	if recoveredError, isError := obj.(error); isError {
		e.Message = recoveredError.Error()
	} else {
		e.Message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	n := runtime.Stack(stack[:], false)
	e.Stack = string(stack[:n])
}
