// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains a REST skeleton framework.
//
// The bulk of this is dealing with HTTP content type negotiation, and
// providing a standard way to produce output values.  Every resource
// here is read-only, so only GET and HEAD reach a handler function.

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/diffeo/go-locator/restdata"
	"github.com/sirupsen/logrus"
)

var typeMap = map[string]string{
	"text/json":              restdata.V1JSONMediaType,
	"application/json":       restdata.V1JSONMediaType,
	restdata.JSONMediaType:   restdata.V1JSONMediaType,
	restdata.V1JSONMediaType: restdata.V1JSONMediaType,
}

// errBadAccept is returned from negotiateResponse() if the Accept:
// header is malformed (and no more specific error applies).
var errBadAccept = errors.New("Invalid Accept: header")

// errNotAcceptable is returned from negotiateResponse() if the Accept:
// header does not mention any media types we can actually return.
type errNotAcceptable struct{}

func (e errNotAcceptable) Error() string {
	return "No acceptable representation for response"
}

func (e errNotAcceptable) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// errMethodNotAllowed is used within the resourceHandler implementation
// to flag an error if a particular HTTP method is not allowed.  This
// corresponds exactly to the 405 Method Not Allowed HTTP status code.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

type resourceHandler struct {
	// Context reads an HTTP request and produces a context object.
	Context func(req *http.Request) (*requestContext, error)

	// Get returns a representation of the object.
	Get func(*requestContext) (interface{}, error)

	// Log receives a line for every failed request, and for every
	// request at all if LogRequests is set.
	Log         logrus.FieldLogger
	LogRequests bool
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		ctx          *requestContext
		out          interface{}
		err          error
		status       int
		responseType string
	)
	log := h.Log.WithFields(logrus.Fields{
		"method": req.Method,
		"path":   req.URL.Path,
		"query":  req.URL.RawQuery,
	})

	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			response := restdata.ErrorResponse{}
			response.FromPanic(recovered)
			log.WithField("stack", response.Stack).Error(response.Message)
			resp.Header().Set("Content-Type", restdata.V1JSONMediaType)
			resp.WriteHeader(http.StatusInternalServerError)
			_ = restdata.Encode(resp, response)
		}
	}()

	// Start by trying to come up with a response type.  This
	// determines what format an error message could be sent back
	// as.
	responseType, err = negotiateResponse(req)
	if err != nil {
		// Gotta pick something
		responseType = restdata.V1JSONMediaType
		if _, hasStatus := err.(restdata.ErrorStatus); !hasStatus {
			err = restdata.ErrBadRequest{Err: err}
		}
	}

	// Get bits from URL parameters
	if err == nil {
		ctx, err = h.Context(req)
	}

	// Actually call the handler method
	if err == nil {
		switch req.Method {
		case "GET", "HEAD":
			out, err = h.Get(ctx)
		default:
			err = errMethodNotAllowed{Method: req.Method}
		}
	}

	// Fix up the final result based on what we know.
	if err != nil {
		status = restdata.StatusOf(err)
		errResp := restdata.ErrorResponse{Error: "error"}
		errResp.FromError(err)
		out = errResp
		entry := log.WithFields(logrus.Fields{
			"status": status,
			"error":  errResp.Error,
		})
		if status >= http.StatusInternalServerError {
			entry.Warn(errResp.Message)
		} else {
			entry.Info(errResp.Message)
		}
	} else {
		status = http.StatusOK
		if h.LogRequests {
			log.WithField("status", status).Debug("request")
		}
	}
	if req.Method == "HEAD" {
		out = nil
	}

	if _, understood := typeMap[responseType]; !understood {
		// We shouldn't get here, because it implies response
		// type negotiation failed...but here we are
		status = http.StatusInternalServerError
		out = restdata.ErrorResponse{Error: "error", Message: "Invalid response type " + responseType}
		responseType = restdata.V1JSONMediaType
	}

	// Actually send the response
	resp.Header().Set("Content-Type", responseType)
	resp.WriteHeader(status)
	if out != nil {
		if err := restdata.Encode(resp, out); err != nil {
			log.WithError(err).Warn("writing response")
		}
	}
}

// mediaRange is one parsed entry of an Accept: header.
type mediaRange struct {
	mediaType string
	q         float64
}

// rank orders media ranges of equal quality: a type we produce beats
// a partial wildcard, which beats */*.  Types we cannot produce rank
// below everything.
func (r mediaRange) rank() int {
	switch r.mediaType {
	case "*/*":
		return 0
	case "text/*", "application/*":
		return 1
	}
	if _, known := typeMap[r.mediaType]; known {
		return 2
	}
	return -1
}

// parseAccept splits an Accept: header into media ranges, in order.
// An empty header accepts anything.
func parseAccept(accept string) ([]mediaRange, error) {
	if accept == "" {
		return []mediaRange{{"*/*", 1.0}}, nil
	}
	var ranges []mediaRange
	for _, part := range strings.Split(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		r := mediaRange{mediaType: mediaType, q: 1.0}
		if qStr, haveQ := params["q"]; haveQ {
			if r.q, err = strconv.ParseFloat(qStr, 64); err != nil {
				return nil, err
			}
			if r.q < 0.0 || r.q > 1.0 {
				return nil, errBadAccept
			}
		}
		ranges = append(ranges, r)
	}
	return ranges, nil
}

// negotiateResponse returns a supported MIME type for the response
// body, following the path laid out in RFC 7231 section 5.3.  The
// highest quality wins; among equal qualities the best rank wins, and
// among equal ranks the first listed.
func negotiateResponse(req *http.Request) (string, error) {
	ranges, err := parseAccept(req.Header.Get("Accept"))
	if err != nil {
		return "", err
	}
	var best mediaRange
	bestRank := -1
	for _, r := range ranges {
		rank := r.rank()
		if rank < 0 || r.q == 0.0 {
			continue
		}
		if r.q > best.q || (r.q == best.q && rank > bestRank) {
			best, bestRank = r, rank
		}
	}
	switch best.mediaType {
	case "":
		return "", errNotAcceptable{}
	case "*/*", "application/*":
		return restdata.V1JSONMediaType, nil
	case "text/*":
		return "text/json", nil
	default:
		return best.mediaType, nil
	}
}
