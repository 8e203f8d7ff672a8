// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"io"
	"mime"
	"reflect"

	"github.com/ugorji/go/codec"
)

// Decode tries to decode a restdata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return err
	}

	switch mediaType {
	case "text/json", "application/json", JSONMediaType, V1JSONMediaType:
		decoder := codec.NewDecoder(r, jsonHandle())
		return decoder.Decode(out)
	default:
		return ErrUnsupportedMediaType{Type: mediaType}
	}
}

// Encode writes the JSON representation of a restdata object.
func Encode(w io.Writer, in interface{}) error {
	return codec.NewEncoder(w, jsonHandle()).Encode(in)
}

// nested objects in data dictionaries decode as string-keyed maps
var mapStringIntfTyp = reflect.TypeOf(map[string]interface{}(nil))

func jsonHandle() *codec.JsonHandle {
	h := &codec.JsonHandle{}
	h.MapType = mapStringIntfTyp
	return h
}
