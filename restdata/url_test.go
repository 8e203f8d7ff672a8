// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathSegments(t *testing.T) {
	tests := []struct{ plain, encoded string }{
		{"foo", "foo"},
		{"", "-"},
		{"-", "-LQ"},
		{"\u0000", "-AA"},
		{"name:u1", "name:u1"},
		{"start:5", "start:5"},
		{"a unit", "-YSB1bml0"},
		{"workSpec:(name:s),name:u", "-d29ya1NwZWM6KG5hbWU6cyksbmFtZTp1"},
	}
	for _, test := range tests {
		assert.Equal(t, test.encoded, EncodePathSegment(test.plain), "%q", test.plain)
		dec, err := DecodePathSegment(test.encoded)
		if assert.NoError(t, err, "%q", test.encoded) {
			assert.Equal(t, test.plain, dec)
		}
	}
}

func TestBadPathSegment(t *testing.T) {
	_, err := DecodePathSegment("-!")
	if assert.Error(t, err) {
		assert.IsType(t, ErrBadRequest{}, err)
		assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	}
}
