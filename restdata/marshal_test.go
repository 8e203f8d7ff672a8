// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/diffeo/go-locator/coordinate"
	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	created := time.Date(2017, time.March, 14, 15, 9, 26, 0, time.UTC)
	in := WorkUnit{
		WorkUnitShort: WorkUnitShort{WorkSpec: "spec", Locator: "workSpec:(name:spec),name:u"},
		Data:          DataDict{"source": map[string]interface{}{"url": "http://a/"}},
		Status:        coordinate.PendingUnit,
		Priority:      2.5,
		Created:       created,
	}
	in.Name = "u"
	assert.NoError(t, Encode(&buf, in))
	assert.Contains(t, buf.String(), `"status":"pending"`)
	assert.Contains(t, buf.String(), `"locator":"workSpec:(name:spec),name:u"`)

	var out WorkUnit
	if assert.NoError(t, Decode(V1JSONMediaType, &buf, &out)) {
		assert.Equal(t, "u", out.Name)
		assert.Equal(t, coordinate.PendingUnit, out.Status)
		assert.Equal(t, 2.5, out.Priority)
		assert.True(t, created.Equal(out.Created), "created %v", out.Created)
		assert.Equal(t, map[string]interface{}{"url": "http://a/"}, out.Data["source"])
	}

	err := Decode("text/plain", &buf, &out)
	assert.Equal(t, ErrUnsupportedMediaType{Type: "text/plain"}, err)
}

func TestDecodeErrorResponse(t *testing.T) {
	var resp ErrorResponse
	body := `{"error":"ErrBadRequest","message":"Unsupported dimension 'x'"}`
	if assert.NoError(t, Decode("application/json; charset=utf-8", strings.NewReader(body), &resp)) {
		assert.Equal(t, "ErrBadRequest", resp.Error)
		assert.Equal(t, "Unsupported dimension 'x'", resp.Message)
	}
	assert.Error(t, Decode(JSONMediaType, strings.NewReader(`{"error":`), &resp))
}
