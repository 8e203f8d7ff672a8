// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/coordinate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFixture = `
namespaces:
  - name: ""
    workers:
      - name: parent
        mode: run
      - name: child
        parent: parent
      - name: gone
        inactive: true
    work_specs:
      - data: {name: ingest, priority: 3, then: index}
        work_units:
          - name: u1
            priority: 1
            data: {source: {url: "http://example.com/"}}
            status: pending
            worker: child
            age: 10m
          - name: u2
            status: finished
            worker: child
            age: 5m
          - name: u3
      - data: {name: index, disabled: "true"}
`

func TestLoadFixture(t *testing.T) {
	clk := clock.NewMock()
	c := NewWithClock(clk)
	require.NoError(t, LoadFixture(c, strings.NewReader(testFixture)))

	ns, err := c.Namespace("")
	require.NoError(t, err)

	names, err := ns.WorkSpecNames()
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"index", "ingest"}, names)
	}

	spec, err := ns.WorkSpec("ingest")
	require.NoError(t, err)
	meta, err := spec.Meta()
	if assert.NoError(t, err) {
		assert.Equal(t, 3, meta.Priority)
		assert.Equal(t, "index", meta.NextWorkSpecName)
	}

	index, err := ns.WorkSpec("index")
	require.NoError(t, err)
	meta, err = index.Meta()
	if assert.NoError(t, err) {
		assert.True(t, meta.Paused)
	}

	units, err := spec.WorkUnits(coordinate.WorkUnitQuery{})
	require.NoError(t, err)
	if assert.Len(t, units, 3) {
		assert.Equal(t, "u3", units[0].Name())
		assert.Equal(t, "u2", units[1].Name())
		assert.Equal(t, "u1", units[2].Name())
		assert.True(t, clk.Now().Add(-10*time.Minute).Equal(units[2].Created()))
	}

	u1, err := spec.WorkUnit("u1")
	require.NoError(t, err)
	data, err := u1.Data()
	if assert.NoError(t, err) {
		url, ok := coordinate.DataValue(data, "source.url")
		assert.True(t, ok)
		assert.Equal(t, "http://example.com/", url)
	}
	status, err := u1.Status()
	if assert.NoError(t, err) {
		assert.Equal(t, coordinate.PendingUnit, status)
	}

	child, err := ns.Worker("child")
	require.NoError(t, err)
	parent, err := child.Parent()
	if assert.NoError(t, err) && assert.NotNil(t, parent) {
		assert.Equal(t, "parent", parent.Name())
		mode, err := parent.Mode()
		assert.NoError(t, err)
		assert.Equal(t, "run", mode)
	}
	active, err := child.ActiveWorkUnits()
	if assert.NoError(t, err) && assert.Len(t, active, 1) {
		assert.Equal(t, "u1", active[0].Name())
	}

	gone, err := ns.Worker("gone")
	require.NoError(t, err)
	isActive, err := gone.Active()
	if assert.NoError(t, err) {
		assert.False(t, isActive)
	}
}

func TestLoadFixtureErrors(t *testing.T) {
	for name, text := range map[string]string{
		"bad yaml":    "namespaces: [",
		"no name":     "namespaces: [{work_specs: [{data: {priority: 1}}]}]",
		"bad status":  "namespaces: [{work_specs: [{data: {name: s}, work_units: [{name: u, status: lost}]}]}]",
		"no worker":   "namespaces: [{work_specs: [{data: {name: s}, work_units: [{name: u, status: failed}]}]}]",
		"bad age":     "namespaces: [{work_specs: [{data: {name: s}, work_units: [{name: u, age: old}]}]}]",
		"worker loop": "namespaces: [{workers: [{name: a, parent: a}]}]",
	} {
		t.Run(name, func(t *testing.T) {
			err := LoadFixture(New(), strings.NewReader(text))
			assert.Error(t, err)
		})
	}
}

func TestStringKeys(t *testing.T) {
	in := map[interface{}]interface{}{
		"a": []interface{}{map[interface{}]interface{}{1: "x"}},
	}
	assert.Equal(t, map[string]interface{}{
		"a": []interface{}{map[string]interface{}{"1": "x"}},
	}, StringKeys(in))
}
