// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package coordinatetest

import (
	"time"

	"github.com/diffeo/go-locator/coordinate"
)

// TestSpecData checks that work spec data and metadata round-trip.
func (s *Suite) TestSpecData() {
	ns := s.NewNamespace()
	data := map[string]interface{}{
		"name":       "spec",
		"priority":   5,
		"disabled":   true,
		"continuous": true,
		"then":       "next",
	}
	spec, err := ns.SetWorkSpec(data)
	s.Require().NoError(err)

	actual, err := spec.Data()
	if s.NoError(err) {
		s.Equal(data, actual)
	}

	meta, err := spec.Meta()
	if s.NoError(err) {
		s.Equal(5, meta.Priority)
		s.True(meta.Paused)
		s.True(meta.Continuous)
		s.Equal("next", meta.NextWorkSpecName)
	}

	// updating the spec replaces its data and metadata
	_, err = ns.SetWorkSpec(map[string]interface{}{"name": "spec"})
	s.NoError(err)
	meta, err = spec.Meta()
	if s.NoError(err) {
		s.Equal(0, meta.Priority)
		s.False(meta.Paused)
	}
}

// TestWorkUnitsNewestFirst checks the order of WorkSpec.WorkUnits().
func (s *Suite) TestWorkUnitsNewestFirst() {
	ns := s.NewNamespace()
	spec := s.NewWorkSpec(ns, "spec")
	s.NewWorkUnit(spec, "old", 0)
	s.Clock.Add(time.Minute)
	s.NewWorkUnit(spec, "b", 0)
	s.NewWorkUnit(spec, "a", 0)
	s.Clock.Add(time.Minute)
	s.NewWorkUnit(spec, "new", 0)

	units, err := spec.WorkUnits(coordinate.WorkUnitQuery{})
	if s.NoError(err) {
		s.Equal([]string{"new", "a", "b", "old"}, UnitNames(units))
	}

	units, err = spec.WorkUnits(coordinate.WorkUnitQuery{Limit: 2})
	if s.NoError(err) {
		s.Equal([]string{"new", "a"}, UnitNames(units))
	}
}

// TestWorkUnitQueryStatus checks selecting work units by status.
func (s *Suite) TestWorkUnitQueryStatus() {
	ns := s.NewNamespace()
	spec := s.NewWorkSpec(ns, "spec")
	s.NewWorkUnit(spec, "available", 0)
	pending := s.NewWorkUnit(spec, "pending", 0)
	finished := s.NewWorkUnit(spec, "finished", 0)
	worker, err := ns.Worker("worker")
	s.Require().NoError(err)
	s.Require().NoError(worker.Assign(pending))
	s.Require().NoError(worker.Assign(finished))
	s.Require().NoError(finished.Finish(nil))

	units, err := spec.WorkUnits(coordinate.WorkUnitQuery{
		Statuses: []coordinate.WorkUnitStatus{coordinate.PendingUnit, coordinate.FinishedUnit},
	})
	if s.NoError(err) {
		s.Equal([]string{"finished", "pending"}, UnitNames(units))
	}

	units, err = spec.WorkUnits(coordinate.WorkUnitQuery{
		Statuses: []coordinate.WorkUnitStatus{coordinate.AnyStatus},
	})
	if s.NoError(err) {
		s.Len(units, 3)
	}

	counts, err := spec.CountWorkUnitStatus()
	if s.NoError(err) {
		s.Equal(map[coordinate.WorkUnitStatus]int{
			coordinate.AvailableUnit: 1,
			coordinate.PendingUnit:   1,
			coordinate.FinishedUnit:  1,
		}, counts)
	}
}
