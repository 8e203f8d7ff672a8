// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package coordinatetest

import (
	"github.com/diffeo/go-locator/coordinate"
)

// TestWorkUnitBasics checks the immutable and mutable fields of a new
// work unit.
func (s *Suite) TestWorkUnitBasics() {
	ns := s.NewNamespace()
	spec := s.NewWorkSpec(ns, "spec")
	now := s.Clock.Now()
	unit, err := spec.AddWorkUnit("unit", map[string]interface{}{"k": "v"}, 2.5)
	s.Require().NoError(err)

	s.Equal("unit", unit.Name())
	s.Equal("spec", unit.WorkSpec().Name())
	s.True(now.Equal(unit.Created()))
	s.UnitStatus(coordinate.AvailableUnit, unit)

	data, err := unit.Data()
	if s.NoError(err) {
		s.Equal(map[string]interface{}{"k": "v"}, data)
	}

	priority, err := unit.Priority()
	if s.NoError(err) {
		s.Equal(2.5, priority)
	}
	s.NoError(unit.SetPriority(-1))
	priority, err = unit.Priority()
	if s.NoError(err) {
		s.Equal(-1.0, priority)
	}

	worker, err := unit.Worker()
	if s.NoError(err) {
		s.Nil(worker)
	}

	found, err := spec.WorkUnit("unit")
	if s.NoError(err) && s.NotNil(found) {
		s.Equal("unit", found.Name())
	}
	found, err = spec.WorkUnit("missing")
	if s.NoError(err) {
		s.Nil(found)
	}
}

// TestWorkUnitLifecycle walks a work unit through assignment and
// completion.
func (s *Suite) TestWorkUnitLifecycle() {
	ns := s.NewNamespace()
	spec := s.NewWorkSpec(ns, "spec")
	good := s.NewWorkUnit(spec, "good", 0)
	bad := s.NewWorkUnit(spec, "bad", 0)
	worker, err := ns.Worker("worker")
	s.Require().NoError(err)

	s.Equal(coordinate.ErrNotPending, good.Finish(nil))

	s.NoError(worker.Assign(good))
	s.NoError(worker.Assign(bad))
	s.Equal(coordinate.ErrNotAvailable, worker.Assign(good))
	s.UnitStatus(coordinate.PendingUnit, good)

	active, err := worker.ActiveWorkUnits()
	if s.NoError(err) {
		s.Equal([]string{"bad", "good"}, UnitNames(active))
	}

	s.NoError(good.Finish(map[string]interface{}{"output": "yes"}))
	s.NoError(bad.Fail(nil))
	s.UnitStatus(coordinate.FinishedUnit, good)
	s.UnitStatus(coordinate.FailedUnit, bad)
	s.Equal(coordinate.ErrNotPending, bad.Fail(nil))

	data, err := good.Data()
	if s.NoError(err) {
		s.Equal(map[string]interface{}{"output": "yes"}, data)
	}

	active, err = worker.ActiveWorkUnits()
	if s.NoError(err) {
		s.Empty(active)
	}

	last, err := good.Worker()
	if s.NoError(err) && s.NotNil(last) {
		s.Equal("worker", last.Name())
	}
}

// TestWorkUnitReplace checks that re-adding a pending work unit takes
// it away from its worker.
func (s *Suite) TestWorkUnitReplace() {
	ns := s.NewNamespace()
	spec := s.NewWorkSpec(ns, "spec")
	unit := s.NewWorkUnit(spec, "unit", 0)
	worker, err := ns.Worker("worker")
	s.Require().NoError(err)
	s.Require().NoError(worker.Assign(unit))

	unit = s.NewWorkUnit(spec, "unit", 0)
	s.UnitStatus(coordinate.AvailableUnit, unit)
	active, err := worker.ActiveWorkUnits()
	if s.NoError(err) {
		s.Empty(active)
	}
}
