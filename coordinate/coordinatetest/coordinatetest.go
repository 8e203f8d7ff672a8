// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package coordinatetest provides generic functional tests for the
// Coordinate interface.  A typical backend test module needs to wrap
// Suite to create its backend:
//
//     package mybackend
//
//     import (
//             "testing"
//             "github.com/diffeo/go-locator/coordinate/coordinatetest"
//             "github.com/stretchr/testify/suite"
//     )
//
//     // Suite is the per-backend generic test suite.
//     type Suite struct{
//             coordinatetest.Suite
//     }
//
//     // SetupSuite does global setup for the test suite.
//     func (s *Suite) SetupSuite() {
//             s.Suite.SetupSuite()
//             s.Coordinate = NewWithClock(s.Clock)
//     }
//
//     // TestCoordinate runs the Coordinate generic tests.
//     func TestCoordinate(t *testing.T) {
//             suite.Run(t, &Suite{})
//     }
package coordinatetest

import (
	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/coordinate"
	"github.com/stretchr/testify/suite"
)

// Suite is the generic Coordinate backend test suite.
type Suite struct {
	suite.Suite

	// Clock contains the alternate time source to be used in tests.  It
	// is pre-initialized to a mock clock.
	Clock *clock.Mock

	// Coordinate contains the top-level interface to the backend under
	// test.  It is set by importing packages.
	Coordinate coordinate.Coordinate
}

// SetupSuite does one-time initialization for the test suite.
func (s *Suite) SetupSuite() {
	s.Clock = clock.NewMock()
}

// NewNamespace creates a namespace with the name of the running test,
// so that tests sharing a backend do not see each other's state.
func (s *Suite) NewNamespace() coordinate.Namespace {
	ns, err := s.Coordinate.Namespace(s.T().Name())
	s.Require().NoError(err)
	return ns
}

// NewWorkSpec creates a work spec with a given name and no other
// data.
func (s *Suite) NewWorkSpec(ns coordinate.Namespace, name string) coordinate.WorkSpec {
	spec, err := ns.SetWorkSpec(map[string]interface{}{"name": name})
	s.Require().NoError(err)
	return spec
}

// NewWorkUnit adds a work unit with empty data.
func (s *Suite) NewWorkUnit(spec coordinate.WorkSpec, name string, priority float64) coordinate.WorkUnit {
	unit, err := spec.AddWorkUnit(name, map[string]interface{}{}, priority)
	s.Require().NoError(err)
	return unit
}

// UnitStatus checks that a work unit has an expected status.
func (s *Suite) UnitStatus(expected coordinate.WorkUnitStatus, unit coordinate.WorkUnit) {
	actual, err := unit.Status()
	if s.NoError(err) {
		s.Equal(expected, actual, "work unit %v", unit.Name())
	}
}

// UnitNames returns the names of a list of work units.
func UnitNames(units []coordinate.WorkUnit) []string {
	names := make([]string, len(units))
	for i, unit := range units {
		names[i] = unit.Name()
	}
	return names
}

// WorkerNames returns the names of a list of workers.
func WorkerNames(workers []coordinate.Worker) []string {
	names := make([]string, len(workers))
	for i, worker := range workers {
		names[i] = worker.Name()
	}
	return names
}
