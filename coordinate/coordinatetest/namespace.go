// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package coordinatetest

import (
	"github.com/diffeo/go-locator/coordinate"
)

// TestNamespaces checks that namespaces are created on demand and
// listed.
func (s *Suite) TestNamespaces() {
	ns := s.NewNamespace()
	s.Equal(s.T().Name(), ns.Name())

	again, err := s.Coordinate.Namespace(s.T().Name())
	if s.NoError(err) {
		s.Equal(ns.Name(), again.Name())
	}

	names, err := s.Coordinate.Namespaces()
	if s.NoError(err) {
		s.Contains(names, ns.Name())
	}
}

// TestSpecCreateDestroy creates, lists and destroys work specs.
func (s *Suite) TestSpecCreateDestroy() {
	ns := s.NewNamespace()

	_, err := ns.WorkSpec("spec")
	s.Equal(coordinate.ErrNoSuchWorkSpec{Name: "spec"}, err)

	names, err := ns.WorkSpecNames()
	if s.NoError(err) {
		s.Empty(names)
	}

	s.NewWorkSpec(ns, "spec")
	s.NewWorkSpec(ns, "another")
	names, err = ns.WorkSpecNames()
	if s.NoError(err) {
		s.Equal([]string{"another", "spec"}, names)
	}

	spec, err := ns.WorkSpec("spec")
	if s.NoError(err) {
		s.Equal("spec", spec.Name())
	}

	err = ns.DestroyWorkSpec("spec")
	s.NoError(err)
	_, err = ns.WorkSpec("spec")
	s.Equal(coordinate.ErrNoSuchWorkSpec{Name: "spec"}, err)
	_, err = spec.Data()
	s.Equal(coordinate.ErrGone, err)

	err = ns.DestroyWorkSpec("spec")
	s.Equal(coordinate.ErrNoSuchWorkSpec{Name: "spec"}, err)
}

// TestSetWorkSpecErrors checks the work spec name requirements.
func (s *Suite) TestSetWorkSpecErrors() {
	ns := s.NewNamespace()

	_, err := ns.SetWorkSpec(map[string]interface{}{})
	s.Equal(coordinate.ErrNoWorkSpecName, err)

	_, err = ns.SetWorkSpec(map[string]interface{}{"name": 4})
	s.Equal(coordinate.ErrBadWorkSpecName, err)
}

// TestSummarize checks namespace and global summaries.
func (s *Suite) TestSummarize() {
	ns := s.NewNamespace()
	spec := s.NewWorkSpec(ns, "spec")
	s.NewWorkUnit(spec, "a", 0)
	s.NewWorkUnit(spec, "b", 0)
	unit := s.NewWorkUnit(spec, "c", 0)
	worker, err := ns.Worker("worker")
	s.Require().NoError(err)
	s.Require().NoError(worker.Assign(unit))

	summary, err := ns.Summarize()
	if s.NoError(err) {
		summary.Sort()
		s.Equal(coordinate.Summary{
			{Namespace: ns.Name(), WorkSpec: "spec", Status: coordinate.AvailableUnit, Count: 2},
			{Namespace: ns.Name(), WorkSpec: "spec", Status: coordinate.PendingUnit, Count: 1},
		}, summary)
	}

	summary, err = s.Coordinate.Summarize()
	if s.NoError(err) {
		var mine coordinate.Summary
		for _, record := range summary {
			if record.Namespace == ns.Name() {
				mine = append(mine, record)
			}
		}
		s.Equal(map[coordinate.WorkUnitStatus]int{
			coordinate.AvailableUnit: 2,
			coordinate.PendingUnit:   1,
		}, mine.ByStatus())
	}
}
