// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package coordinatetest

import (
	"time"

	"github.com/diffeo/go-locator/coordinate"
)

// TestWorkerAncestry does basic tests on worker parents and children.
func (s *Suite) TestWorkerAncestry() {
	ns := s.NewNamespace()

	parent, err := ns.Worker("parent")
	s.Require().NoError(err)

	worker, err := parent.Parent()
	if s.NoError(err) {
		s.Nil(worker)
	}
	kids, err := parent.Children()
	if s.NoError(err) {
		s.Empty(kids)
	}

	child, err := ns.Worker("child")
	s.Require().NoError(err)
	s.NoError(child.SetParent(parent))
	other, err := ns.Worker("another")
	s.Require().NoError(err)
	s.NoError(other.SetParent(parent))

	kids, err = parent.Children()
	if s.NoError(err) {
		s.Equal([]string{"another", "child"}, WorkerNames(kids))
	}
	worker, err = child.Parent()
	if s.NoError(err) && s.NotNil(worker) {
		s.Equal("parent", worker.Name())
	}

	workers, err := ns.Workers()
	if s.NoError(err) {
		s.Equal([]string{"another", "child", "parent"}, WorkerNames(workers))
	}
}

// TestWorkerAdoption hands a child worker to a new parent.
func (s *Suite) TestWorkerAdoption() {
	ns := s.NewNamespace()
	child, err := ns.Worker("child")
	s.Require().NoError(err)
	oldParent, err := ns.Worker("old")
	s.Require().NoError(err)
	newParent, err := ns.Worker("new")
	s.Require().NoError(err)

	s.NoError(child.SetParent(oldParent))
	s.NoError(child.SetParent(newParent))

	kids, err := oldParent.Children()
	if s.NoError(err) {
		s.Empty(kids)
	}
	kids, err = newParent.Children()
	if s.NoError(err) {
		s.Equal([]string{"child"}, WorkerNames(kids))
	}

	s.NoError(child.SetParent(nil))
	kids, err = newParent.Children()
	if s.NoError(err) {
		s.Empty(kids)
	}
}

// TestWorkerCycle checks that a worker cannot become its own
// ancestor.
func (s *Suite) TestWorkerCycle() {
	ns := s.NewNamespace()
	a, err := ns.Worker("a")
	s.Require().NoError(err)
	b, err := ns.Worker("b")
	s.Require().NoError(err)

	s.NoError(b.SetParent(a))
	s.Equal(coordinate.ErrWorkerCycle, a.SetParent(b))
	s.Equal(coordinate.ErrWorkerCycle, a.SetParent(a))
}

// TestWorkerState checks mode, activity and last-seen tracking.
func (s *Suite) TestWorkerState() {
	ns := s.NewNamespace()
	created := s.Clock.Now()
	worker, err := ns.Worker("worker")
	s.Require().NoError(err)

	active, err := worker.Active()
	if s.NoError(err) {
		s.True(active)
	}
	seen, err := worker.LastSeen()
	if s.NoError(err) {
		s.True(created.Equal(seen))
	}

	s.Clock.Add(time.Hour)
	s.NoError(worker.SetMode("idle"))
	s.NoError(worker.SetActive(false))

	mode, err := worker.Mode()
	if s.NoError(err) {
		s.Equal("idle", mode)
	}
	active, err = worker.Active()
	if s.NoError(err) {
		s.False(active)
	}
	seen, err = worker.LastSeen()
	if s.NoError(err) {
		s.True(created.Add(time.Hour).Equal(seen))
	}
}
