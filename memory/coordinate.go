// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process, in-memory implementation of
// Coordinate.  There is no persistence on this job queue, nor is
// there any automatic sharing.  The entire system is behind a single
// global semaphore to protect against concurrent updates; in some
// cases this can limit performance in the name of correctness.
//
// This is mostly intended as a simple reference implementation of
// Coordinate that can be used for testing, including in-process
// testing of higher-level components, and for serving fixtures.
package memory

import (
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/coordinate"
)

// New creates a new Coordinate interface that operates purely in
// memory.
func New() coordinate.Coordinate {
	return NewWithClock(clock.New())
}

// NewWithClock creates a new Coordinate interface that operates
// purely in memory, with an alternate time source.
func NewWithClock(clk clock.Clock) coordinate.Coordinate {
	return &memCoordinate{
		namespaces: make(map[string]*namespace),
		clock:      clk,
	}
}

// coordinable is a common interface for objects that need to take the
// global lock on the Coordinate state.
type coordinable interface {
	// Coordinate returns a pointer to the coordinate object
	// at the root of this object tree.
	Coordinate() *memCoordinate
}

// globalLock locks the coordinate object at the root of the object
// tree.  Pair this with globalUnlock, as
//
//     globalLock(self)
//     defer globalUnlock(self)
func globalLock(c coordinable) {
	c.Coordinate().sem.Lock()
}

// globalUnlock unlocks the coordinate object at the root of the
// object tree.
func globalUnlock(c coordinable) {
	c.Coordinate().sem.Unlock()
}

// Coordinate wrapper type:

type memCoordinate struct {
	namespaces map[string]*namespace
	sem        sync.Mutex
	clock      clock.Clock
}

func (c *memCoordinate) Namespace(namespace string) (coordinate.Namespace, error) {
	globalLock(c)
	defer globalUnlock(c)

	ns := c.namespaces[namespace]
	if ns == nil {
		ns = newNamespace(c, namespace)
		c.namespaces[namespace] = ns
	}
	return ns, nil
}

func (c *memCoordinate) Namespaces() ([]string, error) {
	globalLock(c)
	defer globalUnlock(c)

	names := make([]string, 0, len(c.namespaces))
	for name := range c.namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (c *memCoordinate) Summarize() (coordinate.Summary, error) {
	globalLock(c)
	defer globalUnlock(c)

	var result coordinate.Summary
	for _, ns := range c.namespaces {
		result = append(result, ns.summarize()...)
	}
	return result, nil
}

func (c *memCoordinate) Coordinate() *memCoordinate {
	return c
}
