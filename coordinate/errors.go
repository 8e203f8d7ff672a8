// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package coordinate

import (
	"errors"
	"fmt"
)

// ErrNoWorkSpecName is returned as an error from functions that
// create a work spec from a map, but cannot find "name" in the map.
var ErrNoWorkSpecName = errors.New("No 'name' key in work spec")

// ErrBadWorkSpecName is returned as an error from functions that
// create a work spec from a map, but find a "name" key that is not a
// string.
var ErrBadWorkSpecName = errors.New("Work spec 'name' must be a string")

// ErrNotPending is returned as an error from WorkUnit methods that try
// to complete a work unit that is not pending.
var ErrNotPending = errors.New("Work unit is not pending")

// ErrNotAvailable is returned from Worker.Assign() if the work unit
// is not available.
var ErrNotAvailable = errors.New("Work unit is not available")

// ErrWorkerCycle is returned from Worker.SetParent() if the worker
// would become its own ancestor.
var ErrWorkerCycle = errors.New("Worker cannot be its own ancestor")

// ErrWrongBackend is returned from functions that take two different
// coordinate objects and combine them if the two objects come from
// different backends.  This is impossible in ordinary usage.
var ErrWrongBackend = errors.New("Cannot combine coordinate objects from different backends")

// ErrGone is returned when an object has been destroyed, for instance
// a work unit of a destroyed work spec.
var ErrGone = errors.New("Object has been destroyed")

// ErrNoSuchWorkSpec is returned by Namespace.WorkSpec() and similar
// functions that want to look up a work spec, but cannot find it.
type ErrNoSuchWorkSpec struct {
	Name string
}

func (err ErrNoSuchWorkSpec) Error() string {
	return fmt.Sprintf("No such work spec %v", err.Name)
}
