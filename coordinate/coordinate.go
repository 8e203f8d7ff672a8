// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package coordinate defines the job queue model that locators query:
// namespaces holding work specs, work specs holding work units, and
// workers that perform work units.
//
// In most cases, applications will know of specific implementations of
// this API and will get an implementation of Coordinate or Namespace
// from that implementation.
//
// In general, objects here have a small amount of immutable data
// (a WorkUnit.Name() never changes, for instance) and the accessors
// of these return the value directly.  Accessors to mutable data return
// the value and an error.
package coordinate

import "time"

// Coordinate is the top-level interface to a job queue backend.
type Coordinate interface {
	Summarizable

	// Namespace retrieves a Namespace object for some name.  If
	// no namespace already exists with that name, creates one.
	Namespace(namespace string) (Namespace, error)

	// Namespaces returns the names of all existing namespaces,
	// sorted.
	Namespaces() ([]string, error)
}

// Namespace is a single application's state.  A namespace has an
// immutable name, a collection of work specs, and a collection of
// workers.
type Namespace interface {
	Summarizable

	// Name returns the name of this namespace.  This may be an
	// empty string.
	Name() string

	// SetWorkSpec creates or updates a work spec.  The map may
	// have any string keys and any values, except that it must
	// contain a key "name" with a string value.  On success
	// returns the created (or modified) WorkSpec object.
	SetWorkSpec(data map[string]interface{}) (WorkSpec, error)

	// WorkSpec retrieves a work spec by its name.  If no work
	// spec exists with that name, returns an instance of
	// ErrNoSuchWorkSpec as an error.
	WorkSpec(name string) (WorkSpec, error)

	// WorkSpecNames returns the names of all of the work specs in
	// this namespace, sorted.
	WorkSpecNames() ([]string, error)

	// DestroyWorkSpec destroys a work spec and all of its work
	// units.  If the named work spec does not exist, returns an
	// instance of ErrNoSuchWorkSpec.
	DestroyWorkSpec(name string) error

	// Worker retrieves or creates a Worker object by its name.
	// If no Worker exists yet with the requested name, returns a
	// new active one with no parent.
	Worker(name string) (Worker, error)

	// Workers returns every worker in this namespace, sorted by
	// name.
	Workers() ([]Worker, error)
}

// WorkSpecMeta is the control data of a work spec, derived from its
// data dictionary by ExtractWorkSpecMeta.
type WorkSpecMeta struct {
	// Priority specifies the absolute priority of this work spec.
	Priority int

	// Weight specifies the relative weight of this work spec.
	Weight int

	// Paused indicates that no work units of this work spec should
	// be started.
	Paused bool

	// Continuous indicates whether the system can generate new
	// artificial work units for this work spec.
	Continuous bool

	// Interval is the minimum time between continuous work units.
	Interval time.Duration

	// MaxRunning is the maximum number of concurrently pending
	// work units, or 0 for unlimited.
	MaxRunning int

	// NextWorkSpecName names the work spec that runs after this
	// one, if any.
	NextWorkSpecName string

	// Runtime names the language runtime required to run this
	// work spec, if any.
	Runtime string
}

// WorkUnitStatus defines a high-level status of a work unit.
type WorkUnitStatus int

const (
	// AnyStatus is not a real work unit status, but in queries
	// specifies that any status is acceptable.
	AnyStatus WorkUnitStatus = iota

	// AvailableUnit work units are waiting for a worker.
	AvailableUnit

	// PendingUnit work units are assigned to a worker that is
	// currently working on them.
	PendingUnit

	// FinishedUnit work units have completed successfully.
	FinishedUnit

	// FailedUnit work units have completed unsuccessfully.
	FailedUnit
)

// WorkUnitStatuses lists every real work unit status.
var WorkUnitStatuses = []WorkUnitStatus{AvailableUnit, PendingUnit, FinishedUnit, FailedUnit}

// WorkUnitQuery selects some subset of the work units in a single
// work spec.  Its zero value selects all work units.
type WorkUnitQuery struct {
	// Statuses specifies high-level status(es).  If empty, any
	// status is acceptable.
	Statuses []WorkUnitStatus

	// Limit specifies the maximum number of work units to
	// select.  If zero, there is no limit.
	Limit int
}

// A WorkSpec defines a collection of related jobs.  A work spec has a
// string-keyed data map, where some keys (e.g., "name") have
// well-known types and meanings, and any number of WorkUnit
// associated with it.
type WorkSpec interface {
	// Name returns the name of this work spec.
	Name() string

	// Data returns the definition of this work spec.
	Data() (map[string]interface{}, error)

	// Meta returns the control data of this work spec.
	Meta() (WorkSpecMeta, error)

	// AddWorkUnit adds a single available work unit to this work
	// spec.  If a work unit already exists with the specified
	// name, it is replaced.
	AddWorkUnit(name string, data map[string]interface{}, priority float64) (WorkUnit, error)

	// WorkUnit retrieves a single work unit by name.  If it does
	// not exist, return nil (not an error).
	WorkUnit(name string) (WorkUnit, error)

	// WorkUnits retrieves the work units a query selects, newest
	// first.  Work units created at the same time are ordered by
	// name.
	WorkUnits(WorkUnitQuery) ([]WorkUnit, error)

	// CountWorkUnitStatus returns the number of work units in
	// each status.
	CountWorkUnitStatus() (map[WorkUnitStatus]int, error)
}

// A WorkUnit is a single job to perform.  It is associated with a
// specific WorkSpec, and has a name (key) and a data map.
type WorkUnit interface {
	// Name returns the name (key) of this work unit.
	Name() string

	// Data returns the data map of this work unit.
	Data() (map[string]interface{}, error)

	// WorkSpec returns the associated work spec.
	WorkSpec() WorkSpec

	// Created returns the time this work unit was added.
	Created() time.Time

	// Status gets a high-level status of this work unit.
	Status() (WorkUnitStatus, error)

	// Priority gets a priority score for this work unit.  Higher
	// priority executes sooner.
	Priority() (float64, error)

	// SetPriority changes the priority score for this work unit.
	SetPriority(float64) error

	// Worker returns the worker this work unit was last assigned
	// to, or nil if it was never assigned.
	Worker() (Worker, error)

	// Finish transitions a pending work unit to finished.  If
	// data is non-nil, it replaces the work unit data.  Returns
	// ErrNotPending if the work unit is not pending.
	Finish(data map[string]interface{}) error

	// Fail transitions a pending work unit to failed.  If data is
	// non-nil, it replaces the work unit data.  Returns
	// ErrNotPending if the work unit is not pending.
	Fail(data map[string]interface{}) error
}

// A Worker is a process that is doing work.  Workers may be
// hierarchical, for instance with a parent Worker that does not do
// work itself but supervises its children.  A Worker chooses its own
// name, often a UUID.
type Worker interface {
	// Name returns the worker-chosen name of the worker.
	Name() string

	// Parent returns the parent of this worker, if any.  If this
	// worker does not have a parent, nil is returned; this is not
	// an error.
	Parent() (Worker, error)

	// Children returns the children of this worker, sorted by
	// name.
	Children() ([]Worker, error)

	// SetParent changes the parent of this worker.  nil removes
	// the parent.  Returns ErrWorkerCycle if the worker would
	// become its own ancestor.
	SetParent(Worker) error

	// Mode returns the worker-reported mode, such as "run" or
	// "idle".
	Mode() (string, error)

	// SetMode changes the worker-reported mode.
	SetMode(string) error

	// Active returns whether the worker is alive.
	Active() (bool, error)

	// SetActive marks the worker alive or not, and records the
	// current time as the last time it was seen.
	SetActive(bool) error

	// LastSeen returns the last time the worker was created or
	// updated.
	LastSeen() (time.Time, error)

	// Assign makes an available work unit pending on this worker.
	// Returns ErrNotAvailable if the work unit is not available.
	Assign(WorkUnit) error

	// ActiveWorkUnits returns the work units this worker is
	// currently performing, newest assignment first.
	ActiveWorkUnits() ([]WorkUnit, error)
}
