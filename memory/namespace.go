// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"sort"

	"github.com/diffeo/go-locator/coordinate"
)

// namespace is a container type for a coordinate.Namespace.
type namespace struct {
	name       string
	coordinate *memCoordinate
	workSpecs  map[string]*workSpec
	workers    map[string]*worker
}

func newNamespace(coordinate *memCoordinate, name string) *namespace {
	return &namespace{
		name:       name,
		coordinate: coordinate,
		workSpecs:  make(map[string]*workSpec),
		workers:    make(map[string]*worker),
	}
}

// coordinate.Namespace interface:

func (ns *namespace) Name() string {
	return ns.name
}

func (ns *namespace) SetWorkSpec(data map[string]interface{}) (coordinate.WorkSpec, error) {
	globalLock(ns)
	defer globalUnlock(ns)

	name, meta, err := coordinate.ExtractWorkSpecMeta(data)
	if err != nil {
		return nil, err
	}
	spec := ns.workSpecs[name]
	if spec == nil {
		spec = newWorkSpec(ns, name)
		ns.workSpecs[name] = spec
	}
	spec.data = data
	spec.meta = meta
	return spec, nil
}

func (ns *namespace) WorkSpec(name string) (coordinate.WorkSpec, error) {
	globalLock(ns)
	defer globalUnlock(ns)

	spec, present := ns.workSpecs[name]
	if !present {
		return nil, coordinate.ErrNoSuchWorkSpec{Name: name}
	}
	return spec, nil
}

func (ns *namespace) DestroyWorkSpec(name string) error {
	globalLock(ns)
	defer globalUnlock(ns)

	spec, present := ns.workSpecs[name]
	if !present {
		return coordinate.ErrNoSuchWorkSpec{Name: name}
	}
	for _, unit := range spec.workUnits {
		unit.release()
	}
	spec.deleted = true
	delete(ns.workSpecs, name)
	return nil
}

func (ns *namespace) WorkSpecNames() ([]string, error) {
	globalLock(ns)
	defer globalUnlock(ns)

	names := make([]string, 0, len(ns.workSpecs))
	for name := range ns.workSpecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (ns *namespace) Worker(name string) (coordinate.Worker, error) {
	globalLock(ns)
	defer globalUnlock(ns)

	w, present := ns.workers[name]
	if !present {
		w = newWorker(ns, name)
		ns.workers[name] = w
	}
	return w, nil
}

func (ns *namespace) Workers() ([]coordinate.Worker, error) {
	globalLock(ns)
	defer globalUnlock(ns)

	workers := make([]*worker, 0, len(ns.workers))
	for _, w := range ns.workers {
		workers = append(workers, w)
	}
	return sortedWorkers(workers), nil
}

// coordinate.Summarizable interface:

func (ns *namespace) Summarize() (coordinate.Summary, error) {
	globalLock(ns)
	defer globalUnlock(ns)

	return ns.summarize(), nil
}

func (ns *namespace) summarize() coordinate.Summary {
	var result coordinate.Summary
	for _, spec := range ns.workSpecs {
		result = append(result, spec.summarize()...)
	}
	return result
}

// memory.coordinable interface:

func (ns *namespace) Coordinate() *memCoordinate {
	return ns.coordinate
}
