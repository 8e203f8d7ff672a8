// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"sort"
	"time"

	"github.com/diffeo/go-locator/coordinate"
)

type worker struct {
	name      string
	namespace *namespace
	parent    *worker
	children  map[string]*worker
	mode      string
	active    bool
	lastSeen  time.Time
	// activeUnits is in assignment order, oldest first
	activeUnits []*workUnit
}

func newWorker(namespace *namespace, name string) *worker {
	return &worker{
		name:      name,
		namespace: namespace,
		children:  make(map[string]*worker),
		active:    true,
		lastSeen:  namespace.Coordinate().clock.Now(),
	}
}

func sortedWorkers(workers []*worker) []coordinate.Worker {
	sort.Slice(workers, func(i, j int) bool {
		return workers[i].name < workers[j].name
	})
	result := make([]coordinate.Worker, len(workers))
	for i, w := range workers {
		result[i] = w
	}
	return result
}

// coordinate.Worker interface:

func (w *worker) Name() string {
	return w.name
}

func (w *worker) Parent() (coordinate.Worker, error) {
	globalLock(w)
	defer globalUnlock(w)

	if w.parent == nil {
		return nil, nil
	}
	return w.parent, nil
}

func (w *worker) Children() ([]coordinate.Worker, error) {
	globalLock(w)
	defer globalUnlock(w)

	children := make([]*worker, 0, len(w.children))
	for _, child := range w.children {
		children = append(children, child)
	}
	return sortedWorkers(children), nil
}

func (w *worker) SetParent(parent coordinate.Worker) error {
	globalLock(w)
	defer globalUnlock(w)

	var newParent *worker
	if parent != nil {
		var ok bool
		newParent, ok = parent.(*worker)
		if !ok || newParent.namespace != w.namespace {
			return coordinate.ErrWrongBackend
		}
		for ancestor := newParent; ancestor != nil; ancestor = ancestor.parent {
			if ancestor == w {
				return coordinate.ErrWorkerCycle
			}
		}
	}
	if w.parent != nil {
		delete(w.parent.children, w.name)
	}
	w.parent = newParent
	if newParent != nil {
		newParent.children[w.name] = w
	}
	w.lastSeen = w.Coordinate().clock.Now()
	return nil
}

func (w *worker) Mode() (string, error) {
	globalLock(w)
	defer globalUnlock(w)

	return w.mode, nil
}

func (w *worker) SetMode(mode string) error {
	globalLock(w)
	defer globalUnlock(w)

	w.mode = mode
	w.lastSeen = w.Coordinate().clock.Now()
	return nil
}

func (w *worker) Active() (bool, error) {
	globalLock(w)
	defer globalUnlock(w)

	return w.active, nil
}

func (w *worker) SetActive(active bool) error {
	globalLock(w)
	defer globalUnlock(w)

	w.active = active
	w.lastSeen = w.Coordinate().clock.Now()
	return nil
}

func (w *worker) LastSeen() (time.Time, error) {
	globalLock(w)
	defer globalUnlock(w)

	return w.lastSeen, nil
}

func (w *worker) Assign(unit coordinate.WorkUnit) error {
	globalLock(w)
	defer globalUnlock(w)

	theUnit, ok := unit.(*workUnit)
	if !ok || theUnit.workSpec.namespace != w.namespace {
		return coordinate.ErrWrongBackend
	}
	if theUnit.workSpec.deleted {
		return coordinate.ErrGone
	}
	if theUnit.status != coordinate.AvailableUnit {
		return coordinate.ErrNotAvailable
	}
	theUnit.status = coordinate.PendingUnit
	theUnit.worker = w
	w.activeUnits = append(w.activeUnits, theUnit)
	w.lastSeen = w.Coordinate().clock.Now()
	return nil
}

func (w *worker) ActiveWorkUnits() ([]coordinate.WorkUnit, error) {
	globalLock(w)
	defer globalUnlock(w)

	result := make([]coordinate.WorkUnit, 0, len(w.activeUnits))
	for i := len(w.activeUnits) - 1; i >= 0; i-- {
		result = append(result, w.activeUnits[i])
	}
	return result, nil
}

// removeActive drops a work unit from the active list.  It expects
// to run within the global lock.
func (w *worker) removeActive(unit *workUnit) {
	for i, active := range w.activeUnits {
		if active == unit {
			w.activeUnits = append(w.activeUnits[:i], w.activeUnits[i+1:]...)
			return
		}
	}
}

// memory.coordinable interface:

func (w *worker) Coordinate() *memCoordinate {
	return w.namespace.Coordinate()
}
