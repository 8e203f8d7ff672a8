// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"time"

	"github.com/diffeo/go-locator/coordinate"
)

type workUnit struct {
	name     string
	workSpec *workSpec
	data     map[string]interface{}
	priority float64
	created  time.Time
	status   coordinate.WorkUnitStatus
	worker   *worker
}

// coordinate.WorkUnit interface:

func (unit *workUnit) Name() string {
	return unit.name
}

func (unit *workUnit) WorkSpec() coordinate.WorkSpec {
	return unit.workSpec
}

func (unit *workUnit) Created() time.Time {
	return unit.created
}

func (unit *workUnit) Data() (map[string]interface{}, error) {
	globalLock(unit)
	defer globalUnlock(unit)

	if unit.workSpec.deleted {
		return nil, coordinate.ErrGone
	}
	return unit.data, nil
}

func (unit *workUnit) Status() (coordinate.WorkUnitStatus, error) {
	globalLock(unit)
	defer globalUnlock(unit)

	if unit.workSpec.deleted {
		return coordinate.AnyStatus, coordinate.ErrGone
	}
	return unit.status, nil
}

func (unit *workUnit) Priority() (float64, error) {
	globalLock(unit)
	defer globalUnlock(unit)

	if unit.workSpec.deleted {
		return 0, coordinate.ErrGone
	}
	return unit.priority, nil
}

func (unit *workUnit) SetPriority(priority float64) error {
	globalLock(unit)
	defer globalUnlock(unit)

	if unit.workSpec.deleted {
		return coordinate.ErrGone
	}
	unit.priority = priority
	return nil
}

func (unit *workUnit) Worker() (coordinate.Worker, error) {
	globalLock(unit)
	defer globalUnlock(unit)

	if unit.workSpec.deleted {
		return nil, coordinate.ErrGone
	}
	if unit.worker == nil {
		return nil, nil
	}
	return unit.worker, nil
}

func (unit *workUnit) Finish(data map[string]interface{}) error {
	return unit.complete(coordinate.FinishedUnit, data)
}

func (unit *workUnit) Fail(data map[string]interface{}) error {
	return unit.complete(coordinate.FailedUnit, data)
}

func (unit *workUnit) complete(status coordinate.WorkUnitStatus, data map[string]interface{}) error {
	globalLock(unit)
	defer globalUnlock(unit)

	if unit.workSpec.deleted {
		return coordinate.ErrGone
	}
	if unit.status != coordinate.PendingUnit {
		return coordinate.ErrNotPending
	}
	unit.release()
	unit.status = status
	if data != nil {
		unit.data = data
	}
	return nil
}

// release removes this work unit from its worker's active list.  The
// worker stays recorded as the last one to work on it.  It expects to
// run within the global lock.
func (unit *workUnit) release() {
	if unit.worker != nil {
		unit.worker.removeActive(unit)
	}
}

// memory.coordinable interface:

func (unit *workUnit) Coordinate() *memCoordinate {
	return unit.workSpec.Coordinate()
}
