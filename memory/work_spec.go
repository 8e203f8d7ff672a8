// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"sort"

	"github.com/diffeo/go-locator/coordinate"
)

type workSpec struct {
	name      string
	namespace *namespace
	data      map[string]interface{}
	meta      coordinate.WorkSpecMeta
	workUnits map[string]*workUnit
	deleted   bool
}

func newWorkSpec(namespace *namespace, name string) *workSpec {
	return &workSpec{
		name:      name,
		namespace: namespace,
		data:      make(map[string]interface{}),
		workUnits: make(map[string]*workUnit),
	}
}

// coordinate.WorkSpec interface:

func (spec *workSpec) Name() string {
	return spec.name
}

func (spec *workSpec) Data() (map[string]interface{}, error) {
	globalLock(spec)
	defer globalUnlock(spec)

	if spec.deleted {
		return nil, coordinate.ErrGone
	}
	return spec.data, nil
}

func (spec *workSpec) Meta() (coordinate.WorkSpecMeta, error) {
	globalLock(spec)
	defer globalUnlock(spec)

	if spec.deleted {
		return coordinate.WorkSpecMeta{}, coordinate.ErrGone
	}
	return spec.meta, nil
}

func (spec *workSpec) AddWorkUnit(name string, data map[string]interface{}, priority float64) (coordinate.WorkUnit, error) {
	globalLock(spec)
	defer globalUnlock(spec)

	if spec.deleted {
		return nil, coordinate.ErrGone
	}
	if old := spec.workUnits[name]; old != nil {
		old.release()
	}
	unit := &workUnit{
		name:     name,
		workSpec: spec,
		data:     data,
		priority: priority,
		created:  spec.Coordinate().clock.Now(),
		status:   coordinate.AvailableUnit,
	}
	spec.workUnits[name] = unit
	return unit, nil
}

func (spec *workSpec) WorkUnit(name string) (coordinate.WorkUnit, error) {
	globalLock(spec)
	defer globalUnlock(spec)

	if spec.deleted {
		return nil, coordinate.ErrGone
	}
	unit := spec.workUnits[name]
	if unit == nil {
		return nil, nil
	}
	return unit, nil
}

func (spec *workSpec) WorkUnits(query coordinate.WorkUnitQuery) ([]coordinate.WorkUnit, error) {
	globalLock(spec)
	defer globalUnlock(spec)

	if spec.deleted {
		return nil, coordinate.ErrGone
	}
	var units []*workUnit
	for _, unit := range spec.workUnits {
		if statusMatches(unit.status, query.Statuses) {
			units = append(units, unit)
		}
	}
	sortNewestFirst(units)
	if query.Limit > 0 && len(units) > query.Limit {
		units = units[:query.Limit]
	}
	result := make([]coordinate.WorkUnit, len(units))
	for i, unit := range units {
		result[i] = unit
	}
	return result, nil
}

func (spec *workSpec) CountWorkUnitStatus() (map[coordinate.WorkUnitStatus]int, error) {
	globalLock(spec)
	defer globalUnlock(spec)

	if spec.deleted {
		return nil, coordinate.ErrGone
	}
	result := make(map[coordinate.WorkUnitStatus]int)
	for _, unit := range spec.workUnits {
		result[unit.status]++
	}
	return result, nil
}

func statusMatches(status coordinate.WorkUnitStatus, statuses []coordinate.WorkUnitStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if s == coordinate.AnyStatus || s == status {
			return true
		}
	}
	return false
}

// sortNewestFirst orders work units by creation time, latest first,
// and then by name.
func sortNewestFirst(units []*workUnit) {
	sort.Slice(units, func(i, j int) bool {
		if !units[i].created.Equal(units[j].created) {
			return units[i].created.After(units[j].created)
		}
		return units[i].name < units[j].name
	})
}

// summarize produces summary records for this work spec, without
// zero counts.  It expects to run within the global lock.
func (spec *workSpec) summarize() coordinate.Summary {
	counts := make(map[coordinate.WorkUnitStatus]int)
	for _, unit := range spec.workUnits {
		counts[unit.status]++
	}
	var result coordinate.Summary
	for status, count := range counts {
		result = append(result, coordinate.SummaryRecord{
			Namespace: spec.namespace.name,
			WorkSpec:  spec.name,
			Status:    status,
			Count:     count,
		})
	}
	return result
}

// memory.coordinable interface:

func (spec *workSpec) Coordinate() *memCoordinate {
	return spec.namespace.Coordinate()
}
