// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finder

// ItemFilter is a predicate over items.  IsIncluded decides whether an
// item belongs to the result.  ShouldStop lets a filter end a scan
// early when the item source is ordered: a filter for "created after
// noon" over newest-first items can stop at the first item from the
// morning.
type ItemFilter[T any] interface {
	IsIncluded(item T) bool
	ShouldStop(item T) bool
}

// FilterFunc adapts a plain predicate to ItemFilter.  It never stops a
// scan.
type FilterFunc[T any] func(item T) bool

// IsIncluded calls f.
func (f FilterFunc[T]) IsIncluded(item T) bool {
	return f(item)
}

// ShouldStop always returns false.
func (f FilterFunc[T]) ShouldStop(T) bool {
	return false
}

// StoppingFilter is an ItemFilter built from two functions.  Either
// may be nil: a nil Include accepts everything, a nil Stop never
// stops.
type StoppingFilter[T any] struct {
	Include func(item T) bool
	Stop    func(item T) bool
}

// IsIncluded calls f.Include.
func (f StoppingFilter[T]) IsIncluded(item T) bool {
	return f.Include == nil || f.Include(item)
}

// ShouldStop calls f.Stop.
func (f StoppingFilter[T]) ShouldStop(item T) bool {
	return f.Stop != nil && f.Stop(item)
}

// AcceptAll returns a filter that includes every item.
func AcceptAll[T any]() ItemFilter[T] {
	return FilterFunc[T](func(T) bool { return true })
}

type andFilter[T any] []ItemFilter[T]

func (filters andFilter[T]) IsIncluded(item T) bool {
	for _, f := range filters {
		if !f.IsIncluded(item) {
			return false
		}
	}
	return true
}

func (filters andFilter[T]) ShouldStop(item T) bool {
	for _, f := range filters {
		if f.ShouldStop(item) {
			return true
		}
	}
	return false
}

// And includes an item only if every filter does, and stops as soon
// as any filter wants to stop.  With no filters it includes
// everything.  nil filters are skipped.
func And[T any](filters ...ItemFilter[T]) ItemFilter[T] {
	var result andFilter[T]
	for _, f := range filters {
		if f != nil {
			result = append(result, f)
		}
	}
	if len(result) == 1 {
		return result[0]
	}
	return result
}

type orFilter[T any] []ItemFilter[T]

func (filters orFilter[T]) IsIncluded(item T) bool {
	for _, f := range filters {
		if f.IsIncluded(item) {
			return true
		}
	}
	return false
}

func (filters orFilter[T]) ShouldStop(item T) bool {
	if len(filters) == 0 {
		return false
	}
	for _, f := range filters {
		if !f.ShouldStop(item) {
			return false
		}
	}
	return true
}

// Or includes an item if any filter does, and stops only once every
// filter wants to stop.  With no filters it includes nothing.
func Or[T any](filters ...ItemFilter[T]) ItemFilter[T] {
	result := make(orFilter[T], 0, len(filters))
	for _, f := range filters {
		if f != nil {
			result = append(result, f)
		}
	}
	if len(result) == 1 {
		return result[0]
	}
	return result
}

type notFilter[T any] struct {
	inner ItemFilter[T]
}

func (f notFilter[T]) IsIncluded(item T) bool {
	return !f.inner.IsIncluded(item)
}

func (f notFilter[T]) ShouldStop(T) bool {
	return false
}

// Not inverts a filter's inclusion.  It never stops a scan.
func Not[T any](filter ItemFilter[T]) ItemFilter[T] {
	return notFilter[T]{inner: filter}
}

// nonStoppingFilter hides the stop signal of a filter, for item
// sources that are not in the binding's natural order.
type nonStoppingFilter[T any] struct {
	ItemFilter[T]
}

func (nonStoppingFilter[T]) ShouldStop(T) bool {
	return false
}

func nonStopping[T any](filter ItemFilter[T]) ItemFilter[T] {
	return nonStoppingFilter[T]{filter}
}
