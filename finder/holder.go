// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finder

// ItemHolder is a lazy source of items.  Calling it pushes items to
// yield, one at a time, until the source is exhausted or yield
// returns false.  It has the shape of iter.Seq, so a holder can be
// used directly in a range loop.
//
// A holder is only guaranteed to be traversable once; data bindings
// produce a fresh one for every query.
type ItemHolder[T any] func(yield func(item T) bool)

// Process pushes every item to consumer until consumer returns false.
func (h ItemHolder[T]) Process(consumer func(item T) bool) {
	if h == nil {
		return
	}
	h(consumer)
}

// Filter returns a holder yielding only the items keep accepts.
func (h ItemHolder[T]) Filter(keep func(item T) bool) ItemHolder[T] {
	return func(yield func(T) bool) {
		h.Process(func(item T) bool {
			if !keep(item) {
				return true
			}
			return yield(item)
		})
	}
}

// Of returns a holder over a fixed list of items.
func Of[T any](items ...T) ItemHolder[T] {
	return func(yield func(T) bool) {
		for _, item := range items {
			if !yield(item) {
				return
			}
		}
	}
}

// Empty returns a holder with no items.
func Empty[T any]() ItemHolder[T] {
	return func(func(T) bool) {}
}

// Concat returns a holder yielding every item of each holder in turn.
// Later holders are not started if the consumer stops early.
func Concat[T any](holders ...ItemHolder[T]) ItemHolder[T] {
	return func(yield func(T) bool) {
		stopped := false
		for _, h := range holders {
			h.Process(func(item T) bool {
				if !yield(item) {
					stopped = true
					return false
				}
				return true
			})
			if stopped {
				return
			}
		}
	}
}

// Lazy returns a holder that calls produce the first time it is
// traversed.  An error from produce is reported through fail, and the
// holder yields nothing.
func Lazy[T any](produce func() (ItemHolder[T], error), fail func(error)) ItemHolder[T] {
	return func(yield func(T) bool) {
		h, err := produce()
		if err != nil {
			fail(err)
			return
		}
		h.Process(yield)
	}
}

// Collect traverses a holder into a slice.
func Collect[T any](h ItemHolder[T]) []T {
	var result []T
	h.Process(func(item T) bool {
		result = append(result, item)
		return true
	})
	return result
}
