// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finder

// DuplicateChecker remembers the items of one query.
// CheckDuplicateAndRemember returns true if an equivalent item was
// seen before, and otherwise remembers item and returns false.
type DuplicateChecker[T any] interface {
	CheckDuplicateAndRemember(item T) bool
}

type keyedDuplicateChecker[T any, K comparable] struct {
	key  func(T) K
	seen map[K]struct{}
}

// KeyedDuplicateChecker creates a DuplicateChecker that considers two
// items the same if key returns the same value for both.
func KeyedDuplicateChecker[T any, K comparable](key func(T) K) DuplicateChecker[T] {
	return &keyedDuplicateChecker[T, K]{
		key:  key,
		seen: make(map[K]struct{}),
	}
}

func (c *keyedDuplicateChecker[T, K]) CheckDuplicateAndRemember(item T) bool {
	k := c.key(item)
	if _, seen := c.seen[k]; seen {
		return true
	}
	c.seen[k] = struct{}{}
	return false
}

// Unique returns a holder that drops items checker has already seen,
// keeping the first occurrence of each.
func Unique[T any](items ItemHolder[T], checker DuplicateChecker[T]) ItemHolder[T] {
	return items.Filter(func(item T) bool {
		return !checker.CheckDuplicateAndRemember(item)
	})
}
