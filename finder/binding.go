// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finder

import (
	"context"

	"github.com/diffeo/go-locator/locator"
)

// DataBinding connects a Finder to one kind of item.  Each entity
// type (work specs, work units, workers, ...) has one implementation.
// A DataBinding is shared by every query of its finder, possibly
// concurrently, and should not keep per-query state.
type DataBinding[T any] interface {
	// KnownDimensions returns the dimensions this binding
	// understands, with descriptions for locator help.
	KnownDimensions() []locator.Dimension

	// HiddenDimensions returns dimensions that are accepted but
	// not described and not required to be consumed.
	HiddenDimensions() []string

	// DefaultPageItemsCount returns the count applied when a
	// locator does not give one.  Zero or less means no limit.
	DefaultPageItemsCount() int

	// DefaultLookupLimit returns the lookup limit applied when a
	// locator does not give one.  Zero or less means no limit.
	DefaultLookupLimit() int

	// FindSingleItem tries to resolve loc to one specific item
	// without scanning, for instance by a unique name.  It
	// returns found == true with the item if that worked; it
	// returns found == false and a nil error if loc does not
	// identify a single item; and it returns locator.ErrNotFound
	// if loc identifies an item that does not exist.
	FindSingleItem(ctx context.Context, loc *locator.Locator) (item T, found bool, err error)

	// LocatorDataBinding returns the item source and filter for
	// loc.  Each is only computed when asked for.  ctx is the
	// context of the query, and may be used to evaluate
	// sub-locators with other finders.
	LocatorDataBinding(ctx context.Context, loc *locator.Locator) (LocatorDataBinding[T], error)

	// ItemLocator returns a locator that finds exactly item.
	ItemLocator(item T) string

	// NewDuplicateChecker returns a fresh duplicate checker, or
	// nil if this binding cannot detect duplicates.
	NewDuplicateChecker() DuplicateChecker[T]
}

// LocatorDataBinding is the item source and filter a DataBinding
// derives from one locator.
type LocatorDataBinding[T any] interface {
	// PrefilteredItems returns the candidate items, possibly
	// already narrowed down by some of the locator's dimensions.
	PrefilteredItems() (ItemHolder[T], error)

	// Filter returns the predicate for the locator's dimensions.
	Filter() (ItemFilter[T], error)
}

// LocatorDataBindingFuncs is a LocatorDataBinding made of two
// functions.
type LocatorDataBindingFuncs[T any] struct {
	Items      func() (ItemHolder[T], error)
	ItemFilter func() (ItemFilter[T], error)
}

// PrefilteredItems calls b.Items.
func (b LocatorDataBindingFuncs[T]) PrefilteredItems() (ItemHolder[T], error) {
	return b.Items()
}

// Filter calls b.ItemFilter.
func (b LocatorDataBindingFuncs[T]) Filter() (ItemFilter[T], error) {
	return b.ItemFilter()
}
