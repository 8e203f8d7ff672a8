// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finder

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/diffeo/go-locator/locator"
)

// FilterFactory builds the filter for one value of a dimension.
type FilterFactory[T any] func(ctx context.Context, value string) (ItemFilter[T], error)

// PrefilterFactory builds a narrowed item source for one value of a
// dimension.
type PrefilterFactory[T any] func(ctx context.Context, value string) (ItemHolder[T], error)

type typedDimension[T any] struct {
	dim       locator.Dimension
	filter    FilterFactory[T]
	prefilter PrefilterFactory[T]
	anyOf     bool
}

// TypedBinding is a DataBinding assembled from per-dimension
// functions.  Create one with NewTypedBinding and declare its
// dimensions before handing it to New; a TypedBinding must not be
// changed once queries run against it.
//
// Each present dimension contributes one filter per value, and all of
// them must match, unless the dimension was declared with
// Alternatives.  The first declared prefilter whose dimension
// appears exactly once replaces the full item list as the source.
type TypedBinding[T any] struct {
	all                func(ctx context.Context) (ItemHolder[T], error)
	itemLocator        func(T) string
	dims               []*typedDimension[T]
	singleValue        string
	single             func(ctx context.Context, loc *locator.Locator) (T, bool, error)
	key                func(T) string
	defaultCount       int
	defaultLookupLimit int
}

// NewTypedBinding creates a binding whose items come from all and
// whose canonical locators come from itemLocator.
func NewTypedBinding[T any](all func(ctx context.Context) (ItemHolder[T], error), itemLocator func(T) string) *TypedBinding[T] {
	return &TypedBinding[T]{all: all, itemLocator: itemLocator}
}

func (b *TypedBinding[T]) dimension(name string) *typedDimension[T] {
	for _, d := range b.dims {
		if d.dim.Name == name {
			return d
		}
	}
	return nil
}

// Dimension declares a dimension with a filter factory.
func (b *TypedBinding[T]) Dimension(dim locator.Dimension, filter FilterFactory[T]) *TypedBinding[T] {
	b.dims = append(b.dims, &typedDimension[T]{dim: dim, filter: filter})
	return b
}

// StringDimension declares a dimension matching items whose get value
// equals the dimension value.
func (b *TypedBinding[T]) StringDimension(dim locator.Dimension, get func(T) string) *TypedBinding[T] {
	if dim.Syntax == "" {
		dim.Syntax = "<string>"
	}
	return b.Dimension(dim, func(_ context.Context, value string) (ItemFilter[T], error) {
		return FilterFunc[T](func(item T) bool { return get(item) == value }), nil
	})
}

// PrefixDimension declares a dimension matching items whose get value
// starts with the dimension value.
func (b *TypedBinding[T]) PrefixDimension(dim locator.Dimension, get func(T) string) *TypedBinding[T] {
	if dim.Syntax == "" {
		dim.Syntax = "<string>"
	}
	return b.Dimension(dim, func(_ context.Context, value string) (ItemFilter[T], error) {
		return FilterFunc[T](func(item T) bool { return strings.HasPrefix(get(item), value) }), nil
	})
}

// BoolDimension declares a boolean dimension.  "any" matches every
// item.
func (b *TypedBinding[T]) BoolDimension(dim locator.Dimension, get func(T) bool) *TypedBinding[T] {
	if dim.Syntax == "" {
		dim.Syntax = "<boolean>"
	}
	name := dim.Name
	return b.Dimension(dim, func(_ context.Context, text string) (ItemFilter[T], error) {
		value, present, ok := locator.ParseBool(text)
		if !ok {
			return nil, locator.ErrLocatorProcess{Message: fmt.Sprintf(
				"Invalid value '%s' of dimension '%s': should be true, false or any", text, name)}
		}
		if !present {
			return AcceptAll[T](), nil
		}
		return FilterFunc[T](func(item T) bool { return get(item) == value }), nil
	})
}

// MinIntDimension declares a dimension matching items whose get value
// is at least the dimension value.
func (b *TypedBinding[T]) MinIntDimension(dim locator.Dimension, get func(T) int) *TypedBinding[T] {
	if dim.Syntax == "" {
		dim.Syntax = "<number>"
	}
	name := dim.Name
	return b.Dimension(dim, func(_ context.Context, text string) (ItemFilter[T], error) {
		least, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, locator.ErrLocatorProcess{Message: fmt.Sprintf(
				"Invalid value '%s' of dimension '%s': should be a number", text, name)}
		}
		return FilterFunc[T](func(item T) bool { return get(item) >= least }), nil
	})
}

// Prefilter attaches an item source to an already declared dimension.
// It panics if the dimension was not declared.
func (b *TypedBinding[T]) Prefilter(name string, items PrefilterFactory[T]) *TypedBinding[T] {
	d := b.dimension(name)
	if d == nil {
		panic("finder: prefilter for undeclared dimension " + name)
	}
	d.prefilter = items
	return b
}

// Alternatives makes repeated values of a dimension match if any of
// them does, instead of all of them.  It panics if the dimension was
// not declared.
func (b *TypedBinding[T]) Alternatives(name string) *TypedBinding[T] {
	d := b.dimension(name)
	if d == nil {
		panic("finder: alternatives for undeclared dimension " + name)
	}
	d.anyOf = true
	return b
}

// SingleValue makes a bare single-value locator mean name:value.  It
// panics if the dimension was not declared.
func (b *TypedBinding[T]) SingleValue(name string) *TypedBinding[T] {
	if b.dimension(name) == nil {
		panic("finder: single value for undeclared dimension " + name)
	}
	b.singleValue = name
	return b
}

// SingleItem sets the direct lookup used before any scan.  See
// DataBinding.FindSingleItem.
func (b *TypedBinding[T]) SingleItem(find func(ctx context.Context, loc *locator.Locator) (T, bool, error)) *TypedBinding[T] {
	b.single = find
	return b
}

// Unique enables duplicate detection, treating items with the same key
// as the same.
func (b *TypedBinding[T]) Unique(key func(T) string) *TypedBinding[T] {
	b.key = key
	return b
}

// Defaults sets the default page size and lookup limit.  Zero or less
// means no limit.
func (b *TypedBinding[T]) Defaults(count, lookupLimit int) *TypedBinding[T] {
	b.defaultCount = count
	b.defaultLookupLimit = lookupLimit
	return b
}

// KnownDimensions implements DataBinding.
func (b *TypedBinding[T]) KnownDimensions() []locator.Dimension {
	dims := make([]locator.Dimension, len(b.dims))
	for i, d := range b.dims {
		dims[i] = d.dim
	}
	return dims
}

// HiddenDimensions implements DataBinding.
func (b *TypedBinding[T]) HiddenDimensions() []string {
	var names []string
	for _, d := range b.dims {
		if d.dim.Hidden {
			names = append(names, d.dim.Name)
		}
	}
	return names
}

// DefaultPageItemsCount implements DataBinding.
func (b *TypedBinding[T]) DefaultPageItemsCount() int {
	return b.defaultCount
}

// DefaultLookupLimit implements DataBinding.
func (b *TypedBinding[T]) DefaultLookupLimit() int {
	return b.defaultLookupLimit
}

// FindSingleItem implements DataBinding.
func (b *TypedBinding[T]) FindSingleItem(ctx context.Context, loc *locator.Locator) (T, bool, error) {
	if b.single == nil {
		var zero T
		return zero, false, nil
	}
	return b.single(ctx, loc)
}

// ItemLocator implements DataBinding.
func (b *TypedBinding[T]) ItemLocator(item T) string {
	return b.itemLocator(item)
}

// NewDuplicateChecker implements DataBinding.
func (b *TypedBinding[T]) NewDuplicateChecker() DuplicateChecker[T] {
	if b.key == nil {
		return nil
	}
	return KeyedDuplicateChecker(b.key)
}

// LocatorDataBinding implements DataBinding.
func (b *TypedBinding[T]) LocatorDataBinding(ctx context.Context, loc *locator.Locator) (LocatorDataBinding[T], error) {
	return LocatorDataBindingFuncs[T]{
		Items:      func() (ItemHolder[T], error) { return b.prefiltered(ctx, loc) },
		ItemFilter: func() (ItemFilter[T], error) { return b.filter(ctx, loc) },
	}, nil
}

func (b *TypedBinding[T]) prefiltered(ctx context.Context, loc *locator.Locator) (ItemHolder[T], error) {
	for _, d := range b.dims {
		if d.prefilter == nil || !loc.Has(d.dim.Name) {
			continue
		}
		values := loc.DimensionValue(d.dim.Name)
		if len(values) == 1 {
			return d.prefilter(ctx, values[0])
		}
	}
	return b.all(ctx)
}

func (b *TypedBinding[T]) filter(ctx context.Context, loc *locator.Locator) (ItemFilter[T], error) {
	var filters []ItemFilter[T]
	if b.singleValue != "" {
		if value, ok := loc.SingleValue(); ok {
			filter, err := b.dimension(b.singleValue).filter(ctx, value)
			if err != nil {
				return nil, err
			}
			filters = append(filters, filter)
		}
	}
	for _, d := range b.dims {
		if d.filter == nil || !loc.Has(d.dim.Name) {
			continue
		}
		var values []ItemFilter[T]
		for _, value := range loc.DimensionValue(d.dim.Name) {
			filter, err := d.filter(ctx, value)
			if err != nil {
				return nil, err
			}
			values = append(values, filter)
		}
		if d.anyOf {
			filters = append(filters, Or(values...))
		} else {
			filters = append(filters, values...)
		}
	}
	return And(filters...), nil
}
