// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finder

import "context"

// contextItemsKey is the context.Context key for a named list of
// items.  It is parameterized on the item type, so items bound for
// one finder type are invisible to finders of another.
type contextItemsKey[T any] struct {
	name string
}

// WithContextItems returns a context that binds items under name.  A
// locator "$contextItem:name" evaluated by a Finder[T] under that
// context returns exactly these items.
func WithContextItems[T any](ctx context.Context, name string, items ...T) context.Context {
	return context.WithValue(ctx, contextItemsKey[T]{name: name}, items)
}

// ContextItems returns the items bound under name, if any.
func ContextItems[T any](ctx context.Context, name string) ([]T, bool) {
	items, ok := ctx.Value(contextItemsKey[T]{name: name}).([]T)
	return items, ok
}
