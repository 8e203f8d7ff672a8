// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ints(n int) ItemHolder[int] {
	return func(yield func(int) bool) {
		for i := 0; i < n; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

func even(i int) bool { return i%2 == 0 }

func run(t *testing.T, items ItemHolder[int], filter ItemFilter[int], start, count, lookupLimit int) *PagedSearchResult[int] {
	p := NewFilterItemProcessor(NewPagingFilter(filter, start, count, lookupLimit))
	assert.NoError(t, p.Run(context.Background(), items))
	return p.Result()
}

func TestProcessorWindow(t *testing.T) {
	r := run(t, ints(20), FilterFunc[int](even), 2, 3, Unlimited)
	assert.Equal(t, []int{4, 6, 8}, r.Entries)
	assert.Equal(t, 9, r.ProcessedCount)
	assert.Equal(t, 8, r.LastProcessed)
	assert.True(t, r.HasNextPage())
	assert.True(t, r.HasPrevPage())
}

func TestProcessorLookupLimit(t *testing.T) {
	r := run(t, ints(20), FilterFunc[int](even), 0, Unlimited, 5)
	assert.Equal(t, []int{0, 2, 4}, r.Entries)
	assert.Equal(t, 5, r.ProcessedCount)
	assert.True(t, r.LookupLimitReached)

	// the limit is only "reached" if another item was offered
	r = run(t, ints(5), FilterFunc[int](even), 0, Unlimited, 5)
	assert.Equal(t, 5, r.ProcessedCount)
	assert.False(t, r.LookupLimitReached)
}

func TestProcessorLookupLimitNeverExceeded(t *testing.T) {
	for limit := 1; limit < 12; limit++ {
		r := run(t, ints(10), AcceptAll[int](), 0, Unlimited, limit)
		assert.LessOrEqual(t, r.ProcessedCount, limit)
		assert.Equal(t, limit < 10, r.LookupLimitReached, "limit %d", limit)
	}
}

func TestProcessorZeroCount(t *testing.T) {
	r := run(t, ints(10), AcceptAll[int](), 0, 0, Unlimited)
	assert.Empty(t, r.Entries)
	assert.Equal(t, 0, r.ProcessedCount)
	assert.False(t, r.HasNextPage())
}

func TestProcessorStop(t *testing.T) {
	stop := StoppingFilter[int]{Include: even, Stop: func(i int) bool { return i >= 5 }}
	r := run(t, ints(20), stop, 0, Unlimited, Unlimited)
	assert.Equal(t, []int{0, 2, 4}, r.Entries)
	assert.Equal(t, 6, r.ProcessedCount)
}

func TestProcessorCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewFilterItemProcessor(NewPagingFilter[int](nil, 0, Unlimited, Unlimited))
	err := p.Run(ctx, func(yield func(int) bool) {
		for i := 0; ; i++ {
			if i == 3 {
				cancel()
			}
			if !yield(i) {
				return
			}
		}
	})
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, []int{0, 1, 2}, p.Result().Entries)
}

func TestLogicFilters(t *testing.T) {
	isEven := FilterFunc[int](even)
	small := FilterFunc[int](func(i int) bool { return i < 4 })
	for i := 0; i < 8; i++ {
		assert.Equal(t, even(i) && i < 4, And[int](isEven, small).IsIncluded(i))
		assert.Equal(t, even(i) || i < 4, Or[int](isEven, small).IsIncluded(i))
		assert.Equal(t, !even(i), Not[int](isEven).IsIncluded(i))
		assert.Equal(t, isEven.IsIncluded(i), Not(Not[int](isEven)).IsIncluded(i))
	}
	assert.True(t, And[int]().IsIncluded(1))
	assert.False(t, Or[int]().IsIncluded(1))
}

func TestLogicStop(t *testing.T) {
	stopAt := func(n int) ItemFilter[int] {
		return StoppingFilter[int]{Stop: func(i int) bool { return i >= n }}
	}
	assert.True(t, And(stopAt(2), stopAt(5)).ShouldStop(3))
	assert.False(t, Or(stopAt(2), stopAt(5)).ShouldStop(3))
	assert.True(t, Or(stopAt(2), stopAt(5)).ShouldStop(5))
	assert.False(t, Not(stopAt(2)).ShouldStop(3))
}

func TestHolders(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 7, 8}, Collect(Concat(ints(3), Of(7, 8))))
	assert.Empty(t, Collect(Empty[int]()))
	assert.Equal(t, []int{0, 2, 4}, Collect(ints(6).Filter(even)))

	var items []int
	for i := range Concat(ints(2), ints(2)) {
		items = append(items, i)
	}
	assert.Equal(t, []int{0, 1, 0, 1}, items)

	started := false
	h := Concat(ints(3), Lazy(func() (ItemHolder[int], error) {
		started = true
		return ints(3), nil
	}, nil))
	h.Process(func(i int) bool { return i < 1 })
	assert.False(t, started)

	var failure error
	broken := errors.New("broken")
	h = Lazy(func() (ItemHolder[int], error) { return nil, broken }, func(err error) { failure = err })
	assert.Empty(t, Collect(h))
	assert.Equal(t, broken, failure)
}

func TestUnique(t *testing.T) {
	checker := KeyedDuplicateChecker(func(i int) int { return i % 3 })
	assert.Equal(t, []int{0, 1, 2}, Collect(Unique(ints(9), checker)))
}

func TestPageLocators(t *testing.T) {
	r := &PagedSearchResult[int]{Entries: []int{1, 2}, Start: 1, Count: 2}
	next, ok := r.NextPageLocator("prefix:a,count:2,start:1")
	assert.True(t, ok)
	assert.Equal(t, "prefix:a,count:2,start:3", next)
	prev, ok := r.PrevPageLocator("prefix:a,count:2,start:1")
	assert.True(t, ok)
	assert.Equal(t, "prefix:a,count:1,start:0", prev)

	_, ok = r.NextPageLocator("a1")
	assert.False(t, ok)

	r = &PagedSearchResult[int]{Entries: []int{1}, Start: 0, Count: 2}
	_, ok = r.NextPageLocator("")
	assert.False(t, ok)
	_, ok = r.PrevPageLocator("")
	assert.False(t, ok)
}
