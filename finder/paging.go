// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finder

import (
	"context"
	"strconv"

	"github.com/diffeo/go-locator/locator"
)

// Unlimited is the value of a count or lookup limit that does not
// apply.
const Unlimited = -1

// PagingFilter applies a start/count window and a lookup limit on top
// of an ItemFilter.  Start counts matching items to skip; Count caps
// the number of items returned; LookupLimit caps the number of items
// examined, matching or not.
type PagingFilter[T any] struct {
	Filter      ItemFilter[T]
	Start       int
	Count       int
	LookupLimit int

	processed          int
	matched            int
	lastProcessed      T
	lookupLimitReached bool
}

// NewPagingFilter creates a paging filter.  Pass Unlimited for count
// or lookupLimit to disable them.
func NewPagingFilter[T any](filter ItemFilter[T], start, count, lookupLimit int) *PagingFilter[T] {
	if filter == nil {
		filter = AcceptAll[T]()
	}
	return &PagingFilter[T]{
		Filter:      filter,
		Start:       start,
		Count:       count,
		LookupLimit: lookupLimit,
	}
}

// ProcessedCount returns the number of items examined so far.
func (pf *PagingFilter[T]) ProcessedCount() int {
	return pf.processed
}

// LastProcessed returns the last item examined, if any.
func (pf *PagingFilter[T]) LastProcessed() (T, bool) {
	return pf.lastProcessed, pf.processed > 0
}

// LookupLimitReached returns true if an item arrived after the lookup
// limit was used up.
func (pf *PagingFilter[T]) LookupLimitReached() bool {
	return pf.lookupLimitReached
}

// FilterItemProcessor runs a PagingFilter over a stream of items and
// collects the page of results.
type FilterItemProcessor[T any] struct {
	paging *PagingFilter[T]
	result []T
}

// NewFilterItemProcessor creates a processor for a paging filter.
func NewFilterItemProcessor[T any](paging *PagingFilter[T]) *FilterItemProcessor[T] {
	return &FilterItemProcessor[T]{paging: paging}
}

func (p *FilterItemProcessor[T]) full() bool {
	return p.paging.Count != Unlimited && len(p.result) >= p.paging.Count
}

// Process handles one item and returns false once no more items are
// wanted.
func (p *FilterItemProcessor[T]) Process(item T) bool {
	pf := p.paging
	if p.full() {
		return false
	}
	if pf.LookupLimit != Unlimited && pf.processed >= pf.LookupLimit {
		pf.lookupLimitReached = true
		return false
	}
	pf.processed++
	pf.lastProcessed = item
	if pf.Filter.IsIncluded(item) {
		pf.matched++
		if pf.matched > pf.Start {
			p.result = append(p.result, item)
			if p.full() {
				return false
			}
		}
	}
	return !pf.Filter.ShouldStop(item)
}

// Run feeds every item of a holder through Process.  It returns
// ctx.Err() if the context ends before the scan does.
func (p *FilterItemProcessor[T]) Run(ctx context.Context, items ItemHolder[T]) error {
	var err error
	items.Process(func(item T) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		return p.Process(item)
	})
	return err
}

// Result returns the collected page.
func (p *FilterItemProcessor[T]) Result() *PagedSearchResult[T] {
	pf := p.paging
	return &PagedSearchResult[T]{
		Entries:            p.result,
		Start:              pf.Start,
		Count:              pf.Count,
		ProcessedCount:     pf.processed,
		LookupLimit:        pf.LookupLimit,
		LookupLimitReached: pf.lookupLimitReached,
		LastProcessed:      pf.lastProcessed,
	}
}

// PagedSearchResult is the outcome of a finder query.
type PagedSearchResult[T any] struct {
	// Entries holds the matching items in source order.
	Entries []T

	// Start and Count echo the requested window.  Count is
	// Unlimited if no count applied.
	Start int
	Count int

	// ProcessedCount is the number of items examined.
	ProcessedCount int

	// LookupLimit is the lookup limit in effect, or Unlimited.
	LookupLimit int

	// LookupLimitReached is true if the scan ended because the
	// lookup limit ran out, in which case more items may exist.
	LookupLimitReached bool

	// LastProcessed is the last item examined.  It is only
	// meaningful if ProcessedCount is positive.
	LastProcessed T
}

// IsEmpty returns true if nothing matched.
func (r *PagedSearchResult[T]) IsEmpty() bool {
	return len(r.Entries) == 0
}

// HasNextPage returns true if the page is full, so that a following
// page may have items.
func (r *PagedSearchResult[T]) HasNextPage() bool {
	return r.Count != Unlimited && r.Count > 0 && len(r.Entries) >= r.Count
}

// HasPrevPage returns true if items were skipped before this page.
func (r *PagedSearchResult[T]) HasPrevPage() bool {
	return r.Start > 0
}

// NextPageLocator rewrites the locator text that produced r so that it
// selects the following page.  It returns false if there is no next
// page or the locator cannot carry paging dimensions.
func (r *PagedSearchResult[T]) NextPageLocator(text string) (string, bool) {
	if !r.HasNextPage() {
		return "", false
	}
	return pageLocator(text, r.Start+r.Count, r.Count)
}

// PrevPageLocator rewrites the locator text that produced r so that it
// selects the preceding page.
func (r *PagedSearchResult[T]) PrevPageLocator(text string) (string, bool) {
	if !r.HasPrevPage() {
		return "", false
	}
	count := r.Count
	start := r.Start - count
	if count == Unlimited || start < 0 {
		count = r.Start
		start = 0
	}
	return pageLocator(text, start, count)
}

func pageLocator(text string, start, count int) (string, bool) {
	parsed, err := locator.Parse(text)
	if err != nil || parsed.IsSingleValue() {
		return "", false
	}
	parsed = parsed.With(StartDimension, strconv.Itoa(start))
	if count != Unlimited {
		parsed = parsed.With(CountDimension, strconv.Itoa(count))
	}
	return parsed.String(), true
}
