// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package finder evaluates locators against a collection of items.
// A Finder pairs a DataBinding, which knows how to list, look up, and
// filter one kind of item, with the generic machinery shared by every
// kind: paging, lookup limits, deduplication, the and/or/not/item
// logic operators, "nothing found" reporting, and request logging.
//
// Every Finder understands these dimensions on top of its binding's:
//
//     start:n        skip the first n matching items
//     count:n        return at most n items
//     lookupLimit:n  examine at most n items
//     unique:bool    drop repeated items
//     item:(loc)     use the items matched by loc as the source
//     and:(loc)      also require loc to match
//     or:(a:1,b:2)   require one of the dimensions to match
//     not:(loc)      require loc not to match
package finder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/locator"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
)

// Reserved dimension names.
const (
	StartDimension       = "start"
	CountDimension       = "count"
	LookupLimitDimension = "lookupLimit"
	UniqueDimension      = "unique"
	ItemDimension        = "item"
	AndDimension         = "and"
	OrDimension          = "or"
	NotDimension         = "not"
	ContextItemDimension = "$contextItem"
	ReportErrorDimension = "$reportErrorOnNothingFound"
)

// DefaultLookupLimitCountFactor is used when Settings does not give a
// lookup limit count factor.
const DefaultLookupLimitCountFactor = 1

// Settings holds the tunables shared by the finders of one process.
// The zero value is usable.
type Settings struct {
	// Logger receives per-request log entries.  Defaults to the
	// logrus standard logger.
	Logger logrus.FieldLogger

	// Clock times requests.  Defaults to the wall clock.
	Clock clock.Clock

	// HeavyRequestDuration is the elapsed time from which a
	// request is logged at Info level.  Zero disables it.
	HeavyRequestDuration time.Duration

	// HeavyRequestProcessed is the number of examined items from
	// which a request is logged at Info level.  Zero disables it.
	HeavyRequestProcessed int

	// LookupLimitCountFactor raises the default lookup limit to at
	// least this multiple of the requested window.
	LookupLimitCountFactor int

	// ParseCache, if non-nil, caches parsed locator text.
	ParseCache *locator.ParseCache

	// Metrics, if non-nil, records request statistics.
	Metrics *Metrics
}

// Finder answers locator queries over items of type T.  A Finder is
// safe for concurrent use if its binding is.
type Finder[T any] struct {
	name     string
	binding  DataBinding[T]
	settings Settings
	dedup    bool
	known    []string
	dims     []locator.Dimension
	hidden   []string
}

// New creates a Finder.  name identifies it in logs and metrics.
func New[T any](name string, binding DataBinding[T], settings Settings) *Finder[T] {
	if settings.Logger == nil {
		settings.Logger = logrus.StandardLogger()
	}
	if settings.Clock == nil {
		settings.Clock = clock.New()
	}
	if settings.LookupLimitCountFactor <= 0 {
		settings.LookupLimitCountFactor = DefaultLookupLimitCountFactor
	}
	f := &Finder[T]{
		name:     name,
		binding:  binding,
		settings: settings,
		dedup:    binding.NewDuplicateChecker() != nil,
	}
	f.dims = append(f.dims, binding.KnownDimensions()...)
	f.dims = append(f.dims, f.reservedDimensions()...)
	for _, dim := range f.dims {
		f.known = append(f.known, dim.Name)
	}
	f.hidden = binding.HiddenDimensions()
	f.known = append(f.known, f.hidden...)
	return f
}

func (f *Finder[T]) reservedDimensions() []locator.Dimension {
	dims := []locator.Dimension{
		{Name: StartDimension, Syntax: "<number>", Description: "Skip this many matching items"},
		{Name: CountDimension, Syntax: "<number>", Description: "Return at most this many items"},
		{Name: LookupLimitDimension, Syntax: "<number>", Description: "Examine at most this many items"},
	}
	if f.dedup {
		dims = append(dims, locator.Dimension{
			Name: UniqueDimension, Syntax: "<boolean>", Description: "Drop repeated items"})
	}
	dims = append(dims,
		locator.Dimension{Name: ItemDimension, Syntax: "<locator>", Description: "Use the items found by the locator; may be repeated"},
		locator.Dimension{Name: AndDimension, Syntax: "<locator>", Description: "Items must also match the locator"},
		locator.Dimension{Name: OrDimension, Syntax: "<locator>", Description: "Items must match one of the locator's dimensions"},
		locator.Dimension{Name: NotDimension, Syntax: "<locator>", Description: "Items must not match the locator"},
		locator.Dimension{Name: ContextItemDimension, Hidden: true},
		locator.Dimension{Name: ReportErrorDimension, Hidden: true},
	)
	return dims
}

// Name returns the name the finder was created with.
func (f *Finder[T]) Name() string {
	return f.name
}

// KnownDimensions returns every dimension this finder accepts, with
// descriptions.
func (f *Finder[T]) KnownDimensions() []locator.Dimension {
	return append([]locator.Dimension(nil), f.dims...)
}

// CanonicalLocator returns a locator that finds exactly item.
func (f *Finder[T]) CanonicalLocator(item T) string {
	return f.binding.ItemLocator(item)
}

// Items returns the page of items text selects.  A locator that
// matches nothing produces an empty result, unless it carries
// $reportErrorOnNothingFound:true.
func (f *Finder[T]) Items(ctx context.Context, text string) (*PagedSearchResult[T], error) {
	return f.run(ctx, text, query{
		defaultCount: positiveOr(f.binding.DefaultPageItemsCount(), Unlimited),
	})
}

// Item returns the one item text selects.  It returns
// locator.ErrNotFound if there is none and locator.ErrOperation if
// there are several.
func (f *Finder[T]) Item(ctx context.Context, text string) (T, error) {
	var zero T
	result, err := f.run(ctx, text, query{defaultCount: 2, single: true})
	if err != nil {
		return zero, err
	}
	switch len(result.Entries) {
	case 0:
		return zero, f.nothingFound(text, result)
	case 1:
		return result.Entries[0], nil
	default:
		return zero, locator.ErrOperation{Message: fmt.Sprintf(
			"Several items are found by locator '%s' while a single item is expected", text)}
	}
}

// Filter returns a predicate equivalent to text's filtering
// dimensions.  Paging and item dimensions are not allowed.
func (f *Finder[T]) Filter(ctx context.Context, text string) (ItemFilter[T], error) {
	loc, err := f.createLocator(text)
	if err != nil {
		return nil, err
	}
	return f.subFilter(ctx, loc)
}

// Check reports the error Items would return for a malformed or
// unsupported text, without reading any items.
func (f *Finder[T]) Check(ctx context.Context, text string) error {
	loc, err := f.createLocator(text)
	if err != nil {
		return err
	}
	return f.check(ctx, loc, query{
		defaultCount: positiveOr(f.binding.DefaultPageItemsCount(), Unlimited),
	})
}

// check consumes every dimension of loc the way items does, building
// but never running the filters.  Context item names are not resolved.
func (f *Finder[T]) check(ctx context.Context, loc *locator.Locator, q query) error {
	loc.MarkAllUnused()
	if loc.IsHelpRequested() {
		return f.help(loc)
	}
	if loc.Has(ContextItemDimension) {
		if _, _, err := loc.SingleDimensionValue(ContextItemDimension); err != nil {
			return badRequest(err)
		}
		return loc.CheckFullyProcessed()
	}
	if _, err := f.options(loc, q); err != nil {
		return err
	}
	lb, err := f.binding.LocatorDataBinding(ctx, loc)
	if err != nil {
		return badRequest(err)
	}
	if _, err = f.composeFilter(ctx, loc, lb); err != nil {
		return err
	}
	for _, sub := range loc.DimensionValue(ItemDimension) {
		subLoc, err := f.createLocator(sub)
		if err != nil {
			return err
		}
		if err = f.check(ctx, subLoc, query{defaultCount: Unlimited}); err != nil {
			return err
		}
	}
	return loc.CheckFullyProcessed()
}

type query struct {
	defaultCount int
	single       bool
}

type options struct {
	start       int
	count       int
	lookupLimit int
	unique      bool
	reportError bool
}

func positiveOr(n, otherwise int) int {
	if n > 0 {
		return n
	}
	return otherwise
}

func (f *Finder[T]) run(ctx context.Context, text string, q query) (*PagedSearchResult[T], error) {
	started := f.settings.Clock.Now()
	log := f.settings.Logger.WithFields(logrus.Fields{
		"finder":  f.name,
		"request": uuid.NewV4().String(),
		"locator": text,
	})
	result, err := f.evaluate(ctx, text, q)
	f.observe(log, f.settings.Clock.Now().Sub(started), result, err)
	return result, err
}

func (f *Finder[T]) evaluate(ctx context.Context, text string, q query) (*PagedSearchResult[T], error) {
	loc, err := f.createLocator(text)
	if err != nil {
		return nil, err
	}
	return f.items(ctx, loc, q)
}

func (f *Finder[T]) createLocator(text string) (*locator.Locator, error) {
	parsed, err := f.settings.ParseCache.Parse(text)
	if err != nil {
		return nil, err
	}
	loc, err := locator.FromParsed(parsed, nil, f.known...)
	if err != nil {
		return nil, badRequest(err)
	}
	loc.SetDimensions(f.dims)
	loc.AddHiddenDimensions(f.hidden...)
	return loc, nil
}

// badRequest converts locator processing errors to ErrBadRequest and
// passes everything else through.
func badRequest(err error) error {
	var lpe locator.ErrLocatorProcess
	if errors.As(err, &lpe) {
		return locator.ErrBadRequest{Message: lpe.Message}
	}
	return err
}

func (f *Finder[T]) help(loc *locator.Locator) error {
	return locator.ErrBadRequest{Message: "Locator help requested.\n" + loc.Describe()}
}

func (f *Finder[T]) items(ctx context.Context, loc *locator.Locator, q query) (*PagedSearchResult[T], error) {
	if loc.IsHelpRequested() {
		return nil, f.help(loc)
	}
	if loc.Has(ContextItemDimension) {
		return f.contextItems(ctx, loc)
	}

	opts, err := f.options(loc, q)
	if err != nil {
		return nil, err
	}

	if !loc.IsEmpty() && !loc.Has(ItemDimension) {
		item, found, err := f.binding.FindSingleItem(ctx, loc)
		if err != nil {
			var nf locator.ErrNotFound
			if errors.As(err, &nf) && !opts.reportError {
				if err := f.check(ctx, loc, q); err != nil {
					return nil, err
				}
				return f.emptyResult(opts), nil
			}
			return nil, badRequest(err)
		}
		if found {
			return f.filterSingle(ctx, loc, item, opts)
		}
		loc.MarkAllUnused()
		if opts, err = f.options(loc, q); err != nil {
			return nil, err
		}
	}

	lb, err := f.binding.LocatorDataBinding(ctx, loc)
	if err != nil {
		return nil, badRequest(err)
	}
	filter, err := f.composeFilter(ctx, loc, lb)
	if err != nil {
		return nil, err
	}

	var (
		source  ItemHolder[T]
		lazyErr error
	)
	if subs := loc.DimensionValue(ItemDimension); len(subs) > 0 {
		source = f.itemUnion(ctx, subs, &lazyErr)
		filter = nonStopping(filter)
	} else if source, err = lb.PrefilteredItems(); err != nil {
		return nil, badRequest(err)
	}
	if opts.unique {
		source = Unique(source, f.binding.NewDuplicateChecker())
	}

	if err := loc.CheckFullyProcessed(); err != nil {
		return nil, err
	}

	processor := NewFilterItemProcessor(NewPagingFilter(filter, opts.start, opts.count, opts.lookupLimit))
	if err := processor.Run(ctx, source); err != nil {
		return nil, err
	}
	if lazyErr != nil {
		return nil, lazyErr
	}
	result := processor.Result()
	if result.IsEmpty() && opts.reportError {
		return nil, f.nothingFound(loc.Text(), result)
	}
	return result, nil
}

func (f *Finder[T]) options(loc *locator.Locator, q query) (options, error) {
	opts := options{count: q.defaultCount, lookupLimit: Unlimited, reportError: q.single}

	start, present, err := loc.Int(StartDimension)
	if err != nil {
		return opts, badRequest(err)
	}
	if present {
		if start < 0 {
			return opts, locator.ErrBadRequest{Message: fmt.Sprintf(
				"Invalid value '%d' of dimension '%s': should not be negative", start, StartDimension)}
		}
		opts.start = start
	}

	count, present, err := loc.Int(CountDimension)
	if err != nil {
		return opts, badRequest(err)
	}
	if present && !q.single {
		if count < 0 {
			return opts, locator.ErrBadRequest{Message: fmt.Sprintf(
				"Invalid value '%d' of dimension '%s': should not be negative", count, CountDimension)}
		}
		opts.count = count
	}

	lookupLimit, present, err := loc.Int(LookupLimitDimension)
	if err != nil {
		return opts, badRequest(err)
	}
	if present {
		if lookupLimit <= 0 {
			return opts, locator.ErrBadRequest{Message: fmt.Sprintf(
				"Invalid value '%d' of dimension '%s': should be positive", lookupLimit, LookupLimitDimension)}
		}
		opts.lookupLimit = lookupLimit
	} else {
		opts.lookupLimit = positiveOr(f.binding.DefaultLookupLimit(), Unlimited)
		if opts.lookupLimit != Unlimited && opts.count != Unlimited {
			wanted := (opts.start + opts.count) * f.settings.LookupLimitCountFactor
			if wanted > opts.lookupLimit {
				opts.lookupLimit = wanted
			}
		}
	}

	report, present, err := loc.Bool(ReportErrorDimension)
	if err != nil {
		return opts, badRequest(err)
	}
	if present {
		opts.reportError = report
	}

	if f.dedup {
		unique, present, err := loc.Bool(UniqueDimension)
		if err != nil {
			return opts, badRequest(err)
		}
		if present {
			opts.unique = unique
		} else {
			opts.unique = loc.Has(ItemDimension)
		}
	}
	return opts, nil
}

func (f *Finder[T]) emptyResult(opts options) *PagedSearchResult[T] {
	return &PagedSearchResult[T]{
		Start:       opts.start,
		Count:       opts.count,
		LookupLimit: opts.lookupLimit,
	}
}

// filterSingle checks the rest of the locator against an item the
// binding found directly.
func (f *Finder[T]) filterSingle(ctx context.Context, loc *locator.Locator, item T, opts options) (*PagedSearchResult[T], error) {
	foundBy := loc.UsedDimensions()
	lb, err := f.binding.LocatorDataBinding(ctx, loc)
	if err != nil {
		return nil, badRequest(err)
	}
	filter, err := f.composeFilter(ctx, loc, lb)
	if err != nil {
		return nil, err
	}
	if err := loc.CheckFullyProcessed(); err != nil {
		return nil, err
	}
	processor := NewFilterItemProcessor(NewPagingFilter(filter, opts.start, opts.count, Unlimited))
	if err := processor.Run(ctx, Of(item)); err != nil {
		return nil, err
	}
	result := processor.Result()
	if result.IsEmpty() && opts.reportError {
		if loc.IsSingleValue() {
			return nil, locator.ErrNotFound{Message: fmt.Sprintf(
				"Item '%s' does not match locator '%s'", f.binding.ItemLocator(item), loc.Text())}
		}
		return nil, locator.ErrNotFound{Message: fmt.Sprintf(
			"Item '%s' found by dimensions [%s] does not match locator '%s'",
			f.binding.ItemLocator(item), strings.Join(foundBy, ", "), loc.Text())}
	}
	return result, nil
}

func (f *Finder[T]) contextItems(ctx context.Context, loc *locator.Locator) (*PagedSearchResult[T], error) {
	name, _, err := loc.SingleDimensionValue(ContextItemDimension)
	if err != nil {
		return nil, badRequest(err)
	}
	items, ok := ContextItems[T](ctx, name)
	if !ok || len(items) == 0 {
		return nil, locator.ErrBadRequest{Message: fmt.Sprintf(
			"No context items are bound under name '%s'", name)}
	}
	if err := loc.CheckFullyProcessed(); err != nil {
		return nil, err
	}
	return &PagedSearchResult[T]{
		Entries:        items,
		Count:          Unlimited,
		ProcessedCount: len(items),
		LookupLimit:    Unlimited,
		LastProcessed:  items[len(items)-1],
	}, nil
}

// itemUnion lazily concatenates the results of item sub-locators.
// The first failing sub-locator's error is stored in *errp and stops
// the stream.
func (f *Finder[T]) itemUnion(ctx context.Context, subs []string, errp *error) ItemHolder[T] {
	holders := make([]ItemHolder[T], len(subs))
	for i, sub := range subs {
		sub := sub
		holders[i] = Lazy(func() (ItemHolder[T], error) {
			if *errp != nil {
				return Empty[T](), nil
			}
			loc, err := f.createLocator(sub)
			if err != nil {
				return nil, err
			}
			result, err := f.items(ctx, loc, query{defaultCount: Unlimited})
			if err != nil {
				return nil, err
			}
			return Of(result.Entries...), nil
		}, func(err error) { *errp = err })
	}
	return Concat(holders...)
}

// composeFilter combines the binding's filter for loc with its logic
// operator dimensions.
func (f *Finder[T]) composeFilter(ctx context.Context, loc *locator.Locator, lb LocatorDataBinding[T]) (ItemFilter[T], error) {
	base, err := lb.Filter()
	if err != nil {
		return nil, badRequest(err)
	}
	filters := []ItemFilter[T]{base}

	for _, sub := range loc.DimensionValue(AndDimension) {
		filter, err := f.subFilterText(ctx, sub)
		if err != nil {
			return nil, err
		}
		filters = append(filters, filter)
	}

	for _, sub := range loc.DimensionValue(OrDimension) {
		parsed, err := f.settings.ParseCache.Parse(sub)
		if err != nil {
			return nil, err
		}
		if parsed.IsSingleValue() || parsed.IsEmpty() {
			return nil, locator.ErrBadRequest{Message: fmt.Sprintf(
				"Dimension '%s' needs a locator with dimensions, got '%s'", OrDimension, sub)}
		}
		var alternatives []ItemFilter[T]
		for _, pair := range parsed.Pairs() {
			alternative, err := f.subFilterText(ctx, locator.Of(pair.Name, pair.Value))
			if err != nil {
				return nil, err
			}
			alternatives = append(alternatives, alternative)
		}
		filters = append(filters, Or(alternatives...))
	}

	for _, sub := range loc.DimensionValue(NotDimension) {
		filter, err := f.subFilterText(ctx, sub)
		if err != nil {
			return nil, err
		}
		filters = append(filters, Not(filter))
	}
	return And(filters...), nil
}

func (f *Finder[T]) subFilterText(ctx context.Context, text string) (ItemFilter[T], error) {
	loc, err := f.createLocator(text)
	if err != nil {
		return nil, err
	}
	return f.subFilter(ctx, loc)
}

func (f *Finder[T]) subFilter(ctx context.Context, loc *locator.Locator) (ItemFilter[T], error) {
	if loc.IsHelpRequested() {
		return nil, f.help(loc)
	}
	lb, err := f.binding.LocatorDataBinding(ctx, loc)
	if err != nil {
		return nil, badRequest(err)
	}
	filter, err := f.composeFilter(ctx, loc, lb)
	if err != nil {
		return nil, err
	}
	if err := loc.CheckFullyProcessed(); err != nil {
		return nil, err
	}
	return filter, nil
}

func (f *Finder[T]) nothingFound(text string, result *PagedSearchResult[T]) error {
	if result.LookupLimitReached {
		message := fmt.Sprintf("Nothing is found by locator '%s' while processing first %d items",
			text, result.ProcessedCount)
		if result.ProcessedCount > 0 {
			message += fmt.Sprintf(" (last processed item: '%s')", f.binding.ItemLocator(result.LastProcessed))
		}
		return locator.ErrNotFound{Message: message + ". Consider increasing lookupLimit."}
	}
	return locator.ErrNotFound{Message: fmt.Sprintf("Nothing is found by locator '%s'.", text)}
}

func (f *Finder[T]) observe(log logrus.FieldLogger, elapsed time.Duration, result *PagedSearchResult[T], err error) {
	fields := logrus.Fields{"duration": elapsed}
	processed := 0
	if result != nil {
		processed = result.ProcessedCount
		fields["processed"] = processed
		fields["found"] = len(result.Entries)
		fields["lookupLimitReached"] = result.LookupLimitReached
	}
	heavy := (f.settings.HeavyRequestDuration > 0 && elapsed >= f.settings.HeavyRequestDuration) ||
		(f.settings.HeavyRequestProcessed > 0 && processed >= f.settings.HeavyRequestProcessed)
	f.settings.Metrics.observe(f.name, elapsed, processed, heavy, err)

	entry := log.WithFields(fields)
	switch {
	case err != nil:
		entry.WithError(err).Debug("locator query failed")
	case heavy:
		entry.Info("heavy locator request")
	default:
		entry.Debug("locator query")
	}
}
