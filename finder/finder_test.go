// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package finder

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/locator"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var allStrings = []string{"a1", "a2", "a3", "b1", "b2", "b3", "c1", "c2", "c3"}

func identity(s string) string { return s }

// stringBinding builds a binding over a fixed list of strings, with
// name, prefix, suffix and upTo dimensions.
func stringBinding(items []string, count, lookupLimit int) *TypedBinding[string] {
	all := func(context.Context) (ItemHolder[string], error) {
		return Of(items...), nil
	}
	itemLocator := func(item string) string {
		return locator.Of("name", item)
	}
	return NewTypedBinding(all, itemLocator).
		StringDimension(locator.Dimension{Name: "name", Description: "exact item"}, identity).
		PrefixDimension(locator.Dimension{Name: "prefix", Description: "item prefix"}, identity).
		Dimension(locator.Dimension{Name: "suffix", Description: "item suffix"},
			func(_ context.Context, value string) (ItemFilter[string], error) {
				return FilterFunc[string](func(item string) bool {
					return strings.HasSuffix(item, value)
				}), nil
			}).
		Dimension(locator.Dimension{Name: "upTo", Description: "items up to this one"},
			func(_ context.Context, value string) (ItemFilter[string], error) {
				return StoppingFilter[string]{
					Stop: func(item string) bool { return item >= value },
				}, nil
			}).
		SingleValue("name").
		SingleItem(func(_ context.Context, loc *locator.Locator) (string, bool, error) {
			name, ok := loc.SingleValue()
			if !ok {
				var err error
				name, ok, err = loc.SingleDimensionValue("name")
				if err != nil || !ok {
					return "", false, err
				}
			}
			for _, item := range items {
				if item == name {
					return item, true, nil
				}
			}
			return "", false, locator.ErrNotFound{Message: "no item " + name}
		}).
		Unique(identity).
		Defaults(count, lookupLimit)
}

// Suite runs finder queries over allStrings.
type Suite struct {
	suite.Suite
	Clock   *clock.Mock
	Hook    *logtest.Hook
	Metrics *Metrics
	Finder  *Finder[string]
}

func (s *Suite) SetupTest() {
	s.Clock = clock.NewMock()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	s.Hook = hook
	s.Metrics = NewMetrics("test")
	s.Finder = New[string]("strings", stringBinding(allStrings, 5, 0), Settings{
		Logger:                logger,
		Clock:                 s.Clock,
		HeavyRequestProcessed: len(allStrings),
		ParseCache:            locator.NewParseCache(16),
		Metrics:               s.Metrics,
	})
}

func (s *Suite) items(text string) []string {
	result, err := s.Finder.Items(context.Background(), text)
	if s.NoError(err, text) {
		return result.Entries
	}
	return nil
}

func (s *Suite) TestPrefixSuffix() {
	s.Equal([]string{"a2"}, s.items("prefix:a,suffix:2"))
	s.Equal([]string{"b1", "b2", "b3"}, s.items("prefix:b"))
	s.Empty(s.items("prefix:a,prefix:b"))
}

func (s *Suite) TestOrWithCount() {
	s.Equal([]string{"a1", "a2", "a3", "c1"}, s.items("or:(prefix:a,prefix:c),count:4"))
}

func (s *Suite) TestEmptyLocatorDefaultCount() {
	result, err := s.Finder.Items(context.Background(), "")
	if s.NoError(err) {
		s.Equal([]string{"a1", "a2", "a3", "b1", "b2"}, result.Entries)
		s.True(result.HasNextPage())
		s.False(result.HasPrevPage())
		next, ok := result.NextPageLocator("")
		s.True(ok)
		s.Equal("start:5,count:5", next)
		s.Equal([]string{"b3", "c1", "c2", "c3"}, s.items(next))
	}
}

func TestEmptyLocatorSourceOrder(t *testing.T) {
	items := []string{"b1", "a1", "a2", "a3", "a4", "a5", "a6", "c1", "c2", "c3"}
	f := New[string]("unsorted", stringBinding(items, 5, 0), Settings{Clock: clock.NewMock()})
	result, err := f.Items(context.Background(), "")
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"b1", "a1", "a2", "a3", "a4"}, result.Entries)
	}
	result, err = f.Items(context.Background(), "start:5")
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"a5", "a6", "c1", "c2", "c3"}, result.Entries)
	}
}

func (s *Suite) TestRepeatable() {
	for _, text := range []string{
		"",
		"start:3,count:2",
		"or:(prefix:a,prefix:c),count:4",
		"item:(prefix:a),item:(suffix:1)",
		"item:(prefix:b),item:(prefix:b),count:10",
		"item:(name:c1),item:(name:a1),upTo:b3",
		"prefix:b,unique:true",
		"not:(suffix:2),lookupLimit:4",
	} {
		first, err := s.Finder.Items(context.Background(), text)
		if !s.NoError(err, text) {
			continue
		}
		second, err := s.Finder.Items(context.Background(), text)
		if s.NoError(err, text) {
			s.Equal(first.Entries, second.Entries, text)
			s.Equal(first.ProcessedCount, second.ProcessedCount, text)
			s.Equal(first.LookupLimitReached, second.LookupLimitReached, text)
		}
	}
	s.NotZero(s.Finder.settings.ParseCache.Len())
}

func (s *Suite) TestSingleValue() {
	s.Equal([]string{"b2"}, s.items("b2"))
	item, err := s.Finder.Item(context.Background(), "b2")
	s.NoError(err)
	s.Equal("b2", item)
	s.Equal("name:b2", s.Finder.CanonicalLocator(item))
}

func (s *Suite) TestNothingFound() {
	ctx := context.Background()
	s.Empty(s.items("name:zz"))
	s.Empty(s.items("prefix:zz"))
	s.Empty(s.items("prefix:zz,$reportErrorOnNothingFound:false"))

	_, err := s.Finder.Items(ctx, "name:zz,$reportErrorOnNothingFound:true")
	s.IsType(locator.ErrNotFound{}, err)

	_, err = s.Finder.Items(ctx, "prefix:zz,$reportErrorOnNothingFound:true")
	if s.IsType(locator.ErrNotFound{}, err) {
		s.Contains(err.Error(), "prefix:zz")
	}

	_, err = s.Finder.Item(ctx, "zz")
	s.IsType(locator.ErrNotFound{}, err)

	_, err = s.Finder.Item(ctx, "prefix:zz")
	s.IsType(locator.ErrNotFound{}, err)
}

func (s *Suite) TestNotFoundStillChecked() {
	for _, text := range []string{
		"name:zz,or:(prefix)",
		"name:zz,and:(count:1)",
		"name:zz,not:(prefx:a)",
		"name:zz,and:($help)",
	} {
		_, err := s.Finder.Items(context.Background(), text)
		s.IsType(locator.ErrBadRequest{}, err, text)
	}
	s.Empty(s.items("name:zz,or:(prefix:a,suffix:1),count:2"))
}

func (s *Suite) TestCheck() {
	ctx := context.Background()
	for _, text := range []string{
		"",
		"b2",
		"prefix:a,start:2,count:1,lookupLimit:5",
		"item:(prefix:a),unique:false",
		"item:($contextItem:unbound),name:x",
	} {
		s.NoError(s.Finder.Check(ctx, text), text)
	}
	for _, text := range []string{
		"prefx:a",
		"count:x",
		"or:(prefix)",
		"item:(bogus:1)",
		"$contextItem:a,prefix:b",
		"$help",
	} {
		s.IsType(locator.ErrBadRequest{}, s.Finder.Check(ctx, text), text)
	}
}

func (s *Suite) TestSingleItemFilteredOut() {
	s.Empty(s.items("name:a1,suffix:2"))
	_, err := s.Finder.Item(context.Background(), "name:a1,suffix:2")
	if s.IsType(locator.ErrNotFound{}, err) {
		s.Contains(err.Error(), "[name]")
	}
}

func (s *Suite) TestItemSeveral() {
	_, err := s.Finder.Item(context.Background(), "prefix:a")
	s.IsType(locator.ErrOperation{}, err)

	item, err := s.Finder.Item(context.Background(), "prefix:a,suffix:3")
	s.NoError(err)
	s.Equal("a3", item)
}

func (s *Suite) TestPaging() {
	for start := 0; start <= len(allStrings); start++ {
		for count := 1; count <= 4; count++ {
			text := fmt.Sprintf("start:%d,count:%d", start, count)
			end := start + count
			if end > len(allStrings) {
				end = len(allStrings)
			}
			expected := allStrings[start:end]
			if len(expected) == 0 {
				s.Empty(s.items(text), text)
			} else {
				s.Equal(expected, s.items(text), text)
			}
		}
	}
}

func (s *Suite) TestPrevPage() {
	result, err := s.Finder.Items(context.Background(), "start:3,count:2")
	if s.NoError(err) {
		prev, ok := result.PrevPageLocator("start:3,count:2")
		s.True(ok)
		s.Equal("start:1,count:2", prev)
	}
}

func (s *Suite) TestLookupLimit() {
	result, err := s.Finder.Items(context.Background(), "suffix:3,lookupLimit:4")
	if s.NoError(err) {
		s.Equal([]string{"a3"}, result.Entries)
		s.Equal(4, result.ProcessedCount)
		s.True(result.LookupLimitReached)
		s.Equal("b1", result.LastProcessed)
	}

	result, err = s.Finder.Items(context.Background(), "suffix:3,lookupLimit:9")
	if s.NoError(err) {
		s.Equal([]string{"a3", "b3", "c3"}, result.Entries)
		s.False(result.LookupLimitReached)
	}

	_, err = s.Finder.Items(context.Background(), "prefix:c,lookupLimit:4,$reportErrorOnNothingFound:true")
	if s.IsType(locator.ErrNotFound{}, err) {
		s.Contains(err.Error(), "lookupLimit")
		s.Contains(err.Error(), "name:b1")
	}
}

func (s *Suite) TestLookupLimitCountFactor() {
	f := New[string]("strings", stringBinding(allStrings, 5, 2), Settings{
		Clock:                  s.Clock,
		LookupLimitCountFactor: 3,
	})
	result, err := f.Items(context.Background(), "count:2")
	if s.NoError(err) {
		s.Equal(6, result.LookupLimit)
	}
	result, err = f.Items(context.Background(), "count:2,lookupLimit:1")
	if s.NoError(err) {
		s.Equal(1, result.LookupLimit)
		s.Equal([]string{"a1"}, result.Entries)
	}
}

func (s *Suite) TestLogicLaws() {
	s.Equal(s.items("prefix:a,count:100"), s.items("and:(prefix:a),count:100"))
	s.Equal(s.items("prefix:b,count:100"), s.items("not:(not:(prefix:b)),count:100"))
	s.Equal(s.items("prefix:c,count:100"), s.items("or:(prefix:c),count:100"))
	s.Equal([]string{"b1", "b2", "b3", "c1", "c2", "c3"}, s.items("not:(prefix:a),count:100"))
	s.Equal([]string{"a1", "b1", "b2", "b3", "c1"},
		s.items("or:(prefix:b,suffix:1),count:100"))
	s.Equal([]string{"a1", "b2"},
		s.items("or:(and:(prefix:a,suffix:1),and:(prefix:b,suffix:2)),count:100"))
}

func (s *Suite) TestItemUnion() {
	s.Equal([]string{"a1", "a2", "a3", "b1", "c1"},
		s.items("item:(prefix:a),item:(suffix:1)"))
	s.Equal([]string{"a1", "a2", "a3", "a1", "b1", "c1"},
		s.items("item:(prefix:a),item:(suffix:1),unique:false,count:10"))
	s.Equal([]string{"a1", "b1", "c1"},
		s.items("item:(prefix:a),item:(suffix:1),suffix:1"))
	s.Equal([]string{"b1"},
		s.items("item:(prefix:a),item:(suffix:1),name:b1"))
}

func (s *Suite) TestUniqueNotSupported() {
	f := New[string]("strings", stringBinding(allStrings, 5, 0).Unique(nil), Settings{Clock: s.Clock})
	_, err := f.Items(context.Background(), "unique:true")
	s.IsType(locator.ErrBadRequest{}, err)
}

func (s *Suite) TestShouldStop() {
	result, err := s.Finder.Items(context.Background(), "upTo:b1,count:100")
	if s.NoError(err) {
		s.Equal([]string{"a1", "a2", "a3", "b1"}, result.Entries)
		s.Equal(4, result.ProcessedCount)
	}
}

func (s *Suite) TestItemUnionIgnoresStop() {
	s.Equal([]string{"c1", "a1"}, s.items("item:(name:c1),item:(name:a1),upTo:b3"))
}

func TestAlternatives(t *testing.T) {
	binding := stringBinding(allStrings, 0, 0).Alternatives("suffix")
	f := New[string]("alternatives", binding, Settings{Clock: clock.NewMock()})
	result, err := f.Items(context.Background(), "suffix:1,suffix:3,prefix:b")
	if assert.NoError(t, err) {
		assert.Equal(t, []string{"b1", "b3"}, result.Entries)
	}
	assert.Panics(t, func() { stringBinding(allStrings, 0, 0).Alternatives("missing") })
}

func (s *Suite) TestUnknownDimension() {
	_, err := s.Finder.Items(context.Background(), "prefx:a")
	if s.IsType(locator.ErrBadRequest{}, err) {
		s.Contains(err.Error(), "Did you mean 'prefix'?")
	}
}

func (s *Suite) TestBadValues() {
	for _, text := range []string{
		"count:x",
		"start:-1",
		"lookupLimit:0",
		"or:(prefix)",
		"and:(count:1)",
		"a1,",
		"prefix:(a",
		"unique:maybe",
	} {
		_, err := s.Finder.Items(context.Background(), text)
		s.IsType(locator.ErrBadRequest{}, err, text)
	}
}

func (s *Suite) TestHelp() {
	for _, text := range []string{"$help", "prefix:a,$help:true", "and:($help)"} {
		_, err := s.Finder.Items(context.Background(), text)
		if s.IsType(locator.ErrBadRequest{}, err, text) {
			s.Contains(err.Error(), "prefix")
			s.Contains(err.Error(), "lookupLimit")
			s.NotContains(err.Error(), ContextItemDimension)
		}
	}
}

func (s *Suite) TestContextItems() {
	ctx := WithContextItems(context.Background(), "kids", "x", "y")
	result, err := s.Finder.Items(ctx, "$contextItem:kids")
	if s.NoError(err) {
		s.Equal([]string{"x", "y"}, result.Entries)
	}

	result, err = s.Finder.Items(ctx, "item:($contextItem:kids),name:y")
	if s.NoError(err) {
		s.Equal([]string{"y"}, result.Entries)
	}

	_, err = s.Finder.Items(ctx, "$contextItem:other")
	s.IsType(locator.ErrBadRequest{}, err)

	intCtx := WithContextItems(context.Background(), "kids", 1, 2)
	_, err = s.Finder.Items(intCtx, "$contextItem:kids")
	s.IsType(locator.ErrBadRequest{}, err)
}

func (s *Suite) TestCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Finder.Items(ctx, "prefix:a")
	s.Equal(context.Canceled, err)
}

func (s *Suite) TestFilter() {
	filter, err := s.Finder.Filter(context.Background(), "or:(prefix:b,name:c2)")
	if s.NoError(err) {
		s.True(filter.IsIncluded("b3"))
		s.True(filter.IsIncluded("c2"))
		s.False(filter.IsIncluded("a1"))
	}

	_, err = s.Finder.Filter(context.Background(), "count:1")
	s.IsType(locator.ErrBadRequest{}, err)
}

func (s *Suite) TestHeavyRequestLogging() {
	s.items("name:a1")
	if entry := s.Hook.LastEntry(); s.NotNil(entry) {
		s.Equal(logrus.DebugLevel, entry.Level)
		s.Equal("strings", entry.Data["finder"])
		s.Equal("name:a1", entry.Data["locator"])
		s.NotEmpty(entry.Data["request"])
	}

	s.items("suffix:3")
	if entry := s.Hook.LastEntry(); s.NotNil(entry) {
		s.Equal(logrus.InfoLevel, entry.Level)
		s.Equal(len(allStrings), entry.Data["processed"])
	}
}

func (s *Suite) TestHeavyRequestDuration() {
	logger, hook := logtest.NewNullLogger()
	binding := stringBinding(allStrings, 5, 0).
		Dimension(locator.Dimension{Name: "slow"}, func(_ context.Context, value string) (ItemFilter[string], error) {
			return FilterFunc[string](func(string) bool {
				s.Clock.Add(time.Second)
				return true
			}), nil
		})
	f := New[string]("slow", binding, Settings{
		Logger:               logger,
		Clock:                s.Clock,
		HeavyRequestDuration: 3 * time.Second,
	})
	_, err := f.Items(context.Background(), "slow:yes,count:2")
	s.NoError(err)
	s.Empty(hook.Entries)

	_, err = f.Items(context.Background(), "slow:yes,count:4")
	s.NoError(err)
	if entry := hook.LastEntry(); s.NotNil(entry) {
		s.Equal(logrus.InfoLevel, entry.Level)
		s.Equal(4*time.Second, entry.Data["duration"])
	}
}

func (s *Suite) TestMetrics() {
	s.items("suffix:3")
	_, _ = s.Finder.Items(context.Background(), "count:x")
	s.Equal(float64(len(allStrings)),
		testutil.ToFloat64(s.Metrics.processed.WithLabelValues("strings")))
	s.Equal(float64(1), testutil.ToFloat64(s.Metrics.heavy.WithLabelValues("strings")))
	s.Equal(2, testutil.CollectAndCount(s.Metrics.requests))
}

func TestFinder(t *testing.T) {
	suite.Run(t, &Suite{})
}

func TestUnlimitedDefaults(t *testing.T) {
	f := New[string]("strings", stringBinding(allStrings, 0, 0), Settings{})
	result, err := f.Items(context.Background(), "")
	if assert.NoError(t, err) {
		assert.Equal(t, allStrings, result.Entries)
		assert.Equal(t, Unlimited, result.Count)
		assert.Equal(t, Unlimited, result.LookupLimit)
		assert.False(t, result.HasNextPage())
	}
}
