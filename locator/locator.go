// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package locator implements the locator query language.  A locator
// is a short string that selects some set of items, like
//
//     workSpec:(name:ingest),status:failed,count:10
//
// A locator is either a bare single value ("ingest") or a
// comma-separated list of dimensions, each with a value.  Values that
// contain locator punctuation are wrapped in parentheses, and a
// dimension's value may itself be a locator.  The same dimension may
// appear more than once.
//
// A Locator also records which dimensions its consumer actually read.
// Once a query has been fully evaluated, CheckFullyProcessed fails if
// any dimension the caller supplied was ignored, so a mistyped
// dimension produces an error rather than an unfiltered result.
package locator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// HelpDimension is the dimension (or single value) that asks for a
// description of the supported dimensions instead of a result.
const HelpDimension = "$help"

// Locator is a parsed locator plus the bookkeeping of which
// dimensions have been consumed.  A Locator is not safe for
// concurrent use; create one per query.
type Locator struct {
	parsed   Parsed
	values   map[string][]string
	names    []string
	known    map[string]bool
	hidden   map[string]bool
	dims     []Dimension
	used     usage
	defaults *Locator
	help     bool
}

// Create parses text into a new Locator.  defaults, if non-nil, is
// consulted for dimensions text does not contain.  If known is
// non-empty, any dimension outside it produces ErrLocatorProcess,
// unless the locator asks for help.
func Create(text string, defaults *Locator, known ...string) (*Locator, error) {
	parsed, err := Parse(text)
	if err != nil {
		return nil, err
	}
	return FromParsed(parsed, defaults, known...)
}

// FromParsed creates a new Locator from an already-parsed locator.
func FromParsed(parsed Parsed, defaults *Locator, known ...string) (*Locator, error) {
	l := &Locator{
		parsed:   parsed,
		values:   make(map[string][]string),
		hidden:   make(map[string]bool),
		used:     newUsage(),
		defaults: defaults,
	}
	for _, pair := range parsed.pairs {
		if _, seen := l.values[pair.Name]; !seen {
			l.names = append(l.names, pair.Name)
		}
		l.values[pair.Name] = append(l.values[pair.Name], pair.Value)
	}

	if parsed.single && parsed.value == HelpDimension {
		l.help = true
		l.used.mark(singleValueKey)
	}
	if _, present := l.values[HelpDimension]; present {
		l.help = true
		l.used.mark(HelpDimension)
	}

	if len(known) > 0 {
		l.known = make(map[string]bool)
		for _, name := range known {
			l.known[name] = true
		}
		l.known[HelpDimension] = true
		if !l.help {
			for _, name := range l.names {
				if !l.known[name] {
					return nil, ErrLocatorProcess{Message: unknownDimensionMessage(name, known)}
				}
			}
		}
	}
	return l, nil
}

// Text returns the text this locator was created from.
func (l *Locator) Text() string {
	return l.parsed.text
}

// String returns the canonical form of this locator.
func (l *Locator) String() string {
	return l.parsed.String()
}

// Parsed returns the immutable parsed form of this locator.
func (l *Locator) Parsed() Parsed {
	return l.parsed
}

// IsSingleValue returns true if this locator is a bare value.
func (l *Locator) IsSingleValue() bool {
	return l.parsed.single
}

// IsEmpty returns true if this locator has no content at all.
func (l *Locator) IsEmpty() bool {
	return l.parsed.IsEmpty()
}

// IsHelpRequested returns true if this locator contains the $help
// marker.
func (l *Locator) IsHelpRequested() bool {
	return l.help
}

// DimensionNames returns the distinct dimension names present in this
// locator, in order of first appearance.
func (l *Locator) DimensionNames() []string {
	return append([]string(nil), l.names...)
}

// Pairs returns every dimension occurrence in order.  It does not
// mark anything used.
func (l *Locator) Pairs() []Pair {
	return l.parsed.Pairs()
}

// Has returns true if the dimension is present in this locator itself
// (not its defaults).  It does not mark the dimension used.
func (l *Locator) Has(name string) bool {
	_, present := l.values[name]
	return present
}

// SingleValue returns the bare value of a single-value locator and
// marks it used.
func (l *Locator) SingleValue() (string, bool) {
	if !l.parsed.single {
		return "", false
	}
	l.used.mark(singleValueKey)
	return l.parsed.value, true
}

// Consume returns all of the values of a dimension, falling back to
// the defaults locator, and marks the dimension used.  The boolean
// result is false if neither locator has the dimension.
func (l *Locator) Consume(name string) ([]string, bool) {
	l.used.mark(name)
	if values, present := l.values[name]; present {
		return append([]string(nil), values...), true
	}
	if l.defaults != nil {
		if values, present := l.defaults.values[name]; present {
			return append([]string(nil), values...), true
		}
	}
	return nil, false
}

// DimensionValue returns all of the values of a dimension, or nil if
// it is absent, and marks it used.
func (l *Locator) DimensionValue(name string) []string {
	values, _ := l.Consume(name)
	return values
}

// SingleDimensionValue returns the value of a dimension that may
// appear at most once and marks it used.  Repeating the dimension is
// an ErrLocatorProcess.
func (l *Locator) SingleDimensionValue(name string) (string, bool, error) {
	values, present := l.Consume(name)
	if !present || len(values) == 0 {
		return "", false, nil
	}
	if len(values) > 1 {
		return "", false, ErrLocatorProcess{Message: fmt.Sprintf(
			"Only single value is supported for locator dimension '%s'", name)}
	}
	return values[0], true, nil
}

// Int64 reads a single-valued integer dimension.
func (l *Locator) Int64(name string) (int64, bool, error) {
	value, present, err := l.SingleDimensionValue(name)
	if err != nil || !present {
		return 0, false, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, false, ErrLocatorProcess{Message: fmt.Sprintf(
			"Invalid value '%s' of dimension '%s': should be a number", value, name)}
	}
	return n, true, nil
}

// Int is Int64 for values that fit an int.
func (l *Locator) Int(name string) (int, bool, error) {
	n, present, err := l.Int64(name)
	return int(n), present, err
}

// Bool reads a single-valued boolean dimension.  The usual truthy and
// falsy spellings are accepted; "any" and "all" count as absent.
func (l *Locator) Bool(name string) (value bool, present bool, err error) {
	text, present, err := l.SingleDimensionValue(name)
	if err != nil || !present {
		return false, false, err
	}
	value, present, ok := ParseBool(text)
	if !ok {
		err = ErrLocatorProcess{Message: fmt.Sprintf(
			"Invalid value '%s' of dimension '%s': should be true, false or any", text, name)}
	}
	return value, present, err
}

// ParseBool interprets a boolean dimension value.  present is false for
// "any"; ok is false if text is not recognized at all.
func ParseBool(text string) (value, present, ok bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "0", "f", "n", "false", "off", "no":
		return false, true, true
	case "1", "t", "y", "true", "on", "yes":
		return true, true, true
	case "any", "all":
		return false, false, true
	default:
		return false, false, false
	}
}

// AddHiddenDimensions marks dimensions that are accepted but are
// neither described in help nor required to be consumed.
func (l *Locator) AddHiddenDimensions(names ...string) {
	for _, name := range names {
		l.hidden[name] = true
	}
}

// SetDimensions records the descriptions used by Describe.
func (l *Locator) SetDimensions(dims []Dimension) {
	l.dims = dims
	for _, dim := range dims {
		if dim.Hidden {
			l.hidden[dim.Name] = true
		}
	}
}

// Describe returns human-readable help for the dimensions this
// locator supports.
func (l *Locator) Describe() string {
	return Describe(l.dims)
}

// MarkUsed marks dimensions as consumed.
func (l *Locator) MarkUsed(names ...string) {
	l.used.mark(names...)
}

// MarkUnused forgets that dimensions were consumed.
func (l *Locator) MarkUnused(names ...string) {
	l.used.unmark(names...)
}

// MarkAllUnused forgets everything that was consumed, except the help
// marker.
func (l *Locator) MarkAllUnused() {
	l.used.reset()
	if l.help {
		l.used.mark(HelpDimension)
		if l.parsed.single {
			l.used.mark(singleValueKey)
		}
	}
}

// UsedDimensions returns the present dimensions that have been
// consumed, in locator order.
func (l *Locator) UsedDimensions() []string {
	var result []string
	for _, name := range l.names {
		if l.used.isUsed(name) {
			result = append(result, name)
		}
	}
	return result
}

// UnusedDimensions returns the present, non-hidden dimensions that
// have not been consumed, in locator order.
func (l *Locator) UnusedDimensions() []string {
	return unprocessed(l.names, l.used.used, l.hidden)
}

// CheckFullyProcessed returns ErrBadRequest if anything the caller
// supplied was not consumed.
func (l *Locator) CheckFullyProcessed() error {
	if l.parsed.single && !l.used.isUsed(singleValueKey) {
		return ErrBadRequest{Message: fmt.Sprintf(
			"Single value locator '%s' is not supported here.%s",
			l.parsed.value, l.supportedHint())}
	}
	unused := l.UnusedDimensions()
	if len(unused) == 0 {
		return nil
	}
	var message string
	if len(unused) == 1 {
		message = fmt.Sprintf("Locator dimension '%s' is unknown or not used in this context", unused[0])
	} else {
		message = fmt.Sprintf("Locator dimensions [%s] are unknown or not used in this context",
			strings.Join(unused, ", "))
	}
	return ErrBadRequest{Message: message + "." + l.supportedHint()}
}

func (l *Locator) supportedHint() string {
	if len(l.known) == 0 {
		return ""
	}
	var names []string
	for name := range l.known {
		if !l.hidden[name] && !strings.HasPrefix(name, "$") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return " Supported dimensions are: [" + strings.Join(names, ", ") + "]"
}

// With returns a copy of p with every occurrence of name replaced by
// a single name:value, at the position of the first occurrence or at
// the end.  A single-value locator is returned unchanged.
func (p Parsed) With(name, value string) Parsed {
	if p.single {
		return p
	}
	result := Parsed{}
	replaced := false
	for _, pair := range p.pairs {
		if pair.Name != name {
			result.pairs = append(result.pairs, pair)
		} else if !replaced {
			result.pairs = append(result.pairs, Pair{Name: name, Value: value})
			replaced = true
		}
	}
	if !replaced {
		result.pairs = append(result.pairs, Pair{Name: name, Value: value})
	}
	result.text = renderPairs(result.pairs)
	return result
}

// Of renders alternating dimension names and values as canonical
// locator text:
//
//     locator.Of("workSpec", locator.Of("name", "ingest"), "name", "u1")
//
// returns "workSpec:(name:ingest),name:u1".  A trailing name with no
// value is dropped.
func Of(nameValues ...string) string {
	var pairs []Pair
	for i := 0; i+1 < len(nameValues); i += 2 {
		pairs = append(pairs, Pair{Name: nameValues[i], Value: nameValues[i+1]})
	}
	return renderPairs(pairs)
}
