// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package locator

// singleValueKey records use of a single-value locator's value.
const singleValueKey = "$singleValue"

// usage tracks which dimensions of a locator have been consumed.
type usage struct {
	used map[string]bool
}

func newUsage() usage {
	return usage{used: make(map[string]bool)}
}

func (u usage) mark(names ...string) {
	for _, name := range names {
		u.used[name] = true
	}
}

func (u usage) unmark(names ...string) {
	for _, name := range names {
		delete(u.used, name)
	}
}

func (u usage) reset() {
	for name := range u.used {
		delete(u.used, name)
	}
}

func (u usage) isUsed(name string) bool {
	return u.used[name]
}

// unprocessed returns the names in present, in order, that are
// neither used nor hidden.
func unprocessed(present []string, used, hidden map[string]bool) []string {
	var result []string
	for _, name := range present {
		if used[name] || hidden[name] {
			continue
		}
		result = append(result, name)
	}
	return result
}
