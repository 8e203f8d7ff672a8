// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package locator

// This file provides a small LRU cache of parsed locators.  Parsed
// values are immutable, so several goroutines may share one.

import (
	"container/list"
	"sync"
)

type cacheEntry struct {
	text   string
	parsed Parsed
}

// ParseCache is a least-recently-used cache of Parse results with a
// fixed capacity.  It can be safely accessed from multiple
// goroutines.  A nil *ParseCache parses without caching.
type ParseCache struct {
	size      int
	lock      sync.Mutex
	evictList *list.List
	index     map[string]*list.Element
}

// NewParseCache creates a cache holding up to size entries.  A size of
// zero or less returns nil, which is a valid non-caching cache.
func NewParseCache(size int) *ParseCache {
	if size <= 0 {
		return nil
	}
	return &ParseCache{
		size:      size,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Parse returns the parsed form of text, from the cache if possible.
// Errors are not cached.
func (c *ParseCache) Parse(text string) (Parsed, error) {
	if c == nil {
		return Parse(text)
	}
	if parsed, present := c.get(text); present {
		return parsed, nil
	}
	parsed, err := Parse(text)
	if err != nil {
		return parsed, err
	}
	c.put(text, parsed)
	return parsed, nil
}

// Len returns the number of cached entries.
func (c *ParseCache) Len() int {
	if c == nil {
		return 0
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.index)
}

func (c *ParseCache) get(text string) (Parsed, bool) {
	// This happens under the write lock, since we need to move
	// the item to the back of the list if it is present
	c.lock.Lock()
	defer c.lock.Unlock()

	if element, present := c.index[text]; present {
		c.evictList.MoveToBack(element)
		return element.Value.(cacheEntry).parsed, true
	}
	return Parsed{}, false
}

func (c *ParseCache) put(text string, parsed Parsed) {
	c.lock.Lock()
	defer c.lock.Unlock()

	// Another goroutine may have parsed the same text meanwhile
	if element, present := c.index[text]; present {
		element.Value = cacheEntry{text: text, parsed: parsed}
		c.evictList.MoveToBack(element)
		return
	}

	element := c.evictList.PushBack(cacheEntry{text: text, parsed: parsed})
	c.index[text] = element

	// If this caused the cache to go over size, start evicting items
	for len(c.index) > c.size {
		head := c.evictList.Front()
		delete(c.index, head.Value.(cacheEntry).text)
		c.evictList.Remove(head)
	}
}
