package filetext

import (
	"container/list"
	"sync"
)

// classCache is a bounded LRU of classification results. Keys include the
// file's mtime and size so an overwritten file never serves a stale category;
// a plain path key would.
type classCache struct {
	mu    sync.Mutex
	max   int
	order *list.List
	items map[cacheKey]*list.Element
}

type cacheKey struct {
	path  string
	mtime int64
	size  int64
}

type cacheEntry struct {
	key cacheKey
	cls Classification
}

func newClassCache(max int) *classCache {
	return &classCache{
		max:   max,
		order: list.New(),
		items: make(map[cacheKey]*list.Element),
	}
}

func (c *classCache) get(path string, mtime, size int64) (Classification, bool) {
	if c == nil || c.max <= 0 {
		return Classification{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[cacheKey{path, mtime, size}]
	if !ok {
		return Classification{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).cls, true
}

// put upserts idempotently: re-inserting an existing key refreshes recency and
// leaves the stored value in place (entries are immutable once inserted).
func (c *classCache) put(path string, mtime, size int64, cls Classification) {
	if c == nil || c.max <= 0 {
		return
	}
	key := cacheKey{path, mtime, size}
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&cacheEntry{key: key, cls: cls})
	for c.order.Len() > c.max {
		back := c.order.Back()
		c.order.Remove(back)
		delete(c.items, back.Value.(*cacheEntry).key)
	}
}
