package identitymap

import "container/list"

// lruCache bounds the number of instances a session keeps alive. The usage
// list is ordered most recent first; when the index outgrows the configured
// size the stalest entry at the back is dropped.
type lruCache struct {
	index map[any]*list.Element
	usage *list.List
	size  int
}

type cacheEntry struct {
	key   any
	value any
}

func newLruCache(size int) *lruCache {
	return &lruCache{
		index: make(map[any]*list.Element, size),
		usage: list.New(),
		size:  size,
	}
}

func (c *lruCache) add(key, value any) {
	if elem, ok := c.index[key]; ok {
		elem.Value = cacheEntry{key: key, value: value}
		c.usage.MoveToFront(elem)
		return
	}

	c.index[key] = c.usage.PushFront(cacheEntry{key: key, value: value})
	if len(c.index) > c.size {
		c.evictStalest()
	}
}

func (c *lruCache) evictStalest() {
	stalest := c.usage.Back()
	if stalest == nil {
		return
	}
	c.usage.Remove(stalest)
	delete(c.index, stalest.Value.(cacheEntry).key)
}

func (c *lruCache) get(key any) (any, bool) {
	elem, ok := c.index[key]
	if !ok {
		return nil, false
	}

	c.usage.MoveToFront(elem)
	return elem.Value.(cacheEntry).value, true
}

func (c *lruCache) remove(key any) {
	if elem, ok := c.index[key]; ok {
		c.usage.Remove(elem)
		delete(c.index, key)
	}
}

func (c *lruCache) has(key any) bool {
	_, ok := c.index[key]
	return ok
}

func (c *lruCache) clear() {
	c.index = make(map[any]*list.Element, c.size)
	c.usage.Init()
}

func (c *lruCache) setSize(size int) {
	c.size = size
}
