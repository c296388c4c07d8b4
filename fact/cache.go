package fact

import (
	"container/list"

	"github.com/opal-lang/stratacore/span"
)

type queryKind uint8

const (
	queryBySpan queryKind = iota
	queryByPredicate
	queryChildrenOf
)

// queryKey identifies a single Store query shape, used as the cache key.
type queryKey struct {
	kind queryKind
	span span.Span
	pred Predicate
	id   ID
}

type cacheEntry struct {
	key        queryKey
	generation uint32
	affected   span.Span // span this result depends on; see Invalidate
	result     []Fact
}

// QueryCache is spec §4.3's "separate structure [that] caches recent
// (query, generation) -> result pairs", an LRU keyed by query shape alone:
// each entry records its generation, but entries are dropped by an
// intersecting Invalidate (or Clear), not by a generation change. It is built on container/list rather than a third-party LRU:
// see DESIGN.md for why hashicorp/golang-lru was not adopted here.
type QueryCache struct {
	capacity int
	order    *list.List
	items    map[queryKey]*list.Element
}

// NewQueryCache returns a cache holding at most capacity entries.
func NewQueryCache(capacity int) *QueryCache {
	if capacity < 1 {
		capacity = 1
	}
	return &QueryCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[queryKey]*list.Element),
	}
}

// Get returns the cached result for key, if present. An entry survives a
// generation change on its own: only an Invalidate call whose affected
// range intersects the entry's recorded span (or Clear) evicts it, per spec
// §4.3 ("entries whose cached span intersects the delta's affected_range
// are invalidated") — a generation bump elsewhere in the store must not
// force unrelated cached queries to recompute.
func (c *QueryCache) Get(key queryKey) ([]Fact, bool) {
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	c.order.MoveToFront(el)
	return entry.result, true
}

// Put records result for key at generation, tagged with the span the
// result depends on so a later Invalidate can drop it precisely.
func (c *QueryCache) Put(key queryKey, generation uint32, affected span.Span, result []Fact) {
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.generation = generation
		entry.affected = affected
		entry.result = result
		c.order.MoveToFront(el)
		return
	}
	entry := &cacheEntry{key: key, generation: generation, affected: affected, result: result}
	el := c.order.PushFront(entry)
	c.items[key] = el
	if c.order.Len() > c.capacity {
		c.remove(c.order.Back())
	}
}

// Invalidate drops every cached entry whose recorded span intersects
// affectedRange, per spec §4.3: "on generation change, entries whose
// cached span intersects the delta's affected_range are invalidated."
// Entries with a zero affected span (predicate/parent queries, which have
// no single subject span) are invalidated unconditionally, since any
// assertion or retraction can change their result.
func (c *QueryCache) Invalidate(affectedRange span.Span) {
	var next *list.Element
	for el := c.order.Front(); el != nil; el = next {
		next = el.Next()
		entry := el.Value.(*cacheEntry)
		if entry.affected.Empty() || entry.affected.Intersects(affectedRange) {
			c.remove(el)
		}
	}
}

// Clear drops every cached entry, used after Store.Compact renumbers ids.
func (c *QueryCache) Clear() {
	c.order.Init()
	c.items = make(map[queryKey]*list.Element)
}

func (c *QueryCache) remove(el *list.Element) {
	entry := el.Value.(*cacheEntry)
	delete(c.items, entry.key)
	c.order.Remove(el)
}

// Len reports the number of entries currently cached.
func (c *QueryCache) Len() int { return c.order.Len() }
