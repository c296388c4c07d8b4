package fact

import (
	"testing"

	"github.com/opal-lang/stratacore/span"
)

func TestQueryCacheGetPutRoundTrip(t *testing.T) {
	c := NewQueryCache(4)
	key := queryKey{kind: queryBySpan, span: span.New(0, 10)}
	if _, ok := c.Get(key); ok {
		t.Fatal("empty cache should miss")
	}
	want := []Fact{{ID: 1}}
	c.Put(key, 1, span.New(0, 10), want)
	got, ok := c.Get(key)
	if !ok || len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("Get after Put = %v, %v", got, ok)
	}
}

func TestQueryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewQueryCache(2)
	k1 := queryKey{kind: queryBySpan, span: span.New(0, 1)}
	k2 := queryKey{kind: queryBySpan, span: span.New(1, 2)}
	k3 := queryKey{kind: queryBySpan, span: span.New(2, 3)}

	c.Put(k1, 0, span.New(0, 1), []Fact{{ID: 1}})
	c.Put(k2, 0, span.New(1, 2), []Fact{{ID: 2}})
	// touch k1 so k2 becomes least recently used
	c.Get(k1)
	c.Put(k3, 0, span.New(2, 3), []Fact{{ID: 3}})

	if _, ok := c.Get(k2); ok {
		t.Fatal("k2 should have been evicted as least recently used")
	}
	if _, ok := c.Get(k1); !ok {
		t.Fatal("k1 should still be cached")
	}
	if _, ok := c.Get(k3); !ok {
		t.Fatal("k3 should still be cached")
	}
}

func TestQueryCacheInvalidateDropsIntersectingOnly(t *testing.T) {
	c := NewQueryCache(8)
	near := queryKey{kind: queryBySpan, span: span.New(0, 10)}
	far := queryKey{kind: queryBySpan, span: span.New(100, 110)}
	c.Put(near, 0, span.New(0, 10), []Fact{{ID: 1}})
	c.Put(far, 0, span.New(100, 110), []Fact{{ID: 2}})

	c.Invalidate(span.New(5, 6))

	if _, ok := c.Get(near); ok {
		t.Fatal("near entry should be invalidated by an intersecting range")
	}
	if _, ok := c.Get(far); !ok {
		t.Fatal("far entry should survive a non-intersecting invalidate")
	}
}

func TestQueryCacheInvalidateUnconditionalForZeroSpanEntries(t *testing.T) {
	c := NewQueryCache(8)
	key := queryKey{kind: queryByPredicate, pred: HasKey}
	c.Put(key, 0, span.Zero, []Fact{{ID: 1}})

	c.Invalidate(span.New(1000, 1001))

	if _, ok := c.Get(key); ok {
		t.Fatal("zero-span (predicate) entries should invalidate unconditionally")
	}
}
