package filetext

import "testing"

func TestClassCacheEviction(t *testing.T) {
	c := newClassCache(2)
	text := Classification{Category: CategoryText, Method: MethodExtension}
	doc := Classification{Category: CategoryDocument, Method: MethodSignature}

	c.put("/a", 1, 10, text)
	c.put("/b", 1, 10, doc)

	// Touch /a so /b is the least recently used.
	if _, ok := c.get("/a", 1, 10); !ok {
		t.Fatal("expected /a hit")
	}
	c.put("/c", 1, 10, text)

	if _, ok := c.get("/b", 1, 10); ok {
		t.Error("/b should have been evicted")
	}
	if _, ok := c.get("/a", 1, 10); !ok {
		t.Error("/a should have survived")
	}
	if _, ok := c.get("/c", 1, 10); !ok {
		t.Error("/c should be present")
	}
}

func TestClassCacheKeyIncludesMtimeAndSize(t *testing.T) {
	c := newClassCache(8)
	c.put("/a", 1, 10, Classification{Category: CategoryText})

	if _, ok := c.get("/a", 2, 10); ok {
		t.Error("different mtime must miss")
	}
	if _, ok := c.get("/a", 1, 11); ok {
		t.Error("different size must miss")
	}
	if cls, ok := c.get("/a", 1, 10); !ok || cls.Category != CategoryText {
		t.Error("exact key must hit")
	}
}

func TestClassCacheIdempotentPut(t *testing.T) {
	c := newClassCache(4)
	c.put("/a", 1, 10, Classification{Category: CategoryText})
	c.put("/a", 1, 10, Classification{Category: CategoryDocument})

	cls, ok := c.get("/a", 1, 10)
	if !ok {
		t.Fatal("expected hit")
	}
	if cls.Category != CategoryText {
		t.Errorf("re-put must not overwrite: got %s", cls.Category)
	}
	if c.order.Len() != 1 {
		t.Errorf("re-put must not grow the cache: len %d", c.order.Len())
	}
}

func TestClassCacheDisabled(t *testing.T) {
	c := newClassCache(-1)
	c.put("/a", 1, 10, Classification{Category: CategoryText})
	if _, ok := c.get("/a", 1, 10); ok {
		t.Error("disabled cache must never hit")
	}

	var nilCache *classCache
	nilCache.put("/a", 1, 10, Classification{})
	if _, ok := nilCache.get("/a", 1, 10); ok {
		t.Error("nil cache must never hit")
	}
}
