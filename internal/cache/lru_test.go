package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetMissingReturnsFalse(t *testing.T) {
	c := New(2)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestPutThenGet(t *testing.T) {
	c := New(2)
	c.Put("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestPutUpdatesExisting(t *testing.T) {
	c := New(2)
	c.Put("a", 1)
	c.Put("a", 2)
	v, _ := c.Get("a")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.Len())
}

func TestPutEvictsLeastRecentlyUsedWhenFull(t *testing.T) {
	c := New(2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3) // evicts "a"

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, c.Len())

	v, ok := c.Get("b")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestGetRefreshesRecency(t *testing.T) {
	c := New(2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")     // "a" now most recent
	c.Put("c", 3) // should evict "b", not "a"

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestRemove(t *testing.T) {
	c := New(2)
	c.Put("a", 1)
	c.Remove("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestClear(t *testing.T) {
	c := New(2)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestPutIntoFullCacheLeavesSizeAtCapacity(t *testing.T) {
	c := New(3)
	for i := 0; i < 10; i++ {
		c.Put(string(rune('a'+i)), i)
	}
	assert.Equal(t, 3, c.Len())
}

func TestConcurrentGetPut(t *testing.T) {
	c := New(16)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.Put("key", i)
			c.Get("key")
		}(i)
	}
	wg.Wait()
}
