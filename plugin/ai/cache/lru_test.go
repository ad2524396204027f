package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRU_BasicOperations(t *testing.T) {
	c := NewLRU[float64](10, time.Minute)

	t.Run("SetAndGet", func(t *testing.T) {
		c.Set("a", 0.5)
		v, ok := c.Get("a")
		assert.True(t, ok)
		assert.InDelta(t, 0.5, v, 1e-9)
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		v, ok := c.Get("missing")
		assert.False(t, ok)
		assert.Zero(t, v)
	})

	t.Run("UpdateExisting", func(t *testing.T) {
		c.Set("b", 0.1)
		c.Set("b", 0.9)
		v, _ := c.Get("b")
		assert.InDelta(t, 0.9, v, 1e-9)
		assert.Equal(t, 2, c.Len())
	})
}

func TestLRU_Expiration(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c := NewLRU[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	_, ok := c.Get("k")
	assert.True(t, ok)

	now = now.Add(61 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len(), "expired entries are dropped on read")
}

func TestLRU_Eviction(t *testing.T) {
	c := NewLRU[int](3, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	// Touch a so b becomes the oldest.
	c.Get("a")
	c.Set("d", 4)

	_, ok := c.Get("b")
	assert.False(t, ok)
	for _, k := range []string{"a", "c", "d"} {
		_, ok := c.Get(k)
		assert.True(t, ok, k)
	}
	assert.Equal(t, 3, c.Len())
}

func TestLRU_Purge(t *testing.T) {
	c := NewLRU[int](3, time.Minute)
	c.Set("a", 1)
	c.Purge()
	assert.Zero(t, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestLRU_Concurrent(t *testing.T) {
	c := NewLRU[int](50, time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (n*100+j)%80)
				c.Set(key, j)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 50)
}
