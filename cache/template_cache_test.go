package cache

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateCache_GetOrSet(t *testing.T) {
	c, err := NewTemplateCache[[]string](4)
	require.NoError(t, err)

	calls := 0
	compute := func(s string) []string {
		calls++
		return []string{s}
	}

	assert.Equal(t, []string{"SELECT 1"}, c.GetOrSet("SELECT 1", compute))
	assert.Equal(t, []string{"SELECT 1"}, c.GetOrSet("SELECT 1", compute))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())

	c.Purge()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("SELECT 1")
	assert.False(t, ok)
}

func TestTemplateCache_Eviction(t *testing.T) {
	c, err := NewTemplateCache[int](2)
	require.NoError(t, err)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	_, ok := c.Get("a")
	assert.False(t, ok, "least recently used entry should be evicted")
	v, ok := c.Get("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestTemplateCache_FingerprintCollisionIsMiss(t *testing.T) {
	c, err := NewTemplateCache[int](2)
	require.NoError(t, err)

	// Plant an entry under the fingerprint of "b" that claims to be "a".
	c.cache.Add(FingerprintString("b"), entry[int]{text: "a", value: 1})

	_, ok := c.Get("b")
	assert.False(t, ok)
}

func TestTemplateCache_InvalidSize(t *testing.T) {
	_, err := NewTemplateCache[int](0)
	assert.Error(t, err)
}

func TestTemplateCache_Concurrent(t *testing.T) {
	c, err := NewTemplateCache[string](16)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := strconv.Itoa(j % 10)
				assert.Equal(t, key, c.GetOrSet(key, func(s string) string { return s }))
			}
		}(i)
	}
	wg.Wait()
}
