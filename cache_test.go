package expr

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests share parseHook, so none of them may run in parallel.

func TestCacheReuse(t *testing.T) {
	parses := 0
	parseHook = func(string) { parses++ }
	defer func() { parseHook = nil }()

	c := NewCache()
	first := c.Parse("1 + 2 * 3")
	second := c.Parse("1 + 2 * 3")
	require.Equal(t, 1, parses, "second parse of an identical string should hit the cache")
	assert.Equal(t, first.String(), second.String())

	c.Clear()
	c.Parse("1 + 2 * 3")
	assert.Equal(t, 2, parses, "Clear should force a reparse")
}

func TestCacheClearSelective(t *testing.T) {
	parses := 0
	parseHook = func(string) { parses++ }
	defer func() { parseHook = nil }()

	c := NewCache()
	c.Parse("a + b")
	c.Parse("c * d")
	require.Equal(t, 2, parses)

	c.Clear("a + b")
	c.Parse("a + b")
	c.Parse("c * d")
	assert.Equal(t, 3, parses, "only the cleared entry should reparse")
}

func TestCacheZeroValue(t *testing.T) {
	var c Cache
	p := c.Parse("x + 1")
	require.NoError(t, p.Err())
	assert.Equal(t, "x + 1", p.String())
}

func TestDefaultCache(t *testing.T) {
	parses := 0
	parseHook = func(string) { parses++ }
	defer func() { parseHook = nil }()

	// Unique strings keep this independent of earlier tests that may have
	// populated the shared cache.
	const src = "default_cache_probe + 1"
	defer ClearCache(src)

	Parse(src)
	Parse(src)
	require.Equal(t, 1, parses)

	ClearCache(src)
	Parse(src)
	assert.Equal(t, 2, parses)
}

func TestCacheErrorResultsAreCached(t *testing.T) {
	parses := 0
	parseHook = func(string) { parses++ }
	defer func() { parseHook = nil }()

	c := NewCache()
	p := c.Parse("1 2")
	require.Error(t, p.Err())
	q := c.Parse("1 2")
	require.Error(t, q.Err())
	assert.Equal(t, 1, parses, "failed parses should be cached like any other")
	assert.Equal(t, p.String(), q.String())
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache()
	sources := []string{"1 + 2", "x * y", "pow(2, 3)", "a[1]"}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				src := sources[(i+j)%len(sources)]
				p := c.Parse(src)
				if p.String() != src {
					t.Errorf("Parse(%q) printed %q", src, p.String())
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
