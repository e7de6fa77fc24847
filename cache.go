package expr

import "sync"

// Cache memoizes parse results by source string. The zero value is ready
// to use. A Cache may be used from multiple goroutines.
type Cache struct {
	mu    sync.Mutex
	exprs map[string]subexpression
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{exprs: make(map[string]subexpression)}
}

// Parse returns the parse of source, reusing an earlier result when one
// exists. The lock is not held while parsing, so two goroutines racing on
// the same uncached string may both parse it; the last write wins, which
// is harmless because parse results for equal strings are equal.
func (c *Cache) Parse(source string) ParsedExpression {
	c.mu.Lock()
	node, ok := c.exprs[source]
	c.mu.Unlock()
	if ok {
		return ParsedExpression{root: node}
	}
	node = parseExpression(source)
	c.mu.Lock()
	if c.exprs == nil {
		c.exprs = make(map[string]subexpression)
	}
	c.exprs[source] = node
	c.mu.Unlock()
	return ParsedExpression{root: node}
}

// Clear drops the given sources from the cache, or every entry when
// called with none.
func (c *Cache) Clear(sources ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(sources) == 0 {
		c.exprs = make(map[string]subexpression)
		return
	}
	for _, s := range sources {
		delete(c.exprs, s)
	}
}

// defaultCache backs the package-level Parse, NewExpression, and
// ClearCache as a convenience; applications wanting control over cache
// lifetime should own a Cache instead.
var defaultCache = NewCache()

// Parse parses source through the shared cache. It never fails; check Err
// on the result for embedded parse errors.
func Parse(source string) ParsedExpression {
	return defaultCache.Parse(source)
}

// ClearCache drops the given sources from the shared cache, or every
// entry when called with none.
func ClearCache(sources ...string) {
	defaultCache.Clear(sources...)
}
