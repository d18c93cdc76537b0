package matcher

import "sync"

// DefaultCacheSize bounds the shared pattern cache
const DefaultCacheSize = 512

// Cache memoizes compiled matchers keyed by normalized pattern text.
// Eviction is oldest-first once the bound is exceeded. A Cache is safe
// for concurrent use; callers that prefer isolation can hold their own.
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[string]*Matcher
	order   []string
}

// NewCache creates a cache bounded to max compiled patterns
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultCacheSize
	}
	return &Cache{
		max:     max,
		entries: make(map[string]*Matcher),
	}
}

// Get returns the compiled matcher for pattern, compiling and caching it
// on first use.
func (c *Cache) Get(pattern string) (*Matcher, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok := c.entries[pattern]; ok {
		return m, nil
	}

	m, err := Compile(pattern)
	if err != nil {
		return nil, err
	}

	if len(c.order) >= c.max {
		evict := len(c.order) - c.max + 1
		for _, old := range c.order[:evict] {
			delete(c.entries, old)
		}
		c.order = c.order[evict:]
	}

	c.entries[pattern] = m
	c.order = append(c.order, pattern)
	return m, nil
}

// Len returns the number of cached patterns
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

var defaultCache = NewCache(DefaultCacheSize)

// Match compiles pattern through the shared cache and tests path against
// it. Invalid patterns never match.
func Match(pattern, path string) bool {
	m, err := defaultCache.Get(pattern)
	if err != nil {
		return false
	}
	return m.Match(path)
}

// MatchAny reports whether any of the patterns matches path
func MatchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if Match(p, path) {
			return true
		}
	}
	return false
}
