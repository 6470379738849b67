package cache

// New returns a new concurrent-safe LRU cache with input capacity
func New(capacity uint64) (*LRUCache, error) {
	lru, err := NewLRUCache(capacity)
	if err != nil {
		return nil, err
	}
	return &LRUCache{lru: lru}, nil
}

// Add inserts or overwrites an entry, evicting the least recently used entry
// when a new key arrives at capacity
func (l *LRUCache) Add(k, v any) {
	l.m.Lock()
	l.lru.Add(k, v)
	l.m.Unlock()
}

// Get looks up a key's value from the cache
func (l *LRUCache) Get(key any) (any, error) {
	l.m.Lock()
	defer l.m.Unlock()
	return l.lru.Get(key)
}

// Peek looks up a key's value from the cache without updating its recency
func (l *LRUCache) Peek(key any) (any, error) {
	l.m.Lock()
	defer l.m.Unlock()
	return l.lru.Peek(key)
}

// ContainsOrAdd checks if cache contains key if not adds to cache
func (l *LRUCache) ContainsOrAdd(key, value any) bool {
	l.m.Lock()
	defer l.m.Unlock()
	return l.lru.ContainsOrAdd(key, value)
}

// Contains checks if cache contains key
func (l *LRUCache) Contains(key any) bool {
	l.m.Lock()
	defer l.m.Unlock()
	return l.lru.Contains(key)
}

// Remove entry from cache
func (l *LRUCache) Remove(key any) bool {
	l.m.Lock()
	defer l.m.Unlock()
	return l.lru.Remove(key)
}

// Clear is used to completely clear the cache.
func (l *LRUCache) Clear() {
	l.m.Lock()
	l.lru.Clear()
	l.m.Unlock()
}

// Keys returns the cached keys from least to most recently used
func (l *LRUCache) Keys() []any {
	l.m.Lock()
	defer l.m.Unlock()
	return l.lru.Keys()
}

// Len returns length of cache
func (l *LRUCache) Len() uint64 {
	l.m.Lock()
	defer l.m.Unlock()
	return l.lru.Len()
}

// Capacity returns the maximum amount of entries the cache holds
func (l *LRUCache) Capacity() uint64 {
	return l.lru.Capacity()
}
