/*
	LRU Cache package

	A bounded associative container ranked by recency of access. The hash index
	gives O(1) lookups while the doubly linked list keeps the recency order, the
	front of the list being the most recently used entry and the back the least
	recently used one.

	https://en.wikipedia.org/wiki/Cache_replacement_policies#Least_recently_used_(LRU)
*/

package cache

import (
	"container/list"
	"fmt"
)

// NewLRUCache returns a new non-concurrent-safe LRU cache with input capacity
func NewLRUCache(capacity uint64) (*LRU, error) {
	if capacity == 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	return &LRU{
		capacity: capacity,
		l:        list.New(),
		items:    make(map[any]*list.Element),
	}, nil
}

// Add adds a value to the cache. Overwriting an existing key refreshes its
// recency and never evicts. A new key on a full cache evicts the least
// recently used entry before it is inserted. Keys must be comparable.
func (l *LRU) Add(key, value any) {
	if f, o := l.items[key]; o {
		l.l.MoveToFront(f)
		if v, ok := f.Value.(*item); ok {
			v.value = value
		}
		return
	}

	if l.Len() >= l.capacity {
		l.removeOldestEntry()
	}

	l.items[key] = l.l.PushFront(&item{key, value})
}

// Get returns the keys value from the cache and marks it as most recently used
func (l *LRU) Get(key any) (any, error) {
	i, f := l.items[key]
	if !f {
		return nil, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	l.l.MoveToFront(i)
	return i.Value.(*item).value, nil
}

// Peek returns the keys value without updating its recency
func (l *LRU) Peek(key any) (any, error) {
	i, f := l.items[key]
	if !f {
		return nil, fmt.Errorf("%w: %v", ErrKeyNotFound, key)
	}
	return i.Value.(*item).value, nil
}

// getOldest returns the oldest entry
func (l *LRU) getOldest() (key, value any) {
	if x := l.l.Back(); x != nil {
		if v, ok := x.Value.(*item); ok {
			return v.key, v.value
		}
	}
	return
}

// getNewest returns the newest entry
func (l *LRU) getNewest() (key, value any) {
	if x := l.l.Front(); x != nil {
		if v, ok := x.Value.(*item); ok {
			return v.key, v.value
		}
	}
	return
}

// Contains check if key is in cache this does not update LRU
func (l *LRU) Contains(key any) (f bool) {
	_, f = l.items[key]
	return
}

// ContainsOrAdd checks if the key is in the cache without updating its
// recency, adding the value if it is not
func (l *LRU) ContainsOrAdd(key, value any) bool {
	if l.Contains(key) {
		return true
	}
	l.Add(key, value)
	return false
}

// Remove removes key from the cache, if the key was removed.
func (l *LRU) Remove(key any) bool {
	if i, f := l.items[key]; f {
		l.removeElement(i)
		return true
	}
	return false
}

// Clear is used to completely clear the cache.
func (l *LRU) Clear() {
	clear(l.items)
	l.l.Init()
}

// Keys returns a snapshot of the keys ordered from least to most recently used
func (l *LRU) Keys() []any {
	keys := make([]any, 0, l.l.Len())
	for x := l.l.Back(); x != nil; x = x.Prev() {
		keys = append(keys, x.Value.(*item).key)
	}
	return keys
}

// Len returns length of l
func (l *LRU) Len() uint64 {
	return uint64(l.l.Len()) //nolint:gosec // list length is never negative
}

// Capacity returns the maximum amount of entries held
func (l *LRU) Capacity() uint64 {
	return l.capacity
}

// removeOldestEntry removes the oldest item from the cache.
func (l *LRU) removeOldestEntry() {
	if i := l.l.Back(); i != nil {
		l.removeElement(i)
	}
}

// removeElement element from the cache
func (l *LRU) removeElement(e *list.Element) {
	l.l.Remove(e)
	if v, ok := e.Value.(*item); ok {
		delete(l.items, v.key)
	}
}
