package cache

import (
	"container/list"
	"errors"
	"sync"
)

var (
	// ErrKeyNotFound is returned when a key is not held by the cache
	ErrKeyNotFound = errors.New("key not found in cache")
	// ErrInvalidCapacity is returned when a cache is created without room for
	// a single entry
	ErrInvalidCapacity = errors.New("cache capacity must be greater than zero")
)

// LRUCache thread safe fixed size LRU cache
type LRUCache struct {
	lru *LRU
	m   sync.Mutex
}

// LRU non-thread safe fixed size LRU cache
type LRU struct {
	capacity uint64
	l        *list.List
	items    map[any]*list.Element
}

// item holds key/value for the cache
type item struct {
	key   any
	value any
}
