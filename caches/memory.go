package caches

import (
	"github.com/malversoft/cachex/keys"
)

// memoryCache is the bounded in-memory backend shared by the FIFO, LFU, LRU,
// MRU and RR families. The eviction policy is an internal collaborator.
type memoryCache struct {
	base
	cfg   config
	data  map[keys.Key]any
	evict evictor
	fresh func() evictor
}

var (
	_ Cache        = (*memoryCache)(nil)
	_ Synchronized = (*memoryCache)(nil)
)

func newMemory(cfg config, fresh func() evictor) *memoryCache {
	return &memoryCache{
		base:  newBase(),
		cfg:   cfg,
		data:  make(map[keys.Key]any),
		evict: fresh(),
		fresh: fresh,
	}
}

// NewFIFO returns a cache that evicts the oldest entry.
func NewFIFO(opts ...Option) Cache {
	return newMemory(applyOptions(opts), func() evictor { return newFIFOEvictor() })
}

// NewLFU returns a cache that evicts the least frequently used entry.
func NewLFU(opts ...Option) Cache {
	return newMemory(applyOptions(opts), func() evictor { return newLFUEvictor() })
}

// NewLRU returns a cache that evicts the least recently used entry.
func NewLRU(opts ...Option) Cache {
	return newMemory(applyOptions(opts), func() evictor { return newLRUEvictor() })
}

// NewMRU returns a cache that evicts the most recently used entry.
func NewMRU(opts ...Option) Cache {
	return newMemory(applyOptions(opts), func() evictor { return newMRUEvictor() })
}

// NewRR returns a cache that evicts an entry picked by the configured choice
// function (random by default).
func NewRR(opts ...Option) Cache {
	cfg := applyOptions(opts)
	return newMemory(cfg, func() evictor { return newRREvictor(cfg.choice) })
}

func (c *memoryCache) Get(key keys.Key) (any, bool) {
	v, ok := c.data[key]
	if !ok {
		c.miss()
		return nil, false
	}
	c.evict.onAccess(key)
	c.hit()
	return v, true
}

func (c *memoryCache) Set(key keys.Key, value any) error {
	// Make room before admitting a new key, so the incoming entry is never
	// the victim its own insertion selects.
	if _, ok := c.data[key]; !ok {
		for len(c.data) >= c.cfg.maxSize {
			victim := c.evict.evict()
			if victim == "" {
				break
			}
			delete(c.data, victim)
		}
	}
	c.data[key] = value
	c.evict.onInsert(key)
	return nil
}

func (c *memoryCache) Delete(key keys.Key) bool {
	if _, ok := c.data[key]; !ok {
		return false
	}
	delete(c.data, key)
	c.evict.remove(key)
	return true
}

func (c *memoryCache) Clear() {
	c.data = make(map[keys.Key]any)
	c.evict = c.fresh()
	c.reset()
}

func (c *memoryCache) Len() int {
	return len(c.data)
}

func (c *memoryCache) MaxSize() int {
	return c.cfg.maxSize
}

func (c *memoryCache) Info() Info {
	return Info{Hits: c.hits, Misses: c.misses, MaxSize: c.cfg.maxSize, CurrSize: len(c.data)}
}
