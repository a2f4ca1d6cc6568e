package caches

import (
	"sync"

	"github.com/malversoft/cachex/keys"
)

// unboundedCache grows without limit and never evicts.
type unboundedCache struct {
	base
	data map[keys.Key]any
}

var (
	_ Cache        = (*unboundedCache)(nil)
	_ Synchronized = (*unboundedCache)(nil)
)

// NewUnbounded returns a cache that stores every entry and never evicts.
func NewUnbounded(opts ...Option) Cache {
	// Options are accepted for constructor uniformity; capacity does not apply.
	return &unboundedCache{base: newBase(), data: make(map[keys.Key]any)}
}

func (c *unboundedCache) Get(key keys.Key) (any, bool) {
	v, ok := c.data[key]
	if !ok {
		c.miss()
		return nil, false
	}
	c.hit()
	return v, true
}

func (c *unboundedCache) Set(key keys.Key, value any) error {
	c.data[key] = value
	return nil
}

func (c *unboundedCache) Delete(key keys.Key) bool {
	if _, ok := c.data[key]; !ok {
		return false
	}
	delete(c.data, key)
	return true
}

func (c *unboundedCache) Clear() {
	c.data = make(map[keys.Key]any)
	c.reset()
}

func (c *unboundedCache) Len() int {
	return len(c.data)
}

func (c *unboundedCache) MaxSize() int {
	return 0
}

func (c *unboundedCache) Info() Info {
	return Info{Hits: c.hits, Misses: c.misses, CurrSize: len(c.data)}
}

// nullCache always misses and discards writes. It is the normal resolution of
// a "do not cache" specification, not an error path.
type nullCache struct {
	base
}

var (
	_ Cache        = (*nullCache)(nil)
	_ Synchronized = (*nullCache)(nil)
)

// NewNull returns the always-miss, discard-writes cache.
func NewNull() Cache {
	return &nullCache{base: newBase()}
}

func (c *nullCache) Get(keys.Key) (any, bool) {
	c.miss()
	return nil, false
}

func (c *nullCache) Set(keys.Key, any) error { return nil }

func (c *nullCache) Delete(keys.Key) bool { return false }

func (c *nullCache) Clear() {
	c.reset()
}

func (c *nullCache) Len() int { return 0 }

func (c *nullCache) MaxSize() int { return 0 }

func (c *nullCache) Info() Info {
	return Info{Hits: c.hits, Misses: c.misses}
}

// The null cache carries no state worth guarding, so its integrated lock is
// a no-op.
func (c *nullCache) Locker() sync.Locker {
	return nopLocker{}
}

type nopLocker struct{}

func (nopLocker) Lock()   {}
func (nopLocker) Unlock() {}
