package caches

import (
	"time"

	"github.com/malversoft/cachex/keys"
)

// ttlCache is the expiring backend shared by the TTL, TLRU and unbounded-TTL
// families. Entries expire by timer comparison at lookup time; stale entries
// are additionally purged on writes.
type ttlCache struct {
	base
	cfg       config
	data      map[keys.Key]*ttlEntry
	evict     evictor
	fresh     func() evictor
	ttu       TTUFunc
	unbounded bool
}

type ttlEntry struct {
	value   any
	expires time.Time
}

var (
	_ Cache        = (*ttlCache)(nil)
	_ Synchronized = (*ttlCache)(nil)
)

// NewTTL returns a bounded cache whose entries expire a fixed duration after
// insertion. Capacity eviction follows least-recently-used order.
func NewTTL(opts ...Option) Cache {
	fresh := func() evictor { return newLRUEvictor() }
	return &ttlCache{
		base:  newBase(),
		cfg:   applyOptions(opts),
		data:  make(map[keys.Key]*ttlEntry),
		evict: fresh(),
		fresh: fresh,
	}
}

// NewTLRU returns a bounded time-aware cache: each entry's expiry is computed
// by ttu from the key, the value and the insertion time.
func NewTLRU(ttu TTUFunc, opts ...Option) Cache {
	fresh := func() evictor { return newLRUEvictor() }
	return &ttlCache{
		base:  newBase(),
		cfg:   applyOptions(opts),
		data:  make(map[keys.Key]*ttlEntry),
		evict: fresh(),
		fresh: fresh,
		ttu:   ttu,
	}
}

// NewUnboundedTTL returns an unbounded cache whose entries expire a fixed
// duration after insertion.
func NewUnboundedTTL(opts ...Option) Cache {
	fresh := func() evictor { return newFIFOEvictor() }
	return &ttlCache{
		base:      newBase(),
		cfg:       applyOptions(opts),
		data:      make(map[keys.Key]*ttlEntry),
		evict:     fresh(),
		fresh:     fresh,
		unbounded: true,
	}
}

func (c *ttlCache) Get(key keys.Key) (any, bool) {
	e, ok := c.data[key]
	if !ok {
		c.miss()
		return nil, false
	}
	if !c.cfg.timer().Before(e.expires) {
		delete(c.data, key)
		c.evict.remove(key)
		c.miss()
		return nil, false
	}
	c.evict.onAccess(key)
	c.hit()
	return e.value, true
}

func (c *ttlCache) Set(key keys.Key, value any) error {
	now := c.cfg.timer()
	c.purge(now)
	expires := now.Add(c.cfg.ttl)
	if c.ttu != nil {
		expires = c.ttu(key, value, now)
		if !expires.After(now) {
			// Already stale, nothing to store.
			return nil
		}
	}
	c.data[key] = &ttlEntry{value: value, expires: expires}
	c.evict.onInsert(key)
	if !c.unbounded {
		for len(c.data) > c.cfg.maxSize {
			victim := c.evict.evict()
			delete(c.data, victim)
		}
	}
	return nil
}

func (c *ttlCache) purge(now time.Time) {
	for key, e := range c.data {
		if !now.Before(e.expires) {
			delete(c.data, key)
			c.evict.remove(key)
		}
	}
}

func (c *ttlCache) Delete(key keys.Key) bool {
	if _, ok := c.data[key]; !ok {
		return false
	}
	delete(c.data, key)
	c.evict.remove(key)
	return true
}

func (c *ttlCache) Clear() {
	c.data = make(map[keys.Key]*ttlEntry)
	c.evict = c.fresh()
	c.reset()
}

// Len may include expired entries that have not been purged yet.
func (c *ttlCache) Len() int {
	return len(c.data)
}

func (c *ttlCache) MaxSize() int {
	if c.unbounded {
		return 0
	}
	return c.cfg.maxSize
}

func (c *ttlCache) Info() Info {
	return Info{Hits: c.hits, Misses: c.misses, MaxSize: c.MaxSize(), CurrSize: len(c.data)}
}
