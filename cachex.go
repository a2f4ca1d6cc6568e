package cachex

import (
	"github.com/cockroachdb/errors"

	"github.com/malversoft/cachex/caches"
	"github.com/malversoft/cachex/keys"
	"github.com/malversoft/cachex/logger"
)

// Memoizer is one memoized call site. It owns the call site's generic
// parameters, resolves cache/lock bindings lazily per owner, and runs the
// lookup/compute/store cycle. A Memoizer is safe for concurrent use.
//
// Behavior parameters (typed, stateful, shared, cached errors) are frozen
// when New returns: defaults consulted for parameters left unset are read
// once. Backend sizing defaults are read when a binding first resolves its
// cache.
type Memoizer struct {
	cfg config

	typed         bool
	stateful      bool
	sharedStorage bool
	errs          errorsPolicy

	own latch
}

// cacheFactory builds a backend with the call site's default scope applied.
// Presets capture user options over the scope's MaxSize/TTL floor.
type cacheFactory func(d *Defaults) caches.Cache

// New builds a Memoizer from the given options. With no cache specification
// the call site gets its own LRU backend sized from the effective defaults.
func New(opts ...Option) *Memoizer {
	cfg := config{log: logger.Noop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.defaults == nil {
		cfg.defaults = Default()
	}
	if cfg.name != "" {
		cfg.log = cfg.log.With(map[string]any{"memoizer": cfg.name})
	}
	if cfg.instance == nil && cfg.provider == nil && !cfg.disabled &&
		cfg.ctor == nil && cfg.factory == nil {
		cfg.factory = memoryFactory(caches.NewLRU, nil)
		cfg.backend = "lru"
	}

	m := &Memoizer{cfg: cfg}
	d := cfg.defaults
	m.typed = resolveFlag(cfg.typed, d.Typed)
	m.stateful = resolveFlag(cfg.stateful, d.Stateful)
	m.sharedStorage = resolveFlag(cfg.shared, d.Shared)
	if cfg.errsSet {
		m.errs = cfg.errs
	} else {
		m.errs = errorsPolicy{any: d.CachedErrors()}
	}
	if cfg.factory != nil {
		factory := cfg.factory
		m.cfg.ctor = func() caches.Cache { return factory(d) }
	}
	return m
}

func resolveFlag(o caches.Override[bool], fallback func() bool) bool {
	if v, ok := o.Get(); ok {
		return v
	}
	return fallback()
}

// Do runs one memoized invocation: resolve the binding for owner, compose the
// key from args, look the key up under the binding's lock, and on a miss run
// compute outside the lock and store its outcome. Concurrent misses on the
// same key each run compute; last store wins.
//
// owner may be nil for plain functions. compute's error is returned as-is; it
// is additionally stored and replayed on later hits when the call site's
// cached-errors policy matches it.
func (m *Memoizer) Do(owner Owner, compute func() (any, error), args ...any) (any, error) {
	b, err := m.binding(owner)
	if err != nil {
		return nil, err
	}
	key, err := m.keyFor(owner, args)
	if err != nil {
		return nil, err
	}

	b.lock.Lock()
	v, ok := b.cache.Get(key)
	b.lock.Unlock()
	if ok {
		if outcome, failed := v.(*caches.ErrorOutcome); failed {
			return nil, outcome.Err()
		}
		return v, nil
	}

	v, err = compute()
	if err != nil {
		if m.errs.matches(err) {
			m.store(b, key, caches.NewErrorOutcome(err))
		}
		return nil, err
	}
	if serr := m.store(b, key, v); serr != nil {
		return nil, serr
	}
	return v, nil
}

// store writes under the binding's lock. ErrValueTooLarge is swallowed: the
// entry simply stays uncached.
func (m *Memoizer) store(b *binding, key keys.Key, v any) error {
	b.lock.Lock()
	err := b.cache.Set(key, v)
	b.lock.Unlock()
	if err == nil {
		return nil
	}
	if errors.Is(err, caches.ErrValueTooLarge) {
		m.cfg.log.Debug("value too large, not cached: key=%s", key)
		return nil
	}
	return errors.Wrap(err, "cachex: store failed")
}

// keyFor composes the cache key of an invocation. Object state participates
// only for stateful call sites invoked through an owner.
func (m *Memoizer) keyFor(owner Owner, args []any) (keys.Key, error) {
	withState := m.stateful && owner != nil
	var state any
	if withState {
		state = keys.StateOf(owner, m.cfg.stateFn)
	}
	return keys.Compose(args, m.typed, state, withState, m.cfg.keyFn)
}

func (p errorsPolicy) matches(err error) bool {
	if p.any {
		return true
	}
	for _, target := range p.targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// memoryFactory adapts a builtin backend constructor into a cacheFactory.
// The default scope supplies the size/TTL floor; user options layer on top.
func memoryFactory(newCache func(...caches.Option) caches.Cache, opts []caches.Option) cacheFactory {
	return func(d *Defaults) caches.Cache {
		all := make([]caches.Option, 0, len(opts)+2)
		all = append(all, caches.WithMaxSize(d.MaxSize()), caches.WithTTL(d.TTL()))
		all = append(all, opts...)
		return newCache(all...)
	}
}

// FIFO caches in a first-in-first-out backend.
func FIFO(opts ...caches.Option) Option {
	return func(c *config) {
		c.factory = memoryFactory(caches.NewFIFO, opts)
		c.backend = "fifo"
	}
}

// LFU caches in a least-frequently-used backend.
func LFU(opts ...caches.Option) Option {
	return func(c *config) {
		c.factory = memoryFactory(caches.NewLFU, opts)
		c.backend = "lfu"
	}
}

// LRU caches in a least-recently-used backend. This is the default.
func LRU(opts ...caches.Option) Option {
	return func(c *config) {
		c.factory = memoryFactory(caches.NewLRU, opts)
		c.backend = "lru"
	}
}

// MRU caches in a most-recently-used backend.
func MRU(opts ...caches.Option) Option {
	return func(c *config) {
		c.factory = memoryFactory(caches.NewMRU, opts)
		c.backend = "mru"
	}
}

// RR caches in a random-replacement backend.
func RR(opts ...caches.Option) Option {
	return func(c *config) {
		c.factory = memoryFactory(caches.NewRR, opts)
		c.backend = "rr"
	}
}

// TTL caches in a per-entry time-to-live backend with LRU eviction among
// live entries.
func TTL(opts ...caches.Option) Option {
	return func(c *config) {
		c.factory = memoryFactory(caches.NewTTL, opts)
		c.backend = "ttl"
	}
}

// TLRU caches in a time-aware LRU backend: ttu computes each entry's expiry
// from its key, value and insertion time.
func TLRU(ttu caches.TTUFunc, opts ...caches.Option) Option {
	return func(c *config) {
		c.factory = memoryFactory(func(o ...caches.Option) caches.Cache {
			return caches.NewTLRU(ttu, o...)
		}, opts)
		c.backend = "tlru"
	}
}

// Unbounded caches without eviction.
func Unbounded(opts ...caches.Option) Option {
	return func(c *config) {
		c.factory = func(d *Defaults) caches.Cache {
			return caches.NewUnbounded(opts...)
		}
		c.backend = "unbounded"
	}
}

// UnboundedTTL caches without eviction but with per-entry expiry.
func UnboundedTTL(opts ...caches.Option) Option {
	return func(c *config) {
		c.factory = func(d *Defaults) caches.Cache {
			all := make([]caches.Option, 0, len(opts)+1)
			all = append(all, caches.WithTTL(d.TTL()))
			all = append(all, opts...)
			return caches.NewUnboundedTTL(all...)
		}
		c.backend = "unbounded-ttl"
	}
}
