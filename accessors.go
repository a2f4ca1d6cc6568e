package cachex

import (
	"sync"

	"github.com/malversoft/cachex/caches"
	"github.com/malversoft/cachex/keys"
)

// Parameters is the generic-parameters snapshot of a call site, resolved
// against the defaults in effect when the Memoizer was built.
type Parameters struct {
	Name         string `json:"name,omitempty"`
	Backend      string `json:"backend"`
	Typed        bool   `json:"typed"`
	Stateful     bool   `json:"stateful"`
	Shared       bool   `json:"shared"`
	CachedErrors bool   `json:"cached_errors"`
}

// Configuration is the effective configuration of one resolved binding: the
// call site's parameters plus the concrete cache and lock in use.
type Configuration struct {
	Parameters
	Cache caches.Cache
	Lock  sync.Locker
}

// Cache returns the cache instance bound for owner, resolving the binding if
// this is its first use. Direct cache access must hold the binding's lock.
func (m *Memoizer) Cache(owner Owner) (caches.Cache, error) {
	b, err := m.binding(owner)
	if err != nil {
		return nil, err
	}
	return b.cache, nil
}

// Lock returns the lock guarding owner's cache operations.
func (m *Memoizer) Lock(owner Owner) (sync.Locker, error) {
	b, err := m.binding(owner)
	if err != nil {
		return nil, err
	}
	return b.lock, nil
}

// Key returns the cache key an invocation with the given owner and arguments
// would use. Composition does not touch the binding, so Key never resolves
// one.
func (m *Memoizer) Key(owner Owner, args ...any) (keys.Key, error) {
	return m.keyFor(owner, args)
}

// Clear empties owner's bound cache under its lock.
func (m *Memoizer) Clear(owner Owner) error {
	b, err := m.binding(owner)
	if err != nil {
		return err
	}
	b.lock.Lock()
	b.cache.Clear()
	b.lock.Unlock()
	return nil
}

// Info returns the counters snapshot of owner's bound cache, read under its
// lock.
func (m *Memoizer) Info(owner Owner) (caches.Info, error) {
	b, err := m.binding(owner)
	if err != nil {
		return caches.Info{}, err
	}
	b.lock.Lock()
	info := b.cache.Info()
	b.lock.Unlock()
	return info, nil
}

// Parameters returns the call site's resolved generic parameters. It never
// resolves a binding.
func (m *Memoizer) Parameters() Parameters {
	return Parameters{
		Name:         m.cfg.name,
		Backend:      m.cfg.backend,
		Typed:        m.typed,
		Stateful:     m.stateful,
		Shared:       m.sharedStorage,
		CachedErrors: m.errs.enabled(),
	}
}

// Configuration returns owner's effective binding configuration, resolving
// the binding if needed.
func (m *Memoizer) Configuration(owner Owner) (Configuration, error) {
	b, err := m.binding(owner)
	if err != nil {
		return Configuration{}, err
	}
	return Configuration{
		Parameters: m.Parameters(),
		Cache:      b.cache,
		Lock:       b.lock,
	}, nil
}
