package cachex

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/malversoft/cachex/caches"
)

// ErrNotCache reports that a cache provider returned nothing usable.
var ErrNotCache = errors.New("cachex: provider did not return a cache")

// Owner identifies the owning instance of a memoized method and carries its
// per-instance binding storage. Types opt in by embedding Slot.
type Owner interface {
	CacheSlot() *Slot
}

// Slot is the per-instance binding storage of an owner. Embed it (by value)
// in the owner type; the zero value is ready to use and is collected together
// with the instance. A Slot holds one binding per call site routed through
// the instance.
type Slot struct {
	mu       sync.Mutex
	bindings map[*Memoizer]*latch
}

// CacheSlot implements Owner.
func (s *Slot) CacheSlot() *Slot { return s }

// CacheStateExcluded keeps binding storage out of object-state snapshots.
func (s *Slot) CacheStateExcluded() {}

func (s *Slot) latchFor(m *Memoizer) *latch {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bindings == nil {
		s.bindings = make(map[*Memoizer]*latch)
	}
	l, ok := s.bindings[m]
	if !ok {
		l = &latch{}
		s.bindings[m] = l
	}
	return l
}

// binding is the resolved cache/lock pair of one owner of a call site. Once
// resolved it is never re-resolved, even if the inputs that produced it
// change afterwards.
type binding struct {
	cache caches.Cache
	lock  sync.Locker
}

// latch is the unresolved→resolved state machine of a binding. Resolution
// failures leave it unresolved, so the next call retries and the failure
// propagates to every caller in the meantime.
type latch struct {
	mu sync.Mutex
	b  *binding
}

func (l *latch) resolve(build func() (*binding, error)) (*binding, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.b != nil {
		return l.b, nil
	}
	b, err := build()
	if err != nil {
		return nil, err
	}
	l.b = b
	return b, nil
}

// binding resolves (or reuses) the Binding an invocation through owner must
// use. The accessor surface goes through the same lookup, which is what keeps
// accessors and calls coherent.
func (m *Memoizer) binding(owner Owner) (*binding, error) {
	if owner != nil && m.perOwner() {
		return owner.CacheSlot().latchFor(m).resolve(func() (*binding, error) {
			return m.makeBinding(owner)
		})
	}
	return m.own.resolve(func() (*binding, error) {
		return m.makeBinding(owner)
	})
}

// perOwner reports whether bindings are stored per owning instance rather
// than once per call site.
func (m *Memoizer) perOwner() bool {
	if m.cfg.provider != nil || m.cfg.lockProv != nil {
		return true
	}
	if m.cfg.instance != nil || m.cfg.disabled {
		return false
	}
	return !m.sharedStorage
}

func (m *Memoizer) makeBinding(owner Owner) (*binding, error) {
	cache, err := m.resolveCache(owner)
	if err != nil {
		return nil, err
	}
	lock, err := m.resolveLock(owner, cache)
	if err != nil {
		return nil, err
	}
	m.cfg.log.Debug("resolved binding: cache=%s backend=%s", cache.ID(), m.cfg.backend)
	return &binding{cache: cache, lock: lock}, nil
}

func (m *Memoizer) resolveCache(owner Owner) (caches.Cache, error) {
	switch {
	case m.cfg.disabled:
		return caches.NewNull(), nil
	case m.cfg.provider != nil:
		cache, err := m.cfg.provider(ownerValue(owner), m.cfg.name)
		if err != nil {
			return nil, errors.Wrap(err, "cachex: shared cache provider failed")
		}
		if cache == nil {
			return nil, ErrNotCache
		}
		return cache, nil
	case m.cfg.instance != nil:
		return m.cfg.instance, nil
	default:
		return m.cfg.ctor(), nil
	}
}

func (m *Memoizer) resolveLock(owner Owner, cache caches.Cache) (sync.Locker, error) {
	if m.cfg.lock != nil {
		return m.cfg.lock, nil
	}
	if m.cfg.lockProv != nil {
		lock, err := m.cfg.lockProv(ownerValue(owner), m.cfg.name)
		if err != nil {
			return nil, errors.Wrap(err, "cachex: lock provider failed")
		}
		if lock == nil {
			return nil, errors.New("cachex: lock provider returned no lock")
		}
		return lock, nil
	}
	if s, ok := cache.(caches.Synchronized); ok {
		return s.Locker(), nil
	}
	return &sync.Mutex{}, nil
}

// ownerValue unwraps the Owner interface for handing to user callbacks.
func ownerValue(owner Owner) any {
	if owner == nil {
		return nil
	}
	return owner
}
