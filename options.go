package cachex

import (
	"sync"

	"github.com/malversoft/cachex/caches"
	"github.com/malversoft/cachex/keys"
	"github.com/malversoft/cachex/logger"
)

// Provider obtains the cache instance for an owner in shared mode. The engine
// resolves a provider at most once per owner and caches the handle for the
// binding's lifetime, so providers need not guard against repeated calls.
// name is the configured call-site name (WithName), possibly empty.
type Provider func(owner any, name string) (caches.Cache, error)

// LockProvider obtains the lock guarding an owner's cache operations. Same
// resolve-once contract as Provider.
type LockProvider func(owner any, name string) (sync.Locker, error)

// errorsPolicy selects which error outcomes are cached and replayed.
type errorsPolicy struct {
	any     bool
	targets []error
}

func (p errorsPolicy) enabled() bool {
	return p.any || len(p.targets) > 0
}

// config is the generic-parameters value owned by one call site. Immutable
// once the Memoizer is built.
type config struct {
	name     string
	typed    caches.Override[bool]
	stateful caches.Override[bool]
	shared   caches.Override[bool]
	stateFn  keys.StateFunc
	keyFn    keys.Func
	lock     sync.Locker
	lockProv LockProvider
	errs     errorsPolicy
	errsSet  bool
	log      logger.Logger
	defaults *Defaults

	// cache specification, one of:
	disabled bool
	instance caches.Cache
	ctor     caches.Constructor
	factory  cacheFactory
	provider Provider
	backend  string
}

// Option configures a Memoizer at decoration time.
type Option func(*config)

// WithName names the call site. The name is handed to cache and lock
// providers and attached to the engine's log entries.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithTyped folds each argument's runtime type into the cache key, so equal
// values of distinct types never share an entry.
func WithTyped() Option {
	return func(c *config) { c.typed.Set(true) }
}

// WithoutTyped overrides an inherited typed default back to plain value keys.
func WithoutTyped() Option {
	return func(c *config) { c.typed.Set(false) }
}

// WithStateful folds the owner's derived object state into the cache key, so
// results vary with receiver state. See keys.StateOf for the derivation
// chain. Ignored for calls with no owner.
func WithStateful() Option {
	return func(c *config) { c.stateful.Set(true) }
}

// WithStateFunc supplies the state function used for stateful caching.
// Implies WithStateful.
func WithStateFunc(fn keys.StateFunc) Option {
	return func(c *config) {
		c.stateful.Set(true)
		c.stateFn = fn
	}
}

// WithShared stores results of all owners in one cache instance instead of
// one cache per owning instance.
func WithShared() Option {
	return func(c *config) { c.shared.Set(true) }
}

// WithKeyFunc replaces the default argument-derived key composition. Object
// state, when enabled, is still layered on top of the custom key.
func WithKeyFunc(fn keys.Func) Option {
	return func(c *config) { c.keyFn = fn }
}

// WithLock uses the given lock for every binding of this call site,
// shared by identity across owners.
func WithLock(l sync.Locker) Option {
	return func(c *config) { c.lock = l }
}

// WithLockProvider resolves the binding's lock through fn, once per owner.
func WithLockProvider(fn LockProvider) Option {
	return func(c *config) { c.lockProv = fn }
}

// WithCachedErrors caches matching error outcomes: when the wrapped call
// fails with an error matching one of the targets (per errors.Is), the error
// is stored and returned again on every hit for that key without
// re-executing. With no targets, every error is cached.
//
// In-memory backends replay the original error value. Backends that
// serialize values replay a reconstructed error preserving the message;
// target matching happens at store time, so the policy is unaffected.
func WithCachedErrors(targets ...error) Option {
	return func(c *config) {
		c.errsSet = true
		if len(targets) == 0 {
			c.errs = errorsPolicy{any: true}
			return
		}
		c.errs = errorsPolicy{targets: targets}
	}
}

// WithLogger attaches a logger to the engine. The default discards
// everything.
func WithLogger(l logger.Logger) Option {
	return func(c *config) { c.log = l }
}

// WithDefaults sets the decorator-level defaults scope consulted for
// parameters left unset.
func WithDefaults(d *Defaults) Option {
	return func(c *config) { c.defaults = d }
}

// WithCache uses the given cache instance for every owner of this call site
// (identity-shared, never cloned).
func WithCache(cache caches.Cache) Option {
	return func(c *config) {
		c.instance = cache
		c.backend = "instance"
	}
}

// WithConstructor builds the cache through ctor: one instance per binding,
// so distinct owners get distinct clones unless sharing applies.
func WithConstructor(ctor caches.Constructor) Option {
	return func(c *config) {
		c.ctor = ctor
		c.backend = "custom"
	}
}

// WithProvider obtains the cache through a shared-cache provider, resolved at
// most once per owner.
func WithProvider(p Provider) Option {
	return func(c *config) {
		c.provider = p
		c.backend = "provider"
	}
}

// Shared obtains the cache through provider and marks the call site's storage
// as shared. Shorthand for WithProvider plus WithShared.
func Shared(p Provider) Option {
	return func(c *config) {
		c.provider = p
		c.backend = "provider"
		c.shared.Set(true)
	}
}

// NoCache disables caching for this call site. Calls always execute; the
// resolved cache is the null backend, a normal code path that never errors.
func NoCache() Option {
	return func(c *config) {
		c.disabled = true
		c.backend = "none"
	}
}
