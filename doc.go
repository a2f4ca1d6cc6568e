// Package cachex memoizes function and method results through pluggable
// cache backends.
//
// A call site is wrapped once, yielding a handle whose Call method runs the
// underlying function through the cache:
//
//	fib := cachex.Wrap1(func(n int) (int, error) { ... })
//	v, err := fib.Call(40)
//
// Wrap/Wrap1/Wrap2/Wrap3 cover plain functions; WrapMethod/WrapMethod1/
// WrapMethod2 cover methods of owner types, which embed Slot to opt into
// per-instance storage:
//
//	type Repo struct {
//		cachex.Slot
//		DSN string
//	}
//
//	var lookup = cachex.WrapMethod1(func(r *Repo, id string) (Row, error) { ... })
//
// Each *Repo then gets its own cache, collected together with the instance.
// WithShared stores all owners' results in one cache instead. For call
// shapes the helpers don't cover, New plus Call or Memoizer.Do work against
// the engine directly.
//
// # Backends
//
// With no cache option the call site gets its own LRU backend sized from the
// effective defaults. The FIFO, LFU, LRU, MRU, RR, TTL, TLRU, Unbounded and
// UnboundedTTL options select a builtin backend; WithCache binds a concrete
// instance shared by identity, WithConstructor clones a backend per binding,
// WithProvider resolves the instance through a callback once per owner, and
// NoCache disables storage while keeping the call path uniform. Backends
// live in the caches subpackage, including a Redis-backed one.
//
// # Keys
//
// Keys derive from the call arguments (see the keys subpackage for the
// equivalence rules; numeric arguments equal in value share a key unless
// WithTyped is set). WithStateful layers the owner's observable state on
// top, so results become stale when the owner changes; WithKeyFunc replaces
// the argument-derived part entirely. Unkeyable arguments (functions,
// channels) make the call fail rather than silently sharing an entry.
//
// # Concurrency
//
// The engine serializes cache access through a per-binding lock and runs the
// wrapped function outside it. Concurrent misses on one key each execute and
// the last store wins; calls are never coalesced. The lock can be supplied
// (WithLock, WithLockProvider) to coordinate with external access to the
// same cache.
//
// # Errors
//
// By default a failed call caches nothing. WithCachedErrors stores matching
// errors as regular entries and replays them on later hits.
//
// Readers coming from functools.lru_cache: Uncached, Cache, Clear, Info and
// Parameters correspond to __wrapped__, cache, cache_clear, cache_info and
// cache_parameters.
package cachex
