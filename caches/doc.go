// Package caches provides the cache backend contract consumed by the binding
// engine, the builtin backend families, and the cache-level configuration
// defaults.
//
// # Contract
//
// A backend is any implementation of [Cache]: a mapping-like store with
// integrated hit/miss counters and an identity. Backends that also implement
// [Synchronized] expose an integrated lock that the engine resolves as the
// binding's default lock. Backends are deliberately not self-synchronizing:
// the engine serializes all access through the resolved lock, which keeps a
// single mutual-exclusion point per binding instead of stacking two.
//
// # Builtin backends
//
// Bounded memory families: [NewFIFO], [NewLFU], [NewLRU], [NewMRU], [NewRR].
// Expiring families: [NewTTL], [NewTLRU], [NewUnboundedTTL]. Unbounded:
// [NewUnbounded]. [NewNull] is the always-miss, discard-writes cache used
// when caching is disabled, a normal code path rather than an error. [NewRedis]
// adapts a Redis instance to the same contract with msgpack-serialized
// values.
//
// # Defaults
//
// [Defaults] is the cache-backend-level configuration scope: constructor
// parameters left unset (capacity, TTL) resolve through it. The
// decorator-level scope in the root package layers on top of it with live
// fallthrough.
package caches
