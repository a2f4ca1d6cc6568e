// Package keys composes cache keys from call argument values, optional
// runtime type discrimination, and optional object state.
//
// Keys are digests over a canonical, normalizing encoding of the inputs:
// numeric values that compare equal produce the same key regardless of their
// Go type (HashKey(3) == HashKey(3.0)), map entries are encoded in a stable
// order, and mutable containers are accepted and converted deterministically
// rather than rejected. Values that cannot be turned into key material
// (functions, channels, cyclic structures) fail fast with ErrUnhashable.
//
// TypedKey folds each argument's runtime type into the key so equal values of
// distinct types never collide. Compose additionally layers object state and
// caller-supplied key functions; it is the entry point the binding engine
// uses, and external callers should go through the engine's key accessor so
// their keys match the engine's configuration.
package keys
