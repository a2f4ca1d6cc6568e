package keys

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Key is an opaque cache key. Two calls map to the same Key iff they are
// equivalent under the active typed/stateful/override configuration.
type Key string

// Func builds a Key from call argument values. Custom key functions replace
// the default argument-derived composition; object state, when enabled, is
// still layered on top by Compose.
type Func func(args ...any) (Key, error)

// Hasher lets a value supply identity-stable key material instead of being
// traversed structurally. Cache instances passed as arguments implement this
// so they are keyed by identity, not by their contents.
type Hasher interface {
	KeyHash() uint64
}

// StateSource is the capability a type opts into to expose a snapshot of its
// observable state for stateful caching. The returned value must be
// convertible to key material (same rules as call arguments).
type StateSource interface {
	CacheState() any
}

// HashKey composes a Key from argument values only. Values that compare equal
// across numeric types collide: HashKey(3) == HashKey(3.0).
func HashKey(args ...any) (Key, error) {
	return Compose(args, false, nil, false, nil)
}

// TypedKey composes a Key folding each argument's runtime type into the key,
// so equal-by-value but distinct-by-type arguments never collide.
func TypedKey(args ...any) (Key, error) {
	return Compose(args, true, nil, false, nil)
}

// Compose is the full key composition entry point used by the binding engine.
// When override is non-nil it replaces the default argument composition.
// When withState is true, state is folded into the key material regardless of
// how the argument-derived part was produced.
func Compose(args []any, typed bool, state any, withState bool, override Func) (Key, error) {
	d := xxhash.New()
	e := encoder{w: d}

	if override != nil {
		k, err := override(args...)
		if err != nil {
			return "", err
		}
		if !withState {
			return k, nil
		}
		e.writeFrame('k', string(k))
		if err := e.encode(state); err != nil {
			return "", err
		}
		return finish(d), nil
	}

	if withState {
		e.writeTag("st")
		if err := e.encode(state); err != nil {
			return "", err
		}
	}
	for _, a := range args {
		if typed {
			e.writeFrame('T', typeName(a))
		}
		if err := e.encode(a); err != nil {
			return "", err
		}
	}
	return finish(d), nil
}

func finish(d *xxhash.Digest) Key {
	return Key(strconv.FormatUint(d.Sum64(), 16))
}
