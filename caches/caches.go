package caches

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/malversoft/cachex/keys"
)

// Sentinel errors for cache operations.
var (
	// ErrValueTooLarge reports that a value cannot fit the cache at all.
	// The binding engine swallows it on store; all other Set errors propagate.
	ErrValueTooLarge = errors.New("caches: value too large for cache")
)

// Cache is the backend contract the binding engine orchestrates. It is a
// mapping-like store with integrated hit/miss counters; the engine never
// depends on a specific eviction algorithm.
//
// Contract:
//   - Backends are NOT safe for concurrent use on their own. The engine
//     serializes access through the resolved lock (see Synchronized); callers
//     accessing a cache directly must do the same.
//   - Get counts a hit or a miss on every call.
//   - MaxSize of 0 means unbounded.
type Cache interface {
	// Get retrieves a value. Returns (nil, false) on miss or expiry.
	Get(key keys.Key) (any, bool)

	// Set stores a value, evicting entries as the backend's policy dictates.
	Set(key keys.Key, value any) error

	// Delete removes a key. Reports whether the key was present.
	Delete(key keys.Key) bool

	// Clear removes all entries and resets the hit/miss counters.
	Clear()

	// Len returns the number of stored entries.
	Len() int

	// MaxSize returns the capacity, or 0 when unbounded.
	MaxSize() int

	// Info returns a counters snapshot.
	Info() Info

	// ID returns the instance identity. Two caches are the same cache iff
	// their IDs are equal.
	ID() string
}

// Synchronized is the optional capability of backends that carry an
// integrated lock. The engine uses it as the default lock for a binding.
type Synchronized interface {
	Locker() sync.Locker
}

// ErrorOutcome is the stored form of a call's error result. The binding
// engine stores one when error caching applies and replays it on every hit.
// Backends that serialize values must round-trip it with the message intact;
// the original error value itself survives only in backends that store
// values in memory.
type ErrorOutcome struct {
	Message string `msgpack:"message" json:"message"`

	err error
}

// NewErrorOutcome wraps err for storage as a cache entry.
func NewErrorOutcome(err error) *ErrorOutcome {
	return &ErrorOutcome{Message: err.Error(), err: err}
}

// Err returns the error to replay: the original when it is still in hand,
// otherwise the outcome itself carrying the preserved message.
func (o *ErrorOutcome) Err() error {
	if o.err != nil {
		return o.err
	}
	return o
}

func (o *ErrorOutcome) Error() string { return o.Message }

var _ error = (*ErrorOutcome)(nil)

// Constructor builds a fresh cache instance. The engine calls it once per
// binding when per-instance (clone) semantics apply.
type Constructor func() Cache

// Timer produces the current time for TTL-capable backends. Pluggable for
// tests.
type Timer func() time.Time

// TTUFunc computes the expiry time of an entry for time-aware (TLRU) caches.
type TTUFunc func(key keys.Key, value any, now time.Time) time.Time

// Info is a counters snapshot in the shape of the common memoizing-decorator
// cache_info result.
type Info struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	MaxSize  int    `json:"maxsize"`
	CurrSize int    `json:"currsize"`
}

// base carries the identity, counters and integrated lock shared by the
// builtin backends.
type base struct {
	id     string
	hits   uint64
	misses uint64
	mu     sync.Mutex
}

func newBase() base {
	return base{id: uuid.NewString()}
}

func (b *base) ID() string {
	return b.id
}

// KeyHash keys a cache instance used as a call argument by its identity, not
// by its contents.
func (b *base) KeyHash() uint64 {
	return xxhash.Sum64String(b.id)
}

func (b *base) Locker() sync.Locker {
	return &b.mu
}

func (b *base) hit()  { b.hits++ }
func (b *base) miss() { b.misses++ }

func (b *base) reset() {
	b.hits, b.misses = 0, 0
}

var _ keys.Hasher = (*base)(nil)
