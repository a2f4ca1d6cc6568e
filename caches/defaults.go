package caches

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	str2duration "github.com/xhit/go-str2duration/v2"
)

// Builtin fallback values used when a default has no explicit value set.
const (
	DefaultMaxSize = 128
	DefaultTTL     = 5 * time.Minute
)

// ErrNoOverride reports an attempt to unset a default that has no explicit
// value at this level. The inherited level is never touched.
var ErrNoOverride = errors.New("caches: nothing to remove at this level")

// Override is an explicit present-or-inherited configuration entry. The zero
// value is "unset", which falls through to the inherited level.
type Override[T any] struct {
	value T
	set   bool
}

// Get returns the override value and whether it is explicitly set.
func (o Override[T]) Get() (T, bool) {
	return o.value, o.set
}

// Set makes the override explicit at this level.
func (o *Override[T]) Set(v T) {
	o.value, o.set = v, true
}

// Unset removes the explicit value, restoring fallthrough to the inherited
// level. Returns ErrNoOverride when nothing is set.
func (o *Override[T]) Unset() error {
	if !o.set {
		return ErrNoOverride
	}
	var zero T
	o.value, o.set = zero, false
	return nil
}

// Defaults is the cache-backend-level configuration scope: the values used
// for constructor parameters left unset. Reads resolve explicit values first
// and fall back to the builtin constants. Safe for concurrent use.
type Defaults struct {
	mu      sync.RWMutex
	maxSize Override[int]
	ttl     Override[time.Duration]
}

// NewDefaults returns an empty cache-level defaults scope.
func NewDefaults() *Defaults {
	return &Defaults{}
}

var std = NewDefaults()

// Default returns the package-wide defaults scope shared by all caches that
// are not given an explicit one.
func Default() *Defaults {
	return std
}

// MaxSize returns the effective default capacity.
func (d *Defaults) MaxSize() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if v, ok := d.maxSize.Get(); ok {
		return v
	}
	return DefaultMaxSize
}

// SetMaxSize sets the default capacity at this level.
func (d *Defaults) SetMaxSize(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.maxSize.Set(n)
}

// UnsetMaxSize removes the explicit capacity, restoring the builtin value.
// Returns ErrNoOverride when no explicit value is set.
func (d *Defaults) UnsetMaxSize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.maxSize.Unset()
}

// TTL returns the effective default time-to-live.
func (d *Defaults) TTL() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if v, ok := d.ttl.Get(); ok {
		return v
	}
	return DefaultTTL
}

// SetTTL sets the default time-to-live at this level.
func (d *Defaults) SetTTL(ttl time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ttl.Set(ttl)
}

// SetTTLString sets the default time-to-live from a human-readable duration
// such as "90s", "5m" or "1h30m".
func (d *Defaults) SetTTLString(s string) error {
	ttl, err := str2duration.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "caches: invalid ttl %q", s)
	}
	d.SetTTL(ttl)
	return nil
}

// UnsetTTL removes the explicit time-to-live, restoring the builtin value.
// Returns ErrNoOverride when no explicit value is set.
func (d *Defaults) UnsetTTL() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ttl.Unset()
}
