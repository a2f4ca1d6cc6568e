package cachex

import (
	"sync"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"

	"github.com/cockroachdb/errors"
	"github.com/malversoft/cachex/caches"
)

// ErrNoOverride is returned when unsetting a default that has no explicit
// value at the decorator level. The cache-level value is never touched.
var ErrNoOverride = caches.ErrNoOverride

// Defaults is the decorator-level configuration scope. It layers over a
// cache-level caches.Defaults: reading a key returns the explicit
// decorator-level override when one is set, and otherwise falls through live
// to the current cache-level value, so a later mutation of the cache level is
// visible here until overridden. Unsetting an override restores fallthrough.
// Safe for concurrent use.
type Defaults struct {
	mu       sync.RWMutex
	base     *caches.Defaults
	maxSize  caches.Override[int]
	ttl      caches.Override[time.Duration]
	typed    caches.Override[bool]
	stateful caches.Override[bool]
	shared   caches.Override[bool]
	errs     caches.Override[bool]
}

// NewDefaults returns a decorator-level scope inheriting from base.
func NewDefaults(base *caches.Defaults) *Defaults {
	return &Defaults{base: base}
}

var std = NewDefaults(caches.Default())

// Default returns the package-wide decorator defaults, layered over
// caches.Default().
func Default() *Defaults {
	return std
}

// Base returns the cache-level scope this one inherits from.
func (d *Defaults) Base() *caches.Defaults {
	return d.base
}

// MaxSize returns the effective default capacity.
func (d *Defaults) MaxSize() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if v, ok := d.maxSize.Get(); ok {
		return v
	}
	return d.base.MaxSize()
}

// SetMaxSize overrides the default capacity at the decorator level.
func (d *Defaults) SetMaxSize(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.maxSize.Set(n)
}

// UnsetMaxSize removes the decorator-level capacity override.
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
	return d.base.TTL()
}

// SetTTL overrides the default time-to-live at the decorator level.
func (d *Defaults) SetTTL(ttl time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ttl.Set(ttl)
}

// SetTTLString overrides the default time-to-live from a human-readable
// duration such as "90s" or "1h30m".
func (d *Defaults) SetTTLString(s string) error {
	ttl, err := str2duration.ParseDuration(s)
	if err != nil {
		return errors.Wrapf(err, "cachex: invalid ttl %q", s)
	}
	d.SetTTL(ttl)
	return nil
}

// UnsetTTL removes the decorator-level time-to-live override.
func (d *Defaults) UnsetTTL() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ttl.Unset()
}

// Typed returns the effective default for typed key composition.
func (d *Defaults) Typed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, _ := d.typed.Get()
	return v
}

// SetTyped overrides the typed default.
func (d *Defaults) SetTyped(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.typed.Set(v)
}

// UnsetTyped removes the typed override.
func (d *Defaults) UnsetTyped() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.typed.Unset()
}

// Stateful returns the effective default for stateful key composition.
func (d *Defaults) Stateful() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, _ := d.stateful.Get()
	return v
}

// SetStateful overrides the stateful default.
func (d *Defaults) SetStateful(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stateful.Set(v)
}

// UnsetStateful removes the stateful override.
func (d *Defaults) UnsetStateful() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stateful.Unset()
}

// Shared returns the effective default for shared storage semantics.
func (d *Defaults) Shared() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, _ := d.shared.Get()
	return v
}

// SetShared overrides the shared default.
func (d *Defaults) SetShared(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shared.Set(v)
}

// UnsetShared removes the shared override.
func (d *Defaults) UnsetShared() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shared.Unset()
}

// CachedErrors returns the effective default for caching any error outcome.
func (d *Defaults) CachedErrors() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, _ := d.errs.Get()
	return v
}

// SetCachedErrors overrides the cached-errors default.
func (d *Defaults) SetCachedErrors(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs.Set(v)
}

// UnsetCachedErrors removes the cached-errors override.
func (d *Defaults) UnsetCachedErrors() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errs.Unset()
}
