package caches

import (
	"math/rand"
	"time"
)

// DefaultQueryTimeout is the per-operation timeout for backends that perform
// I/O. Prevents indefinite hangs on slow or unresponsive storage.
const DefaultQueryTimeout = 5 * time.Second

// config holds the resolved configuration for a builtin backend.
type config struct {
	maxSize      int
	ttl          time.Duration
	timer        Timer
	choice       func(n int) int
	defaults     *Defaults
	prefix       string
	queryTimeout time.Duration
}

// Option configures a builtin backend.
type Option func(*config)

func applyOptions(opts []Option) config {
	cfg := config{
		timer:        time.Now,
		choice:       rand.Intn,
		defaults:     Default(),
		queryTimeout: DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxSize <= 0 {
		cfg.maxSize = cfg.defaults.MaxSize()
	}
	if cfg.ttl <= 0 {
		cfg.ttl = cfg.defaults.TTL()
	}
	return cfg
}

// WithMaxSize sets the capacity. Values <= 0 fall back to the defaults scope.
func WithMaxSize(n int) Option {
	return func(c *config) { c.maxSize = n }
}

// WithTTL sets the per-entry time-to-live for TTL-capable backends.
// Values <= 0 fall back to the defaults scope.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) { c.ttl = ttl }
}

// WithTimer sets the time source for TTL-capable backends.
func WithTimer(t Timer) Option {
	return func(c *config) { c.timer = t }
}

// WithChoice sets the victim selector for the random-replacement backend.
// The function receives the number of entries and returns the index to evict.
func WithChoice(choice func(n int) int) Option {
	return func(c *config) { c.choice = choice }
}

// WithDefaults sets the defaults scope consulted for unset parameters.
func WithDefaults(d *Defaults) Option {
	return func(c *config) { c.defaults = d }
}

// WithPrefix sets the key prefix for namespacing keys on shared remote
// storage. Applies to the Redis backend.
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed caches.
// Defaults to DefaultQueryTimeout.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}
