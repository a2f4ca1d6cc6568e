package cachex

import (
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/malversoft/cachex/caches"
	"github.com/malversoft/cachex/keys"
)

// Call runs one typed memoized invocation through m. compute supplies the
// value on a miss; args compose the key. Use it directly when the Wrap and
// WrapMethod shapes don't fit (variadic signatures, more arguments than the
// provided arities).
func Call[R any](m *Memoizer, owner Owner, compute func() (R, error), args ...any) (R, error) {
	var zero R
	v, err := m.Do(owner, func() (any, error) { return compute() }, args...)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	r, ok := v.(R)
	if !ok {
		return zero, errors.Errorf("cachex: cached value is %T, want %T", v, zero)
	}
	return r, nil
}

// Func wraps a niladic function. Zero-argument calls share a single key, so
// the cache holds at most one value entry.
type Func[R any] struct {
	m  *Memoizer
	fn func() (R, error)
}

// Wrap memoizes a niladic function.
func Wrap[R any](fn func() (R, error), opts ...Option) *Func[R] {
	return &Func[R]{m: New(opts...), fn: fn}
}

// Call runs the function through the cache.
func (f *Func[R]) Call() (R, error) {
	return Call(f.m, nil, f.fn)
}

// Uncached runs the underlying function directly, bypassing the cache.
func (f *Func[R]) Uncached() (R, error) { return f.fn() }

func (f *Func[R]) Cache() (caches.Cache, error)         { return f.m.Cache(nil) }
func (f *Func[R]) Lock() (sync.Locker, error)           { return f.m.Lock(nil) }
func (f *Func[R]) Key() (keys.Key, error)               { return f.m.Key(nil) }
func (f *Func[R]) Clear() error                         { return f.m.Clear(nil) }
func (f *Func[R]) Info() (caches.Info, error)           { return f.m.Info(nil) }
func (f *Func[R]) Parameters() Parameters               { return f.m.Parameters() }
func (f *Func[R]) Configuration() (Configuration, error) { return f.m.Configuration(nil) }

// Memoizer exposes the underlying call site, for use with the package-level
// helpers.
func (f *Func[R]) Memoizer() *Memoizer { return f.m }

// Func1 wraps a one-argument function.
type Func1[A, R any] struct {
	m  *Memoizer
	fn func(A) (R, error)
}

// Wrap1 memoizes a one-argument function.
func Wrap1[A, R any](fn func(A) (R, error), opts ...Option) *Func1[A, R] {
	return &Func1[A, R]{m: New(opts...), fn: fn}
}

func (f *Func1[A, R]) Call(a A) (R, error) {
	return Call(f.m, nil, func() (R, error) { return f.fn(a) }, a)
}

func (f *Func1[A, R]) Uncached(a A) (R, error) { return f.fn(a) }

func (f *Func1[A, R]) Cache() (caches.Cache, error) { return f.m.Cache(nil) }
func (f *Func1[A, R]) Lock() (sync.Locker, error)   { return f.m.Lock(nil) }
func (f *Func1[A, R]) Key(a A) (keys.Key, error)    { return f.m.Key(nil, a) }
func (f *Func1[A, R]) Clear() error                 { return f.m.Clear(nil) }
func (f *Func1[A, R]) Info() (caches.Info, error)   { return f.m.Info(nil) }
func (f *Func1[A, R]) Parameters() Parameters       { return f.m.Parameters() }
func (f *Func1[A, R]) Configuration() (Configuration, error) {
	return f.m.Configuration(nil)
}
func (f *Func1[A, R]) Memoizer() *Memoizer { return f.m }

// Func2 wraps a two-argument function.
type Func2[A, B, R any] struct {
	m  *Memoizer
	fn func(A, B) (R, error)
}

// Wrap2 memoizes a two-argument function.
func Wrap2[A, B, R any](fn func(A, B) (R, error), opts ...Option) *Func2[A, B, R] {
	return &Func2[A, B, R]{m: New(opts...), fn: fn}
}

func (f *Func2[A, B, R]) Call(a A, b B) (R, error) {
	return Call(f.m, nil, func() (R, error) { return f.fn(a, b) }, a, b)
}

func (f *Func2[A, B, R]) Uncached(a A, b B) (R, error) { return f.fn(a, b) }

func (f *Func2[A, B, R]) Cache() (caches.Cache, error)  { return f.m.Cache(nil) }
func (f *Func2[A, B, R]) Lock() (sync.Locker, error)    { return f.m.Lock(nil) }
func (f *Func2[A, B, R]) Key(a A, b B) (keys.Key, error) { return f.m.Key(nil, a, b) }
func (f *Func2[A, B, R]) Clear() error                  { return f.m.Clear(nil) }
func (f *Func2[A, B, R]) Info() (caches.Info, error)    { return f.m.Info(nil) }
func (f *Func2[A, B, R]) Parameters() Parameters        { return f.m.Parameters() }
func (f *Func2[A, B, R]) Configuration() (Configuration, error) {
	return f.m.Configuration(nil)
}
func (f *Func2[A, B, R]) Memoizer() *Memoizer { return f.m }

// Func3 wraps a three-argument function.
type Func3[A, B, C, R any] struct {
	m  *Memoizer
	fn func(A, B, C) (R, error)
}

// Wrap3 memoizes a three-argument function.
func Wrap3[A, B, C, R any](fn func(A, B, C) (R, error), opts ...Option) *Func3[A, B, C, R] {
	return &Func3[A, B, C, R]{m: New(opts...), fn: fn}
}

func (f *Func3[A, B, C, R]) Call(a A, b B, c C) (R, error) {
	return Call(f.m, nil, func() (R, error) { return f.fn(a, b, c) }, a, b, c)
}

func (f *Func3[A, B, C, R]) Uncached(a A, b B, c C) (R, error) { return f.fn(a, b, c) }

func (f *Func3[A, B, C, R]) Cache() (caches.Cache, error) { return f.m.Cache(nil) }
func (f *Func3[A, B, C, R]) Lock() (sync.Locker, error)   { return f.m.Lock(nil) }
func (f *Func3[A, B, C, R]) Key(a A, b B, c C) (keys.Key, error) {
	return f.m.Key(nil, a, b, c)
}
func (f *Func3[A, B, C, R]) Clear() error               { return f.m.Clear(nil) }
func (f *Func3[A, B, C, R]) Info() (caches.Info, error) { return f.m.Info(nil) }
func (f *Func3[A, B, C, R]) Parameters() Parameters     { return f.m.Parameters() }
func (f *Func3[A, B, C, R]) Configuration() (Configuration, error) {
	return f.m.Configuration(nil)
}
func (f *Func3[A, B, C, R]) Memoizer() *Memoizer { return f.m }

// Method wraps a niladic method on an owner type. Each owner resolves its
// own binding unless shared storage applies.
type Method[O Owner, R any] struct {
	m  *Memoizer
	fn func(O) (R, error)
}

// WrapMethod memoizes a niladic method.
func WrapMethod[O Owner, R any](fn func(O) (R, error), opts ...Option) *Method[O, R] {
	return &Method[O, R]{m: New(opts...), fn: fn}
}

func (f *Method[O, R]) Call(o O) (R, error) {
	return Call(f.m, o, func() (R, error) { return f.fn(o) })
}

func (f *Method[O, R]) Uncached(o O) (R, error) { return f.fn(o) }

func (f *Method[O, R]) Cache(o O) (caches.Cache, error) { return f.m.Cache(o) }
func (f *Method[O, R]) Lock(o O) (sync.Locker, error)   { return f.m.Lock(o) }
func (f *Method[O, R]) Key(o O) (keys.Key, error)       { return f.m.Key(o) }
func (f *Method[O, R]) Clear(o O) error                 { return f.m.Clear(o) }
func (f *Method[O, R]) Info(o O) (caches.Info, error)   { return f.m.Info(o) }
func (f *Method[O, R]) Parameters() Parameters          { return f.m.Parameters() }
func (f *Method[O, R]) Configuration(o O) (Configuration, error) {
	return f.m.Configuration(o)
}
func (f *Method[O, R]) Memoizer() *Memoizer { return f.m }

// Method1 wraps a one-argument method on an owner type.
type Method1[O Owner, A, R any] struct {
	m  *Memoizer
	fn func(O, A) (R, error)
}

// WrapMethod1 memoizes a one-argument method.
func WrapMethod1[O Owner, A, R any](fn func(O, A) (R, error), opts ...Option) *Method1[O, A, R] {
	return &Method1[O, A, R]{m: New(opts...), fn: fn}
}

func (f *Method1[O, A, R]) Call(o O, a A) (R, error) {
	return Call(f.m, o, func() (R, error) { return f.fn(o, a) }, a)
}

func (f *Method1[O, A, R]) Uncached(o O, a A) (R, error) { return f.fn(o, a) }

func (f *Method1[O, A, R]) Cache(o O) (caches.Cache, error) { return f.m.Cache(o) }
func (f *Method1[O, A, R]) Lock(o O) (sync.Locker, error)   { return f.m.Lock(o) }
func (f *Method1[O, A, R]) Key(o O, a A) (keys.Key, error)  { return f.m.Key(o, a) }
func (f *Method1[O, A, R]) Clear(o O) error                 { return f.m.Clear(o) }
func (f *Method1[O, A, R]) Info(o O) (caches.Info, error)   { return f.m.Info(o) }
func (f *Method1[O, A, R]) Parameters() Parameters          { return f.m.Parameters() }
func (f *Method1[O, A, R]) Configuration(o O) (Configuration, error) {
	return f.m.Configuration(o)
}
func (f *Method1[O, A, R]) Memoizer() *Memoizer { return f.m }

// Method2 wraps a two-argument method on an owner type.
type Method2[O Owner, A, B, R any] struct {
	m  *Memoizer
	fn func(O, A, B) (R, error)
}

// WrapMethod2 memoizes a two-argument method.
func WrapMethod2[O Owner, A, B, R any](fn func(O, A, B) (R, error), opts ...Option) *Method2[O, A, B, R] {
	return &Method2[O, A, B, R]{m: New(opts...), fn: fn}
}

func (f *Method2[O, A, B, R]) Call(o O, a A, b B) (R, error) {
	return Call(f.m, o, func() (R, error) { return f.fn(o, a, b) }, a, b)
}

func (f *Method2[O, A, B, R]) Uncached(o O, a A, b B) (R, error) { return f.fn(o, a, b) }

func (f *Method2[O, A, B, R]) Cache(o O) (caches.Cache, error) { return f.m.Cache(o) }
func (f *Method2[O, A, B, R]) Lock(o O) (sync.Locker, error)   { return f.m.Lock(o) }
func (f *Method2[O, A, B, R]) Key(o O, a A, b B) (keys.Key, error) {
	return f.m.Key(o, a, b)
}
func (f *Method2[O, A, B, R]) Clear(o O) error               { return f.m.Clear(o) }
func (f *Method2[O, A, B, R]) Info(o O) (caches.Info, error) { return f.m.Info(o) }
func (f *Method2[O, A, B, R]) Parameters() Parameters        { return f.m.Parameters() }
func (f *Method2[O, A, B, R]) Configuration(o O) (Configuration, error) {
	return f.m.Configuration(o)
}
func (f *Method2[O, A, B, R]) Memoizer() *Memoizer { return f.m }
