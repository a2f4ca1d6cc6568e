package cachex

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malversoft/cachex/caches"
	"github.com/malversoft/cachex/keys"
)

func TestWrap1Memoizes(t *testing.T) {
	var calls int
	double := Wrap1(func(n int) (int, error) {
		calls++
		return n * 2, nil
	})

	for i := 0; i < 3; i++ {
		v, err := double.Call(21)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 1, calls)

	v, err := double.Call(5)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 2, calls)
}

func TestWrap1LRUEndToEnd(t *testing.T) {
	var calls int
	square := Wrap1(func(n int) (int, error) {
		calls++
		return n * n, nil
	}, LRU(caches.WithMaxSize(2)))

	// Three distinct arguments through a capacity-2 cache, then two repeats.
	for _, n := range []int{1, 2, 3, 2, 3} {
		v, err := square.Call(n)
		require.NoError(t, err)
		assert.Equal(t, n*n, v)
	}
	assert.Equal(t, 3, calls)

	info, err := square.Info()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.Hits)
	assert.Equal(t, uint64(3), info.Misses)
	assert.Equal(t, 2, info.MaxSize)
	assert.Equal(t, 2, info.CurrSize)
}

func TestUncachedBypasses(t *testing.T) {
	var calls int
	f := Wrap(func() (int, error) {
		calls++
		return calls, nil
	})

	v, err := f.Call()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = f.Uncached()
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	// The cached entry is untouched.
	v, err = f.Call()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestClearForcesRecompute(t *testing.T) {
	var calls int
	f := Wrap(func() (int, error) {
		calls++
		return calls, nil
	})

	_, err := f.Call()
	require.NoError(t, err)
	_, err = f.Call()
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	require.NoError(t, f.Clear())
	_, err = f.Call()
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestErrorsNotCachedByDefault(t *testing.T) {
	var calls int
	boom := errors.New("boom")
	f := Wrap1(func(n int) (int, error) {
		calls++
		return 0, boom
	})

	_, err := f.Call(1)
	assert.ErrorIs(t, err, boom)
	_, err = f.Call(1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestCachedErrorsReplay(t *testing.T) {
	var calls int
	boom := errors.New("boom")
	f := Wrap1(func(n int) (int, error) {
		calls++
		return 0, errors.Wrap(boom, "call failed")
	}, WithCachedErrors(boom))

	_, err := f.Call(1)
	assert.ErrorIs(t, err, boom)
	_, err = f.Call(1)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestCachedErrorsTargetFilter(t *testing.T) {
	var calls int
	cached := errors.New("cached")
	transient := errors.New("transient")
	f := Wrap1(func(n int) (int, error) {
		calls++
		if n == 1 {
			return 0, cached
		}
		return 0, transient
	}, WithCachedErrors(cached))

	_, _ = f.Call(1)
	_, _ = f.Call(1)
	assert.Equal(t, 1, calls)

	_, _ = f.Call(2)
	_, _ = f.Call(2)
	assert.Equal(t, 3, calls)
}

func TestCachedErrorsAny(t *testing.T) {
	var calls int
	f := Wrap(func() (int, error) {
		calls++
		return 0, errors.New("always fails")
	}, WithCachedErrors())

	_, err := f.Call()
	assert.Error(t, err)
	_, err = f.Call()
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCachedErrorsSurviveSerialization(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	var calls int
	boom := errors.New("boom")
	f := Wrap1(func(n int) (int, error) {
		calls++
		return 0, boom
	}, WithCache(caches.NewRedis(context.Background(), client)), WithCachedErrors())

	_, err := f.Call(1)
	assert.ErrorIs(t, err, boom)

	// The stored outcome comes back through msgpack, so the replayed error
	// is a reconstruction carrying the original message, never a success.
	_, err = f.Call(1)
	require.Error(t, err)
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}

func TestNoCacheAlwaysExecutes(t *testing.T) {
	var calls int
	f := Wrap1(func(n int) (int, error) {
		calls++
		return n, nil
	}, NoCache())

	for i := 0; i < 3; i++ {
		_, err := f.Call(1)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, calls)

	info, err := f.Info()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), info.Hits)
	assert.Equal(t, uint64(3), info.Misses)
	assert.Equal(t, 0, info.CurrSize)
}

func TestWithCacheSharedByIdentity(t *testing.T) {
	shared := caches.NewUnbounded()
	a := Wrap1(func(n int) (int, error) { return n, nil }, WithCache(shared))
	b := Wrap1(func(n int) (int, error) { return n, nil }, WithCache(shared))

	ca, err := a.Cache()
	require.NoError(t, err)
	cb, err := b.Cache()
	require.NoError(t, err)
	assert.Equal(t, shared.ID(), ca.ID())
	assert.Equal(t, ca.ID(), cb.ID())
}

func TestWithConstructorClonesPerCallSite(t *testing.T) {
	ctor := func() caches.Cache { return caches.NewLRU(caches.WithMaxSize(4)) }
	a := Wrap(func() (int, error) { return 1, nil }, WithConstructor(ctor))
	b := Wrap(func() (int, error) { return 2, nil }, WithConstructor(ctor))

	ca, err := a.Cache()
	require.NoError(t, err)
	cb, err := b.Cache()
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID(), cb.ID())
}

type counter struct {
	Slot
	Base int

	calls int
}

func TestMethodPerInstanceCaches(t *testing.T) {
	add := WrapMethod1(func(c *counter, n int) (int, error) {
		c.calls++
		return c.Base + n, nil
	})

	a := &counter{Base: 10}
	b := &counter{Base: 20}

	v, err := add.Call(a, 1)
	require.NoError(t, err)
	assert.Equal(t, 11, v)
	v, err = add.Call(b, 1)
	require.NoError(t, err)
	assert.Equal(t, 21, v)

	// Each instance has its own storage, so neither call was a hit.
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)

	ca, err := add.Cache(a)
	require.NoError(t, err)
	cb, err := add.Cache(b)
	require.NoError(t, err)
	assert.NotEqual(t, ca.ID(), cb.ID())

	_, err = add.Call(a, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, a.calls)
}

func TestMethodSharedStorage(t *testing.T) {
	var calls int32
	add := WrapMethod1(func(c *counter, n int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return n, nil
	}, WithShared())

	a := &counter{Base: 10}
	b := &counter{Base: 20}
	ca, err := add.Cache(a)
	require.NoError(t, err)
	cb, err := add.Cache(b)
	require.NoError(t, err)
	assert.Equal(t, ca.ID(), cb.ID())

	_, err = add.Call(a, 1)
	require.NoError(t, err)
	_, err = add.Call(b, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestProviderResolvedOncePerOwner(t *testing.T) {
	var resolves int32
	provider := func(owner any, name string) (caches.Cache, error) {
		atomic.AddInt32(&resolves, 1)
		return caches.NewUnbounded(), nil
	}
	get := WrapMethod1(func(c *counter, n int) (int, error) {
		return n, nil
	}, WithProvider(provider))

	a := &counter{}
	b := &counter{}
	for i := 0; i < 3; i++ {
		_, err := get.Call(a, i)
		require.NoError(t, err)
		_, err = get.Call(b, i)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&resolves))
}

func TestSharedProvider(t *testing.T) {
	shared := caches.NewUnbounded()
	var resolves int32
	get := WrapMethod(func(c *counter) (int, error) { return c.Base, nil },
		Shared(func(owner any, name string) (caches.Cache, error) {
			atomic.AddInt32(&resolves, 1)
			return shared, nil
		}))

	assert.True(t, get.Parameters().Shared)

	a := &counter{Base: 1}
	ca, err := get.Cache(a)
	require.NoError(t, err)
	assert.Equal(t, shared.ID(), ca.ID())
}

func TestProviderFailureIsRetried(t *testing.T) {
	var attempts int32
	provider := func(owner any, name string) (caches.Cache, error) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return nil, errors.New("backing store down")
		}
		return caches.NewUnbounded(), nil
	}
	get := WrapMethod(func(c *counter) (int, error) { return 1, nil }, WithProvider(provider))

	a := &counter{}
	_, err := get.Call(a)
	assert.Error(t, err)

	v, err := get.Call(a)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestProviderReturningNothing(t *testing.T) {
	get := WrapMethod(func(c *counter) (int, error) { return 1, nil },
		WithProvider(func(owner any, name string) (caches.Cache, error) {
			return nil, nil
		}))

	_, err := get.Call(&counter{})
	assert.ErrorIs(t, err, ErrNotCache)
}

func TestProviderReceivesOwnerAndName(t *testing.T) {
	a := &counter{}
	get := WrapMethod(func(c *counter) (int, error) { return 1, nil },
		WithName("counter.get"),
		WithProvider(func(owner any, name string) (caches.Cache, error) {
			assert.Same(t, a, owner)
			assert.Equal(t, "counter.get", name)
			return caches.NewUnbounded(), nil
		}))

	_, err := get.Call(a)
	require.NoError(t, err)
}

func TestStatefulKeysTrackOwnerState(t *testing.T) {
	var calls int
	get := WrapMethod(func(c *counter) (int, error) {
		calls++
		return c.Base, nil
	}, WithStateful(), WithShared())

	a := &counter{Base: 1}
	v, err := get.Call(a)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	_, err = get.Call(a)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	// Mutating observable state invalidates the previous entry's key.
	a.Base = 2
	v, err = get.Call(a)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)

	// Restoring the state restores the original entry.
	a.Base = 1
	v, err = get.Call(a)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, calls)
}

func TestStateFuncOverridesSnapshot(t *testing.T) {
	var calls int
	get := WrapMethod(func(c *counter) (int, error) {
		calls++
		return c.Base, nil
	}, WithStateFunc(func(owner any) any {
		return owner.(*counter).Base % 2
	}))

	a := &counter{Base: 1}
	_, err := get.Call(a)
	require.NoError(t, err)

	// 1 and 3 share a state under the custom function.
	a.Base = 3
	v, err := get.Call(a)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)
}

func TestTypedDiscriminatesArgumentTypes(t *testing.T) {
	var calls int
	m := New(WithTyped())
	compute := func() (string, error) {
		calls++
		return strconv.Itoa(calls), nil
	}

	v1, err := Call(m, nil, compute, 3)
	require.NoError(t, err)
	v2, err := Call(m, nil, compute, 3.0)
	require.NoError(t, err)
	assert.NotEqual(t, v1, v2)
	assert.Equal(t, 2, calls)

	// Without typed keys the same two calls collide.
	calls = 0
	m = New()
	v1, err = Call(m, nil, compute, 3)
	require.NoError(t, err)
	v2, err = Call(m, nil, compute, 3.0)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, calls)
}

func TestCustomKeyFunc(t *testing.T) {
	var calls int
	f := Wrap2(func(a, b int) (int, error) {
		calls++
		return a + b, nil
	}, WithKeyFunc(func(args ...any) (keys.Key, error) {
		// Key on the first argument only.
		return keys.HashKey(args[0])
	}))

	v, err := f.Call(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = f.Call(1, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, 1, calls)
}

func TestUnhashableArgumentFails(t *testing.T) {
	m := New()
	_, err := Call(m, nil, func() (int, error) { return 1, nil }, func() {})
	assert.Error(t, err)
}

func TestLockDefaultsToCacheLocker(t *testing.T) {
	f := Wrap(func() (int, error) { return 1, nil })
	c, err := f.Cache()
	require.NoError(t, err)
	l, err := f.Lock()
	require.NoError(t, err)
	assert.Same(t, c.(caches.Synchronized).Locker(), l)
}

func TestWithLockProviderResolvedOncePerOwner(t *testing.T) {
	var resolves int32
	locks := map[*counter]*sync.Mutex{}
	var mu sync.Mutex
	get := WrapMethod(func(c *counter) (int, error) { return 1, nil },
		WithLockProvider(func(owner any, name string) (sync.Locker, error) {
			atomic.AddInt32(&resolves, 1)
			mu.Lock()
			defer mu.Unlock()
			l := &sync.Mutex{}
			locks[owner.(*counter)] = l
			return l, nil
		}))

	a := &counter{}
	_, err := get.Call(a)
	require.NoError(t, err)
	_, err = get.Call(a)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&resolves))

	l, err := get.Lock(a)
	require.NoError(t, err)
	assert.Same(t, locks[a], l)
}

func TestWithLockIsUsed(t *testing.T) {
	mu := &sync.Mutex{}
	f := Wrap(func() (int, error) { return 1, nil }, WithLock(mu))
	l, err := f.Lock()
	require.NoError(t, err)
	assert.Same(t, mu, l)
}

func TestConcurrentMissesBothExecute(t *testing.T) {
	var calls int32
	var barrier sync.WaitGroup
	barrier.Add(2)
	f := Wrap(func() (int, error) {
		atomic.AddInt32(&calls, 1)
		// Hold both computations in flight at once to prove they are not
		// coalesced.
		barrier.Done()
		barrier.Wait()
		return 1, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Call()
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestParameters(t *testing.T) {
	f := Wrap(func() (int, error) { return 1, nil },
		WithName("answer"), WithTyped(), WithStateful(), WithCachedErrors())

	p := f.Parameters()
	assert.Equal(t, "answer", p.Name)
	assert.Equal(t, "lru", p.Backend)
	assert.True(t, p.Typed)
	assert.True(t, p.Stateful)
	assert.False(t, p.Shared)
	assert.True(t, p.CachedErrors)
}

func TestConfiguration(t *testing.T) {
	instance := caches.NewUnbounded()
	mu := &sync.Mutex{}
	f := Wrap(func() (int, error) { return 1, nil }, WithCache(instance), WithLock(mu))

	cfg, err := f.Configuration()
	require.NoError(t, err)
	assert.Equal(t, "instance", cfg.Backend)
	assert.Equal(t, instance.ID(), cfg.Cache.ID())
	assert.Same(t, mu, cfg.Lock)
}

func TestKeyAccessorMatchesCalls(t *testing.T) {
	f := Wrap1(func(n int) (int, error) { return n, nil })
	k1, err := f.Key(7)
	require.NoError(t, err)
	k2, err := f.Key(7)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	k3, err := f.Key(8)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}

func TestCallTypeMismatch(t *testing.T) {
	m := New()
	_, err := Call(m, nil, func() (int, error) { return 1, nil }, "k")
	require.NoError(t, err)

	_, err = Call(m, nil, func() (string, error) { return "s", nil }, "k")
	assert.ErrorContains(t, err, "cached value is int")
}

func TestStoreTooLargeKeepsResult(t *testing.T) {
	var calls int
	f := Wrap(func() (int, error) {
		calls++
		return calls, nil
	}, WithConstructor(func() caches.Cache { return rejectingCache{caches.NewNull()} }))

	v, err := f.Call()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	v, err = f.Call()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

// rejectingCache refuses every store with ErrValueTooLarge.
type rejectingCache struct {
	caches.Cache
}

func (c rejectingCache) Set(key keys.Key, value any) error {
	return caches.ErrValueTooLarge
}
