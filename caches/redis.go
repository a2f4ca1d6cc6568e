package caches

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/malversoft/cachex/keys"
)

// redisCache adapts a Redis instance to the backend contract. Values are
// serialized to msgpack, so they come back as generic types (maps, slices,
// scalars) rather than the concrete Go types that were stored; expiry uses
// native Redis TTL. Hit/miss counters are tracked locally under the
// integrated lock. The caller owns the redis.Client lifecycle.
type redisCache struct {
	base
	ctx    context.Context
	client *redis.Client
	cfg    config
}

var (
	_ Cache        = (*redisCache)(nil)
	_ Synchronized = (*redisCache)(nil)
)

// NewRedis returns a cache backed by Redis. Entries expire after the
// configured TTL. Transport errors on reads degrade to misses; errors on
// writes propagate through Set.
func NewRedis(ctx context.Context, client *redis.Client, opts ...Option) Cache {
	return &redisCache{
		base:   newBase(),
		ctx:    ctx,
		client: client,
		cfg:    applyOptions(opts),
	}
}

func (c *redisCache) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.ctx, c.cfg.queryTimeout)
}

func (c *redisCache) redisKey(key keys.Key) string {
	if c.cfg.prefix == "" {
		return string(key)
	}
	return c.cfg.prefix + ":" + string(key)
}

func (c *redisCache) pattern() string {
	if c.cfg.prefix == "" {
		return "*"
	}
	return c.cfg.prefix + ":*"
}

// redisPayload is the wire envelope. The discriminator keeps stored error
// outcomes distinguishable from ordinary values after deserialization.
type redisPayload struct {
	Value  any    `msgpack:"v"`
	Failed bool   `msgpack:"f,omitempty"`
	Error  string `msgpack:"e,omitempty"`
}

func (c *redisCache) Get(key keys.Key) (any, bool) {
	ctx, cancel := c.queryCtx()
	defer cancel()
	data, err := c.client.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil {
		c.miss()
		return nil, false
	}
	var p redisPayload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		c.miss()
		return nil, false
	}
	c.hit()
	if p.Failed {
		return &ErrorOutcome{Message: p.Error}, true
	}
	return p.Value, true
}

func (c *redisCache) Set(key keys.Key, value any) error {
	var p redisPayload
	if o, ok := value.(*ErrorOutcome); ok {
		p.Failed = true
		p.Error = o.Message
	} else {
		p.Value = value
	}
	data, err := msgpack.Marshal(p)
	if err != nil {
		return err
	}
	ctx, cancel := c.queryCtx()
	defer cancel()
	return c.client.Set(ctx, c.redisKey(key), data, c.cfg.ttl).Err()
}

func (c *redisCache) Delete(key keys.Key) bool {
	ctx, cancel := c.queryCtx()
	defer cancel()
	n, err := c.client.Del(ctx, c.redisKey(key)).Result()
	return err == nil && n > 0
}

func (c *redisCache) Clear() {
	ctx, cancel := c.queryCtx()
	defer cancel()
	iter := c.client.Scan(ctx, 0, c.pattern(), 0).Iterator()
	for iter.Next(ctx) {
		c.client.Del(ctx, iter.Val())
	}
	c.reset()
}

func (c *redisCache) Len() int {
	ctx, cancel := c.queryCtx()
	defer cancel()
	n := 0
	iter := c.client.Scan(ctx, 0, c.pattern(), 0).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n
}

func (c *redisCache) MaxSize() int {
	return 0
}

func (c *redisCache) Info() Info {
	return Info{Hits: c.hits, Misses: c.misses, CurrSize: c.Len()}
}
