package product

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through cache in front of GetByID. Implementations must
// treat every backend failure as a miss.
type Cache interface {
	Get(ctx context.Context, id string) (*Product, bool)
	Set(ctx context.Context, p *Product)
	Invalidate(ctx context.Context, ids ...string)
}

const cacheTTL = 30 * time.Second

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedisCache(addr string, log *slog.Logger) *RedisCache {
	return &RedisCache{
		rdb: redis.NewClient(&redis.Options{
			Addr:         addr,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		}),
		ttl: cacheTTL,
		log: log,
	}
}

func key(id string) string { return "tienda:product:" + id }

func (c *RedisCache) Get(ctx context.Context, id string) (*Product, bool) {
	b, err := c.rdb.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("product cache get", "id", id, "err", err)
		}
		return nil, false
	}
	var p Product
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *RedisCache) Set(ctx context.Context, p *Product) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key(p.ID), b, c.ttl).Err(); err != nil {
		c.log.Warn("product cache set", "id", p.ID, "err", err)
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("product cache invalidate", "ids", ids, "err", err)
	}
}

func (c *RedisCache) Close() error { return c.rdb.Close() }

// NoCache is used when REDIS_ADDR is empty.
type NoCache struct{}

func (NoCache) Get(context.Context, string) (*Product, bool) { return nil, false }
func (NoCache) Set(context.Context, *Product)                {}
func (NoCache) Invalidate(context.Context, ...string)        {}
