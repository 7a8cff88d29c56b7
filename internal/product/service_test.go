package product

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/tienda/internal/apperr"
	"github.com/MikeMC777/tienda/internal/db"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	g, err := db.Open(context.Background(), db.DriverSQLite, ":memory:", time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	require.NoError(t, g.Migrate(context.Background()))
	return NewRepo(g)
}

type mapCache struct {
	mu   sync.Mutex
	m    map[string]Product
	hits int
}

func newMapCache() *mapCache { return &mapCache{m: map[string]Product{}} }

func (c *mapCache) Get(_ context.Context, id string) (*Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.m[id]
	if ok {
		c.hits++
	}
	return &p, ok
}

func (c *mapCache) Set(_ context.Context, p *Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[p.ID] = *p
}

func (c *mapCache) Invalidate(_ context.Context, ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.m, id)
	}
}

func widget(price string, stock int) CreateInput {
	return CreateInput{Name: "Widget", Price: decimal.RequireFromString(price), Stock: stock, Category: "Tools"}
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(newTestRepo(t), nil, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, "alice", widget("10.00", 3))
	require.NoError(t, err)
	_, err = uuid.Parse(p.ID)
	require.NoError(t, err)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, "10.00", got.Price.StringFixed(2))
	assert.Equal(t, 3, got.Stock)
	assert.False(t, got.CreatedAt.IsZero())

	v := got.View()
	assert.Equal(t, "10.00", v.Price)
	assert.Equal(t, 3, v.StockQuantity)
}

func TestGet_NotFound(t *testing.T) {
	svc := NewService(newTestRepo(t), nil, nil)

	_, err := svc.Get(context.Background(), uuid.NewString())
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))

	_, err = svc.Get(context.Background(), "not-a-uuid")
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newTestRepo(t), nil, nil)
	ctx := context.Background()

	cases := map[string]CreateInput{
		"empty name":      {Name: "  ", Price: decimal.NewFromInt(1)},
		"negative price":  widget("-0.01", 1),
		"three decimals":  widget("1.005", 1),
		"negative stock":  widget("1.00", -1),
		"price too large": widget("10000000000.00", 1),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, "alice", in)
			assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
		})
	}

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Create(ctx, "alice", widget("0", 0))
	assert.NoError(t, err, "free items with no stock are allowed")
}

func TestList_InsertionOrderAndPaging(t *testing.T) {
	svc := NewService(newTestRepo(t), nil, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		in := widget("1.00", i)
		in.Name = fmt.Sprintf("item-%d", i)
		_, err := svc.Create(ctx, "alice", in)
		require.NoError(t, err)
	}

	items, q, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, q.Limit)
	require.Len(t, items, 5)
	for i, p := range items {
		assert.Equal(t, fmt.Sprintf("item-%d", i), p.Name)
	}

	items, q, err = svc.List(ctx, -4, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, q.Offset)
	require.Len(t, items, 2)
	assert.Equal(t, "item-0", items[0].Name)

	items, _, err = svc.List(ctx, 3, 1000)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "item-3", items[0].Name)
}

func TestQueryNormalize(t *testing.T) {
	assert.Equal(t, Query{Limit: 100, Offset: 0}, Query{Limit: 0, Offset: -1}.normalize())
	assert.Equal(t, Query{Limit: 100, Offset: 7}, Query{Limit: 500, Offset: 7}.normalize())
	assert.Equal(t, Query{Limit: 10, Offset: 0}, Query{Limit: 10}.normalize())
}

func TestGet_ReadThroughCache(t *testing.T) {
	cache := newMapCache()
	svc := NewService(newTestRepo(t), cache, nil)
	ctx := context.Background()

	p, err := svc.Create(ctx, "alice", widget("2.50", 4))
	require.NoError(t, err)

	_, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, cache.hits)

	_, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	svc.Invalidate(ctx, p.ID)
	_, err = svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := Seed(ctx, repo, SampleCatalog())
	require.NoError(t, err)
	assert.Len(t, created, 5)

	items, err := repo.List(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "Laptop Pro", items[0].Name)
	assert.Equal(t, "1299.99", items[0].Price.StringFixed(2))
	assert.Equal(t, created, ids(items))

	again, err := Seed(ctx, repo, SampleCatalog())
	require.NoError(t, err)
	assert.Empty(t, again)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
}
