package marketdata

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"brokerage-api/internal/cache"
	"brokerage-api/pkg/market"
	"brokerage-api/pkg/market/synthetic"
)

func TestBroadcasterTickCachesAndPublishes(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedisStore(redis.MustNewRedis(redis.RedisConf{Host: mr.Addr(), Type: redis.NodeType}))
	hub := NewHub(8)
	sub := hub.Subscribe()

	b, err := NewBroadcaster(BroadcasterConfig{
		Symbols:   []string{"aapl", " msft ", ""},
		TTL:       time.Minute,
		Cache:     store,
		Hub:       hub,
		Synthetic: synthetic.NewGenerator(synthetic.WithSeed(3)),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, b.Symbols())

	ctx := context.Background()
	assert.Equal(t, 2, b.Tick(ctx))
	require.Len(t, sub.C(), 2)

	for _, sym := range []string{"AAPL", "MSFT"} {
		key := cache.PriceKey(sym)
		assert.Equal(t, time.Minute, mr.TTL(key))
		var q market.Quote
		require.True(t, cache.GetJSON(ctx, store, key, &q))
		assert.Equal(t, sym, q.Symbol)
		assert.Equal(t, market.SourceSynthetic, q.Source)
	}

	mr.FastForward(61 * time.Second)
	assert.False(t, mr.Exists(cache.PriceKey("AAPL")))
}

func TestBroadcasterDefaults(t *testing.T) {
	_, err := NewBroadcaster(BroadcasterConfig{})
	require.Error(t, err)

	store, err := cache.NewMemoryStore(0)
	require.NoError(t, err)
	b, err := NewBroadcaster(BroadcasterConfig{Cache: store})
	require.NoError(t, err)
	assert.Equal(t, DefaultBatchSymbols, b.Symbols())
	assert.NotNil(t, b.Hub())
}

func TestBroadcasterTickFeedsGatewayCache(t *testing.T) {
	store, err := cache.NewMemoryStore(0)
	require.NoError(t, err)
	b, err := NewBroadcaster(BroadcasterConfig{Symbols: []string{"NVDA"}, Cache: store})
	require.NoError(t, err)
	require.Equal(t, 1, b.Tick(context.Background()))

	provider := new(mockProvider)
	g, err := NewGateway(Config{Provider: provider, Cache: store, Limiter: NewLimiter(0)})
	require.NoError(t, err)
	q := g.CurrentPrice(context.Background(), "NVDA")
	assert.Equal(t, market.SourceSynthetic, q.Source)
	provider.AssertNotCalled(t, "Quote", "NVDA")
}

func TestBroadcasterStartStop(t *testing.T) {
	store, err := cache.NewMemoryStore(0)
	require.NoError(t, err)
	b, err := NewBroadcaster(BroadcasterConfig{Symbols: []string{"AAPL"}, Schedule: "@every 1s", Cache: store})
	require.NoError(t, err)
	sub := b.Hub().Subscribe("AAPL")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Start(ctx))
	require.Error(t, b.Start(ctx))

	select {
	case q := <-sub.C():
		assert.Equal(t, "AAPL", q.Symbol)
	case <-time.After(3 * time.Second):
		t.Fatal("no tick within 3s")
	}

	b.Stop()
	b.Stop()
	require.NoError(t, b.Start(ctx))
	cancel()
	assert.Eventually(t, func() bool {
		return b.Start(context.Background()) == nil
	}, 2*time.Second, 20*time.Millisecond)
	b.Stop()
}

func TestBroadcasterRejectsBadSchedule(t *testing.T) {
	store, err := cache.NewMemoryStore(0)
	require.NoError(t, err)
	b, err := NewBroadcaster(BroadcasterConfig{Schedule: "every now and then", Cache: store})
	require.NoError(t, err)
	assert.Error(t, b.Start(context.Background()))
}
