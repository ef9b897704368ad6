package svc_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/zeromicro/go-zero/core/stores/redis"

	"brokerage-api/internal/cache"
	"brokerage-api/internal/config"
	"brokerage-api/internal/svc"
	"brokerage-api/pkg/confkit"
	marketpkg "brokerage-api/pkg/market"
	"brokerage-api/pkg/market/synthetic"
)

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Config{Env: "test"}
	cfg.TTL = config.CacheTTL{Quote: 30, History: 300, Search: 3600, Simulated: 60}
	cfg.MarketData = config.MarketDataConf{
		RateInterval:   0,
		QuoteTimeout:   time.Second,
		HistoryTimeout: time.Second,
		Timezone:       "America/New_York",
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}

func TestBuildWithoutBackends(t *testing.T) {
	ctx, err := svc.Build(baseConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer ctx.Close()

	if ctx.DBConn != nil || ctx.Memory == nil {
		t.Fatalf("expected in-process repositories")
	}
	if _, ok := ctx.Cache.(*cache.MemoryStore); !ok {
		t.Fatalf("expected memory cache, got %T", ctx.Cache)
	}
	if ctx.Provider != nil {
		t.Fatalf("expected no upstream provider, got %T", ctx.Provider)
	}
	q := ctx.Gateway.CurrentPrice(context.Background(), "AAPL")
	if q.Source != marketpkg.SourceSynthetic {
		t.Fatalf("expected synthetic quote, got %s", q.Source)
	}
	if got := ctx.Broadcaster.Symbols(); len(got) != len(config.DefaultSimulationSymbols) {
		t.Fatalf("unexpected broadcast symbols %v", got)
	}
}

func TestBuildWithRedisAndSyntheticProvider(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig(t)
	cfg.Redis = redis.RedisConf{Host: mr.Addr(), Type: redis.NodeType}
	cfg.Market.Value = &marketpkg.Config{
		Default:   "demo",
		Providers: map[string]*marketpkg.ProviderConfig{"demo": {Type: "synthetic", Seed: 9}},
	}

	ctx, err := svc.Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer ctx.Close()

	if _, ok := ctx.Cache.(*cache.RedisStore); !ok {
		t.Fatalf("expected redis cache, got %T", ctx.Cache)
	}
	if _, ok := ctx.Provider.(*synthetic.Provider); !ok {
		t.Fatalf("expected synthetic provider, got %T", ctx.Provider)
	}
	q := ctx.Gateway.CurrentPrice(context.Background(), "MSFT")
	if q.Source != marketpkg.SourceSynthetic {
		t.Fatalf("expected synthetic quote from demo provider, got %s", q.Source)
	}
	if mr.Exists(cache.PriceKey("MSFT")) {
		t.Fatal("demo provider quote should not be cached")
	}

	if n := ctx.Broadcaster.Tick(context.Background()); n == 0 {
		t.Fatal("expected broadcaster to cache quotes")
	}
	if ttl := mr.TTL(cache.PriceKey("AAPL")); ttl != time.Minute {
		t.Fatalf("unexpected simulated quote ttl %s", ttl)
	}
}

func TestBuildFallsBackWhenProviderCannotBeBuilt(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Market.Value = &marketpkg.Config{
		Default:   "av",
		Providers: map[string]*marketpkg.ProviderConfig{"av": {Type: "alphavantage"}},
	}
	ctx, err := svc.Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer ctx.Close()
	if ctx.Provider != nil {
		t.Fatalf("provider without api key should be skipped")
	}
}

func TestStartSimulationHonoursEnabled(t *testing.T) {
	cfg := baseConfig(t)
	ctx, err := svc.Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := ctx.StartSimulation(context.Background()); err != nil {
		t.Fatalf("disabled simulation should be a no-op: %v", err)
	}
	ctx.Close()

	cfg.Simulation.Enabled = true
	cfg.Simulation.Schedule = "@every 1s"
	ctx, err = svc.Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer ctx.Close()
	sub := ctx.Hub.Subscribe("AAPL")
	if err := ctx.StartSimulation(context.Background()); err != nil {
		t.Fatalf("StartSimulation: %v", err)
	}
	select {
	case q := <-sub.C():
		if q.Symbol != "AAPL" {
			t.Fatalf("unexpected tick %+v", q)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("no simulated tick received")
	}
}

func TestBuildFromShippedConfig(t *testing.T) {
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("APP_ENV", "test")
	t.Setenv("MARKET_PROVIDER", "demo")
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("REDIS_HOST", "")

	cfg, err := config.Load(confkit.MustProjectPath("etc/brokerage.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ctx, err := svc.Build(*cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer ctx.Close()
	if ctx.Provider == nil {
		t.Fatalf("demo provider not built")
	}
}
