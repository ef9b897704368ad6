package svc

import (
	"context"
	"log"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"brokerage-api/internal/cache"
	"brokerage-api/internal/config"
	"brokerage-api/internal/marketdata"
	"brokerage-api/internal/portfolio"
	"brokerage-api/internal/repo"
	marketpkg "brokerage-api/pkg/market"
	_ "brokerage-api/pkg/market/alphavantage"
	"brokerage-api/pkg/market/synthetic"
)

type ServiceContext struct {
	Config    config.Config
	StartedAt time.Time

	// Optional Postgres connection; nil when the in-process store is used.
	DBConn sqlx.SqlConn
	Repos  *repo.Set
	Memory *repo.Memory

	Cache       cache.Store
	Provider    marketpkg.Provider
	Synthetic   *synthetic.Generator
	Gateway     *marketdata.Gateway
	Portfolio   *portfolio.Engine
	Hub         *marketdata.Hub
	Broadcaster *marketdata.Broadcaster
}

func NewServiceContext(c config.Config) *ServiceContext {
	svc, err := Build(c)
	if err != nil {
		log.Fatalf("failed to build service context: %v", err)
	}
	return svc
}

// Build wires every component from c. Backends are chosen here, once:
// Postgres when a DSN is set, Redis when a host is set, the configured
// market provider when the Market section loads.
func Build(c config.Config) (*ServiceContext, error) {
	svc := &ServiceContext{Config: c, StartedAt: time.Now()}

	if dsn := strings.TrimSpace(c.Postgres.DSN); dsn != "" {
		conn := sqlx.NewSqlConn("pgx", dsn)
		if db, err := conn.RawDB(); err == nil {
			db.SetMaxOpenConns(c.Postgres.MaxOpen)
			db.SetMaxIdleConns(c.Postgres.MaxIdle)
		}
		repos, err := repo.New(repo.Dependencies{DBConn: conn})
		if err != nil {
			return nil, err
		}
		svc.DBConn, svc.Repos = conn, repos
	} else {
		svc.Repos, svc.Memory = repo.NewMemorySet()
	}

	ttl := cache.NewTTLSet(c.TTL)
	if strings.TrimSpace(c.Redis.Host) != "" {
		svc.Cache = cache.NewRedisStore(redis.MustNewRedis(c.Redis))
	} else {
		store, err := cache.NewMemoryStore(ttl.Quote)
		if err != nil {
			return nil, err
		}
		svc.Cache = store
	}

	var genOpts []synthetic.Option
	if c.Simulation.Seed != 0 {
		genOpts = append(genOpts, synthetic.WithSeed(c.Simulation.Seed))
	}
	svc.Synthetic = synthetic.NewGenerator(genOpts...)
	svc.Provider = buildProvider(c)

	gateway, err := marketdata.NewGateway(marketdata.Config{
		Provider:       svc.Provider,
		Cache:          svc.Cache,
		Limiter:        marketdata.NewLimiter(c.MarketData.RateInterval),
		Synthetic:      svc.Synthetic,
		Securities:     svc.Repos.Securities,
		TTL:            ttl,
		Location:       c.Location(),
		QuoteTimeout:   c.MarketData.QuoteTimeout,
		HistoryTimeout: c.MarketData.HistoryTimeout,
	})
	if err != nil {
		return nil, err
	}
	svc.Gateway = gateway
	svc.Portfolio = portfolio.NewEngine(svc.Repos.Portfolios, portfolio.WithLocation(c.Location()))

	svc.Hub = marketdata.NewHub(0)
	broadcaster, err := marketdata.NewBroadcaster(marketdata.BroadcasterConfig{
		Symbols:   c.Simulation.Symbols,
		Schedule:  c.Simulation.Schedule,
		TTL:       ttl.Simulated,
		Cache:     svc.Cache,
		Hub:       svc.Hub,
		Synthetic: svc.Synthetic,
	})
	if err != nil {
		return nil, err
	}
	svc.Broadcaster = broadcaster
	return svc, nil
}

// buildProvider returns the configured upstream, or nil so the gateway
// answers from synthetic data alone.
func buildProvider(c config.Config) marketpkg.Provider {
	if !c.Market.Loaded() {
		logx.Info("market config not set, serving synthetic market data")
		return nil
	}
	provider, err := c.Market.Value.BuildDefault()
	if err != nil {
		logx.Errorf("market provider unavailable, serving synthetic market data: %v", err)
		return nil
	}
	return provider
}

// StartSimulation starts the broadcaster when the config enables it.
func (s *ServiceContext) StartSimulation(ctx context.Context) error {
	if !s.Config.Simulation.Enabled {
		return nil
	}
	return s.Broadcaster.Start(ctx)
}

// Close stops background work and releases the hub.
func (s *ServiceContext) Close() {
	s.Broadcaster.Stop()
	s.Hub.Close()
}
