// Package marketdata serves quotes, history and symbol search from a
// rate-limited upstream provider behind a look-aside cache, falling back to
// synthetic data whenever the upstream cannot answer.
package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"brokerage-api/internal/cache"
	"brokerage-api/internal/repo"
	"brokerage-api/pkg/market"
	"brokerage-api/pkg/market/synthetic"
)

const (
	defaultQuoteTimeout   = 10 * time.Second
	defaultHistoryTimeout = 15 * time.Second
	defaultRateInterval   = 12 * time.Second

	maxSymbolLength = 10
)

var (
	// ErrInvalidSymbol rejects symbols that are empty, too long or contain
	// characters outside [A-Z0-9.^-].
	ErrInvalidSymbol = errors.New("marketdata: invalid symbol")

	errNoProvider      = errors.New("marketdata: no upstream provider configured")
	errNoSecurityStore = errors.New("marketdata: no security store configured")
)

// NormalizeSymbol trims and upper-cases raw and checks its shape.
func NormalizeSymbol(raw string) (string, error) {
	sym := strings.ToUpper(strings.TrimSpace(raw))
	if sym == "" || len(sym) > maxSymbolLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
	}
	for _, r := range sym {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '^', r == '-':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidSymbol, raw)
		}
	}
	return sym, nil
}

// displaySymbol reduces a rejected symbol to its valid characters, upper
// cased and cut to the maximum length, for labelling synthetic answers.
func displaySymbol(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if b.Len() == maxSymbolLength {
			break
		}
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '^', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateSymbol reports whether raw is an acceptable symbol.
func ValidateSymbol(raw string) error {
	_, err := NormalizeSymbol(raw)
	return err
}

// Config wires a Gateway. Provider and Securities may be nil: without a
// provider every answer is synthetic, without Securities the store
// operations fail.
type Config struct {
	Provider   market.Provider
	Cache      cache.Store
	Limiter    *Limiter
	Synthetic  *synthetic.Generator
	Securities repo.SecurityRepo
	TTL        cache.TTLSet
	Location   *time.Location

	QuoteTimeout   time.Duration
	HistoryTimeout time.Duration
}

// Gateway is safe for concurrent use; all callers share its limiter and cache.
type Gateway struct {
	provider   market.Provider
	simulated  bool
	cache      cache.Store
	limiter    *Limiter
	gen        *synthetic.Generator
	securities repo.SecurityRepo
	ttl        cache.TTLSet
	loc        *time.Location

	quoteTimeout   time.Duration
	historyTimeout time.Duration
}

// NewGateway fills unset fields with defaults. A nil Cache gets an
// in-process store.
func NewGateway(cfg Config) (*Gateway, error) {
	g := &Gateway{
		provider:       cfg.Provider,
		simulated:      cfg.Provider != nil && market.IsSimulated(cfg.Provider),
		cache:          cfg.Cache,
		limiter:        cfg.Limiter,
		gen:            cfg.Synthetic,
		securities:     cfg.Securities,
		ttl:            cfg.TTL,
		loc:            cfg.Location,
		quoteTimeout:   cfg.QuoteTimeout,
		historyTimeout: cfg.HistoryTimeout,
	}
	if g.cache == nil {
		store, err := cache.NewMemoryStore(0)
		if err != nil {
			return nil, err
		}
		g.cache = store
	}
	if g.limiter == nil {
		g.limiter = NewLimiter(defaultRateInterval)
	}
	if g.gen == nil {
		g.gen = synthetic.NewGenerator()
	}
	if g.ttl == (cache.TTLSet{}) {
		g.ttl = cache.DefaultTTLSet()
	}
	if g.loc == nil {
		g.loc = DefaultLocation()
	}
	if g.quoteTimeout <= 0 {
		g.quoteTimeout = defaultQuoteTimeout
	}
	if g.historyTimeout <= 0 {
		g.historyTimeout = defaultHistoryTimeout
	}
	return g, nil
}

// CurrentPrice never fails: cache hit, then upstream, then synthetic.
func (g *Gateway) CurrentPrice(ctx context.Context, symbol string) market.Quote {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		g.logFallback(ctx, "quote", symbol, err)
		return g.gen.Quote(displaySymbol(symbol))
	}

	key := cache.PriceKey(sym)
	var cached market.Quote
	if cache.GetJSON(ctx, g.cache, key, &cached) {
		return cached
	}

	q, err := g.fetchQuote(ctx, sym)
	if err != nil {
		g.logFallback(ctx, "quote", sym, err)
		return g.gen.Quote(sym)
	}
	if q.Source == market.SourceProvider {
		cache.SetJSON(ctx, g.cache, key, q, g.ttl.Quote)
	}
	return *q
}

// wait holds the caller back for the shared limiter. Simulated providers are
// not throttled.
func (g *Gateway) wait(ctx context.Context) error {
	if g.simulated {
		return nil
	}
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return nil
}

func (g *Gateway) fetchQuote(ctx context.Context, sym string) (*market.Quote, error) {
	if g.provider == nil {
		return nil, errNoProvider
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, g.quoteTimeout)
	defer cancel()

	q, err := g.provider.Quote(callCtx, sym)
	if err != nil {
		return nil, err
	}
	if q == nil || q.Price <= 0 {
		return nil, market.ErrEmptyResponse
	}
	if q.Symbol == "" {
		q.Symbol = sym
	}
	if q.Timestamp.IsZero() {
		q.Timestamp = time.Now()
	}
	if q.Source == "" {
		q.Source = market.SourceProvider
	}
	return q, nil
}

// HistoricalData never fails. Unknown timeframes resolve to daily. The
// synthetic fallback holds 30 daily or 100 other candles, oldest first.
func (g *Gateway) HistoricalData(ctx context.Context, symbol string, timeframe market.Timeframe, size market.OutputSize) []market.Candle {
	timeframe, _ = market.ParseTimeframe(string(timeframe))
	size = market.ParseOutputSize(string(size))

	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		g.logFallback(ctx, "history", symbol, err)
		return g.gen.History(displaySymbol(symbol), timeframe)
	}

	key := cache.HistoryKey(sym, timeframe, size)
	var cached []market.Candle
	if cache.GetJSON(ctx, g.cache, key, &cached) && len(cached) > 0 {
		return cached
	}

	candles, err := g.fetchSeries(ctx, sym, timeframe, size)
	if err != nil {
		g.logFallback(ctx, "history", sym, err)
		return g.gen.History(sym, timeframe)
	}
	if !g.simulated {
		cache.SetJSON(ctx, g.cache, key, candles, g.ttl.History)
	}
	return candles
}

func (g *Gateway) fetchSeries(ctx context.Context, sym string, timeframe market.Timeframe, size market.OutputSize) ([]market.Candle, error) {
	if g.provider == nil {
		return nil, errNoProvider
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, g.historyTimeout)
	defer cancel()

	candles, err := g.provider.Series(callCtx, sym, timeframe, size)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, market.ErrEmptyResponse
	}
	return candles, nil
}

// SearchSecurities never fails. Upstream matches are deduplicated by symbol
// and capped; otherwise the built-in catalog is filtered.
func (g *Gateway) SearchSecurities(ctx context.Context, query string) []market.SecurityMatch {
	query = strings.TrimSpace(query)
	if query == "" {
		return []market.SecurityMatch{}
	}

	key := cache.SearchKey(query)
	var cached []market.SecurityMatch
	if cache.GetJSON(ctx, g.cache, key, &cached) {
		return cached
	}

	matches, err := g.fetchSearch(ctx, query)
	if err != nil {
		g.logFallback(ctx, "search", query, err)
		return synthetic.Search(query)
	}
	if !g.simulated {
		cache.SetJSON(ctx, g.cache, key, matches, g.ttl.Search)
	}
	return matches
}

func (g *Gateway) fetchSearch(ctx context.Context, query string) ([]market.SecurityMatch, error) {
	if g.provider == nil {
		return nil, errNoProvider
	}
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, g.quoteTimeout)
	defer cancel()

	raw, err := g.provider.Search(callCtx, query)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(raw))
	matches := make([]market.SecurityMatch, 0, len(raw))
	for _, m := range raw {
		m.Symbol = strings.TrimSpace(m.Symbol)
		if m.Symbol == "" {
			continue
		}
		if _, dup := seen[m.Symbol]; dup {
			continue
		}
		seen[m.Symbol] = struct{}{}
		matches = append(matches, m)
		if len(matches) == synthetic.MaxSearchResults {
			break
		}
	}
	if len(matches) == 0 {
		return nil, market.ErrEmptyResponse
	}
	return matches, nil
}

// Status evaluates the market session at now in the gateway's time zone.
func (g *Gateway) Status(now time.Time) Status {
	return MarketStatus(now, g.loc)
}

func (g *Gateway) logFallback(ctx context.Context, op, subject string, err error) {
	fields := []logx.LogField{
		logx.Field("op", op),
		logx.Field("subject", subject),
		logx.Field("reason", err.Error()),
	}
	switch {
	case errors.Is(err, errNoProvider), errors.Is(err, ErrInvalidSymbol):
		logx.WithContext(ctx).Infow("marketdata: serving synthetic data", fields...)
	case errors.Is(err, market.ErrRateLimited):
		logx.WithContext(ctx).Sloww("marketdata: upstream rate limited, serving synthetic data", fields...)
	default:
		logx.WithContext(ctx).Errorw("marketdata: upstream unavailable, serving synthetic data", fields...)
	}
}
