// Package synthetic produces bounded-random quotes, candles and search results
// used when no upstream data is available.
package synthetic

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"brokerage-api/pkg/market"
)

// DefaultBasePrice is used for symbols missing from the base price table.
const DefaultBasePrice = 100.0

const (
	dailySeriesLength = 30
	otherSeriesLength = 100

	minVolume   = 100_000
	volumeRange = 1_000_000
)

var basePrices = map[string]float64{
	"AAPL":  175.00,
	"GOOGL": 2800.00,
	"MSFT":  340.00,
	"AMZN":  3200.00,
	"TSLA":  800.00,
	"NVDA":  450.00,
	"META":  320.00,
	"NFLX":  400.00,
	"SPY":   420.00,
	"QQQ":   350.00,
}

// BasePrice returns the reference price for symbol.
func BasePrice(symbol string) float64 {
	if p, ok := basePrices[strings.ToUpper(strings.TrimSpace(symbol))]; ok {
		return p
	}
	return DefaultBasePrice
}

// Generator creates synthetic market data. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed makes the generator's output reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithClock overrides the clock used to stamp quotes and candles.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// NewGenerator constructs a generator seeded from the wall clock unless
// WithSeed is supplied.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// uniform draws from [lo, hi). Callers must hold g.mu.
func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.rnd.Float64()*(hi-lo)
}

func (g *Generator) volume() int64 {
	return int64(math.Floor(g.uniform(minVolume, minVolume+volumeRange)))
}

// Quote returns a price within ±5% of the symbol's base price.
func (g *Generator) Quote(symbol string) market.Quote {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	base := BasePrice(symbol)

	g.mu.Lock()
	price := base * (1 + g.uniform(-0.05, 0.05))
	volume := g.volume()
	ts := g.now()
	g.mu.Unlock()

	change := price - base
	return market.Quote{
		Symbol:        symbol,
		Price:         market.Round2(price),
		Change:        market.Round2(change),
		ChangePercent: market.Round2(change / base * 100),
		Volume:        volume,
		PreviousClose: market.Round2(base),
		Timestamp:     ts,
		Source:        market.SourceSynthetic,
	}
}

// SeriesLength is the number of candles History produces for timeframe.
func SeriesLength(timeframe market.Timeframe) int {
	if timeframe == market.TimeframeDaily {
		return dailySeriesLength
	}
	return otherSeriesLength
}

// History returns one candle per day, oldest first, ending today.
func (g *Generator) History(symbol string, timeframe market.Timeframe) []market.Candle {
	base := BasePrice(symbol)
	n := SeriesLength(timeframe)
	candles := make([]market.Candle, 0, n)

	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for i := n - 1; i >= 0; i-- {
		candles = append(candles, g.candleLocked(base, now.AddDate(0, 0, -i)))
	}
	return candles
}

func (g *Generator) candleLocked(base float64, ts time.Time) market.Candle {
	open := base * g.uniform(0.95, 1.05)
	closePx := open * g.uniform(0.98, 1.02)
	high := math.Max(open, closePx) * (1 + g.uniform(0, 0.02))
	low := math.Min(open, closePx) * (1 - g.uniform(0, 0.02))
	// Rounding is monotonic, so the ordering of the raw values survives it.
	return market.Candle{
		Timestamp: ts,
		Open:      market.Round2(open),
		High:      market.Round2(high),
		Low:       market.Round2(low),
		Close:     market.Round2(closePx),
		Volume:    g.volume(),
	}
}
