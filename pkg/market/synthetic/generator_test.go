package synthetic

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage-api/pkg/market"
)

var fixedNow = time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func TestQuoteBounds(t *testing.T) {
	gen := NewGenerator(WithSeed(7), WithClock(fixedClock))
	for _, symbol := range []string{"AAPL", "googl", " tsla ", "UNKNOWN"} {
		base := BasePrice(symbol)
		for i := 0; i < 200; i++ {
			q := gen.Quote(symbol)
			assert.GreaterOrEqual(t, q.Price, base*0.95-0.01, symbol)
			assert.LessOrEqual(t, q.Price, base*1.05+0.01, symbol)
			assert.Equal(t, base, q.PreviousClose)
			assert.GreaterOrEqual(t, q.Volume, int64(minVolume))
			assert.Less(t, q.Volume, int64(minVolume+volumeRange))
			assert.InDelta(t, q.Price-base, q.Change, 0.011)
			assert.Equal(t, market.SourceSynthetic, q.Source)
			assert.Equal(t, fixedNow, q.Timestamp)
		}
	}
}

func TestQuoteNormalisesSymbol(t *testing.T) {
	q := NewGenerator(WithSeed(1)).Quote("  msft ")
	assert.Equal(t, "MSFT", q.Symbol)
	assert.Equal(t, 340.0, q.PreviousClose)
}

func TestBasePriceDefault(t *testing.T) {
	assert.Equal(t, 175.0, BasePrice("AAPL"))
	assert.Equal(t, 420.0, BasePrice("spy"))
	assert.Equal(t, DefaultBasePrice, BasePrice("ZZZZ"))
}

func TestSeededGeneratorsAreReproducible(t *testing.T) {
	a := NewGenerator(WithSeed(42), WithClock(fixedClock))
	b := NewGenerator(WithSeed(42), WithClock(fixedClock))
	assert.Equal(t, a.Quote("AAPL"), b.Quote("AAPL"))
	assert.Equal(t, a.History("NVDA", market.TimeframeDaily), b.History("NVDA", market.TimeframeDaily))
}

func TestHistoryCandleInvariant(t *testing.T) {
	gen := NewGenerator(WithSeed(99), WithClock(fixedClock))
	for _, tf := range []market.Timeframe{market.TimeframeDaily, market.TimeframeWeekly, market.Timeframe5Min} {
		candles := gen.History("AMZN", tf)
		require.Len(t, candles, SeriesLength(tf))
		for i, c := range candles {
			assert.LessOrEqual(t, c.Low, c.Open, "candle %d", i)
			assert.LessOrEqual(t, c.Low, c.Close, "candle %d", i)
			assert.GreaterOrEqual(t, c.High, c.Open, "candle %d", i)
			assert.GreaterOrEqual(t, c.High, c.Close, "candle %d", i)
			assert.Greater(t, c.Low, 0.0)
			if i > 0 {
				assert.True(t, candles[i-1].Timestamp.Before(c.Timestamp), "ascending at %d", i)
			}
		}
		assert.Equal(t, fixedNow, candles[len(candles)-1].Timestamp)
	}
}

func TestSeriesLength(t *testing.T) {
	assert.Equal(t, 30, SeriesLength(market.TimeframeDaily))
	assert.Equal(t, 100, SeriesLength(market.TimeframeWeekly))
	assert.Equal(t, 100, SeriesLength(market.Timeframe1Min))
}

func TestGeneratorConcurrentUse(t *testing.T) {
	gen := NewGenerator()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = gen.Quote("AAPL")
				_ = gen.History("AAPL", market.TimeframeDaily)
			}
		}()
	}
	wg.Wait()
}

func TestSearchCatalog(t *testing.T) {
	matches := Search("apple")
	require.Len(t, matches, 1)
	assert.Equal(t, "AAPL", matches[0].Symbol)

	assert.Empty(t, Search("zzz"))
	assert.Empty(t, Search("   "))

	// "in" appears in several names ("Inc.", "Platforms", "Netflix").
	matches = Search("IN")
	assert.NotEmpty(t, matches)
	assert.LessOrEqual(t, len(matches), MaxSearchResults)

	msft := Search("msft")
	require.Len(t, msft, 1)
	assert.Equal(t, "Microsoft Corporation", msft[0].Name)
	assert.Equal(t, "USD", msft[0].Currency)
}

func TestProviderHonoursCancelledContext(t *testing.T) {
	p := NewProvider(NewGenerator(WithSeed(3)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Quote(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)

	q, err := p.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
}

func TestRegisteredAsProviderType(t *testing.T) {
	cfg := &market.Config{Providers: map[string]*market.ProviderConfig{
		"demo": {Type: "synthetic", Seed: 11},
	}}
	provider, err := cfg.BuildDefault()
	require.NoError(t, err)
	candles, err := provider.Series(context.Background(), "AAPL", market.TimeframeDaily, market.OutputCompact)
	require.NoError(t, err)
	assert.Len(t, candles, 30)
	assert.True(t, market.IsSimulated(provider))

	q, err := provider.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, market.SourceSynthetic, q.Source)
}
