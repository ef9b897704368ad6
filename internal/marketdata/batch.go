package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/zeromicro/go-zero/core/threading"

	"brokerage-api/pkg/market"
)

// MaxBatchSymbols caps a Prices request.
const MaxBatchSymbols = 20

const moversTop = 5

// ErrTooManySymbols rejects batch requests above MaxBatchSymbols.
var ErrTooManySymbols = errors.New("marketdata: too many symbols")

var (
	DefaultBatchSymbols = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA"}
	MoverSymbols        = []string{"AAPL", "GOOGL", "MSFT", "AMZN", "TSLA", "NVDA", "META", "NFLX"}
	TrendingSymbols     = []string{"AAPL", "TSLA", "NVDA", "GOOGL", "MSFT"}
	IndexSymbols        = []string{"SPY", "QQQ", "DIA", "IWM", "VTI"}
)

// Prices returns a current quote per symbol, in request order. An empty list
// means DefaultBatchSymbols.
func (g *Gateway) Prices(ctx context.Context, symbols []string) ([]market.Quote, error) {
	if len(symbols) == 0 {
		symbols = DefaultBatchSymbols
	}
	if len(symbols) > MaxBatchSymbols {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySymbols, len(symbols), MaxBatchSymbols)
	}
	normalized := make([]string, len(symbols))
	for i, raw := range symbols {
		sym, err := NormalizeSymbol(raw)
		if err != nil {
			return nil, err
		}
		normalized[i] = sym
	}

	quotes := make([]market.Quote, len(normalized))
	group := threading.NewRoutineGroup()
	for i, sym := range normalized {
		i, sym := i, sym
		group.RunSafe(func() {
			quotes[i] = g.CurrentPrice(ctx, sym)
		})
	}
	group.Wait()
	return quotes, nil
}

// Movers groups the mover universe into top gainers, losers and most active.
type Movers struct {
	Gainers    []market.Quote `json:"gainers"`
	Losers     []market.Quote `json:"losers"`
	MostActive []market.Quote `json:"mostActive"`
}

func (g *Gateway) Movers(ctx context.Context) (*Movers, error) {
	quotes, err := g.Prices(ctx, MoverSymbols)
	if err != nil {
		return nil, err
	}
	return rankMovers(quotes), nil
}

func rankMovers(quotes []market.Quote) *Movers {
	m := &Movers{
		Gainers:    []market.Quote{},
		Losers:     []market.Quote{},
		MostActive: append([]market.Quote(nil), quotes...),
	}
	for _, q := range quotes {
		switch {
		case q.ChangePercent > 0:
			m.Gainers = append(m.Gainers, q)
		case q.ChangePercent < 0:
			m.Losers = append(m.Losers, q)
		}
	}
	sort.SliceStable(m.Gainers, func(i, j int) bool { return m.Gainers[i].ChangePercent > m.Gainers[j].ChangePercent })
	sort.SliceStable(m.Losers, func(i, j int) bool { return m.Losers[i].ChangePercent < m.Losers[j].ChangePercent })
	sort.SliceStable(m.MostActive, func(i, j int) bool { return m.MostActive[i].Volume > m.MostActive[j].Volume })

	m.Gainers = top(m.Gainers, moversTop)
	m.Losers = top(m.Losers, moversTop)
	m.MostActive = top(m.MostActive, moversTop)
	return m
}

func top(quotes []market.Quote, n int) []market.Quote {
	if len(quotes) > n {
		return quotes[:n]
	}
	return quotes
}

func (g *Gateway) Trending(ctx context.Context) ([]market.Quote, error) {
	return g.Prices(ctx, TrendingSymbols)
}

func (g *Gateway) Indices(ctx context.Context) ([]market.Quote, error) {
	return g.Prices(ctx, IndexSymbols)
}
