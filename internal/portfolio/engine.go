// Package portfolio derives valuation, P&L and allocation views from the
// rows kept by the portfolio repository. It never writes.
package portfolio

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"brokerage-api/internal/repo"
)

const (
	DefaultTransactionLimit = 50
	DefaultPerformanceDays  = 30

	unknownLabel = "Unknown"
	dateLayout   = "2006-01-02"
)

var hundred = decimal.NewFromInt(100)

// Summary is a portfolio with its derived valuation. Each aggregate is
// computed from its own source rows; TotalPnL is not reconciled against
// UnrealizedPnL + RealizedPnL.
type Summary struct {
	repo.Portfolio
	PositionsValue  float64 `json:"positionsValue"`
	PositionsCount  int     `json:"positionsCount"`
	TotalValue      float64 `json:"totalValue"`
	TotalPnL        float64 `json:"totalPnl"`
	TotalPnLPercent float64 `json:"totalPnlPercent"`
	UnrealizedPnL   float64 `json:"unrealizedPnl"`
	RealizedPnL     float64 `json:"realizedPnl"`
}

// Allocation is one bucket of an allocation breakdown.
type Allocation struct {
	Label          string  `json:"label"`
	TotalValue     float64 `json:"totalValue"`
	PositionsCount int     `json:"positionsCount"`
}

// DailyFlow is the net cash flow of one calendar day.
type DailyFlow struct {
	Date    string  `json:"date"`
	NetFlow float64 `json:"netFlow"`
}

type Option func(*Engine)

// WithClock overrides the time source used for performance windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the zone that defines calendar days.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

type Engine struct {
	repo repo.PortfolioRepo
	now  func() time.Time
	loc  *time.Location
}

func NewEngine(r repo.PortfolioRepo, opts ...Option) *Engine {
	e := &Engine{repo: r, now: time.Now, loc: time.UTC}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summarize values the portfolio. A missing portfolio yields a wrapped
// repo.ErrNotFound.
func (e *Engine) Summarize(ctx context.Context, id string) (*Summary, error) {
	p, err := e.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("portfolio.Summarize: %w", err)
	}
	positions, err := e.repo.Positions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("portfolio.Summarize: %w", err)
	}
	txs, err := e.repo.Transactions(ctx, id, repo.TxQuery{Types: []repo.TransactionType{repo.TxBuy, repo.TxSell}})
	if err != nil {
		return nil, fmt.Errorf("portfolio.Summarize: %w", err)
	}

	positionsValue := decimal.Zero
	unrealized := decimal.Zero
	for _, pos := range positions {
		positionsValue = positionsValue.Add(decimal.NewFromFloat(pos.MarketValue))
		unrealized = unrealized.Add(decimal.NewFromFloat(pos.UnrealizedPnL))
	}

	initial := decimal.NewFromFloat(p.InitialBalance)
	totalValue := decimal.NewFromFloat(p.CurrentBalance).Add(positionsValue)
	totalPnL := totalValue.Sub(initial)
	totalPnLPercent := decimal.Zero
	if initial.IsPositive() {
		totalPnLPercent = totalPnL.Div(initial).Mul(hundred)
	}

	return &Summary{
		Portfolio:       *p,
		PositionsValue:  money(positionsValue),
		PositionsCount:  len(positions),
		TotalValue:      money(totalValue),
		TotalPnL:        money(totalPnL),
		TotalPnLPercent: money(totalPnLPercent),
		UnrealizedPnL:   money(unrealized),
		RealizedPnL:     money(RealizedPnL(txs)),
	}, nil
}

// RealizedPnL nets trade cash: a sell adds amount less fee, a buy subtracts
// amount plus fee. Other transaction types do not count.
func RealizedPnL(txs []repo.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		fee := decimal.NewFromFloat(tx.Fee)
		switch tx.Type {
		case repo.TxSell:
			total = total.Add(amount.Sub(fee))
		case repo.TxBuy:
			total = total.Sub(amount.Add(fee))
		}
	}
	return total
}

// Positions lists every position row, largest market value first.
func (e *Engine) Positions(ctx context.Context, id string) ([]repo.Position, error) {
	if _, err := e.repo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("portfolio.Positions: %w", err)
	}
	positions, err := e.repo.Positions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("portfolio.Positions: %w", err)
	}
	if positions == nil {
		positions = []repo.Position{}
	}
	return positions, nil
}

// Transactions pages through the ledger, newest first. A non-positive limit
// means DefaultTransactionLimit.
func (e *Engine) Transactions(ctx context.Context, id string, limit, offset int) ([]repo.Transaction, error) {
	if _, err := e.repo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("portfolio.Transactions: %w", err)
	}
	if limit <= 0 {
		limit = DefaultTransactionLimit
	}
	if offset < 0 {
		offset = 0
	}
	txs, err := e.repo.Transactions(ctx, id, repo.TxQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("portfolio.Transactions: %w", err)
	}
	if txs == nil {
		txs = []repo.Transaction{}
	}
	return txs, nil
}

// PerformanceHistory returns the net cash flow per day over the last days
// days, oldest first. Buys count negative, every other type positive.
func (e *Engine) PerformanceHistory(ctx context.Context, id string, days int) ([]DailyFlow, error) {
	if _, err := e.repo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("portfolio.PerformanceHistory: %w", err)
	}
	if days <= 0 {
		days = DefaultPerformanceDays
	}
	end := e.now()
	start := end.AddDate(0, 0, -days)

	txs, err := e.repo.Transactions(ctx, id, repo.TxQuery{Since: start})
	if err != nil {
		return nil, fmt.Errorf("portfolio.PerformanceHistory: %w", err)
	}

	flows := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.ExecutedAt.After(end) {
			continue
		}
		day := tx.ExecutedAt.In(e.loc).Format(dateLayout)
		amount := decimal.NewFromFloat(tx.Amount)
		if tx.Type == repo.TxBuy {
			amount = amount.Neg()
		}
		flows[day] = flows[day].Add(amount)
	}

	out := make([]DailyFlow, 0, len(flows))
	for day, flow := range flows {
		out = append(out, DailyFlow{Date: day, NetFlow: money(flow)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// SectorAllocation groups open positions by sector.
func (e *Engine) SectorAllocation(ctx context.Context, id string) ([]Allocation, error) {
	return e.allocate(ctx, "portfolio.SectorAllocation", id, func(p repo.Position) string { return p.Sector })
}

// TypeAllocation groups open positions by security type.
func (e *Engine) TypeAllocation(ctx context.Context, id string) ([]Allocation, error) {
	return e.allocate(ctx, "portfolio.TypeAllocation", id, func(p repo.Position) string { return p.SecurityType })
}

func (e *Engine) allocate(ctx context.Context, op, id string, label func(repo.Position) string) ([]Allocation, error) {
	if _, err := e.repo.FindByID(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	positions, err := e.repo.Positions(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return Allocate(positions, label), nil
}

type bucket struct {
	value decimal.Decimal
	count int
}

// Allocate sums market value and counts positions with a positive quantity
// per label, largest value first and ties broken by label. Blank labels are
// reported as "Unknown".
func Allocate(positions []repo.Position, label func(repo.Position) string) []Allocation {
	buckets := make(map[string]*bucket)
	for _, p := range positions {
		if p.Quantity <= 0 {
			continue
		}
		key := strings.TrimSpace(label(p))
		if key == "" {
			key = unknownLabel
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{value: decimal.Zero}
			buckets[key] = b
		}
		b.value = b.value.Add(decimal.NewFromFloat(p.MarketValue))
		b.count++
	}

	out := make([]Allocation, 0, len(buckets))
	for key, b := range buckets {
		out = append(out, Allocation{Label: key, TotalValue: money(b.value), PositionsCount: b.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalValue != out[j].TotalValue {
			return out[i].TotalValue > out[j].TotalValue
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
