package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"brokerage-api/pkg/market"
)

// Memory implements SecurityRepo and PortfolioRepo in process. It backs
// deployments without Postgres and the tests.
type Memory struct {
	mu sync.RWMutex

	securities   map[string]Security // by symbol
	candles      map[candleKey]market.Candle
	portfolios   map[string]Portfolio
	positions    map[string][]Position
	transactions map[string][]Transaction

	now func() time.Time
}

type candleKey struct {
	securityID string
	timestamp  int64
	timeframe  market.Timeframe
}

var (
	_ SecurityRepo  = (*Memory)(nil)
	_ PortfolioRepo = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		securities:   make(map[string]Security),
		candles:      make(map[candleKey]market.Candle),
		portfolios:   make(map[string]Portfolio),
		positions:    make(map[string][]Position),
		transactions: make(map[string][]Transaction),
		now:          time.Now,
	}
}

func newID() string {
	return uuid.NewString()
}

func (m *Memory) FindBySymbol(ctx context.Context, symbol string) (*Security, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sec, ok := m.securities[strings.ToUpper(symbol)]
	if !ok {
		return nil, fmt.Errorf("memory.FindBySymbol %s: %w", symbol, ErrNotFound)
	}
	return &sec, nil
}

func (m *Memory) Insert(ctx context.Context, sec Security) (*Security, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sec.Symbol = strings.ToUpper(sec.Symbol)
	if existing, ok := m.securities[sec.Symbol]; ok {
		return &existing, nil
	}
	if sec.ID == "" {
		sec.ID = newID()
	}
	if sec.CreatedAt.IsZero() {
		sec.CreatedAt = m.now()
	}
	m.securities[sec.Symbol] = sec
	return &sec, nil
}

func (m *Memory) UpsertCandles(ctx context.Context, securityID string, timeframe market.Timeframe, candles []market.Candle) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range candles {
		m.candles[candleKey{securityID: securityID, timestamp: c.Timestamp.UnixNano(), timeframe: timeframe}] = c
	}
	return len(candles), nil
}

// Candles returns the stored candles for a security and timeframe, oldest first.
func (m *Memory) Candles(securityID string, timeframe market.Timeframe) []market.Candle {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []market.Candle
	for key, c := range m.candles {
		if key.securityID == securityID && key.timeframe == timeframe {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// PutPortfolio stores p, assigning an ID when empty, and returns the ID.
func (m *Memory) PutPortfolio(p Portfolio) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	now := m.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	m.portfolios[p.ID] = p
	return p.ID
}

// PutPosition appends a position to its portfolio.
func (m *Memory) PutPosition(p Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = newID()
	}
	m.positions[p.PortfolioID] = append(m.positions[p.PortfolioID], p)
}

// AppendTransaction adds a ledger row; ExecutedAt defaults to now.
func (m *Memory) AppendTransaction(tx Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.ID == "" {
		tx.ID = newID()
	}
	if tx.ExecutedAt.IsZero() {
		tx.ExecutedAt = m.now()
	}
	m.transactions[tx.PortfolioID] = append(m.transactions[tx.PortfolioID], tx)
}

func (m *Memory) FindByID(ctx context.Context, id string) (*Portfolio, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.portfolios[id]
	if !ok {
		return nil, fmt.Errorf("memory.FindByID %s: %w", id, ErrNotFound)
	}
	return &p, nil
}

func (m *Memory) Positions(ctx context.Context, portfolioID string) ([]Position, error) {
	m.mu.RLock()
	out := append([]Position(nil), m.positions[portfolioID]...)
	m.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MarketValue != out[j].MarketValue {
			return out[i].MarketValue > out[j].MarketValue
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, nil
}

func (m *Memory) Transactions(ctx context.Context, portfolioID string, q TxQuery) ([]Transaction, error) {
	m.mu.RLock()
	var out []Transaction
	for _, tx := range m.transactions[portfolioID] {
		if q.matches(tx) {
			out = append(out, tx)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExecutedAt.After(out[j].ExecutedAt)
	})
	if q.Offset > 0 {
		if q.Offset >= len(out) {
			return []Transaction{}, nil
		}
		out = out[q.Offset:]
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	if out == nil {
		out = []Transaction{}
	}
	return out, nil
}
