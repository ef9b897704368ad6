package marketdata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"brokerage-api/internal/repo"
	"brokerage-api/pkg/market"
)

const defaultExchange = "NASDAQ"

// SecurityInput is what StoreSecurity needs to describe a security, usually
// taken from a search match.
type SecurityInput struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type,optional"`
	Region   string `json:"region,optional"`
	Sector   string `json:"sector,optional"`
	Industry string `json:"industry,optional"`
}

// SecurityInputFromMatch converts a search hit.
func SecurityInputFromMatch(m market.SecurityMatch) SecurityInput {
	return SecurityInput{Symbol: m.Symbol, Name: m.Name, Type: m.Type, Region: m.Region}
}

// StoreSecurity inserts the security unless its symbol is already stored, in
// which case the stored row is returned unchanged.
func (g *Gateway) StoreSecurity(ctx context.Context, in SecurityInput) (*repo.Security, error) {
	if g.securities == nil {
		return nil, errNoSecurityStore
	}
	sym, err := NormalizeSymbol(in.Symbol)
	if err != nil {
		return nil, err
	}

	existing, err := g.securities.FindBySymbol(ctx, sym)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("marketdata.StoreSecurity: %w", err)
	}

	exchange := strings.TrimSpace(in.Region)
	if exchange == "" {
		exchange = defaultExchange
	}
	secType := "other"
	if in.Type == "Equity" {
		secType = "stock"
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = sym
	}

	sec, err := g.securities.Insert(ctx, repo.Security{
		Symbol:       sym,
		Name:         name,
		Exchange:     exchange,
		Sector:       in.Sector,
		Industry:     in.Industry,
		SecurityType: secType,
	})
	if err != nil {
		return nil, fmt.Errorf("marketdata.StoreSecurity: %w", err)
	}
	return sec, nil
}

// StoreHistory upserts candles for an already stored security. It returns
// repo.ErrNotFound (wrapped) when the symbol is unknown.
func (g *Gateway) StoreHistory(ctx context.Context, symbol string, timeframe market.Timeframe, candles []market.Candle) (int, error) {
	if g.securities == nil {
		return 0, errNoSecurityStore
	}
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return 0, err
	}
	timeframe, _ = market.ParseTimeframe(string(timeframe))

	sec, err := g.securities.FindBySymbol(ctx, sym)
	if err != nil {
		return 0, fmt.Errorf("marketdata.StoreHistory: %w", err)
	}
	n, err := g.securities.UpsertCandles(ctx, sec.ID, timeframe, candles)
	if err != nil {
		return 0, fmt.Errorf("marketdata.StoreHistory: %w", err)
	}
	return n, nil
}
