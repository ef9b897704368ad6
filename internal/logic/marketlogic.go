package logic

import (
	"context"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"brokerage-api/internal/marketdata"
	"brokerage-api/internal/svc"
	"brokerage-api/internal/types"
	"brokerage-api/pkg/market"
)

type MarketLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewMarketLogic(ctx context.Context, svcCtx *svc.ServiceContext) *MarketLogic {
	return &MarketLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *MarketLogic) Price(req *types.PriceRequest) (*types.PriceResponse, error) {
	if err := marketdata.ValidateSymbol(req.Symbol); err != nil {
		return nil, err
	}
	return &types.PriceResponse{
		Data:      l.svcCtx.Gateway.CurrentPrice(l.ctx, req.Symbol),
		Timestamp: time.Now(),
	}, nil
}

func (l *MarketLogic) Prices(req *types.PricesRequest) (*types.PricesResponse, error) {
	var symbols []string
	for _, s := range strings.Split(req.Symbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	quotes, err := l.svcCtx.Gateway.Prices(l.ctx, symbols)
	if err != nil {
		return nil, err
	}
	return &types.PricesResponse{Data: quotes, Count: len(quotes), Timestamp: time.Now()}, nil
}

func (l *MarketLogic) History(req *types.HistoryRequest) (*types.HistoryResponse, error) {
	sym, err := marketdata.NormalizeSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	timeframe, ok := market.ParseTimeframe(req.Timeframe)
	if !ok {
		return nil, invalid("unknown timeframe %q", req.Timeframe)
	}
	size := market.ParseOutputSize(req.OutputSize)

	candles := l.svcCtx.Gateway.HistoricalData(l.ctx, sym, timeframe, size)
	return &types.HistoryResponse{
		Symbol:    sym,
		Timeframe: string(timeframe),
		Data:      candles,
		Count:     len(candles),
		Timestamp: time.Now(),
	}, nil
}

func (l *MarketLogic) Search(req *types.SearchRequest) (*types.SearchResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, invalid("query is required")
	}
	results := l.svcCtx.Gateway.SearchSecurities(l.ctx, query)
	return &types.SearchResponse{Query: query, Results: results, Count: len(results), Timestamp: time.Now()}, nil
}

func (l *MarketLogic) Status() (*types.StatusResponse, error) {
	now := time.Now()
	return &types.StatusResponse{Market: l.svcCtx.Gateway.Status(now), Timestamp: now}, nil
}

func (l *MarketLogic) Movers() (*types.MoversResponse, error) {
	movers, err := l.svcCtx.Gateway.Movers(l.ctx)
	if err != nil {
		return nil, err
	}
	return &types.MoversResponse{Data: movers, Timestamp: time.Now()}, nil
}

func (l *MarketLogic) Trending() (*types.TrendingResponse, error) {
	quotes, err := l.svcCtx.Gateway.Trending(l.ctx)
	if err != nil {
		return nil, err
	}
	return &types.TrendingResponse{Trending: quotes, Timestamp: time.Now()}, nil
}

func (l *MarketLogic) Indices() (*types.IndicesResponse, error) {
	quotes, err := l.svcCtx.Gateway.Indices(l.ctx)
	if err != nil {
		return nil, err
	}
	return &types.IndicesResponse{Indices: quotes, Timestamp: time.Now()}, nil
}

// StoreSecurity stores the described security. Without a name the security
// is described by the search hit with the same symbol.
func (l *MarketLogic) StoreSecurity(req *types.StoreSecurityRequest) (*types.StoreSecurityResponse, error) {
	sym, err := marketdata.NormalizeSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	in := marketdata.SecurityInput{
		Symbol:   sym,
		Name:     strings.TrimSpace(req.Name),
		Type:     req.SecurityType,
		Region:   req.Exchange,
		Sector:   req.Sector,
		Industry: req.Industry,
	}
	if in.Name == "" {
		match, ok := l.findMatch(sym)
		if !ok {
			return nil, invalid("name is required for %s", sym)
		}
		in = marketdata.SecurityInputFromMatch(match)
		if req.Exchange != "" {
			in.Region = req.Exchange
		}
		in.Sector, in.Industry = req.Sector, req.Industry
	}

	sec, err := l.svcCtx.Gateway.StoreSecurity(l.ctx, in)
	if err != nil {
		return nil, err
	}
	l.Infow("security stored", logx.Field("symbol", sec.Symbol), logx.Field("id", sec.ID))
	return &types.StoreSecurityResponse{Message: "Security added successfully", Data: sec}, nil
}

func (l *MarketLogic) findMatch(sym string) (market.SecurityMatch, bool) {
	for _, m := range l.svcCtx.Gateway.SearchSecurities(l.ctx, sym) {
		if strings.EqualFold(m.Symbol, sym) {
			return m, true
		}
	}
	return market.SecurityMatch{}, false
}
