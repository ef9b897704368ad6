package logic

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"brokerage-api/internal/svc"
	"brokerage-api/internal/types"
)

type PortfolioLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewPortfolioLogic(ctx context.Context, svcCtx *svc.ServiceContext) *PortfolioLogic {
	return &PortfolioLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *PortfolioLogic) Summary(req *types.PortfolioRequest) (*types.SummaryResponse, error) {
	summary, err := l.svcCtx.Portfolio.Summarize(l.ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &types.SummaryResponse{Portfolio: summary, Timestamp: time.Now()}, nil
}

func (l *PortfolioLogic) Positions(req *types.PortfolioRequest) (*types.PositionsResponse, error) {
	positions, err := l.svcCtx.Portfolio.Positions(l.ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &types.PositionsResponse{Positions: positions, Count: len(positions), Timestamp: time.Now()}, nil
}

func (l *PortfolioLogic) Transactions(req *types.TransactionsRequest) (*types.TransactionsResponse, error) {
	if req.Limit < 0 || req.Offset < 0 {
		return nil, invalid("limit and offset must not be negative")
	}
	txs, err := l.svcCtx.Portfolio.Transactions(l.ctx, req.ID, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	return &types.TransactionsResponse{
		Transactions: txs,
		Count:        len(txs),
		Limit:        req.Limit,
		Offset:       req.Offset,
		Timestamp:    time.Now(),
	}, nil
}

func (l *PortfolioLogic) Performance(req *types.PerformanceRequest) (*types.PerformanceResponse, error) {
	if req.Days < 0 {
		return nil, invalid("days must not be negative")
	}
	flows, err := l.svcCtx.Portfolio.PerformanceHistory(l.ctx, req.ID, req.Days)
	if err != nil {
		return nil, err
	}
	return &types.PerformanceResponse{Performance: flows, Days: req.Days, Timestamp: time.Now()}, nil
}

func (l *PortfolioLogic) SectorAllocation(req *types.PortfolioRequest) (*types.AllocationResponse, error) {
	alloc, err := l.svcCtx.Portfolio.SectorAllocation(l.ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &types.AllocationResponse{Allocation: alloc, Type: "sectors", Timestamp: time.Now()}, nil
}

func (l *PortfolioLogic) TypeAllocation(req *types.PortfolioRequest) (*types.AllocationResponse, error) {
	alloc, err := l.svcCtx.Portfolio.TypeAllocation(l.ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &types.AllocationResponse{Allocation: alloc, Type: "security_types", Timestamp: time.Now()}, nil
}
