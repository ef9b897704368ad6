package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"brokerage-api/internal/logic"
	"brokerage-api/internal/svc"
	"brokerage-api/internal/types"
)

func PortfolioSummaryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PortfolioRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewPortfolioLogic(r.Context(), svcCtx).Summary(&req)
		respond(w, r, resp, err)
	}
}

func PositionsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PortfolioRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewPortfolioLogic(r.Context(), svcCtx).Positions(&req)
		respond(w, r, resp, err)
	}
}

func TransactionsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TransactionsRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewPortfolioLogic(r.Context(), svcCtx).Transactions(&req)
		respond(w, r, resp, err)
	}
}

func PerformanceHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PerformanceRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewPortfolioLogic(r.Context(), svcCtx).Performance(&req)
		respond(w, r, resp, err)
	}
}

func SectorAllocationHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PortfolioRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewPortfolioLogic(r.Context(), svcCtx).SectorAllocation(&req)
		respond(w, r, resp, err)
	}
}

func TypeAllocationHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PortfolioRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewPortfolioLogic(r.Context(), svcCtx).TypeAllocation(&req)
		respond(w, r, resp, err)
	}
}
