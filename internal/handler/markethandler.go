package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"brokerage-api/internal/logic"
	"brokerage-api/internal/svc"
	"brokerage-api/internal/types"
)

func PriceHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PriceRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewMarketLogic(r.Context(), svcCtx).Price(&req)
		respond(w, r, resp, err)
	}
}

func PricesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.PricesRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewMarketLogic(r.Context(), svcCtx).Prices(&req)
		respond(w, r, resp, err)
	}
}

func HistoryHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.HistoryRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewMarketLogic(r.Context(), svcCtx).History(&req)
		respond(w, r, resp, err)
	}
}

func SearchHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SearchRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewMarketLogic(r.Context(), svcCtx).Search(&req)
		respond(w, r, resp, err)
	}
}

func StatusHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := logic.NewMarketLogic(r.Context(), svcCtx).Status()
		respond(w, r, resp, err)
	}
}

func MoversHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := logic.NewMarketLogic(r.Context(), svcCtx).Movers()
		respond(w, r, resp, err)
	}
}

func TrendingHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := logic.NewMarketLogic(r.Context(), svcCtx).Trending()
		respond(w, r, resp, err)
	}
}

func IndicesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := logic.NewMarketLogic(r.Context(), svcCtx).Indices()
		respond(w, r, resp, err)
	}
}

func StoreSecurityHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.StoreSecurityRequest
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(w, r, err)
			return
		}
		resp, err := logic.NewMarketLogic(r.Context(), svcCtx).StoreSecurity(&req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.WriteJsonCtx(r.Context(), w, http.StatusCreated, resp)
	}
}
