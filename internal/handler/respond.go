package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"brokerage-api/internal/logic"
	"brokerage-api/internal/marketdata"
	"brokerage-api/internal/repo"
	"brokerage-api/internal/svc"
	"brokerage-api/internal/types"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, marketdata.ErrInvalidSymbol),
		errors.Is(err, marketdata.ErrTooManySymbols),
		errors.Is(err, logic.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		logx.WithContext(r.Context()).Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		msg = http.StatusText(code)
	}
	httpx.WriteJsonCtx(r.Context(), w, code, types.ErrorResponse{Error: msg})
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	httpx.WriteJsonCtx(r.Context(), w, http.StatusBadRequest, types.ErrorResponse{Error: err.Error()})
}

func respond(w http.ResponseWriter, r *http.Request, resp any, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.OkJsonCtx(r.Context(), w, resp)
}

func HealthHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, types.HealthResponse{
			Service:     svcCtx.Config.Name,
			Status:      "healthy",
			Uptime:      time.Since(svcCtx.StartedAt).Seconds(),
			Subscribers: svcCtx.Hub.Subscribers(),
			Timestamp:   time.Now(),
		})
	}
}
