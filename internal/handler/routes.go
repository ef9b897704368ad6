package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"brokerage-api/internal/svc"
)

func RegisterHandlers(server *rest.Server, serverCtx *svc.ServiceContext) {
	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodGet, Path: "/health", Handler: HealthHandler(serverCtx)},
		},
	)

	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodGet, Path: "/price/:symbol", Handler: PriceHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/prices", Handler: PricesHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/history/:symbol", Handler: HistoryHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/search", Handler: SearchHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/status", Handler: StatusHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/movers", Handler: MoversHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/trending", Handler: TrendingHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/indices", Handler: IndicesHandler(serverCtx)},
			{Method: http.MethodPost, Path: "/securities", Handler: StoreSecurityHandler(serverCtx)},
		},
		rest.WithPrefix("/api/market"),
	)

	server.AddRoutes(
		[]rest.Route{
			{Method: http.MethodGet, Path: "/:id", Handler: PortfolioSummaryHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/:id/positions", Handler: PositionsHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/:id/transactions", Handler: TransactionsHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/:id/performance", Handler: PerformanceHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/:id/allocation/sectors", Handler: SectorAllocationHandler(serverCtx)},
			{Method: http.MethodGet, Path: "/:id/allocation/types", Handler: TypeAllocationHandler(serverCtx)},
		},
		rest.WithPrefix("/api/portfolio"),
	)
}
