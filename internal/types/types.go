package types

import (
	"time"

	"brokerage-api/internal/marketdata"
	"brokerage-api/internal/portfolio"
	"brokerage-api/internal/repo"
	"brokerage-api/pkg/market"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Service string  `json:"service"`
	Status  string  `json:"status"`
	Uptime  float64 `json:"uptime"`
	// Subscribers counts live price stream subscriptions.
	Subscribers int       `json:"subscribers"`
	Timestamp   time.Time `json:"timestamp"`
}

type PriceRequest struct {
	Symbol string `path:"symbol"`
}

type PriceResponse struct {
	Data      market.Quote `json:"data"`
	Timestamp time.Time    `json:"timestamp"`
}

type PricesRequest struct {
	// Symbols is a comma separated list.
	Symbols string `form:"symbols,optional"`
}

type PricesResponse struct {
	Data      []market.Quote `json:"data"`
	Count     int            `json:"count"`
	Timestamp time.Time      `json:"timestamp"`
}

type HistoryRequest struct {
	Symbol     string `path:"symbol"`
	Timeframe  string `form:"timeframe,default=daily"`
	OutputSize string `form:"outputSize,default=compact"`
}

type HistoryResponse struct {
	Symbol    string          `json:"symbol"`
	Timeframe string          `json:"timeframe"`
	Data      []market.Candle `json:"data"`
	Count     int             `json:"count"`
	Timestamp time.Time       `json:"timestamp"`
}

type SearchRequest struct {
	Query string `form:"q"`
}

type SearchResponse struct {
	Query     string                 `json:"query"`
	Results   []market.SecurityMatch `json:"results"`
	Count     int                    `json:"count"`
	Timestamp time.Time              `json:"timestamp"`
}

type StatusResponse struct {
	Market    marketdata.Status `json:"market"`
	Timestamp time.Time         `json:"timestamp"`
}

type MoversResponse struct {
	Data      *marketdata.Movers `json:"data"`
	Timestamp time.Time          `json:"timestamp"`
}

type TrendingResponse struct {
	Trending  []market.Quote `json:"trending"`
	Timestamp time.Time      `json:"timestamp"`
}

type IndicesResponse struct {
	Indices   []market.Quote `json:"indices"`
	Timestamp time.Time      `json:"timestamp"`
}

type StoreSecurityRequest struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name,optional"`
	Exchange     string `json:"exchange,optional"`
	Sector       string `json:"sector,optional"`
	Industry     string `json:"industry,optional"`
	SecurityType string `json:"securityType,default=Equity"`
}

type StoreSecurityResponse struct {
	Message string         `json:"message"`
	Data    *repo.Security `json:"data"`
}

type PortfolioRequest struct {
	ID string `path:"id"`
}

type SummaryResponse struct {
	Portfolio *portfolio.Summary `json:"portfolio"`
	Timestamp time.Time          `json:"timestamp"`
}

type PositionsResponse struct {
	Positions []repo.Position `json:"positions"`
	Count     int             `json:"count"`
	Timestamp time.Time       `json:"timestamp"`
}

type TransactionsRequest struct {
	ID     string `path:"id"`
	Limit  int    `form:"limit,default=50"`
	Offset int    `form:"offset,default=0"`
}

type TransactionsResponse struct {
	Transactions []repo.Transaction `json:"transactions"`
	Count        int                `json:"count"`
	Limit        int                `json:"limit"`
	Offset       int                `json:"offset"`
	Timestamp    time.Time          `json:"timestamp"`
}

type PerformanceRequest struct {
	ID   string `path:"id"`
	Days int    `form:"days,default=30"`
}

type PerformanceResponse struct {
	Performance []portfolio.DailyFlow `json:"performance"`
	Days        int                   `json:"days"`
	Timestamp   time.Time             `json:"timestamp"`
}

type AllocationResponse struct {
	Allocation []portfolio.Allocation `json:"allocation"`
	Type       string                 `json:"type"`
	Timestamp  time.Time              `json:"timestamp"`
}
