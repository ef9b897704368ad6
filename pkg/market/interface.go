package market

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider is the upstream quote source consulted by the market data gateway.
// Implementations issue exactly one upstream request per call; retries, caching
// and fallback are the caller's business.
type Provider interface {
	// Quote returns the latest quote for symbol.
	Quote(ctx context.Context, symbol string) (*Quote, error)
	// Series returns candles ordered oldest to newest.
	Series(ctx context.Context, symbol string, timeframe Timeframe, size OutputSize) ([]Candle, error)
	// Search returns securities matching the keywords.
	Search(ctx context.Context, keywords string) ([]SecurityMatch, error)
}

// Simulated is implemented by providers that generate data locally instead of
// calling a remote service. Their answers are neither rate limited nor cached.
type Simulated interface {
	Simulated() bool
}

// IsSimulated reports whether p generates its data locally.
func IsSimulated(p Provider) bool {
	s, ok := p.(Simulated)
	return ok && s.Simulated()
}

var (
	// ErrRateLimited is returned when the upstream answers with a quota notice
	// instead of data.
	ErrRateLimited = errors.New("market: upstream rate limit exceeded")
	// ErrEmptyResponse is returned when the upstream answers without usable data.
	ErrEmptyResponse = errors.New("market: empty upstream response")
)

// APIError carries an error message reported inside an otherwise successful
// upstream response body.
type APIError struct {
	Provider string
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market: %s api error: %s", e.Provider, e.Message)
}

// Source identifies where a quote came from.
type Source string

const (
	SourceProvider  Source = "provider"
	SourceSynthetic Source = "synthetic"
)

// Quote is a point-in-time price for a symbol.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	PreviousClose float64   `json:"previousClose"`
	Timestamp     time.Time `json:"timestamp"`
	Source        Source    `json:"source"`
}

// Candle is a single OHLCV bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// SecurityMatch is a single symbol search hit.
type SecurityMatch struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Region      string `json:"region"`
	Currency    string `json:"currency"`
	MarketOpen  string `json:"marketOpen,omitempty"`
	MarketClose string `json:"marketClose,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}
