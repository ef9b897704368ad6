package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"brokerage-api/pkg/market"
)

const (
	defaultBaseURL     = "https://www.alphavantage.co/query"
	defaultHTTPTimeout = 20 * time.Second

	providerName = "alphavantage"
)

var errMissingAPIKey = errors.New("alphavantage: api key required")

// Client talks to the Alpha Vantage query endpoint. Every method issues exactly
// one HTTP request.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ market.Provider = (*Client)(nil)

// Option configures a new Client.
type Option func(*Client)

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL overrides the default query endpoint URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// NewClient constructs an Alpha Vantage client for apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// doRequest issues a GET with params and decodes the body into result after
// checking the in-band error fields.
func (c *Client) doRequest(ctx context.Context, params url.Values, result interface{}) error {
	if c.apiKey == "" {
		return errMissingAPIKey
	}
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("alphavantage: build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("alphavantage: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("alphavantage: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alphavantage: http status %d: %s", resp.StatusCode, string(body))
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return market.ErrEmptyResponse
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("alphavantage: decode response: %w", err)
	}
	switch {
	case env.ErrorMessage != "":
		return &market.APIError{Provider: providerName, Message: env.ErrorMessage}
	case env.Note != "":
		return fmt.Errorf("%w: %s", market.ErrRateLimited, env.Note)
	case env.Information != "":
		return fmt.Errorf("%w: %s", market.ErrRateLimited, env.Information)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("alphavantage: decode response: %w", err)
	}
	return nil
}

// Quote calls GLOBAL_QUOTE.
func (c *Client) Quote(ctx context.Context, symbol string) (*market.Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)

	var payload globalQuoteResponse
	if err := c.doRequest(ctx, params, &payload); err != nil {
		return nil, err
	}
	gq := payload.GlobalQuote
	if gq.Price == "" {
		return nil, market.ErrEmptyResponse
	}
	price, err := parseFloat(gq.Price)
	if err != nil {
		return nil, fmt.Errorf("alphavantage: parse price: %w", err)
	}
	if price <= 0 {
		return nil, fmt.Errorf("alphavantage: non-positive price %q for %s", gq.Price, symbol)
	}

	quoteSymbol := gq.Symbol
	if quoteSymbol == "" {
		quoteSymbol = symbol
	}
	change, _ := parseFloat(gq.Change)
	changePct, _ := parseFloat(strings.TrimSuffix(strings.TrimSpace(gq.ChangePercent), "%"))
	prevClose, _ := parseFloat(gq.PreviousClose)
	volume, _ := parseInt(gq.Volume)

	return &market.Quote{
		Symbol:        strings.ToUpper(quoteSymbol),
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
		Volume:        volume,
		PreviousClose: prevClose,
		Timestamp:     time.Now(),
		Source:        market.SourceProvider,
	}, nil
}

// Series calls the TIME_SERIES_* function matching timeframe and returns the
// candles oldest first.
func (c *Client) Series(ctx context.Context, symbol string, timeframe market.Timeframe, size market.OutputSize) ([]market.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("outputsize", string(size))
	switch {
	case timeframe.Intraday():
		params.Set("function", "TIME_SERIES_INTRADAY")
		params.Set("interval", string(timeframe))
	case timeframe == market.TimeframeWeekly:
		params.Set("function", "TIME_SERIES_WEEKLY")
	case timeframe == market.TimeframeMonthly:
		params.Set("function", "TIME_SERIES_MONTHLY")
	default:
		params.Set("function", "TIME_SERIES_DAILY")
	}

	var payload seriesResponse
	if err := c.doRequest(ctx, params, &payload); err != nil {
		return nil, err
	}

	var raw json.RawMessage
	for key, value := range payload {
		if strings.Contains(key, "Time Series") {
			raw = value
			break
		}
	}
	if raw == nil {
		return nil, market.ErrEmptyResponse
	}
	var bars map[string]seriesBar
	if err := json.Unmarshal(raw, &bars); err != nil {
		return nil, fmt.Errorf("alphavantage: decode series: %w", err)
	}
	if len(bars) == 0 {
		return nil, market.ErrEmptyResponse
	}

	candles := make([]market.Candle, 0, len(bars))
	for stamp, bar := range bars {
		ts, err := parseStamp(stamp)
		if err != nil {
			return nil, fmt.Errorf("alphavantage: parse timestamp %q: %w", stamp, err)
		}
		candle := market.Candle{Timestamp: ts}
		candle.Open, _ = parseFloat(bar.Open)
		candle.High, _ = parseFloat(bar.High)
		candle.Low, _ = parseFloat(bar.Low)
		candle.Close, _ = parseFloat(bar.Close)
		candle.Volume, _ = parseInt(bar.Volume)
		candles = append(candles, candle)
	}
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp.Before(candles[j].Timestamp)
	})
	return candles, nil
}

// Search calls SYMBOL_SEARCH.
func (c *Client) Search(ctx context.Context, keywords string) ([]market.SecurityMatch, error) {
	params := url.Values{}
	params.Set("function", "SYMBOL_SEARCH")
	params.Set("keywords", keywords)

	var payload searchResponse
	if err := c.doRequest(ctx, params, &payload); err != nil {
		return nil, err
	}
	matches := make([]market.SecurityMatch, 0, len(payload.BestMatches))
	for _, m := range payload.BestMatches {
		if strings.TrimSpace(m.Symbol) == "" {
			continue
		}
		matches = append(matches, market.SecurityMatch{
			Symbol:      strings.TrimSpace(m.Symbol),
			Name:        m.Name,
			Type:        m.Type,
			Region:      m.Region,
			Currency:    m.Currency,
			MarketOpen:  m.MarketOpen,
			MarketClose: m.MarketClose,
			Timezone:    m.Timezone,
		})
	}
	return matches, nil
}

func parseFloat(raw string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(raw), 64)
}

func parseInt(raw string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

// parseStamp accepts both the daily ("2006-01-02") and intraday
// ("2006-01-02 15:04:05") key formats.
func parseStamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) == len("2006-01-02") {
		return time.Parse("2006-01-02", raw)
	}
	return time.Parse("2006-01-02 15:04:05", raw)
}
