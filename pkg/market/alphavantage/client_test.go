package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brokerage-api/pkg/market"
)

const globalQuoteBody = `{
  "Global Quote": {
    "01. symbol": "IBM",
    "02. open": "180.1000",
    "03. high": "182.5000",
    "04. low": "179.8000",
    "05. price": "181.2500",
    "06. volume": "3456789",
    "07. latest trading day": "2024-05-10",
    "08. previous close": "180.0000",
    "09. change": "1.2500",
    "10. change percent": "0.6944%"
  }
}`

const dailySeriesBody = `{
  "Meta Data": {"1. Information": "Daily Prices", "2. Symbol": "IBM"},
  "Time Series (Daily)": {
    "2024-05-10": {"1. open": "180.00", "2. high": "182.00", "3. low": "179.00", "4. close": "181.00", "5. volume": "1000"},
    "2024-05-08": {"1. open": "176.00", "2. high": "178.00", "3. low": "175.00", "4. close": "177.00", "5. volume": "3000"},
    "2024-05-09": {"1. open": "178.00", "2. high": "180.00", "3. low": "177.00", "4. close": "179.00", "5. volume": "2000"}
  }
}`

const searchBody = `{
  "bestMatches": [
    {"1. symbol": "TSCO.LON", "2. name": "Tesco PLC", "3. type": "Equity", "4. region": "United Kingdom",
     "5. marketOpen": "08:00", "6. marketClose": "16:30", "7. timezone": "UTC+01", "8. currency": "GBX", "9. matchScore": "0.7273"},
    {"1. symbol": "TSCDF", "2. name": "Tesco plc", "3. type": "Equity", "4. region": "United States",
     "5. marketOpen": "09:30", "6. marketClose": "16:00", "7. timezone": "UTC-04", "8. currency": "USD", "9. matchScore": "0.7143"}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("demo", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func TestClientQuote(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(globalQuoteBody))
	})

	quote, err := client.Quote(context.Background(), "IBM")
	require.NoError(t, err)
	require.NotNil(t, quote)
	assert.Contains(t, gotQuery, "function=GLOBAL_QUOTE")
	assert.Contains(t, gotQuery, "symbol=IBM")
	assert.Contains(t, gotQuery, "apikey=demo")

	assert.Equal(t, "IBM", quote.Symbol)
	assert.InDelta(t, 181.25, quote.Price, 1e-9)
	assert.InDelta(t, 1.25, quote.Change, 1e-9)
	assert.InDelta(t, 0.6944, quote.ChangePercent, 1e-9)
	assert.InDelta(t, 180.0, quote.PreviousClose, 1e-9)
	assert.Equal(t, int64(3456789), quote.Volume)
	assert.Equal(t, market.SourceProvider, quote.Source)
	assert.False(t, quote.Timestamp.IsZero())
}

func TestClientInBandErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, err error)
	}{
		{
			name: "rate limit note",
			body: `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, market.ErrRateLimited)
			},
		},
		{
			name: "information notice",
			body: `{"Information": "API rate limit reached."}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, market.ErrRateLimited)
			},
		},
		{
			name: "error message",
			body: `{"Error Message": "Invalid API call."}`,
			check: func(t *testing.T, err error) {
				var apiErr *market.APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, "Invalid API call.", apiErr.Message)
			},
		},
		{
			name: "empty quote object",
			body: `{"Global Quote": {}}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, market.ErrEmptyResponse)
			},
		},
		{
			name: "empty body",
			body: ``,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, market.ErrEmptyResponse)
			},
		},
		{
			name: "zero price",
			body: `{"Global Quote": {"01. symbol": "IBM", "05. price": "0.0000"}}`,
			check: func(t *testing.T, err error) {
				assert.Error(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			quote, err := client.Quote(context.Background(), "IBM")
			assert.Nil(t, quote)
			tt.check(t, err)
		})
	}
}

func TestClientHTTPStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := client.Quote(context.Background(), "IBM")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClientMissingAPIKey(t *testing.T) {
	client := NewClient("")
	_, err := client.Quote(context.Background(), "IBM")
	assert.ErrorIs(t, err, errMissingAPIKey)
}

func TestClientSeriesDaily(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(dailySeriesBody))
	})

	candles, err := client.Series(context.Background(), "IBM", market.TimeframeDaily, market.OutputCompact)
	require.NoError(t, err)
	require.Len(t, candles, 3)
	assert.Contains(t, gotQuery, "function=TIME_SERIES_DAILY")
	assert.Contains(t, gotQuery, "outputsize=compact")
	assert.NotContains(t, gotQuery, "interval=")

	assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), candles[0].Timestamp)
	assert.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), candles[2].Timestamp)
	assert.InDelta(t, 176.0, candles[0].Open, 1e-9)
	assert.InDelta(t, 181.0, candles[2].Close, 1e-9)
	assert.Equal(t, int64(2000), candles[1].Volume)
}

func TestClientSeriesIntradayPassesInterval(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{
		  "Time Series (5min)": {
		    "2024-05-10 15:55:00": {"1. open": "1", "2. high": "2", "3. low": "0.5", "4. close": "1.5", "5. volume": "10"}
		  }
		}`))
	})

	candles, err := client.Series(context.Background(), "IBM", market.Timeframe5Min, market.OutputFull)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Contains(t, gotQuery, "function=TIME_SERIES_INTRADAY")
	assert.Contains(t, gotQuery, "interval=5min")
	assert.Contains(t, gotQuery, "outputsize=full")
	assert.Equal(t, 15, candles[0].Timestamp.Hour())
}

func TestClientSeriesWithoutSeriesKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Meta Data": {}}`))
	})
	_, err := client.Series(context.Background(), "IBM", market.TimeframeWeekly, market.OutputCompact)
	assert.ErrorIs(t, err, market.ErrEmptyResponse)
}

func TestClientSearch(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(searchBody))
	})

	matches, err := client.Search(context.Background(), "tesco")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.True(t, strings.Contains(gotQuery, "function=SYMBOL_SEARCH"))
	assert.True(t, strings.Contains(gotQuery, "keywords=tesco"))

	assert.Equal(t, "TSCO.LON", matches[0].Symbol)
	assert.Equal(t, "Tesco PLC", matches[0].Name)
	assert.Equal(t, "United Kingdom", matches[0].Region)
	assert.Equal(t, "GBX", matches[0].Currency)
	assert.Equal(t, "08:00", matches[0].MarketOpen)
	assert.Equal(t, "UTC-04", matches[1].Timezone)
}

func TestRegisteredProviderRequiresAPIKey(t *testing.T) {
	cfg := &market.Config{
		Default: "av",
		Providers: map[string]*market.ProviderConfig{
			"av": {Type: "alphavantage"},
		},
	}
	_, err := cfg.BuildDefault()
	assert.ErrorIs(t, err, errMissingAPIKey)

	cfg.Providers["av"].APIKey = "demo"
	provider, err := cfg.BuildDefault()
	require.NoError(t, err)
	assert.IsType(t, &Client{}, provider)
}
