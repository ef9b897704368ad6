package alphavantage

import (
	"net/http"

	"brokerage-api/pkg/market"
)

func init() {
	market.RegisterProvider(providerName, func(name string, cfg *market.ProviderConfig) (market.Provider, error) {
		if cfg.APIKey == "" {
			return nil, errMissingAPIKey
		}
		opts := []Option{WithBaseURL(cfg.BaseURL)}
		if cfg.HTTPTimeout > 0 {
			opts = append(opts, WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
		}
		return NewClient(cfg.APIKey, opts...), nil
	})
}
