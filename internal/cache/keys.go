package cache

import (
	"strings"
	"time"

	"brokerage-api/internal/config"
	"brokerage-api/pkg/market"
)

// TTLSet holds cache lifetimes as durations.
type TTLSet struct {
	Quote     time.Duration
	History   time.Duration
	Search    time.Duration
	Simulated time.Duration
}

// DefaultTTLSet matches the config defaults.
func DefaultTTLSet() TTLSet {
	return TTLSet{
		Quote:     30 * time.Second,
		History:   5 * time.Minute,
		Search:    time.Hour,
		Simulated: time.Minute,
	}
}

// NewTTLSet converts config TTLs (in seconds) into durations; zero falls back
// to the default for that class.
func NewTTLSet(cfg config.CacheTTL) TTLSet {
	def := DefaultTTLSet()
	return TTLSet{
		Quote:     durationOrDefault(cfg.Quote, def.Quote),
		History:   durationOrDefault(cfg.History, def.History),
		Search:    durationOrDefault(cfg.Search, def.Search),
		Simulated: durationOrDefault(cfg.Simulated, def.Simulated),
	}
}

func durationOrDefault(seconds int, fallback time.Duration) time.Duration {
	if seconds <= 0 {
		return fallback
	}
	return time.Duration(seconds) * time.Second
}

func formatKey(parts ...string) string {
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		clean := strings.TrimSpace(part)
		if clean == "" {
			continue
		}
		values = append(values, clean)
	}
	return strings.Join(values, ":")
}

// PriceKey holds the latest quote for symbol, written by both the gateway and
// the simulation broadcaster.
func PriceKey(symbol string) string {
	return formatKey("price", strings.ToUpper(symbol))
}

func HistoryKey(symbol string, timeframe market.Timeframe, size market.OutputSize) string {
	return formatKey("history", strings.ToUpper(symbol), string(timeframe), string(size))
}

// SearchKey is keyed by the query exactly as given, after trimming.
func SearchKey(query string) string {
	return "search:" + strings.TrimSpace(query)
}
