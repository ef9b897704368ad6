package synthetic

import (
	"strings"

	"brokerage-api/pkg/market"
)

// MaxSearchResults caps every search answer.
const MaxSearchResults = 10

var catalog = []market.SecurityMatch{
	{Symbol: "AAPL", Name: "Apple Inc.", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "AMZN", Name: "Amazon.com Inc.", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "TSLA", Name: "Tesla Inc.", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "META", Name: "Meta Platforms Inc.", Type: "Equity", Region: "United States", Currency: "USD"},
	{Symbol: "NFLX", Name: "Netflix Inc.", Type: "Equity", Region: "United States", Currency: "USD"},
}

// Search filters the built-in catalog by case-insensitive substring match on
// symbol or name.
func Search(query string) []market.SecurityMatch {
	q := strings.ToLower(strings.TrimSpace(query))
	results := make([]market.SecurityMatch, 0, len(catalog))
	if q == "" {
		return results
	}
	for _, sec := range catalog {
		if strings.Contains(strings.ToLower(sec.Symbol), q) || strings.Contains(strings.ToLower(sec.Name), q) {
			results = append(results, sec)
		}
		if len(results) == MaxSearchResults {
			break
		}
	}
	return results
}
