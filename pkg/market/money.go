package market

import "github.com/shopspring/decimal"

// Round2 rounds a monetary value to cents, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
