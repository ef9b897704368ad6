package market

import (
	"strings"
	"time"
)

// Timeframe is the bar width of a historical series.
type Timeframe string

const (
	Timeframe1Min    Timeframe = "1min"
	Timeframe5Min    Timeframe = "5min"
	Timeframe15Min   Timeframe = "15min"
	Timeframe30Min   Timeframe = "30min"
	Timeframe60Min   Timeframe = "60min"
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

var timeframes = map[Timeframe]time.Duration{
	Timeframe1Min:    time.Minute,
	Timeframe5Min:    5 * time.Minute,
	Timeframe15Min:   15 * time.Minute,
	Timeframe30Min:   30 * time.Minute,
	Timeframe60Min:   time.Hour,
	TimeframeDaily:   24 * time.Hour,
	TimeframeWeekly:  7 * 24 * time.Hour,
	TimeframeMonthly: 30 * 24 * time.Hour,
}

// ParseTimeframe normalises raw into a known timeframe. Unknown or empty values
// resolve to daily and report ok=false.
func ParseTimeframe(raw string) (Timeframe, bool) {
	tf := Timeframe(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := timeframes[tf]; ok {
		return tf, true
	}
	return TimeframeDaily, false
}

// Intraday reports whether the timeframe is measured in minutes.
func (t Timeframe) Intraday() bool {
	d, ok := timeframes[t]
	return ok && d < 24*time.Hour
}

// OutputSize selects how many points the upstream should return.
type OutputSize string

const (
	OutputCompact OutputSize = "compact"
	OutputFull    OutputSize = "full"
)

// ParseOutputSize normalises raw, defaulting to compact.
func ParseOutputSize(raw string) OutputSize {
	if strings.EqualFold(strings.TrimSpace(raw), string(OutputFull)) {
		return OutputFull
	}
	return OutputCompact
}
