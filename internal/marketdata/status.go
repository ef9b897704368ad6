package marketdata

import (
	"time"
	_ "time/tzdata"
)

const (
	sessionOpenHour   = 9
	sessionOpenMinute = 30
	sessionCloseHour  = 16
)

// Status describes the US equity session relative to a point in time.
type Status struct {
	IsOpen    bool      `json:"isOpen"`
	NextOpen  time.Time `json:"nextOpen"`
	NextClose time.Time `json:"nextClose"`
	Timezone  string    `json:"timezone"`
}

// DefaultLocation returns America/New_York, or UTC if the zone cannot be
// loaded.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.UTC
	}
	return loc
}

// MarketStatus evaluates the session at now in loc. The session counts as
// open for every weekday hour in [9, 16), so 09:00-09:29 reports open.
// Holidays are not modelled.
func MarketStatus(now time.Time, loc *time.Location) Status {
	if loc == nil {
		loc = DefaultLocation()
	}
	local := now.In(loc)
	hour := local.Hour()

	return Status{
		IsOpen:    isWeekday(local.Weekday()) && hour >= sessionOpenHour && hour < sessionCloseHour,
		NextOpen:  nextOpen(local),
		NextClose: nextClose(local),
		Timezone:  loc.String(),
	}
}

func isWeekday(d time.Weekday) bool {
	return d != time.Saturday && d != time.Sunday
}

// nextOpen is the first weekday 09:30 strictly after local.
func nextOpen(local time.Time) time.Time {
	loc := local.Location()
	candidate := time.Date(local.Year(), local.Month(), local.Day(), sessionOpenHour, sessionOpenMinute, 0, 0, loc)
	if !candidate.After(local) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	for !isWeekday(candidate.Weekday()) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate
}

// nextClose is 16:00 today, or tomorrow once the close hour has begun.
func nextClose(local time.Time) time.Time {
	loc := local.Location()
	closeAt := time.Date(local.Year(), local.Month(), local.Day(), sessionCloseHour, 0, 0, 0, loc)
	if local.Hour() >= sessionCloseHour {
		closeAt = closeAt.AddDate(0, 0, 1)
	}
	return closeAt
}
