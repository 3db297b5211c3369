package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDay returns the given hour on ts's day in ts's location. Used to
// bound "since start of today" history queries.
func StartOfDay(ts time.Time, hour int) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), hour, 0, 0, 0, ts.Location())
}
