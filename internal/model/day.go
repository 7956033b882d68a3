package model

import "time"

// BeginOfDay returns midnight of t's calendar date, in t's location.
func BeginOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar date, in
// t's location. All-day occurrences are stamped with exactly this value so
// the formatter can classify them by equality.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
