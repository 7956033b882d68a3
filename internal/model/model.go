package model

import "time"

// StampKind distinguishes the two DTSTART/DTEND value forms an iCalendar
// source can carry: a zoned point in time, or a bare calendar date.
type StampKind int

const (
	PointInTime StampKind = iota
	CalendarDate
)

// Stamp is a tagged union over the two forms. For PointInTime, Time is the
// full instant (with Location set). For CalendarDate only the year/month/day
// of Time are meaningful; Time holds midnight UTC of that date.
type Stamp struct {
	Kind StampKind
	Time time.Time
}

// NewPointInTime wraps a zoned instant.
func NewPointInTime(t time.Time) Stamp {
	return Stamp{Kind: PointInTime, Time: t}
}

// NewCalendarDate wraps a bare date.
func NewCalendarDate(year int, month time.Month, day int) Stamp {
	return Stamp{Kind: CalendarDate, Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// CalendarDateOf builds a CalendarDate stamp from the date fields of t.
func CalendarDateOf(t time.Time) Stamp {
	y, m, d := t.Date()
	return NewCalendarDate(y, m, d)
}

// Date returns the stamp's calendar date. For PointInTime stamps this is
// the date in the instant's own location.
func (s Stamp) Date() (year int, month time.Month, day int) {
	return s.Time.Date()
}

// DateOnly renders the stamp's calendar date as YYYY-MM-DD.
func (s Stamp) DateOnly() string {
	return s.Time.Format(time.DateOnly)
}

// Instant returns a comparable absolute instant for ordering stamps of
// either kind. CalendarDate stamps order at their midnight UTC.
func (s Stamp) Instant() time.Time {
	return s.Time
}

// RawOccurrence is one concrete instance of an event as produced by
// recurrence expansion, before timezone normalization.
type RawOccurrence struct {
	Title       string
	Location    string
	Start       Stamp
	End         Stamp
	IsRecurring bool
}

// Occurrence is a normalized occurrence: start and end are always
// timezone-aware instants (target timezone for timed events, UTC day bounds
// for all-day events). Immutable once built.
type Occurrence struct {
	Title       string
	Location    string
	Start       time.Time
	End         time.Time
	IsRecurring bool
}

// StartDate returns the occurrence's start date (YYYY-MM-DD) in the
// location its start was stamped with.
func (o Occurrence) StartDate() string {
	return o.Start.Format(time.DateOnly)
}
