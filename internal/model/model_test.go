package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBounds(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	at := time.Date(2025, 3, 10, 14, 30, 45, 123, la)

	begin := BeginOfDay(at)
	assert.True(t, begin.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, la)))
	assert.Equal(t, la, begin.Location())

	end := EndOfDay(at)
	assert.True(t, end.Equal(time.Date(2025, 3, 10, 23, 59, 59, int(time.Second-time.Nanosecond), la)))

	// The bounds bracket every instant of the day.
	assert.False(t, at.Before(begin))
	assert.False(t, at.After(end))
}

func TestStampKinds(t *testing.T) {
	instant := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	p := NewPointInTime(instant)
	assert.Equal(t, PointInTime, p.Kind)
	assert.True(t, p.Instant().Equal(instant))

	d := NewCalendarDate(2025, time.March, 10)
	assert.Equal(t, CalendarDate, d.Kind)
	assert.Equal(t, "2025-03-10", d.DateOnly())
	assert.True(t, d.Instant().Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)))
}

func TestCalendarDateOfUsesOwnLocation(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// Late evening in LA is already the next day in UTC; the stamp must
	// keep the local date.
	late := time.Date(2025, 3, 10, 23, 0, 0, 0, la)
	d := CalendarDateOf(late)
	assert.Equal(t, "2025-03-10", d.DateOnly())
}

func TestOccurrenceStartDate(t *testing.T) {
	occ := Occurrence{Start: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2025-03-10", occ.StartDate())
}
