package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCalendar = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:standup@example.com
DTSTAMP:20250301T000000Z
DTSTART;TZID=America/Los_Angeles:20250301T090000
DTEND;TZID=America/Los_Angeles:20250301T091500
SUMMARY:Standup
LOCATION:Zoom
RRULE:FREQ=DAILY;COUNT=3
END:VEVENT
BEGIN:VEVENT
UID:offsite@example.com
DTSTAMP:20250301T000000Z
DTSTART;VALUE=DATE:20250310
DTEND;VALUE=DATE:20250311
SUMMARY:Team Offsite
END:VEVENT
BEGIN:VEVENT
UID:open-ended@example.com
DTSTAMP:20250301T000000Z
DTSTART:20250305T180000Z
SUMMARY:Open Ended
END:VEVENT
END:VCALENDAR
`

func TestParseSampleCalendar(t *testing.T) {
	cal, err := Parse("sample.ics", []byte(sampleCalendar))
	require.NoError(t, err)
	require.Len(t, cal.Events, 3)

	standup := cal.Events[0]
	assert.Equal(t, "standup@example.com", standup.UID)
	assert.Equal(t, "Standup", standup.Summary)
	assert.Equal(t, "Zoom", standup.Location)
	assert.Equal(t, "FREQ=DAILY;COUNT=3", standup.RawRRule)
	assert.False(t, standup.AllDay)

	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	assert.True(t, standup.Start.Equal(time.Date(2025, 3, 1, 9, 0, 0, 0, la)))
	assert.True(t, standup.End.Equal(time.Date(2025, 3, 1, 9, 15, 0, 0, la)))

	offsite := cal.Events[1]
	assert.True(t, offsite.AllDay)
	assert.Empty(t, offsite.RawRRule)
	y, m, d := offsite.Start.Date()
	assert.Equal(t, [3]int{2025, 3, 10}, [3]int{y, int(m), d})
	y, m, d = offsite.End.Date()
	assert.Equal(t, [3]int{2025, 3, 11}, [3]int{y, int(m), d})
}

func TestParseMissingEndDefaultsToStart(t *testing.T) {
	cal, err := Parse("sample.ics", []byte(sampleCalendar))
	require.NoError(t, err)

	open := cal.Events[2]
	assert.True(t, open.End.Equal(open.Start))
}

func TestParseZeroEvents(t *testing.T) {
	body := "BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//test//EN\nEND:VCALENDAR\n"
	cal, err := Parse("empty.ics", []byte(body))
	require.NoError(t, err)
	assert.Empty(t, cal.Events)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse("bad.ics", []byte("this is not a calendar"))
	assert.Error(t, err)

	_, err = Parse("empty-body.ics", nil)
	assert.Error(t, err)
}

func TestParseSkipsEventWithoutStart(t *testing.T) {
	body := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:no-start@example.com
DTSTAMP:20250301T000000Z
SUMMARY:Broken
END:VEVENT
BEGIN:VEVENT
UID:ok@example.com
DTSTAMP:20250301T000000Z
DTSTART:20250305T180000Z
SUMMARY:Fine
END:VEVENT
END:VCALENDAR
`
	cal, err := Parse("partial.ics", []byte(body))
	require.NoError(t, err)
	require.Len(t, cal.Events, 1)
	assert.Equal(t, "Fine", cal.Events[0].Summary)
}

func TestParseExDates(t *testing.T) {
	body := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:daily@example.com
DTSTAMP:20250301T000000Z
DTSTART:20250301T090000Z
DTEND:20250301T100000Z
SUMMARY:Daily
RRULE:FREQ=DAILY;COUNT=5
EXDATE:20250302T090000Z,20250304T090000Z
END:VEVENT
END:VCALENDAR
`
	cal, err := Parse("exdate.ics", []byte(body))
	require.NoError(t, err)
	require.Len(t, cal.Events, 1)
	require.Len(t, cal.Events[0].ExDates, 2)
	assert.True(t, cal.Events[0].ExDates[0].Equal(time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)))
	assert.True(t, cal.Events[0].ExDates[1].Equal(time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)))
}

func TestParseExDateTZID(t *testing.T) {
	body := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:daily@example.com
DTSTAMP:20250301T000000Z
DTSTART;TZID=America/New_York:20250310T090000
DTEND;TZID=America/New_York:20250310T093000
SUMMARY:Daily
RRULE:FREQ=DAILY;COUNT=3
EXDATE;TZID=America/New_York:20250311T090000
END:VEVENT
END:VCALENDAR
`
	cal, err := Parse("exdate-tzid.ics", []byte(body))
	require.NoError(t, err)
	require.Len(t, cal.Events, 1)

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ex := cal.Events[0].ExDates
	require.Len(t, ex, 1)
	assert.True(t, ex[0].Equal(time.Date(2025, 3, 11, 9, 0, 0, 0, ny)))
}

func TestParseExDateWithoutTZIDUsesStartZone(t *testing.T) {
	// A floating EXDATE inherits the start's zone, not the host's.
	body := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//EN
BEGIN:VEVENT
UID:daily@example.com
DTSTAMP:20250301T000000Z
DTSTART;TZID=America/New_York:20250310T090000
DTEND;TZID=America/New_York:20250310T093000
SUMMARY:Daily
RRULE:FREQ=DAILY;COUNT=3
EXDATE:20250311T090000
END:VEVENT
END:VCALENDAR
`
	cal, err := Parse("exdate-floating.ics", []byte(body))
	require.NoError(t, err)
	require.Len(t, cal.Events, 1)

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ex := cal.Events[0].ExDates
	require.Len(t, ex, 1)
	assert.True(t, ex[0].Equal(time.Date(2025, 3, 11, 9, 0, 0, 0, ny)))
}
