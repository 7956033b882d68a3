package ics

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "vestacal/internal/log"
)

// ParsedEvent is the normalized representation of a VEVENT as produced by
// the loader. Recurrence expansion operates on this type.
type ParsedEvent struct {
	UID string

	Summary  string
	Location string

	// Start/End in the event's own timezone. For all-day events only the
	// date fields are meaningful.
	Start  time.Time
	End    time.Time
	AllDay bool

	RawRRule string
	ExDates  []time.Time

	RecurrenceID *time.Time // RECURRENCE-ID (if present) in the event's own timezone
	IsOverride   bool       // true if this VEVENT overrides a recurring instance
}

// SourceCalendar is the parsed representation of one input file. It is
// owned by a single load and borrowed read-only by the expander.
type SourceCalendar struct {
	Path   string
	Events []ParsedEvent
}

// LoadFile reads and parses a single ICS file. A file containing zero
// events parses to an empty calendar, not an error.
func LoadFile(path string) (*SourceCalendar, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, body)
}

// Parse parses an ICS payload into a SourceCalendar.
//
//   - It relies on the underlying library's TZID handling to construct
//     proper time.Time values (with Location set).
//   - It detects all-day events by inspecting the DTSTART value format.
//   - It records RRULE/EXDATE/RECURRENCE-ID but does not expand
//     recurrences; expansion lives in expand.go.
func Parse(path string, body []byte) (*SourceCalendar, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := &SourceCalendar{Path: path}

	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Warn("skipping unparsable VEVENT", "path", path, "err", perr)
			continue
		}
		out.Events = append(out.Events, ev)
	}

	appLog.Debug("ics parse completed", "path", path, "event_count", len(out.Events))
	return out, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	if uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId); uidProp != nil {
		out.UID = uidProp.Value
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	// DTSTART / DTEND. The library's helpers handle TZID and date-only
	// forms; a missing DTEND means the event ends when it starts.
	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	out.Start = start

	end, err := ve.GetEndAt()
	if err != nil {
		end = start
	}
	out.End = end

	// Detect all-day: VALUE=DATE or a dateless (no 'T') DTSTART value.
	if dtStartProp := ve.GetProperty(ical.ComponentPropertyDtStart); dtStartProp != nil {
		if params := dtStartProp.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				out.AllDay = true
			}
		}
		if !strings.Contains(dtStartProp.Value, "T") {
			out.AllDay = true
		}
	}

	// RRULE is kept raw; expand.go hands it to the recurrence engine.
	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}

	// EXDATE can appear multiple times and each value can hold a list.
	// A floating value without a TZID parameter shares the start's zone.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		loc := paramLocation(p.ICalParameters, out.Start.Location())
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part, loc); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	// RECURRENCE-ID marks an override of one recurring instance.
	if ridProp := ve.GetProperty("RECURRENCE-ID"); ridProp != nil {
		loc := paramLocation(ridProp.ICalParameters, out.Start.Location())
		if t, err := parseICSTime(ridProp.Value, loc); err == nil {
			out.RecurrenceID = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

// paramLocation resolves a property's TZID parameter, falling back when
// the parameter is absent or names an unknown zone.
func paramLocation(params map[string][]string, fallback *time.Location) *time.Location {
	tzids, ok := params["TZID"]
	if !ok || len(tzids) == 0 || tzids[0] == "" {
		return fallback
	}
	loc, err := time.LoadLocation(tzids[0])
	if err != nil {
		appLog.Warn("unknown TZID on property", "tzid", tzids[0], "err", err)
		return fallback
	}
	return loc
}

// parseICSTime parses a basic ICS date/date-time string. Used for
// EXDATE/RECURRENCE-ID values; loc anchors forms that carry no zone of
// their own.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g. 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}

	// Floating date-time, e.g. 20250101T090000
	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, loc)
	}

	// Date-only, e.g. 20250101
	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, loc)
}
