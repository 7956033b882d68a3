package ics

import (
	"time"

	"vestacal/internal/model"
)

// DefaultTitle is substituted when a source event carries no SUMMARY.
const DefaultTitle = "No Title"

// Normalize converts a raw occurrence into its single consistent
// representation: timezone-aware start/end instants.
//
//   - PointInTime stamps are converted into the target timezone.
//   - CalendarDate stamps (all-day events) become the start date at the
//     beginning of the day and the end date at the very end of the day,
//     both in UTC. Downstream classification of "all-day" relies on these
//     exact boundary values.
func Normalize(raw model.RawOccurrence, target *time.Location) model.Occurrence {
	occ := model.Occurrence{
		Title:       raw.Title,
		Location:    raw.Location,
		IsRecurring: raw.IsRecurring,
	}
	if occ.Title == "" {
		occ.Title = DefaultTitle
	}

	switch raw.Start.Kind {
	case model.CalendarDate:
		occ.Start = model.BeginOfDay(raw.Start.Time.In(time.UTC))
		endDate := raw.Start.Time
		if raw.End.Kind == model.CalendarDate {
			endDate = raw.End.Time
		}
		occ.End = model.EndOfDay(endDate.In(time.UTC))
	default:
		occ.Start = raw.Start.Time.In(target)
		occ.End = raw.End.Time.In(target)
	}

	return occ
}
