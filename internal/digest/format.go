package digest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "vestacal/internal/log"
	"vestacal/internal/model"
	"vestacal/internal/summarize"
)

const (
	// DefaultTimedTitleLimit / DefaultAllDayTitleLimit are the per-entry
	// character budgets on the board.
	DefaultTimedTitleLimit  = 16
	DefaultAllDayTitleLimit = 22

	// Artifact names written into the output folder.
	SubsetFileName = "combined_expanded.ics"
	DigestFileName = "combined_events.txt"
)

// Formatter renders the filtered occurrence set into the two output
// artifacts: the condensed calendar subset and the text digest.
type Formatter struct {
	// Summarizer condenses titles; nil means truncate locally.
	Summarizer summarize.Summarizer

	TimedTitleLimit  int
	AllDayTitleLimit int
}

// NewFormatter builds a Formatter with the default title limits.
func NewFormatter(s summarize.Summarizer) *Formatter {
	return &Formatter{
		Summarizer:       s,
		TimedTitleLimit:  DefaultTimedTitleLimit,
		AllDayTitleLimit: DefaultAllDayTitleLimit,
	}
}

// SortByStart orders occurrences by start instant, stable ascending.
func SortByStart(occs []model.Occurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		return occs[i].Start.Before(occs[j].Start)
	})
}

// IsAllDay reports whether an occurrence was stamped as all-day by the
// normalizer: start exactly at day begin and end exactly at day end.
// Anything else, including an all-day source event with an irregular end,
// classifies as timed.
func IsAllDay(occ model.Occurrence) bool {
	return occ.Start.Equal(model.BeginOfDay(occ.Start)) && occ.End.Equal(model.EndOfDay(occ.End))
}

// Digest renders the human-readable digest for targetDate.
//
// Timed entries render as "HH:MM <title>" on the 24-hour clock; because
// the prefix is zero-padded, the lexicographic sort below doubles as a
// chronological sort. That is load-bearing: a 12-hour clock or unpadded
// hours would break the ordering.
func (f *Formatter) Digest(ctx context.Context, occs []model.Occurrence, targetDate time.Time) string {
	var timed, allDay []string

	for _, occ := range occs {
		if IsAllDay(occ) {
			allDay = append(allDay, f.title(ctx, occ.Title, f.AllDayTitleLimit))
			continue
		}
		timed = append(timed, occ.Start.Format("15:04")+" "+f.title(ctx, occ.Title, f.TimedTitleLimit))
	}

	sort.Strings(allDay)
	sort.Strings(timed)

	header := "--- " + strings.ToUpper(targetDate.Format("January 02")) + " ---"
	lines := append(timed, allDay...)
	return header + "\n" + strings.Join(lines, "\n")
}

// title condenses a title to limit characters, via the summarizer when one
// is configured and falling back to plain truncation on any failure.
func (f *Formatter) title(ctx context.Context, title string, limit int) string {
	if f.Summarizer == nil {
		return summarize.Truncate(title, limit)
	}
	s, err := f.Summarizer.Summarize(ctx, title, limit)
	if err != nil {
		appLog.Warn("summarization failed, truncating", "title", title, "err", err)
		return summarize.Truncate(title, limit)
	}
	return s
}

// CalendarSubset serializes the occurrences as an iCalendar document,
// sorted by start instant. The input slice is sorted in place.
func CalendarSubset(occs []model.Occurrence) string {
	SortByStart(occs)

	cal := ical.NewCalendar()
	cal.SetProductId("-//vestacal//EN")

	for i, occ := range occs {
		ev := cal.AddEvent(fmt.Sprintf("%d-%s@vestacal", i, occ.Start.UTC().Format("20060102T150405Z")))
		ev.SetDtStampTime(occ.Start.UTC())
		ev.SetSummary(occ.Title)
		if occ.Location != "" {
			ev.SetLocation(occ.Location)
		}
		ev.SetStartAt(occ.Start)
		ev.SetEndAt(occ.End)
	}

	return cal.Serialize()
}
