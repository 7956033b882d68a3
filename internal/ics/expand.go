package ics

import (
	"container/heap"
	"context"
	"time"

	"github.com/teambition/rrule-go"

	appLog "vestacal/internal/log"
	"vestacal/internal/model"
)

// Expand produces a lazy, strictly start-ordered stream of raw occurrences
// for every event in cal, beginning at or after the calendar date of
// `after`. Non-recurring events contribute one occurrence; events with an
// RRULE are expanded through the recurrence engine (honoring EXDATE and
// RECURRENCE-ID overrides).
//
// The stream is non-restartable and may be abandoned at any point; the
// iterator only advances the underlying per-event generators as far as the
// consumer pulls, so an unbounded rule is never expanded exhaustively.
func Expand(cal *SourceCalendar, after time.Time) *Iterator {
	afterDate := model.CalendarDateOf(after).Time

	// Overrides are matched against base instances by UID + RECURRENCE-ID.
	overridesByUID := make(map[string][]ParsedEvent)
	var bases []ParsedEvent
	for _, ev := range cal.Events {
		if ev.IsOverride && ev.RecurrenceID != nil && ev.UID != "" {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
			continue
		}
		bases = append(bases, ev)
	}

	it := &Iterator{}
	for _, ev := range bases {
		st := newEventStream(ev, overridesByUID[ev.UID], afterDate)
		if st == nil {
			continue
		}
		it.pending = append(it.pending, st)
	}
	return it
}

// Iterator is a chronological merge over per-event occurrence streams.
// Next may be interrupted via the context at any pull without corrupting
// already-consumed state. All generator work, including the initial skip
// past pre-reference occurrences, happens inside Next so the caller's
// deadline bounds it.
type Iterator struct {
	pending []*eventStream // streams not yet advanced to their first occurrence
	primed  bool
	streams streamHeap
	err     error
	done    bool
}

// Next returns the next occurrence in chronological start order. It
// returns false when the stream is exhausted or the context is done; in
// the latter case Err reports the context's error.
func (it *Iterator) Next(ctx context.Context) (model.RawOccurrence, bool) {
	if it.done {
		return model.RawOccurrence{}, false
	}
	if err := ctx.Err(); err != nil {
		return it.terminate(err)
	}
	if !it.primed {
		for _, st := range it.pending {
			ok, err := st.advance(ctx)
			if err != nil {
				return it.terminate(err)
			}
			if ok {
				it.streams = append(it.streams, st)
			}
		}
		it.pending = nil
		it.primed = true
		heap.Init(&it.streams)
	}
	if it.streams.Len() == 0 {
		it.done = true
		return model.RawOccurrence{}, false
	}

	st := it.streams[0]
	occ := st.occurrence()
	ok, err := st.advance(ctx)
	switch {
	case err != nil:
		// Hand out the occurrence already materialized; the next pull
		// reports the interruption.
		it.err = err
		it.done = true
	case ok:
		heap.Fix(&it.streams, 0)
	default:
		heap.Pop(&it.streams)
	}
	return occ, true
}

func (it *Iterator) terminate(err error) (model.RawOccurrence, bool) {
	it.err = err
	it.done = true
	return model.RawOccurrence{}, false
}

// Err returns the error that terminated the stream early, if any.
// A normally exhausted stream reports nil.
func (it *Iterator) Err() error {
	return it.err
}

// eventStream yields the successive occurrence start stamps of one event.
type eventStream struct {
	ev        ParsedEvent
	overrides []ParsedEvent
	afterDate time.Time // midnight UTC; occurrences before this date are skipped

	// next yields successive start instants in the event's own timezone.
	next func() (time.Time, bool)

	head model.Stamp // current start stamp, valid after advance() returns true
}

// newEventStream builds the per-event generator, or nil if the event
// cannot be expanded (e.g. malformed RRULE; logged and skipped so one bad
// event never sinks the file).
func newEventStream(ev ParsedEvent, overrides []ParsedEvent, afterDate time.Time) *eventStream {
	st := &eventStream{ev: ev, overrides: overrides, afterDate: afterDate}

	if ev.RawRRule == "" {
		fired := false
		st.next = func() (time.Time, bool) {
			if fired {
				return time.Time{}, false
			}
			fired = true
			return ev.Start, true
		}
		return st
	}

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Warn("skipping event with malformed RRULE", "uid", ev.UID, "rrule", ev.RawRRule, "err", err)
		return nil
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		// Align EXDATE location with the event's start for exact matching.
		set.ExDate(ex.In(ev.Start.Location()))
	}

	st.next = set.Iterator()
	return st
}

// advance pulls the next start whose calendar date is at or after afterDate
// into head, returning false when the generator is exhausted. The skip loop
// checks the context on every step; a rule that generates arbitrarily many
// occurrences before the reference date would otherwise run unbounded.
func (st *eventStream) advance(ctx context.Context) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		t, ok := st.next()
		if !ok {
			return false, nil
		}
		st.head = st.startStamp(t)
		headDate := model.CalendarDateOf(st.head.Time).Time
		if !headDate.Before(st.afterDate) {
			return true, nil
		}
	}
}

func (st *eventStream) startStamp(t time.Time) model.Stamp {
	if st.ev.AllDay {
		return model.CalendarDateOf(t)
	}
	return model.NewPointInTime(t)
}

// occurrence materializes the stream's current head as a RawOccurrence,
// substituting an override if one targets this instance.
func (st *eventStream) occurrence() model.RawOccurrence {
	ev := st.ev
	start := st.head
	end := st.endStamp(start)

	if ov, ok := st.findOverride(start); ok {
		ev = ov
		if ev.AllDay {
			start = model.CalendarDateOf(ev.Start)
			end = model.CalendarDateOf(ev.End)
		} else {
			start = model.NewPointInTime(ev.Start)
			end = model.NewPointInTime(ev.End)
		}
	}

	return model.RawOccurrence{
		Title:       ev.Summary,
		Location:    ev.Location,
		Start:       start,
		End:         end,
		IsRecurring: st.ev.RawRRule != "",
	}
}

// endStamp derives the occurrence's end from the source event: timed
// events keep their original duration, all-day events keep their day span.
func (st *eventStream) endStamp(start model.Stamp) model.Stamp {
	if st.ev.AllDay {
		spanDays := daysBetween(st.ev.Start, st.ev.End)
		return model.CalendarDateOf(start.Time.AddDate(0, 0, spanDays))
	}
	dur := st.ev.End.Sub(st.ev.Start)
	return model.NewPointInTime(start.Time.Add(dur))
}

// findOverride looks for an override whose RECURRENCE-ID matches the given
// occurrence start. All-day instances match by calendar date, timed ones
// by exact instant.
func (st *eventStream) findOverride(start model.Stamp) (ParsedEvent, bool) {
	for _, ov := range st.overrides {
		if ov.RecurrenceID == nil {
			continue
		}
		if st.ev.AllDay {
			if model.CalendarDateOf(*ov.RecurrenceID).Time.Equal(start.Time) {
				return ov, true
			}
			continue
		}
		if ov.RecurrenceID.In(start.Time.Location()).Equal(start.Time) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad) / (24 * time.Hour))
}

// streamHeap orders event streams by their head start instant so the merge
// yields a globally chronological sequence.
type streamHeap []*eventStream

func (h streamHeap) Len() int { return len(h) }

func (h streamHeap) Less(i, j int) bool {
	return h[i].head.Instant().Before(h[j].head.Instant())
}

func (h streamHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *streamHeap) Push(x any) { *h = append(*h, x.(*eventStream)) }

func (h *streamHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
