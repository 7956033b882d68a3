package pipeline

import (
	"context"
	"errors"
	"time"

	"vestacal/internal/ics"
	appLog "vestacal/internal/log"
	"vestacal/internal/model"
)

const (
	// DefaultFileDeadline bounds expansion+filtering per input file.
	DefaultFileDeadline = 5 * time.Second

	// DefaultLookAheadDays is the expansion horizon beyond the reference
	// date. 0 means only the reference date itself.
	DefaultLookAheadDays = 1

	// DefaultTimezone is substituted for empty or unresolvable timezone
	// identifiers.
	DefaultTimezone = "America/Los_Angeles"
)

// OccurrenceIterator is the consumer-side view of a recurrence expansion:
// a lazy, chronologically ordered, interruptible stream.
type OccurrenceIterator interface {
	Next(ctx context.Context) (model.RawOccurrence, bool)
	Err() error
}

// Expander turns a parsed calendar into an occurrence stream beginning at
// or after the given instant. The production implementation is backed by
// the RRULE engine in internal/ics; tests substitute their own.
type Expander interface {
	Expand(cal *ics.SourceCalendar, after time.Time) OccurrenceIterator
}

type rruleExpander struct{}

func (rruleExpander) Expand(cal *ics.SourceCalendar, after time.Time) OccurrenceIterator {
	return ics.Expand(cal, after)
}

// ResolveTimezone maps a timezone identifier to a location, substituting
// fallback (and ultimately DefaultTimezone) when the identifier is empty
// or unknown. It never fails: a bad identifier is a user-input problem
// reported once, not a pipeline error.
func ResolveTimezone(identifier, fallback string) *time.Location {
	if fallback == "" {
		fallback = DefaultTimezone
	}
	if identifier == "" {
		identifier = fallback
	}
	loc, err := time.LoadLocation(identifier)
	if err == nil {
		return loc
	}
	appLog.Warn("unknown timezone, using fallback", "timezone", identifier, "fallback", fallback)
	if loc, err = time.LoadLocation(fallback); err == nil {
		return loc
	}
	return time.UTC
}

// ParseTargetDate parses a YYYY-MM-DD target date argument.
func ParseTargetDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, &InvalidDateError{Value: s}
	}
	return t, nil
}

// Runner executes the per-file extraction pipeline: load → expand →
// normalize → window-filter, then the cross-file exact-date filter.
type Runner struct {
	Expander      Expander
	Location      *time.Location
	LookAheadDays int
	FileDeadline  time.Duration

	// Now is the reference clock; overridable in tests. Defaults to
	// time.Now.
	Now func() time.Time
}

// NewRunner builds a Runner with the production RRULE-backed expander.
func NewRunner(loc *time.Location, lookAheadDays int, deadline time.Duration) *Runner {
	if loc == nil {
		loc = time.UTC
	}
	if lookAheadDays < 0 {
		lookAheadDays = DefaultLookAheadDays
	}
	if deadline <= 0 {
		deadline = DefaultFileDeadline
	}
	return &Runner{
		Expander:      rruleExpander{},
		Location:      loc,
		LookAheadDays: lookAheadDays,
		FileDeadline:  deadline,
		Now:           time.Now,
	}
}

// Result is the outcome of one run: the occurrences retained for the
// target date plus the file-scoped failures that were skipped over.
type Result struct {
	Occurrences []model.Occurrence
	Failures    []error
}

// Run processes all input files in sequence and filters the accumulated
// occurrences down to targetDate (YYYY-MM-DD).
//
// A malformed targetDate aborts before any file is touched. Per-file
// parse errors and timeouts are recorded in Result.Failures and the run
// continues; ErrAllFilesFailed is returned only when no file succeeded.
func (r *Runner) Run(ctx context.Context, paths []string, targetDate string) (Result, error) {
	var res Result

	target, err := ParseTargetDate(targetDate)
	if err != nil {
		return res, err
	}

	now := r.Now().In(r.Location)
	reference := model.BeginOfDay(now)
	windowEnd := reference.AddDate(0, 0, r.LookAheadDays).Format(time.DateOnly)

	appLog.Debug("starting extraction",
		"files", len(paths),
		"timezone", r.Location.String(),
		"reference_date", reference.Format(time.DateOnly),
		"window_end", windowEnd,
	)

	for _, path := range paths {
		occs, ferr := r.processFile(ctx, path, reference, windowEnd)
		res.Occurrences = append(res.Occurrences, occs...)
		if ferr != nil {
			res.Failures = append(res.Failures, ferr)
			appLog.Warn("file processing failed, continuing", "path", path, "err", ferr)
		}
	}

	res.Occurrences = filterByDate(res.Occurrences, target.Format(time.DateOnly))

	appLog.Debug("extraction finished",
		"retained", len(res.Occurrences),
		"failures", len(res.Failures),
	)

	if len(paths) > 0 && len(res.Failures) == len(paths) {
		return res, ErrAllFilesFailed
	}
	return res, nil
}

// processFile runs expand+normalize+filter for one file under its own
// deadline. The deadline is disarmed on every exit path so it can never
// fire during a later file's processing. On timeout the occurrences
// accumulated so far are returned alongside a TimeoutError.
func (r *Runner) processFile(ctx context.Context, path string, reference time.Time, windowEnd string) ([]model.Occurrence, error) {
	cal, err := ics.LoadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	fctx, cancel := context.WithTimeout(ctx, r.FileDeadline)
	defer cancel()

	it := r.Expander.Expand(cal, reference)

	var out []model.Occurrence
	for {
		raw, ok := it.Next(fctx)
		if !ok {
			break
		}
		occ := ics.Normalize(raw, r.Location)

		// Early exit: the stream is chronologically ordered, so the first
		// occurrence past the window means everything after it is too.
		if occ.StartDate() > windowEnd {
			appLog.Debug("reached occurrence beyond window, stopping", "path", path, "start", occ.StartDate())
			break
		}
		out = append(out, occ)
	}

	if err := it.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return out, &TimeoutError{Path: path}
		}
		return out, err
	}
	return out, nil
}

// filterByDate keeps only occurrences whose normalized start date equals
// target (YYYY-MM-DD).
func filterByDate(occs []model.Occurrence, target string) []model.Occurrence {
	var out []model.Occurrence
	for _, occ := range occs {
		if occ.StartDate() == target {
			out = append(out, occ)
		}
	}
	return out
}
