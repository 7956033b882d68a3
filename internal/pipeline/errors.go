package pipeline

import (
	"errors"
	"fmt"
)

// ParseError marks an input file that could not be read or parsed. It is
// file-scoped and recoverable: the run skips the file and continues.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TimeoutError marks a file whose expansion exceeded its deadline. The
// occurrences accumulated before the deadline are kept.
type TimeoutError struct {
	Path string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("expansion timed out for %s", e.Path)
}

// InvalidDateError marks a malformed target-date argument. It is
// run-scoped and fatal: no file is processed.
type InvalidDateError struct {
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", e.Value)
}

// ErrAllFilesFailed is returned when every input file failed to produce
// any occurrences due to file-scoped errors.
var ErrAllFilesFailed = errors.New("all input files failed")
