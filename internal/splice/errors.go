package splice

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMeasures is returned when a splice is built without measures.
	ErrNoMeasures = errors.New("at least one measure is required")
	// ErrIntervalCount is returned when the number of intervals is not one
	// less than the number of measures.
	ErrIntervalCount = errors.New("interval count must be one less than measure count")
	// ErrIntervalOrder is returned for an interval whose start is not
	// strictly before its end.
	ErrIntervalOrder = errors.New("interval start must precede its end")
	// ErrIntervalOverlap is returned when an interval does not end strictly
	// before the next one starts.
	ErrIntervalOverlap = errors.New("intervals must be ascending and non-overlapping")
	// ErrNoIntervals is returned when single-base evaluation is attempted on
	// a splice without transition intervals.
	ErrNoIntervals = errors.New("single-base evaluation requires transition intervals")
	// ErrNoTransition is returned when no interval lies within the data's
	// date range.
	ErrNoTransition = errors.New("no transition interval within the data's date range")
	// ErrTooFewMeasures is returned when concatenation has fewer measures
	// than eras.
	ErrTooFewMeasures = errors.New("fewer measures than eras")
	// ErrNotDateAnchored is returned when a date-anchored evaluation reaches
	// a measure that cannot take a reference date.
	ErrNotDateAnchored = errors.New("measure does not support date-anchored evaluation")
	// ErrLengthMismatch is returned when a measure's output does not cover
	// the data's date axis.
	ErrLengthMismatch = errors.New("measure output length does not match the date axis")
)

// ValidationError identifies the constraint and position that failed.
type ValidationError struct {
	Field   string      `json:"field"`
	Index   int         `json:"index"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Err     error       `json:"-"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s[%d]: %s", ve.Field, ve.Index, ve.Message)
}

// Unwrap returns the sentinel error
func (ve *ValidationError) Unwrap() error {
	return ve.Err
}
