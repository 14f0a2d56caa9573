package splice

import (
	"time"

	"cpikit/internal/cpi"
)

// Measure is an inflation measure: a function from CPI data to a
// month-over-month percent change series.
type Measure interface {
	Name() string
	Tag() string
	// EvaluateBase returns one value per period of b.
	EvaluateBase(b *cpi.VarCPIBase) ([]float64, error)
	// Evaluate returns one value per period of cs, across all eras.
	Evaluate(cs *cpi.CountryStructure) ([]float64, error)
}

// DateAnchored is implemented by measures whose computation depends on a
// reference date, such as rolling-window measures.
type DateAnchored interface {
	Measure
	EvaluateAt(cs *cpi.CountryStructure, date time.Time) ([]float64, error)
}

// Ensemble is implemented by measures that are a weighted combination of
// other measures. The components report expands them.
type Ensemble interface {
	Components() []Measure
	Weights() []float64
}

// Interval is a transition window between two consecutive measures. Only
// the month of Start and End is significant.
type Interval struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// NewInterval returns the interval between the months of start and end.
func NewInterval(start, end time.Time) Interval {
	return Interval{Start: cpi.Month(start), End: cpi.Month(end)}
}

// IsZero reports whether the interval is unset.
func (iv Interval) IsZero() bool {
	return iv.Start.IsZero() && iv.End.IsZero()
}

// Within reports whether both endpoints fall inside [first, last].
func (iv Interval) Within(first, last time.Time) bool {
	s, e := cpi.MonthOrdinal(iv.Start), cpi.MonthOrdinal(iv.End)
	return s >= cpi.MonthOrdinal(first) && e <= cpi.MonthOrdinal(last)
}

// String formats the interval as "2006-01..2006-01".
func (iv Interval) String() string {
	if iv.IsZero() {
		return ""
	}
	return iv.Start.Format("2006-01") + ".." + iv.End.Format("2006-01")
}

// RampDown returns, for every date, 1 up to the interval start, 0 from the
// interval end on, and a linear decline in between. Dates are compared by
// month.
func RampDown(dates []time.Time, iv Interval) []float64 {
	s, e := cpi.MonthOrdinal(iv.Start), cpi.MonthOrdinal(iv.End)
	w := make([]float64, len(dates))
	for i, d := range dates {
		m := cpi.MonthOrdinal(d)
		switch {
		case m <= s:
			w[i] = 1
		case m >= e:
			w[i] = 0
		default:
			w[i] = float64(e-m) / float64(e-s)
		}
	}
	return w
}

// RampUp is the complement of RampDown.
func RampUp(dates []time.Time, iv Interval) []float64 {
	w := RampDown(dates, iv)
	for i := range w {
		w[i] = 1 - w[i]
	}
	return w
}
