package splice

import (
	"fmt"
	"log/slog"
	"time"

	"cpikit/internal/cpi"
	"cpikit/internal/metrics"
)

// Mode selects the kind of series a splice evaluation returns.
type Mode int

const (
	// MonthOverMonth returns percent changes against the previous month.
	MonthOverMonth Mode = iota
	// IndexLevel returns the month-over-month series chained from 100.
	IndexLevel
	// YearOverYear returns 12-month changes of the chained index; the
	// first 11 periods are dropped.
	YearOverYear
)

// String returns the short name of the mode.
func (m Mode) String() string {
	switch m {
	case MonthOverMonth:
		return "mom"
	case IndexLevel:
		return "index"
	case YearOverYear:
		return "yoy"
	default:
		return "unknown"
	}
}

// ParseMode parses the short name returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "mom":
		return MonthOverMonth, nil
	case "index":
		return IndexLevel, nil
	case "yoy":
		return YearOverYear, nil
	}
	return 0, fmt.Errorf("unknown evaluation mode %q", s)
}

// EvaluateBase blends the measures over a single base period. Only the
// transition intervals lying entirely inside the base's dates are applied;
// if there are none the call fails with ErrNoTransition.
func (s *InflationSplice) EvaluateBase(b *cpi.VarCPIBase) ([]float64, error) {
	if s.intervals == nil {
		return nil, ErrNoIntervals
	}

	first, last := b.Dates[0], b.Dates[len(b.Dates)-1]
	var active []int
	for k, iv := range s.intervals {
		if iv.Within(first, last) {
			active = append(active, k)
		}
	}
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: %s..%s", ErrNoTransition, first.Format("2006-01"), last.Format("2006-01"))
	}

	return s.blend(b.Dates, active, func(m Measure) ([]float64, error) {
		return m.EvaluateBase(b)
	})
}

// Evaluate returns the spliced month-over-month series over every era of
// cs. Without intervals, measure i supplies the values of era i.
func (s *InflationSplice) Evaluate(cs *cpi.CountryStructure) ([]float64, error) {
	return s.evaluate(cs, func(m Measure) ([]float64, error) {
		return m.Evaluate(cs)
	})
}

// EvaluateAt is Evaluate with a reference date forwarded to every measure.
// Every constituent must implement DateAnchored.
func (s *InflationSplice) EvaluateAt(cs *cpi.CountryStructure, date time.Time) ([]float64, error) {
	return s.evaluate(cs, func(m Measure) ([]float64, error) {
		dm, ok := m.(DateAnchored)
		if !ok {
			return nil, fmt.Errorf("%s: %w", m.Name(), ErrNotDateAnchored)
		}
		return dm.EvaluateAt(cs, date)
	})
}

// Compute evaluates the splice over cs and returns the series for mode.
func (s *InflationSplice) Compute(cs *cpi.CountryStructure, mode Mode) ([]float64, error) {
	out, err := derive(s.Evaluate(cs))(mode)
	metrics.SpliceEvaluated(mode.String(), err)
	return out, err
}

// ComputeAt is Compute with a reference date forwarded to every measure.
func (s *InflationSplice) ComputeAt(cs *cpi.CountryStructure, mode Mode, date time.Time) ([]float64, error) {
	out, err := derive(s.EvaluateAt(cs, date))(mode)
	metrics.SpliceEvaluated(mode.String(), err)
	return out, err
}

// derive turns a month-over-month result into the series of a mode.
func derive(mom []float64, err error) func(Mode) ([]float64, error) {
	return func(mode Mode) ([]float64, error) {
		if err != nil {
			return nil, err
		}
		switch mode {
		case MonthOverMonth:
			return mom, nil
		case IndexLevel:
			return cpi.Capitalize(mom, cpi.DefaultBaseIndex), nil
		case YearOverYear:
			idx := cpi.Capitalize(mom, cpi.DefaultBaseIndex)
			return cpi.VarInterannual(idx, cpi.DefaultBaseIndex), nil
		default:
			return nil, fmt.Errorf("unknown evaluation mode %d", int(mode))
		}
	}
}

func (s *InflationSplice) evaluate(cs *cpi.CountryStructure, eval func(Measure) ([]float64, error)) ([]float64, error) {
	if s.intervals == nil {
		return s.concatenate(cs, eval)
	}
	active := make([]int, len(s.intervals))
	for k := range active {
		active[k] = k
	}
	return s.blend(cs.Dates(), active, eval)
}

// concatenate takes era i's slice of measure i's output.
func (s *InflationSplice) concatenate(cs *cpi.CountryStructure, eval func(Measure) ([]float64, error)) ([]float64, error) {
	eras := cs.Eras()
	if len(s.measures) < eras {
		return nil, &ValidationError{
			Field:   "measures",
			Index:   len(s.measures),
			Message: fmt.Sprintf("%d measures for %d eras", len(s.measures), eras),
			Err:     ErrTooFewMeasures,
		}
	}
	if len(s.measures) > eras {
		s.logger.Warn("more measures than eras, ignoring the extra measures",
			slog.String("splice", s.Name()),
			slog.Int("measures", len(s.measures)),
			slog.Int("eras", eras),
		)
	}

	total := cs.Periods()
	out := make([]float64, 0, total)
	for i := 0; i < eras; i++ {
		f, err := eval(s.measures[i])
		if err != nil {
			return nil, fmt.Errorf("evaluate measure %d: %w", i, err)
		}
		if len(f) != total {
			return nil, lengthError(i, len(f), total)
		}
		off, n := cs.Span(i)
		out = append(out, f[off:off+n]...)
	}
	return out, nil
}

// blend applies the intervals listed in active, in order, starting from the
// measure that precedes the first of them.
func (s *InflationSplice) blend(dates []time.Time, active []int, eval func(Measure) ([]float64, error)) ([]float64, error) {
	first := 0
	if len(active) > 0 {
		first = active[0]
	}

	f, err := s.output(first, len(dates), eval)
	if err != nil {
		return nil, err
	}
	out := append([]float64(nil), f...)

	for _, k := range active {
		next, err := s.output(k+1, len(dates), eval)
		if err != nil {
			return nil, err
		}
		down := RampDown(dates, s.intervals[k])
		for i := range out {
			out[i] = out[i]*down[i] + next[i]*(1-down[i])
		}
	}
	return out, nil
}

func (s *InflationSplice) output(i, periods int, eval func(Measure) ([]float64, error)) ([]float64, error) {
	f, err := eval(s.measures[i])
	if err != nil {
		return nil, fmt.Errorf("evaluate measure %d: %w", i, err)
	}
	if len(f) != periods {
		return nil, lengthError(i, len(f), periods)
	}
	return f, nil
}

func lengthError(i, got, want int) error {
	return &ValidationError{
		Field:   "measures",
		Index:   i,
		Message: fmt.Sprintf("output has %d values, date axis has %d", got, want),
		Err:     ErrLengthMismatch,
	}
}
