package splice

import (
	"fmt"
	"log/slog"
	"strings"

	"cpikit/internal/cpi"
)

// NameSeparator joins the constituent names and tags of a splice.
const NameSeparator = "--"

// InflationSplice joins several inflation measures into one series. It is
// immutable once built.
type InflationSplice struct {
	measures  []Measure
	intervals []Interval
	name      string
	tag       string
	logger    *slog.Logger
}

// Option configures an InflationSplice.
type Option func(*InflationSplice)

// WithIntervals sets the transition intervals, one between each pair of
// consecutive measures. Without this option the splice concatenates.
func WithIntervals(intervals ...Interval) Option {
	return func(s *InflationSplice) {
		s.intervals = make([]Interval, len(intervals))
		for i, iv := range intervals {
			s.intervals[i] = NewInterval(iv.Start, iv.End)
		}
	}
}

// WithName overrides the display name.
func WithName(name string) Option {
	return func(s *InflationSplice) { s.name = name }
}

// WithTag overrides the display tag.
func WithTag(tag string) Option {
	return func(s *InflationSplice) { s.tag = tag }
}

// WithLogger sets the logger used for evaluation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *InflationSplice) { s.logger = logger }
}

// New validates and builds a splice of measures.
func New(measures []Measure, opts ...Option) (*InflationSplice, error) {
	s := &InflationSplice{measures: append([]Measure(nil), measures...)}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *InflationSplice) validate() error {
	if len(s.measures) == 0 {
		return ErrNoMeasures
	}
	for i, m := range s.measures {
		if m == nil {
			return &ValidationError{Field: "measures", Index: i, Message: "measure is nil", Err: ErrNoMeasures}
		}
	}
	if s.intervals == nil {
		return nil
	}

	if len(s.intervals) != len(s.measures)-1 {
		return &ValidationError{
			Field:   "intervals",
			Index:   len(s.intervals),
			Message: fmt.Sprintf("%d measures need %d intervals, got %d", len(s.measures), len(s.measures)-1, len(s.intervals)),
			Err:     ErrIntervalCount,
		}
	}
	for i, iv := range s.intervals {
		if cpi.MonthsBetween(iv.Start, iv.End) <= 0 {
			return &ValidationError{
				Field:   "intervals",
				Index:   i,
				Message: fmt.Sprintf("start %s is not before end %s", iv.Start.Format("2006-01"), iv.End.Format("2006-01")),
				Value:   iv.String(),
				Err:     ErrIntervalOrder,
			}
		}
		if i > 0 && cpi.MonthsBetween(s.intervals[i-1].End, iv.Start) <= 0 {
			return &ValidationError{
				Field:   "intervals",
				Index:   i,
				Message: fmt.Sprintf("start %s does not follow previous end %s", iv.Start.Format("2006-01"), s.intervals[i-1].End.Format("2006-01")),
				Value:   iv.String(),
				Err:     ErrIntervalOverlap,
			}
		}
	}
	return nil
}

// Name returns the display name: the override if set, otherwise the
// constituent names joined by NameSeparator.
func (s *InflationSplice) Name() string {
	if s.name != "" {
		return s.name
	}
	names := make([]string, len(s.measures))
	for i, m := range s.measures {
		names[i] = m.Name()
	}
	return strings.Join(names, NameSeparator)
}

// Tag returns the display tag, built like Name.
func (s *InflationSplice) Tag() string {
	if s.tag != "" {
		return s.tag
	}
	tags := make([]string, len(s.measures))
	for i, m := range s.measures {
		tags[i] = m.Tag()
	}
	return strings.Join(tags, NameSeparator)
}

// Measures returns a copy of the constituent measures.
func (s *InflationSplice) Measures() []Measure {
	return append([]Measure(nil), s.measures...)
}

// Intervals returns a copy of the transition intervals, nil for a
// concatenating splice.
func (s *InflationSplice) Intervals() []Interval {
	if s.intervals == nil {
		return nil
	}
	return append([]Interval(nil), s.intervals...)
}

// HasIntervals reports whether the splice blends over transition intervals.
func (s *InflationSplice) HasIntervals() bool {
	return s.intervals != nil
}
