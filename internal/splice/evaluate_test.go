package splice

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cpikit/internal/cpi"
	"cpikit/internal/shared/testutil"
)

func rampSplice(t *testing.T, ms []Measure) *InflationSplice {
	t.Helper()
	s, err := New(ms, WithIntervals(
		NewInterval(month(2011, time.November), month(2012, time.March)),
		NewInterval(month(2013, time.November), month(2014, time.March)),
	))
	require.NoError(t, err)
	return s
}

func TestEvaluateRamp(t *testing.T) {
	cs := threeEras(t)
	s := rampSplice(t, measures(1, 2, 3))

	out, err := s.Evaluate(cs)
	require.NoError(t, err)
	require.Len(t, out, 72)

	at := func(d time.Time) float64 {
		i, ok := cpi.IndexOfDate(cs.Dates(), d)
		require.True(t, ok)
		return out[i]
	}

	// first measure untouched before and at the first interval start
	assert.InDelta(t, 1.0, at(jan2010), 1e-12)
	assert.InDelta(t, 1.0, at(month(2011, time.November)), 1e-12)
	// midpoint: mean of 1*2 and 2*2
	assert.InDelta(t, 3.0, at(jan2012), 1e-12)
	// interval end: second measure only
	assert.InDelta(t, 4.0, at(month(2012, time.March)), 1e-12)
	assert.InDelta(t, 4.0, at(month(2013, time.November)), 1e-12)
	// second midpoint: mean of 2*3 and 3*3
	assert.InDelta(t, 7.5, at(jan2014), 1e-12)
	assert.InDelta(t, 9.0, at(month(2014, time.March)), 1e-12)
	assert.InDelta(t, 9.0, at(month(2015, time.December)), 1e-12)
}

func TestEvaluateBase(t *testing.T) {
	s := rampSplice(t, measures(1, 2, 3))

	t.Run("contained interval", func(t *testing.T) {
		b := constantBase(t, month(2013, time.January), 24, 1)
		out, err := s.EvaluateBase(b)
		require.NoError(t, err)
		require.Len(t, out, 24)

		// starts from the measure before the contained interval
		assert.InDelta(t, 2.0, out[0], 1e-12)
		assert.InDelta(t, 2.0, out[10], 1e-12)
		assert.InDelta(t, 2.5, out[12], 1e-12)
		assert.InDelta(t, 3.0, out[14], 1e-12)
		assert.InDelta(t, 3.0, out[23], 1e-12)
	})

	t.Run("both intervals", func(t *testing.T) {
		b := constantBase(t, jan2010, 72, 1)
		out, err := s.EvaluateBase(b)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, out[0], 1e-12)
		assert.InDelta(t, 1.5, out[24], 1e-12)
		assert.InDelta(t, 2.5, out[48], 1e-12)
		assert.InDelta(t, 3.0, out[71], 1e-12)
	})

	t.Run("no interval inside", func(t *testing.T) {
		b := constantBase(t, jan2012, 24, 1)
		_, err := s.EvaluateBase(b)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNoTransition))
	})

	t.Run("concatenating splice", func(t *testing.T) {
		concat, err := New(measures(1, 2))
		require.NoError(t, err)
		_, err = concat.EvaluateBase(constantBase(t, jan2010, 12, 1))
		assert.True(t, errors.Is(err, ErrNoIntervals))
	})
}

func TestEvaluateConcatenation(t *testing.T) {
	cs := threeEras(t)

	t.Run("one measure per era", func(t *testing.T) {
		s, err := New(measures(1, 2, 3))
		require.NoError(t, err)

		out, err := s.Evaluate(cs)
		require.NoError(t, err)
		require.Len(t, out, cs.Periods())

		for i, m := range s.Measures() {
			full, err := m.Evaluate(cs)
			require.NoError(t, err)
			off, n := cs.Span(i)
			assert.Equal(t, full[off:off+n], out[off:off+n], "era %d", i)
		}
		assert.Equal(t, 1.0, out[23])
		assert.Equal(t, 4.0, out[24])
		assert.Equal(t, 9.0, out[48])
	})

	t.Run("too few measures", func(t *testing.T) {
		s, err := New(measures(1, 2))
		require.NoError(t, err)

		_, err = s.Evaluate(cs)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrTooFewMeasures))
	})

	t.Run("extra measures", func(t *testing.T) {
		logger, handler := testutil.NewTestLogger(t)
		s, err := New(measures(1, 2, 3, 4), WithLogger(logger))
		require.NoError(t, err)

		out, err := s.Evaluate(cs)
		require.NoError(t, err)
		assert.Len(t, out, cs.Periods())
		testutil.AssertLogContains(t, handler, slog.LevelWarn, "more measures than eras")
		testutil.AssertLogAttr(t, handler, "measures", int64(4))
		testutil.AssertLogAttr(t, handler, "eras", int64(3))
	})

	t.Run("short output", func(t *testing.T) {
		ms := measures(1, 2, 3)
		ms[1] = shortMeasure{scaledMeasure{name: "S", factor: 1}}
		s, err := New(ms)
		require.NoError(t, err)

		_, err = s.Evaluate(cs)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrLengthMismatch))
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, 1, ve.Index)
	})
}

func TestEvaluateAt(t *testing.T) {
	cs := threeEras(t)
	cutoff := month(2012, time.June)

	t.Run("date anchored measures", func(t *testing.T) {
		s, err := New([]Measure{
			cutoffMeasure{scaledMeasure{name: "A", factor: 1}},
			cutoffMeasure{scaledMeasure{name: "B", factor: 2}},
			cutoffMeasure{scaledMeasure{name: "C", factor: 3}},
		})
		require.NoError(t, err)

		out, err := s.EvaluateAt(cs, cutoff)
		require.NoError(t, err)
		assert.Equal(t, 1.0, out[0])
		assert.Equal(t, 4.0, out[29])
		assert.Equal(t, 0.0, out[30])
		assert.Equal(t, 0.0, out[71])
	})

	t.Run("plain measure", func(t *testing.T) {
		s, err := New([]Measure{
			cutoffMeasure{scaledMeasure{name: "A", factor: 1}},
			scaledMeasure{name: "B", factor: 2},
			cutoffMeasure{scaledMeasure{name: "C", factor: 3}},
		})
		require.NoError(t, err)

		_, err = s.EvaluateAt(cs, cutoff)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotDateAnchored))
		assert.Contains(t, err.Error(), "measure 1")
	})
}

func TestCompute(t *testing.T) {
	cs := threeEras(t)
	s, err := New(measures(1, 1, 1))
	require.NoError(t, err)

	mom, err := s.Compute(cs, MonthOverMonth)
	require.NoError(t, err)
	require.Len(t, mom, 72)

	idx, err := s.Compute(cs, IndexLevel)
	require.NoError(t, err)
	require.Len(t, idx, 72)
	assert.InDelta(t, 101.0, idx[0], 1e-9)
	assert.InDelta(t, 100*1.01*1.01, idx[1], 1e-9)

	yoy, err := s.Compute(cs, YearOverYear)
	require.NoError(t, err)
	require.Len(t, yoy, 61)
	// a year at +1% a month
	assert.InDelta(t, 100*(pow(1.01, 12)-1), yoy[0], 1e-9)
	// a year at +3% a month
	assert.InDelta(t, 100*(pow(1.03, 12)-1), yoy[60], 1e-9)

	_, err = s.Compute(cs, Mode(42))
	assert.Error(t, err)
}

func TestComputeAt(t *testing.T) {
	cs := threeEras(t)
	s, err := New([]Measure{
		cutoffMeasure{scaledMeasure{name: "A", factor: 1}},
		cutoffMeasure{scaledMeasure{name: "B", factor: 1}},
		cutoffMeasure{scaledMeasure{name: "C", factor: 1}},
	})
	require.NoError(t, err)

	idx, err := s.ComputeAt(cs, IndexLevel, month(2010, time.December))
	require.NoError(t, err)
	// flat after the reference date
	assert.InDelta(t, idx[11], idx[71], 1e-9)
	assert.InDelta(t, 100*pow(1.01, 12), idx[11], 1e-9)
}

func TestNestedSplice(t *testing.T) {
	cs := threeEras(t)
	inner, err := New(measures(1, 2), WithIntervals(
		NewInterval(month(2011, time.November), month(2012, time.March)),
	))
	require.NoError(t, err)

	outer, err := New([]Measure{inner, scaledMeasure{name: "C", factor: 3}}, WithIntervals(
		NewInterval(month(2013, time.November), month(2014, time.March)),
	))
	require.NoError(t, err)

	nested, err := outer.Evaluate(cs)
	require.NoError(t, err)

	flat, err := rampSplice(t, measures(1, 2, 3)).Evaluate(cs)
	require.NoError(t, err)
	assert.InDeltaSlice(t, flat, nested, 1e-12)
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{MonthOverMonth, IndexLevel, YearOverYear} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("quarterly")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Mode(9).String())
}

func TestFprintComponents(t *testing.T) {
	s := rampSplice(t, measures(1, 2, 3))
	var buf bytes.Buffer
	require.NoError(t, s.FprintComponents(&buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Measure")
	assert.Contains(t, lines[1], "2011-11..2012-03")
	assert.Contains(t, lines[2], "2013-11..2014-03")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[3]), "-"))
}

// lopsidedEnsemble reports fewer weights than components.
type lopsidedEnsemble struct {
	scaledMeasure
}

func (lopsidedEnsemble) Components() []Measure {
	return []Measure{scaledMeasure{"A", 1}, scaledMeasure{"B", 2}}
}

func (lopsidedEnsemble) Weights() []float64 { return []float64{1} }

func TestComponentsEnsembleWeightMismatch(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	s, err := New([]Measure{lopsidedEnsemble{scaledMeasure{"Mix", 1}}}, WithLogger(logger))
	require.NoError(t, err)

	var rows []ComponentRow
	require.NotPanics(t, func() { rows = s.Components() })
	require.Len(t, rows, 1)
	assert.Equal(t, "Mix", rows[0].Measure)
	assert.Equal(t, 1.0, rows[0].Weight)

	testutil.AssertLogContains(t, handler, slog.LevelWarn, "ensemble weights do not match its components, reporting it as one measure")
	testutil.AssertLogAttr(t, handler, "weights", int64(1))
}

func pow(x float64, n int) float64 {
	out := 1.0
	for i := 0; i < n; i++ {
		out *= x
	}
	return out
}
