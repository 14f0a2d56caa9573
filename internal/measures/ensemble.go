package measures

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"cpikit/internal/cpi"
	"cpikit/internal/splice"
)

var (
	// ErrEmptyEnsemble is returned when an ensemble has no components.
	ErrEmptyEnsemble = errors.New("ensemble needs at least one component")
	// ErrEnsembleWeights is returned when weights do not match the
	// components or do not sum to a positive total.
	ErrEnsembleWeights = errors.New("invalid ensemble weights")
)

// Ensemble is a fixed-weight average of other measures. Weights are
// normalized at construction.
type Ensemble struct {
	components []splice.Measure
	weights    []float64
	name       string
}

// NewEnsemble combines components with the given weights. Passing no
// weights averages the components equally.
func NewEnsemble(name string, components []splice.Measure, weights ...float64) (*Ensemble, error) {
	if len(components) == 0 {
		return nil, ErrEmptyEnsemble
	}
	if len(weights) == 0 {
		weights = make([]float64, len(components))
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != len(components) {
		return nil, fmt.Errorf("%w: %d weights for %d components", ErrEnsembleWeights, len(weights), len(components))
	}

	var total float64
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w: weight %d is negative", ErrEnsembleWeights, i)
		}
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: weights sum to %g", ErrEnsembleWeights, total)
	}

	norm := make([]float64, len(weights))
	for i, w := range weights {
		norm[i] = w / total
	}
	return &Ensemble{
		components: append([]splice.Measure(nil), components...),
		weights:    norm,
		name:       name,
	}, nil
}

// Name implements splice.Measure.
func (e *Ensemble) Name() string {
	if e.name != "" {
		return e.name
	}
	names := make([]string, len(e.components))
	for i, c := range e.components {
		names[i] = c.Name()
	}
	return "Ensemble(" + strings.Join(names, ", ") + ")"
}

// Tag implements splice.Measure.
func (e *Ensemble) Tag() string {
	tags := make([]string, len(e.components))
	for i, c := range e.components {
		tags[i] = c.Tag()
	}
	return strings.Join(tags, "+")
}

// Components implements splice.Ensemble.
func (e *Ensemble) Components() []splice.Measure {
	return append([]splice.Measure(nil), e.components...)
}

// Weights implements splice.Ensemble.
func (e *Ensemble) Weights() []float64 {
	return append([]float64(nil), e.weights...)
}

// EvaluateBase implements splice.Measure.
func (e *Ensemble) EvaluateBase(b *cpi.VarCPIBase) ([]float64, error) {
	return e.combine(func(m splice.Measure) ([]float64, error) {
		return m.EvaluateBase(b)
	})
}

// Evaluate implements splice.Measure.
func (e *Ensemble) Evaluate(cs *cpi.CountryStructure) ([]float64, error) {
	return e.combine(func(m splice.Measure) ([]float64, error) {
		return m.Evaluate(cs)
	})
}

// EvaluateAt implements splice.DateAnchored. Every component must be date
// anchored.
func (e *Ensemble) EvaluateAt(cs *cpi.CountryStructure, date time.Time) ([]float64, error) {
	return e.combine(func(m splice.Measure) ([]float64, error) {
		dm, ok := m.(splice.DateAnchored)
		if !ok {
			return nil, fmt.Errorf("%s: %w", m.Name(), splice.ErrNotDateAnchored)
		}
		return dm.EvaluateAt(cs, date)
	})
}

func (e *Ensemble) combine(eval func(splice.Measure) ([]float64, error)) ([]float64, error) {
	var out []float64
	for i, c := range e.components {
		f, err := eval(c)
		if err != nil {
			return nil, fmt.Errorf("evaluate component %d: %w", i, err)
		}
		if out == nil {
			out = make([]float64, len(f))
		} else if len(f) != len(out) {
			return nil, fmt.Errorf("component %d: %w", i, splice.ErrLengthMismatch)
		}
		floats.AddScaled(out, e.weights[i], f)
	}
	return out, nil
}
