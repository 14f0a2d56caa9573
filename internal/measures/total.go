package measures

import (
	"time"

	"cpikit/internal/cpi"
)

// TotalCPI is the month-over-month change of the all-items index.
type TotalCPI struct{}

// Name implements splice.Measure.
func (TotalCPI) Name() string { return "Total CPI" }

// Tag implements splice.Measure.
func (TotalCPI) Tag() string { return "Total" }

// EvaluateBase returns the headline change within one base period.
func (TotalCPI) EvaluateBase(b *cpi.VarCPIBase) ([]float64, error) {
	base := cpi.WeightedAverageScalar(b.BaseIndex, b.W)
	return cpi.VarIntermonth(b.Headline(), base), nil
}

// Evaluate returns the chained headline change across all eras.
func (TotalCPI) Evaluate(cs *cpi.CountryStructure) ([]float64, error) {
	return cpi.VarIntermonth(cs.Headline(), cpi.DefaultBaseIndex), nil
}

// EvaluateAt ignores the reference date; the headline does not depend on
// one.
func (m TotalCPI) EvaluateAt(cs *cpi.CountryStructure, _ time.Time) ([]float64, error) {
	return m.Evaluate(cs)
}
