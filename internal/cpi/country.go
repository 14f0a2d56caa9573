package cpi

import (
	"fmt"
	"time"
)

// CountryStructure is a country's CPI history split into consecutive base
// periods (eras). Each era carries its own item set and weights.
type CountryStructure struct {
	Name  string
	Bases []*VarCPIBase
}

// NewCountryStructure validates that bases are non-empty and follow each
// other month by month with no gap or overlap.
func NewCountryStructure(name string, bases ...*VarCPIBase) (*CountryStructure, error) {
	if len(bases) == 0 {
		return nil, &ValidationError{Field: "bases", Message: "at least one base is required", Err: ErrEmpty}
	}
	for i := 1; i < len(bases); i++ {
		prev := bases[i-1].Dates[len(bases[i-1].Dates)-1]
		next := bases[i].Dates[0]
		if MonthsBetween(prev, next) != 1 {
			return nil, &ValidationError{
				Field:   "bases",
				Message: fmt.Sprintf("base %d starts %s but base %d ends %s", i, next.Format("2006-01"), i-1, prev.Format("2006-01")),
				Value:   i,
				Err:     ErrNonConsecutiveBases,
			}
		}
	}
	return &CountryStructure{Name: name, Bases: append([]*VarCPIBase(nil), bases...)}, nil
}

// Eras returns the number of base periods.
func (cs *CountryStructure) Eras() int {
	return len(cs.Bases)
}

// Periods returns the total number of months across all eras.
func (cs *CountryStructure) Periods() int {
	n := 0
	for _, b := range cs.Bases {
		n += b.Periods()
	}
	return n
}

// PeriodsPerBase returns the number of months of each era.
func (cs *CountryStructure) PeriodsPerBase() []int {
	out := make([]int, len(cs.Bases))
	for i, b := range cs.Bases {
		out[i] = b.Periods()
	}
	return out
}

// Span returns the offset and length of era i on the combined date axis.
func (cs *CountryStructure) Span(i int) (offset, length int) {
	for k := 0; k < i; k++ {
		offset += cs.Bases[k].Periods()
	}
	return offset, cs.Bases[i].Periods()
}

// Dates returns the combined monthly axis spanning all eras.
func (cs *CountryStructure) Dates() []time.Time {
	dates := make([]time.Time, 0, cs.Periods())
	for _, b := range cs.Bases {
		dates = append(dates, b.Dates...)
	}
	return dates
}

// Headline chains every era's all-items index into one continuous series
// starting from DefaultBaseIndex. Within an era each item index restarts at
// the era's base index, so the era's own month-over-month changes are
// what gets chained.
func (cs *CountryStructure) Headline() []float64 {
	mom := make([]float64, 0, cs.Periods())
	for _, b := range cs.Bases {
		mom = append(mom, VarIntermonth(b.Headline(), meanBase(b))...)
	}
	return Capitalize(mom, DefaultBaseIndex)
}

func meanBase(b *VarCPIBase) float64 {
	return WeightedAverageScalar(b.BaseIndex, b.W)
}

// WeightedAverageScalar returns the w-weighted mean of x.
func WeightedAverageScalar(x, w []float64) float64 {
	var num, den float64
	for i := range x {
		num += x[i] * w[i]
		den += w[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}
