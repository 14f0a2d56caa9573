package cpi

import (
	"gonum.org/v1/gonum/mat"
)

// DefaultBaseIndex is the level every derived index series starts from.
const DefaultBaseIndex = 100.0

// Capitalize chains month-over-month percent changes into an index series
// starting from base:
//
//	idx[0] = base * (1 + v[0]/100)
//	idx[i] = idx[i-1] * (1 + v[i]/100)
func Capitalize(v []float64, base float64) []float64 {
	idx := make([]float64, len(v))
	prev := base
	for i, x := range v {
		prev = prev * (1 + x/100)
		idx[i] = prev
	}
	return idx
}

// VarIntermonth is the inverse of Capitalize.
func VarIntermonth(idx []float64, base float64) []float64 {
	v := make([]float64, len(idx))
	prev := base
	for i, x := range idx {
		v[i] = 100 * (x/prev - 1)
		prev = x
	}
	return v
}

// VarInterannual computes the 12-month percent change of an index series.
// The level preceding idx[0] is taken to be base, so the output has
// len(idx)-11 values:
//
//	out[0] = 100 * (idx[11]/base - 1)
//	out[i] = 100 * (idx[i+11]/idx[i-1] - 1)
//
// Series shorter than 12 periods yield an empty slice.
func VarInterannual(idx []float64, base float64) []float64 {
	n := len(idx) - 11
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	out[0] = 100 * (idx[11]/base - 1)
	for i := 1; i < n; i++ {
		out[i] = 100 * (idx[i+11]/idx[i-1] - 1)
	}
	return out
}

// CapitalizeMatrix applies Capitalize to every column of v, using
// baseIndex[j] as the starting level of column j.
func CapitalizeMatrix(v *mat.Dense, baseIndex []float64) *mat.Dense {
	return mapColumns(v, func(j int, col []float64) []float64 {
		return Capitalize(col, baseIndex[j])
	})
}

// VarIntermonthMatrix applies VarIntermonth to every column of idx.
func VarIntermonthMatrix(idx *mat.Dense, baseIndex []float64) *mat.Dense {
	return mapColumns(idx, func(j int, col []float64) []float64 {
		return VarIntermonth(col, baseIndex[j])
	})
}

func mapColumns(m *mat.Dense, fn func(j int, col []float64) []float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		out.SetCol(j, fn(j, col))
	}
	return out
}
