package cpi

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// VarCPIBase holds the month-over-month percent changes of one base period.
type VarCPIBase struct {
	V         *mat.Dense  // periods x items
	W         []float64   // basket weights, one per item
	Dates     []time.Time // one per period, contiguous months
	BaseIndex []float64   // starting index level, one per item
}

// IndexCPIBase holds the index levels of one base period.
type IndexCPIBase struct {
	Ipc       *mat.Dense
	W         []float64
	Dates     []time.Time
	BaseIndex []float64
}

// FullCPIBase holds both the index levels and the percent changes of one
// base period together with the item codes and names. It is the backing
// table of a classification tree.
type FullCPIBase struct {
	Ipc       *mat.Dense
	V         *mat.Dense
	W         []float64
	Dates     []time.Time
	BaseIndex []float64
	Codes     []string
	Names     []string

	byCode map[string]int
}

// NewVarCPIBase validates and builds a VarCPIBase. baseIndex may hold a
// single value, which is used for every item.
func NewVarCPIBase(v *mat.Dense, w []float64, dates []time.Time, baseIndex []float64) (*VarCPIBase, error) {
	w, dates, baseIndex, err := validateBase(v, w, dates, baseIndex)
	if err != nil {
		return nil, fmt.Errorf("validate var base: %w", err)
	}
	return &VarCPIBase{V: v, W: w, Dates: dates, BaseIndex: baseIndex}, nil
}

// NewIndexCPIBase validates and builds an IndexCPIBase.
func NewIndexCPIBase(ipc *mat.Dense, w []float64, dates []time.Time, baseIndex []float64) (*IndexCPIBase, error) {
	w, dates, baseIndex, err := validateBase(ipc, w, dates, baseIndex)
	if err != nil {
		return nil, fmt.Errorf("validate index base: %w", err)
	}
	return &IndexCPIBase{Ipc: ipc, W: w, Dates: dates, BaseIndex: baseIndex}, nil
}

// NewFullCPIBase validates and builds a FullCPIBase. Every item code must be
// unique.
func NewFullCPIBase(ipc, v *mat.Dense, w []float64, dates []time.Time, baseIndex []float64, codes, names []string) (*FullCPIBase, error) {
	w, dates, baseIndex, err := validateBase(ipc, w, dates, baseIndex)
	if err != nil {
		return nil, fmt.Errorf("validate full base: %w", err)
	}

	r, c := ipc.Dims()
	if vr, vc := v.Dims(); vr != r || vc != c {
		return nil, &ValidationError{
			Field:   "v",
			Message: fmt.Sprintf("expected %dx%d, got %dx%d", r, c, vr, vc),
			Err:     ErrDimensionMismatch,
		}
	}
	if len(codes) != c {
		return nil, dimensionError("codes", len(codes), c)
	}
	if len(names) != c {
		return nil, dimensionError("names", len(names), c)
	}

	byCode := make(map[string]int, c)
	for j, code := range codes {
		if _, dup := byCode[code]; dup {
			return nil, &ValidationError{Field: "codes", Message: "code appears more than once", Value: code, Err: ErrDuplicateCode}
		}
		byCode[code] = j
	}

	return &FullCPIBase{
		Ipc:       ipc,
		V:         v,
		W:         w,
		Dates:     dates,
		BaseIndex: baseIndex,
		Codes:     append([]string(nil), codes...),
		Names:     append([]string(nil), names...),
		byCode:    byCode,
	}, nil
}

func validateBase(m *mat.Dense, w []float64, dates []time.Time, baseIndex []float64) ([]float64, []time.Time, []float64, error) {
	if m == nil || m.IsEmpty() {
		return nil, nil, nil, &ValidationError{Field: "matrix", Message: "no periods or items", Err: ErrEmpty}
	}
	r, c := m.Dims()
	if len(w) != c {
		return nil, nil, nil, dimensionError("weights", len(w), c)
	}
	for j, x := range w {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, nil, nil, &ValidationError{Field: "weights", Message: fmt.Sprintf("weight %d is not a finite non-negative number", j), Value: x}
		}
	}
	if len(dates) != r {
		return nil, nil, nil, dimensionError("dates", len(dates), r)
	}
	dates, err := normalizeDates(dates)
	if err != nil {
		return nil, nil, nil, err
	}

	switch len(baseIndex) {
	case 0:
		baseIndex = filled(c, DefaultBaseIndex)
	case 1:
		baseIndex = filled(c, baseIndex[0])
	case c:
		baseIndex = append([]float64(nil), baseIndex...)
	default:
		return nil, nil, nil, dimensionError("base index", len(baseIndex), c)
	}

	return append([]float64(nil), w...), dates, baseIndex, nil
}

func filled(n int, x float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = x
	}
	return s
}

// Periods returns the number of monthly periods in the base.
func (b *VarCPIBase) Periods() int {
	r, _ := b.V.Dims()
	return r
}

// Items returns the number of items in the base.
func (b *VarCPIBase) Items() int {
	_, c := b.V.Dims()
	return c
}

// Index chains the percent changes into index levels.
func (b *VarCPIBase) Index() *IndexCPIBase {
	return &IndexCPIBase{
		Ipc:       CapitalizeMatrix(b.V, b.BaseIndex),
		W:         b.W,
		Dates:     b.Dates,
		BaseIndex: b.BaseIndex,
	}
}

// Full attaches item codes and names to the base.
func (b *VarCPIBase) Full(codes, names []string) (*FullCPIBase, error) {
	return NewFullCPIBase(CapitalizeMatrix(b.V, b.BaseIndex), b.V, b.W, b.Dates, b.BaseIndex, codes, names)
}

// Headline returns the weighted average of the items' index series, the
// all-items index of the base.
func (b *VarCPIBase) Headline() []float64 {
	return WeightedAverage(CapitalizeMatrix(b.V, b.BaseIndex), b.W)
}

// Periods returns the number of monthly periods in the base.
func (b *IndexCPIBase) Periods() int {
	r, _ := b.Ipc.Dims()
	return r
}

// Var converts the index levels back into percent changes.
func (b *IndexCPIBase) Var() *VarCPIBase {
	return &VarCPIBase{
		V:         VarIntermonthMatrix(b.Ipc, b.BaseIndex),
		W:         b.W,
		Dates:     b.Dates,
		BaseIndex: b.BaseIndex,
	}
}

// Periods returns the number of monthly periods in the base.
func (b *FullCPIBase) Periods() int {
	r, _ := b.Ipc.Dims()
	return r
}

// Items returns the number of items in the base.
func (b *FullCPIBase) Items() int {
	return len(b.Codes)
}

// Var drops the index levels and labels.
func (b *FullCPIBase) Var() *VarCPIBase {
	return &VarCPIBase{V: b.V, W: b.W, Dates: b.Dates, BaseIndex: b.BaseIndex}
}

// Index drops the percent changes and labels.
func (b *FullCPIBase) Index() *IndexCPIBase {
	return &IndexCPIBase{Ipc: b.Ipc, W: b.W, Dates: b.Dates, BaseIndex: b.BaseIndex}
}

// Lookup returns the column position of code.
func (b *FullCPIBase) Lookup(code string) (int, bool) {
	j, ok := b.byCode[code]
	return j, ok
}

// Column returns a copy of the index series of the item with the given code.
func (b *FullCPIBase) Column(code string) ([]float64, bool) {
	j, ok := b.byCode[code]
	if !ok {
		return nil, false
	}
	return mat.Col(nil, j, b.Ipc), true
}

// Weight returns the basket weight of the item with the given code.
func (b *FullCPIBase) Weight(code string) (float64, bool) {
	j, ok := b.byCode[code]
	if !ok {
		return 0, false
	}
	return b.W[j], true
}

// Name returns the label of the item with the given code.
func (b *FullCPIBase) Name(code string) (string, bool) {
	j, ok := b.byCode[code]
	if !ok {
		return "", false
	}
	return b.Names[j], true
}

// WeightedAverage averages the columns of m row by row, using w normalised
// to sum to one. A zero weight total leaves the weights as given.
func WeightedAverage(m *mat.Dense, w []float64) []float64 {
	r, _ := m.Dims()
	norm := append([]float64(nil), w...)
	if total := floats.Sum(norm); total != 0 {
		floats.Scale(1/total, norm)
	}
	out := make([]float64, r)
	mat.NewVecDense(r, out).MulVec(m, mat.NewVecDense(len(norm), norm))
	return out
}
