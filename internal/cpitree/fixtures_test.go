package cpitree

import (
	"math"
	"testing"
	"time"

	"cpikit/internal/cpi"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

const fixturePeriods = 36

var fixtureStart = time.Date(2011, time.January, 1, 0, 0, 0, 0, time.UTC)

// Ten items in four divisions. Division _04 is a single chain of one
// subgroup and one item.
var fixtureItems = []struct {
	code   string
	name   string
	weight float64
}{
	{"_01101", "Rice", 2},
	{"_01102", "Maize flour", 1},
	{"_01201", "Beef", 3},
	{"_01202", "Chicken", 2},
	{"_02101", "Beer", 1},
	{"_02102", "Soft drinks", 1},
	{"_02103", "Water", 2},
	{"_03101", "Shirts", 4},
	{"_03201", "Shoes", 3},
	{"_04101", "Rent", 6},
}

var fixtureHierarchy = Hierarchy{
	Characters: []int{3, 4, 6},
	GroupCodes: []string{"_01", "_011", "_012", "_02", "_021", "_03", "_031", "_032", "_04", "_041"},
	GroupNames: []string{"Food", "Cereals", "Meat", "Beverages", "Drinks", "Clothing", "Garments", "Footwear", "Housing", "Rentals"},
	RootCode:   "_0",
	RootName:   "All items",
}

// scaledMonthly is the monthly percent change that takes 100 to 150 in
// fixturePeriods months.
var scaledMonthly = (math.Pow(1.5, 1.0/fixturePeriods) - 1) * 100

// fixtureBase returns the backing table with every item flat except _04101,
// which grows to 150 by the last period.
func fixtureBase(t *testing.T) *cpi.FullCPIBase {
	t.Helper()
	n := len(fixtureItems)
	v := mat.NewDense(fixturePeriods, n, nil)
	codes := make([]string, n)
	names := make([]string, n)
	w := make([]float64, n)
	for j, it := range fixtureItems {
		codes[j], names[j], w[j] = it.code, it.name, it.weight
		if it.code == "_04101" {
			for i := 0; i < fixturePeriods; i++ {
				v.Set(i, j, scaledMonthly)
			}
		}
	}
	vb, err := cpi.NewVarCPIBase(v, w, cpi.MonthRange(fixtureStart, fixturePeriods), []float64{100})
	require.NoError(t, err)
	full, err := vb.Full(codes, names)
	require.NoError(t, err)
	return full
}

// trendBase returns a backing table where item j grows by (j+1)/10 percent
// a month, so that every group has a distinct series.
func trendBase(t *testing.T) *cpi.FullCPIBase {
	t.Helper()
	n := len(fixtureItems)
	v := mat.NewDense(fixturePeriods, n, nil)
	codes := make([]string, n)
	names := make([]string, n)
	w := make([]float64, n)
	for j, it := range fixtureItems {
		codes[j], names[j], w[j] = it.code, it.name, it.weight
		for i := 0; i < fixturePeriods; i++ {
			v.Set(i, j, float64(j+1)/10)
		}
	}
	vb, err := cpi.NewVarCPIBase(v, w, cpi.MonthRange(fixtureStart, fixturePeriods), []float64{100})
	require.NoError(t, err)
	full, err := vb.Full(codes, names)
	require.NoError(t, err)
	return full
}

func fixtureTree(t *testing.T, base *cpi.FullCPIBase) *CPITree {
	t.Helper()
	tree, err := New(base, fixtureHierarchy, nil)
	require.NoError(t, err)
	return tree
}
