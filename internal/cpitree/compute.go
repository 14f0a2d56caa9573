package cpitree

import (
	"cpikit/internal/cpi"
	"cpikit/internal/metrics"

	"gonum.org/v1/gonum/mat"
)

// Cache memoizes computed index series by node code. It is owned by the
// caller; a Cache holds no lock and must not be shared across goroutines.
// Cached slices are returned as-is and must not be modified.
type Cache map[string][]float64

// NewCache returns an empty cache.
func NewCache() Cache {
	return make(Cache)
}

// ComputeIndex returns the index series of n over the base's periods. Items
// read their column of base.Ipc; groups average their children's series
// weighted by the children's weights. A nil node, or an item whose code is
// not in base, yields ok=false.
func ComputeIndex(n Node, base *cpi.FullCPIBase) ([]float64, bool) {
	return compute(n, base, nil)
}

// ComputeIndexCached is ComputeIndex backed by cache. Every node reached is
// stored under its code, and nodes already present are not recomputed.
func ComputeIndexCached(cache Cache, n Node, base *cpi.FullCPIBase) ([]float64, bool) {
	if cache == nil {
		return compute(n, base, nil)
	}
	return compute(n, base, cache)
}

func compute(n Node, base *cpi.FullCPIBase, cache Cache) ([]float64, bool) {
	if n == nil {
		return nil, false
	}
	if cache != nil {
		if idx, ok := cache[n.Code()]; ok {
			metrics.CacheLookup(true)
			return idx, true
		}
		metrics.CacheLookup(false)
	}

	var (
		idx []float64
		ok  bool
	)
	switch n := n.(type) {
	case *Item:
		idx, ok = base.Column(n.code)
	case *Group:
		idx, ok = computeGroup(n, base, cache)
	}
	if !ok {
		return nil, false
	}

	if cache != nil {
		cache[n.Code()] = idx
	}
	return idx, true
}

func computeGroup(g *Group, base *cpi.FullCPIBase, cache Cache) ([]float64, bool) {
	if len(g.children) == 1 {
		return compute(g.children[0], base, cache)
	}

	m := mat.NewDense(base.Periods(), len(g.children), nil)
	w := make([]float64, len(g.children))
	for j, c := range g.children {
		idx, ok := compute(c, base, cache)
		if !ok {
			return nil, false
		}
		m.SetCol(j, idx)
		w[j] = c.Weight()
	}
	return cpi.WeightedAverage(m, w), true
}
