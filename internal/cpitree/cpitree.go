package cpitree

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"cpikit/internal/cpi"

	"golang.org/x/sync/errgroup"
)

// CPITree pairs a classification tree with its backing table. Sub-trees
// obtained with Sub share the backing table.
type CPITree struct {
	base      *cpi.FullCPIBase
	root      Node
	hierarchy Hierarchy
	logger    *slog.Logger
}

// New builds the classification tree of every item in base.
func New(base *cpi.FullCPIBase, h Hierarchy, logger *slog.Logger) (*CPITree, error) {
	if logger == nil {
		logger = slog.Default()
	}
	root, err := BuildTree(base.Codes, h, base, logger)
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	return &CPITree{base: base, root: root, hierarchy: h, logger: logger}, nil
}

// Root returns the node the tree is rooted at.
func (t *CPITree) Root() Node {
	return t.root
}

// Base returns the backing table.
func (t *CPITree) Base() *cpi.FullCPIBase {
	return t.base
}

// Hierarchy returns the hierarchy the tree was built with.
func (t *CPITree) Hierarchy() Hierarchy {
	return t.hierarchy
}

// Find looks code up below the tree's root.
func (t *CPITree) Find(code string) (Node, bool) {
	return Find(t.root, code)
}

// Sub returns a view rooted at code. The view shares the backing table.
func (t *CPITree) Sub(code string) (*CPITree, bool) {
	n, ok := t.Find(code)
	if !ok {
		return nil, false
	}
	return &CPITree{base: t.base, root: n, hierarchy: t.hierarchy, logger: t.logger}, true
}

// Index computes the index series of the tree's root.
func (t *CPITree) Index() ([]float64, bool) {
	return ComputeIndex(t.root, t.base)
}

// IndexCached computes the root's index series through cache.
func (t *CPITree) IndexCached(cache Cache) ([]float64, bool) {
	return ComputeIndexCached(cache, t.root, t.base)
}

// IndexOf looks code up and computes its index series.
func (t *CPITree) IndexOf(code string) ([]float64, bool) {
	n, ok := t.Find(code)
	if !ok {
		return nil, false
	}
	return ComputeIndex(n, t.base)
}

// Walk visits every node in pre-order with its depth below the tree's root.
// Returning false from fn skips the node's children.
func (t *CPITree) Walk(fn func(n Node, depth int) bool) {
	walk(t.root, 0, fn)
}

func walk(n Node, depth int, fn func(Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	if g, ok := n.(*Group); ok {
		for _, c := range g.children {
			walk(c, depth+1, fn)
		}
	}
}

// Fprint writes an indented outline of the tree to w. maxDepth limits the
// printed depth; a negative value prints everything.
func (t *CPITree) Fprint(w io.Writer, maxDepth int) error {
	var err error
	t.Walk(func(n Node, depth int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s: %s [%.4f]\n", strings.Repeat("  ", depth), n.Code(), n.Name(), n.Weight())
		return maxDepth < 0 || depth < maxDepth
	})
	return err
}

// ChildIndices computes the index series of every direct child of the root
// concurrently, at most limit at a time (limit <= 0 means no limit). Each
// goroutine fills its own cache.
func (t *CPITree) ChildIndices(ctx context.Context, limit int) (map[string][]float64, error) {
	g, ok := t.root.(*Group)
	if !ok {
		idx, ok := ComputeIndex(t.root, t.base)
		if !ok {
			return nil, fmt.Errorf("compute index of %q: %w", t.root.Code(), ErrUnknownCode)
		}
		return map[string][]float64{t.root.Code(): idx}, nil
	}

	results := make([][]float64, len(g.children))
	eg, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		eg.SetLimit(limit)
	}
	for i, child := range g.children {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			idx, ok := ComputeIndexCached(NewCache(), child, t.base)
			if !ok {
				return fmt.Errorf("compute index of %q: %w", child.Code(), ErrUnknownCode)
			}
			results[i] = idx
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]float64, len(results))
	for i, child := range g.children {
		out[child.Code()] = results[i]
	}
	t.logger.DebugContext(ctx, "computed child indices", slog.String("root", t.root.Code()), slog.Int("children", len(out)))
	return out, nil
}
