package cpitree

import (
	"fmt"
	"math"
)

// Node is either an *Item or a *Group.
type Node interface {
	Code() string
	Name() string
	Weight() float64
	// Children returns the node's children in order; nil for items.
	Children() []Node

	node()
}

// Item is a leaf of the tree: one elementary expenditure.
type Item struct {
	code   string
	name   string
	weight float64
}

// NewItem creates a leaf node.
func NewItem(code, name string, weight float64) (*Item, error) {
	if weight < 0 || math.IsNaN(weight) {
		return nil, fmt.Errorf("item %q: %w: %v", code, ErrInvalidWeight, weight)
	}
	return &Item{code: code, name: name, weight: weight}, nil
}

func (it *Item) Code() string     { return it.code }
func (it *Item) Name() string     { return it.name }
func (it *Item) Weight() float64  { return it.weight }
func (it *Item) Children() []Node { return nil }
func (it *Item) node()            {}

// Group is an aggregation node. Its weight is fixed at construction to the
// sum of its children's weights.
type Group struct {
	code     string
	name     string
	weight   float64
	children []Node
}

// NewGroup creates a group owning children. At least one child is required.
func NewGroup(code, name string, children ...Node) (*Group, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("group %q: %w", code, ErrEmptyGroup)
	}
	var w float64
	for _, c := range children {
		w += c.Weight()
	}
	return &Group{
		code:     code,
		name:     name,
		weight:   w,
		children: append([]Node(nil), children...),
	}, nil
}

func (g *Group) Code() string    { return g.code }
func (g *Group) Name() string    { return g.name }
func (g *Group) Weight() float64 { return g.weight }
func (g *Group) node()           {}

// Children returns a copy of the group's children.
func (g *Group) Children() []Node {
	return append([]Node(nil), g.children...)
}

// Len returns the number of direct children.
func (g *Group) Len() int {
	return len(g.children)
}

// Child returns the i-th direct child.
func (g *Group) Child(i int) Node {
	return g.children[i]
}

// Count returns the number of items and groups in the subtree rooted at n,
// n included.
func Count(n Node) (items, groups int) {
	switch n := n.(type) {
	case *Item:
		return 1, 0
	case *Group:
		groups = 1
		for _, c := range n.children {
			i, g := Count(c)
			items += i
			groups += g
		}
	}
	return items, groups
}
