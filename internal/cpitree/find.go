package cpitree

import "strings"

// Find returns the node with the given code in the subtree rooted at n.
// A missing code is reported with ok=false, never as an error.
func Find(n Node, code string) (Node, bool) {
	if n == nil {
		return nil, false
	}
	if n.Code() == code {
		return n, true
	}
	g, ok := n.(*Group)
	if !ok {
		return nil, false
	}
	for _, c := range g.children {
		if c.Code() == code {
			return c, true
		}
	}
	// Sibling codes are prefix-disjoint, so at most one child can hold code.
	for _, c := range g.children {
		if strings.HasPrefix(code, c.Code()) {
			return Find(c, code)
		}
	}
	return nil, false
}
