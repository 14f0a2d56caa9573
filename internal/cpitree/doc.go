// Package cpitree builds a CPI classification hierarchy over a FullCPIBase
// and aggregates elementary item indices bottom-up through it.
//
// # Nodes
//
// A tree is made of two node kinds behind the Node interface:
//
//   - *Item: one elementary expenditure (a column of the backing table)
//   - *Group: an aggregation node whose weight is the sum of its children's
//
// Nodes never hold numeric series; those live in the backing table and are
// looked up by code. Codes are hierarchical: a group code is the prefix of
// every code below it, which is what Find relies on.
//
// # Building
//
//	h := cpitree.Hierarchy{
//	    Characters: []int{3, 4, 5, 7},
//	    GroupCodes: groupCodes,
//	    GroupNames: groupNames,
//	    RootCode:   "_0",
//	    RootName:   "All items",
//	}
//	tree, err := cpitree.New(base, h, logger)
//
// Group codes missing from the vocabulary get a placeholder label and a
// warning; a malformed Characters sequence is an error.
//
// # Computing
//
// ComputeIndex returns the weighted average of the children's indices at
// every period, recursively. ComputeIndexCached does the same while filling
// a caller-owned Cache keyed by code. A Cache is a plain map and must not be
// shared between goroutines without external locking.
package cpitree
