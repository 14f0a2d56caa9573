// Package measures provides inflation measures that plug into the splice
// engine: the headline CPI change and fixed-weight ensembles of other
// measures.
package measures
