// Package splice stitches several inflation measures into one continuous
// month-over-month series across methodology changes.
//
// An InflationSplice owns an ordered list of measures and, optionally, one
// transition Interval between each consecutive pair. Without intervals the
// measures map one-to-one onto the eras of a CountryStructure and their
// outputs are concatenated. With intervals, measure k is cross-faded into
// measure k+1 over interval k using linear ramps:
//
//	out = f[0]
//	for each interval k, in order:
//	    out = out*rampDown_k + f[k+1]*rampUp_k
//
// rampDown_k is 1 up to the interval start and 0 from its end on; rampUp_k
// is its complement. Later transitions therefore override the tail of
// earlier ones.
//
// Index levels and year-over-year changes are derived from the
// month-over-month result with cpi.Capitalize and cpi.VarInterannual.
package splice
