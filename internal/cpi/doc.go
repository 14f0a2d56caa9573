// Package cpi holds the flat CPI data containers and the numeric primitives
// the rest of cpikit is built on.
//
// # Containers
//
// A CPI base is one methodology era: a block of monthly periods (rows) by
// elementary expenditure items (columns) together with the basket weights of
// those items and the base index value the item indices start from. Three
// views of the same data are provided:
//
//   - VarCPIBase: month-over-month percent changes only
//   - IndexCPIBase: index levels only
//   - FullCPIBase: both matrices plus item codes and names
//
// The views convert into one another through Capitalize and VarIntermonth
// without losing information.
//
// A CountryStructure strings several VarCPIBase values together into one
// consecutive monthly axis, one base per era.
//
// # Primitives
//
//	idx := cpi.Capitalize(v, 100)        // chain percent changes into levels
//	v2 := cpi.VarIntermonth(idx, 100)    // and back again
//	yoy := cpi.VarInterannual(idx, 100)  // len(idx)-11 values
//
// All dates are normalised to the first day of the month in UTC.
package cpi
