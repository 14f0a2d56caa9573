// Package dataprocessing reads CPI base workbooks into the containers of
// package cpi.
//
// # Workbook layout
//
// A base workbook holds one base period and has up to three sheets, matched
// case-insensitively:
//
//	ipc     Date column plus one index column per item code. An optional
//	        first row labelled "base" carries the base index levels.
//	items   Code, Name, Weight for every item column of ipc.
//	groups  Code, Name of the group labels (optional).
//
// Dates may be written as "2006-01", full dates or Excel serial numbers.
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger)
//	cs, books, err := loader.LoadCountryStructure("Guatemala", "base2000.xlsx", "base2010.xlsx")
//
// # Error Handling
//
// Errors wrap ErrSheetNotFound, ErrMalformedSheet or ErrMissingItem and name
// the offending row and column where there is one.
package dataprocessing
