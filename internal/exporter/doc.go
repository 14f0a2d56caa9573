// Package exporter writes cpikit results to disk.
//
// CSVWriter is the core CSV writer, with headers, streaming and an optional
// UTF-8 BOM for Excel compatibility. On top of it:
//
//   - WriteSeries exports monthly series side by side, aligned by month.
//   - WriteComponents exports a splice components report.
//
// XLSXWriter writes the same reports as an Excel workbook.
//
// Example usage:
//
//	paths, _ := cfg.Paths.Resolve("")
//	w := exporter.NewCSVWriter(paths, logger)
//	s, _ := exporter.NewSeries("Total", cs.Dates(), yoy)
//	err := w.WriteSeries("total.csv", s)
package exporter
