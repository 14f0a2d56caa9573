package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"cpikit/internal/splice"
)

// Sheet names written by XLSXWriter.
const (
	SheetComponents = "components"
	SheetSeries     = "series"
)

// XLSXWriter writes reports as Excel workbooks.
type XLSXWriter struct {
	csv *CSVWriter
}

// NewXLSXWriter shares path resolution and logging with w.
func NewXLSXWriter(w *CSVWriter) *XLSXWriter {
	return &XLSXWriter{csv: w}
}

// WriteReport writes a components report and, when given, series to one
// workbook. Series share the first series' dates and are aligned on its
// last month.
func (x *XLSXWriter) WriteReport(filePath string, rows []splice.ComponentRow, series ...Series) error {
	fullPath := x.csv.resolvePath(filePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetComponents); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSheet(f, SheetComponents, componentHeaders, len(rows), func(i int) []interface{} {
		rec := componentRecord(rows[i])
		out := make([]interface{}, len(rec))
		for j, c := range rec {
			out[j] = c
		}
		out[0], out[3] = rows[i].Position, rows[i].Weight
		return out
	}); err != nil {
		return err
	}

	if len(series) > 0 {
		if _, err := f.NewSheet(SheetSeries); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		headers := []string{"Date"}
		for _, s := range series {
			headers = append(headers, s.Name)
		}
		axis := series[0].Dates
		if err := writeSheet(f, SheetSeries, headers, len(axis), func(i int) []interface{} {
			out := []interface{}{formatDate(axis[i])}
			for _, s := range series {
				off := len(axis) - len(s.Values)
				if k := i - off; k >= 0 && k < len(s.Values) {
					out = append(out, s.Values[k])
				} else {
					out = append(out, nil)
				}
			}
			return out
		}); err != nil {
			return err
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	x.csv.logger.Info("Workbook exported",
		slog.String("full_path", fullPath),
		slog.Int("components", len(rows)),
		slog.Int("series", len(series)))
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, n int, row func(i int) []interface{}) error {
	head := make([]interface{}, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("failed to write %s headers: %w", sheet, err)
	}
	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
