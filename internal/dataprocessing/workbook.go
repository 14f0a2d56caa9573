package dataprocessing

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/mat"

	"cpikit/internal/cpi"
)

// Sheet names of a base workbook. Lookup is case-insensitive and ignores
// surrounding spaces.
const (
	SheetIndex  = "ipc"
	SheetItems  = "items"
	SheetGroups = "groups"
)

// BaseRowLabel marks the optional row of the ipc sheet holding the base
// index of every column.
const BaseRowLabel = "base"

var (
	// ErrSheetNotFound is returned when a required sheet is missing.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrMalformedSheet is returned for a sheet without the expected layout.
	ErrMalformedSheet = errors.New("malformed sheet")
	// ErrMissingItem is returned when an ipc column has no items row.
	ErrMissingItem = errors.New("item missing from items sheet")
)

// dateLayouts are tried in order on the Date column.
var dateLayouts = []string{"2006-01", "2006-01-02", "01/2006", "1/2/2006", "01-02-06", "Jan 2006"}

// Workbook is the content of a base workbook.
type Workbook struct {
	Base *cpi.FullCPIBase
	// GroupCodes and GroupNames are the group label vocabulary; empty when
	// the workbook has no groups sheet.
	GroupCodes []string
	GroupNames []string
}

// Loader reads CPI base workbooks.
type Loader struct {
	logger *slog.Logger
}

// NewLoader returns a Loader. A nil logger uses slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadFile opens and reads the workbook at path.
func (l *Loader) LoadFile(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	wb, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	l.logger.Info("base workbook loaded",
		slog.String("path", path),
		slog.Int("items", wb.Base.Items()),
		slog.Int("periods", wb.Base.Periods()),
		slog.Int("groups", len(wb.GroupCodes)),
	)
	return wb, nil
}

// Load reads an open workbook.
func (l *Loader) Load(f *excelize.File) (*Workbook, error) {
	indexRows, err := sheetRows(f, SheetIndex)
	if err != nil {
		return nil, err
	}
	itemRows, err := sheetRows(f, SheetItems)
	if err != nil {
		return nil, err
	}

	codes, dates, ipc, baseIndex, err := parseIndex(indexRows)
	if err != nil {
		return nil, fmt.Errorf("parse %s sheet: %w", SheetIndex, err)
	}
	names, weights, err := l.parseItems(itemRows, codes)
	if err != nil {
		return nil, fmt.Errorf("parse %s sheet: %w", SheetItems, err)
	}

	v := cpi.VarIntermonthMatrix(ipc, baseIndex)
	base, err := cpi.NewFullCPIBase(ipc, v, weights, dates, baseIndex, codes, names)
	if err != nil {
		return nil, err
	}
	wb := &Workbook{Base: base}

	groupRows, err := sheetRows(f, SheetGroups)
	switch {
	case errors.Is(err, ErrSheetNotFound):
		l.logger.Warn("workbook has no groups sheet, group labels will be placeholders")
	case err != nil:
		return nil, err
	default:
		if wb.GroupCodes, wb.GroupNames, err = parseGroups(groupRows); err != nil {
			return nil, fmt.Errorf("parse %s sheet: %w", SheetGroups, err)
		}
	}
	return wb, nil
}

// LoadCountryStructure loads one workbook per base period, in order, and
// joins them.
func (l *Loader) LoadCountryStructure(name string, paths ...string) (*cpi.CountryStructure, []*Workbook, error) {
	bases := make([]*cpi.VarCPIBase, 0, len(paths))
	books := make([]*Workbook, 0, len(paths))
	for _, p := range paths {
		wb, err := l.LoadFile(p)
		if err != nil {
			return nil, nil, err
		}
		books = append(books, wb)
		bases = append(bases, wb.Base.Var())
	}
	cs, err := cpi.NewCountryStructure(name, bases...)
	if err != nil {
		return nil, nil, err
	}
	return cs, books, nil
}

func sheetRows(f *excelize.File, want string) ([][]string, error) {
	for _, name := range f.GetSheetList() {
		if strings.EqualFold(strings.TrimSpace(name), want) {
			rows, err := f.GetRows(name)
			if err != nil {
				return nil, fmt.Errorf("read %s sheet: %w", want, err)
			}
			return rows, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, want)
}

// parseIndex reads a Date column followed by one index column per item
// code, with an optional base row right after the header.
func parseIndex(rows [][]string) ([]string, []time.Time, *mat.Dense, []float64, error) {
	if len(rows) < 2 || len(rows[0]) < 2 {
		return nil, nil, nil, nil, fmt.Errorf("%w: need a header and at least one period", ErrMalformedSheet)
	}

	header := rows[0]
	codes := make([]string, 0, len(header)-1)
	for _, c := range header[1:] {
		codes = append(codes, strings.TrimSpace(c))
	}

	body := rows[1:]
	first := 2
	var baseIndex []float64
	if len(body[0]) > 0 && strings.EqualFold(strings.TrimSpace(body[0][0]), BaseRowLabel) {
		vals, err := parseRow(body[0], len(codes), 2)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		baseIndex = vals
		body = body[1:]
		first++
	}
	body = trimEmpty(body)
	if len(body) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("%w: no periods", ErrMalformedSheet)
	}

	dates := make([]time.Time, len(body))
	ipc := mat.NewDense(len(body), len(codes), nil)
	for i, row := range body {
		line := first + i
		if blank(row) {
			return nil, nil, nil, nil, fmt.Errorf("%w: row %d is empty", ErrMalformedSheet, line)
		}
		d, err := parseDate(row[0])
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("row %d: %w", line, err)
		}
		dates[i] = d
		vals, err := parseRow(row, len(codes), line)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		ipc.SetRow(i, vals)
	}
	return codes, dates, ipc, baseIndex, nil
}

func parseRow(row []string, n, line int) ([]float64, error) {
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		if j+1 >= len(row) || strings.TrimSpace(row[j+1]) == "" {
			return nil, fmt.Errorf("%w: row %d column %d is empty", ErrMalformedSheet, line, j+2)
		}
		x, err := parseNumber(row[j+1])
		if err != nil {
			return nil, fmt.Errorf("row %d column %d: %w", line, j+2, err)
		}
		out[j] = x
	}
	return out, nil
}

func (l *Loader) parseItems(rows [][]string, codes []string) ([]string, []float64, error) {
	type item struct {
		name   string
		weight float64
	}
	items := make(map[string]item, len(rows))
	for i, row := range trimEmpty(rows) {
		if i == 0 {
			continue
		}
		if len(row) < 3 {
			return nil, nil, fmt.Errorf("%w: row %d needs code, name and weight", ErrMalformedSheet, i+1)
		}
		w, err := parseNumber(row[2])
		if err != nil {
			return nil, nil, fmt.Errorf("row %d weight: %w", i+1, err)
		}
		items[strings.TrimSpace(row[0])] = item{name: strings.TrimSpace(row[1]), weight: w}
	}

	names := make([]string, len(codes))
	weights := make([]float64, len(codes))
	for j, code := range codes {
		it, ok := items[code]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrMissingItem, code)
		}
		names[j], weights[j] = it.name, it.weight
		delete(items, code)
	}
	for code := range items {
		l.logger.Warn("item has no index column, ignoring", slog.String("code", code))
	}
	return names, weights, nil
}

func parseGroups(rows [][]string) ([]string, []string, error) {
	var codes, names []string
	for i, row := range trimEmpty(rows) {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			return nil, nil, fmt.Errorf("%w: row %d needs code and name", ErrMalformedSheet, i+1)
		}
		codes = append(codes, strings.TrimSpace(row[0]))
		names = append(names, strings.TrimSpace(row[1]))
	}
	return codes, names, nil
}

// trimEmpty drops trailing rows with no content.
func trimEmpty(rows [][]string) [][]string {
	end := len(rows)
	for end > 0 && blank(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	x, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return x, nil
}

// parseDate accepts the layouts in dateLayouts and Excel serial numbers.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return cpi.Month(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err == nil {
			return cpi.Month(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
