package exporter

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"cpikit/internal/cpi"
	"cpikit/internal/splice"
)

// Series is a named monthly series. Values[i] belongs to Dates[i].
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

// NewSeries pairs values with the last len(values) dates, so that series
// shortened at the front, such as year-over-year changes, line up with
// their months.
func NewSeries(name string, dates []time.Time, values []float64) (Series, error) {
	if len(values) > len(dates) {
		return Series{}, fmt.Errorf("series %s: %d values for %d dates", name, len(values), len(dates))
	}
	return Series{Name: name, Dates: dates[len(dates)-len(values):], Values: values}, nil
}

// WriteSeries streams the series as a Date column plus one column per
// series, over the union of their months. Missing values are empty cells.
func (w *CSVWriter) WriteSeries(filePath string, series ...Series) error {
	if len(series) == 0 {
		return fmt.Errorf("no series to write")
	}

	rows := make(map[int][]float64)
	for j, s := range series {
		if len(s.Dates) != len(s.Values) {
			return fmt.Errorf("series %s: %d values for %d dates", s.Name, len(s.Values), len(s.Dates))
		}
		for i, d := range s.Dates {
			key := cpi.MonthOrdinal(d)
			row, ok := rows[key]
			if !ok {
				row = make([]float64, len(series))
				for k := range row {
					row[k] = math.NaN()
				}
				rows[key] = row
			}
			row[j] = s.Values[i]
		}
	}

	months := make([]int, 0, len(rows))
	for m := range rows {
		months = append(months, m)
	}
	sort.Ints(months)

	headers := make([]string, 0, len(series)+1)
	headers = append(headers, "Date")
	for _, s := range series {
		headers = append(headers, s.Name)
	}

	sw, err := w.CreateStreamWriter(filePath, headers)
	if err != nil {
		return err
	}
	for _, m := range months {
		record := make([]string, 0, len(series)+1)
		record = append(record, formatDate(time.Date(m/12, time.Month(m%12+1), 1, 0, 0, 0, 0, time.UTC)))
		for _, x := range rows[m] {
			record = append(record, formatFloat(x))
		}
		if err := sw.WriteRecord(record); err != nil {
			sw.Close()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	if err := sw.Close(); err != nil {
		return err
	}

	w.logger.Info("Series exported",
		slog.String("file_path", filePath),
		slog.Int("series", len(series)),
		slog.Int("months", len(months)))
	return nil
}

// componentHeaders are the columns of a components report.
var componentHeaders = []string{"Position", "Measure", "Tag", "Weight", "Phase in start", "Phase in end", "Phase out start", "Phase out end"}

func componentRecord(r splice.ComponentRow) []string {
	return []string{
		fmt.Sprint(r.Position),
		r.Measure,
		r.Tag,
		formatFloat(r.Weight),
		intervalBound(r.PhaseIn, r.PhaseIn.Start),
		intervalBound(r.PhaseIn, r.PhaseIn.End),
		intervalBound(r.PhaseOut, r.PhaseOut.Start),
		intervalBound(r.PhaseOut, r.PhaseOut.End),
	}
}

func intervalBound(iv splice.Interval, t time.Time) string {
	if iv.IsZero() {
		return ""
	}
	return formatDate(t)
}

// WriteComponents writes a splice components report.
func (w *CSVWriter) WriteComponents(filePath string, rows []splice.ComponentRow) error {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = componentRecord(r)
	}
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   componentHeaders,
		Records:   records,
		BOMPrefix: true,
	})
}
