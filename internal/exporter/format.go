package exporter

import (
	"math"
	"strconv"
	"time"
)

// DateLayout is the month format of every exported date column.
const DateLayout = "2006-01"

// formatFloat formats a float64 value for CSV output with 4 decimal places.
// NaN becomes an empty cell.
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}
