package splice

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"
)

// ComponentRow describes one constituent of a splice. Ensemble
// constituents contribute one row per sub-component, sharing Position.
type ComponentRow struct {
	Position int      `json:"position"`
	Measure  string   `json:"measure"`
	Tag      string   `json:"tag"`
	Weight   float64  `json:"weight"`
	PhaseIn  Interval `json:"phase_in"`  // transition into this measure, zero for the first
	PhaseOut Interval `json:"phase_out"` // transition out of it, zero for the last
}

// Components lists the constituents of the splice in order.
func (s *InflationSplice) Components() []ComponentRow {
	var rows []ComponentRow
	for i, m := range s.measures {
		var in, out Interval
		if s.intervals != nil {
			if i > 0 {
				in = s.intervals[i-1]
			}
			if i < len(s.intervals) {
				out = s.intervals[i]
			}
		}

		ens, ok := m.(Ensemble)
		if ok && len(ens.Weights()) != len(ens.Components()) {
			s.logger.Warn("ensemble weights do not match its components, reporting it as one measure",
				slog.String("measure", m.Name()),
				slog.Int("components", len(ens.Components())),
				slog.Int("weights", len(ens.Weights())))
			ok = false
		}
		if !ok {
			rows = append(rows, ComponentRow{Position: i, Measure: m.Name(), Tag: m.Tag(), Weight: 1, PhaseIn: in, PhaseOut: out})
			continue
		}
		weights := ens.Weights()
		for j, c := range ens.Components() {
			rows = append(rows, ComponentRow{Position: i, Measure: c.Name(), Tag: c.Tag(), Weight: weights[j], PhaseIn: in, PhaseOut: out})
		}
	}
	return rows
}

// FprintComponents writes the components report as an aligned table.
func (s *InflationSplice) FprintComponents(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tMeasure\tTag\tWeight\tPhase in\tPhase out")
	for _, r := range s.Components() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.Position, r.Measure, r.Tag,
			strconv.FormatFloat(r.Weight, 'f', -1, 64),
			dash(r.PhaseIn.String()), dash(r.PhaseOut.String()))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
