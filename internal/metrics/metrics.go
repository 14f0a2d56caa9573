// Package metrics defines the OpenTelemetry instruments recorded by the tree
// and splice packages.
//
// Instruments are created from the global meter provider, so they are no-ops
// until a provider is installed (see infrastructure.InitializeOTel) and
// start exporting as soon as one is.
package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MeterName is the instrumentation scope of every cpikit instrument.
const MeterName = "cpikit"

// Instruments holds the cpikit counters.
type Instruments struct {
	CacheHits         metric.Int64Counter
	CacheMisses       metric.Int64Counter
	TreeBuilds        metric.Int64Counter
	TreeNodes         metric.Int64Histogram
	PlaceholderLabels metric.Int64Counter
	SpliceEvaluations metric.Int64Counter
	SpliceErrors      metric.Int64Counter
}

// NewInstruments creates the cpikit instruments on meter.
func NewInstruments(meter metric.Meter) (*Instruments, error) {
	var (
		inst Instruments
		err  error
	)

	if inst.CacheHits, err = meter.Int64Counter(
		"cpi_tree_cache_hits_total",
		metric.WithDescription("Index computations answered from a memoization cache"),
	); err != nil {
		return nil, err
	}
	if inst.CacheMisses, err = meter.Int64Counter(
		"cpi_tree_cache_misses_total",
		metric.WithDescription("Index computations that had to be recomputed"),
	); err != nil {
		return nil, err
	}
	if inst.TreeBuilds, err = meter.Int64Counter(
		"cpi_tree_builds_total",
		metric.WithDescription("Classification trees built"),
	); err != nil {
		return nil, err
	}
	if inst.TreeNodes, err = meter.Int64Histogram(
		"cpi_tree_nodes",
		metric.WithDescription("Number of nodes in each built tree"),
	); err != nil {
		return nil, err
	}
	if inst.PlaceholderLabels, err = meter.Int64Counter(
		"cpi_tree_placeholder_labels_total",
		metric.WithDescription("Group codes missing from the label vocabulary"),
	); err != nil {
		return nil, err
	}
	if inst.SpliceEvaluations, err = meter.Int64Counter(
		"cpi_splice_evaluations_total",
		metric.WithDescription("Inflation splice evaluations by mode"),
	); err != nil {
		return nil, err
	}
	if inst.SpliceErrors, err = meter.Int64Counter(
		"cpi_splice_errors_total",
		metric.WithDescription("Inflation splice evaluations that failed"),
	); err != nil {
		return nil, err
	}

	return &inst, nil
}

var (
	defaultOnce sync.Once
	defaultInst *Instruments
)

// Default returns the instruments bound to the global meter provider.
func Default() *Instruments {
	defaultOnce.Do(func() {
		inst, err := NewInstruments(otel.Meter(MeterName))
		if err != nil {
			otel.Handle(err)
			inst, _ = NewInstruments(noop.NewMeterProvider().Meter(MeterName))
		}
		defaultInst = inst
	})
	return defaultInst
}

// CacheLookup records a memoization cache hit or miss.
func CacheLookup(hit bool) {
	if hit {
		Default().CacheHits.Add(context.Background(), 1)
		return
	}
	Default().CacheMisses.Add(context.Background(), 1)
}

// TreeBuilt records a successful tree build of the given size.
func TreeBuilt(nodes int) {
	ctx := context.Background()
	Default().TreeBuilds.Add(ctx, 1)
	Default().TreeNodes.Record(ctx, int64(nodes))
}

// PlaceholderLabel records a group label synthesized during a build.
func PlaceholderLabel() {
	Default().PlaceholderLabels.Add(context.Background(), 1)
}

// SpliceEvaluated records one splice evaluation in the given mode.
func SpliceEvaluated(mode string, err error) {
	ctx := context.Background()
	attrs := metric.WithAttributes(attribute.String("mode", mode))
	Default().SpliceEvaluations.Add(ctx, 1, attrs)
	if err != nil {
		Default().SpliceErrors.Add(ctx, 1, attrs)
	}
}
