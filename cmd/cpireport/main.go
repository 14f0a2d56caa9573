package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"cpikit/internal/config"
	"cpikit/internal/cpi"
	"cpikit/internal/cpitree"
	"cpikit/internal/dataprocessing"
	"cpikit/internal/exporter"
	"cpikit/internal/files"
	"cpikit/internal/infrastructure"
	"cpikit/internal/measures"
	"cpikit/internal/metrics"
	"cpikit/internal/splice"
)

// options are the parsed command line flags.
type options struct {
	bases       []string
	country     string
	code        string
	depth       int
	mode        splice.Mode
	transitions []splice.Interval
	treeOut     string
	out         string
	components  string
	xlsx        string
}

// listFlag collects a repeatable, comma separated flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			*l = append(*l, s)
		}
	}
	return nil
}

func main() {
	var bases listFlag
	flag.Var(&bases, "base", "base workbook, one per base period in order (repeatable or comma separated; defaults to every workbook in the data directory)")
	country := flag.String("country", "", "country name used in reports")
	code := flag.String("code", "", "tree node to report (defaults to the root)")
	depth := flag.Int("depth", 1, "depth of the printed tree outline (0 disables, negative prints all)")
	mode := flag.String("mode", "", "splice output: mom | index | yoy (defaults to config)")
	transitions := flag.String("transitions", "", "transition windows between bases, e.g. 2011-01:2011-12,2016-01:2016-12")
	treeOut := flag.String("tree-out", "tree.csv", "csv file for the node and child indices")
	out := flag.String("out", "headline.csv", "csv file for the spliced headline series")
	components := flag.String("components", "components.csv", "csv file for the splice components")
	xlsx := flag.String("xlsx", "", "optional xlsx report")
	metricsFile := flag.String("metrics", "", "write Prometheus metrics to this file at exit (defaults to config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}

	paths, err := cfg.Paths.Resolve("")
	if err != nil {
		logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("Failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if len(bases) == 0 {
		found, err := files.NewDiscovery(paths.DataDir).FindWorkbooks("")
		if err != nil {
			logger.Error("Failed to discover base workbooks", slog.String("error", err.Error()))
			os.Exit(1)
		}
		bases = files.Paths(found)
		logger.Info("Discovered base workbooks", slog.String("data_dir", paths.DataDir), slog.Int("count", len(bases)))
	}

	opts, err := parseOptions(cfg, bases, *country, *code, *depth, *mode, *transitions)
	if err != nil {
		logger.Error("Invalid arguments", slog.String("error", err.Error()))
		os.Exit(2)
	}
	opts.treeOut, opts.out, opts.components, opts.xlsx = *treeOut, *out, *components, *xlsx

	ctx := infrastructure.EnsureTraceID(context.Background())
	runErr := run(ctx, cfg, paths, opts, os.Stdout)

	if *metricsFile == "" {
		*metricsFile = cfg.Telemetry.MetricsFile
	}
	if *metricsFile != "" {
		if err := providers.WriteMetrics(paths.GetReportPath(*metricsFile)); err != nil {
			logger.Warn("Failed to write metrics", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Failed to shut down telemetry", slog.String("error", err.Error()))
	}

	if runErr != nil {
		logger.ErrorContext(ctx, "Report failed", slog.String("error", runErr.Error()))
		os.Exit(1)
	}
}

// parseOptions validates the flags that need more than a type check.
func parseOptions(cfg *config.Config, bases []string, country, code string, depth int, mode, transitions string) (options, error) {
	if len(bases) == 0 {
		return options{}, fmt.Errorf("at least one base workbook is required")
	}
	if mode == "" {
		mode = cfg.Splice.Mode
	}
	m, err := splice.ParseMode(mode)
	if err != nil {
		return options{}, err
	}
	ivs, err := parseTransitions(transitions)
	if err != nil {
		return options{}, err
	}
	if len(ivs) > 0 && len(ivs) != len(bases)-1 {
		return options{}, fmt.Errorf("%d bases need %d transitions, got %d", len(bases), len(bases)-1, len(ivs))
	}
	if country == "" {
		country = "CPI"
	}
	return options{
		bases:       bases,
		country:     country,
		code:        code,
		depth:       depth,
		mode:        m,
		transitions: ivs,
	}, nil
}

// parseTransitions reads "start:end" month pairs separated by commas.
func parseTransitions(s string) ([]splice.Interval, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []splice.Interval
	for _, part := range strings.Split(s, ",") {
		bounds := strings.Split(strings.TrimSpace(part), ":")
		if len(bounds) != 2 {
			return nil, fmt.Errorf("transition %q: want start:end", part)
		}
		start, err := time.Parse(exporter.DateLayout, bounds[0])
		if err != nil {
			return nil, fmt.Errorf("transition %q: %w", part, err)
		}
		end, err := time.Parse(exporter.DateLayout, bounds[1])
		if err != nil {
			return nil, fmt.Errorf("transition %q: %w", part, err)
		}
		out = append(out, splice.NewInterval(start, end))
	}
	return out, nil
}

// run loads the bases, reports the tree of the latest one and splices the
// headline across all of them.
func run(ctx context.Context, cfg *config.Config, paths *config.Paths, opts options, stdout io.Writer) error {
	tracer := otel.Tracer(metrics.MeterName)
	ctx, span := tracer.Start(ctx, "cpireport")
	defer span.End()

	// Context-aware calls get trace_id from the handler; component loggers
	// log without a context and carry it as an attribute.
	logger := infrastructure.GetLogger()
	libLogger := infrastructure.LoggerWithContext(ctx)

	workbooks := make([]string, len(opts.bases))
	for i, b := range opts.bases {
		workbooks[i] = paths.GetDataPath(b)
	}
	logger.InfoContext(ctx, "Starting CPI report",
		slog.String("country", opts.country),
		slog.Int("bases", len(workbooks)),
		slog.String("mode", opts.mode.String()))

	loadCtx, loadSpan := tracer.Start(ctx, "load")
	loader := dataprocessing.NewLoader(infrastructure.WithComponent(libLogger, "loader"))
	cs, books, err := loader.LoadCountryStructure(opts.country, workbooks...)
	if err != nil {
		infrastructure.RecordError(loadCtx, err)
		loadSpan.End()
		return fmt.Errorf("load bases: %w", err)
	}
	loadSpan.End()

	csvWriter := exporter.NewCSVWriter(paths, infrastructure.WithComponent(libLogger, "exporter"))

	treeSeries, err := reportTree(ctx, tracer, cfg, books[len(books)-1], opts, csvWriter, stdout, libLogger)
	if err != nil {
		return err
	}

	_, spliceSpan := tracer.Start(ctx, "splice", trace.WithAttributes(
		attribute.String("mode", opts.mode.String()),
		attribute.Int("eras", cs.Eras())))
	defer spliceSpan.End()

	ms := make([]splice.Measure, cs.Eras())
	for i := range ms {
		ms[i] = measures.TotalCPI{}
	}
	spliceOpts := []splice.Option{splice.WithLogger(infrastructure.WithComponent(libLogger, "splice"))}
	if len(opts.transitions) > 0 {
		spliceOpts = append(spliceOpts, splice.WithIntervals(opts.transitions...))
	}
	spl, err := splice.New(ms, spliceOpts...)
	if err != nil {
		return fmt.Errorf("build splice: %w", err)
	}
	values, err := spl.Compute(cs, opts.mode)
	if err != nil {
		return fmt.Errorf("compute splice: %w", err)
	}
	headline, err := exporter.NewSeries(fmt.Sprintf("%s (%s)", spl.Name(), opts.mode), cs.Dates(), values)
	if err != nil {
		return err
	}

	if err := csvWriter.WriteSeries(opts.out, headline); err != nil {
		return fmt.Errorf("write headline: %w", err)
	}
	rows := spl.Components()
	if err := csvWriter.WriteComponents(opts.components, rows); err != nil {
		return fmt.Errorf("write components: %w", err)
	}
	if err := spl.FprintComponents(stdout); err != nil {
		return err
	}

	if opts.xlsx != "" {
		all := append([]exporter.Series{headline}, treeSeries...)
		if err := exporter.NewXLSXWriter(csvWriter).WriteReport(opts.xlsx, rows, all...); err != nil {
			return fmt.Errorf("write xlsx report: %w", err)
		}
	}

	logger.InfoContext(ctx, "CPI report complete",
		slog.String("headline", paths.GetReportPath(opts.out)),
		slog.Int("periods", len(values)))
	return nil
}

// reportTree prints the outline of the latest base and writes the index of
// the selected node next to those of its children.
func reportTree(ctx context.Context, tracer trace.Tracer, cfg *config.Config, wb *dataprocessing.Workbook,
	opts options, w *exporter.CSVWriter, stdout io.Writer, logger *slog.Logger) ([]exporter.Series, error) {
	ctx, span := tracer.Start(ctx, "tree")
	defer span.End()

	tree, err := cpitree.New(wb.Base, cpitree.Hierarchy{
		Characters: cfg.Tree.Characters,
		GroupCodes: wb.GroupCodes,
		GroupNames: wb.GroupNames,
		RootCode:   cfg.Tree.RootCode,
		RootName:   cfg.Tree.RootName,
	}, infrastructure.WithComponent(logger, "cpitree"))
	if err != nil {
		return nil, err
	}
	if opts.code != "" {
		sub, ok := tree.Sub(opts.code)
		if !ok {
			return nil, fmt.Errorf("code %q: %w", opts.code, cpitree.ErrUnknownCode)
		}
		tree = sub
	}

	if opts.depth != 0 {
		if err := tree.Fprint(stdout, opts.depth); err != nil {
			return nil, err
		}
	}

	idx, ok := tree.Index()
	if !ok {
		return nil, fmt.Errorf("index of %q: %w", tree.Root().Code(), cpitree.ErrUnknownCode)
	}
	children, err := tree.ChildIndices(ctx, cfg.Tree.Workers)
	if err != nil {
		return nil, fmt.Errorf("child indices: %w", err)
	}
	span.SetAttributes(attribute.String("code", tree.Root().Code()), attribute.Int("children", len(children)))

	series := []exporter.Series{{Name: tree.Root().Code(), Dates: wb.Base.Dates, Values: idx}}
	codes := make([]string, 0, len(children))
	for c := range children {
		if c != tree.Root().Code() {
			codes = append(codes, c)
		}
	}
	sort.Strings(codes)
	for _, c := range codes {
		series = append(series, exporter.Series{Name: c, Dates: wb.Base.Dates, Values: children[c]})
	}

	if err := w.WriteSeries(opts.treeOut, series...); err != nil {
		return nil, fmt.Errorf("write tree indices: %w", err)
	}
	logger.Debug("tree report written",
		slog.String("code", tree.Root().Code()),
		slog.Int("children", len(codes)),
		slog.Time("last", cpi.Month(wb.Base.Dates[len(wb.Base.Dates)-1])))
	return series, nil
}
