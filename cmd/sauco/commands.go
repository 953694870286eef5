package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/sauco/internal/analysis"
	"github.com/standardbeagle/sauco/internal/cache"
	"github.com/standardbeagle/sauco/internal/compare"
	"github.com/standardbeagle/sauco/internal/config"
	"github.com/standardbeagle/sauco/internal/debug"
	"github.com/standardbeagle/sauco/internal/display"
	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
	"github.com/standardbeagle/sauco/internal/mcp"
	"github.com/standardbeagle/sauco/internal/parser"
	"github.com/standardbeagle/sauco/internal/scan"
	"github.com/standardbeagle/sauco/internal/types"
	"github.com/standardbeagle/sauco/internal/version"
	"github.com/standardbeagle/sauco/internal/watch"
)

var (
	errOverThreshold = errors.New("metrics over threshold")
	errRegression    = errors.New("metrics regressed past their thresholds")
)

// stdinName marks input read from standard input
const stdinName = "-"

// signalContext is cancelled on interrupt or termination
func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func newFormatter(c *cli.Context, cfg *config.Config) *display.ReportFormatter {
	return display.NewReportFormatter(display.FormatterOptions{
		Format:      cfg.Output.Format,
		ShowMethods: c.Bool("methods"),
		Thresholds:  cfg.Thresholds,
	})
}

// readSource reads a named file, or stdin for "-"
func readSource(c *cli.Context, name string) (string, error) {
	if name == stdinName {
		data, err := io.ReadAll(c.App.Reader)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return "", saucoerrors.NewFileError("read", name, err)
	}
	return string(data), nil
}

// analyzeSource measures one named input with the configured or extension-derived grammar
func analyzeSource(cfg *config.Config, name, source string) types.MetricsRecord {
	grammar := cfg.Analysis.Grammar
	if grammar == "" && name != stdinName {
		grammar = parser.GrammarForPath(name).Name
	}
	return analysis.AnalyzeWith(source, analysis.Options{
		Grammar:    grammar,
		IndentUnit: cfg.Analysis.IndentUnit,
	})
}

func analyzeCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c, "")
	if err != nil {
		return err
	}

	names := c.Args().Slice()
	if len(names) == 0 {
		names = []string{stdinName}
	}

	formatter := newFormatter(c, cfg)
	over := false
	for i, name := range names {
		source, err := readSource(c, name)
		if err != nil {
			return err
		}

		record := analyzeSource(cfg, name, source)
		if i > 0 && cfg.Output.Format == display.FormatText {
			fmt.Fprintln(c.App.Writer)
		}

		label := name
		if name == stdinName {
			label = "<stdin>"
		}
		fmt.Fprintln(c.App.Writer, formatter.Record(label, record))

		for _, m := range compare.Summarize(record, cfg.Thresholds).Metrics {
			if !m.IsGood {
				over = true
			}
		}
	}

	if over && c.Bool("fail-over-threshold") {
		return errOverThreshold
	}
	return nil
}

func compareCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("compare needs exactly two files, got %d", c.NArg())
	}

	cfg, err := loadConfigWithOverrides(c, "")
	if err != nil {
		return err
	}

	beforeName, afterName := c.Args().Get(0), c.Args().Get(1)
	if beforeName == stdinName && afterName == stdinName {
		return errors.New("only one side of a comparison can be read from stdin")
	}

	beforeSource, err := readSource(c, beforeName)
	if err != nil {
		return err
	}
	afterSource, err := readSource(c, afterName)
	if err != nil {
		return err
	}

	opts := compare.Options{
		Thresholds:          cfg.Thresholds,
		SimilarityThreshold: cfg.Compare.SimilarityThreshold,
	}
	if c.IsSet("similarity") {
		opts.SimilarityThreshold = c.Float64("similarity")
	}

	cmp := compare.Compare(
		analyzeSource(cfg, beforeName, beforeSource),
		analyzeSource(cfg, afterName, afterSource),
		opts,
	)
	fmt.Fprintln(c.App.Writer, newFormatter(c, cfg).Comparison(cmp))

	if c.Bool("fail-on-regression") && len(cmp.Regressions()) > 0 {
		return errRegression
	}
	return nil
}

func scanCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c, c.Args().First())
	if err != nil {
		return err
	}

	opts := scan.OptionsFromConfig(cfg)
	if workers := c.Int("workers"); workers > 0 {
		opts.Workers = workers
	}
	scanner := scan.New(opts)

	ctx, cancel := signalContext(c)
	defer cancel()

	if c.Bool("test-run") {
		files, err := scanner.Files(ctx)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(c.App.Writer, filepath.ToSlash(f))
		}
		return nil
	}

	start := time.Now()
	result, err := scanner.Scan(ctx)
	if err != nil {
		return err
	}
	debug.LogScan("scanned %d files in %v\n", result.Totals.Files, time.Since(start))

	fmt.Fprintln(c.App.Writer, newFormatter(c, cfg).Scan(result))

	if err := result.Err(); err != nil {
		fmt.Fprintf(c.App.ErrWriter, "warning: %v\n", err)
	}
	return nil
}

func watchCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c, c.Args().First())
	if err != nil {
		return err
	}

	opts := scan.OptionsFromConfig(cfg)
	// editors rewrite files without changing them on every save
	opts.Cache = cache.New(cfg.Analysis.CacheEntries)
	scanner := scan.New(opts)

	debounceMs := cfg.Watch.DebounceMs
	if c.IsSet("debounce") {
		debounceMs = c.Int("debounce")
	}
	watcher := watch.New(scanner, watch.Options{Debounce: time.Duration(debounceMs) * time.Millisecond})
	formatter := newFormatter(c, cfg)

	ctx, cancel := signalContext(c)
	defer cancel()

	fmt.Fprintf(c.App.ErrWriter, "Watching %s (Ctrl+C to stop)\n", scanner.Root())
	err = watcher.Run(ctx, func(e watch.Event) {
		if e.Report == nil {
			fmt.Fprintf(c.App.Writer, "%s: %s\n", e.Type, e.Path)
			return
		}
		if cfg.Output.Format == display.FormatText {
			fmt.Fprintf(c.App.Writer, "%s: %s\n", e.Type, e.Path)
		}
		fmt.Fprintln(c.App.Writer, formatter.FileReport(*e.Report))
	})
	if errors.Is(err, context.Canceled) {
		stats := watcher.Stats()
		fmt.Fprintf(c.App.ErrWriter, "Stopped after %d events (%d errors, %d unchanged)\n",
			stats.EventsProcessed, stats.ErrorCount, opts.Cache.Stats().Hits)
		return nil
	}
	return err
}

func mcpCommand(c *cli.Context) error {
	// stdout carries the protocol
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c, "")
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	ctx, cancel := signalContext(c)
	defer cancel()

	err = mcp.NewServer(cfg).Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func grammarsCommand(c *cli.Context) error {
	for _, name := range parser.Names() {
		g, _ := parser.Lookup(name)
		marker := ""
		if name == parser.DefaultGrammar {
			marker = " (default)"
		}
		fmt.Fprintf(c.App.Writer, "%-12s %s%s\n", name, strings.Join(g.Extensions, " "), marker)
	}
	return nil
}

func versionCommand(c *cli.Context) error {
	fmt.Fprintln(c.App.Writer, version.FullInfo())
	fmt.Fprintf(c.App.Writer, "build: %s\n", version.BuildID())
	fmt.Fprintf(c.App.Writer, "go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil
}
