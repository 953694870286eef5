// Package scan measures every matching source file under a directory tree
// with a bounded pool of workers.
package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/sauco/internal/analysis"
	"github.com/standardbeagle/sauco/internal/cache"
	"github.com/standardbeagle/sauco/internal/config"
	"github.com/standardbeagle/sauco/internal/debug"
	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
	"github.com/standardbeagle/sauco/internal/parser"
	"github.com/standardbeagle/sauco/internal/types"
	"github.com/standardbeagle/sauco/pkg/pathutil"
)

// Reasons a matched file is reported without metrics
const (
	SkipTooLarge = "too large"
	SkipBinary   = "binary"
)

// Options controls file discovery and analysis
type Options struct {
	Root             string
	Include          []string
	Exclude          []string
	Workers          int
	MaxFileSize      int64  // 0 disables the limit
	RespectGitignore bool
	Grammar          string // empty selects the grammar by extension
	IndentUnit       int
	Cache            *cache.RecordCache // nil analyzes every file afresh
}

// OptionsFromConfig maps the scan and analysis sections of cfg onto Options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Root:             cfg.Project.Root,
		Include:          cfg.Scan.Include,
		Exclude:          cfg.Scan.Exclude,
		Workers:          cfg.Scan.Workers,
		MaxFileSize:      cfg.Scan.MaxFileSize,
		RespectGitignore: cfg.Scan.RespectGitignore,
		Grammar:          cfg.Analysis.Grammar,
		IndentUnit:       cfg.Analysis.IndentUnit,
	}
}

// FileReport is the outcome for one file
type FileReport struct {
	Path        string               `json:"path"` // relative to the scan root
	Grammar     string               `json:"grammar,omitempty"`
	Size        int64                `json:"size"`
	Fingerprint string               `json:"fingerprint,omitempty"` // xxhash64 of the content
	Metrics     *types.MetricsRecord `json:"metrics,omitempty"`
	Skipped     string               `json:"skipped,omitempty"`
	Error       string               `json:"error,omitempty"`

	err error
}

// Err returns the failure behind Error, if any
func (r FileReport) Err() error {
	return r.err
}

// Totals aggregates a scan
type Totals struct {
	Files           int `json:"files"`
	Analyzed        int `json:"analyzed"`
	Skipped         int `json:"skipped"`
	Failed          int `json:"failed"`
	Fallback        int `json:"fallback"`
	Methods         int `json:"methods"`
	CyclomaticTotal int `json:"cyclomatic_complexity"`
	MaxNesting      int `json:"max_nesting"`
}

// Result holds every report of a scan, ordered by path
type Result struct {
	Root    string       `json:"root"`
	Reports []FileReport `json:"reports"`
	Totals  Totals       `json:"totals"`
}

// Err collects the per-file failures of the scan
func (r *Result) Err() error {
	var errs []error
	for _, report := range r.Reports {
		errs = append(errs, report.err)
	}
	return saucoerrors.NewMultiError(errs).ErrorOrNil()
}

// Scanner walks a tree and analyzes the files its filter selects
type Scanner struct {
	opts   Options
	filter *Filter
}

// New creates a scanner. The root's .gitignore is folded into the exclusions when enabled.
func New(opts Options) *Scanner {
	if opts.Root == "" {
		opts.Root = "."
	}
	if abs, err := filepath.Abs(opts.Root); err == nil {
		opts.Root = abs
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	exclude := opts.Exclude
	if opts.RespectGitignore {
		patterns, err := config.LoadGitignore(opts.Root)
		if err != nil {
			debug.LogScan("failed to load .gitignore: %v\n", err)
		}
		exclude = config.DeduplicatePatterns(append(append([]string(nil), exclude...), config.GitignoreExclusions(patterns)...))
	}

	return &Scanner{
		opts:   opts,
		filter: NewFilter(opts.Include, exclude),
	}
}

// Root returns the absolute scan root
func (s *Scanner) Root() string {
	return s.opts.Root
}

// Filter returns the path filter the scanner applies
func (s *Scanner) Filter() *Filter {
	return s.filter
}

// Files lists the absolute paths of the files to analyze, sorted.
// When the root is a single file it is returned as is.
func (s *Scanner) Files(ctx context.Context) ([]string, error) {
	root := s.opts.Root
	info, err := os.Stat(root)
	if err != nil {
		return nil, saucoerrors.NewFileError("stat", root, err)
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	visitedDirs := make(map[string]bool)

	err = filepath.Walk(root, func(path string, info os.FileInfo, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			debug.LogScan("walk error for %s: %v\n", path, walkErr)
			return nil
		}

		rel := pathutil.ToSlashRelative(path, root)

		if info.IsDir() {
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return filepath.SkipDir
			}
			if visitedDirs[realPath] {
				return filepath.SkipDir
			}
			visitedDirs[realPath] = true

			if path != root && s.filter.ExcludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode().IsRegular() && s.filter.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory tree from %s: %w", root, err)
	}

	sort.Strings(files)
	debug.LogScan("found %d files under %s\n", len(files), root)
	return files, nil
}

// Scan analyzes every selected file. The returned error is only set when discovery
// fails or ctx ends; per-file failures are kept in the reports and in Result.Err.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	files, err := s.Files(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]FileReport, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = s.AnalyzeFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Root: s.opts.Root, Reports: reports}
	result.Totals = summarize(reports)
	return result, nil
}

// AnalyzeFile reads and measures one file. Failures are recorded in the report.
func (s *Scanner) AnalyzeFile(path string) FileReport {
	report := FileReport{Path: pathutil.ToSlashRelative(path, s.opts.Root)}
	if report.Path == "." {
		// the root is the file itself
		report.Path = filepath.Base(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return report.failed(saucoerrors.NewFileError("stat", path, err))
	}
	report.Size = info.Size()
	if s.opts.MaxFileSize > 0 && report.Size > s.opts.MaxFileSize {
		report.Skipped = SkipTooLarge
		return report
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return report.failed(saucoerrors.NewFileError("read", path, err))
	}
	report.Fingerprint = Fingerprint(content)
	if IsBinary(content) {
		report.Skipped = SkipBinary
		return report
	}

	report.Grammar = s.grammarFor(path)
	record := s.analyze(content, report.Grammar, report.Fingerprint)
	report.Metrics = &record
	return report
}

// AnalyzeSource measures source with grammar, empty meaning the configured one.
// Results are shared through the scanner's cache when it has one.
func (s *Scanner) AnalyzeSource(source []byte, grammar string) types.MetricsRecord {
	if grammar == "" {
		grammar = s.opts.Grammar
	}
	return s.analyze(source, grammar, Fingerprint(source))
}

func (s *Scanner) analyze(content []byte, grammar, fingerprint string) types.MetricsRecord {
	var key string
	if s.opts.Cache != nil {
		key = cache.Key(grammar, s.opts.IndentUnit, fingerprint)
		if record, ok := s.opts.Cache.Get(key); ok {
			return record
		}
	}

	record := analysis.AnalyzeWith(string(content), analysis.Options{
		Grammar:    grammar,
		IndentUnit: s.opts.IndentUnit,
	})
	if s.opts.Cache != nil {
		s.opts.Cache.Put(key, record)
	}
	return record
}

// Cache returns the record cache, or nil
func (s *Scanner) Cache() *cache.RecordCache {
	return s.opts.Cache
}

func (s *Scanner) grammarFor(path string) string {
	if s.opts.Grammar != "" {
		return s.opts.Grammar
	}
	return parser.GrammarForPath(path).Name
}

func (r FileReport) failed(err error) FileReport {
	r.err = saucoerrors.NewAnalysisError("scan", err).WithFile(r.Grammar, r.Path)
	r.Error = err.Error()
	return r
}

// Fingerprint identifies file content; equal content always yields an equal fingerprint
func Fingerprint(content []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(content))
}

func summarize(reports []FileReport) Totals {
	totals := Totals{Files: len(reports)}
	for _, r := range reports {
		switch {
		case r.err != nil:
			totals.Failed++
		case r.Metrics == nil:
			totals.Skipped++
		default:
			totals.Analyzed++
			if r.Metrics.Fallback {
				totals.Fallback++
			}
			totals.Methods += r.Metrics.MethodCount
			totals.CyclomaticTotal += r.Metrics.CyclomaticTotal
			totals.MaxNesting = max(totals.MaxNesting, r.Metrics.MaxNesting)
		}
	}
	return totals
}
