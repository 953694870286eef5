package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
	"github.com/standardbeagle/sauco/internal/parser"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateAnalysisConfig(&cfg.Analysis); err != nil {
		return saucoerrors.NewConfigError("analysis", cfg.Analysis.Grammar, err)
	}

	if err := v.validateThresholds(cfg.Thresholds); err != nil {
		return saucoerrors.NewConfigError("thresholds", "", err)
	}

	if err := v.validateScanConfig(&cfg.Scan); err != nil {
		return saucoerrors.NewConfigError("scan", "", err)
	}

	if cfg.Watch.DebounceMs < 0 {
		return saucoerrors.NewConfigError("watch", fmt.Sprint(cfg.Watch.DebounceMs),
			fmt.Errorf("DebounceMs cannot be negative, got %d", cfg.Watch.DebounceMs))
	}

	if cfg.Output.Format != "" && !slices.Contains(OutputFormats, cfg.Output.Format) {
		return saucoerrors.NewConfigError("output", cfg.Output.Format,
			fmt.Errorf("format must be one of %v", OutputFormats))
	}

	if t := cfg.Compare.SimilarityThreshold; t < 0 || t > 1 {
		return saucoerrors.NewConfigError("compare", fmt.Sprint(t),
			errors.New("similarity_threshold must be between 0 and 1"))
	}

	v.setSmartDefaults(cfg)
	return nil
}

// validateAnalysisConfig validates grammar and indentation settings
func (v *Validator) validateAnalysisConfig(analysis *Analysis) error {
	if analysis.Grammar != "" {
		g, ok := parser.Lookup(analysis.Grammar)
		if !ok {
			return fmt.Errorf("unknown grammar %q, supported: %v", analysis.Grammar, parser.Names())
		}
		analysis.Grammar = g.Name
	}

	if analysis.IndentUnit <= 0 {
		return fmt.Errorf("IndentUnit must be positive, got %d", analysis.IndentUnit)
	}

	if analysis.CacheEntries < 0 {
		return fmt.Errorf("CacheEntries cannot be negative, got %d", analysis.CacheEntries)
	}

	return nil
}

// validateThresholds rejects unknown metric names and negative bounds
func (v *Validator) validateThresholds(thresholds map[string]float64) error {
	known := DefaultThresholds()
	names := make([]string, 0, len(thresholds))
	for name := range thresholds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("unknown metric %q", name)
		}
		if thresholds[name] < 0 {
			return fmt.Errorf("threshold for %s cannot be negative, got %v", name, thresholds[name])
		}
	}
	return nil
}

// validateScanConfig validates batch scan settings
func (v *Validator) validateScanConfig(scan *Scan) error {
	// Workers: 0 means auto-detect (will be set by smart defaults)
	if scan.Workers < 0 {
		return fmt.Errorf("Workers cannot be negative, got %d", scan.Workers)
	}

	if scan.MaxFileSize < 0 {
		return fmt.Errorf("MaxFileSize cannot be negative, got %d", scan.MaxFileSize)
	}

	for _, pattern := range append(slices.Clone(scan.Include), scan.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}

	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Use cores-1 to leave headroom for the system, minimum of 1
	if cfg.Scan.Workers == 0 {
		cfg.Scan.Workers = max(1, runtime.NumCPU()-1)
	}

	if cfg.Scan.MaxFileSize == 0 {
		cfg.Scan.MaxFileSize = DefaultMaxFileSize
	}

	if cfg.Analysis.CacheEntries == 0 {
		cfg.Analysis.CacheEntries = DefaultCacheEntries
	}

	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = DefaultDebounceMs
	}

	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultOutputFormat
	}

	if cfg.Thresholds == nil {
		cfg.Thresholds = DefaultThresholds()
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
