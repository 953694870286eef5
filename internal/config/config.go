package config

import (
	"os"
	"path/filepath"

	"github.com/standardbeagle/sauco/internal/debug"
	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
)

// File names searched for configuration, in priority order
const (
	KDLFileName       = ".sauco.kdl"
	PyprojectFileName = "pyproject.toml"
)

// Defaults applied when a setting is absent from every config source
const (
	DefaultIndentUnit          = 4
	DefaultDebounceMs          = 300
	DefaultMaxFileSize         = 1024 * 1024
	DefaultOutputFormat        = "text"
	DefaultSimilarityThreshold = 0.8
	DefaultCacheEntries        = 1024
)

// Output formats understood by the display package
var OutputFormats = []string{"text", "json", "compact"}

// DefaultThresholds holds the upper bound at which each metric is still considered good.
// Keys are the wire names of the metrics record.
func DefaultThresholds() map[string]float64 {
	return map[string]float64{
		"method_number":         20,
		"number_of_ifs":         15,
		"number_of_loops":       10,
		"cyclomatic_complexity": 10,
		"average_method_size":   30,
		"max_nesting":           4,
		"cognitive_complexity":  15,
	}
}

type Config struct {
	Project    Project
	Analysis   Analysis
	Thresholds map[string]float64
	Scan       Scan
	Watch      Watch
	Output     Output
	Compare    Compare
	Source     string // file the project settings were read from, empty for defaults
}

type Project struct {
	Root string
}

type Analysis struct {
	Grammar      string // empty selects the grammar by file extension
	IndentUnit   int    // spaces per nesting level on the lexical fallback path
	CacheEntries int    // records kept for unchanged content by watch and mcp
}

type Scan struct {
	Include          []string
	Exclude          []string
	Workers          int   // 0 = auto-detect (NumCPU-1)
	MaxFileSize      int64 // files larger than this are reported as skipped
	RespectGitignore bool
}

type Watch struct {
	DebounceMs int
}

type Output struct {
	Format string
}

type Compare struct {
	SimilarityThreshold float64 // minimum Jaro-Winkler score for pairing renamed functions
}

// Default returns the built-in configuration rooted at root
func Default(root string) *Config {
	return &Config{
		Project: Project{Root: root},
		Analysis: Analysis{
			IndentUnit:   DefaultIndentUnit,
			CacheEntries: DefaultCacheEntries,
		},
		Thresholds: DefaultThresholds(),
		Scan: Scan{
			Include:          []string{},
			Exclude:          defaultExclusions(),
			MaxFileSize:      DefaultMaxFileSize,
			RespectGitignore: true,
		},
		Watch:   Watch{DebounceMs: DefaultDebounceMs},
		Output:  Output{Format: DefaultOutputFormat},
		Compare: Compare{SimilarityThreshold: DefaultSimilarityThreshold},
	}
}

func defaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/.*/**", // hidden directories
		"**/node_modules/**",
		"**/vendor/**",
		"**/venv/**",
		"**/__pycache__/**",
		"**/dist/**",
		"**/build/**",
		"**/target/**",
		"**/*.min.js",
	}
}

// Load reads configuration for the current directory, or from path when it names a file
func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot builds the effective configuration for rootDir.
//
// Layers, lowest priority first: built-in defaults, the global ~/.sauco.kdl, then the
// project's .sauco.kdl or, when absent, the [tool.sauco] table of pyproject.toml.
// An explicit path replaces the project lookup. Exclusions accumulate across layers.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}
	root, err := filepath.Abs(searchDir)
	if err != nil {
		root = searchDir
	}

	cfg := Default(root)

	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != root {
		if _, err := applyKDLFile(cfg, filepath.Join(homeDir, KDLFileName)); err != nil {
			debug.Log("CONFIG", "ignoring global config: %v\n", err)
		}
	}

	if path != "" {
		found, err := applyFile(cfg, path)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, saucoerrors.NewFileError("load config", path, os.ErrNotExist)
		}
		cfg.Source = path
	} else if err := applyProject(cfg, root); err != nil {
		return nil, err
	}

	if err := NewValidator().ValidateAndSetDefaults(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyProject layers the project's own config file over cfg
func applyProject(cfg *Config, root string) error {
	kdlPath := filepath.Join(root, KDLFileName)
	found, err := applyKDLFile(cfg, kdlPath)
	if err != nil {
		return err
	}
	if found {
		cfg.Source = kdlPath
		return nil
	}

	tomlPath := filepath.Join(root, PyprojectFileName)
	found, err = applyPyprojectFile(cfg, tomlPath)
	if err != nil {
		return err
	}
	if found {
		cfg.Source = tomlPath
	}
	return nil
}

// applyFile picks the reader by file name
func applyFile(cfg *Config, path string) (bool, error) {
	if filepath.Ext(path) == ".toml" {
		return applyPyprojectFile(cfg, path)
	}
	return applyKDLFile(cfg, path)
}

// DeduplicatePatterns removes duplicate patterns, keeping first occurrences in order
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}

	return result
}

// Threshold returns the configured bound for a metric and whether one is set
func (c *Config) Threshold(metric string) (float64, bool) {
	v, ok := c.Thresholds[metric]
	return v, ok
}
