package config

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
)

func TestValidator_ValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"known grammar", func(c *Config) { c.Analysis.Grammar = "rust" }, ""},
		{"unknown grammar", func(c *Config) { c.Analysis.Grammar = "cobol" }, "analysis"},
		{"zero indent unit", func(c *Config) { c.Analysis.IndentUnit = 0 }, "analysis"},
		{"negative indent unit", func(c *Config) { c.Analysis.IndentUnit = -2 }, "analysis"},
		{"negative cache size", func(c *Config) { c.Analysis.CacheEntries = -1 }, "analysis"},
		{"negative threshold", func(c *Config) { c.Thresholds["max_nesting"] = -1 }, "thresholds"},
		{"zero threshold", func(c *Config) { c.Thresholds["max_nesting"] = 0 }, ""},
		{"unknown threshold", func(c *Config) { c.Thresholds["lines_of_code"] = 100 }, "thresholds"},
		{"negative workers", func(c *Config) { c.Scan.Workers = -1 }, "scan"},
		{"negative file size", func(c *Config) { c.Scan.MaxFileSize = -5 }, "scan"},
		{"bad glob", func(c *Config) { c.Scan.Include = []string{"src/[a-"} }, "scan"},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -10 }, "watch"},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, "output"},
		{"similarity above one", func(c *Config) { c.Compare.SimilarityThreshold = 1.5 }, "compare"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/repo")
			tt.mutate(cfg)

			err := NewValidator().ValidateAndSetDefaults(cfg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var cfgErr *saucoerrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestValidator_NormalisesGrammar(t *testing.T) {
	cfg := Default("/repo")
	cfg.Analysis.Grammar = " TypeScript "

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "typescript", cfg.Analysis.Grammar)
}

func TestValidator_SmartDefaults(t *testing.T) {
	cfg := Default("/repo")
	cfg.Analysis.CacheEntries = 0
	cfg.Scan.Workers = 0
	cfg.Scan.MaxFileSize = 0
	cfg.Watch.DebounceMs = 0
	cfg.Output.Format = ""
	cfg.Thresholds = nil

	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, DefaultCacheEntries, cfg.Analysis.CacheEntries)
	assert.Equal(t, max(1, runtime.NumCPU()-1), cfg.Scan.Workers)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Scan.MaxFileSize)
	assert.Equal(t, DefaultDebounceMs, cfg.Watch.DebounceMs)
	assert.Equal(t, DefaultOutputFormat, cfg.Output.Format)
	assert.Equal(t, DefaultThresholds(), cfg.Thresholds)
}

func TestValidator_KeepsExplicitWorkers(t *testing.T) {
	cfg := Default("/repo")
	cfg.Scan.Workers = 7

	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, 7, cfg.Scan.Workers)
}
