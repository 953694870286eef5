package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
)

// pyprojectSection mirrors the [tool.sauco] table of pyproject.toml
type pyprojectSection struct {
	Grammar             string                 `toml:"grammar"`
	IndentUnit          *int                   `toml:"indent_unit"`
	CacheEntries        *int                   `toml:"cache_entries"`
	Thresholds          map[string]interface{} `toml:"thresholds"`
	Include             []string               `toml:"include"`
	Exclude             []string               `toml:"exclude"`
	Workers             *int                   `toml:"workers"`
	MaxFileSize         string                 `toml:"max_file_size"`
	RespectGitignore    *bool                  `toml:"respect_gitignore"`
	DebounceMs          *int                   `toml:"debounce_ms"`
	Format              string                 `toml:"format"`
	SimilarityThreshold *float64               `toml:"similarity_threshold"`
}

type pyprojectFile struct {
	Tool struct {
		Sauco *pyprojectSection `toml:"sauco"`
	} `toml:"tool"`
}

// applyPyprojectFile layers [tool.sauco] from path over cfg.
// It reports false when the file or the table is absent.
func applyPyprojectFile(cfg *Config, path string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, saucoerrors.NewFileError("read", path, err)
	}
	return applyPyproject(cfg, data)
}

func applyPyproject(cfg *Config, data []byte) (bool, error) {
	var file pyprojectFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return false, fmt.Errorf("failed to parse pyproject.toml: %w", err)
	}
	section := file.Tool.Sauco
	if section == nil {
		return false, nil
	}

	if section.Grammar != "" {
		cfg.Analysis.Grammar = section.Grammar
	}
	if section.IndentUnit != nil {
		cfg.Analysis.IndentUnit = *section.IndentUnit
	}
	if section.CacheEntries != nil {
		cfg.Analysis.CacheEntries = *section.CacheEntries
	}
	for name, raw := range section.Thresholds {
		// TOML integers and floats decode to different Go types
		switch v := raw.(type) {
		case int64:
			cfg.Thresholds[name] = float64(v)
		case float64:
			cfg.Thresholds[name] = v
		default:
			return false, saucoerrors.NewConfigError("thresholds."+name, fmt.Sprint(raw), fmt.Errorf("expected a number, got %T", raw))
		}
	}
	if section.Include != nil {
		cfg.Scan.Include = section.Include
	}
	if len(section.Exclude) > 0 {
		cfg.Scan.Exclude = DeduplicatePatterns(append(cfg.Scan.Exclude, section.Exclude...))
	}
	if section.Workers != nil {
		cfg.Scan.Workers = *section.Workers
	}
	if section.MaxFileSize != "" {
		size, err := parseSize(section.MaxFileSize)
		if err != nil {
			return false, saucoerrors.NewConfigError("max_file_size", section.MaxFileSize, err)
		}
		cfg.Scan.MaxFileSize = size
	}
	if section.RespectGitignore != nil {
		cfg.Scan.RespectGitignore = *section.RespectGitignore
	}
	if section.DebounceMs != nil {
		cfg.Watch.DebounceMs = *section.DebounceMs
	}
	if section.Format != "" {
		cfg.Output.Format = section.Format
	}
	if section.SimilarityThreshold != nil {
		cfg.Compare.SimilarityThreshold = *section.SimilarityThreshold
	}

	return true, nil
}
