package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/standardbeagle/sauco/internal/debug"
	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
)

// applyKDLFile layers the KDL file at path over cfg. A missing file is not an error.
func applyKDLFile(cfg *Config, path string) (bool, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, saucoerrors.NewFileError("read", path, err)
	}

	if err := applyKDL(cfg, string(content)); err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}

	// A relative root is relative to the directory holding the file
	if !filepath.IsAbs(cfg.Project.Root) {
		cfg.Project.Root = filepath.Clean(filepath.Join(filepath.Dir(path), cfg.Project.Root))
	}
	return true, nil
}

// applyKDL overwrites the settings named in content. Nodes it does not know are ignored.
//
//	analysis { grammar "python"; indent_unit 4; cache_entries 1024 }
//	thresholds { cyclomatic_complexity 10 }
//	scan { include "**/*.py"; exclude "**/venv/**"; workers 4 }
//	watch { debounce_ms 300 }
//	output { format "json" }
func applyKDL(cfg *Config, content string) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
			}
		case "analysis":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "grammar":
					if s, ok := firstStringArg(cn); ok {
						cfg.Analysis.Grammar = s
					}
				case "indent_unit":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.IndentUnit = v
					}
				case "cache_entries":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.CacheEntries = v
					}
				}
			}
		case "thresholds":
			for _, cn := range n.Children {
				if v, ok := firstFloatArg(cn); ok {
					cfg.Thresholds[nodeName(cn)] = v
				}
			}
		case "scan":
			applyScanSection(cfg, n)
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "output":
			for _, cn := range n.Children {
				assignSimpleString(cn, "format", func(v string) { cfg.Output.Format = v })
			}
		case "compare":
			for _, cn := range n.Children {
				if nodeName(cn) == "similarity_threshold" {
					if v, ok := firstFloatArg(cn); ok {
						cfg.Compare.SimilarityThreshold = v
					}
				}
			}
		}
	}

	return nil
}

func applyScanSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "include":
			// A project include list replaces what lower layers chose
			cfg.Scan.Include = collectStringArgs(cn)
		case "exclude":
			cfg.Scan.Exclude = DeduplicatePatterns(append(cfg.Scan.Exclude, collectStringArgs(cn)...))
		case "workers":
			if v, ok := firstIntArg(cn); ok {
				cfg.Scan.Workers = v
			}
		case "max_file_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.Scan.MaxFileSize = int64(v)
			}
			if s, ok := firstStringArg(cn); ok {
				if sz, err := parseSize(s); err == nil {
					cfg.Scan.MaxFileSize = sz
				}
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Scan.RespectGitignore = b
			}
		}
	}
}

// Helper functions over the kdl-go document model
func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}
func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}
func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}
func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		debug.Log("CONFIG", "invalid number for '%s' in KDL config, got %T\n", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	// Block form: exclude { "pattern" } makes each string a child node name
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}

	return out
}
func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}

	return num * multiplier, nil
}
