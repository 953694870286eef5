package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/sauco/internal/config"
	"github.com/standardbeagle/sauco/internal/debug"
	"github.com/standardbeagle/sauco/internal/display"
	"github.com/standardbeagle/sauco/internal/parser"
	"github.com/standardbeagle/sauco/internal/version"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
// dir, when set, is the project directory named on the command line and wins over --root.
func loadConfigWithOverrides(c *cli.Context, dir string) (*config.Config, error) {
	configPath := c.String("config")
	root := c.String("root")
	if dir != "" {
		root = dir
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			// a single file is configured by its directory
			root = filepath.Dir(dir)
		}
	}

	cfg, err := config.LoadWithRoot(configPath, root)
	if err != nil {
		if configPath == "" {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}
	if cfg.Source != "" {
		debug.Log("CONFIG", "loaded %s\n", cfg.Source)
	}
	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", dir, err)
		}
		cfg.Project.Root = absDir
	}

	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Scan.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Scan.Exclude = config.DeduplicatePatterns(append(cfg.Scan.Exclude, excludeFlags...))
	}
	if grammar := c.String("grammar"); grammar != "" {
		cfg.Analysis.Grammar = grammar
	}
	if format := determineFormat(c); format != "" {
		cfg.Output.Format = format
	}

	// flags go through the same checks as the files
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// determineFormat returns the format the flags ask for, or "" to keep the configured one
func determineFormat(c *cli.Context) string {
	if c.Bool("json") {
		return display.FormatJSON
	}
	if c.Bool("compact") {
		return display.FormatCompact
	}
	return c.String("format")
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "sauco",
		Usage:                  "Structural code metrics: methods, branches, loops, complexity and nesting",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.kdl or pyproject.toml); default looks in the project root",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.StringFlag{
				Name:    "grammar",
				Aliases: []string{"g"},
				Usage:   "Grammar to parse with: " + strings.Join(parser.Names(), ", "),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: " + strings.Join(config.OutputFormats, ", "),
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
			&cli.BoolFlag{
				Name:  "compact",
				Usage: "Output one line per result",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g., --include 'src/**/*.py')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/migrations/**')",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Aliases:   []string{"a"},
				Usage:     "Measure source files, or stdin when no file or '-' is given",
				ArgsUsage: "[file...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "methods",
						Aliases: []string{"m"},
						Usage:   "List methods with their line spans and complexity",
					},
					&cli.BoolFlag{
						Name:  "fail-over-threshold",
						Usage: "Exit with status 1 when any metric exceeds its threshold",
					},
				},
				Action: analyzeCommand,
			},
			{
				Name:      "compare",
				Aliases:   []string{"cmp"},
				Usage:     "Compare the metrics of two versions of a file",
				ArgsUsage: "<before> <after>",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "similarity",
						Usage: "Minimum name similarity (0-1) to pair renamed functions",
					},
					&cli.BoolFlag{
						Name:  "fail-on-regression",
						Usage: "Exit with status 1 when a metric crosses its threshold",
					},
				},
				Action: compareCommand,
			},
			{
				Name:      "scan",
				Usage:     "Measure every matching file under a directory",
				ArgsUsage: "[dir]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of files analyzed concurrently (0 = config/CPU count)",
					},
					&cli.BoolFlag{
						Name:   "test-run",
						Usage:  "List the files that would be analyzed without analyzing them",
						Hidden: true,
					},
				},
				Action: scanCommand,
			},
			{
				Name:      "watch",
				Usage:     "Re-analyze files as they change",
				ArgsUsage: "[dir]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "debounce",
						Usage: "Quiet period in milliseconds before changed files are analyzed",
					},
				},
				Action: watchCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Start MCP (Model Context Protocol) server with stdio transport",
				Action: mcpCommand,
			},
			{
				Name:   "grammars",
				Usage:  "List the supported grammars and their file extensions",
				Action: grammarsCommand,
			},
			{
				Name:   "version",
				Usage:  "Show version and build information",
				Action: versionCommand,
			},
		},
	}
}

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if debug.IsDebugEnabled() {
		if path, err := debug.InitDebugLogFile(); err == nil {
			fmt.Fprintf(os.Stderr, "debug log: %s\n", path)
			defer debug.CloseDebugLog()
		}
	}

	if err := newApp().Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(args[0]), err)
		return 1
	}
	return 0
}
