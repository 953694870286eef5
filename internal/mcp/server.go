// Package mcp exposes the metrics engine as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/sauco/internal/cache"
	"github.com/standardbeagle/sauco/internal/config"
	"github.com/standardbeagle/sauco/internal/debug"
	"github.com/standardbeagle/sauco/internal/parser"
	"github.com/standardbeagle/sauco/internal/scan"
	"github.com/standardbeagle/sauco/internal/version"
)

// ServerName identifies the server to MCP clients
const ServerName = "sauco-mcp-server"

// Server serves the analysis tools
type Server struct {
	cfg     *config.Config
	scanner *scan.Scanner
	server  *mcp.Server
}

// NewServer creates a server for the project cfg describes and registers its tools
func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default(".")
	}

	// agents tend to resend the same snippet while iterating on it
	opts := scan.OptionsFromConfig(cfg)
	opts.Cache = cache.New(cfg.Analysis.CacheEntries)

	s := &Server{
		cfg:     cfg,
		scanner: scan.New(opts),
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version + "+" + version.BuildID(),
		}, nil),
	}
	s.registerTools()
	return s
}

// Start serves over stdin/stdout until ctx ends or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	debug.LogMCP("starting MCP server with stdio transport\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect serves a single session over transport
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

func (s *Server) registerTools() {
	grammars := "Grammar name: " + strings.Join(parser.Names(), ", ") + ". Defaults to the configured grammar."

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_code",
		Description: "Measure the structure of a source snippet: method count, if statements, loops, cyclomatic and cognitive complexity, average method size and max nesting, each judged against its threshold.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"code": {
					Type:        "string",
					Description: "Source code to analyze",
				},
				"grammar": {
					Type:        "string",
					Description: grammars,
				},
			},
			Required: []string{"code"},
		},
	}, s.handleAnalyzeCode)

	s.server.AddTool(&mcp.Tool{
		Name:        "compare_code",
		Description: "Compare the metrics of two versions of the same code. Reports per-metric deltas, the overall score change and per-function complexity, pairing renamed functions by name similarity.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"before": {
					Type:        "string",
					Description: "Source before the change",
				},
				"after": {
					Type:        "string",
					Description: "Source after the change",
				},
				"grammar": {
					Type:        "string",
					Description: grammars,
				},
			},
			Required: []string{"before", "after"},
		},
	}, s.handleCompareCode)

	s.server.AddTool(&mcp.Tool{
		Name:        "analyze_file",
		Description: "Measure a file inside the project root. The grammar is picked from the file extension unless one is configured.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {
					Type:        "string",
					Description: "File path, relative to the project root",
				},
			},
			Required: []string{"path"},
		},
	}, s.handleAnalyzeFile)
}
