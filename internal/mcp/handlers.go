package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/sauco/internal/compare"
	"github.com/standardbeagle/sauco/internal/debug"
	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
	"github.com/standardbeagle/sauco/internal/parser"
	"github.com/standardbeagle/sauco/internal/scan"
	"github.com/standardbeagle/sauco/internal/types"
	"github.com/standardbeagle/sauco/pkg/pathutil"
)

// AnalyzeParams are the arguments of analyze_code
type AnalyzeParams struct {
	Code    string `json:"code"`
	Grammar string `json:"grammar,omitempty"`
}

// CompareParams are the arguments of compare_code
type CompareParams struct {
	Before  string `json:"before"`
	After   string `json:"after"`
	Grammar string `json:"grammar,omitempty"`
}

// AnalyzeFileParams are the arguments of analyze_file
type AnalyzeFileParams struct {
	Path string `json:"path"`
}

// AnalyzeResponse carries a raw record and its judged metric list
type AnalyzeResponse struct {
	Record  types.MetricsRecord `json:"record"`
	Summary compare.Summary     `json:"summary"`
}

// FileResponse is the analyze_file result
type FileResponse struct {
	Report  scan.FileReport  `json:"report"`
	Summary *compare.Summary `json:"summary,omitempty"`
}

var errOutsideRoot = errors.New("path is outside the project root")

func (s *Server) handleAnalyzeCode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params AnalyzeParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("analyze_code", fmt.Errorf("invalid parameters: %w", err))
	}

	grammar, err := s.resolveGrammar(params.Grammar)
	if err != nil {
		return createErrorResponse("analyze_code", err)
	}

	record := s.analyze(params.Code, grammar)
	debug.LogMCP("analyze_code: %d bytes, grammar=%s, fallback=%v\n", len(params.Code), record.Grammar, record.Fallback)

	return createJSONResponse(AnalyzeResponse{
		Record:  record,
		Summary: compare.Summarize(record, s.cfg.Thresholds),
	})
}

func (s *Server) handleCompareCode(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params CompareParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("compare_code", fmt.Errorf("invalid parameters: %w", err))
	}

	grammar, err := s.resolveGrammar(params.Grammar)
	if err != nil {
		return createErrorResponse("compare_code", err)
	}

	before := s.analyze(params.Before, grammar)
	after := s.analyze(params.After, grammar)
	cmp := compare.Compare(before, after, compare.Options{
		Thresholds:          s.cfg.Thresholds,
		SimilarityThreshold: s.cfg.Compare.SimilarityThreshold,
	})
	debug.LogMCP("compare_code: score %.2f -> %.2f\n", cmp.Before.OverallScore, cmp.After.OverallScore)

	return createJSONResponse(cmp)
}

func (s *Server) handleAnalyzeFile(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params AnalyzeFileParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return createErrorResponse("analyze_file", fmt.Errorf("invalid parameters: %w", err))
	}
	if strings.TrimSpace(params.Path) == "" {
		return createErrorResponse("analyze_file", errors.New("path is required"))
	}

	path, err := s.resolvePath(params.Path)
	if err != nil {
		return createErrorResponse("analyze_file", err)
	}
	if _, err := os.Stat(path); err != nil {
		return createErrorResponse("analyze_file", saucoerrors.NewFileError("stat", params.Path, err))
	}

	report := s.scanner.AnalyzeFile(path)
	if err := report.Err(); err != nil {
		return createErrorResponse("analyze_file", err)
	}

	response := FileResponse{Report: report}
	if report.Metrics != nil {
		summary := compare.Summarize(*report.Metrics, s.cfg.Thresholds)
		response.Summary = &summary
	}
	return createJSONResponse(response)
}

// resolveGrammar validates an explicit grammar and falls back to the configured one
func (s *Server) resolveGrammar(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return s.cfg.Analysis.Grammar, nil
	}
	g, ok := parser.Lookup(name)
	if !ok {
		return "", fmt.Errorf("unknown grammar %q (available: %s)", name, strings.Join(parser.Names(), ", "))
	}
	return g.Name, nil
}

func (s *Server) analyze(code, grammar string) types.MetricsRecord {
	return s.scanner.AnalyzeSource([]byte(code), grammar)
}

// resolvePath makes path absolute and keeps it under the project root
func (s *Server) resolvePath(path string) (string, error) {
	root := s.scanner.Root()
	abs := pathutil.ToAbsolute(path, root)
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errOutsideRoot
	}
	return abs, nil
}
