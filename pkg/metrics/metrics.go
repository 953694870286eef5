// Package metrics is the public entry point of the sauco structural metrics engine.
//
// Analyze is a pure function: source text in, metrics record out. It performs no I/O,
// keeps no state between calls and is safe for concurrent use. Source that the
// grammar cannot parse is measured with a lexical heuristic instead, so every call
// returns a record.
//
//	record := metrics.Analyze(code)
//	fmt.Println(record.CyclomaticTotal, record.MaxNesting)
package metrics

import (
	"github.com/standardbeagle/sauco/internal/analysis"
	"github.com/standardbeagle/sauco/internal/parser"
	"github.com/standardbeagle/sauco/internal/types"
)

// Record is the metrics of one source unit
type Record = types.MetricsRecord

// MethodInfo is the line span of one function or method
type MethodInfo = types.MethodInfo

// FunctionComplexity is the cyclomatic complexity of one function
type FunctionComplexity = types.FunctionComplexity

// Options selects the grammar and the indentation unit of the lexical fallback
type Options = analysis.Options

// Analyze computes the metrics of source using the primary (Python) grammar
func Analyze(source string) Record {
	return analysis.Analyze(source)
}

// AnalyzeWith computes the metrics of source with explicit options
func AnalyzeWith(source string, opts Options) Record {
	return analysis.AnalyzeWith(source, opts)
}

// AnalyzeFile analyzes source with the grammar matching the file name's extension
func AnalyzeFile(name, source string) Record {
	return analysis.AnalyzeWith(source, Options{Grammar: parser.GrammarForPath(name).Name})
}

// Grammars lists the supported grammar names
func Grammars() []string {
	return parser.Names()
}
