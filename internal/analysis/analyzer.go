package analysis

import (
	"github.com/standardbeagle/sauco/internal/debug"
	"github.com/standardbeagle/sauco/internal/parser"
	"github.com/standardbeagle/sauco/internal/types"
)

// Options tunes a single analysis
type Options struct {
	// Grammar names the grammar to parse with; empty or unknown selects the primary grammar
	Grammar string
	// IndentUnit is the number of columns per nesting level on the lexical path (0 means 4)
	IndentUnit int
}

// Analyze computes the structural metrics of source with the primary grammar.
// It never panics and never fails: source that cannot be parsed is measured lexically.
func Analyze(source string) types.MetricsRecord {
	return AnalyzeWith(source, Options{})
}

// AnalyzeWith computes the structural metrics of source with the given options
func AnalyzeWith(source string, opts Options) (record types.MetricsRecord) {
	grammar := resolveGrammar(opts.Grammar)

	defer func() {
		if r := recover(); r != nil {
			debug.LogAnalysis("recovered panic in structural pass (%s): %v\n", grammar.Name, r)
			record = lexical(source, opts, grammar.Name)
		}
	}()

	result := parser.ParseWith(grammar, source)
	if result.Failed() {
		debug.LogAnalysis("using lexical fallback: %v\n", result.Err)
		return lexical(source, opts, grammar.Name)
	}
	return structural(result.Tree)
}

// AnalyzeTree computes the metrics of an already parsed tree
func AnalyzeTree(tree *types.SyntaxTree) types.MetricsRecord {
	return structural(tree)
}

func structural(tree *types.SyntaxTree) types.MetricsRecord {
	v := collect(tree)
	record := Aggregate(v.methods, v.ifCount, v.loopCount, v.complexity(), v.maxNesting)
	record.CognitiveComplexity = v.cognitive
	if tree != nil {
		record.Grammar = tree.Grammar
	}
	return record
}

// lexical runs the fallback analyzer; a panic there yields an empty record
func lexical(source string, opts Options, grammar string) (record types.MetricsRecord) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogAnalysis("recovered panic in lexical fallback: %v\n", r)
			record = Aggregate(nil, 0, 0, Complexity{Total: 1}, 0)
			record.Fallback = true
			record.Grammar = grammar
		}
	}()
	record = fallbackMetrics(source, opts.IndentUnit)
	record.Grammar = grammar
	return record
}

func resolveGrammar(name string) *parser.Grammar {
	if name == "" {
		return parser.Default()
	}
	if g, ok := parser.Lookup(name); ok {
		return g
	}
	debug.LogAnalysis("unknown grammar %q, using %s\n", name, parser.DefaultGrammar)
	return parser.Default()
}
