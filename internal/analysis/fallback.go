package analysis

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/sauco/internal/debug"
	"github.com/standardbeagle/sauco/internal/types"
)

// DefaultIndentUnit is the number of columns that make up one nesting level
// when nesting is estimated from indentation
const DefaultIndentUnit = 4

// Method definition shapes recognised without a parser
var methodPatterns = []*regexp.Regexp{
	// def name( / function name(
	regexp.MustCompile(`\b(?:def|function)\s+(\w+)\s*\(`),
	// return_type name(...) {
	regexp.MustCompile(`(?:\w+\s+)+(\w+)\s*\([^)]*\)\s*\{`),
	// name = (...) => { / name = x => (
	regexp.MustCompile(`(?:(?:const|let|var)\s+)?(\w+)\s*=\s*(?:\([^)]*\)|[^=\n]*)\s*=>\s*[{(]`),
}

// names that the brace pattern picks up from control statements
var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true,
	"return": true, "foreach": true, "using": true, "lock": true, "synchronized": true,
}

var (
	ifPattern       = regexp.MustCompile(`\b(?:if|elif)\b`)
	loopPattern     = regexp.MustCompile(`\b(?:for|while)\b`)
	doPattern       = regexp.MustCompile(`\bdo\s*\{`)
	iteratorPattern = regexp.MustCompile(`\.(?:forEach|map|filter|reduce)\s*\(`)
	handlerPattern  = regexp.MustCompile(`\b(?:catch|except)\b`)
	logicalPattern  = regexp.MustCompile(`&&|\|\|| and | or `)
)

// fallbackMetrics estimates the metrics lexically for source that could not be parsed.
// Each metric is computed independently; a failure zeroes that metric only.
func fallbackMetrics(source string, indentUnit int) types.MetricsRecord {
	if indentUnit <= 0 {
		indentUnit = DefaultIndentUnit
	}

	methodCount := guarded("method_number", func() int { return countMethods(source) })
	ifCount := guarded("number_of_ifs", func() int { return countMatches(ifPattern, source) })
	loopCount := guarded("number_of_loops", func() int {
		return countMatches(loopPattern, source) +
			countMatches(doPattern, source) +
			countMatches(iteratorPattern, source)
	})
	cyclomatic := guarded("cyclomatic_complexity", func() int {
		return 1 + ifCount + loopCount +
			countMatches(handlerPattern, source) +
			countMatches(logicalPattern, source)
	})
	maxNesting := guarded("max_nesting", func() int { return indentNesting(source, indentUnit) })

	record := Aggregate(nil, ifCount, loopCount, Complexity{Total: cyclomatic}, maxNesting)
	record.MethodCount = methodCount
	record.AverageMethodSize = guardedFloat("average_method_size", func() float64 {
		if methodCount == 0 {
			return 0
		}
		return float64(nonBlankLines(source)) / float64(methodCount)
	})
	record.Fallback = true
	return record
}

// countMethods counts lines holding at least one method definition shape.
// A line matched by several patterns counts once.
func countMethods(source string) int {
	lines := make(map[int]bool)
	for _, re := range methodPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(source, -1) {
			name := source[m[2]:m[3]]
			if controlKeywords[name] {
				continue
			}
			lines[strings.Count(source[:m[2]], "\n")] = true
		}
	}
	return len(lines)
}

func countMatches(re *regexp.Regexp, source string) int {
	return len(re.FindAllStringIndex(source, -1))
}

// indentNesting is the deepest indentation among non-blank lines, in indent units.
// A tab counts as one full unit.
func indentNesting(source string, indentUnit int) int {
	deepest := 0
	for _, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tabs, spaces := 0, 0
	scan:
		for _, r := range line {
			switch r {
			case '\t':
				tabs++
			case ' ':
				spaces++
			default:
				break scan
			}
		}
		if depth := tabs + spaces/indentUnit; depth > deepest {
			deepest = depth
		}
	}
	return deepest
}

func nonBlankLines(source string) int {
	count := 0
	for _, line := range strings.Split(source, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

func guarded(metric string, fn func() int) (n int) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogAnalysis("lexical %s failed: %v\n", metric, r)
			n = 0
		}
	}()
	return fn()
}

func guardedFloat(metric string, fn func() float64) (f float64) {
	defer func() {
		if r := recover(); r != nil {
			debug.LogAnalysis("lexical %s failed: %v\n", metric, r)
			f = 0
		}
	}()
	return fn()
}
