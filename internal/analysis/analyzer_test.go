package analysis

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sauco/internal/types"
)

const siblingBranches = `def process(items):
    if items:
        print("non-empty")
    for item in items:
        print(item)
`

const nestedBranches = `def deep(items):
    if items:
        for item in items:
            if item:
                print(item)
`

const shortCircuit = `def check(a, b, c):
    return a and b and c
`

// TestAnalyze_SiblingBranches checks a function holding an if and a loop side by side
func TestAnalyze_SiblingBranches(t *testing.T) {
	record := Analyze(siblingBranches)

	assert.False(t, record.Fallback)
	assert.Equal(t, "python", record.Grammar)
	assert.Equal(t, 1, record.MethodCount)
	assert.Equal(t, 1, record.IfCount)
	assert.Equal(t, 1, record.LoopCount)
	assert.Equal(t, 3, record.CyclomaticTotal)
	assert.Equal(t, 1, record.MaxNesting)

	require.Len(t, record.Methods, 1)
	assert.Equal(t, types.MethodInfo{Name: "process", StartLine: 1, EndLine: 5, LineCount: 5}, record.Methods[0])
	assert.InDelta(t, 5.0, record.AverageMethodSize, 1e-9)
	assert.Equal(t, []types.FunctionComplexity{{Name: "process", Complexity: 3}}, record.PerFunctionComplexity)
}

func TestAnalyze_NestedBranches(t *testing.T) {
	record := Analyze(nestedBranches)

	assert.Equal(t, 3, record.MaxNesting)
	assert.Equal(t, 4, record.CyclomaticTotal)
	assert.Equal(t, 2, record.IfCount)
	assert.Equal(t, 1, record.LoopCount)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	record := Analyze("")

	assert.Equal(t, 0, record.MethodCount)
	assert.Equal(t, 0, record.IfCount)
	assert.Equal(t, 0, record.LoopCount)
	assert.Equal(t, 1, record.CyclomaticTotal)
	assert.Equal(t, 0, record.MaxNesting)
	assert.Equal(t, 0.0, record.AverageMethodSize)
	assert.Empty(t, record.Methods)
	assert.Empty(t, record.PerFunctionComplexity)
}

func TestAnalyze_BoolChain(t *testing.T) {
	record := Analyze(shortCircuit)

	assert.Equal(t, 3, record.CyclomaticTotal)
	require.Len(t, record.PerFunctionComplexity, 1)
	assert.Equal(t, 3, record.PerFunctionComplexity[0].Complexity)
	assert.Equal(t, 0, record.IfCount)
}

func TestAnalyze_MixedOperatorsStartNewChain(t *testing.T) {
	record := Analyze("def f(a, b, c, d):\n    return (a or b) and c and d\n")

	// "or" chain of two (+1) inside an "and" chain of three (+2)
	assert.Equal(t, 4, record.CyclomaticTotal)
}

func TestAnalyze_NoControlStructures(t *testing.T) {
	record := Analyze("x = 1\ny = x + 2\nprint(y)\n")

	assert.Equal(t, 0, record.MethodCount)
	assert.Equal(t, 0, record.IfCount)
	assert.Equal(t, 0, record.LoopCount)
	assert.Equal(t, 1, record.CyclomaticTotal)
	assert.Equal(t, 0, record.MaxNesting)
	assert.Equal(t, 0.0, record.AverageMethodSize)
}

func TestAnalyze_AddingTopLevelConstructs(t *testing.T) {
	base := "def f():\n    return 1\n"
	before := Analyze(base)

	withIf := Analyze(base + "if f():\n    y = 1\n")
	assert.Equal(t, before.IfCount+1, withIf.IfCount)
	assert.Equal(t, before.CyclomaticTotal+1, withIf.CyclomaticTotal)

	withLoop := Analyze(base + "for i in range(3):\n    f()\n")
	assert.Equal(t, before.LoopCount+1, withLoop.LoopCount)
	assert.Equal(t, before.CyclomaticTotal+1, withLoop.CyclomaticTotal)
}

func TestAnalyze_WrappingInConditionalAddsOneLevel(t *testing.T) {
	for _, src := range []string{siblingBranches, nestedBranches, shortCircuit} {
		plain := Analyze(src)

		var wrapped strings.Builder
		wrapped.WriteString("if True:\n")
		for _, line := range strings.Split(strings.TrimRight(src, "\n"), "\n") {
			wrapped.WriteString("    " + line + "\n")
		}
		record := Analyze(wrapped.String())

		require.False(t, record.Fallback)
		assert.Equal(t, plain.MaxNesting+1, record.MaxNesting)
	}
}

func TestAnalyze_AverageMatchesMethodLines(t *testing.T) {
	src := `class Shape:
    def area(self):
        return 0

    def describe(self):
        if self.area() > 10:
            return "big"
        return "small"

def helper():
    pass
`
	record := Analyze(src)

	require.Equal(t, 3, record.MethodCount)
	assert.InDelta(t, float64(record.TotalMethodLines()), record.AverageMethodSize*float64(record.MethodCount), 1e-9)
	assert.Equal(t, "area", record.Methods[0].Name)
	assert.Equal(t, 2, record.Methods[0].LineCount)
	assert.Equal(t, "describe", record.Methods[1].Name)
	assert.Equal(t, 4, record.Methods[1].LineCount)
	assert.Equal(t, 2, record.Methods[2].LineCount)
}

func TestAnalyze_TrailingCommentNotInSpan(t *testing.T) {
	src := "def f():\n    x = 1\n    return x\n    # trailing note\n"
	record := Analyze(src)

	require.Len(t, record.Methods, 1)
	assert.Equal(t, 3, record.Methods[0].EndLine)
}

func TestAnalyze_NestedFunctions(t *testing.T) {
	src := `def outer(xs):
    def inner(x):
        if x:
            return 1
        return 0
    for x in xs:
        inner(x)
`
	record := Analyze(src)

	assert.Equal(t, 2, record.MethodCount)
	assert.Equal(t, []types.FunctionComplexity{
		{Name: "outer", Complexity: 2},
		{Name: "inner", Complexity: 2},
	}, record.PerFunctionComplexity)
	assert.Equal(t, 3, record.CyclomaticTotal)
}

func TestAnalyze_ExceptionHandlers(t *testing.T) {
	src := `def load(path):
    try:
        return open(path).read()
    except FileNotFoundError:
        return ""
    except PermissionError:
        return None
    finally:
        print("done")
`
	record := Analyze(src)

	assert.Equal(t, 3, record.CyclomaticTotal)
	assert.Equal(t, 1, record.MaxNesting)
}

func TestAnalyze_ElifCountsElseDoesNot(t *testing.T) {
	src := `def sign(n):
    if n > 0:
        return 1
    elif n < 0:
        return -1
    else:
        return 0
`
	record := Analyze(src)

	assert.Equal(t, 2, record.IfCount)
	assert.Equal(t, 3, record.CyclomaticTotal)
	assert.Equal(t, 1, record.MaxNesting)
}

func TestAnalyze_ComprehensionsAndLambdasExcluded(t *testing.T) {
	src := "squares = [x * x for x in range(10) if x]\nsq = lambda v: v * v\nlabel = 'a' if squares else 'b'\n"
	record := Analyze(src)

	assert.Equal(t, 0, record.LoopCount)
	assert.Equal(t, 0, record.IfCount)
	assert.Equal(t, 0, record.MethodCount)
	assert.Equal(t, 1, record.CyclomaticTotal)
}

func TestAnalyze_MatchCases(t *testing.T) {
	src := `def name(x):
    match x:
        case 1:
            return "one"
        case _:
            return "other"
`
	record := Analyze(src)

	assert.Equal(t, 2, record.CyclomaticTotal, "the wildcard arm is not a decision")
	assert.Equal(t, 0, record.IfCount)
}

// The nesting expectations the original tool was checked against
func TestAnalyze_MaxNestingReferenceCases(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{
			name:     "simple function",
			code:     "\ndef simple_function():\n    print(\"No nesting\")\n",
			expected: 1,
		},
		{
			name: "triple nested if",
			code: `
def nested_function():
    if True:
        if True:
            if True:
                print("Triple nested if")
`,
			expected: 3,
		},
		{
			name: "complex nesting",
			code: `
def complex_function():
    for i in range(10):
        if i % 2 == 0:
            for j in range(i):
                if j > 0:
                    try:
                        print(f"Complex nesting: {i}, {j}")
                    except Exception as e:
                        print(f"Error: {e}")
`,
			expected: 5,
		},
		{
			name: "class with methods",
			code: `
class TestClass:
    def method1(self):
        if True:
            pass

    def method2(self):
        for i in range(10):
            if i > 5:
                while i > 0:
                    i -= 1
`,
			expected: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := Analyze(tt.code)
			assert.False(t, record.Fallback)
			assert.Equal(t, tt.expected, record.MaxNesting)
		})
	}
}

const jsNested = `function nestedJSFunction() {
    if (true) {
        for (let i = 0; i < 10; i++) {
            if (i % 2 === 0) {
                console.log("Nested JS code");
            }
        }
    }
}
`

func TestAnalyze_ForeignSourceFallsBack(t *testing.T) {
	record := Analyze(jsNested)

	assert.True(t, record.Fallback)
	assert.Equal(t, 1, record.MethodCount)
	assert.Equal(t, 2, record.IfCount)
	assert.Equal(t, 1, record.LoopCount)
	assert.Equal(t, 4, record.CyclomaticTotal)
	assert.Equal(t, 4, record.MaxNesting)
	assert.InDelta(t, 9.0, record.AverageMethodSize, 1e-9)
	assert.Empty(t, record.PerFunctionComplexity)
	assert.Equal(t, 0, record.CognitiveComplexity)
}

func TestAnalyzeWith_JavaScriptGrammar(t *testing.T) {
	record := AnalyzeWith(jsNested, Options{Grammar: "javascript"})

	assert.False(t, record.Fallback)
	assert.Equal(t, "javascript", record.Grammar)
	assert.Equal(t, 1, record.MethodCount)
	assert.Equal(t, "nestedJSFunction", record.Methods[0].Name)
	assert.Equal(t, 2, record.IfCount)
	assert.Equal(t, 1, record.LoopCount)
	assert.Equal(t, 4, record.CyclomaticTotal)
	assert.Equal(t, 3, record.MaxNesting)
}

func TestAnalyzeWith_JavaScriptArrowFunctions(t *testing.T) {
	src := "const double = (x) => x * 2;\nconst ok = (a, b) => {\n  return a && b;\n};\n"
	record := AnalyzeWith(src, Options{Grammar: "javascript"})

	require.Equal(t, 2, record.MethodCount)
	assert.Equal(t, "double", record.Methods[0].Name)
	assert.Equal(t, "ok", record.Methods[1].Name)
	assert.Equal(t, 2, record.Methods[1].StartLine)
	assert.Equal(t, 3, record.Methods[1].EndLine)
	assert.Equal(t, 2, record.CyclomaticTotal)
}

func TestAnalyzeWith_GoGrammar(t *testing.T) {
	src := `package main

func classify(n int) string {
	if n > 0 && n < 10 {
		return "small"
	} else if n >= 10 {
		return "large"
	} else {
		return "negative"
	}
}
`
	record := AnalyzeWith(src, Options{Grammar: "go"})

	assert.False(t, record.Fallback)
	assert.Equal(t, 1, record.MethodCount)
	assert.Equal(t, types.MethodInfo{Name: "classify", StartLine: 3, EndLine: 10, LineCount: 8}, record.Methods[0])
	assert.Equal(t, 2, record.IfCount)
	assert.Equal(t, 4, record.CyclomaticTotal)
	assert.Equal(t, 1, record.MaxNesting)
}

func TestAnalyzeWith_UnknownGrammarUsesPrimary(t *testing.T) {
	record := AnalyzeWith(siblingBranches, Options{Grammar: "cobol"})

	assert.Equal(t, "python", record.Grammar)
	assert.Equal(t, 3, record.CyclomaticTotal)
}

func TestAnalyzeWith_IndentUnit(t *testing.T) {
	src := "function f() {\n  if (x) {\n    y();\n  }\n}\n"

	assert.Equal(t, 1, AnalyzeWith(src, Options{}).MaxNesting)
	assert.Equal(t, 2, AnalyzeWith(src, Options{IndentUnit: 2}).MaxNesting)
}

func TestAnalyze_MalformedInputNeverFails(t *testing.T) {
	inputs := []string{
		"def (",
		"}}}{{{",
		strings.Repeat("(", 2000),
		"\x00\xff\xfe",
		"if if if:\n\t\t\telse",
		"class :\n  def\n",
		"\t\t\t\n\n   \n",
		"função(日本語) { retorno }",
	}

	for _, input := range inputs {
		assert.NotPanics(t, func() {
			record := Analyze(input)
			assert.GreaterOrEqual(t, record.CyclomaticTotal, 1)
			assert.GreaterOrEqual(t, record.MethodCount, 0)
			assert.GreaterOrEqual(t, record.IfCount, 0)
			assert.GreaterOrEqual(t, record.LoopCount, 0)
			assert.GreaterOrEqual(t, record.MaxNesting, 0)
			assert.GreaterOrEqual(t, record.AverageMethodSize, 0.0)
		})
	}
}

func TestAnalyze_ConcurrentCallsAreIndependent(t *testing.T) {
	sources := []string{siblingBranches, nestedBranches, shortCircuit, jsNested, ""}
	expected := make([]types.MetricsRecord, len(sources))
	for i, src := range sources {
		expected[i] = Analyze(src)
	}

	var wg sync.WaitGroup
	results := make([][]types.MetricsRecord, 8)
	for w := range results {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for _, src := range sources {
				results[w] = append(results[w], Analyze(src))
			}
		}(w)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, expected, got)
	}
}

func TestAnalyze_Parallel(t *testing.T) {
	for _, src := range []string{siblingBranches, nestedBranches, shortCircuit} {
		src := src
		t.Run(strings.SplitN(src, "(", 2)[0], func(t *testing.T) {
			t.Parallel()
			first := Analyze(src)
			second := Analyze(src)
			assert.Equal(t, first, second)
		})
	}
}
