package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountMethods(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"python def", "def a(x):\n    pass\ndef b():\n    pass\n", 2},
		{"js function counted once", "function go() {\n}\n", 1},
		{"java method", "public static int sum(int a, int b) {\n  return a + b;\n}\n", 1},
		{"arrow binding", "const f = (a) => {\n};\nlet g = x => (x);\n", 2},
		{"control statements are not methods", "} else if (x) {\n} while (y) {\n", 0},
		{"nothing", "x = 1\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, countMethods(tt.code))
		})
	}
}

func TestIndentNesting(t *testing.T) {
	assert.Equal(t, 0, indentNesting("", 4))
	assert.Equal(t, 0, indentNesting("a\nb\n", 4))
	assert.Equal(t, 2, indentNesting("a\n    b\n        c\n", 4))
	assert.Equal(t, 3, indentNesting("a\n\t\t\tb\n", 4), "a tab is one unit")
	assert.Equal(t, 1, indentNesting("a\n      b\n", 4), "partial units round down")
	assert.Equal(t, 0, indentNesting("a\n            \n", 4), "blank lines are ignored")
}

func TestFallbackMetrics(t *testing.T) {
	code := "function f(a, b) {\n    if (a && b) {\n        try { g(); } catch (e) {}\n    }\n    items.forEach(x => x);\n}\n"
	record := fallbackMetrics(code, 0)

	assert.True(t, record.Fallback)
	assert.Equal(t, 1, record.MethodCount)
	assert.Equal(t, 1, record.IfCount)
	assert.Equal(t, 1, record.LoopCount)
	// 1 + if + forEach + catch + &&
	assert.Equal(t, 5, record.CyclomaticTotal)
	assert.Equal(t, 2, record.MaxNesting)
	assert.InDelta(t, 6.0, record.AverageMethodSize, 1e-9)
	assert.Empty(t, record.Methods)
	assert.Empty(t, record.PerFunctionComplexity)
}

func TestFallbackMetrics_NoMethods(t *testing.T) {
	record := fallbackMetrics("while x:\n  do_thing(\n", 2)

	assert.Equal(t, 0, record.MethodCount)
	assert.Equal(t, 0.0, record.AverageMethodSize)
	assert.Equal(t, 1, record.LoopCount)
	assert.Equal(t, 2, record.CyclomaticTotal)
	assert.Equal(t, 1, record.MaxNesting)
}

func TestGuarded(t *testing.T) {
	assert.Equal(t, 7, guarded("ok", func() int { return 7 }))
	assert.Equal(t, 0, guarded("boom", func() int { panic("bad pattern") }))
	assert.Equal(t, 0.0, guardedFloat("boom", func() float64 { panic("bad pattern") }))
}
