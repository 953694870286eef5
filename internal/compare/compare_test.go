package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/sauco/internal/analysis"
	"github.com/standardbeagle/sauco/internal/types"
)

func fc(name string, complexity int) types.FunctionComplexity {
	return types.FunctionComplexity{Name: name, Complexity: complexity}
}

func TestSummarize(t *testing.T) {
	record := types.MetricsRecord{
		MethodCount:         2,
		IfCount:             3,
		LoopCount:           1,
		CyclomaticTotal:     12,
		AverageMethodSize:   4.5,
		MaxNesting:          2,
		CognitiveComplexity: 6,
	}
	thresholds := map[string]float64{
		"method_number":         20,
		"number_of_ifs":         3,
		"cyclomatic_complexity": 10,
	}

	summary := Summarize(record, thresholds)
	require.Len(t, summary.Metrics, len(Definitions))

	byKey := make(map[string]Metric)
	for _, m := range summary.Metrics {
		byKey[m.Key] = m
	}

	assert.Equal(t, "Method Count", byKey["method_number"].Name)
	assert.True(t, byKey["method_number"].IsGood)
	assert.True(t, byKey["number_of_ifs"].IsGood, "a value equal to the threshold is good")
	assert.False(t, byKey["cyclomatic_complexity"].IsGood)
	assert.False(t, byKey["number_of_loops"].IsGood, "a missing threshold is 0")
	assert.Equal(t, 0.0, byKey["number_of_loops"].Threshold)

	// (2 + 3 + 1 + 12 + 4.5 + 2 + 6) / 7
	assert.InDelta(t, 30.5/7, summary.OverallScore, 1e-9)
}

func TestSummarize_DefaultThresholds(t *testing.T) {
	summary := Summarize(types.MetricsRecord{CyclomaticTotal: 1}, nil)
	for _, m := range summary.Metrics {
		assert.True(t, m.IsGood, m.Key)
		assert.Greater(t, m.Threshold, 0.0, m.Key)
	}
}

func TestSummarize_OrderFollowsDefinitions(t *testing.T) {
	summary := Summarize(types.MetricsRecord{}, nil)
	for i, def := range Definitions {
		assert.Equal(t, def.Key, summary.Metrics[i].Key)
	}
}

func TestCompare_RealRefactoring(t *testing.T) {
	before := analysis.Analyze(`def process(items):
    total = 0
    for item in items:
        if item > 0:
            if item % 2 == 0:
                total += item
    return total
`)
	after := analysis.Analyze(`def is_even_positive(item):
    return item > 0 and item % 2 == 0

def process_items(items):
    return sum(i for i in items if is_even_positive(i))
`)

	cmp := Compare(before, after, Options{})

	byKey := make(map[string]MetricDelta)
	for _, d := range cmp.Deltas {
		byKey[d.Key] = d
	}
	assert.Equal(t, 1.0, byKey["method_number"].Delta)
	assert.True(t, byKey["number_of_ifs"].Improved)
	assert.True(t, byKey["number_of_loops"].Improved)
	assert.Equal(t, -2.0, byKey["max_nesting"].Delta)
	assert.True(t, cmp.Improved())
	assert.Less(t, cmp.ScoreDelta, 0.0)

	require.Len(t, cmp.Functions, 1)
	pair := cmp.Functions[0]
	assert.Equal(t, "process", pair.Before)
	assert.Equal(t, "process_items", pair.After)
	assert.True(t, pair.Renamed)
	assert.Equal(t, []types.FunctionComplexity{fc("is_even_positive", 2)}, cmp.Added)
	assert.Empty(t, cmp.Removed)
}

func TestCompare_Regressions(t *testing.T) {
	before := types.MetricsRecord{CyclomaticTotal: 4, MaxNesting: 2}
	after := types.MetricsRecord{CyclomaticTotal: 14, MaxNesting: 2}

	cmp := Compare(before, after, Options{})

	regressions := cmp.Regressions()
	require.Len(t, regressions, 1)
	assert.Equal(t, "cyclomatic_complexity", regressions[0].Key)
	assert.False(t, cmp.Improved())
}

func TestPairFunctions(t *testing.T) {
	tests := []struct {
		name        string
		before      []types.FunctionComplexity
		after       []types.FunctionComplexity
		wantPairs   [][2]string
		wantAdded   []string
		wantRemoved []string
	}{
		{
			name:      "exact names",
			before:    []types.FunctionComplexity{fc("load", 3), fc("save", 2)},
			after:     []types.FunctionComplexity{fc("save", 1), fc("load", 3)},
			wantPairs: [][2]string{{"load", "load"}, {"save", "save"}},
		},
		{
			name:      "rename within similarity",
			before:    []types.FunctionComplexity{fc("calculate_total", 5)},
			after:     []types.FunctionComplexity{fc("calculate_totals", 3)},
			wantPairs: [][2]string{{"calculate_total", "calculate_totals"}},
		},
		{
			name:        "unrelated names do not pair",
			before:      []types.FunctionComplexity{fc("parse", 4)},
			after:       []types.FunctionComplexity{fc("render", 2)},
			wantAdded:   []string{"render"},
			wantRemoved: []string{"parse"},
		},
		{
			name:        "repeated names pair positionally",
			before:      []types.FunctionComplexity{fc("anonymous", 1), fc("anonymous", 2), fc("anonymous", 3)},
			after:       []types.FunctionComplexity{fc("anonymous", 1), fc("anonymous", 2)},
			wantPairs:   [][2]string{{"anonymous", "anonymous"}, {"anonymous", "anonymous"}},
			wantRemoved: []string{"anonymous"},
		},
		{
			name:        "exact match wins over a closer rename",
			before:      []types.FunctionComplexity{fc("handle_request", 6), fc("handle_requests", 2)},
			after:       []types.FunctionComplexity{fc("handle_requests", 4)},
			wantPairs:   [][2]string{{"handle_requests", "handle_requests"}},
			wantRemoved: []string{"handle_request"},
		},
		{
			name:      "empty",
			wantPairs: nil,
		},
	}

	names := func(fns []types.FunctionComplexity) []string {
		var out []string
		for _, fn := range fns {
			out = append(out, fn.Name)
		}
		return out
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, added, removed := PairFunctions(tt.before, tt.after, 0.8)

			var gotPairs [][2]string
			for _, p := range pairs {
				gotPairs = append(gotPairs, [2]string{p.Before, p.After})
			}
			assert.Equal(t, tt.wantPairs, gotPairs)
			assert.Equal(t, tt.wantAdded, names(added))
			assert.Equal(t, tt.wantRemoved, names(removed))
		})
	}
}

func TestPairFunctions_Delta(t *testing.T) {
	pairs, _, _ := PairFunctions(
		[]types.FunctionComplexity{fc("Validate", 7)},
		[]types.FunctionComplexity{fc("validate", 3)},
		0.8,
	)

	require.Len(t, pairs, 1)
	assert.Equal(t, -4, pairs[0].Delta)
	assert.True(t, pairs[0].Renamed)
	assert.Equal(t, 1.0, pairs[0].Similarity, "names compare case-insensitively")
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, similarity("Foo", "foo"))
	assert.Equal(t, 0.0, similarity("", "foo"))
	assert.Greater(t, similarity("calculate_total", "calculate_totals"), 0.9)
	assert.Less(t, similarity("parse", "render"), 0.8)
}
