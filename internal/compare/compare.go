// Package compare turns metrics records into named, threshold-judged metric lists
// and diffs a before/after pair of records, including per-function complexity.
package compare

import (
	"github.com/standardbeagle/sauco/internal/config"
	"github.com/standardbeagle/sauco/internal/types"
)

// Metric is one named value of a record judged against its threshold
type Metric struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	Threshold   float64 `json:"threshold"`
	IsGood      bool    `json:"is_good"`
}

// Summary is the judged metric list of one record
type Summary struct {
	Metrics      []Metric `json:"metrics"`
	OverallScore float64  `json:"overall_score"`
	Fallback     bool     `json:"fallback"`
}

// Definition names a metric and reads its value from a record
type Definition struct {
	Key         string
	Name        string
	Description string
	Value       func(types.MetricsRecord) float64
}

// Definitions lists the reported metrics in display order
var Definitions = []Definition{
	{"method_number", "Method Count", "Number of methods/functions in the code",
		func(r types.MetricsRecord) float64 { return float64(r.MethodCount) }},
	{"number_of_ifs", "If Statements", "Number of if statements in the code",
		func(r types.MetricsRecord) float64 { return float64(r.IfCount) }},
	{"number_of_loops", "Loops", "Number of loops in the code",
		func(r types.MetricsRecord) float64 { return float64(r.LoopCount) }},
	{"cyclomatic_complexity", "Cyclomatic Complexity", "Cyclomatic complexity of the code",
		func(r types.MetricsRecord) float64 { return float64(r.CyclomaticTotal) }},
	{"average_method_size", "Average Method Size", "Average number of lines of code per method",
		func(r types.MetricsRecord) float64 { return r.AverageMethodSize }},
	{"max_nesting", "Max Nesting", "Deepest nesting of control structures",
		func(r types.MetricsRecord) float64 { return float64(r.MaxNesting) }},
	{"cognitive_complexity", "Cognitive Complexity", "Measures the cognitive complexity of code",
		func(r types.MetricsRecord) float64 { return float64(r.CognitiveComplexity) }},
}

// Options controls judging and function pairing
type Options struct {
	Thresholds          map[string]float64 // nil selects config.DefaultThresholds
	SimilarityThreshold float64            // 0 selects config.DefaultSimilarityThreshold
}

func (o Options) withDefaults() Options {
	if o.Thresholds == nil {
		o.Thresholds = config.DefaultThresholds()
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = config.DefaultSimilarityThreshold
	}
	return o
}

// Summarize judges every metric of r. A metric with no threshold is judged against 0.
// The overall score is the mean of the metric values.
func Summarize(r types.MetricsRecord, thresholds map[string]float64) Summary {
	if thresholds == nil {
		thresholds = config.DefaultThresholds()
	}

	summary := Summary{
		Metrics:  make([]Metric, 0, len(Definitions)),
		Fallback: r.Fallback,
	}
	sum := 0.0
	for _, def := range Definitions {
		value := def.Value(r)
		threshold := thresholds[def.Key]
		summary.Metrics = append(summary.Metrics, Metric{
			Key:         def.Key,
			Name:        def.Name,
			Description: def.Description,
			Value:       value,
			Threshold:   threshold,
			IsGood:      value <= threshold,
		})
		sum += value
	}
	if len(summary.Metrics) > 0 {
		summary.OverallScore = sum / float64(len(summary.Metrics))
	}
	return summary
}

// MetricDelta is the change of one metric between two records
type MetricDelta struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Before   float64 `json:"before"`
	After    float64 `json:"after"`
	Delta    float64 `json:"delta"`
	Improved bool    `json:"improved"` // lower is better for every metric
}

// Comparison is the full before/after report
type Comparison struct {
	Before     Summary                    `json:"before"`
	After      Summary                    `json:"after"`
	Deltas     []MetricDelta              `json:"deltas"`
	ScoreDelta float64                    `json:"score_delta"`
	Functions  []FunctionPair             `json:"functions"`
	Added      []types.FunctionComplexity `json:"added"`
	Removed    []types.FunctionComplexity `json:"removed"`
}

// Compare diffs two records of the same unit before and after a change
func Compare(before, after types.MetricsRecord, opts Options) Comparison {
	opts = opts.withDefaults()

	cmp := Comparison{
		Before: Summarize(before, opts.Thresholds),
		After:  Summarize(after, opts.Thresholds),
	}
	cmp.ScoreDelta = cmp.After.OverallScore - cmp.Before.OverallScore

	cmp.Deltas = make([]MetricDelta, len(Definitions))
	for i, def := range Definitions {
		b, a := cmp.Before.Metrics[i].Value, cmp.After.Metrics[i].Value
		cmp.Deltas[i] = MetricDelta{
			Key:      def.Key,
			Name:     def.Name,
			Before:   b,
			After:    a,
			Delta:    a - b,
			Improved: a < b,
		}
	}

	cmp.Functions, cmp.Added, cmp.Removed = PairFunctions(
		before.PerFunctionComplexity, after.PerFunctionComplexity, opts.SimilarityThreshold)
	return cmp
}

// Improved reports whether the overall score went down
func (c Comparison) Improved() bool {
	return c.ScoreDelta < 0
}

// Regressions lists the metrics that were good before and are not after
func (c Comparison) Regressions() []Metric {
	var out []Metric
	for i, after := range c.After.Metrics {
		if c.Before.Metrics[i].IsGood && !after.IsGood {
			out = append(out, after)
		}
	}
	return out
}
