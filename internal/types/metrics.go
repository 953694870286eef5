package types

// MethodInfo describes the line span of one function or method definition
type MethodInfo struct {
	Name      string `json:"name"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	LineCount int    `json:"line_count"`
}

// NewMethodInfo builds a MethodInfo, clamping the span so LineCount is at least 1
func NewMethodInfo(name string, startLine, endLine int) MethodInfo {
	if endLine < startLine {
		endLine = startLine
	}
	return MethodInfo{
		Name:      name,
		StartLine: startLine,
		EndLine:   endLine,
		LineCount: endLine - startLine + 1,
	}
}

// FunctionComplexity is the cyclomatic complexity of a single function body,
// excluding the decision points of functions nested inside it.
type FunctionComplexity struct {
	Name       string `json:"name"`
	Complexity int    `json:"complexity"`
}

// MetricsRecord is the result of analyzing one source unit.
// JSON names match the wire format consumed by the before/after comparison.
type MetricsRecord struct {
	MethodCount           int                  `json:"method_number"`
	Methods               []MethodInfo         `json:"methods"`
	IfCount               int                  `json:"number_of_ifs"`
	LoopCount             int                  `json:"number_of_loops"`
	CyclomaticTotal       int                  `json:"cyclomatic_complexity"`
	PerFunctionComplexity []FunctionComplexity `json:"per_function_complexity"`
	AverageMethodSize     float64              `json:"average_method_size"`
	MaxNesting            int                  `json:"max_nesting"`

	CognitiveComplexity int    `json:"cognitive_complexity"`
	Grammar             string `json:"grammar,omitempty"`
	Fallback            bool   `json:"fallback"` // true when the lexical fallback produced the record
}

// TotalMethodLines sums LineCount across all methods
func (r MetricsRecord) TotalMethodLines() int {
	total := 0
	for _, m := range r.Methods {
		total += m.LineCount
	}
	return total
}
