package analysis

import (
	"github.com/standardbeagle/sauco/internal/types"
)

// Complexity is the cyclomatic complexity of a unit: the module-wide total
// and one entry per function in source order
type Complexity struct {
	Total       int
	PerFunction []types.FunctionComplexity
}

// Aggregate assembles a MetricsRecord. The average method size is the mean LineCount
// over methods, or 0 when there are none.
func Aggregate(methods []types.MethodInfo, ifCount, loopCount int, complexity Complexity, maxNesting int) types.MetricsRecord {
	if methods == nil {
		methods = []types.MethodInfo{}
	}
	perFunction := complexity.PerFunction
	if perFunction == nil {
		perFunction = []types.FunctionComplexity{}
	}
	total := complexity.Total
	if total < 1 {
		total = 1
	}

	record := types.MetricsRecord{
		MethodCount:           len(methods),
		Methods:               methods,
		IfCount:               ifCount,
		LoopCount:             loopCount,
		CyclomaticTotal:       total,
		PerFunctionComplexity: perFunction,
		MaxNesting:            maxNesting,
	}
	if len(methods) > 0 {
		record.AverageMethodSize = float64(record.TotalMethodLines()) / float64(len(methods))
	}
	return record
}
