package compare

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/sauco/internal/types"
)

// FunctionPair links a function in the before record to its counterpart after
type FunctionPair struct {
	Before           string  `json:"before"`
	After            string  `json:"after"`
	BeforeComplexity int     `json:"before_complexity"`
	AfterComplexity  int     `json:"after_complexity"`
	Delta            int     `json:"delta"`
	Similarity       float64 `json:"similarity"`
	Renamed          bool    `json:"renamed"`
}

type candidate struct {
	before, after int
	score         float64
}

// PairFunctions matches before and after functions.
//
// Identical names pair first, in source order, so repeated names such as
// "anonymous" pair positionally. The remaining functions pair greedily by
// descending Jaro-Winkler similarity of their names, keeping only scores of at
// least minSimilarity. Whatever is left is reported as added or removed.
func PairFunctions(before, after []types.FunctionComplexity, minSimilarity float64) ([]FunctionPair, []types.FunctionComplexity, []types.FunctionComplexity) {
	pairs := []FunctionPair{}
	usedBefore := make([]bool, len(before))
	usedAfter := make([]bool, len(after))

	byName := make(map[string][]int)
	for j, fn := range after {
		byName[fn.Name] = append(byName[fn.Name], j)
	}
	for i, fn := range before {
		queue := byName[fn.Name]
		if len(queue) == 0 {
			continue
		}
		j := queue[0]
		byName[fn.Name] = queue[1:]
		usedBefore[i], usedAfter[j] = true, true
		pairs = append(pairs, newPair(before[i], after[j], 1.0))
	}

	var candidates []candidate
	for i := range before {
		if usedBefore[i] {
			continue
		}
		for j := range after {
			if usedAfter[j] {
				continue
			}
			if score := similarity(before[i].Name, after[j].Name); score >= minSimilarity {
				candidates = append(candidates, candidate{i, j, score})
			}
		}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})
	for _, c := range candidates {
		if usedBefore[c.before] || usedAfter[c.after] {
			continue
		}
		usedBefore[c.before], usedAfter[c.after] = true, true
		pairs = append(pairs, newPair(before[c.before], after[c.after], c.score))
	}

	removed := []types.FunctionComplexity{}
	for i, fn := range before {
		if !usedBefore[i] {
			removed = append(removed, fn)
		}
	}
	added := []types.FunctionComplexity{}
	for j, fn := range after {
		if !usedAfter[j] {
			added = append(added, fn)
		}
	}
	return pairs, added, removed
}

func newPair(b, a types.FunctionComplexity, score float64) FunctionPair {
	return FunctionPair{
		Before:           b.Name,
		After:            a.Name,
		BeforeComplexity: b.Complexity,
		AfterComplexity:  a.Complexity,
		Delta:            a.Complexity - b.Complexity,
		Similarity:       score,
		Renamed:          a.Name != b.Name,
	}
}

// similarity is the case-insensitive Jaro-Winkler score of two names
func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	score, err := edlib.StringsSimilarity(a, b, edlib.JaroWinkler)
	if err != nil {
		return 0.0
	}
	return float64(score)
}
