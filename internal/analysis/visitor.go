package analysis

import (
	"github.com/standardbeagle/sauco/internal/types"
)

// scope describes the body a node sits in
type scope struct {
	level   int  // nesting level of the enclosing body
	defBody bool // the enclosing body belongs to a function or class
	nesting int  // cognitive-complexity nesting increment
	inFunc  bool
}

// bodyLevel is the level of a body opened by a construct in this scope.
// Constructs placed directly in a function or class body share that body's level.
func (s scope) bodyLevel() int {
	if s.defBody {
		return s.level
	}
	return s.level + 1
}

// enter returns the scope of a body opened by a construct in s
func (s scope) enter(definition bool) scope {
	return scope{
		level:   s.bodyLevel(),
		defBody: definition,
		nesting: s.nesting,
		inFunc:  s.inFunc,
	}
}

func (s scope) nested() scope {
	s.nesting++
	return s
}

// visitor gathers every structural metric in a single pre-order pass
type visitor struct {
	methods   []types.MethodInfo
	functions []types.FunctionComplexity
	stack     []int // indexes into functions, innermost last

	ifCount    int
	loopCount  int
	increments int
	maxNesting int
	cognitive  int
}

func collect(tree *types.SyntaxTree) *visitor {
	v := &visitor{}
	if tree != nil && tree.Root != nil {
		v.visitChildren(tree.Root, scope{}, types.KindModule)
	}
	return v
}

// complexity returns the module total and the per-function breakdown in source order
func (v *visitor) complexity() Complexity {
	return Complexity{
		Total:       1 + v.increments,
		PerFunction: v.functions,
	}
}

func (v *visitor) observe(level int) {
	if level > v.maxNesting {
		v.maxNesting = level
	}
}

// addComplexity charges decision points to the innermost enclosing function
func (v *visitor) addComplexity(n int) {
	if n <= 0 {
		return
	}
	v.increments += n
	if len(v.stack) > 0 {
		v.functions[v.stack[len(v.stack)-1]].Complexity += n
	}
}

func (v *visitor) visitChildren(n *types.Node, s scope, parent types.NodeKind) {
	for _, child := range n.Children {
		v.visit(child, s, parent)
	}
}

func (v *visitor) visit(n *types.Node, s scope, parent types.NodeKind) {
	switch n.Kind {
	case types.KindFunction:
		v.methods = append(v.methods, types.NewMethodInfo(n.Name, n.StartLine, n.EndLine))
		v.functions = append(v.functions, types.FunctionComplexity{Name: n.Name, Complexity: 1})
		v.stack = append(v.stack, len(v.functions)-1)

		inner := s.enter(true)
		if s.inFunc {
			inner = inner.nested()
		}
		inner.inFunc = true
		v.visitDefinition(n, inner)

		v.stack = v.stack[:len(v.stack)-1]

	case types.KindClass:
		v.visitDefinition(n, s.enter(true))

	case types.KindConditional:
		v.ifCount++
		v.addComplexity(1)
		if parent == types.KindConditional {
			v.cognitive++ // elif / else if
		} else {
			v.cognitive += 1 + s.nesting
		}
		v.visitOwned(n, s, s.enter(false).nested())

	case types.KindBranch:
		inner := s.enter(false)
		if parent == types.KindConditional {
			if len(n.Children) == 1 && n.Children[0].Kind == types.KindConditional {
				// else followed directly by if
				v.visit(n.Children[0], s, types.KindConditional)
				return
			}
			v.cognitive++
			inner = inner.nested()
		}
		v.visitOwned(n, s, inner)

	case types.KindLoop:
		v.loopCount++
		v.addComplexity(1)
		v.cognitive += 1 + s.nesting
		v.visitOwned(n, s, s.enter(false).nested())

	case types.KindHandler:
		v.addComplexity(1)
		v.cognitive += 1 + s.nesting
		v.visitOwned(n, s, s.enter(false).nested())

	case types.KindTry, types.KindResource:
		v.visitOwned(n, s, s.enter(false))

	case types.KindSwitch:
		v.cognitive += 1 + s.nesting
		v.visitChildren(n, s.nested(), types.KindSwitch)

	case types.KindCase:
		v.addComplexity(1)
		v.visitOwned(n, s, s.enter(false))

	case types.KindBoolChain:
		v.addComplexity(n.Operands - 1)
		v.cognitive++
		v.visitChildren(n, s, types.KindBoolChain)

	case types.KindBlock:
		// a block nobody owns (bare braces, a switch body) adds no level
		v.visitChildren(n, s, parent)

	default:
		v.visitChildren(n, s, n.Kind)
	}
}

// visitDefinition walks a function or class. The definition always counts as one
// level even when its body is an expression.
func (v *visitor) visitDefinition(n *types.Node, inner scope) {
	v.observe(inner.level)
	for _, child := range n.Children {
		if child.Kind == types.KindBlock {
			v.visitChildren(child, inner, types.KindBlock)
			continue
		}
		v.visit(child, inner, n.Kind)
	}
}

// visitOwned walks a construct whose Block children are its bodies. Everything else
// (conditions, elif/else arms, handlers) stays in the construct's own scope so sibling
// arms sit at the same level.
func (v *visitor) visitOwned(n *types.Node, outer, inner scope) {
	for _, child := range n.Children {
		if child.Kind == types.KindBlock {
			v.observe(inner.level)
			v.visitChildren(child, inner, types.KindBlock)
			continue
		}
		v.visit(child, outer, n.Kind)
	}
}
