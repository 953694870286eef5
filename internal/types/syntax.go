package types

// NodeKind tags a syntax node with the structural role the metrics engine cares about.
// The set is closed: grammar adapters map every concrete grammar kind onto one of these.
type NodeKind uint8

const (
	KindOther       NodeKind = iota // anything without structural meaning (expressions, simple statements)
	KindModule                      // root of a parsed unit
	KindFunction                    // function, method, constructor, closure with a body
	KindClass                       // class, struct, interface, namespace, impl block
	KindConditional                 // if / elif / else-if test node
	KindBranch                      // else, finally, default: a body without its own test
	KindLoop                        // for, while, do-while, foreach
	KindTry                         // try statement (handlers are children)
	KindHandler                     // except / catch clause
	KindBoolChain                   // flattened && / || / and / or chain
	KindResource                    // with / using: resource-scope block
	KindSwitch                      // switch / match container
	KindCase                        // case arm that carries a test
	KindBlock                       // statement body owned by the enclosing construct
)

var nodeKindNames = [...]string{
	KindOther:       "other",
	KindModule:      "module",
	KindFunction:    "function",
	KindClass:       "class",
	KindConditional: "conditional",
	KindBranch:      "branch",
	KindLoop:        "loop",
	KindTry:         "try",
	KindHandler:     "handler",
	KindBoolChain:   "bool_chain",
	KindResource:    "resource",
	KindSwitch:      "switch",
	KindCase:        "case",
	KindBlock:       "block",
}

// String returns the lowercase name of the kind
func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "unknown"
}

// IsDefinition reports whether the kind opens a definition body (function or class)
func (k NodeKind) IsDefinition() bool {
	return k == KindFunction || k == KindClass
}

// Node is one element of a SyntaxTree. Lines are 1-based and EndLine >= StartLine.
type Node struct {
	Kind      NodeKind
	Name      string // function/class name, empty for other kinds
	StartLine int
	EndLine   int
	Operands  int // number of operands of a KindBoolChain node
	Children  []*Node
}

// SyntaxTree is the grammar-independent tree produced by the parser adapter.
// It holds no reference to the source text or to the underlying parser tree.
type SyntaxTree struct {
	Grammar string
	Root    *Node
	Lines   int // number of lines in the parsed source
}

// Walk visits n and its descendants in pre-order. Returning false from fn skips the subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Count returns the number of nodes of the given kind in the subtree rooted at n
func (n *Node) Count(kind NodeKind) int {
	count := 0
	n.Walk(func(c *Node) bool {
		if c.Kind == kind {
			count++
		}
		return true
	})
	return count
}
