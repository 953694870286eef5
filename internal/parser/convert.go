package parser

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/sauco/internal/types"
)

// anonymousName names functions that have no declared or bound name
const anonymousName = "anonymous"

// converter lowers a tree-sitter tree into a types.SyntaxTree.
// Nodes without structural meaning are spliced out so their structural
// descendants attach to the nearest structural ancestor.
type converter struct {
	g      *Grammar
	source []byte
	lines  int
}

func convert(g *Grammar, root *tree_sitter.Node, source []byte) *types.SyntaxTree {
	c := &converter{g: g, source: source, lines: countLines(source)}
	module := &types.Node{
		Kind:      types.KindModule,
		StartLine: 1,
		EndLine:   max(c.lines, 1),
		Children:  c.children(root),
	}
	return &types.SyntaxTree{Grammar: g.Name, Root: module, Lines: c.lines}
}

// children converts the named children of n
func (c *converter) children(n *tree_sitter.Node) []*types.Node {
	var out []*types.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || c.g.comments[child.Kind()] {
			continue
		}
		out = append(out, c.convert(child)...)
	}
	return out
}

// convert returns the structural nodes for n: one node when n itself is structural,
// otherwise the structural nodes found beneath it.
func (c *converter) convert(n *tree_sitter.Node) []*types.Node {
	kind := c.g.kindOf(n.Kind())

	switch {
	case c.g.binary[n.Kind()]:
		if op := operatorOf(n); logicalOperators[op] {
			return []*types.Node{c.boolChain(n, op)}
		}
		return c.children(n)
	case kind == types.KindOther, kind == types.KindModule:
		return c.children(n)
	case kind.IsDefinition() && n.ChildByFieldName("body") == nil:
		// forward declarations and abstract signatures have no body to measure
		return c.children(n)
	case kind == types.KindCase && c.g.isDefault != nil && c.g.isDefault(n, c.source):
		kind = types.KindBranch
	}

	node := &types.Node{
		Kind:      kind,
		StartLine: c.startLine(n),
		EndLine:   c.endLine(n),
	}
	node.Children = c.structural(n, kind)

	switch kind {
	case types.KindFunction:
		node.Name = c.functionName(n)
		node.EndLine = c.bodyEnd(n, node.StartLine)
	case types.KindClass:
		node.Name = c.className(n)
	}
	return []*types.Node{node}
}

// ownsBody lists the kinds whose "body"/"consequence" field is always a single statement body
var ownsBody = map[types.NodeKind]bool{
	types.KindFunction:    true,
	types.KindClass:       true,
	types.KindConditional: true,
	types.KindLoop:        true,
	types.KindTry:         true,
	types.KindHandler:     true,
	types.KindResource:    true,
}

// structural converts the children of a structural node, normalising bodies so every
// construct owns its statements through a KindBlock child and every else arm is a KindBranch.
func (c *converter) structural(n *tree_sitter.Node, kind types.NodeKind) []*types.Node {
	var body, alternative *tree_sitter.Node
	if ownsBody[kind] {
		body = n.ChildByFieldName("body")
		if body == nil {
			body = n.ChildByFieldName("consequence")
		}
	}
	if kind == types.KindConditional {
		alternative = n.ChildByFieldName("alternative")
	}

	var out []*types.Node
	for i := uint(0); i < n.NamedChildCount(); i++ {
		child := n.NamedChild(i)
		if child == nil || c.g.comments[child.Kind()] {
			continue
		}
		converted := c.convert(child)
		switch {
		case body != nil && child.Id() == body.Id():
			converted = c.asBlock(child, converted)
		case alternative != nil && child.Id() == alternative.Id():
			converted = c.asBranch(child, converted)
		}
		out = append(out, converted...)
	}

	if (kind == types.KindCase || kind == types.KindBranch) && !hasBody(kind, out) {
		// arms whose statements hang directly off the clause (switch cases, braceless else)
		out = []*types.Node{c.block(n, out)}
	}
	return out
}

// hasBody reports whether an arm already owns its statements through a block.
// An else arm holding a single conditional is an else-if and needs no block.
func hasBody(kind types.NodeKind, nodes []*types.Node) bool {
	if kind == types.KindBranch && len(nodes) == 1 && nodes[0].Kind == types.KindConditional {
		return true
	}
	for _, n := range nodes {
		if n.Kind == types.KindBlock {
			return true
		}
	}
	return false
}

func (c *converter) asBlock(n *tree_sitter.Node, converted []*types.Node) []*types.Node {
	if len(converted) == 1 && converted[0].Kind == types.KindBlock {
		return converted
	}
	return []*types.Node{c.block(n, converted)}
}

// asBranch wraps a bare else body (Go, Java, C#) the way else clauses appear in other grammars
func (c *converter) asBranch(n *tree_sitter.Node, converted []*types.Node) []*types.Node {
	if len(converted) == 1 && (converted[0].Kind == types.KindConditional || converted[0].Kind == types.KindBranch) {
		return converted
	}
	return []*types.Node{{
		Kind:      types.KindBranch,
		StartLine: c.startLine(n),
		EndLine:   c.endLine(n),
		Children:  c.asBlock(n, converted),
	}}
}

func (c *converter) block(n *tree_sitter.Node, children []*types.Node) *types.Node {
	return &types.Node{
		Kind:      types.KindBlock,
		StartLine: c.startLine(n),
		EndLine:   c.endLine(n),
		Children:  children,
	}
}

// boolChain flattens a run of the same short-circuit operator into one node.
// A different operator or a parenthesised group starts a new chain.
func (c *converter) boolChain(n *tree_sitter.Node, op string) *types.Node {
	chain := &types.Node{
		Kind:      types.KindBoolChain,
		StartLine: c.startLine(n),
		EndLine:   c.endLine(n),
	}
	c.collectOperands(n, op, chain)
	return chain
}

func (c *converter) collectOperands(n *tree_sitter.Node, op string, chain *types.Node) {
	for _, side := range operands(n) {
		if c.g.binary[side.Kind()] && operatorOf(side) == op {
			c.collectOperands(side, op, chain)
			continue
		}
		chain.Operands++
		chain.Children = append(chain.Children, c.convert(side)...)
	}
}

func operands(n *tree_sitter.Node) []*tree_sitter.Node {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil && n.NamedChildCount() > 0 {
		left = n.NamedChild(0)
	}
	if right == nil && n.NamedChildCount() > 1 {
		right = n.NamedChild(n.NamedChildCount() - 1)
	}
	var out []*tree_sitter.Node
	if left != nil {
		out = append(out, left)
	}
	if right != nil {
		out = append(out, right)
	}
	return out
}

// operatorOf returns the operator token of a binary node
func operatorOf(n *tree_sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Kind()
	}
	if n.ChildCount() >= 3 {
		if op := n.Child(1); op != nil {
			return op.Kind()
		}
	}
	return ""
}

// bodyEnd is the last line of the function's body statements; trailing comments
// and closing delimiters do not extend it.
func (c *converter) bodyEnd(n *tree_sitter.Node, start int) int {
	body := n.ChildByFieldName("body")
	if body == nil {
		return start
	}
	if c.g.kindOf(body.Kind()) != types.KindBlock {
		// expression-bodied: arrow functions, C# => members
		return max(start, c.endLine(body))
	}
	end := start
	for i := uint(0); i < body.NamedChildCount(); i++ {
		stmt := body.NamedChild(i)
		if stmt == nil || c.g.comments[stmt.Kind()] {
			continue
		}
		end = max(end, c.endLine(stmt))
	}
	return end
}

func (c *converter) functionName(n *tree_sitter.Node) string {
	if name := c.declaredName(n); name != "" {
		return name
	}
	// anonymous functions take the name of the binding they are assigned to
	if parent := n.Parent(); parent != nil {
		switch parent.Kind() {
		case "variable_declarator", "assignment_expression", "pair",
			"field_definition", "public_field_definition":
			for _, field := range []string{"name", "left", "key", "property"} {
				if id := parent.ChildByFieldName(field); id != nil && id.Id() != n.Id() {
					return nodeText(id, c.source)
				}
			}
		}
	}
	return anonymousName
}

func (c *converter) className(n *tree_sitter.Node) string {
	if name := c.declaredName(n); name != "" {
		return name
	}
	// Rust impl blocks are named by the implemented type
	if t := n.ChildByFieldName("type"); t != nil {
		return nodeText(t, c.source)
	}
	return anonymousName
}

func (c *converter) declaredName(n *tree_sitter.Node) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return nodeText(name, c.source)
	}
	// C and C++ nest the identifier: pointer_declarator -> function_declarator -> identifier
	d := n.ChildByFieldName("declarator")
	for depth := 0; d != nil && depth < 8; depth++ {
		switch d.Kind() {
		case "identifier", "field_identifier", "qualified_identifier",
			"destructor_name", "operator_name", "template_function":
			return nodeText(d, c.source)
		}
		d = d.ChildByFieldName("declarator")
	}
	return ""
}

func (c *converter) startLine(n *tree_sitter.Node) int {
	line := int(n.StartPosition().Row) + 1
	if c.lines > 0 && line > c.lines {
		line = c.lines
	}
	return line
}

// endLine is the last line n occupies; a node ending at column 0 ends on the previous line
func (c *converter) endLine(n *tree_sitter.Node) int {
	start := c.startLine(n)
	pos := n.EndPosition()
	line := int(pos.Row) + 1
	if pos.Column == 0 && line > start {
		line--
	}
	if c.lines > 0 && line > c.lines {
		line = c.lines
	}
	return max(line, start)
}
