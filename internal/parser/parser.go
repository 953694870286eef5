package parser

import (
	"bytes"
	"errors"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/sauco/internal/debug"
	saucoerrors "github.com/standardbeagle/sauco/internal/errors"
	"github.com/standardbeagle/sauco/internal/types"
)

var (
	errNoTree = errors.New("parser returned no tree")
	errSyntax = errors.New("source contains syntax errors")
)

// Result is the tagged outcome of parsing one source unit.
// On success Tree is set and Err is nil; on failure Tree is nil and Err says why.
// A failed parse never carries a partial tree.
type Result struct {
	Tree *types.SyntaxTree
	Err  error
}

// Failed reports whether the source could not be parsed
func (r Result) Failed() bool {
	return r.Tree == nil
}

// Parse parses source with the primary grammar
func Parse(source string) Result {
	return ParseWith(Default(), source)
}

// ParseWith parses source with the given grammar. A fresh tree-sitter parser is created
// for every call and both parser and tree are closed before returning, so concurrent
// calls share nothing but the immutable language.
func ParseWith(g *Grammar, source string) (result Result) {
	if g == nil {
		g = Default()
	}

	// Protection against tree-sitter crashes: a panic is just another parse failure
	defer func() {
		if r := recover(); r != nil {
			debug.LogParse("tree-sitter panic (%s): %v\n", g.Name, r)
			result = failure(g, 0, 0, "", fmt.Errorf("parser panic: %v", r))
		}
	}()

	p := tree_sitter.NewParser()
	defer p.Close()
	if err := p.SetLanguage(g.Language()); err != nil {
		return failure(g, 0, 0, "", fmt.Errorf("set language %s: %w", g.Name, err))
	}

	// Private buffer: the cgo parser must never see memory the caller can mutate
	buf := []byte(source)
	tree := p.Parse(buf, nil)
	if tree == nil {
		return failure(g, 0, 0, "", errNoTree)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return failure(g, 0, 0, "", errNoTree)
	}
	if root.HasError() {
		line, column, token := firstError(root)
		return failure(g, line, column, token, errSyntax)
	}

	return Result{Tree: convert(g, root, buf)}
}

func failure(g *Grammar, line, column int, token string, err error) Result {
	perr := saucoerrors.NewParseError(g.Name, line, column, token, err)
	debug.LogParse("%v\n", perr)
	return Result{Err: perr}
}

// firstError locates the first ERROR or MISSING node in document order
func firstError(n *tree_sitter.Node) (line, column int, token string) {
	if n.IsError() || n.IsMissing() {
		pos := n.StartPosition()
		return int(pos.Row) + 1, int(pos.Column) + 1, n.Kind()
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil || !child.HasError() {
			continue
		}
		if line, column, token = firstError(child); line > 0 {
			return line, column, token
		}
	}
	return 0, 0, ""
}

// countLines returns the number of lines in source; a trailing newline does not start a new line
func countLines(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := bytes.Count(source, []byte{'\n'})
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}
