package parser

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/sauco/internal/types"
)

// DefaultGrammar is the primary grammar used when no other grammar is requested
const DefaultGrammar = "python"

// logicalOperators are the short-circuit operator tokens across all supported grammars
var logicalOperators = map[string]bool{
	"&&":  true,
	"||":  true,
	"and": true,
	"or":  true,
}

// Grammar binds a tree-sitter language to the table that maps its node kinds
// onto the engine's closed set of structural kinds.
type Grammar struct {
	Name       string
	Extensions []string

	languagePtr func() unsafe.Pointer
	kinds       map[string]types.NodeKind
	binary      map[string]bool                               // kinds that may carry a short-circuit operator
	comments    map[string]bool                               // kinds ignored when measuring spans
	isDefault   func(n *tree_sitter.Node, source []byte) bool // case arm without its own test

	once     sync.Once
	language *tree_sitter.Language
}

// Language returns the tree-sitter language, creating it on first use.
// The returned value is immutable and safe to share between parsers.
func (g *Grammar) Language() *tree_sitter.Language {
	g.once.Do(func() {
		g.language = tree_sitter.NewLanguage(g.languagePtr())
	})
	return g.language
}

// kindOf maps a grammar node kind to its structural kind
func (g *Grammar) kindOf(kind string) types.NodeKind {
	if k, ok := g.kinds[kind]; ok {
		return k
	}
	return types.KindOther
}

var (
	registryOnce sync.Once
	registry     map[string]*Grammar
	byExtension  map[string]*Grammar
)

func loadRegistry() {
	registryOnce.Do(func() {
		registry = make(map[string]*Grammar)
		byExtension = make(map[string]*Grammar)
		for _, g := range builtinGrammars() {
			registry[g.Name] = g
			for _, ext := range g.Extensions {
				byExtension[ext] = g
			}
		}
	})
}

// Lookup returns the grammar registered under name (case-insensitive)
func Lookup(name string) (*Grammar, bool) {
	loadRegistry()
	g, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return g, ok
}

// Default returns the primary grammar
func Default() *Grammar {
	g, _ := Lookup(DefaultGrammar)
	return g
}

// GrammarForPath picks a grammar from the file extension, falling back to the primary grammar
func GrammarForPath(path string) *Grammar {
	loadRegistry()
	if g, ok := byExtension[strings.ToLower(filepath.Ext(path))]; ok {
		return g
	}
	return Default()
}

// Supports reports whether a registered grammar claims the file extension of path
func Supports(path string) bool {
	loadRegistry()
	_, ok := byExtension[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Names lists the registered grammar names in sorted order
func Names() []string {
	loadRegistry()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
