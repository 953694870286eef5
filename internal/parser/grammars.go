package parser

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/standardbeagle/sauco/internal/types"
)

type kindTable map[string]types.NodeKind

func set(kinds ...string) map[string]bool {
	m := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}
	return m
}

// merge copies base and overlays the extra entries
func merge(base kindTable, extra kindTable) kindTable {
	out := make(kindTable, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func builtinGrammars() []*Grammar {
	return []*Grammar{
		setupPython(),
		setupJavaScript(),
		setupTypeScript(),
		setupTSX(),
		setupGo(),
		setupJava(),
		setupCSharp(),
		setupCpp(),
		setupRust(),
		setupPHP(),
	}
}

func setupPython() *Grammar {
	return &Grammar{
		Name:        "python",
		Extensions:  []string{".py", ".pyw", ".pyi"},
		languagePtr: tree_sitter_python.Language,
		kinds: kindTable{
			"module":              types.KindModule,
			"function_definition": types.KindFunction,
			"class_definition":    types.KindClass,
			"if_statement":        types.KindConditional,
			"elif_clause":         types.KindConditional,
			"else_clause":         types.KindBranch,
			"for_statement":       types.KindLoop,
			"while_statement":     types.KindLoop,
			"try_statement":       types.KindTry,
			"except_clause":       types.KindHandler,
			"except_group_clause": types.KindHandler,
			"finally_clause":      types.KindBranch,
			"with_statement":      types.KindResource,
			"match_statement":     types.KindSwitch,
			"case_clause":         types.KindCase,
			"block":               types.KindBlock,
		},
		binary:   set("boolean_operator"),
		comments: set("comment"),
		isDefault: func(n *tree_sitter.Node, source []byte) bool {
			pattern := n.NamedChild(0)
			return pattern != nil && strings.TrimSpace(nodeText(pattern, source)) == "_"
		},
	}
}

var javaScriptKinds = kindTable{
	"program":                        types.KindModule,
	"function_declaration":           types.KindFunction,
	"function_expression":            types.KindFunction,
	"function":                       types.KindFunction,
	"generator_function":             types.KindFunction,
	"generator_function_declaration": types.KindFunction,
	"arrow_function":                 types.KindFunction,
	"method_definition":              types.KindFunction,
	"class_declaration":              types.KindClass,
	"class":                          types.KindClass,
	"class_body":                     types.KindBlock,
	"statement_block":                types.KindBlock,
	"if_statement":                   types.KindConditional,
	"else_clause":                    types.KindBranch,
	"for_statement":                  types.KindLoop,
	"for_in_statement":               types.KindLoop,
	"while_statement":                types.KindLoop,
	"do_statement":                   types.KindLoop,
	"try_statement":                  types.KindTry,
	"catch_clause":                   types.KindHandler,
	"finally_clause":                 types.KindBranch,
	"switch_statement":               types.KindSwitch,
	"switch_case":                    types.KindCase,
	"switch_default":                 types.KindBranch,
}

func setupJavaScript() *Grammar {
	return &Grammar{
		Name:        "javascript",
		Extensions:  []string{".js", ".jsx", ".mjs", ".cjs"},
		languagePtr: tree_sitter_javascript.Language,
		kinds:       javaScriptKinds,
		binary:      set("binary_expression"),
		comments:    set("comment", "hash_bang_line"),
	}
}

var typeScriptExtras = kindTable{
	"abstract_class_declaration": types.KindClass,
}

func setupTypeScript() *Grammar {
	return &Grammar{
		Name:        "typescript",
		Extensions:  []string{".ts", ".mts", ".cts"},
		languagePtr: tree_sitter_typescript.LanguageTypescript,
		kinds:       merge(javaScriptKinds, typeScriptExtras),
		binary:      set("binary_expression"),
		comments:    set("comment", "hash_bang_line"),
	}
}

func setupTSX() *Grammar {
	return &Grammar{
		Name:        "tsx",
		Extensions:  []string{".tsx"},
		languagePtr: tree_sitter_typescript.LanguageTSX,
		kinds:       merge(javaScriptKinds, typeScriptExtras),
		binary:      set("binary_expression"),
		comments:    set("comment", "hash_bang_line"),
	}
}

func setupGo() *Grammar {
	return &Grammar{
		Name:        "go",
		Extensions:  []string{".go"},
		languagePtr: tree_sitter_go.Language,
		kinds: kindTable{
			"source_file":                 types.KindModule,
			"function_declaration":        types.KindFunction,
			"method_declaration":          types.KindFunction,
			"func_literal":                types.KindFunction,
			"if_statement":                types.KindConditional,
			"for_statement":               types.KindLoop,
			"expression_switch_statement": types.KindSwitch,
			"type_switch_statement":       types.KindSwitch,
			"select_statement":            types.KindSwitch,
			"expression_case":             types.KindCase,
			"type_case":                   types.KindCase,
			"communication_case":          types.KindCase,
			"default_case":                types.KindBranch,
			"block":                       types.KindBlock,
		},
		binary:   set("binary_expression"),
		comments: set("comment"),
	}
}

func setupJava() *Grammar {
	return &Grammar{
		Name:        "java",
		Extensions:  []string{".java"},
		languagePtr: tree_sitter_java.Language,
		kinds: kindTable{
			"program":                         types.KindModule,
			"method_declaration":              types.KindFunction,
			"constructor_declaration":         types.KindFunction,
			"compact_constructor_declaration": types.KindFunction,
			"class_declaration":               types.KindClass,
			"interface_declaration":           types.KindClass,
			"enum_declaration":                types.KindClass,
			"record_declaration":              types.KindClass,
			"annotation_type_declaration":     types.KindClass,
			"class_body":                      types.KindBlock,
			"interface_body":                  types.KindBlock,
			"enum_body":                       types.KindBlock,
			"annotation_type_body":            types.KindBlock,
			"constructor_body":                types.KindBlock,
			"block":                           types.KindBlock,
			"if_statement":                    types.KindConditional,
			"for_statement":                   types.KindLoop,
			"enhanced_for_statement":          types.KindLoop,
			"while_statement":                 types.KindLoop,
			"do_statement":                    types.KindLoop,
			"try_statement":                   types.KindTry,
			"try_with_resources_statement":    types.KindTry,
			"catch_clause":                    types.KindHandler,
			"finally_clause":                  types.KindBranch,
			"synchronized_statement":          types.KindResource,
			"switch_expression":               types.KindSwitch,
			"switch_statement":                types.KindSwitch,
			"switch_block_statement_group":    types.KindCase,
			"switch_rule":                     types.KindCase,
		},
		binary:   set("binary_expression"),
		comments: set("line_comment", "block_comment"),
		isDefault: func(n *tree_sitter.Node, source []byte) bool {
			label := n.NamedChild(0)
			return label != nil && label.Kind() == "switch_label" && leadingToken(label, "default")
		},
	}
}

func setupCSharp() *Grammar {
	return &Grammar{
		Name:        "c_sharp",
		Extensions:  []string{".cs"},
		languagePtr: tree_sitter_csharp.Language,
		kinds: kindTable{
			"compilation_unit":                 types.KindModule,
			"method_declaration":               types.KindFunction,
			"constructor_declaration":          types.KindFunction,
			"destructor_declaration":           types.KindFunction,
			"operator_declaration":             types.KindFunction,
			"conversion_operator_declaration":  types.KindFunction,
			"local_function_statement":         types.KindFunction,
			"class_declaration":                types.KindClass,
			"struct_declaration":               types.KindClass,
			"interface_declaration":            types.KindClass,
			"record_declaration":               types.KindClass,
			"namespace_declaration":            types.KindClass,
			"declaration_list":                 types.KindBlock,
			"block":                            types.KindBlock,
			"if_statement":                     types.KindConditional,
			"for_statement":                    types.KindLoop,
			"foreach_statement":                types.KindLoop,
			"while_statement":                  types.KindLoop,
			"do_statement":                     types.KindLoop,
			"try_statement":                    types.KindTry,
			"catch_clause":                     types.KindHandler,
			"finally_clause":                   types.KindBranch,
			"using_statement":                  types.KindResource,
			"lock_statement":                   types.KindResource,
			"fixed_statement":                  types.KindResource,
			"switch_statement":                 types.KindSwitch,
			"switch_section":                   types.KindCase,
		},
		binary:   set("binary_expression"),
		comments: set("comment"),
		isDefault: func(n *tree_sitter.Node, source []byte) bool {
			return leadingToken(n, "default")
		},
	}
}

func setupCpp() *Grammar {
	return &Grammar{
		Name:        "cpp",
		Extensions:  []string{".cpp", ".cc", ".cxx", ".hpp", ".hh", ".hxx", ".h"},
		languagePtr: tree_sitter_cpp.Language,
		kinds: kindTable{
			"translation_unit":       types.KindModule,
			"function_definition":    types.KindFunction,
			"class_specifier":        types.KindClass,
			"struct_specifier":       types.KindClass,
			"union_specifier":        types.KindClass,
			"namespace_definition":   types.KindClass,
			"field_declaration_list": types.KindBlock,
			"declaration_list":       types.KindBlock,
			"compound_statement":     types.KindBlock,
			"if_statement":           types.KindConditional,
			"else_clause":            types.KindBranch,
			"for_statement":          types.KindLoop,
			"for_range_loop":         types.KindLoop,
			"while_statement":        types.KindLoop,
			"do_statement":           types.KindLoop,
			"try_statement":          types.KindTry,
			"catch_clause":           types.KindHandler,
			"switch_statement":       types.KindSwitch,
			"case_statement":         types.KindCase,
		},
		binary:   set("binary_expression"),
		comments: set("comment"),
		isDefault: func(n *tree_sitter.Node, source []byte) bool {
			return leadingToken(n, "default")
		},
	}
}

func setupRust() *Grammar {
	return &Grammar{
		Name:        "rust",
		Extensions:  []string{".rs"},
		languagePtr: tree_sitter_rust.Language,
		kinds: kindTable{
			"source_file":      types.KindModule,
			"function_item":    types.KindFunction,
			"impl_item":        types.KindClass,
			"trait_item":       types.KindClass,
			"mod_item":         types.KindClass,
			"declaration_list": types.KindBlock,
			"block":            types.KindBlock,
			"if_expression":    types.KindConditional,
			"else_clause":      types.KindBranch,
			"for_expression":   types.KindLoop,
			"while_expression": types.KindLoop,
			"loop_expression":  types.KindLoop,
			"match_expression": types.KindSwitch,
			"match_arm":        types.KindCase,
		},
		binary:   set("binary_expression"),
		comments: set("line_comment", "block_comment"),
		isDefault: func(n *tree_sitter.Node, source []byte) bool {
			pattern := n.ChildByFieldName("pattern")
			return pattern != nil && strings.TrimSpace(nodeText(pattern, source)) == "_"
		},
	}
}

func setupPHP() *Grammar {
	return &Grammar{
		Name:        "php",
		Extensions:  []string{".php", ".phtml"},
		languagePtr: tree_sitter_php.LanguagePHP,
		kinds: kindTable{
			"program":               types.KindModule,
			"function_definition":   types.KindFunction,
			"method_declaration":    types.KindFunction,
			"anonymous_function":    types.KindFunction,
			"arrow_function":        types.KindFunction,
			"class_declaration":     types.KindClass,
			"interface_declaration": types.KindClass,
			"trait_declaration":     types.KindClass,
			"enum_declaration":      types.KindClass,
			"namespace_definition":  types.KindClass,
			"declaration_list":      types.KindBlock,
			"enum_declaration_list": types.KindBlock,
			"compound_statement":    types.KindBlock,
			"colon_block":           types.KindBlock,
			"if_statement":          types.KindConditional,
			"else_if_clause":        types.KindConditional,
			"else_clause":           types.KindBranch,
			"for_statement":         types.KindLoop,
			"foreach_statement":     types.KindLoop,
			"while_statement":       types.KindLoop,
			"do_statement":          types.KindLoop,
			"try_statement":         types.KindTry,
			"catch_clause":          types.KindHandler,
			"finally_clause":        types.KindBranch,
			"switch_statement":      types.KindSwitch,
			"case_statement":        types.KindCase,
			"default_statement":     types.KindBranch,
		},
		binary:   set("binary_expression"),
		comments: set("comment"),
	}
}

// leadingToken reports whether the first child token of n is tok
func leadingToken(n *tree_sitter.Node, tok string) bool {
	if n.ChildCount() == 0 {
		return false
	}
	first := n.Child(0)
	return first != nil && first.Kind() == tok
}

func nodeText(n *tree_sitter.Node, source []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if end > uint(len(source)) || start > end {
		return ""
	}
	return string(source[start:end])
}
