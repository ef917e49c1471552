package lang

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

// ecmaTable is shared by JavaScript, TypeScript and TSX.
func ecmaTable(grammar string) Table {
	return Table{
		Grammar: grammar,
		Functions: []string{
			"function_declaration", "generator_function_declaration", "method_definition",
			"?function", "?function_expression", "?generator_function",
		},
		Closures:     []string{"arrow_function"},
		Classes:      []string{"class_declaration", "class"},
		Conditionals: []string{"if_statement", "ternary_expression"},
		Branches:     []string{"catch_clause"},
		Loops:        []string{"for_statement", "for_in_statement", "while_statement", "do_statement"},
		CaseArms:     []string{"switch_case"},
		Exits:        []string{"return_statement", "throw_statement"},
		Logical:      []string{"binary_expression"},
		LogicalOps:   map[string]int{"&&": 1, "||": 1, "??": 1},
		Operands: []string{
			"identifier", "property_identifier", "shorthand_property_identifier",
			"number", "string", "template_string", "regex",
			"true", "false", "null", "this", "super",
			"?undefined", "?shorthand_property_identifier_pattern",
			"?private_property_identifier", "?statement_identifier",
		},
		Comments: []string{"comment"},
		Statements: []string{
			"expression_statement", "lexical_declaration", "variable_declaration",
			"return_statement", "if_statement", "for_statement", "for_in_statement",
			"while_statement", "do_statement", "break_statement", "continue_statement",
			"throw_statement", "try_statement", "switch_statement",
			"?debugger_statement", "?labeled_statement",
		},
		Chains: []string{"else_clause"},
	}
}

func typeScriptTable(grammar string) Table {
	t := ecmaTable(grammar)
	t.Classes = append(t.Classes, "abstract_class_declaration")
	t.Interfaces = []string{"interface_declaration"}
	t.Operands = append(t.Operands, "type_identifier", "predefined_type")
	t.Statements = append(t.Statements, "?type_alias_declaration")
	return t
}

func init() {
	register(&Language{
		Tag:      parser.LangJavaScript,
		Table:    ecmaTable("tree-sitter-javascript 0.20"),
		NameOf:   ecmaName,
		ParamsOf: ecmaParams,
	})
	register(&Language{
		Tag:      parser.LangTypeScript,
		Table:    typeScriptTable("tree-sitter-typescript 0.20 (typescript)"),
		NameOf:   ecmaName,
		ParamsOf: ecmaParams,
	})
	register(&Language{
		Tag:      parser.LangTSX,
		Table:    typeScriptTable("tree-sitter-typescript 0.20 (tsx)"),
		NameOf:   ecmaName,
		ParamsOf: ecmaParams,
	})
}

func ecmaName(n ast.Node, src []byte) (string, bool) {
	if n.Kind() == "arrow_function" {
		return "", false
	}
	return fieldText(n, "name", src)
}

// ecmaParams handles arrow functions with a single unparenthesized parameter.
func ecmaParams(n ast.Node) (ast.Node, bool) {
	if p, ok := n.ChildByField("parameter"); ok {
		return p, true
	}
	return n.ChildByField("parameters")
}
