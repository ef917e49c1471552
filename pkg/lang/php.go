package lang

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func init() {
	register(&Language{
		Tag: parser.LangPHP,
		Table: Table{
			Grammar:      "tree-sitter-php 0.20",
			Functions:    []string{"function_definition", "method_declaration"},
			Closures:     []string{"arrow_function", "?anonymous_function_creation_expression", "?anonymous_function"},
			Classes:      []string{"class_declaration", "trait_declaration", "?enum_declaration"},
			Interfaces:   []string{"interface_declaration"},
			Conditionals: []string{"if_statement", "conditional_expression"},
			Branches:     []string{"?else_if_clause", "?elseif_clause", "catch_clause"},
			Loops:        []string{"for_statement", "foreach_statement", "while_statement", "do_statement"},
			CaseArms:     []string{"case_statement", "?match_conditional_expression"},
			Exits:        []string{"return_statement", "?throw_expression", "?throw_statement", "?exit_statement"},
			Logical:      []string{"binary_expression"},
			LogicalOps:   map[string]int{"&&": 1, "||": 1, "and": 1, "or": 1, "??": 1},
			Operands: []string{
				"name", "variable_name", "integer", "float",
				"?string", "?encapsed_string", "?boolean", "?null", "?heredoc", "?nowdoc",
			},
			Comments: []string{"comment"},
			Statements: []string{
				"expression_statement", "return_statement", "echo_statement", "if_statement",
				"for_statement", "foreach_statement", "while_statement", "do_statement",
				"break_statement", "continue_statement", "switch_statement", "try_statement",
				"?unset_statement", "?global_declaration", "?const_declaration",
			},
			Chains: []string{"else_clause"},
		},
		NameOf: phpName,
	})
}

func phpName(n ast.Node, src []byte) (string, bool) {
	switch n.Kind() {
	case "arrow_function", "anonymous_function_creation_expression", "anonymous_function":
		return "", false
	}
	return fieldText(n, "name", src)
}
