package lang

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func init() {
	register(&Language{
		Tag: parser.LangJava,
		Table: Table{
			Grammar:      "tree-sitter-java 0.20",
			Functions:    []string{"method_declaration", "constructor_declaration", "?compact_constructor_declaration"},
			Closures:     []string{"lambda_expression"},
			Classes:      []string{"class_declaration", "enum_declaration", "?record_declaration"},
			Interfaces:   []string{"interface_declaration", "?annotation_type_declaration"},
			Conditionals: []string{"if_statement", "ternary_expression"},
			Branches:     []string{"catch_clause"},
			Loops:        []string{"for_statement", "enhanced_for_statement", "while_statement", "do_statement"},
			CaseArms:     []string{"switch_label"},
			Exits:        []string{"return_statement", "throw_statement"},
			Logical:      []string{"binary_expression"},
			LogicalOps:   map[string]int{"&&": 1, "||": 1},
			Operands: []string{
				"identifier", "type_identifier",
				"decimal_integer_literal", "hex_integer_literal", "octal_integer_literal",
				"binary_integer_literal", "decimal_floating_point_literal",
				"hex_floating_point_literal", "character_literal", "string_literal",
				"true", "false", "null_literal", "this", "super",
				"?void_type", "?integral_type", "?floating_point_type", "?boolean_type",
			},
			Comments: []string{"?comment", "?line_comment", "?block_comment"},
			Statements: []string{
				"expression_statement", "local_variable_declaration", "return_statement",
				"if_statement", "for_statement", "enhanced_for_statement", "while_statement",
				"do_statement", "break_statement", "continue_statement", "throw_statement",
				"try_statement", "?try_with_resources_statement", "?switch_expression",
				"?switch_statement", "?yield_statement", "?assert_statement",
				"?labeled_statement", "?synchronized_statement",
			},
			Chains: []string{"if_statement"},
		},
		CaseFilter: notDefault,
		NameOf:     javaName,
	})
}

func javaName(n ast.Node, src []byte) (string, bool) {
	if n.Kind() == "lambda_expression" {
		return "", false
	}
	return fieldText(n, "name", src)
}
