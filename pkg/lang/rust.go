package lang

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func init() {
	register(&Language{
		Tag: parser.LangRust,
		Table: Table{
			Grammar:      "tree-sitter-rust 0.20",
			Functions:    []string{"function_item"},
			Closures:     []string{"closure_expression"},
			Classes:      []string{"impl_item"},
			Interfaces:   []string{"trait_item"},
			Conditionals: []string{"if_expression", "?if_let_expression"},
			Loops:        []string{"while_expression", "loop_expression", "for_expression", "?while_let_expression"},
			CaseArms:     []string{"match_arm"},
			Exits:        []string{"return_expression", "try_expression"},
			Logical:      []string{"binary_expression"},
			LogicalOps:   map[string]int{"&&": 1, "||": 1},
			Operands: []string{
				"identifier", "field_identifier", "type_identifier", "primitive_type",
				"integer_literal", "float_literal", "string_literal", "raw_string_literal",
				"char_literal", "boolean_literal", "self",
				"?shorthand_field_identifier", "?metavariable",
			},
			Comments: []string{"line_comment", "block_comment"},
			Statements: []string{
				"expression_statement", "let_declaration", "?empty_statement",
			},
			Chains: []string{"else_clause"},
		},
		NameOf: rustName,
	})
}

// rustName names impl blocks after the implementing type.
func rustName(n ast.Node, src []byte) (string, bool) {
	switch n.Kind() {
	case "impl_item":
		return fieldText(n, "type", src)
	case "closure_expression":
		return "", false
	}
	return fieldText(n, "name", src)
}
