package lang

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func init() {
	register(&Language{
		Tag: parser.LangCSharp,
		Table: Table{
			Grammar: "tree-sitter-c-sharp 0.20",
			Functions: []string{
				"method_declaration", "constructor_declaration",
				"?destructor_declaration", "?operator_declaration",
				"?conversion_operator_declaration", "?local_function_statement",
			},
			Closures:     []string{"lambda_expression", "?anonymous_method_expression"},
			Classes:      []string{"class_declaration", "struct_declaration", "?record_declaration", "?record_struct_declaration"},
			Interfaces:   []string{"interface_declaration"},
			Conditionals: []string{"if_statement", "conditional_expression"},
			Branches:     []string{"catch_clause"},
			Loops:        []string{"for_statement", "while_statement", "do_statement", "?for_each_statement", "?foreach_statement"},
			CaseArms:     []string{"switch_section", "?switch_expression_arm"},
			Exits:        []string{"return_statement", "throw_statement", "?throw_expression"},
			Logical:      []string{"binary_expression"},
			LogicalOps:   map[string]int{"&&": 1, "||": 1, "??": 1},
			Operands: []string{
				"identifier", "integer_literal", "real_literal", "string_literal",
				"character_literal", "boolean_literal", "null_literal", "predefined_type",
				"?verbatim_string_literal", "?raw_string_literal", "?this_expression",
				"?this", "?base_expression", "?interpolated_string_expression",
			},
			Comments: []string{"comment"},
			Statements: []string{
				"expression_statement", "local_declaration_statement", "return_statement",
				"if_statement", "for_statement", "while_statement", "do_statement",
				"break_statement", "continue_statement", "throw_statement", "try_statement",
				"switch_statement", "?for_each_statement", "?foreach_statement",
				"?yield_statement", "?using_statement", "?lock_statement", "?goto_statement",
			},
			Chains: []string{"if_statement"},
		},
		CaseFilter: csharpCaseArm,
		NameOf:     csharpName,
	})
}

// csharpCaseArm rejects switch sections whose only label is default and
// switch expression arms matching the discard pattern.
func csharpCaseArm(n ast.Node, src []byte) bool {
	switch n.Kind() {
	case "switch_section":
		return hasChildKind(n, "case", "case_switch_label", "case_pattern_switch_label")
	case "switch_expression_arm":
		return notWildcard(n, src)
	}
	return true
}

func csharpName(n ast.Node, src []byte) (string, bool) {
	switch n.Kind() {
	case "lambda_expression", "anonymous_method_expression":
		return "", false
	}
	return fieldText(n, "name", src)
}
