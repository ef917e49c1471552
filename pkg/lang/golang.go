package lang

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func init() {
	register(&Language{
		Tag: parser.LangGo,
		Table: Table{
			Grammar:      "tree-sitter-go 0.20",
			Functions:    []string{"function_declaration", "method_declaration"},
			Closures:     []string{"func_literal"},
			Classes:      []string{"struct_type"},
			Interfaces:   []string{"interface_type"},
			Conditionals: []string{"if_statement"},
			Loops:        []string{"for_statement"},
			CaseArms:     []string{"expression_case", "type_case", "communication_case"},
			Exits:        []string{"return_statement"},
			Logical:      []string{"binary_expression"},
			LogicalOps:   map[string]int{"&&": 1, "||": 1},
			Operands: []string{
				"identifier", "field_identifier", "type_identifier", "package_identifier",
				"int_literal", "float_literal", "imaginary_literal", "rune_literal",
				"interpreted_string_literal", "raw_string_literal",
				"true", "false", "nil", "?iota",
			},
			Comments: []string{"comment"},
			Statements: []string{
				"expression_statement", "send_statement", "inc_statement", "dec_statement",
				"assignment_statement", "short_var_declaration", "go_statement", "defer_statement",
				"if_statement", "for_statement", "expression_switch_statement",
				"type_switch_statement", "select_statement", "return_statement",
				"break_statement", "continue_statement", "goto_statement",
				"fallthrough_statement", "var_declaration", "const_declaration", "type_declaration",
			},
			Chains: []string{"if_statement"},
		},
		SpaceFilter: goIsSpace,
		ExitHook:    goIsPanic,
		NameOf:      goName,
		CountParams: goCountParams,
	})
}

// goIsSpace keeps struct and interface types only when they define a named type.
func goIsSpace(n ast.Node, _ []byte, kind models.SpaceKind) bool {
	if kind != models.SpaceClass && kind != models.SpaceInterface {
		return true
	}
	p, ok := n.Parent()
	return ok && p.Kind() == "type_spec"
}

func goName(n ast.Node, src []byte) (string, bool) {
	switch n.Kind() {
	case "struct_type", "interface_type":
		if p, ok := n.Parent(); ok {
			return fieldText(p, "name", src)
		}
		return "", false
	case "func_literal":
		return "", false
	}
	return fieldText(n, "name", src)
}

// goIsPanic treats a call to the panic builtin as an exit.
func goIsPanic(n ast.Node, src []byte) bool {
	if n.Kind() != "call_expression" {
		return false
	}
	name, ok := fieldText(n, "function", src)
	return ok && name == "panic"
}

// goCountParams counts declared names: (a, b int) is two parameters.
func goCountParams(list ast.Node, _ []byte) int {
	count := 0
	for i := 0; i < list.NamedChildCount(); i++ {
		decl := list.NamedChild(i)
		switch decl.Kind() {
		case "parameter_declaration":
			names := 0
			for j := 0; j < decl.NamedChildCount(); j++ {
				if decl.NamedChild(j).Kind() == "identifier" {
					names++
				}
			}
			count += max(names, 1)
		case "variadic_parameter_declaration":
			count++
		}
	}
	return count
}
