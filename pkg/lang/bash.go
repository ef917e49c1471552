package lang

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func init() {
	register(&Language{
		Tag: parser.LangBash,
		Table: Table{
			Grammar:      "tree-sitter-bash 0.20",
			Functions:    []string{"function_definition"},
			Conditionals: []string{"if_statement", "?ternary_expression"},
			Branches:     []string{"elif_clause"},
			Loops:        []string{"for_statement", "c_style_for_statement", "while_statement"},
			CaseArms:     []string{"case_item"},
			Logical:      []string{"list", "binary_expression"},
			LogicalOps:   map[string]int{"&&": 1, "||": 1},
			Operands: []string{
				"word", "variable_name", "string", "raw_string", "simple_expansion",
				"expansion", "?number", "?ansi_c_string", "?special_variable_name",
			},
			Comments: []string{"comment"},
			Statements: []string{
				"command", "variable_assignment", "declaration_command", "if_statement",
				"for_statement", "c_style_for_statement", "while_statement", "case_statement",
				"?unset_command", "?test_command", "?negated_command",
			},
			Ignore: []string{"fi", "done", "esac", ";;"},
		},
		ExitHook: bashIsExit,
		ParamsOf: func(ast.Node) (ast.Node, bool) { return ast.Node{}, false },
	})
}

// bashIsExit treats the return and exit builtins as exits.
func bashIsExit(n ast.Node, src []byte) bool {
	if n.Kind() != "command" {
		return false
	}
	name, ok := fieldText(n, "name", src)
	return ok && (name == "return" || name == "exit")
}
