package lang

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func init() {
	register(&Language{
		Tag: parser.LangPython,
		Table: Table{
			Grammar:      "tree-sitter-python 0.21",
			Functions:    []string{"function_definition"},
			Closures:     []string{"lambda"},
			Classes:      []string{"class_definition"},
			Conditionals: []string{"if_statement", "conditional_expression", "?if_clause"},
			Branches:     []string{"elif_clause", "except_clause"},
			Loops:        []string{"for_statement", "while_statement", "?for_in_clause"},
			CaseArms:     []string{"?case_clause"},
			Exits:        []string{"return_statement", "raise_statement"},
			Logical:      []string{"boolean_operator"},
			LogicalOps:   map[string]int{"and": 1, "or": 1},
			Operands: []string{
				"identifier", "integer", "float", "string", "true", "false", "none",
				"?ellipsis", "?concatenated_string",
			},
			Comments: []string{"comment"},
			Statements: []string{
				"expression_statement", "return_statement", "pass_statement",
				"break_statement", "continue_statement", "raise_statement",
				"assert_statement", "import_statement", "import_from_statement",
				"global_statement", "nonlocal_statement", "delete_statement",
				"if_statement", "for_statement", "while_statement", "try_statement",
				"with_statement", "?match_statement", "?print_statement", "?exec_statement",
			},
		},
		CaseFilter:  notWildcard,
		CountParams: pythonCountParams,
	})
}

// pythonCountParams skips the bare * and / separators.
func pythonCountParams(list ast.Node, _ []byte) int {
	count := 0
	for i := 0; i < list.NamedChildCount(); i++ {
		switch list.NamedChild(i).Kind() {
		case "keyword_separator", "positional_separator", "comment":
		default:
			count++
		}
	}
	return count
}
