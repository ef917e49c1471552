package lang

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func init() {
	register(&Language{
		Tag: parser.LangRuby,
		Table: Table{
			Grammar:      "tree-sitter-ruby 0.20",
			Functions:    []string{"method", "singleton_method"},
			Closures:     []string{"block", "do_block", "lambda"},
			Classes:      []string{"class", "module", "singleton_class"},
			Conditionals: []string{"if", "unless", "conditional", "if_modifier", "unless_modifier"},
			Branches:     []string{"elsif", "rescue", "?rescue_modifier"},
			Loops:        []string{"while", "until", "for", "while_modifier", "until_modifier"},
			CaseArms:     []string{"when", "?in_clause"},
			Exits:        []string{"return"},
			Logical:      []string{"binary"},
			LogicalOps:   map[string]int{"&&": 1, "||": 1, "and": 1, "or": 1},
			Operands: []string{
				"identifier", "constant", "instance_variable", "class_variable",
				"global_variable", "integer", "float", "string", "simple_symbol",
				"true", "false", "nil", "self",
				"?complex", "?rational", "?character", "?delimited_symbol", "?regex",
				"?hash_key_symbol", "?string_array", "?symbol_array", "?heredoc_beginning",
			},
			Comments: []string{"comment"},
			Statements: []string{
				"assignment", "operator_assignment", "return", "if", "unless", "while",
				"until", "for", "case", "break", "next", "?redo", "?retry",
				"if_modifier", "unless_modifier", "while_modifier", "until_modifier",
				"?call", "?method_call",
			},
			Ignore: []string{"end"},
		},
		ExitHook: rubyIsRaise,
		NameOf:   rubyName,
	})
}

func rubyName(n ast.Node, src []byte) (string, bool) {
	switch n.Kind() {
	case "block", "do_block", "lambda", "singleton_class":
		return "", false
	}
	return fieldText(n, "name", src)
}

// rubyIsRaise treats a receiverless call to raise as an exit.
func rubyIsRaise(n ast.Node, src []byte) bool {
	if n.Kind() != "call" && n.Kind() != "method_call" {
		return false
	}
	if _, ok := n.ChildByField("receiver"); ok {
		return false
	}
	name, ok := fieldText(n, "method", src)
	return ok && name == "raise"
}
