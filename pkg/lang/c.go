package lang

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func cTable() Table {
	return Table{
		Grammar:      "tree-sitter-c 0.20",
		Functions:    []string{"function_definition"},
		Classes:      []string{"struct_specifier", "union_specifier"},
		Conditionals: []string{"if_statement", "conditional_expression"},
		Loops:        []string{"for_statement", "while_statement", "do_statement"},
		CaseArms:     []string{"case_statement"},
		Exits:        []string{"return_statement"},
		Logical:      []string{"binary_expression"},
		LogicalOps:   map[string]int{"&&": 1, "||": 1},
		Operands: []string{
			"identifier", "field_identifier", "type_identifier", "primitive_type",
			"number_literal", "string_literal", "char_literal",
			"?true", "?false", "?null", "?system_lib_string",
			"?statement_identifier", "?concatenated_string",
		},
		Comments: []string{"comment"},
		Statements: []string{
			"expression_statement", "declaration", "return_statement", "if_statement",
			"for_statement", "while_statement", "do_statement", "break_statement",
			"continue_statement", "goto_statement", "switch_statement", "?labeled_statement",
		},
		Chains: []string{"else_clause", "if_statement"},
	}
}

func cppTable() Table {
	t := cTable()
	t.Grammar = "tree-sitter-cpp 0.20"
	t.Closures = []string{"lambda_expression"}
	t.Classes = append(t.Classes, "class_specifier")
	t.Branches = []string{"catch_clause"}
	t.Loops = append(t.Loops, "for_range_loop")
	t.Exits = append(t.Exits, "throw_statement")
	t.Operands = append(t.Operands,
		"namespace_identifier", "this", "?nullptr", "?raw_string_literal",
		"?user_defined_literal", "?auto", "?destructor_name", "?operator_name",
	)
	t.Statements = append(t.Statements, "throw_statement", "try_statement", "for_range_loop")
	return t
}

func init() {
	register(&Language{
		Tag:         parser.LangC,
		Table:       cTable(),
		SpaceFilter: withBody,
		CaseFilter:  notDefault,
		NameOf:      cName,
		ParamsOf:    cParams,
		CountParams: cCountParams,
	})
	register(&Language{
		Tag:         parser.LangCPP,
		Table:       cppTable(),
		SpaceFilter: withBody,
		CaseFilter:  notDefault,
		NameOf:      cName,
		ParamsOf:    cParams,
		CountParams: cCountParams,
	})
}

func cName(n ast.Node, src []byte) (string, bool) {
	switch n.Kind() {
	case "function_definition":
		fd, ok := functionDeclarator(n)
		if !ok {
			return "", false
		}
		return fieldText(fd, "declarator", src)
	case "lambda_expression":
		return "", false
	}
	return fieldText(n, "name", src)
}

func cParams(n ast.Node) (ast.Node, bool) {
	switch n.Kind() {
	case "function_definition":
		fd, ok := functionDeclarator(n)
		if !ok {
			return ast.Node{}, false
		}
		return fd.ChildByField("parameters")
	case "lambda_expression":
		d, ok := n.ChildByField("declarator")
		if !ok {
			return ast.Node{}, false
		}
		return d.ChildByField("parameters")
	}
	return ast.Node{}, false
}

// cCountParams counts parameter declarations; (void) declares none.
func cCountParams(list ast.Node, src []byte) int {
	count := 0
	for i := 0; i < list.NamedChildCount(); i++ {
		p := list.NamedChild(i)
		if p.Kind() == "comment" {
			continue
		}
		count++
	}
	if count == 1 {
		p := list.NamedChild(0)
		if _, named := p.ChildByField("declarator"); !named && p.Kind() == "parameter_declaration" {
			if text, ok := p.Text(src); ok && text == "void" {
				return 0
			}
		}
	}
	return count
}
