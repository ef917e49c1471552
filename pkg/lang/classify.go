package lang

import (
	"strings"

	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

// Classifier answers role questions about nodes of one language's trees.
// Implementations are immutable after resolution and safe for concurrent use.
type Classifier interface {
	Language() parser.Language

	SpaceKind(n ast.Node, src []byte) (models.SpaceKind, bool)
	FunctionName(n ast.Node, src []byte) (string, bool)
	ArgumentCount(n ast.Node, src []byte) int

	IsConditional(n ast.Node, src []byte) bool
	IsLoop(n ast.Node, src []byte) bool
	IsCaseArm(n ast.Node, src []byte) bool
	IsExit(n ast.Node, src []byte) bool
	OpensNesting(n ast.Node, src []byte) bool
	DecisionWeight(n ast.Node, src []byte) int

	IsOperator(n ast.Node, src []byte) bool
	OperatorIdentity(n ast.Node, src []byte) string
	IsOperand(n ast.Node, src []byte) bool
	OperandIdentity(n ast.Node, src []byte) string

	IsComment(n ast.Node, src []byte) bool
	IsStatement(n ast.Node, src []byte) bool
	IsTrivia(n ast.Node) bool
}

var _ Classifier = (*Language)(nil)

// Language returns the tag this classifier serves.
func (l *Language) Language() parser.Language { return l.Tag }

func (l *Language) lookup(n ast.Node) entry {
	if n.IsZero() || !n.IsNamed() {
		return entry{}
	}
	id := int(n.KindID())
	if id >= len(l.kinds) {
		return entry{}
	}
	return l.kinds[id]
}

func (l *Language) has(n ast.Node, r Role) bool {
	return l.lookup(n).roles&r != 0
}

// SpaceKind reports whether n opens a space, and of which kind.
func (l *Language) SpaceKind(n ast.Node, src []byte) (models.SpaceKind, bool) {
	kind := l.lookup(n).space
	if kind == "" {
		return "", false
	}
	if l.SpaceFilter != nil && !l.SpaceFilter(n, src, kind) {
		return "", false
	}
	return kind, true
}

// FunctionName returns the name of a space node, if it has one.
func (l *Language) FunctionName(n ast.Node, src []byte) (string, bool) {
	if l.NameOf != nil {
		return l.NameOf(n, src)
	}
	return fieldText(n, "name", src)
}

// ArgumentCount returns the number of declared parameters of a callable node.
func (l *Language) ArgumentCount(n ast.Node, src []byte) int {
	params := l.ParamsOf
	if params == nil {
		params = defaultParams
	}
	list, ok := params(n)
	if !ok {
		return 0
	}
	if l.CountParams != nil {
		return l.CountParams(list, src)
	}
	return l.countNamed(list)
}

func defaultParams(n ast.Node) (ast.Node, bool) {
	return n.ChildByField("parameters")
}

// countNamed counts the named, non-comment children of a parameter list.
// A named leaf standing in for the list is a single parameter.
func (l *Language) countNamed(list ast.Node) int {
	if list.NamedChildCount() == 0 {
		if list.IsNamed() && list.IsLeaf() {
			return 1
		}
		return 0
	}
	count := 0
	for i := 0; i < list.NamedChildCount(); i++ {
		if !l.has(list.NamedChild(i), RoleComment) {
			count++
		}
	}
	return count
}

// IsConditional reports decision points that are not loops or case arms.
func (l *Language) IsConditional(n ast.Node, _ []byte) bool {
	return l.has(n, RoleConditional|RoleBranch)
}

// IsLoop reports loop constructs.
func (l *Language) IsLoop(n ast.Node, _ []byte) bool {
	return l.has(n, RoleLoop)
}

// IsCaseArm reports case arms that add a decision point.
func (l *Language) IsCaseArm(n ast.Node, src []byte) bool {
	if !l.has(n, RoleCaseArm) {
		return false
	}
	if l.CaseFilter != nil {
		return l.CaseFilter(n, src)
	}
	return true
}

// IsExit reports function exit points.
func (l *Language) IsExit(n ast.Node, src []byte) bool {
	if l.has(n, RoleExit) {
		return true
	}
	return l.ExitHook != nil && l.ExitHook(n, src)
}

// OpensNesting reports constructs that deepen nesting: conditionals that do
// not continue an else-if chain, loops, and case arms.
func (l *Language) OpensNesting(n ast.Node, src []byte) bool {
	e := l.lookup(n)
	switch {
	case e.roles&RoleConditional != 0:
		if p, ok := n.Parent(); ok && l.chains[p.Kind()] {
			return false
		}
		return true
	case e.roles&RoleLoop != 0:
		return true
	case e.roles&RoleCaseArm != 0:
		return l.IsCaseArm(n, src)
	}
	return false
}

// DecisionWeight sums the weights of short-circuit operators carried by n.
func (l *Language) DecisionWeight(n ast.Node, _ []byte) int {
	if !l.has(n, RoleLogical) {
		return 0
	}
	weight := 0
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			continue
		}
		weight += l.Table.LogicalOps[c.Kind()]
	}
	return weight
}

// IsTrivia reports zero-width and whitespace-only tokens.
func (l *Language) IsTrivia(n ast.Node) bool {
	return n.Width() == 0 || strings.TrimSpace(n.Kind()) == ""
}

// IsOperator reports leaf tokens counted as Halstead operators: keywords,
// punctuation and other leaves that are neither operands, comments nor
// closing delimiters.
func (l *Language) IsOperator(n ast.Node, _ []byte) bool {
	if !n.IsLeaf() || l.IsTrivia(n) || n.IsError() || n.IsMissing() {
		return false
	}
	if l.has(n, RoleOperand|RoleComment) {
		return false
	}
	return !l.ignore[n.Kind()]
}

// OperatorIdentity keys operators by token kind.
func (l *Language) OperatorIdentity(n ast.Node, _ []byte) string {
	return "op:" + n.Kind()
}

// IsOperand reports identifier and literal nodes.
func (l *Language) IsOperand(n ast.Node, _ []byte) bool {
	return l.has(n, RoleOperand)
}

// OperandIdentity keys operands by their source text.
func (l *Language) OperandIdentity(n ast.Node, src []byte) string {
	if text, ok := n.Text(src); ok {
		return "id:" + text
	}
	return "id:<" + n.Kind() + ">"
}

// IsComment reports comment nodes.
func (l *Language) IsComment(n ast.Node, _ []byte) bool {
	return l.has(n, RoleComment)
}

// IsStatement reports nodes counted as logical lines.
func (l *Language) IsStatement(n ast.Node, _ []byte) bool {
	return l.has(n, RoleStatement)
}
