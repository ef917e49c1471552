package lang

import (
	"strings"

	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
)

// fieldText returns the text of the child stored under field.
func fieldText(n ast.Node, field string, src []byte) (string, bool) {
	child, ok := n.ChildByField(field)
	if !ok {
		return "", false
	}
	text, ok := child.Text(src)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

// firstChildKind returns the kind of n's first child, named or not.
func firstChildKind(n ast.Node) string {
	c := n.Child(0)
	if c.IsZero() {
		return ""
	}
	return c.Kind()
}

// notDefault rejects case labels introduced by the default keyword.
func notDefault(n ast.Node, _ []byte) bool {
	return firstChildKind(n) != "default"
}

// notWildcard rejects match arms whose pattern is the bare _ catch-all.
func notWildcard(n ast.Node, src []byte) bool {
	for i := 0; i < n.ChildCount(); i++ {
		c := n.Child(i)
		if k := c.Kind(); k == "case" || k == "comment" {
			continue
		}
		text, ok := c.Text(src)
		return !ok || strings.TrimSpace(text) != "_"
	}
	return true
}

// hasChildKind reports whether any direct child has one of the kinds.
func hasChildKind(n ast.Node, kinds ...string) bool {
	for i := 0; i < n.ChildCount(); i++ {
		k := n.Child(i).Kind()
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
	}
	return false
}

// withBody accepts class-like spaces only when they carry a body, so forward
// declarations and type references are not spaces.
func withBody(n ast.Node, _ []byte, kind models.SpaceKind) bool {
	if kind != models.SpaceClass && kind != models.SpaceInterface {
		return true
	}
	_, ok := n.ChildByField("body")
	return ok
}

// maxDeclaratorDepth bounds declarator chain walks.
const maxDeclaratorDepth = 16

// functionDeclarator follows a C-family declarator chain down to the
// function_declarator. Pointer and reference declarators wrap it.
func functionDeclarator(n ast.Node) (ast.Node, bool) {
	d, ok := n.ChildByField("declarator")
	for i := 0; ok && i < maxDeclaratorDepth; i++ {
		if d.Kind() == "function_declarator" {
			return d, true
		}
		next, found := d.ChildByField("declarator")
		if !found {
			if d.NamedChildCount() == 0 {
				return ast.Node{}, false
			}
			next = d.NamedChild(d.NamedChildCount() - 1)
		}
		d = next
	}
	return ast.Node{}, false
}
