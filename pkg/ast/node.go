package ast

import (
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
)

// Tree owns a parsed syntax tree. Nodes obtained from it are invalid after Close.
type Tree struct {
	tree *sitter.Tree
}

// NewTree wraps a tree-sitter tree.
func NewTree(t *sitter.Tree) *Tree {
	return &Tree{tree: t}
}

// Root returns the root node, or the zero Node for an empty tree.
func (t *Tree) Root() Node {
	if t == nil || t.tree == nil {
		return Node{}
	}
	return wrap(t.tree.RootNode())
}

// Close releases the underlying tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Node is a borrowed view of a single syntax node.
type Node struct {
	n *sitter.Node
}

// Key identifies a node within one tree.
type Key struct {
	KindID     uint16
	Start, End uint32
}

func wrap(n *sitter.Node) Node {
	if n == nil || n.IsNull() {
		return Node{}
	}
	return Node{n: n}
}

// IsZero reports whether the node is absent.
func (n Node) IsZero() bool { return n.n == nil }

// Kind returns the grammar's name for the node type.
func (n Node) Kind() string { return n.n.Type() }

// KindID returns the grammar symbol id of the node type.
func (n Node) KindID() uint16 { return uint16(n.n.Symbol()) }

// Start returns the starting byte offset.
func (n Node) Start() uint32 { return n.n.StartByte() }

// End returns the ending byte offset (exclusive).
func (n Node) End() uint32 { return n.n.EndByte() }

// StartRow returns the zero-based line the node starts on.
func (n Node) StartRow() uint32 { return n.n.StartPoint().Row }

// LastRow returns the zero-based line holding the node's last byte.
// A node ending at column zero does not extend onto that line.
func (n Node) LastRow() uint32 {
	start, end := n.n.StartPoint(), n.n.EndPoint()
	if end.Column == 0 && end.Row > start.Row {
		return end.Row - 1
	}
	return end.Row
}

// Width returns the node's length in bytes.
func (n Node) Width() uint32 { return n.End() - n.Start() }

// Key returns the node's identity within its tree.
func (n Node) Key() Key {
	return Key{KindID: n.KindID(), Start: n.Start(), End: n.End()}
}

func (n Node) IsNamed() bool   { return n.n.IsNamed() }
func (n Node) IsMissing() bool { return n.n.IsMissing() }
func (n Node) IsError() bool   { return n.n.Type() == "ERROR" }
func (n Node) HasError() bool  { return n.n.HasError() }

// ChildCount returns the number of children, named and anonymous.
func (n Node) ChildCount() int { return int(n.n.ChildCount()) }

// Child returns the i-th child or the zero Node.
func (n Node) Child(i int) Node {
	if i < 0 || i >= n.ChildCount() {
		return Node{}
	}
	return wrap(n.n.Child(i))
}

// NamedChildCount returns the number of named children.
func (n Node) NamedChildCount() int { return int(n.n.NamedChildCount()) }

// NamedChild returns the i-th named child or the zero Node.
func (n Node) NamedChild(i int) Node {
	if i < 0 || i >= n.NamedChildCount() {
		return Node{}
	}
	return wrap(n.n.NamedChild(i))
}

// ChildByField returns the child stored under a grammar field name.
func (n Node) ChildByField(name string) (Node, bool) {
	c := wrap(n.n.ChildByFieldName(name))
	return c, !c.IsZero()
}

// Parent returns the enclosing node.
func (n Node) Parent() (Node, bool) {
	p := wrap(n.n.Parent())
	return p, !p.IsZero()
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return n.n.ChildCount() == 0 }

// Text returns the node's source text. It reports false when the span does
// not fit the buffer or the bytes are not valid UTF-8.
func (n Node) Text(src []byte) (string, bool) {
	if n.IsZero() {
		return "", false
	}
	start, end := n.Start(), n.End()
	if start > end || end > uint32(len(src)) {
		return "", false
	}
	b := src[start:end]
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}
