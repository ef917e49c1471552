// Package ast provides a read-only view over tree-sitter syntax trees.
//
// Nodes never hold on to the source buffer. Every operation that needs the
// source text takes the buffer explicitly, and nodes are only valid until the
// owning Tree is closed.
//
// Usage:
//
//	tree := ast.NewTree(result.Tree)
//	defer tree.Close()
//
//	ast.Walk(tree.Root(), func(n ast.Node) ast.Action {
//	    if text, ok := n.Text(src); ok {
//	        fmt.Println(n.Kind(), text)
//	    }
//	    return ast.Continue
//	}, nil)
package ast
