package ast

// Action tells Walk how to continue after entering a node.
type Action int

const (
	// Continue descends into the node's children.
	Continue Action = iota
	// SkipChildren moves on to the node's next sibling.
	SkipChildren
)

type cursor struct {
	node  Node
	next  int
	count int
}

// Walk visits every node under root depth-first in source order.
// enter is called before a node's children and leave after them; leave is
// also called for nodes whose children were skipped. Either callback may be nil.
// Traversal uses an explicit stack, so deeply nested input cannot exhaust
// the goroutine stack.
func Walk(root Node, enter func(Node) Action, leave func(Node)) {
	if root.IsZero() {
		return
	}

	var stack []cursor
	visit := func(n Node) {
		if enter != nil && enter(n) == SkipChildren {
			if leave != nil {
				leave(n)
			}
			return
		}
		stack = append(stack, cursor{node: n, count: n.ChildCount()})
	}

	visit(root)
	for len(stack) > 0 {
		top := len(stack) - 1
		if stack[top].next >= stack[top].count {
			n := stack[top].node
			stack = stack[:top]
			if leave != nil {
				leave(n)
			}
			continue
		}
		child := stack[top].node.Child(stack[top].next)
		stack[top].next++
		if child.IsZero() {
			continue
		}
		visit(child)
	}
}

// FirstError returns the first ERROR or MISSING node in source order.
func FirstError(root Node) (Node, bool) {
	if root.IsZero() || !root.HasError() {
		return Node{}, false
	}
	var found Node
	Walk(root, func(n Node) Action {
		if !found.IsZero() {
			return SkipChildren
		}
		if n.IsError() || n.IsMissing() {
			found = n
			return SkipChildren
		}
		if !n.HasError() {
			return SkipChildren
		}
		return Continue
	}, nil)
	return found, !found.IsZero()
}

// Depth returns the maximum depth of the tree, counting root as 1.
func Depth(root Node) int {
	depth, maxDepth := 0, 0
	Walk(root, func(Node) Action {
		depth++
		if depth > maxDepth {
			maxDepth = depth
		}
		return Continue
	}, func(Node) {
		depth--
	})
	return maxDepth
}
