package analyzer

import (
	"context"

	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

// FunctionSpan locates one callable space.
type FunctionSpan struct {
	Kind      models.SpaceKind `json:"kind"`
	Name      string           `json:"name"`
	StartLine int              `json:"start_line"`
	EndLine   int              `json:"end_line"`
	Depth     int              `json:"depth"`
}

// Functions lists the functions and closures under root in source order.
func Functions(root *models.Space) []FunctionSpan {
	if root == nil {
		return nil
	}
	var out []FunctionSpan
	root.Visit(func(sp *models.Space, depth int) bool {
		if sp.Kind.IsCallable() {
			out = append(out, FunctionSpan{
				Kind:      sp.Kind,
				Name:      sp.DisplayName(),
				StartLine: sp.StartLine,
				EndLine:   sp.EndLine,
				Depth:     depth,
			})
		}
		return true
	})
	return out
}

// NodeMatch is one syntax node selected by Find.
type NodeMatch struct {
	Kind      string `json:"kind"`
	Start     uint32 `json:"start"`
	End       uint32 `json:"end"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// NodeCount tallies syntax nodes by kind.
type NodeCount struct {
	// Total counts every node in the tree, named or not.
	Total int `json:"total"`
	// Depth is the height of the tree, counting the root as 1.
	Depth   int            `json:"depth"`
	Matched int            `json:"matched"`
	Kinds   map[string]int `json:"kinds"`
}

// Find returns the nodes whose grammar kind is one of kinds, in source order.
func (a *Analyzer) Find(ctx context.Context, language parser.Language, path string, content []byte, kinds []string) ([]NodeMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, _, err := a.parse(language, path, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	want := kindSet(kinds)
	matches := []NodeMatch{}
	ast.Walk(tree.Root(), func(n ast.Node) ast.Action {
		if want[n.Kind()] {
			matches = append(matches, NodeMatch{
				Kind:      n.Kind(),
				Start:     n.Start(),
				End:       n.End(),
				StartLine: int(n.StartRow()) + 1,
				EndLine:   int(n.LastRow()) + 1,
			})
		}
		return ast.Continue
	}, nil)
	return matches, nil
}

// Count tallies the nodes whose grammar kind is one of kinds.
func (a *Analyzer) Count(ctx context.Context, language parser.Language, path string, content []byte, kinds []string) (NodeCount, error) {
	if err := ctx.Err(); err != nil {
		return NodeCount{}, err
	}
	tree, _, err := a.parse(language, path, content)
	if err != nil {
		return NodeCount{}, err
	}
	defer tree.Close()

	want := kindSet(kinds)
	count := NodeCount{Kinds: make(map[string]int, len(want))}
	for k := range want {
		count.Kinds[k] = 0
	}
	ast.Walk(tree.Root(), func(n ast.Node) ast.Action {
		count.Total++
		if want[n.Kind()] {
			count.Kinds[n.Kind()]++
			count.Matched++
		}
		return ast.Continue
	}, nil)
	count.Depth = ast.Depth(tree.Root())
	return count, nil
}

func kindSet(kinds []string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		if k != "" {
			set[k] = true
		}
	}
	return set
}
