package analyzer

import (
	"context"
	"sort"
	"strings"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer/metrics"
	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer/spaces"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

// Ops lists the distinct Halstead operators and operands of a space and
// everything nested in it. Values are sorted.
type Ops struct {
	Kind      models.SpaceKind `json:"kind"`
	Name      string           `json:"name,omitempty"`
	StartLine int              `json:"start_line"`
	EndLine   int              `json:"end_line"`
	Operators []string         `json:"operators"`
	Operands  []string         `json:"operands"`
	Spaces    []*Ops           `json:"spaces,omitempty"`
}

// OpsOf builds the operator and operand listing for a computed space tree.
// It returns nil when root carries no counters.
func OpsOf(root *models.Space) *Ops {
	if root == nil || root.Counters == nil {
		return nil
	}
	ops, _, _ := collectOps(root)
	return ops
}

func collectOps(sp *models.Space) (*Ops, map[string]struct{}, map[string]struct{}) {
	operators := make(map[string]struct{})
	operands := make(map[string]struct{})
	if sp.Counters != nil {
		for k := range sp.Counters.Operators {
			operators[strings.TrimPrefix(k, "op:")] = struct{}{}
		}
		for k := range sp.Counters.Operands {
			operands[strings.TrimPrefix(k, "id:")] = struct{}{}
		}
	}

	ops := &Ops{
		Kind:      sp.Kind,
		Name:      sp.Name,
		StartLine: sp.StartLine,
		EndLine:   sp.EndLine,
	}
	for _, child := range sp.Spaces {
		sub, subOperators, subOperands := collectOps(child)
		ops.Spaces = append(ops.Spaces, sub)
		for k := range subOperators {
			operators[k] = struct{}{}
		}
		for k := range subOperands {
			operands[k] = struct{}{}
		}
	}
	ops.Operators = sortedKeys(operators)
	ops.Operands = sortedKeys(operands)
	return ops, operators, operands
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Ops parses content and lists the operators and operands of every space.
func (a *Analyzer) Ops(ctx context.Context, language parser.Language, path string, content []byte) (*Ops, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tree, cls, err := a.parse(language, path, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	unit := spaces.Build(tree.Root(), content, cls)
	metrics.Compute(unit)
	return OpsOf(unit), nil
}
