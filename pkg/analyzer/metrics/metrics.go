// Package metrics turns the raw counters of a Space tree into metric bundles.
//
// Compute works in two phases. Own metrics come from each space's counters
// alone. Aggregate metrics combine a space with its descendants: counts and
// line tallies are summed, nesting takes the maximum, distinct Halstead
// identities are merged, and the derived formulas (Halstead, maintainability
// index, argument average) are recomputed from the combined values.
package metrics

import (
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
)

// tally is the aggregate raw state of a subtree.
type tally struct {
	operators map[string]int
	operands  map[string]int
	metrics   models.Metrics
}

// Compute fills Own and Metrics for every space under root. Spaces without
// counters are treated as empty. Compute is deterministic for a given tree.
func Compute(root *models.Space) {
	if root == nil {
		return
	}

	order := preOrder(root)
	tallies := make(map[*models.Space]*tally, len(order))

	for i := len(order) - 1; i >= 0; i-- {
		sp := order[i]
		c := sp.Counters
		if c == nil {
			c = models.NewCounters()
			sp.Counters = c
		}
		sp.Own = Own(sp.Kind, c)

		t := &tally{
			operators: cloneCounts(c.Operators),
			operands:  cloneCounts(c.Operands),
			metrics:   sp.Own,
		}
		for _, child := range sp.Spaces {
			ct := tallies[child]
			mergeCounts(t.operators, ct.operators)
			mergeCounts(t.operands, ct.operands)
			t.metrics = combine(t.metrics, ct.metrics)
			delete(tallies, child)
		}
		t.metrics = derive(t.metrics, t.operators, t.operands)
		sp.Metrics = t.metrics
		tallies[sp] = t
	}
}

// Own computes the metrics of a single space from its counters.
func Own(kind models.SpaceKind, c *models.Counters) models.Metrics {
	m := models.Metrics{
		Cyclomatic: 1 + c.Decisions(),
		LOC: models.LOC{
			Source:   c.Lines,
			Physical: c.CodeLines,
			Logical:  c.Statements,
			Comment:  c.Comments,
			Blank:    c.BlankLines,
		},
		NExits:     c.Exits,
		MaxNesting: c.MaxNesting,
	}
	switch kind {
	case models.SpaceFunction:
		m.NOM = models.NOM{Functions: 1, Total: 1}
	case models.SpaceClosure:
		m.NOM = models.NOM{Closures: 1, Total: 1}
	}
	m.NArgs.Total = c.Args
	return derive(m, c.Operators, c.Operands)
}

// combine adds a child's aggregate into an accumulating parent aggregate.
// Derived fields are left for derive.
func combine(acc, child models.Metrics) models.Metrics {
	acc.Cyclomatic += child.Cyclomatic
	acc.LOC = acc.LOC.Add(child.LOC)
	acc.NOM = acc.NOM.Add(child.NOM)
	acc.NArgs.Total += child.NArgs.Total
	acc.NExits += child.NExits
	acc.MaxNesting = max(acc.MaxNesting, child.MaxNesting)
	return acc
}

// derive recomputes the formula-based fields from counts.
func derive(m models.Metrics, operators, operands map[string]int) models.Metrics {
	m.Halstead = models.NewHalsteadMetrics(
		uint32(len(operators)),
		uint32(len(operands)),
		uint32(sum(operators)),
		uint32(sum(operands)),
	)
	m.NArgs = models.NewNArgs(m.NArgs.Total, m.NOM.Total)
	m.MaintainabilityIndex = models.MaintainabilityIndex(
		m.Halstead.Volume, m.Cyclomatic, m.LOC.Source, m.LOC.Comment)
	return m
}

func preOrder(root *models.Space) []*models.Space {
	var out []*models.Space
	root.Visit(func(sp *models.Space, _ int) bool {
		out = append(out, sp)
		return true
	})
	return out
}

func sum(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

func cloneCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func mergeCounts(dst, src map[string]int) {
	for k, v := range src {
		dst[k] += v
	}
}
