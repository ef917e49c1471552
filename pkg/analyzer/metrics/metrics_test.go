package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Singularity-ng/singularity-analysis/pkg/models"
)

func space(kind models.SpaceKind, c *models.Counters, children ...*models.Space) *models.Space {
	return &models.Space{Kind: kind, Counters: c, Spaces: children}
}

func counters(fn func(c *models.Counters)) *models.Counters {
	c := models.NewCounters()
	fn(c)
	return c
}

func TestOwnCyclomatic(t *testing.T) {
	tests := []struct {
		name string
		c    *models.Counters
		want int
	}{
		{"empty", models.NewCounters(), 1},
		{"one if", counters(func(c *models.Counters) { c.Conditionals = 1 }), 2},
		{"mixed", counters(func(c *models.Counters) {
			c.Conditionals = 2
			c.Loops = 1
			c.CaseArms = 3
			c.Logical = 2
		}), 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Own(models.SpaceFunction, tt.c)
			if got.Cyclomatic != tt.want {
				t.Errorf("Cyclomatic = %d, want %d", got.Cyclomatic, tt.want)
			}
		})
	}
}

func TestOwnEmptySpace(t *testing.T) {
	m := Own(models.SpaceUnit, models.NewCounters())

	assert.Equal(t, 1, m.Cyclomatic)
	assert.Zero(t, m.Halstead.Volume)
	assert.Zero(t, m.Halstead.Difficulty)
	assert.Zero(t, m.NOM.Total)
	assert.Zero(t, m.NArgs.Average)
	assert.False(t, math.IsNaN(m.MaintainabilityIndex))
	assert.InDelta(t, 171-0.23, m.MaintainabilityIndex, 1e-9)
}

func TestOwnNOM(t *testing.T) {
	assert.Equal(t, models.NOM{Functions: 1, Total: 1}, Own(models.SpaceFunction, models.NewCounters()).NOM)
	assert.Equal(t, models.NOM{Closures: 1, Total: 1}, Own(models.SpaceClosure, models.NewCounters()).NOM)
	assert.Equal(t, models.NOM{}, Own(models.SpaceClass, models.NewCounters()).NOM)
}

func TestOwnHalstead(t *testing.T) {
	c := counters(func(c *models.Counters) {
		c.Operators["op:return"] = 2
		c.Operators["op:if"] = 1
		c.Operands["id:a"] = 3
		c.Operands["id:b"] = 1
	})
	h := Own(models.SpaceFunction, c).Halstead

	assert.Equal(t, uint32(2), h.OperatorsUnique)
	assert.Equal(t, uint32(2), h.OperandsUnique)
	assert.Equal(t, uint32(3), h.OperatorsTotal)
	assert.Equal(t, uint32(4), h.OperandsTotal)
	assert.Equal(t, uint32(7), h.Length)
	assert.InDelta(t, 7*2.0, h.Volume, 1e-9)
	assert.InDelta(t, 2.0, h.Difficulty, 1e-9)
}

func TestComputeAggregation(t *testing.T) {
	closure := space(models.SpaceClosure, counters(func(c *models.Counters) {
		c.Conditionals = 1
		c.Exits = 1
		c.Args = 1
		c.MaxNesting = 3
		c.Lines = 2
		c.CodeLines = 2
		c.Operands["id:x"] = 2
		c.Operators["op:return"] = 1
	}))
	fn := space(models.SpaceFunction, counters(func(c *models.Counters) {
		c.Loops = 1
		c.Exits = 2
		c.Args = 2
		c.MaxNesting = 1
		c.Lines = 5
		c.CodeLines = 4
		c.Comments = 1
		c.Operands["id:x"] = 1
		c.Operands["id:y"] = 1
		c.Operators["op:for"] = 1
	}), closure)
	root := space(models.SpaceUnit, counters(func(c *models.Counters) {
		c.Lines = 3
		c.BlankLines = 3
	}), fn)

	Compute(root)

	assert.Equal(t, 2, closure.Metrics.Cyclomatic)
	assert.Equal(t, 2+2, fn.Metrics.Cyclomatic)
	assert.Equal(t, 1+4, root.Metrics.Cyclomatic)

	assert.Equal(t, 7, fn.Metrics.LOC.Source)
	assert.Equal(t, 10, root.Metrics.LOC.Source)
	assert.Equal(t, 3, root.Metrics.LOC.Blank)
	assert.Equal(t, 1, root.Metrics.LOC.Comment)

	assert.Equal(t, 3, fn.Metrics.NArgs.Total)
	assert.InDelta(t, 1.5, fn.Metrics.NArgs.Average, 1e-9)
	assert.Equal(t, 3, root.Metrics.NExits)
	assert.Equal(t, models.NOM{Functions: 1, Closures: 1, Total: 2}, root.Metrics.NOM)
	assert.Equal(t, 3, root.Metrics.MaxNesting)
	assert.Equal(t, 1, fn.Own.MaxNesting)

	// distinct identities merge across the subtree
	h := fn.Metrics.Halstead
	assert.Equal(t, uint32(2), h.OperandsUnique)
	assert.Equal(t, uint32(4), h.OperandsTotal)
	assert.Equal(t, uint32(2), h.OperatorsUnique)
	assert.Equal(t, uint32(2), h.OperatorsTotal)

	// children keep their own identity counts
	assert.Equal(t, 2, closure.Counters.Operands["id:x"])
}

func TestComputeAggregationLaw(t *testing.T) {
	leaf := func(cond, exits, args, lines int) *models.Space {
		return space(models.SpaceFunction, counters(func(c *models.Counters) {
			c.Conditionals = cond
			c.Exits = exits
			c.Args = args
			c.Lines = lines
			c.Statements = lines
		}))
	}
	root := space(models.SpaceUnit, counters(func(c *models.Counters) { c.Lines = 4 }),
		space(models.SpaceClass, counters(func(c *models.Counters) { c.Lines = 2 }),
			leaf(1, 1, 2, 3), leaf(0, 2, 0, 1)),
		leaf(4, 0, 5, 9),
	)

	Compute(root)

	root.Visit(func(sp *models.Space, _ int) bool {
		loc, cc, args, exits := sp.Own.LOC, sp.Own.Cyclomatic, sp.Own.NArgs.Total, sp.Own.NExits
		for _, child := range sp.Spaces {
			loc = loc.Add(child.Metrics.LOC)
			cc += child.Metrics.Cyclomatic
			args += child.Metrics.NArgs.Total
			exits += child.Metrics.NExits
		}
		assert.Equal(t, loc, sp.Metrics.LOC)
		assert.Equal(t, cc, sp.Metrics.Cyclomatic)
		assert.Equal(t, args, sp.Metrics.NArgs.Total)
		assert.Equal(t, exits, sp.Metrics.NExits)
		assert.GreaterOrEqual(t, sp.Metrics.Cyclomatic, 1)
		assert.GreaterOrEqual(t, sp.Metrics.MaintainabilityIndex, 0.0)
		assert.LessOrEqual(t, sp.Metrics.MaintainabilityIndex, 171.0)
		return true
	})
}

func TestComputeMaintainabilityFromAggregate(t *testing.T) {
	fn := space(models.SpaceFunction, counters(func(c *models.Counters) {
		c.Conditionals = 3
		c.Lines = 20
		c.Comments = 5
		c.Operators["op:if"] = 3
		c.Operands["id:a"] = 6
	}))
	root := space(models.SpaceUnit, counters(func(c *models.Counters) { c.Lines = 10 }), fn)

	Compute(root)

	m := root.Metrics
	want := models.MaintainabilityIndex(m.Halstead.Volume, m.Cyclomatic, m.LOC.Source, m.LOC.Comment)
	assert.InDelta(t, want, m.MaintainabilityIndex, 1e-9)
	assert.NotEqual(t, root.Own.MaintainabilityIndex, m.MaintainabilityIndex)
}

func TestComputeNilCounters(t *testing.T) {
	root := &models.Space{Kind: models.SpaceUnit, Spaces: []*models.Space{{Kind: models.SpaceFunction}}}

	require.NotPanics(t, func() { Compute(root) })
	assert.Equal(t, 2, root.Metrics.Cyclomatic)
	assert.Equal(t, 1, root.Metrics.NOM.Functions)
}

func TestComputeIdempotent(t *testing.T) {
	build := func() *models.Space {
		return space(models.SpaceUnit, counters(func(c *models.Counters) {
			c.Lines = 3
			c.Operators["op:="] = 2
			c.Operands["id:a"] = 2
		}), space(models.SpaceFunction, counters(func(c *models.Counters) {
			c.Lines = 2
			c.Conditionals = 1
		})))
	}
	a, b := build(), build()
	Compute(a)
	Compute(b)
	Compute(b)

	assert.Equal(t, a.Metrics, b.Metrics)
	assert.Equal(t, a.Spaces[0].Metrics, b.Spaces[0].Metrics)
}

func TestComputeNil(t *testing.T) {
	assert.NotPanics(t, func() { Compute(nil) })
}
