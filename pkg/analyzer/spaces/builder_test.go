package spaces_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Singularity-ng/singularity-analysis/pkg/analyzer/spaces"
	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/lang"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

func build(t *testing.T, tag parser.Language, src string) *models.Space {
	t.Helper()
	cls, err := lang.Lookup(tag)
	require.NoError(t, err)

	p := parser.New()
	defer p.Close()
	result, err := p.Parse([]byte(src), tag, "test")
	require.NoError(t, err)
	tree := ast.NewTree(result.Tree)
	defer tree.Close()
	require.False(t, tree.Root().HasError(), "source should parse cleanly")

	return spaces.Build(tree.Root(), []byte(src), cls)
}

func TestLineCount(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\nb\n", 2},
		{"\n", 1},
		{"\n\n", 2},
	}
	for _, tt := range tests {
		if got := spaces.LineCount([]byte(tt.src)); got != tt.want {
			t.Errorf("LineCount(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	unit := build(t, parser.LangJavaScript, "")

	assert.Equal(t, models.SpaceUnit, unit.Kind)
	assert.Empty(t, unit.Spaces)
	assert.Equal(t, uint32(0), unit.Start)
	assert.Equal(t, uint32(0), unit.End)
	assert.Zero(t, unit.Counters.Lines)
	assert.Empty(t, unit.Counters.Operators)
	assert.Empty(t, unit.Counters.Operands)
}

func TestBuildFunction(t *testing.T) {
	src := "function f(a, b) { if (a) { return a; } return b; }\n"
	unit := build(t, parser.LangJavaScript, src)

	assert.Equal(t, uint32(len(src)), unit.End)
	require.Len(t, unit.Spaces, 1)

	f := unit.Spaces[0]
	assert.Equal(t, models.SpaceFunction, f.Kind)
	assert.Equal(t, "f", f.Name)
	assert.Equal(t, 2, f.Counters.Args)
	assert.Equal(t, 2, f.Counters.Exits)
	assert.Equal(t, 1, f.Counters.Conditionals)
	assert.Equal(t, 1, f.Counters.MaxNesting)
	assert.Equal(t, uint32(0), f.Start)
	assert.Equal(t, uint32(len(src)-1), f.End)
	assert.Equal(t, 1, f.StartLine)
	assert.Equal(t, 1, f.EndLine)

	assert.Equal(t, 3, f.Counters.Operands["id:a"])
	assert.Equal(t, 2, f.Counters.Operands["id:b"])
	assert.Equal(t, 2, f.Counters.Operators["op:return"])
	assert.Zero(t, unit.Counters.Decisions())
}

func TestBuildNesting(t *testing.T) {
	src := "class A {\n  m() {\n    return () => 1;\n  }\n}\n"
	unit := build(t, parser.LangJavaScript, src)

	require.Len(t, unit.Spaces, 1)
	class := unit.Spaces[0]
	assert.Equal(t, models.SpaceClass, class.Kind)
	assert.Equal(t, "A", class.Name)

	require.Len(t, class.Spaces, 1)
	m := class.Spaces[0]
	assert.Equal(t, models.SpaceFunction, m.Kind)
	assert.Equal(t, "m", m.Name)

	require.Len(t, m.Spaces, 1)
	closure := m.Spaces[0]
	assert.Equal(t, models.SpaceClosure, closure.Kind)
	assert.False(t, closure.HasName())
	assert.Equal(t, 1, m.Counters.Exits)
}

func TestBuildSiblingsOrdered(t *testing.T) {
	src := "def a():\n    return 1\n\ndef b():\n    return 1\n\nclass C:\n    def d(self):\n        pass\n"
	unit := build(t, parser.LangPython, src)

	require.Len(t, unit.Spaces, 3)
	unit.Visit(func(sp *models.Space, _ int) bool {
		var prevEnd uint32
		for i, child := range sp.Spaces {
			assert.GreaterOrEqual(t, child.Start, sp.Start)
			assert.LessOrEqual(t, child.End, sp.End)
			if i > 0 {
				assert.GreaterOrEqual(t, child.Start, prevEnd)
			}
			prevEnd = child.End
		}
		return true
	})
}

func TestBuildLineOwnership(t *testing.T) {
	src := "package p\n\n// doc\nfunc f() {\n\tx := 1\n\t_ = x\n}\n"
	unit := build(t, parser.LangGo, src)
	require.Len(t, unit.Spaces, 1)
	f := unit.Spaces[0]

	assert.Equal(t, 4, f.StartLine)
	assert.Equal(t, 7, f.EndLine)
	assert.Equal(t, 4, f.Counters.Lines)
	assert.Equal(t, 4, f.Counters.CodeLines)
	assert.Equal(t, 2, f.Counters.Statements)

	assert.Equal(t, 3, unit.Counters.Lines)
	assert.Equal(t, 1, unit.Counters.CodeLines)
	assert.Equal(t, 1, unit.Counters.Comments)
	assert.Equal(t, 1, unit.Counters.BlankLines)

	total := 0
	unit.Visit(func(sp *models.Space, _ int) bool {
		total += sp.Counters.Lines
		return true
	})
	assert.Equal(t, spaces.LineCount([]byte(src)), total)
}

func TestBuildSharedLine(t *testing.T) {
	src := "const a = () => 1, b = () => 2;\n"
	unit := build(t, parser.LangJavaScript, src)

	require.Len(t, unit.Spaces, 2)
	assert.Equal(t, 1, unit.Spaces[0].Counters.Lines)
	assert.Equal(t, 0, unit.Spaces[1].Counters.Lines)
	assert.Equal(t, 0, unit.Counters.Lines)
}

func TestBuildMaxNesting(t *testing.T) {
	src := `package p

func f(x int) {
	if x > 0 {
		for i := 0; i < x; i++ {
			if i > 1 {
			}
		}
	} else if x < 0 {
	}
}
`
	unit := build(t, parser.LangGo, src)
	require.Len(t, unit.Spaces, 1)
	c := unit.Spaces[0].Counters

	assert.Equal(t, 3, c.MaxNesting)
	assert.Equal(t, 3, c.Conditionals)
	assert.Equal(t, 1, c.Loops)
}

func TestBuildNestingResetsInClosure(t *testing.T) {
	src := "package p\n\nfunc f() {\n\tif true {\n\t\tg := func() {\n\t\t\tif true {\n\t\t\t}\n\t\t}\n\t\t_ = g\n\t}\n}\n"
	unit := build(t, parser.LangGo, src)

	f := unit.Find(func(sp *models.Space) bool { return sp.Kind == models.SpaceFunction })
	g := unit.Find(func(sp *models.Space) bool { return sp.Kind == models.SpaceClosure })
	require.NotNil(t, f)
	require.NotNil(t, g)

	assert.Equal(t, 1, f.Counters.MaxNesting)
	assert.Equal(t, 1, f.Counters.Conditionals)
	assert.Equal(t, 1, g.Counters.MaxNesting)
	assert.Equal(t, 1, g.Counters.Conditionals)
}

func TestBuildOperandIsOpaque(t *testing.T) {
	src := "const s = `a${b}`;\n"
	unit := build(t, parser.LangJavaScript, src)

	ops := unit.Counters.Operands
	assert.Equal(t, 1, ops["id:s"])
	assert.Equal(t, 1, ops["id:`a${b}`"])
	assert.NotContains(t, ops, "id:b")
}

func TestBuildSpaceInsideOperand(t *testing.T) {
	src := "const s = `${(() => x)()}`;\n"
	unit := build(t, parser.LangJavaScript, src)

	require.Len(t, unit.Spaces, 1)
	closure := unit.Spaces[0]
	assert.Equal(t, models.SpaceClosure, closure.Kind)
	assert.Equal(t, 1, closure.Counters.Operands["id:x"])
}

func TestBuildDeepNesting(t *testing.T) {
	const depth = 300
	src := "f = " + strings.Repeat("lambda: ", depth) + "0\n"
	unit := build(t, parser.LangPython, src)

	assert.Equal(t, depth+1, unit.Count())
}

func TestBuildTwoIdenticalFunctions(t *testing.T) {
	src := "int f(int a) { return a; }\nint g(int a) { return a; }\n"
	unit := build(t, parser.LangC, src)

	require.Len(t, unit.Spaces, 2)
	a, b := unit.Spaces[0], unit.Spaces[1]
	assert.Equal(t, "f", a.Name)
	assert.Equal(t, "g", b.Name)
	assert.NotEqual(t, a.Start, b.Start)
	assert.Equal(t, a.Counters.Args, b.Counters.Args)
	assert.Equal(t, a.Counters.Exits, b.Counters.Exits)
	assert.Equal(t, len(a.Counters.Operators), len(b.Counters.Operators))
}
