// Package spaces partitions a syntax tree into nested lexical scopes.
//
// Build makes a single depth-first pass over the tree. Nodes the classifier
// reports as space boundaries open a new Space; every node updates the raw
// counters of the innermost open Space. The result is a Space tree rooted at
// an implicit Unit covering the whole buffer, ready for the metrics engine.
package spaces

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/lang"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
)

// frame is an open space during traversal.
type frame struct {
	space   *models.Space
	nesting int // open nesting constructs inside this space
	opaque  int // open operand nodes; their tokens are already counted
}

// mark records what entering a node pushed, so leaving can undo it.
type mark struct {
	space bool
	nest  bool
	opaq  bool
}

type builder struct {
	cls lang.Classifier
	src []byte

	frames []*frame
	marks  []mark

	code     *roaring.Bitmap
	comments *roaring.Bitmap
}

// Build returns the Unit space for root with raw counters filled in.
// The Unit spans the whole of src regardless of where the root node starts.
func Build(root ast.Node, src []byte, cls lang.Classifier) *models.Space {
	lines := LineCount(src)
	unit := &models.Space{
		Kind:     models.SpaceUnit,
		Start:    0,
		End:      uint32(len(src)),
		Counters: models.NewCounters(),
	}
	if lines > 0 {
		unit.StartLine = 1
		unit.EndLine = lines
	}

	b := &builder{
		cls:      cls,
		src:      src,
		frames:   []*frame{{space: unit}},
		code:     roaring.New(),
		comments: roaring.New(),
	}
	ast.Walk(root, b.enter, b.leave)

	assignLines(unit, lines, b.code, b.comments)
	return unit
}

func (b *builder) top() *frame {
	return b.frames[len(b.frames)-1]
}

func (b *builder) enter(n ast.Node) ast.Action {
	var m mark

	if kind, ok := b.cls.SpaceKind(n, b.src); ok {
		b.open(n, kind)
		m.space = true
	}

	f := b.top()
	c := f.space.Counters

	if b.cls.IsConditional(n, b.src) {
		c.Conditionals++
	}
	if b.cls.IsLoop(n, b.src) {
		c.Loops++
	}
	if b.cls.IsCaseArm(n, b.src) {
		c.CaseArms++
	}
	c.Logical += b.cls.DecisionWeight(n, b.src)
	if b.cls.IsExit(n, b.src) {
		c.Exits++
	}
	if b.cls.IsStatement(n, b.src) {
		c.Statements++
	}
	if b.cls.OpensNesting(n, b.src) {
		f.nesting++
		c.MaxNesting = max(c.MaxNesting, f.nesting)
		m.nest = true
	}

	if b.cls.IsComment(n, b.src) {
		addRows(b.comments, n)
		b.marks = append(b.marks, m)
		return ast.SkipChildren
	}

	switch {
	case b.cls.IsOperand(n, b.src):
		if f.opaque == 0 {
			c.Operands[b.cls.OperandIdentity(n, b.src)]++
			addRows(b.code, n)
		}
		f.opaque++
		m.opaq = true
	case f.opaque > 0:
	case b.cls.IsOperator(n, b.src):
		c.Operators[b.cls.OperatorIdentity(n, b.src)]++
		addRows(b.code, n)
	case n.IsLeaf() && !b.cls.IsTrivia(n):
		addRows(b.code, n)
	}

	b.marks = append(b.marks, m)
	return ast.Continue
}

func (b *builder) leave(ast.Node) {
	m := b.marks[len(b.marks)-1]
	b.marks = b.marks[:len(b.marks)-1]

	f := b.top()
	if m.nest {
		f.nesting--
	}
	if m.opaq {
		f.opaque--
	}
	if m.space {
		b.frames = b.frames[:len(b.frames)-1]
		parent := b.top().space
		parent.Spaces = append(parent.Spaces, f.space)
	}
}

func (b *builder) open(n ast.Node, kind models.SpaceKind) {
	sp := &models.Space{
		Kind:      kind,
		Start:     n.Start(),
		End:       n.End(),
		StartLine: int(n.StartRow()) + 1,
		EndLine:   int(n.LastRow()) + 1,
		Counters:  models.NewCounters(),
	}
	if name, ok := b.cls.FunctionName(n, b.src); ok {
		sp.Name = name
	}
	if kind.IsCallable() {
		sp.Counters.Args = b.cls.ArgumentCount(n, b.src)
	}
	b.frames = append(b.frames, &frame{space: sp})
}

func addRows(bm *roaring.Bitmap, n ast.Node) {
	bm.AddRange(uint64(n.StartRow()), uint64(n.LastRow())+1)
}
