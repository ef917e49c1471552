package models

// SpaceKind classifies a lexical scope.
type SpaceKind string

const (
	SpaceUnit      SpaceKind = "unit"
	SpaceClass     SpaceKind = "class"
	SpaceFunction  SpaceKind = "function"
	SpaceInterface SpaceKind = "interface"
	SpaceClosure   SpaceKind = "closure"
	SpaceUnknown   SpaceKind = "unknown"
)

// IsCallable reports whether spaces of this kind count as methods.
func (k SpaceKind) IsCallable() bool {
	return k == SpaceFunction || k == SpaceClosure
}

// Space is a lexical scope with its metrics. Children are ordered by start
// offset, do not overlap, and lie within the parent's byte span.
type Space struct {
	Kind      SpaceKind `json:"kind"`
	Name      string    `json:"name,omitempty"`
	Start     uint32    `json:"start"`
	End       uint32    `json:"end"`
	StartLine int       `json:"start_line"`
	EndLine   int       `json:"end_line"`

	// Own holds metrics for code directly inside this space.
	Own Metrics `json:"own"`
	// Metrics holds metrics aggregated over this space and its descendants.
	Metrics Metrics `json:"metrics"`

	Spaces []*Space `json:"spaces,omitempty"`

	Counters *Counters `json:"-"`
}

// HasName reports whether the space carries a name.
func (s *Space) HasName() bool { return s.Name != "" }

// DisplayName returns the name, or a placeholder for anonymous spaces.
func (s *Space) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return "<anonymous>"
}

// Counters are the raw tallies collected for one space during traversal.
// They cover only nodes whose innermost enclosing space is this one.
type Counters struct {
	// Operators and Operands count occurrences by identity.
	Operators map[string]int
	Operands  map[string]int

	Conditionals int
	Loops        int
	CaseArms     int
	Logical      int
	Exits        int
	Args         int
	Statements   int
	MaxNesting   int

	// Line tallies over the lines this space owns.
	Lines      int
	CodeLines  int
	Comments   int
	BlankLines int
}

// NewCounters returns empty counters.
func NewCounters() *Counters {
	return &Counters{
		Operators: make(map[string]int),
		Operands:  make(map[string]int),
	}
}

// Decisions returns the number of independent decision points.
func (c *Counters) Decisions() int {
	return c.Conditionals + c.Loops + c.CaseArms + c.Logical
}

// Visit calls fn for every space in the tree in pre-order with its depth
// (root is 0). Returning false from fn skips the space's children.
func (s *Space) Visit(fn func(sp *Space, depth int) bool) {
	type entry struct {
		space *Space
		depth int
	}
	stack := []entry{{s, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(e.space, e.depth) {
			continue
		}
		for i := len(e.space.Spaces) - 1; i >= 0; i-- {
			stack = append(stack, entry{e.space.Spaces[i], e.depth + 1})
		}
	}
}

// Find returns the first space in pre-order satisfying pred.
func (s *Space) Find(pred func(*Space) bool) *Space {
	var found *Space
	s.Visit(func(sp *Space, _ int) bool {
		if found != nil {
			return false
		}
		if pred(sp) {
			found = sp
			return false
		}
		return true
	})
	return found
}

// Count returns the number of spaces in the tree, including s.
func (s *Space) Count() int {
	n := 0
	s.Visit(func(*Space, int) bool {
		n++
		return true
	})
	return n
}
