// Package lang maps grammar node kinds to the semantic roles used by the
// metrics pipeline. Each supported language registers a Language built from a
// versioned Table plus optional hooks for decisions that need to look at
// source text or tree structure.
//
// Tables are resolved against the live grammar on first use. Resolution turns
// kind names into a lookup indexed by grammar symbol id, so classification at
// traversal time is a slice index. A table naming a kind the grammar does not
// define fails resolution with ErrGrammarMismatch.
package lang

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/Singularity-ng/singularity-analysis/pkg/ast"
	"github.com/Singularity-ng/singularity-analysis/pkg/models"
	"github.com/Singularity-ng/singularity-analysis/pkg/parser"
)

var (
	// ErrGrammarMismatch is returned when a table names kinds its grammar lacks.
	ErrGrammarMismatch = errors.New("classifier table does not match grammar")

	// ErrUnknownLanguage is returned for languages without a classifier.
	ErrUnknownLanguage = errors.New("no classifier registered")
)

// Role is a set of semantic roles a node kind plays.
type Role uint16

const (
	RoleConditional Role = 1 << iota
	RoleBranch
	RoleLoop
	RoleCaseArm
	RoleExit
	RoleLogical
	RoleOperand
	RoleComment
	RoleStatement
)

// Table lists grammar node kinds by role. A name prefixed with "?" is
// optional and may be absent from the grammar release.
type Table struct {
	// Grammar names the grammar release the table was written against.
	Grammar string

	Functions  []string
	Closures   []string
	Classes    []string
	Interfaces []string

	// Conditionals add a decision point and open a nesting level.
	Conditionals []string
	// Branches add a decision point without opening a nesting level
	// (elif, catch and similar continuation clauses).
	Branches []string
	Loops    []string
	CaseArms []string
	Exits    []string

	// Logical lists nodes that may carry a short-circuit operator as an
	// anonymous child. LogicalOps weights each operator token.
	Logical    []string
	LogicalOps map[string]int

	Operands   []string
	Comments   []string
	Statements []string

	// Chains lists parent kinds under which a conditional continues an
	// if/else chain instead of nesting.
	Chains []string
	// Ignore lists tokens that are not Halstead operators, in addition to
	// closing delimiters and separators.
	Ignore []string
}

// Language is the classifier for one language.
type Language struct {
	Tag   parser.Language
	Table Table

	// SpaceFilter refines a table match for a space-introducing kind.
	SpaceFilter func(n ast.Node, src []byte, kind models.SpaceKind) bool
	// CaseFilter refines a table match for a case arm.
	CaseFilter func(n ast.Node, src []byte) bool
	// ExitHook reports exits the table cannot express by kind alone.
	ExitHook func(n ast.Node, src []byte) bool
	// NameOf returns the name of a space node.
	NameOf func(n ast.Node, src []byte) (string, bool)
	// ParamsOf returns the parameter list of a callable node.
	ParamsOf func(n ast.Node) (ast.Node, bool)
	// CountParams counts the parameters in a list returned by ParamsOf.
	CountParams func(list ast.Node, src []byte) int

	once   sync.Once
	kinds  []entry
	chains map[string]bool
	ignore map[string]bool
	err    error
}

type entry struct {
	roles Role
	space models.SpaceKind
}

// closers are never counted as operators.
var closers = []string{")", "]", "}", ",", ";", "\""}

var registry = map[parser.Language]*Language{}

func register(l *Language) {
	registry[l.Tag] = l
}

// Lookup returns the resolved classifier for a language.
func Lookup(tag parser.Language) (*Language, error) {
	l, ok := registry[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, tag)
	}
	if err := l.Resolve(); err != nil {
		return nil, err
	}
	return l, nil
}

// Supported returns the languages with a registered classifier, sorted.
func Supported() []parser.Language {
	langs := make([]parser.Language, 0, len(registry))
	for tag := range registry {
		langs = append(langs, tag)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}

// ResolveAll resolves every registered table and joins the failures.
func ResolveAll() error {
	var errs []error
	for _, tag := range Supported() {
		if err := registry[tag].Resolve(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Resolve binds the table to the grammar. It runs once; later calls return
// the first result.
func (l *Language) Resolve() error {
	l.once.Do(func() {
		grammar, err := parser.GetTreeSitterLanguage(l.Tag)
		if err != nil {
			l.err = err
			return
		}
		l.err = l.bind(grammar)
	})
	return l.err
}

func (l *Language) bind(grammar *sitter.Language) error {
	count := grammar.SymbolCount()
	ids := make(map[string][]uint16, count)
	for i := uint32(0); i < count; i++ {
		name := grammar.SymbolName(sitter.Symbol(i))
		ids[name] = append(ids[name], uint16(i))
	}

	kinds := make([]entry, count)
	var missing []string
	assign := func(names []string, apply func(*entry)) {
		for _, raw := range names {
			name, optional := strings.CutPrefix(raw, "?")
			syms, ok := ids[name]
			if !ok {
				if !optional {
					missing = append(missing, name)
				}
				continue
			}
			for _, id := range syms {
				apply(&kinds[id])
			}
		}
	}
	space := func(kind models.SpaceKind) func(*entry) {
		return func(e *entry) {
			// first assignment wins: Function > Closure > Class > Interface
			if e.space == "" {
				e.space = kind
			}
		}
	}
	role := func(r Role) func(*entry) {
		return func(e *entry) { e.roles |= r }
	}

	t := l.Table
	assign(t.Functions, space(models.SpaceFunction))
	assign(t.Closures, space(models.SpaceClosure))
	assign(t.Classes, space(models.SpaceClass))
	assign(t.Interfaces, space(models.SpaceInterface))
	assign(t.Conditionals, role(RoleConditional))
	assign(t.Branches, role(RoleBranch))
	assign(t.Loops, role(RoleLoop))
	assign(t.CaseArms, role(RoleCaseArm))
	assign(t.Exits, role(RoleExit))
	assign(t.Logical, role(RoleLogical))
	assign(t.Operands, role(RoleOperand))
	assign(t.Comments, role(RoleComment))
	assign(t.Statements, role(RoleStatement))

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s table (%s) names unknown kinds: %s",
			ErrGrammarMismatch, l.Tag, t.Grammar, strings.Join(missing, ", "))
	}

	l.kinds = kinds
	l.chains = makeSet(t.Chains)
	l.ignore = makeSet(append(append([]string(nil), closers...), t.Ignore...))
	return nil
}

func makeSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.TrimPrefix(item, "?")] = true
	}
	return set
}
