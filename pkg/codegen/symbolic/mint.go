package symbolic

import (
	"fmt"
	"strings"

	"github.com/glyphlang/glyph/pkg/ir"
)

// Fixed symbol constants referenced by every emitted function (spec.md
// §4.A "fixed symbols exposed").
const (
	// BddParamName is the name of the leading path-constraint parameter
	// every emitted function receives.
	BddParamName = "pc"
	// BddHandleType is the target-level type of the BDD library handle.
	BddHandleType = "Bdd"
	// BddHandleName is the name of the ambient BDD handle every operator
	// table is constructed against. Unlike BddParamName (a per-function
	// parameter), this name is valid wherever an operator-table constant's
	// initializer runs, including class-level static field initializers.
	BddHandleName = "bdd"
	// ReturnAccumulatorName is the local that accumulates a function's
	// merged return value.
	ReturnAccumulatorName = "returnAccumulator"
)

// NameMint hands out fresh, collision-free identifiers within one
// compilation job. Counters are process-wide to that job only (spec.md §5)
// and must never be reused across independent jobs - Generate constructs a
// fresh NameMint per call.
type NameMint struct {
	tempCounter  int
	declCounter  int
	declNames    map[*ir.SymFunctionDecl]string
	usedVarNames map[string]string
}

// NewNameMint constructs an empty name mint for one compilation job.
func NewNameMint() *NameMint {
	return &NameMint{
		declNames:    make(map[*ir.SymFunctionDecl]string),
		usedVarNames: make(map[string]string),
	}
}

// FreshTempVar returns a unique identifier valid as a target-level local.
func (m *NameMint) FreshTempVar() string {
	m.tempCounter++
	return fmt.Sprintf("_t%d", m.tempCounter)
}

// PathConstraintScope holds the name of a target-level BDD-valued variable
// representing the path constraint live at one nesting depth. Its lifetime
// equals the emission of the one block whose predicate is fixed to this
// name (spec.md §3).
type PathConstraintScope struct {
	Var string
}

// FreshPathConstraintScope returns a PathConstraintScope bound to a fresh
// BDD-valued name. Child scopes shadow parents with fresh names; nothing
// about the parent scope is referenced here, since by invariant 3 (spec.md
// §3) only one pc is ever live at a point in the emitted body.
func (m *NameMint) FreshPathConstraintScope() *PathConstraintScope {
	m.tempCounter++
	return &PathConstraintScope{Var: fmt.Sprintf("_pc%d", m.tempCounter)}
}

// LoopScope holds the two target-level identifiers a while-loop emission
// threads through its body (spec.md §3): the accumulated break predicates
// (LoopExitsList) and the early-return propagation flag
// (LoopEarlyReturnFlag).
type LoopScope struct {
	LoopExitsList       string
	LoopEarlyReturnFlag string
}

// FreshLoopScope mints a new loop scope's identifiers.
func (m *NameMint) FreshLoopScope() *LoopScope {
	m.tempCounter++
	n := m.tempCounter
	return &LoopScope{
		LoopExitsList:       fmt.Sprintf("_loopExits%d", n),
		LoopEarlyReturnFlag: fmt.Sprintf("_loopEarlyReturn%d", n),
	}
}

// BranchScope holds the single target-level Boolean flag (spec.md §3) set
// by any control-flow-escaping sub-statement executed within one arm of a
// conditional.
type BranchScope struct {
	JumpedOutFlag string
}

// FreshBranchScope mints a new branch scope's flag identifier.
func (m *NameMint) FreshBranchScope() *BranchScope {
	m.tempCounter++
	return &BranchScope{JumpedOutFlag: fmt.Sprintf("_jumpedOut%d", m.tempCounter)}
}

// GetNameForDecl returns a stable, collision-free identifier for decl,
// minting one on first request and reusing it on every subsequent request
// for the same pointer (spec.md §4.A).
func (m *NameMint) GetNameForDecl(decl *ir.SymFunctionDecl) string {
	if name, ok := m.declNames[decl]; ok {
		return name
	}
	name := sanitizeIdent(decl.Name)
	if _, taken := m.usedVarNames[name]; taken {
		m.declCounter++
		name = fmt.Sprintf("%s_%d", name, m.declCounter)
	}
	m.usedVarNames[name] = name
	m.declNames[decl] = name
	return name
}

// GetVar deterministically mangles a source variable name into an
// emittable target identifier. It is a pure function of name (spec.md
// §4.A): repeated calls with the same source name always produce the same
// result, independent of call order.
func (m *NameMint) GetVar(name string) string {
	return sanitizeIdent(name)
}

// sanitizeIdent rewrites name into a valid target-level identifier,
// replacing every character outside [A-Za-z0-9_] with an underscore and
// prefixing a leading digit.
func sanitizeIdent(name string) string {
	if name == "" {
		return "_"
	}
	var sb strings.Builder
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// CompilationContext is the job-wide mutable state threaded through every
// component while a single compilation unit is emitted: the name mint, the
// operator-table registry, the configured class name, and the character
// sink. It is never shared across independent compilation jobs (spec.md
// §5); Generate constructs exactly one per call.
type CompilationContext struct {
	Mint      *NameMint
	Registry  *OperatorTableRegistry
	Sink      *strings.Builder
	ClassName string

	// Diagnostics, if set, receives one DiagnosticEntry per operator-table
	// registration and per branch/loop emission decision (spec.md §8
	// properties 1-6), for callers that want to assert on generation
	// structure without parsing the emitted text back out.
	Diagnostics func(DiagnosticEntry)

	depth int
}

// NewCompilationContext constructs a fresh, empty CompilationContext for
// one compilation job.
func NewCompilationContext(className string) *CompilationContext {
	return &CompilationContext{
		Mint:      NewNameMint(),
		Registry:  NewOperatorTableRegistry(),
		Sink:      &strings.Builder{},
		ClassName: className,
	}
}

func (ctx *CompilationContext) indent() { ctx.depth++ }
func (ctx *CompilationContext) dedent() {
	if ctx.depth > 0 {
		ctx.depth--
	}
}
