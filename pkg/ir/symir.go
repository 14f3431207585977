package ir

import "fmt"

// SymType is the closed, canonical type variant consumed by the symbolic
// code generator (pkg/codegen/symbolic). Unlike TypeRef - which the
// Python/TypeScript backends walk dynamically and which can carry any of
// the dynamically-typed target's shapes - every SymType reaching the
// generator has already been canonicalized: there is exactly one way to
// spell "a sequence of int" and no unresolved TypeNamed/TypeUnion/TypeAny
// survives CanonicalizeType.
type SymType struct {
	Kind     SymTypeKind
	Sequence *SymSequenceType
	Map      *SymMapType
}

// SymTypeKind classifies the shape of a canonical symbolic type.
type SymTypeKind int

const (
	SymBool SymTypeKind = iota
	SymInt
	SymFloat
	SymNull
	SymSequence
	SymMap
)

// SymSequenceType describes a sequence (list) type.
type SymSequenceType struct {
	Element SymType
}

// SymMapType describes a map type.
type SymMapType struct {
	Key   SymType
	Value SymType
}

// String renders the canonical type's kind name, for diagnostics only -
// it is not what the type lifter emits (see symbolic.TypeLifter).
func (t SymType) String() string {
	switch t.Kind {
	case SymBool:
		return "bool"
	case SymInt:
		return "int"
	case SymFloat:
		return "float"
	case SymNull:
		return "null"
	case SymSequence:
		return fmt.Sprintf("seq<%s>", t.Sequence.Element)
	case SymMap:
		return fmt.Sprintf("map<%s,%s>", t.Map.Key, t.Map.Value)
	default:
		return "unknown"
	}
}

// CanonicalizeType bridges the module's existing dynamic TypeRef vocabulary
// (used by the Python/TypeScript backends) into the closed SymType shape
// the symbolic generator requires. Every TypeRef reaching the generator
// must canonicalize; named tuples, positional tuples, generics, functions,
// futures, unions, and TypeAny are all rejected, matching spec.md's
// Non-goals and Invariant 1 ("every type reaching the emitter is
// canonicalized").
func CanonicalizeType(t TypeRef) (SymType, error) {
	switch t.Kind {
	case TypeBool:
		return SymType{Kind: SymBool}, nil
	case TypeInt:
		return SymType{Kind: SymInt}, nil
	case TypeFloat:
		return SymType{Kind: SymFloat}, nil
	case TypeArray:
		if t.Inner == nil {
			return SymType{}, fmt.Errorf("%w: sequence type missing element", ErrUnsupportedType)
		}
		elem, err := CanonicalizeType(*t.Inner)
		if err != nil {
			return SymType{}, err
		}
		return SymType{Kind: SymSequence, Sequence: &SymSequenceType{Element: elem}}, nil
	default:
		return SymType{}, fmt.Errorf("%w: %v", ErrUnsupportedType, t.Kind)
	}
}

// CanonicalizeMapType canonicalizes a map type from its boxed key type and
// value TypeRef; TypeRef has no native Map variant (the dynamic backends
// never needed one), so callers building symbolic IR construct SymMapType
// directly via this helper instead of threading a synthetic TypeRef kind
// through the dynamic type vocabulary.
func CanonicalizeMapType(key TypeRef, value TypeRef) (SymType, error) {
	k, err := CanonicalizeType(key)
	if err != nil {
		return SymType{}, err
	}
	if k.Kind != SymInt && k.Kind != SymBool {
		return SymType{}, fmt.Errorf("%w: map key must be a boxable primitive", ErrUnsupportedType)
	}
	v, err := CanonicalizeType(value)
	if err != nil {
		return SymType{}, err
	}
	return SymType{Kind: SymMap, Map: &SymMapType{Key: k, Value: v}}, nil
}

// ErrUnsupportedType is returned by CanonicalizeType for any shape the
// symbolic generator's core does not (yet) handle.
var ErrUnsupportedType = fmt.Errorf("unsupported type for symbolic generation")

// SymDeclKind classifies a top-level symbolic declaration.
type SymDeclKind int

const (
	SymDeclFunction SymDeclKind = iota
	SymDeclOther
)

// SymDecl is a top-level declaration reaching the symbolic generator. Only
// SymDeclFunction is ever fully emitted; every other kind carries a
// SkipReason and is rendered as a skip comment (spec.md §3 Invariant 2 /
// §4.I).
type SymDecl struct {
	Kind       SymDeclKind
	Function   *SymFunctionDecl
	SkipReason string
}

// SymFunctionDecl is the only Declaration variant the symbolic core fully
// handles. Owner must be nil (static) and Receive must be false; violating
// either triggers UnsupportedConstruct at emission time (spec.md §3
// Invariant 2, §7).
type SymFunctionDecl struct {
	Owner      *string
	Receive    bool
	Static     bool
	Name       string
	Params     []SymParam
	Locals     []SymLocal
	ReturnType SymType
	Body       []SymStmt
}

// SymParam is a function parameter: name plus canonical type.
type SymParam struct {
	Name string
	Type SymType
}

// SymLocal is a function-local variable declaration: name plus canonical
// type. Every local is initialized to its symbolic-guarded default at
// function entry (spec.md §4.I step 1).
type SymLocal struct {
	Name string
	Type SymType
}

// SymStmtKind classifies a statement reaching the symbolic statement
// emitter (spec.md §3, §4.H).
type SymStmtKind int

const (
	SymStmtAssign SymStmtKind = iota
	SymStmtMoveAssign
	SymStmtReturn
	SymStmtBreak
	SymStmtContinue
	SymStmtGoto
	SymStmtPop
	SymStmtRaise
	SymStmtCompound
	SymStmtWhile
	SymStmtIf
	SymStmtFunctionCall
)

// SymStmt is a statement in the typed IR consumed by the symbolic
// generator. Exactly one of the pointer fields is populated per Kind;
// Break/Continue/Pop carry no payload.
type SymStmt struct {
	Kind         SymStmtKind
	Assign       *SymAssignStmt
	MoveAssign   *SymAssignStmt
	Return       *SymReturnStmt
	Goto         *SymGotoStmt
	Raise        *SymRaiseStmt
	Compound     *SymCompoundStmt
	While        *SymWhileStmt
	If           *SymIfStmt
	FunctionCall *SymCallExpr
}

// SymAssignStmt covers both Assign and MoveAssign (spec.md §4.H: both
// require strict type equality between Lvalue and Value, enforced at
// emission, not here - the IR itself does not duplicate that check).
type SymAssignStmt struct {
	Lvalue SymExpr
	Value  SymExpr
}

// SymReturnStmt carries the returned value, or nil for a bare return from
// a Null-returning function.
type SymReturnStmt struct {
	Value *SymExpr
}

// SymGotoStmt names the target label. Goto is always a leaf under the
// flow-analysis predicates (spec.md §4.E): Can/MustEarlyReturn and
// Can/MustJumpOut all hold.
type SymGotoStmt struct {
	Label string
}

// SymRaiseStmt carries the raised value.
type SymRaiseStmt struct {
	Value SymExpr
}

// SymCompoundStmt is a sequence of statements emitted in order, subject to
// the early-exit short-circuiting of spec.md §4.H.
type SymCompoundStmt struct {
	Body []SymStmt
}

// SymWhileStmt models a `while (true) { body }` loop. The generator
// rejects any condition that is not the literal `true` (spec.md §9's
// corrected semantics - see pkg/codegen/symbolic/stmt.go).
type SymWhileStmt struct {
	Condition SymExpr
	Body      []SymStmt
}

// SymIfStmt models a two-armed conditional; Else may be empty.
type SymIfStmt struct {
	Condition SymExpr
	Then      []SymStmt
	Else      []SymStmt
}

// SymExprKind classifies an expression reaching the symbolic expression
// emitter (spec.md §3, §4.G).
type SymExprKind int

const (
	SymExprClone SymExprKind = iota
	SymExprBinaryOp
	SymExprBoolLit
	SymExprIntLit
	SymExprFloatLit
	SymExprDefault
	SymExprMapAccess
	SymExprSeqAccess
	SymExprVariableAccess
	SymExprLinearAccessRef
)

// SymExpr is an expression in the typed IR. Every SymExpr carries its own
// canonicalized Type: the spec's target runtime is statically typed (one
// concrete ops(T) table per type shape, shared via the operator-table
// registry), so the generator must be able to decide which ops(T) to
// dispatch to purely from the IR, without inferring it the way the
// dynamically-typed Python/TypeScript backends do from FieldSchema lookups
// at generation time.
type SymExpr struct {
	Kind     SymExprKind
	Type     SymType
	Clone    *SymCloneExpr
	Binary   *SymBinaryExpr
	BoolLit  bool
	IntLit   int64
	FloatLit float64
	Access   *SymAccessExpr
	Variable string
}

// SymCloneExpr wraps an inner expression with pass-through ("clone is a
// no-op at this level", spec.md §4.G) semantics.
type SymCloneExpr struct {
	Inner SymExpr
}

// SymBinOp identifies a binary operator available to the symbolic
// expression emitter. Eq/Ne are deliberately absent: spec.md §4.G and §7
// place equality/inequality in the Non-goals list.
type SymBinOp int

const (
	SymOpAdd SymBinOp = iota
	SymOpSub
	SymOpMul
	SymOpDiv
	SymOpLt
	SymOpLe
	SymOpGt
	SymOpGe
	SymOpAnd
	SymOpOr
)

// SymBinaryExpr is a binary operation over two primitive operands.
type SymBinaryExpr struct {
	Op  SymBinOp
	Lhs SymExpr
	Rhs SymExpr
}

// SymAccessExpr covers MapAccess and SeqAccess: a container expression
// indexed by another expression. Which one applies is determined by the
// owning SymExpr.Kind (SymExprMapAccess vs SymExprSeqAccess).
type SymAccessExpr struct {
	Container SymExpr
	Index     SymExpr
}

// SymCallExpr is a call to a static, non-receive-capable function: the
// path constraint is the implicit first argument at emission time
// (spec.md §4.H FunctionCall).
type SymCallExpr struct {
	Callee  string
	Receive bool
	Static  bool
	Args    []SymExpr
}

// JobConfig is the generation-job-level configuration a compilation job
// carries alongside its IR: the target file/class name pair the symbolic
// generator needs, plus the subset a caller may want to override per job.
type JobConfig struct {
	FileName      string `yaml:"fileName"`
	MainClassName string `yaml:"mainClassName"`
}
