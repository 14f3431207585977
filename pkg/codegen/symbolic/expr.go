package symbolic

import "github.com/glyphlang/glyph/pkg/ir"

// binOpSymbols is the fixed operator symbol table spec.md §4.G names for
// the lifted map2 body. Eq/Ne are absent: they are outside the Non-goals
// boundary.
var binOpSymbols = map[ir.SymBinOp]string{
	ir.SymOpAdd: "+",
	ir.SymOpSub: "-",
	ir.SymOpMul: "*",
	ir.SymOpDiv: "/",
	ir.SymOpLt:  "<",
	ir.SymOpLe:  "<=",
	ir.SymOpGt:  ">",
	ir.SymOpGe:  ">=",
	ir.SymOpAnd: "&&",
	ir.SymOpOr:  "||",
}

// ExprText renders expr as a target-level expression of its symbolic type,
// guarded by flow.PC (spec.md §4.G). It is a pure function over expr and
// flow except for its side effect of registering operator-table shapes
// with ctx.Registry as they are encountered.
func ExprText(ctx *CompilationContext, flow FlowContext, expr ir.SymExpr) (string, error) {
	switch expr.Kind {
	case ir.SymExprBoolLit:
		return literalText(ctx, flow, expr.Type, boolLit(expr.BoolLit))
	case ir.SymExprIntLit:
		return literalText(ctx, flow, expr.Type, intLit(expr.IntLit))
	case ir.SymExprFloatLit:
		return literalText(ctx, flow, expr.Type, floatLit(expr.FloatLit))
	case ir.SymExprDefault:
		return defaultText(ctx, flow, expr.Type)
	case ir.SymExprVariableAccess, ir.SymExprLinearAccessRef:
		return variableText(ctx, flow, expr)
	case ir.SymExprMapAccess:
		return accessText(ctx, flow, expr, true)
	case ir.SymExprSeqAccess:
		return accessText(ctx, flow, expr, false)
	case ir.SymExprClone:
		return ExprText(ctx, flow, expr.Clone.Inner)
	case ir.SymExprBinaryOp:
		return binaryText(ctx, flow, expr)
	default:
		return "/* skip: unsupported expression */", nil
	}
}

func literalText(ctx *CompilationContext, flow FlowContext, t ir.SymType, valueText string) (string, error) {
	ctorType, err := SymbolicOf(t, true)
	if err != nil {
		return "", err
	}
	opsName, err := OpsFor(ctx, t)
	if err != nil {
		return "", err
	}
	ctorName := "new " + stripGenericsToSimple(ctorType) + "(bdd, " + valueText + ")"
	return opsName + ".guard(" + ctorName + ", " + flow.PC.Var + ")", nil
}

// defaultText renders Default(T) per spec.md §4.G: for primitives this is
// the zero value (false/0/0.0f) guarded in literal form, not the ops
// `empty()` value summary - empty() is the merge-identity "no value on any
// path" used to seed returnAccumulator (§4.I step 2), which is a different
// thing from a zero-initialised local. Sequence/map defaults are genuinely
// empty containers, so empty() is correct there.
func defaultText(ctx *CompilationContext, flow FlowContext, t ir.SymType) (string, error) {
	switch t.Kind {
	case ir.SymBool:
		return literalText(ctx, flow, t, boolLit(false))
	case ir.SymInt:
		return literalText(ctx, flow, t, intLit(0))
	case ir.SymFloat:
		return literalText(ctx, flow, t, floatLit(0))
	case ir.SymSequence, ir.SymMap:
		opsName, err := OpsFor(ctx, t)
		if err != nil {
			return "", err
		}
		return opsName + ".guard(" + opsName + ".empty(), " + flow.PC.Var + ")", nil
	default:
		return "", newUnsupported("type %v has no default form", t)
	}
}

func variableText(ctx *CompilationContext, flow FlowContext, expr ir.SymExpr) (string, error) {
	opsName, err := OpsFor(ctx, expr.Type)
	if err != nil {
		return "", err
	}
	x := ctx.Mint.GetVar(expr.Variable)
	return opsName + ".guard(" + x + ", " + flow.PC.Var + ")", nil
}

// accessText renders MapAccess/SeqAccess: not re-guarded here because the
// container expression has already been guarded at its own emission
// (spec.md §4.G).
func accessText(ctx *CompilationContext, flow FlowContext, expr ir.SymExpr, isMap bool) (string, error) {
	access := expr.Access
	containerType := containerTypeOf(access.Container.Type, expr.Type, isMap)
	opsName, err := OpsFor(ctx, containerType)
	if err != nil {
		return "", err
	}
	containerText, err := ExprText(ctx, flow, access.Container)
	if err != nil {
		return "", err
	}
	indexText, err := ExprText(ctx, flow, access.Index)
	if err != nil {
		return "", err
	}
	return "unwrapOrThrow(" + opsName + ".get(" + containerText + ", " + indexText + "))", nil
}

func binaryText(ctx *CompilationContext, flow FlowContext, expr ir.SymExpr) (string, error) {
	bin := expr.Binary
	sym, ok := binOpSymbols[bin.Op]
	if !ok {
		return "", newUnsupported("binary operator %v is not supported (Eq/Ne are out of scope)", bin.Op)
	}
	if !isPrimitiveKind(bin.Lhs.Type.Kind) || !isPrimitiveKind(bin.Rhs.Type.Kind) {
		return "", newUnsupported("binary operands must both be primitive types")
	}
	lhsText, err := ExprText(ctx, flow, bin.Lhs)
	if err != nil {
		return "", err
	}
	rhsText, err := ExprText(ctx, flow, bin.Rhs)
	if err != nil {
		return "", err
	}
	return "(" + lhsText + ").map2(" + rhsText + ", bdd, (a, b) -> a " + sym + " b)", nil
}

func isPrimitiveKind(k ir.SymTypeKind) bool {
	return k == ir.SymBool || k == ir.SymInt || k == ir.SymFloat
}

func boolLit(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func intLit(v int64) string {
	return intToString(v)
}

func floatLit(v float64) string {
	return floatToString(v) + "f"
}
