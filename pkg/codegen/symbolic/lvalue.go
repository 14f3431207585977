package symbolic

import "github.com/glyphlang/glyph/pkg/ir"

// emitMutation lowers lvalue per spec.md §4.F: materialise a guarded
// snapshot of the destination under flow.PC, invoke mutate with the
// temporary holding it, and write the result back via a merge with the
// complement predicate. needOriginal is honoured by the MapAccess/SeqAccess
// cases: when true the element temp is initialised from the container's
// current value via get, when false it is declared uninitialised. The
// VariableAccess case ignores it and always guards the variable's current
// value into its temp.
func emitMutation(ctx *CompilationContext, flow FlowContext, lvalue ir.SymExpr, needOriginal bool, mutate func(temp string)) error {
	switch lvalue.Kind {
	case ir.SymExprVariableAccess:
		return emitVariableMutation(ctx, flow, lvalue, mutate)
	case ir.SymExprMapAccess:
		return emitContainerMutation(ctx, flow, lvalue, needOriginal, mutate, true)
	case ir.SymExprSeqAccess:
		return emitContainerMutation(ctx, flow, lvalue, needOriginal, mutate, false)
	default:
		return newInvalidLvalue("expression kind %v cannot be an lvalue", lvalue.Kind)
	}
}

// emitVariableMutation implements the VariableAccess(x of type T) case:
// guard x's current value under pc into a fresh temp, hand it to mutate,
// then write back the merge of the temp against the complement pc with x's
// untouched complement-side value (spec.md §4.F).
func emitVariableMutation(ctx *CompilationContext, flow FlowContext, lvalue ir.SymExpr, mutate func(temp string)) error {
	x := ctx.Mint.GetVar(lvalue.Variable)
	opsName, err := OpsFor(ctx, lvalue.Type)
	if err != nil {
		return err
	}
	g := ctx.Mint.FreshTempVar()
	writeLine(ctx, "var %s = %s.guard(%s, %s);", g, opsName, x, flow.PC.Var)
	mutate(g)
	writeLine(ctx, "%s = %s.merge2(%s.guard(%s, bdd.not(%s)), %s);", x, opsName, opsName, x, flow.PC.Var, g)
	return nil
}

// emitContainerMutation implements the shared MapAccess/SeqAccess shape:
// evaluate the index into a temp, recursively open a mutation context on
// the container with needOriginal = true, optionally unwrap the current
// element value, hand it to mutate, then close by writing the mutated
// element back through put (maps, total) or set (sequences, partial,
// wrapped in unwrapOrThrow) (spec.md §4.F).
func emitContainerMutation(ctx *CompilationContext, flow FlowContext, lvalue ir.SymExpr, needOriginal bool, mutate func(temp string), isMap bool) error {
	access := lvalue.Access
	elemType := lvalue.Type
	containerOpsName, err := OpsFor(ctx, containerTypeOf(access.Container.Type, elemType, isMap))
	if err != nil {
		return err
	}

	idx := ctx.Mint.FreshTempVar()
	idxText, err := ExprText(ctx, flow, access.Index)
	if err != nil {
		return err
	}
	writeLine(ctx, "var %s = %s;", idx, idxText)

	val := ctx.Mint.FreshTempVar()
	return emitMutation(ctx, flow, access.Container, true, func(containerTemp string) {
		if needOriginal {
			writeLine(ctx, "var %s = unwrapOrThrow(%s.get(%s, %s));", val, containerOpsName, containerTemp, idx)
		} else {
			writeLine(ctx, "%s %s;", symbolicTypeTextOrComment(elemType), val)
		}
		mutate(val)
		if isMap {
			writeLine(ctx, "%s = %s.put(%s, %s, %s);", containerTemp, containerOpsName, containerTemp, idx, val)
		} else {
			writeLine(ctx, "%s = unwrapOrThrow(%s.set(%s, %s, %s));", containerTemp, containerOpsName, containerTemp, idx, val)
		}
	})
}

// containerTypeOf reconstructs the container's own SymType (map or
// sequence of elemType) from the container expression's declared type,
// falling back to synthesising one from elemType if the container's
// recorded type is absent (defensive only; every well-formed IR populates
// Container.Type).
func containerTypeOf(declared ir.SymType, elemType ir.SymType, isMap bool) ir.SymType {
	if isMap && declared.Kind == ir.SymMap {
		return declared
	}
	if !isMap && declared.Kind == ir.SymSequence {
		return declared
	}
	if isMap {
		return ir.SymType{Kind: ir.SymMap, Map: &ir.SymMapType{Key: ir.SymType{Kind: ir.SymInt}, Value: elemType}}
	}
	return ir.SymType{Kind: ir.SymSequence, Sequence: &ir.SymSequenceType{Element: elemType}}
}

func symbolicTypeTextOrComment(t ir.SymType) string {
	text, err := SymbolicOf(t, true)
	if err != nil {
		return "/* unsupported */ Object"
	}
	return text
}

func writeLine(ctx *CompilationContext, format string, args ...interface{}) {
	ctx.writeLineAt(format, args...)
}
