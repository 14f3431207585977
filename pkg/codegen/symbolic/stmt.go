package symbolic

import "github.com/glyphlang/glyph/pkg/ir"

// emitStmt lowers one IR statement into target code under flow, following
// the path-constraint protocol of spec.md §4.H. hasReturn/returnType
// describe the enclosing function's return accumulator, needed by Return.
func emitStmt(ctx *CompilationContext, flow FlowContext, stmt ir.SymStmt, hasReturn bool, returnType ir.SymType) error {
	switch stmt.Kind {
	case ir.SymStmtAssign:
		return emitAssign(ctx, flow, stmt.Assign)
	case ir.SymStmtMoveAssign:
		return emitAssign(ctx, flow, stmt.MoveAssign)
	case ir.SymStmtReturn:
		return emitReturn(ctx, flow, stmt.Return, hasReturn, returnType)
	case ir.SymStmtBreak:
		return emitBreak(ctx, flow)
	case ir.SymStmtContinue:
		writeLine(ctx, "%s = bdd.constFalse();", flow.PC.Var)
		return nil
	case ir.SymStmtCompound:
		return emitCompound(ctx, flow, stmt.Compound.Body, hasReturn, returnType)
	case ir.SymStmtWhile:
		return emitWhile(ctx, flow, stmt.While, hasReturn, returnType)
	case ir.SymStmtIf:
		return emitIf(ctx, flow, stmt.If, hasReturn, returnType)
	case ir.SymStmtFunctionCall:
		return emitCallStmt(ctx, flow, stmt.FunctionCall)
	case ir.SymStmtGoto:
		writeLine(ctx, "// skip: goto %s not supported by the symbolic core", stmt.Goto.Label)
		return nil
	case ir.SymStmtRaise:
		writeLine(ctx, "// skip: raise not supported by the symbolic core")
		return nil
	case ir.SymStmtPop:
		writeLine(ctx, "// skip: pop not supported by the symbolic core")
		return nil
	default:
		writeLine(ctx, "// skip: unsupported statement")
		return nil
	}
}

// emitAssign handles both Assign and MoveAssign (spec.md §4.H): strict type
// equality is required between source and destination, then the lvalue is
// overwritten (needOriginalValue = false) with the evaluated right-hand
// side.
func emitAssign(ctx *CompilationContext, flow FlowContext, assign *ir.SymAssignStmt) error {
	if !sameType(assign.Lvalue.Type, assign.Value.Type) {
		return newUnsupported("assignment requires strict type equality, got %v := %v", assign.Lvalue.Type, assign.Value.Type)
	}
	valueText, err := ExprText(ctx, flow, assign.Value)
	if err != nil {
		return err
	}
	return emitMutation(ctx, flow, assign.Lvalue, false, func(temp string) {
		writeLine(ctx, "%s = %s;", temp, valueText)
	})
}

// emitReturn merges the returned value into the function's accumulator,
// kills the current pc, and propagates the early-return/jumped-out flags
// of any enclosing loop/branch (spec.md §4.H).
func emitReturn(ctx *CompilationContext, flow FlowContext, ret *ir.SymReturnStmt, hasReturn bool, returnType ir.SymType) error {
	if ret.Value != nil && hasReturn {
		opsName, err := OpsFor(ctx, returnType)
		if err != nil {
			return err
		}
		valueText, err := ExprText(ctx, flow, *ret.Value)
		if err != nil {
			return err
		}
		writeLine(ctx, "%s = %s.merge2(%s, %s);", ReturnAccumulatorName, opsName, ReturnAccumulatorName, valueText)
	}
	writeLine(ctx, "%s = bdd.constFalse();", flow.PC.Var)
	if flow.Loop != nil {
		writeLine(ctx, "%s = true;", flow.Loop.LoopEarlyReturnFlag)
	}
	if flow.Branch != nil {
		writeLine(ctx, "%s = true;", flow.Branch.JumpedOutFlag)
	}
	return nil
}

// emitBreak requires an enclosing loop scope, records the current pc as a
// break-out predicate, propagates JumpedOutFlag if inside a branch, and
// kills the pc (spec.md §4.H).
func emitBreak(ctx *CompilationContext, flow FlowContext) error {
	if flow.Loop == nil {
		return newUnsupported("break statement outside any loop scope")
	}
	writeLine(ctx, "%s.add(%s);", flow.Loop.LoopExitsList, flow.PC.Var)
	if flow.Branch != nil {
		writeLine(ctx, "%s = true;", flow.Branch.JumpedOutFlag)
	}
	writeLine(ctx, "%s = bdd.constFalse();", flow.PC.Var)
	return nil
}

// emitCompound walks children in order (spec.md §4.H): after any child
// whose MustJumpOut holds, emission stops (the source statements that
// follow are unreachable and are never emitted). After a child whose
// CanJumpOut holds but MustJumpOut does not, the remaining statements are
// nested inside an `if (!bdd.isConstFalse(pc))` guard so that they are
// skipped at runtime on any path the child actually escaped.
func emitCompound(ctx *CompilationContext, flow FlowContext, body []ir.SymStmt, hasReturn bool, returnType ir.SymType) error {
	openGuards := 0
	for _, child := range body {
		if err := emitStmt(ctx, flow, child, hasReturn, returnType); err != nil {
			return err
		}
		if MustJumpOut(child) {
			break
		}
		if CanJumpOut(child) {
			writeLine(ctx, "if (!bdd.isConstFalse(%s)) {", flow.PC.Var)
			ctx.indent()
			openGuards++
		}
	}
	for i := 0; i < openGuards; i++ {
		ctx.dedent()
		writeLine(ctx, "}")
	}
	return nil
}

// emitWhile implements the corrected While(true) guard semantics spec.md
// §9 sanctions: the condition must be the literal true; anything else is
// rejected rather than accepted (the source's inverted check is not
// reproduced).
func emitWhile(ctx *CompilationContext, flow FlowContext, while *ir.SymWhileStmt, hasReturn bool, returnType ir.SymType) error {
	if while.Condition.Kind != ir.SymExprBoolLit || !while.Condition.BoolLit {
		return newUnsupported("while condition must be the literal true")
	}

	loopFlow := FreshLoopContext(ctx)
	loopFlow.Branch = flow.Branch

	writeLine(ctx, "var %s = new java.util.ArrayList<Bdd>();", loopFlow.Loop.LoopExitsList)
	writeLine(ctx, "var %s = false;", loopFlow.Loop.LoopEarlyReturnFlag)
	writeLine(ctx, "var %s = %s;", loopFlow.PC.Var, flow.PC.Var)

	ctx.emitDiagnostic(DiagLoop, loopFlow.PC.Var)
	writeLine(ctx, "while (!bdd.isConstFalse(%s)) {", loopFlow.PC.Var)
	ctx.indent()
	if err := emitCompound(ctx, loopFlow, while.Body, hasReturn, returnType); err != nil {
		return err
	}
	ctx.dedent()
	writeLine(ctx, "}")

	writeLine(ctx, "if (%s) {", loopFlow.Loop.LoopEarlyReturnFlag)
	ctx.indent()
	writeLine(ctx, "%s = bdd.orMany(%s);", flow.PC.Var, loopFlow.Loop.LoopExitsList)
	if flow.Branch != nil {
		writeLine(ctx, "%s = true;", flow.Branch.JumpedOutFlag)
	}
	ctx.dedent()
	writeLine(ctx, "} else {")
	ctx.indent()
	writeLine(ctx, "%s = bdd.orMany(%s);", flow.PC.Var, loopFlow.Loop.LoopExitsList)
	ctx.dedent()
	writeLine(ctx, "}")
	return nil
}

// emitIf implements spec.md §4.H: the condition is evaluated into a
// PrimVS<Bdd, Boolean> temp, two fresh branch sub-contexts are created with
// pc values extracted by trueCond/falseCond, each arm is emitted guarded by
// its own isConstFalse check, and afterward the parent pc is always
// recombined as the OR of both arms' surviving pcs.
func emitIf(ctx *CompilationContext, flow FlowContext, ifStmt *ir.SymIfStmt, hasReturn bool, returnType ir.SymType) error {
	if ifStmt.Condition.Type.Kind != ir.SymBool {
		return newUnsupported("if condition must be Boolean")
	}
	condText, err := ExprText(ctx, flow, ifStmt.Condition)
	if err != nil {
		return err
	}
	condTemp := ctx.Mint.FreshTempVar()
	writeLine(ctx, "var %s = %s;", condTemp, condText)
	ctx.emitDiagnostic(DiagBranch, condTemp)

	thenFlow := FreshBranchSubContext(ctx, flow)
	elseFlow := FreshBranchSubContext(ctx, flow)
	writeLine(ctx, "var %s = trueCond(%s);", thenFlow.PC.Var, condTemp)
	writeLine(ctx, "var %s = falseCond(%s);", elseFlow.PC.Var, condTemp)

	writeLine(ctx, "if (!bdd.isConstFalse(%s)) {", thenFlow.PC.Var)
	ctx.indent()
	if err := emitCompound(ctx, thenFlow, ifStmt.Then, hasReturn, returnType); err != nil {
		return err
	}
	ctx.dedent()
	writeLine(ctx, "}")

	writeLine(ctx, "if (!bdd.isConstFalse(%s)) {", elseFlow.PC.Var)
	ctx.indent()
	if err := emitCompound(ctx, elseFlow, ifStmt.Else, hasReturn, returnType); err != nil {
		return err
	}
	ctx.dedent()
	writeLine(ctx, "}")

	writeLine(ctx, "%s = bdd.or(%s, %s);", flow.PC.Var, thenFlow.PC.Var, elseFlow.PC.Var)
	if flow.Branch != nil {
		writeLine(ctx, "if (%s || %s) { %s = true; }", thenFlow.Branch.JumpedOutFlag, elseFlow.Branch.JumpedOutFlag, flow.Branch.JumpedOutFlag)
	}
	return nil
}

// emitCallStmt emits a statement-position call to a static, non-receive
// callee with the path constraint as its implicit first argument
// (spec.md §4.H).
func emitCallStmt(ctx *CompilationContext, flow FlowContext, call *ir.SymCallExpr) error {
	text, err := callText(ctx, flow, call)
	if err != nil {
		return err
	}
	writeLine(ctx, "%s;", text)
	return nil
}

func callText(ctx *CompilationContext, flow FlowContext, call *ir.SymCallExpr) (string, error) {
	if call.Receive || !call.Static {
		return "", newUnsupported("call to %s requires a static, non-receive-capable callee", call.Callee)
	}
	args := flow.PC.Var
	for _, a := range call.Args {
		argText, err := ExprText(ctx, flow, a)
		if err != nil {
			return "", err
		}
		args += ", " + argText
	}
	return call.Callee + "(" + args + ")", nil
}

func sameType(a, b ir.SymType) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ir.SymSequence:
		return sameType(a.Sequence.Element, b.Sequence.Element)
	case ir.SymMap:
		return sameType(a.Map.Key, b.Map.Key) && sameType(a.Map.Value, b.Map.Value)
	default:
		return true
	}
}
