package symbolic

import "github.com/glyphlang/glyph/pkg/ir"

func boolType() ir.SymType  { return ir.SymType{Kind: ir.SymBool} }
func intType() ir.SymType   { return ir.SymType{Kind: ir.SymInt} }
func floatType() ir.SymType { return ir.SymType{Kind: ir.SymFloat} }
func nullType() ir.SymType  { return ir.SymType{Kind: ir.SymNull} }

func intSeqType() ir.SymType {
	e := intType()
	return ir.SymType{Kind: ir.SymSequence, Sequence: &ir.SymSequenceType{Element: e}}
}

func intToIntMapType() ir.SymType {
	k, v := intType(), intType()
	return ir.SymType{Kind: ir.SymMap, Map: &ir.SymMapType{Key: k, Value: v}}
}

func intLitExpr(v int64) ir.SymExpr {
	return ir.SymExpr{Kind: ir.SymExprIntLit, Type: intType(), IntLit: v}
}

func boolLitExpr(v bool) ir.SymExpr {
	return ir.SymExpr{Kind: ir.SymExprBoolLit, Type: boolType(), BoolLit: v}
}

func varExpr(name string, t ir.SymType) ir.SymExpr {
	return ir.SymExpr{Kind: ir.SymExprVariableAccess, Type: t, Variable: name}
}

func returnStmt(e ir.SymExpr) ir.SymStmt {
	return ir.SymStmt{Kind: ir.SymStmtReturn, Return: &ir.SymReturnStmt{Value: &e}}
}

func bareReturnStmt() ir.SymStmt {
	return ir.SymStmt{Kind: ir.SymStmtReturn, Return: &ir.SymReturnStmt{}}
}

func breakStmt() ir.SymStmt {
	return ir.SymStmt{Kind: ir.SymStmtBreak}
}

func compoundStmt(body ...ir.SymStmt) ir.SymStmt {
	return ir.SymStmt{Kind: ir.SymStmtCompound, Compound: &ir.SymCompoundStmt{Body: body}}
}

func ifStmt(cond ir.SymExpr, then, els []ir.SymStmt) ir.SymStmt {
	return ir.SymStmt{Kind: ir.SymStmtIf, If: &ir.SymIfStmt{Condition: cond, Then: then, Else: els}}
}

func nonEscapingStmt() ir.SymStmt {
	return ir.SymStmt{Kind: ir.SymStmtFunctionCall, FunctionCall: &ir.SymCallExpr{Callee: "noop", Static: true}}
}

func whileTrueStmt(body ...ir.SymStmt) ir.SymStmt {
	return ir.SymStmt{Kind: ir.SymStmtWhile, While: &ir.SymWhileStmt{Condition: boolLitExpr(true), Body: body}}
}

func freshFlow(ctx *CompilationContext) FlowContext {
	return FreshFuncContext(ctx)
}
