package symbolic

// FlowContext is the three-field control-flow bundle threaded through
// statement emission (spec.md §3, §4.D): the currently-live path-constraint
// scope, and the optional enclosing loop and branch scopes. Unlike
// CompilationContext, a FlowContext is never mutated in place - each
// emission helper that opens a new scope constructs a new FlowContext value
// and passes it down, so sibling statements never observe a scope opened by
// a previous sibling.
type FlowContext struct {
	PC     *PathConstraintScope
	Loop   *LoopScope
	Branch *BranchScope
}

// FreshFuncContext returns a FlowContext for a function body: a fresh pc
// scope, no enclosing loop, no enclosing branch.
func FreshFuncContext(ctx *CompilationContext) FlowContext {
	return FlowContext{PC: ctx.Mint.FreshPathConstraintScope()}
}

// FreshLoopContext returns a FlowContext for entering a while-loop body: a
// fresh pc scope and a fresh loop scope; no branch (a loop body starts
// outside any branch of its own).
func FreshLoopContext(ctx *CompilationContext) FlowContext {
	return FlowContext{
		PC:   ctx.Mint.FreshPathConstraintScope(),
		Loop: ctx.Mint.FreshLoopScope(),
	}
}

// FreshBranchSubContext returns a FlowContext for entering one arm of a
// conditional: a fresh pc scope and a fresh branch scope, inheriting the
// parent's loop scope unchanged (spec.md §4.D).
func FreshBranchSubContext(ctx *CompilationContext, parent FlowContext) FlowContext {
	return FlowContext{
		PC:     ctx.Mint.FreshPathConstraintScope(),
		Loop:   parent.Loop,
		Branch: ctx.Mint.FreshBranchScope(),
	}
}
