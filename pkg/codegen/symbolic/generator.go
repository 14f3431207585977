// Package symbolic generates target source text that performs symbolic
// execution over value summaries guarded by BDD path constraints, from a
// typed intermediate representation (pkg/ir's Sym* types).
package symbolic

import (
	"fmt"

	"github.com/glyphlang/glyph/pkg/ir"
)

// Config is the job configuration the external caller supplies alongside
// the typed IR (spec.md §6): the source filename (recorded in the
// prologue comment) and the name of the emitted class.
type Config struct {
	FileName      string
	MainClassName string

	// Diagnostics, if set, receives one DiagnosticEntry per operator-table
	// registration and per branch/loop emission decision over the course
	// of this Generate call.
	Diagnostics func(DiagnosticEntry)
}

// writeLineAt writes one line at ctx's current nesting depth. The
// statement and lvalue emitters reach it through writeLine (lvalue.go);
// Generate and the function/declaration emitters call it directly.
func (ctx *CompilationContext) writeLineAt(format string, args ...interface{}) {
	for i := 0; i < ctx.depth; i++ {
		ctx.Sink.WriteString("    ")
	}
	ctx.Sink.WriteString(fmt.Sprintf(format, args...))
	ctx.Sink.WriteString("\n")
}

// Generate is the symbolic generator's entry point (spec.md §4.I, §6): it
// walks decls in order, emitting a function definition for every
// SymDeclFunction and a skip comment for everything else, then appends the
// operator-table epilogue and closes the class. Generation aborts on the
// first error; per spec.md §7 policy, no partial artifact is returned on
// failure.
func Generate(cfg Config, decls []ir.SymDecl) (string, error) {
	ctx := NewCompilationContext(cfg.MainClassName)
	ctx.Diagnostics = cfg.Diagnostics

	ctx.writeLineAt("// Auto-generated symbolic-execution artifact from %s", cfg.FileName)
	ctx.writeLineAt("// Do not edit manually")
	ctx.writeLineAt("")
	ctx.writeLineAt("public class %s {", cfg.MainClassName)
	ctx.indent()

	for _, decl := range decls {
		if err := emitDecl(ctx, decl); err != nil {
			return "", err
		}
	}

	for _, def := range ctx.Registry.Definitions() {
		ctx.writeLineAt("%s", def)
	}

	ctx.dedent()
	ctx.writeLineAt("}")

	return ctx.Sink.String(), nil
}

// RuntimeManifest renders the runtime classpath/import comment block an
// emitted artifact depends on: the PrimVS/ListVS/MapVS/Bdd contract
// spec.md §6 assumes but never states as a standalone output, made
// explicit and testable here the way PythonGenerator.GenerateRequirements
// states its target's dependency manifest alongside the generated source.
func RuntimeManifest(cfg Config) string {
	return fmt.Sprintf(`// Runtime requirements for %s (class %s)
// - com.glyphlang.symbolic.Bdd: path-constraint handles (trueCond/falseCond/or/orMany/isConstFalse)
// - com.glyphlang.symbolic.PrimVS<Bdd, T>: guarded value summaries over Boolean/Integer/Float
// - com.glyphlang.symbolic.ListVS<Bdd, T>: guarded sequence value summaries
// - com.glyphlang.symbolic.MapVS<Bdd, K, V>: guarded map value summaries
`, cfg.FileName, cfg.MainClassName)
}

func emitDecl(ctx *CompilationContext, decl ir.SymDecl) error {
	switch decl.Kind {
	case ir.SymDeclFunction:
		return emitFunction(ctx, decl.Function)
	default:
		reason := decl.SkipReason
		if reason == "" {
			reason = "unsupported declaration"
		}
		ctx.writeLineAt("// skip: %s", reason)
		return nil
	}
}

// emitFunction implements spec.md §4.I's function emission: a static
// signature prefixed by the path-constraint parameter, locals initialised
// to their symbolic defaults, an optional return accumulator, the body
// under a fresh function control-flow context, and the closing return.
func emitFunction(ctx *CompilationContext, fn *ir.SymFunctionDecl) error {
	if fn.Owner != nil {
		return newUnsupported("function %s: non-static (member) functions are not supported", fn.Name)
	}
	if fn.Receive {
		return newUnsupported("function %s: receive-capable (asynchronous) functions are not supported", fn.Name)
	}
	if !fn.Static {
		return newUnsupported("function %s: must be static", fn.Name)
	}

	name := ctx.Mint.GetNameForDecl(fn)
	returnText, err := SymbolicOf(fn.ReturnType, false)
	if err != nil {
		return err
	}
	hasReturn := fn.ReturnType.Kind != ir.SymNull

	params := BddHandleType + " " + BddParamName
	for _, p := range fn.Params {
		pt, err := SymbolicOf(p.Type, true)
		if err != nil {
			return err
		}
		params += ", " + pt + " " + ctx.Mint.GetVar(p.Name)
	}

	ctx.writeLineAt("static %s %s(%s) {", returnText, name, params)
	ctx.indent()

	for _, local := range fn.Locals {
		localType, err := SymbolicOf(local.Type, true)
		if err != nil {
			return err
		}
		defaultExpr := ir.SymExpr{Kind: ir.SymExprDefault, Type: local.Type}
		defFlow := FlowContext{PC: &PathConstraintScope{Var: BddParamName}}
		defText, err := ExprText(ctx, defFlow, defaultExpr)
		if err != nil {
			return err
		}
		ctx.writeLineAt("%s %s = %s;", localType, ctx.Mint.GetVar(local.Name), defText)
	}

	if hasReturn {
		opsName, err := OpsFor(ctx, fn.ReturnType)
		if err != nil {
			return err
		}
		ctx.writeLineAt("%s %s = %s.empty();", returnText, ReturnAccumulatorName, opsName)
	}

	flow := FreshFuncContext(ctx)
	ctx.writeLineAt("var %s = %s;", flow.PC.Var, BddParamName)
	if err := emitCompound(ctx, flow, fn.Body, hasReturn, fn.ReturnType); err != nil {
		return err
	}

	if hasReturn {
		ctx.writeLineAt("return %s;", ReturnAccumulatorName)
	}

	ctx.dedent()
	ctx.writeLineAt("}")
	return nil
}
