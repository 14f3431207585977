package symbolic

import (
	"github.com/glyphlang/glyph/pkg/ir"
)

// SymbolicOf renders t's target-level symbolic-value-summary type text
// (spec.md §4.B). inVarPosition controls whether Null is permitted:
// Null is never a valid type for a variable, parameter, local, or
// returned value, so any request with inVarPosition true fails with
// Unsupported.
func SymbolicOf(t ir.SymType, inVarPosition bool) (string, error) {
	switch t.Kind {
	case ir.SymBool:
		return "PrimVS<Bdd, Boolean>", nil
	case ir.SymInt:
		return "PrimVS<Bdd, Integer>", nil
	case ir.SymFloat:
		return "PrimVS<Bdd, Float>", nil
	case ir.SymNull:
		if inVarPosition {
			return "", newUnsupported("Null is not permitted in variable position")
		}
		return "void", nil
	case ir.SymSequence:
		elem, err := SymbolicOf(t.Sequence.Element, true)
		if err != nil {
			return "", err
		}
		return "ListVS<Bdd, " + elem + ">", nil
	case ir.SymMap:
		key, err := ConcreteBoxedOf(t.Map.Key)
		if err != nil {
			return "", err
		}
		value, err := SymbolicOf(t.Map.Value, true)
		if err != nil {
			return "", err
		}
		return "MapVS<Bdd, " + key + ", " + value + ">", nil
	default:
		return "", newUnsupported("type outside the canonical set: %v", t)
	}
}

// ConcreteBoxedOf renders t's boxed-concrete target type text, used for map
// keys (spec.md §4.B). Only the boxable primitives have a defined boxed
// form; anything else is Unsupported.
func ConcreteBoxedOf(t ir.SymType) (string, error) {
	switch t.Kind {
	case ir.SymBool:
		return "Boolean", nil
	case ir.SymInt:
		return "Integer", nil
	case ir.SymFloat:
		return "Float", nil
	default:
		return "", newUnsupported("type has no boxed concrete form: %v", t)
	}
}

// OpsTypeOf renders t's operator-table type text: the same shape as
// SymbolicOf but with the type substituted by its `.Ops` companion
// (spec.md §4.B).
func OpsTypeOf(t ir.SymType) (string, error) {
	switch t.Kind {
	case ir.SymBool:
		return "PrimVS.Ops<Bdd, Boolean>", nil
	case ir.SymInt:
		return "PrimVS.Ops<Bdd, Integer>", nil
	case ir.SymFloat:
		return "PrimVS.Ops<Bdd, Float>", nil
	case ir.SymSequence:
		elemOps, err := OpsTypeOf(t.Sequence.Element)
		if err != nil {
			return "", err
		}
		return "ListVS.Ops<Bdd, " + elemOps + ">", nil
	case ir.SymMap:
		key, err := ConcreteBoxedOf(t.Map.Key)
		if err != nil {
			return "", err
		}
		value, err := SymbolicOf(t.Map.Value, true)
		if err != nil {
			return "", err
		}
		return "MapVS.Ops<Bdd, " + key + ", " + value + ">", nil
	default:
		return "", newUnsupported("type outside the canonical set: %v", t)
	}
}

// opsCtorOf renders the constructor expression for t's operator table,
// recursively registering any nested element/value ops first so that
// emission order is definition-before-use (spec.md §4.C: "the recursive
// registration itself handles this because child registerOps calls return
// an already-registered name").
func opsCtorOf(ctx *CompilationContext, t ir.SymType) (string, error) {
	switch t.Kind {
	case ir.SymBool, ir.SymInt, ir.SymFloat:
		return "new " + primOpsCtorName(t.Kind) + "(" + BddHandleName + ")", nil
	case ir.SymSequence:
		elemOpsName, err := OpsFor(ctx, t.Sequence.Element)
		if err != nil {
			return "", err
		}
		return "new ListVS.Ops<>(" + BddHandleName + ", " + elemOpsName + ")", nil
	case ir.SymMap:
		valueOpsName, err := OpsFor(ctx, t.Map.Value)
		if err != nil {
			return "", err
		}
		return "new MapVS.Ops<>(" + BddHandleName + ", " + valueOpsName + ")", nil
	default:
		return "", newUnsupported("type outside the canonical set: %v", t)
	}
}

func primOpsCtorName(kind ir.SymTypeKind) string {
	switch kind {
	case ir.SymBool:
		return "PrimVS.Ops<Bdd, Boolean>"
	case ir.SymInt:
		return "PrimVS.Ops<Bdd, Integer>"
	case ir.SymFloat:
		return "PrimVS.Ops<Bdd, Float>"
	default:
		return ""
	}
}

// OpsFor registers t's operator table with ctx's registry (minting the
// dependent shapes first) and returns the constant name call sites should
// reference. Idempotent: requesting the same type shape twice returns the
// same name (spec.md §4.C).
func OpsFor(ctx *CompilationContext, t ir.SymType) (string, error) {
	opsType, err := OpsTypeOf(t)
	if err != nil {
		return "", err
	}
	opsCtor, err := opsCtorOf(ctx, t)
	if err != nil {
		return "", err
	}
	before := ctx.Registry.Len()
	idx := ctx.Registry.RegisterOps(OperatorTableRequest{OpsTypeText: opsType, OpsCtorText: opsCtor})
	name := NameFor(idx)
	if ctx.Registry.Len() > before {
		ctx.emitDiagnostic(DiagOperatorTable, name)
	}
	return name, nil
}
