package symbolic

import (
	"strings"
	"testing"

	"github.com/glyphlang/glyph/pkg/ir"
)

func funcDecl(name string, params []ir.SymParam, locals []ir.SymLocal, ret ir.SymType, body []ir.SymStmt) ir.SymDecl {
	return ir.SymDecl{
		Kind: ir.SymDeclFunction,
		Function: &ir.SymFunctionDecl{
			Static:     true,
			Name:       name,
			Params:     params,
			Locals:     locals,
			ReturnType: ret,
			Body:       body,
		},
	}
}

// TestGenerateIdentity is scenario S1: f(): int { return 3; }
func TestGenerateIdentity(t *testing.T) {
	decl := funcDecl("f", nil, nil, intType(), []ir.SymStmt{returnStmt(intLitExpr(3))})

	out, err := Generate(Config{FileName: "f.src", MainClassName: "Demo"}, []ir.SymDecl{decl})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(out, "static PrimVS<Bdd, Integer> f(Bdd pc)") {
		t.Errorf("expected pc as the sole leading parameter, got:\n%s", out)
	}
	if !strings.Contains(out, "returnAccumulator = ") || !strings.Contains(out, ".empty();") {
		t.Errorf("expected returnAccumulator initialised from ops(Int).empty(), got:\n%s", out)
	}
	if !strings.Contains(out, "merge2(returnAccumulator, ") {
		t.Errorf("expected a single merge2 into returnAccumulator, got:\n%s", out)
	}
	if !strings.Contains(out, "new PrimVS<>(bdd, 3)") {
		t.Errorf("expected literal 3 guarded via PrimVS constructor, got:\n%s", out)
	}
	if !strings.Contains(out, "= bdd.constFalse();") {
		t.Errorf("expected the path constraint killed after return, got:\n%s", out)
	}
	if !strings.Contains(out, "return returnAccumulator;") {
		t.Errorf("expected a final `return returnAccumulator;`, got:\n%s", out)
	}
}

// TestGenerateIfReturn is scenario S2: g(b: bool): int { if (b) { return 1; } return 2; }
func TestGenerateIfReturn(t *testing.T) {
	decl := funcDecl("g",
		[]ir.SymParam{{Name: "b", Type: boolType()}},
		nil, intType(),
		[]ir.SymStmt{
			ifStmt(varExpr("b", boolType()), []ir.SymStmt{returnStmt(intLitExpr(1))}, nil),
			returnStmt(intLitExpr(2)),
		},
	)

	out, err := Generate(Config{FileName: "g.src", MainClassName: "Demo"}, []ir.SymDecl{decl})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if strings.Count(out, "trueCond(") != 1 || strings.Count(out, "falseCond(") != 1 {
		t.Errorf("expected exactly one trueCond/falseCond pair for the single if, got:\n%s", out)
	}
	if !strings.Contains(out, "bdd.or(") {
		t.Errorf("expected the parent pc re-OR-ed after the if, got:\n%s", out)
	}
	if strings.Count(out, "merge2(returnAccumulator, ") != 2 {
		t.Errorf("expected two merge2 calls into returnAccumulator (one per return), got:\n%s", out)
	}
}

// TestGenerateWhileBreak is scenario S3:
// h(): int { while (true) { if (cond) break; } return 0; }
func TestGenerateWhileBreak(t *testing.T) {
	decl := funcDecl("h", nil,
		[]ir.SymLocal{{Name: "cond", Type: boolType()}},
		intType(),
		[]ir.SymStmt{
			whileTrueStmt(ifStmt(varExpr("cond", boolType()), []ir.SymStmt{breakStmt()}, nil)),
			returnStmt(intLitExpr(0)),
		},
	)

	out, err := Generate(Config{FileName: "h.src", MainClassName: "Demo"}, []ir.SymDecl{decl})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(out, "new java.util.ArrayList<Bdd>()") {
		t.Errorf("expected a fresh LoopExitsList, got:\n%s", out)
	}
	if !strings.Contains(out, ".add(") {
		t.Errorf("expected the break's pc appended to LoopExitsList, got:\n%s", out)
	}
	if !strings.Contains(out, "bdd.orMany(") {
		t.Errorf("expected the post-loop epilogue to OR the exits list, got:\n%s", out)
	}
}

// TestGenerateOperatorSharing is scenario S5: two functions each containing
// x + y with x, y: int produce exactly one PrimVS.Ops<Bdd, Integer>
// definition in the epilogue.
func TestGenerateOperatorSharing(t *testing.T) {
	addBody := []ir.SymStmt{
		returnStmt(ir.SymExpr{
			Kind: ir.SymExprBinaryOp,
			Type: intType(),
			Binary: &ir.SymBinaryExpr{
				Op:  ir.SymOpAdd,
				Lhs: varExpr("x", intType()),
				Rhs: varExpr("y", intType()),
			},
		}),
	}
	params := []ir.SymParam{{Name: "x", Type: intType()}, {Name: "y", Type: intType()}}
	decl1 := funcDecl("sum1", params, nil, intType(), addBody)
	decl2 := funcDecl("sum2", params, nil, intType(), addBody)

	out, err := Generate(Config{FileName: "sums.src", MainClassName: "Demo"}, []ir.SymDecl{decl1, decl2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if got := strings.Count(out, "PrimVS.Ops<Bdd, Integer> ops_"); got != 1 {
		t.Errorf("expected exactly one PrimVS.Ops<Bdd, Integer> epilogue definition, got %d in:\n%s", got, out)
	}
}

// TestGenerateReceiveCapableFails is scenario S6: a receive-capable
// function fails with Unsupported and Generate returns no partial artifact.
func TestGenerateReceiveCapableFails(t *testing.T) {
	decl := ir.SymDecl{
		Kind: ir.SymDeclFunction,
		Function: &ir.SymFunctionDecl{
			Static:     true,
			Receive:    true,
			Name:       "asyncFn",
			ReturnType: nullType(),
		},
	}

	out, err := Generate(Config{FileName: "a.src", MainClassName: "Demo"}, []ir.SymDecl{decl})
	if !IsGeneratorError(err, Unsupported) {
		t.Fatalf("expected Unsupported error for a receive-capable function, got %v", err)
	}
	if out != "" {
		t.Errorf("expected no partial artifact on failure, got:\n%s", out)
	}
}

// TestReturnAccumulatorPresenceMatchesReturnType covers property 6: the
// return accumulator exists if and only if the return type is not Null.
func TestReturnAccumulatorPresenceMatchesReturnType(t *testing.T) {
	voidDecl := funcDecl("doNothing", nil, nil, nullType(), []ir.SymStmt{bareReturnStmt()})
	out, err := Generate(Config{FileName: "v.src", MainClassName: "Demo"}, []ir.SymDecl{voidDecl})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if strings.Contains(out, ReturnAccumulatorName) {
		t.Errorf("expected no returnAccumulator for a Null-returning function, got:\n%s", out)
	}

	intDecl := funcDecl("one", nil, nil, intType(), []ir.SymStmt{returnStmt(intLitExpr(1))})
	out, err = Generate(Config{FileName: "i.src", MainClassName: "Demo"}, []ir.SymDecl{intDecl})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, ReturnAccumulatorName) {
		t.Errorf("expected a returnAccumulator for an Int-returning function, got:\n%s", out)
	}
}

func TestSkipCommentForNonFunctionDecl(t *testing.T) {
	decl := ir.SymDecl{Kind: ir.SymDeclOther, SkipReason: "class declarations are not part of the symbolic core"}

	out, err := Generate(Config{FileName: "s.src", MainClassName: "Demo"}, []ir.SymDecl{decl})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(out, "// skip: class declarations are not part of the symbolic core") {
		t.Errorf("expected a skip comment carrying the decl's reason, got:\n%s", out)
	}
}

func TestMustJumpOutStopsEmission(t *testing.T) {
	decl := funcDecl("early", nil, nil, intType(), []ir.SymStmt{
		compoundStmt(
			returnStmt(intLitExpr(1)),
			returnStmt(intLitExpr(2)),
		),
	})

	out, err := Generate(Config{FileName: "e.src", MainClassName: "Demo"}, []ir.SymDecl{decl})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := strings.Count(out, "merge2(returnAccumulator, "); got != 1 {
		t.Errorf("expected emission to stop after the first (MustJumpOut) return, got %d merge2 calls in:\n%s", got, out)
	}
}
