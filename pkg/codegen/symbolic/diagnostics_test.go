package symbolic

import (
	"strings"
	"testing"

	"github.com/glyphlang/glyph/pkg/ir"
)

func TestGenerate_DiagnosticsRecordsOperatorTables(t *testing.T) {
	decl := funcDecl("f", nil, nil, intType(), []ir.SymStmt{returnStmt(intLitExpr(3))})

	var entries []DiagnosticEntry
	_, err := Generate(Config{
		FileName:      "f.src",
		MainClassName: "Demo",
		Diagnostics:   func(e DiagnosticEntry) { entries = append(entries, e) },
	}, []ir.SymDecl{decl})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	found := false
	for _, e := range entries {
		if e.Kind == DiagOperatorTable {
			found = true
		}
	}
	if !found {
		t.Errorf("expected at least one DiagOperatorTable entry, got %+v", entries)
	}
}

func TestGenerate_DiagnosticsRecordsBranchAndLoop(t *testing.T) {
	ifStmt := ir.SymStmt{
		Kind: ir.SymStmtIf,
		If: &ir.SymIfStmt{
			Condition: ir.SymExpr{Kind: ir.SymExprBoolLit, Type: boolType(), BoolLit: true},
			Then:      []ir.SymStmt{returnStmt(intLitExpr(1))},
			Else:      []ir.SymStmt{returnStmt(intLitExpr(2))},
		},
	}
	whileStmt := ir.SymStmt{
		Kind: ir.SymStmtWhile,
		While: &ir.SymWhileStmt{
			Condition: ir.SymExpr{Kind: ir.SymExprBoolLit, Type: boolType(), BoolLit: true},
			Body:      []ir.SymStmt{{Kind: ir.SymStmtBreak}},
		},
	}
	decl := funcDecl("f", nil, nil, intType(), []ir.SymStmt{whileStmt, ifStmt})

	var kinds []DiagnosticKind
	_, err := Generate(Config{
		FileName:      "f.src",
		MainClassName: "Demo",
		Diagnostics:   func(e DiagnosticEntry) { kinds = append(kinds, e.Kind) },
	}, []ir.SymDecl{decl})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var sawBranch, sawLoop bool
	for _, k := range kinds {
		if k == DiagBranch {
			sawBranch = true
		}
		if k == DiagLoop {
			sawLoop = true
		}
	}
	if !sawBranch {
		t.Errorf("expected a DiagBranch entry, got %+v", kinds)
	}
	if !sawLoop {
		t.Errorf("expected a DiagLoop entry, got %+v", kinds)
	}
}

func TestRuntimeManifest(t *testing.T) {
	out := RuntimeManifest(Config{FileName: "f.src", MainClassName: "Demo"})
	if !strings.Contains(out, "f.src") || !strings.Contains(out, "Demo") {
		t.Errorf("expected manifest to mention source file and class name, got:\n%s", out)
	}
	if !strings.Contains(out, "PrimVS") || !strings.Contains(out, "ListVS") || !strings.Contains(out, "MapVS") || !strings.Contains(out, "Bdd") {
		t.Errorf("expected manifest to name the full runtime contract, got:\n%s", out)
	}
}
