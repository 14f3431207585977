package symbolic

// DiagnosticKind classifies a DiagnosticEntry.
type DiagnosticKind int

const (
	// DiagOperatorTable fires once per distinct operator-table shape
	// registered (spec.md §4.C, property 4): one entry per call to
	// OpsFor that assigns a new index.
	DiagOperatorTable DiagnosticKind = iota
	// DiagBranch fires once per if-statement emission, after the condition
	// is evaluated and before either arm; Detail names the temporary that
	// holds the condition (spec.md §4.H).
	DiagBranch
	// DiagLoop fires once per while-statement emission.
	DiagLoop
)

// DiagnosticEntry is one structured observation emitted during Generate,
// handed to the caller's Config.Diagnostics sink if set. This mirrors
// pkg/debug's structured introspection for the VM, applied here to the
// generator's own decision points instead of bytecode execution, so a
// caller can assert on properties 1-6 of spec.md §8 without parsing the
// emitted target text back out.
type DiagnosticEntry struct {
	Kind   DiagnosticKind
	Detail string
}

func (ctx *CompilationContext) emitDiagnostic(kind DiagnosticKind, detail string) {
	if ctx.Diagnostics == nil {
		return
	}
	ctx.Diagnostics(DiagnosticEntry{Kind: kind, Detail: detail})
}
