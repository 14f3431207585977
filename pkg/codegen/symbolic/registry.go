package symbolic

import "strconv"

// OperatorTableRequest is the key a caller registers against the registry:
// the emitted type of the operator-table constant and the expression that
// constructs it (spec.md §3, §4.C). Two requests with equal fields are the
// same shape and must resolve to the same index.
type OperatorTableRequest struct {
	OpsTypeText string
	OpsCtorText string
}

// OperatorTableRegistry deduplicates (opsTypeText, opsCtorText) requests
// and assigns each distinct one a dense, first-insertion-order index
// (spec.md §3 invariant 5). One registry is shared by every function in a
// compilation job (spec.md §5: "process-wide to that job only"), so that
// two functions requesting the same shape share one target-level constant
// (property S5).
type OperatorTableRegistry struct {
	order []OperatorTableRequest
	index map[OperatorTableRequest]int
}

// NewOperatorTableRegistry constructs an empty registry.
func NewOperatorTableRegistry() *OperatorTableRegistry {
	return &OperatorTableRegistry{
		index: make(map[OperatorTableRequest]int),
	}
}

// RegisterOps returns req's stable index, assigning a new one in
// first-request order if req has not been seen before. Idempotent:
// repeated requests with an equal key return the same index (spec.md §4.C,
// property 4).
func (r *OperatorTableRegistry) RegisterOps(req OperatorTableRequest) int {
	if i, ok := r.index[req]; ok {
		return i
	}
	i := len(r.order)
	r.order = append(r.order, req)
	r.index[req] = i
	return i
}

// NameFor renders idx as the canonical target-level constant name.
func NameFor(idx int) string {
	return opsConstName(idx)
}

// Definitions returns every registered request's constant-definition text,
// in index order, ready to be appended verbatim in the module epilogue
// (spec.md §6 output item 3). Each line has the form
// `private static final <opsType> ops_<i> = <opsCtor>;`.
func (r *OperatorTableRegistry) Definitions() []string {
	defs := make([]string, len(r.order))
	for i, req := range r.order {
		defs[i] = "private static final " + req.OpsTypeText + " " + opsConstName(i) +
			" = " + req.OpsCtorText + ";"
	}
	return defs
}

// Len reports how many distinct shapes have been registered so far.
func (r *OperatorTableRegistry) Len() int {
	return len(r.order)
}

func opsConstName(idx int) string {
	return "ops_" + strconv.Itoa(idx)
}
