package smtenc

import "github.com/averagestudentdontfail/Ourochronos/internal/memory"

// Verdict discriminates a solver's answer.
type Verdict int

const (
	Unknown Verdict = iota
	Sat
	Unsat
)

// Model maps declared input names to a concrete bit pattern, and the
// anamnesis array's 65,536 cells to their satisfying values.
type Model struct {
	Inputs map[string]uint64
	Cells  map[uint16]uint64
}

// SolveResult is the solver's answer to a Script.
type SolveResult struct {
	Verdict Verdict
	Model   *Model   // set iff Verdict == Sat
	Core    []string // unsat core fragment identifiers, set iff Verdict == Unsat
}

// Solver is the pluggable backend a finished Script is handed to; no concrete
// implementation ships in this module (spec §1 scope — solving is
// external), mirroring the teacher's utils.Channel hash-function switch
// degrading gracefully when a backend is unavailable.
type Solver interface {
	Solve(script *Script) (SolveResult, error)
}

// NullSolver always reports Unknown without attempting to solve anything.
type NullSolver struct{}

// Solve implements Solver.
func (NullSolver) Solve(*Script) (SolveResult, error) {
	return SolveResult{Verdict: Unknown}, nil
}

// ExtractFixedPoint renders a Sat model's cell assignments into a Memory,
// zero for any cell the model leaves unconstrained.
func ExtractFixedPoint(m *Model) memory.Memory {
	var mem memory.Memory
	for addr, val := range m.Cells {
		cur := mem.Read(uint32(addr))
		cur.Val = val
		mem.Write(uint32(addr), cur)
	}
	return mem
}

// ExtractConflictCells maps an Unsat core's assertion labels back to the
// memory addresses they constrain. This encoder emits the whole
// fixed-point constraint as one unlabelled assertion, so there are no
// per-cell labels to map back: core is ignored and the result is always
// nil.
func ExtractConflictCells(core []string) []uint16 {
	_ = core
	return nil
}
