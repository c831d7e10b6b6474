package driver

import (
	"github.com/averagestudentdontfail/Ourochronos/internal/diagnose"
	"github.com/averagestudentdontfail/Ourochronos/internal/memory"
)

// ResultKind discriminates the seven RunResult variants of spec §6.
type ResultKind int

const (
	ResultConsistent ResultKind = iota
	ResultMultipleConsistent
	ResultCyclic
	ResultDivergent
	ResultParadox
	ResultTimeout
	ResultError
)

func (k ResultKind) String() string {
	switch k {
	case ResultConsistent:
		return "Consistent"
	case ResultMultipleConsistent:
		return "MultipleConsistent"
	case ResultCyclic:
		return "Cyclic"
	case ResultDivergent:
		return "Divergent"
	case ResultParadox:
		return "Paradox"
	case ResultTimeout:
		return "Timeout"
	default:
		return "Error"
	}
}

// FixedPoint is one consistent world: the output stream and the memory
// that is simultaneously anamnesis and present.
type FixedPoint struct {
	Output []uint64
	Memory memory.Memory
	Epochs uint64
}

// RunResult is the tagged union over the outcomes of one driver
// invocation (spec §6).
type RunResult struct {
	Kind ResultKind

	// ResultConsistent
	Single FixedPoint

	// ResultMultipleConsistent (Diagnostic mode, multiple seeds converged
	// to distinct fixed points)
	Multiple []FixedPoint

	// ResultCyclic / ResultDivergent / ResultParadox
	Diagnosis diagnose.Diagnosis

	// ResultTimeout
	PartialTrajectory *Trajectory

	// ResultError
	ErrorKind    string
	ErrorMessage string
}
