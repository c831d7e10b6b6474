package ourochronos

import "github.com/averagestudentdontfail/Ourochronos/internal/smtenc"

// SMT encoder types, re-exported from internal/smtenc (spec §4.7).
type (
	SmtEncoder = smtenc.Encoder
	SmtScript  = smtenc.Script
	SmtSolver  = smtenc.Solver
	SmtVerdict = smtenc.Verdict
	SmtModel   = smtenc.Model
	SolveResult = smtenc.SolveResult
)

const (
	Sat     = smtenc.Sat
	Unsat   = smtenc.Unsat
	Unknown = smtenc.Unknown
)

// NewSmtEncoder returns an Encoder whose While loops unroll bound
// iterations; a script for any program containing a While is marked
// Incomplete.
func NewSmtEncoder(bound int) *SmtEncoder { return smtenc.NewEncoder(bound) }

// NullSolver always reports Unknown; see internal/smtenc.NullSolver.
type NullSolver = smtenc.NullSolver

// ExtractFixedPoint renders a Sat model's cell assignments into a Memory
// snapshot compatible with a FixedPoint's Memory field.
func ExtractFixedPoint(m *SmtModel) FixedPoint {
	return FixedPoint{Memory: smtenc.ExtractFixedPoint(m)}
}
