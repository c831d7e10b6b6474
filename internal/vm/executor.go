package vm

import (
	"github.com/averagestudentdontfail/Ourochronos/internal/memory"
	"github.com/averagestudentdontfail/Ourochronos/internal/value"
)

// DefaultStepBudget is the configurable per-epoch instruction budget of
// spec §4.3; exceeding it yields status Timeout.
const DefaultStepBudget = 10_000_000

// Config configures one epoch's execution.
type Config struct {
	StepBudget   uint64
	CaptureTrace bool
}

// DefaultConfig returns the spec's default epoch configuration.
func DefaultConfig() Config {
	return Config{StepBudget: DefaultStepBudget}
}

// signal is the control-flow outcome of executing one statement or block:
// the epoch keeps running, halts, or hits a paradox. Errors (stack
// underflow, input exhausted) are reported through the ordinary error
// return instead, since they terminate the epoch with status Error rather
// than a signal the caller chooses to propagate.
type signal int

const (
	signalContinue signal = iota
	signalHalt
	signalParadox
)

// executor holds the mutable state of one epoch run (spec §4.3).
type executor struct {
	anamnesis memory.Anamnesis
	present   *memory.Present
	stack     Stack
	input     []uint64
	inputPos  int
	output    []uint64
	writes    []MemWrite
	trace     []TraceEntry
	steps     uint64
	cfg       Config
}

// Run executes program for one epoch against anamnesis and input, and
// returns the resulting EpochRecord. Determinism: for fixed inputs the
// result is bit-exact identical (spec §4.3 contract).
func Run(program *Program, anamnesis memory.Anamnesis, input []uint64, cfg Config) *EpochRecord {
	if cfg.StepBudget == 0 {
		cfg.StepBudget = DefaultStepBudget
	}
	ex := &executor{
		anamnesis: anamnesis,
		present:   memory.NewPresent(),
		input:     input,
		cfg:       cfg,
	}

	rec := &EpochRecord{InitialAnamnesis: anamnesis.Memory().Snapshot()}

	sig, err := ex.execBlock(program.Stmts)
	rec.Output = ex.output
	rec.Writes = ex.writes
	rec.Trace = ex.trace
	rec.Steps = ex.steps
	rec.FinalPresent = ex.present.Snapshot()

	switch {
	case err == errTimeout:
		rec.Status = Timeout
	case err == ErrStackUnderflow:
		rec.Status = ErrorStatus
		rec.ErrorKind = StackUnderflowKind
	case err == errInputExhausted:
		rec.Status = ErrorStatus
		rec.ErrorKind = InputExhaustedKind
	case sig == signalParadox:
		rec.Status = ParadoxStatus
	default:
		rec.Status = Halted
	}
	return rec
}

// execBlock runs stmts in order, stopping early on Halt, Paradox, or error.
func (ex *executor) execBlock(stmts []Stmt) (signal, error) {
	for _, stmt := range stmts {
		sig, err := ex.execStmt(stmt)
		if err != nil {
			return signalContinue, err
		}
		if sig != signalContinue {
			return sig, nil
		}
	}
	return signalContinue, nil
}

func (ex *executor) execStmt(stmt Stmt) (signal, error) {
	if ex.steps >= ex.cfg.StepBudget {
		return signalContinue, errTimeout
	}
	ex.steps++

	var before []uint64
	if ex.cfg.CaptureTrace {
		before = snapshotVals(&ex.stack)
	}

	sig, opName, err := ex.dispatch(stmt)

	if ex.cfg.CaptureTrace {
		ex.trace = append(ex.trace, TraceEntry{
			Step:        ex.steps,
			Opcode:      opName,
			StackBefore: before,
			StackAfter:  snapshotVals(&ex.stack),
		})
	}
	return sig, err
}

func snapshotVals(s *Stack) []uint64 {
	snap := s.Snapshot()
	out := make([]uint64, len(snap))
	for i, v := range snap {
		out[i] = v.Val
	}
	return out
}

func (ex *executor) dispatch(stmt Stmt) (signal, string, error) {
	switch s := stmt.(type) {
	case Lit:
		ex.stack.Push(value.Lit(s.Value))
		return signalContinue, "LIT", nil

	case Op:
		sig, err := ex.execOp(s.Code)
		return sig, s.Code.String(), err

	case If:
		cond, err := ex.stack.Pop()
		if err != nil {
			return signalContinue, "IF", err
		}
		branch := s.Else
		if cond.Val != 0 {
			branch = s.Then
		}
		sig, err := ex.execBlock(branch)
		return sig, "IF", err

	case While:
		for {
			sig, err := ex.execBlock(s.Cond)
			if err != nil || sig != signalContinue {
				return sig, "WHILE", err
			}
			cond, err := ex.stack.Pop()
			if err != nil {
				return signalContinue, "WHILE", err
			}
			if cond.Val == 0 {
				return signalContinue, "WHILE", nil
			}
			sig, err = ex.execBlock(s.Body)
			if err != nil || sig != signalContinue {
				return sig, "WHILE", err
			}
		}

	default:
		return signalContinue, "UNKNOWN", nil
	}
}
