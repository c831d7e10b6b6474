package vm

import (
	"github.com/averagestudentdontfail/Ourochronos/internal/memory"
	"github.com/averagestudentdontfail/Ourochronos/internal/value"
)

// Status is the terminal disposition of one epoch, per spec §4.3.
type Status int

const (
	Halted Status = iota
	ParadoxStatus
	Timeout
	ErrorStatus
)

func (s Status) String() string {
	switch s {
	case Halted:
		return "Halted"
	case ParadoxStatus:
		return "Paradox"
	case Timeout:
		return "Timeout"
	case ErrorStatus:
		return "Error"
	default:
		return "Unknown"
	}
}

// ErrorKind distinguishes the two epoch-local error conditions of spec §7.
type ErrorKind int

const (
	NoError ErrorKind = iota
	StackUnderflowKind
	InputExhaustedKind
)

func (k ErrorKind) String() string {
	switch k {
	case StackUnderflowKind:
		return "StackUnderflow"
	case InputExhaustedKind:
		return "InputExhausted"
	default:
		return "None"
	}
}

// MemWrite records one present-memory write during an epoch, in program
// order; the causal analyzer consumes these to build its graph (spec
// §4.5). Sources lists each contributing anamnesis address together with
// the negation parity of the path from that address to this write — the
// causal analyzer adds one graph edge per source, tagged by its Neg bit.
type MemWrite struct {
	Addr    uint16
	Value   uint64
	Sources []value.Source
}

// TraceEntry is one instruction-level trace record (spec §3 EpochRecord).
type TraceEntry struct {
	Step        uint64
	Opcode      string
	StackBefore []uint64
	StackAfter  []uint64
}

// EpochRecord is the result of running one epoch (spec §3).
type EpochRecord struct {
	InitialAnamnesis memory.Memory
	FinalPresent     memory.Memory
	Output           []uint64
	Status           Status
	ErrorKind        ErrorKind
	Writes           []MemWrite
	Trace            []TraceEntry // only populated when capture is requested
	Steps            uint64
}
