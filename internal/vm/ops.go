package vm

import (
	"errors"

	"github.com/averagestudentdontfail/Ourochronos/internal/memory"
	"github.com/averagestudentdontfail/Ourochronos/internal/value"
)

// errTimeout signals the epoch step budget was exceeded (spec §4.3); it
// never escapes this package as a Go error value, only as Status Timeout.
var errTimeout = errors.New("epoch step budget exceeded")

// errInputExhausted signals INPUT was executed with no input remaining
// (spec §7 InputExhausted).
var errInputExhausted = errors.New("input exhausted")

// execOp dispatches one opcode against the executor's stack and memories.
func (ex *executor) execOp(op Opcode) (signal, error) {
	switch op {
	case Nop:
		return signalContinue, nil

	case Pop:
		_, err := ex.stack.Pop()
		return signalContinue, err

	case Dup:
		v, err := ex.stack.Peek(0)
		if err != nil {
			return signalContinue, err
		}
		ex.stack.Push(v)
		return signalContinue, nil

	case Swap:
		a, err := ex.stack.Pop()
		if err != nil {
			return signalContinue, err
		}
		b, err := ex.stack.Pop()
		if err != nil {
			return signalContinue, err
		}
		ex.stack.Push(a)
		ex.stack.Push(b)
		return signalContinue, nil

	case Over:
		v, err := ex.stack.Peek(1)
		if err != nil {
			return signalContinue, err
		}
		ex.stack.Push(v)
		return signalContinue, nil

	case Rot:
		c, err := ex.stack.Pop()
		if err != nil {
			return signalContinue, err
		}
		b, err := ex.stack.Pop()
		if err != nil {
			return signalContinue, err
		}
		a, err := ex.stack.Pop()
		if err != nil {
			return signalContinue, err
		}
		ex.stack.Push(b)
		ex.stack.Push(c)
		ex.stack.Push(a)
		return signalContinue, nil

	case Depth:
		ex.stack.Push(value.Lit(uint64(ex.stack.Depth())))
		return signalContinue, nil

	case Add:
		return ex.binary(value.Add)
	case Sub:
		return ex.binary(value.Sub)
	case Mul:
		return ex.binary(value.Mul)
	case Div:
		return ex.binary(value.Div)
	case Mod:
		return ex.binary(value.Rem)
	case And:
		return ex.binary(value.And)
	case Or:
		return ex.binary(value.Or)
	case Xor:
		return ex.binary(value.Xor)
	case Eq:
		return ex.binary(value.Eq)
	case Neq:
		return ex.binary(value.Neq)
	case Lt:
		return ex.binary(value.Lt)
	case Gt:
		return ex.binary(value.Gt)
	case Lte:
		return ex.binary(value.Lte)
	case Gte:
		return ex.binary(value.Gte)

	case Not:
		// Logical, not bitwise: maps 0<->1 over the canonical boolean
		// encoding, so a NOT-fed negative loop cycles between 0 and 1
		// rather than 0 and ^uint64(0). value.BNot provides the bitwise
		// complement for callers that want the latter, but no opcode
		// currently reaches it.
		v, err := ex.stack.Pop()
		if err != nil {
			return signalContinue, err
		}
		ex.stack.Push(value.LogicalNot(v))
		return signalContinue, nil

	case Oracle:
		return ex.execOracle()
	case Prophecy:
		return ex.execProphecy()
	case Present:
		return ex.execPresent()
	case Paradox:
		return signalParadox, nil

	case Input:
		if ex.inputPos >= len(ex.input) {
			return signalContinue, errInputExhausted
		}
		ex.stack.Push(value.Lit(ex.input[ex.inputPos]))
		ex.inputPos++
		return signalContinue, nil

	case Output:
		v, err := ex.stack.Pop()
		if err != nil {
			return signalContinue, err
		}
		ex.output = append(ex.output, v.Val)
		return signalContinue, nil

	case Halt:
		return signalHalt, nil

	default:
		return signalContinue, nil
	}
}

func (ex *executor) binary(fn func(a, b value.Value) value.Value) (signal, error) {
	b, err := ex.stack.Pop()
	if err != nil {
		return signalContinue, err
	}
	a, err := ex.stack.Pop()
	if err != nil {
		return signalContinue, err
	}
	ex.stack.Push(fn(a, b))
	return signalContinue, nil
}

// execOracle pops an address and pushes anamnesis[addr] with provenance
// Oracle({addr}) ⊔ addr_expr_prov (spec §4.3).
func (ex *executor) execOracle() (signal, error) {
	addrVal, err := ex.stack.Pop()
	if err != nil {
		return signalContinue, err
	}
	addr := uint16(addrVal.Val % memory.Size)
	read := ex.anamnesis.Read(uint32(addr))
	prov := value.Join(value.OracleOf(addr), addrVal.Prov)
	ex.stack.Push(value.Value{Val: read.Val, Prov: prov})
	return signalContinue, nil
}

// execProphecy has stack effect ( value addr -- ): it pops addr, then
// value, and writes present[addr] := value, recording the write for the
// causal analyzer (spec §4.3/§4.5). The surface syntax pushes value first
// so addr — computed last — sits on top, e.g. `0 ORACLE NOT 0 PROPHECY`
// writes NOT(oracle(0)) to cell 0.
func (ex *executor) execProphecy() (signal, error) {
	addrVal, err := ex.stack.Pop()
	if err != nil {
		return signalContinue, err
	}
	v, err := ex.stack.Pop()
	if err != nil {
		return signalContinue, err
	}
	addr := uint16(addrVal.Val % memory.Size)
	ex.present.Write(uint32(addr), v)
	ex.writes = append(ex.writes, MemWrite{
		Addr:    addr,
		Value:   v.Val,
		Sources: append([]value.Source(nil), v.Prov.Sources()...),
	})
	return signalContinue, nil
}

// execPresent pops an address and pushes the value last written to that
// present cell this epoch (⊥ provenance if never written).
func (ex *executor) execPresent() (signal, error) {
	addrVal, err := ex.stack.Pop()
	if err != nil {
		return signalContinue, err
	}
	addr := uint16(addrVal.Val % memory.Size)
	ex.stack.Push(ex.present.Read(uint32(addr)))
	return signalContinue, nil
}
