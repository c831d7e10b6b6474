package smtenc

import (
	"fmt"

	"github.com/averagestudentdontfail/Ourochronos/internal/vm"
)

// Encoder compiles a Program into an SMT-LIB2 Script (spec §4.7).
type Encoder struct {
	// UnrollBound is how many iterations each While loop is symbolically
	// unrolled. Any program containing a While is marked Incomplete,
	// whatever the bound.
	UnrollBound int
}

// NewEncoder returns an Encoder with the given loop-unrolling bound.
func NewEncoder(unrollBound int) *Encoder {
	if unrollBound <= 0 {
		unrollBound = 16
	}
	return &Encoder{UnrollBound: unrollBound}
}

// symState is the symbolic machine state threaded through encoding:
// a stack of SMT-LIB2 term strings and the present array's current term.
type symState struct {
	stack []string
	p     string
}

func (s symState) clone() symState {
	return symState{stack: append([]string(nil), s.stack...), p: s.p}
}

func (s *symState) push(expr string) { s.stack = append(s.stack, expr) }

func (s *symState) pop() (string, error) {
	if len(s.stack) == 0 {
		return "", fmt.Errorf("smtenc: symbolic stack underflow")
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	return top, nil
}

// enc carries encode-time bookkeeping (input counter, incomplete flag).
type enc struct {
	inputs     []string
	incomplete bool
}

const zeroArray = "((as const (Array (_ BitVec 16) (_ BitVec 64))) (_ bv0 64))"

// Encode symbolically executes program and returns the finished script.
// declare-const A is the anamnesis array (the model's fixed-point
// candidate); P is built up as a nested store expression over the
// constant all-zero array (so cells never written stay 0), with stored
// values that may reference A and the declared inputs, and the script's
// final assertion is (= A P).
func (e *Encoder) Encode(program *vm.Program) (*Script, error) {
	ec := &enc{}
	st := symState{p: zeroArray}

	var err error
	st, err = e.encodeBlock(ec, st, program.Stmts)
	if err != nil {
		return nil, err
	}

	script := &Script{Incomplete: ec.incomplete, Inputs: ec.inputs}
	script.emit("(set-logic QF_ABV)")
	script.emit("(declare-const A (Array (_ BitVec 16) (_ BitVec 64)))")
	for _, in := range ec.inputs {
		script.emit(fmt.Sprintf("(declare-const %s (_ BitVec 64))", in))
	}
	script.emit(fmt.Sprintf("(assert (= A %s))", st.p))
	script.emit("(check-sat)")
	script.emit("(get-model)")
	return script, nil
}

func (e *Encoder) encodeBlock(ec *enc, st symState, stmts []vm.Stmt) (symState, error) {
	var err error
	for _, s := range stmts {
		st, err = e.encodeStmt(ec, st, s)
		if err != nil {
			return st, err
		}
	}
	return st, nil
}

func (e *Encoder) encodeStmt(ec *enc, st symState, stmt vm.Stmt) (symState, error) {
	switch s := stmt.(type) {
	case vm.Lit:
		st.push(bv64(s.Value))
		return st, nil

	case vm.Op:
		return e.encodeOp(ec, st, s.Code)

	case vm.If:
		cond, err := st.pop()
		if err != nil {
			return st, err
		}
		guard := fmt.Sprintf("(not (= %s (_ bv0 64)))", cond)

		thenSt, err := e.encodeBlock(ec, st.clone(), s.Then)
		if err != nil {
			return st, err
		}
		elseSt, err := e.encodeBlock(ec, st.clone(), s.Else)
		if err != nil {
			return st, err
		}
		if len(thenSt.stack) != len(elseSt.stack) {
			return st, fmt.Errorf("smtenc: If branches leave the stack at different depths, cannot merge symbolically")
		}
		merged := symState{p: fmt.Sprintf("(ite %s %s %s)", guard, thenSt.p, elseSt.p)}
		merged.stack = make([]string, len(thenSt.stack))
		for i := range merged.stack {
			merged.stack[i] = fmt.Sprintf("(ite %s %s %s)", guard, thenSt.stack[i], elseSt.stack[i])
		}
		return merged, nil

	case vm.While:
		ec.incomplete = true
		cur := st
		for i := 0; i < e.UnrollBound; i++ {
			condSt, err := e.encodeBlock(ec, cur.clone(), s.Cond)
			if err != nil {
				return st, err
			}
			cond, err := condSt.pop()
			if err != nil {
				return st, err
			}
			guard := fmt.Sprintf("(not (= %s (_ bv0 64)))", cond)

			bodySt, err := e.encodeBlock(ec, condSt.clone(), s.Body)
			if err != nil {
				return st, err
			}
			if len(bodySt.stack) != len(condSt.stack) {
				return st, fmt.Errorf("smtenc: While body leaves the stack at a different depth than its condition, cannot merge symbolically")
			}
			next := symState{p: fmt.Sprintf("(ite %s %s %s)", guard, bodySt.p, condSt.p)}
			next.stack = make([]string, len(bodySt.stack))
			for j := range next.stack {
				next.stack[j] = fmt.Sprintf("(ite %s %s %s)", guard, bodySt.stack[j], condSt.stack[j])
			}
			cur = next
		}
		return cur, nil

	default:
		return st, fmt.Errorf("smtenc: unknown statement type %T", stmt)
	}
}

func (e *Encoder) encodeOp(ec *enc, st symState, op vm.Opcode) (symState, error) {
	binary := func(template string) error {
		b, err := st.pop()
		if err != nil {
			return err
		}
		a, err := st.pop()
		if err != nil {
			return err
		}
		st.push(fmt.Sprintf(template, a, b))
		return nil
	}
	cmp := func(op string) error {
		b, err := st.pop()
		if err != nil {
			return err
		}
		a, err := st.pop()
		if err != nil {
			return err
		}
		st.push(fmt.Sprintf("(ite (%s %s %s) (_ bv1 64) (_ bv0 64))", op, a, b))
		return nil
	}

	var err error
	switch op {
	case vm.Nop, vm.Paradox, vm.Halt:
		// No symbolic effect: Paradox/Halt's control-flow short-circuit is
		// not modelled here, matching the spec's own fixed-point check
		// being the authority over any single candidate model.
	case vm.Pop:
		_, err = st.pop()
	case vm.Dup:
		v, e2 := st.pop()
		err = e2
		if err == nil {
			st.push(v)
			st.push(v)
		}
	case vm.Swap:
		b, e2 := st.pop()
		if e2 != nil {
			return st, e2
		}
		a, e2 := st.pop()
		if e2 != nil {
			return st, e2
		}
		st.push(b)
		st.push(a)
	case vm.Depth:
		st.push(bv64(uint64(len(st.stack))))

	case vm.Add:
		err = binary("(bvadd %s %s)")
	case vm.Sub:
		err = binary("(bvsub %s %s)")
	case vm.Mul:
		err = binary("(bvmul %s %s)")
	case vm.Div:
		err = binary("(ite (= %[2]s (_ bv0 64)) (_ bv0 64) (bvudiv %[1]s %[2]s))")
	case vm.Mod:
		err = binary("(ite (= %[2]s (_ bv0 64)) (_ bv0 64) (bvurem %[1]s %[2]s))")
	case vm.And:
		err = binary("(bvand %s %s)")
	case vm.Or:
		err = binary("(bvor %s %s)")
	case vm.Xor:
		err = binary("(bvxor %s %s)")
	case vm.Not:
		v, e2 := st.pop()
		err = e2
		if err == nil {
			st.push(fmt.Sprintf("(ite (= %s (_ bv0 64)) (_ bv1 64) (_ bv0 64))", v))
		}
	case vm.Eq:
		err = cmp("=")
	case vm.Neq:
		err = cmp("distinct")
	case vm.Lt:
		err = cmp("bvult")
	case vm.Gt:
		err = cmp("bvugt")
	case vm.Lte:
		err = cmp("bvule")
	case vm.Gte:
		err = cmp("bvuge")

	case vm.Oracle:
		addr, e2 := st.pop()
		err = e2
		if err == nil {
			st.push(fmt.Sprintf("(select A %s)", truncAddr(addr)))
		}
	case vm.Present:
		addr, e2 := st.pop()
		err = e2
		if err == nil {
			st.push(fmt.Sprintf("(select %s %s)", st.p, truncAddr(addr)))
		}
	case vm.Prophecy:
		addr, e2 := st.pop()
		if e2 != nil {
			return st, e2
		}
		v, e2 := st.pop()
		if e2 != nil {
			return st, e2
		}
		st.p = fmt.Sprintf("(store %s %s %s)", st.p, truncAddr(addr), v)

	case vm.Input:
		name := fmt.Sprintf("in%d", len(ec.inputs))
		ec.inputs = append(ec.inputs, name)
		st.push(name)
	case vm.Output:
		_, err = st.pop()

	default:
		return st, fmt.Errorf("smtenc: unsupported opcode %v", op)
	}
	return st, err
}

// truncAddr narrows a 64-bit address expression to the array's 16-bit
// index sort.
func truncAddr(expr string) string {
	return fmt.Sprintf("((_ extract 15 0) %s)", expr)
}
