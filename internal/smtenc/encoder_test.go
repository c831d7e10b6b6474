package smtenc

import (
	"strings"
	"testing"

	"github.com/averagestudentdontfail/Ourochronos/internal/vm"
)

func TestEncodeTrivialProgramProducesFixedPointAssertion(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.Lit{Value: 10}, vm.Lit{Value: 20}, vm.Op{Code: vm.Add}, vm.Op{Code: vm.Output}, vm.Op{Code: vm.Halt})

	enc := NewEncoder(8)
	script, err := enc.Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	text := script.String()
	if !strings.Contains(text, "(assert (= A") {
		t.Errorf("script missing fixed-point assertion:\n%s", text)
	}
	if script.Incomplete {
		t.Errorf("a loop-free program should not be marked Incomplete")
	}
}

func TestEncodeSelfFulfillingProphecyReferencesSelect(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.Lit{Value: 0}, vm.Op{Code: vm.Oracle}, vm.Lit{Value: 0}, vm.Op{Code: vm.Prophecy}, vm.Op{Code: vm.Halt})

	enc := NewEncoder(8)
	script, err := enc.Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	text := script.String()
	if !strings.Contains(text, "select A") {
		t.Errorf("oracle read should compile to a select on A:\n%s", text)
	}
	if !strings.Contains(text, "store") {
		t.Errorf("prophecy write should compile to a store:\n%s", text)
	}
}

func TestEncodeWhileMarksIncomplete(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.While{
		Cond: []vm.Stmt{vm.Lit{Value: 1}},
		Body: []vm.Stmt{vm.Op{Code: vm.Nop}},
	})

	enc := NewEncoder(4)
	script, err := enc.Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	if !script.Incomplete {
		t.Errorf("a program containing a While loop should be marked Incomplete")
	}
}

func TestEncodeInputDeclaresConst(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.Op{Code: vm.Input}, vm.Op{Code: vm.Output})

	enc := NewEncoder(8)
	script, err := enc.Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Inputs) != 1 || script.Inputs[0] != "in0" {
		t.Fatalf("got inputs %v, want [in0]", script.Inputs)
	}
	if !strings.Contains(script.String(), "(declare-const in0 (_ BitVec 64))") {
		t.Errorf("script missing input declaration:\n%s", script.String())
	}
}

func TestNullSolverReturnsUnknown(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.Op{Code: vm.Halt})
	script, err := NewEncoder(4).Encode(p)
	if err != nil {
		t.Fatal(err)
	}
	res, err := (NullSolver{}).Solve(script)
	if err != nil {
		t.Fatal(err)
	}
	if res.Verdict != Unknown {
		t.Errorf("got verdict %v, want Unknown", res.Verdict)
	}
}
