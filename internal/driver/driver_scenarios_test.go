package driver

import (
	"context"
	"testing"

	"github.com/averagestudentdontfail/Ourochronos/internal/diagnose"
	"github.com/averagestudentdontfail/Ourochronos/internal/vm"
)

// Scenario 1: trivial consistency — `10 20 ADD OUTPUT`.
func TestScenarioTrivialConsistency(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.Lit{Value: 10}, vm.Lit{Value: 20}, vm.Op{Code: vm.Add}, vm.Op{Code: vm.Output}, vm.Op{Code: vm.Halt})

	d, err := NewDriver(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	res := d.Run(context.Background(), nil)

	if res.Kind != ResultConsistent {
		t.Fatalf("got %v, want Consistent", res.Kind)
	}
	if len(res.Single.Output) != 1 || res.Single.Output[0] != 30 {
		t.Fatalf("got output %v, want [30]", res.Single.Output)
	}
	if res.Single.Epochs != 1 {
		t.Fatalf("got %d epochs, want 1", res.Single.Epochs)
	}
}

// Scenario 2: self-fulfilling prophecy — `0 ORACLE 0 PROPHECY`. Any
// initial anamnesis is a fixed point; with the default Zero seed the
// fixed point is all-zero and there is no output.
func TestScenarioSelfFulfillingProphecy(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.Lit{Value: 0}, vm.Op{Code: vm.Oracle}, vm.Lit{Value: 0}, vm.Op{Code: vm.Prophecy}, vm.Op{Code: vm.Halt})

	d, err := NewDriver(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	res := d.Run(context.Background(), nil)

	if res.Kind != ResultConsistent {
		t.Fatalf("got %v, want Consistent", res.Kind)
	}
	if len(res.Single.Output) != 0 {
		t.Fatalf("got output %v, want none", res.Single.Output)
	}
	if res.Single.Memory.Read(0).Val != 0 {
		t.Fatalf("got fixed point cell 0 = %d, want 0", res.Single.Memory.Read(0).Val)
	}
	if res.Single.Epochs != 1 {
		t.Fatalf("got %d epochs, want 1 (the all-zero seed is already a fixed point)", res.Single.Epochs)
	}
}

// Scenario 3: grandfather paradox — `0 ORACLE NOT 0 PROPHECY`. Cell 0
// negates itself every epoch: no fixed point exists, and the diagnoser
// must surface a NegativeLoopWitness classified Type I.
func TestScenarioGrandfatherParadox(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.Lit{Value: 0}, vm.Op{Code: vm.Oracle}, vm.Op{Code: vm.Not}, vm.Lit{Value: 0}, vm.Op{Code: vm.Prophecy}, vm.Op{Code: vm.Halt})

	cfg := DefaultConfig().WithMaxEpochs(10)
	d, err := NewDriver(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	res := d.Run(context.Background(), nil)

	if res.Kind != ResultParadox && res.Kind != ResultCyclic {
		t.Fatalf("got %v, want Paradox or Cyclic", res.Kind)
	}
	if res.Diagnosis.Kind != diagnose.NegativeLoopWitness {
		t.Fatalf("got witness %v, want NegativeLoopWitness", res.Diagnosis.Kind)
	}
	if res.Diagnosis.Class != diagnose.ClassI {
		t.Errorf("got classification %v, want Type I", res.Diagnosis.Class)
	}
	found0 := false
	for _, c := range res.Diagnosis.NegLoopCells {
		if c == 0 {
			found0 = true
		}
	}
	if !found0 {
		t.Errorf("got negative loop cells %v, want cell 0 present", res.Diagnosis.NegLoopCells)
	}
}

// Scenario 4: divergence — `0 ORACLE 1 ADD 0 PROPHECY` with max_epochs=100.
// Cell 0 increments every epoch without bound.
func TestScenarioDivergence(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.Lit{Value: 0}, vm.Op{Code: vm.Oracle}, vm.Lit{Value: 1}, vm.Op{Code: vm.Add}, vm.Lit{Value: 0}, vm.Op{Code: vm.Prophecy}, vm.Op{Code: vm.Halt})

	cfg := DefaultConfig().WithMaxEpochs(100)
	d, err := NewDriver(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	res := d.Run(context.Background(), nil)

	if res.Kind != ResultDivergent && res.Kind != ResultTimeout {
		t.Fatalf("got %v, want Divergent or Timeout", res.Kind)
	}
	if res.Diagnosis.Kind != diagnose.DivergenceWitness {
		t.Fatalf("got witness %v, want DivergenceWitness", res.Diagnosis.Kind)
	}
	if res.Diagnosis.DivergentCell != 0 {
		t.Errorf("got divergent cell %d, want 0", res.Diagnosis.DivergentCell)
	}
	if res.Diagnosis.Direction != diagnose.Ascending {
		t.Errorf("got direction %v, want ascending", res.Diagnosis.Direction)
	}
}

func TestConsistentFixedPointIsAcceptedImmediatelyOnRerun(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.Lit{Value: 1}, vm.Lit{Value: 1}, vm.Op{Code: vm.Add}, vm.Op{Code: vm.Output}, vm.Op{Code: vm.Halt})

	d, err := NewDriver(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	first := d.Run(context.Background(), nil)
	second := d.Run(context.Background(), nil)
	if first.Kind != ResultConsistent || second.Kind != ResultConsistent {
		t.Fatalf("got %v / %v, want Consistent twice", first.Kind, second.Kind)
	}
	if first.Single.Epochs != second.Single.Epochs {
		t.Fatalf("rerun produced a different epoch count: %d vs %d", first.Single.Epochs, second.Single.Epochs)
	}
}
