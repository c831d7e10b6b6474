package integration_test

import (
	"context"
	"testing"

	"github.com/averagestudentdontfail/Ourochronos/pkg/ourochronos"
)

func primalityWitnessProgram() *ourochronos.Program {
	const candidate uint16 = 1

	check := []ourochronos.Stmt{
		ourochronos.Lit{Value: uint64(candidate)}, ourochronos.Op{Code: ourochronos.Oracle},
		ourochronos.Lit{Value: 1}, ourochronos.Op{Code: ourochronos.Gt},

		ourochronos.Lit{Value: uint64(candidate)}, ourochronos.Op{Code: ourochronos.Oracle},
		ourochronos.Lit{Value: 15}, ourochronos.Op{Code: ourochronos.Lt},

		ourochronos.Lit{Value: 15},
		ourochronos.Lit{Value: uint64(candidate)}, ourochronos.Op{Code: ourochronos.Oracle},
		ourochronos.Op{Code: ourochronos.Mod},
		ourochronos.Lit{Value: 0}, ourochronos.Op{Code: ourochronos.Eq},

		ourochronos.Op{Code: ourochronos.And},
		ourochronos.Op{Code: ourochronos.And},
	}
	propagate := []ourochronos.Stmt{
		ourochronos.Lit{Value: uint64(candidate)}, ourochronos.Op{Code: ourochronos.Oracle},
		ourochronos.Lit{Value: uint64(candidate)}, ourochronos.Op{Code: ourochronos.Prophecy},
	}
	perturb := []ourochronos.Stmt{
		ourochronos.Lit{Value: uint64(candidate)}, ourochronos.Op{Code: ourochronos.Oracle},
		ourochronos.Lit{Value: 1}, ourochronos.Op{Code: ourochronos.Add},
		ourochronos.Lit{Value: uint64(candidate)}, ourochronos.Op{Code: ourochronos.Prophecy},
	}

	p := ourochronos.NewProgram()
	p.Append(check...)
	p.Append(ourochronos.If{Then: propagate, Else: perturb})
	p.Append(ourochronos.Op{Code: ourochronos.Halt})
	return p
}

// Test05_PrimalityWitness exercises spec §8 scenario 5: Diagnostic mode's
// seed search must land on a genuine factor of 15.
func Test05_PrimalityWitness(t *testing.T) {
	t.Log("=== Test 05: Witness for Primality of 15 ===")

	program := primalityWitnessProgram()
	cfg := ourochronos.DefaultConfig().WithMode(ourochronos.Diagnostic)
	res, err := ourochronos.Execute(context.Background(), program, nil, cfg)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	var factors []uint64
	switch res.Kind {
	case ourochronos.ResultConsistent:
		factors = []uint64{res.Single.Memory.Read(1).Val}
	case ourochronos.ResultMultipleConsistent:
		for _, fp := range res.Multiple {
			factors = append(factors, fp.Memory.Read(1).Val)
		}
	default:
		t.Fatalf("got %s, want Consistent or MultipleConsistent", res.Kind)
	}

	for _, f := range factors {
		if f != 3 && f != 5 {
			t.Fatalf("witness factor %d is not in {3, 5}", f)
		}
	}
}

func satProgram() *ourochronos.Program {
	const x1, x2, x3 uint16 = 0, 1, 2

	read := func(addr uint16) []ourochronos.Stmt {
		return []ourochronos.Stmt{ourochronos.Lit{Value: uint64(addr)}, ourochronos.Op{Code: ourochronos.Oracle}}
	}
	notRead := func(addr uint16) []ourochronos.Stmt {
		return append(read(addr), ourochronos.Op{Code: ourochronos.Not})
	}
	clause := func(a, b []ourochronos.Stmt) []ourochronos.Stmt {
		out := append(append([]ourochronos.Stmt{}, a...), b...)
		return append(out, ourochronos.Op{Code: ourochronos.Or})
	}
	propagate := func(addr uint16) []ourochronos.Stmt {
		return []ourochronos.Stmt{
			ourochronos.Lit{Value: uint64(addr)}, ourochronos.Op{Code: ourochronos.Oracle},
			ourochronos.Lit{Value: uint64(addr)}, ourochronos.Op{Code: ourochronos.Prophecy},
		}
	}
	flip := func(addr uint16) []ourochronos.Stmt {
		return []ourochronos.Stmt{
			ourochronos.Lit{Value: uint64(addr)}, ourochronos.Op{Code: ourochronos.Oracle},
			ourochronos.Op{Code: ourochronos.Not},
			ourochronos.Lit{Value: uint64(addr)}, ourochronos.Op{Code: ourochronos.Prophecy},
		}
	}

	p := ourochronos.NewProgram()
	p.Append(clause(read(x1), read(x2))...)
	p.Append(clause(notRead(x1), read(x3))...)
	p.Append(clause(notRead(x2), notRead(x3))...)
	p.Append(ourochronos.Op{Code: ourochronos.And})
	p.Append(ourochronos.Op{Code: ourochronos.And})

	onSuccess := append(append(propagate(x1), propagate(x2)...), propagate(x3)...)
	onFailure := append(append(flip(x1), propagate(x2)...), propagate(x3)...)
	p.Append(ourochronos.If{Then: onSuccess, Else: onFailure})
	p.Append(ourochronos.Op{Code: ourochronos.Halt})
	return p
}

// Test06_SATEncoding exercises spec §8 scenario 6: the driver must find a
// fixed point satisfying all three clauses, and the SMT encoder must
// compile the same program without error.
func Test06_SATEncoding(t *testing.T) {
	t.Log("=== Test 06: SAT Encoding ===")

	program := satProgram()
	cfg := ourochronos.DefaultConfig().WithMode(ourochronos.Diagnostic)
	res, err := ourochronos.Execute(context.Background(), program, nil, cfg)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if res.Kind != ourochronos.ResultConsistent && res.Kind != ourochronos.ResultMultipleConsistent {
		t.Fatalf("got %s, want Consistent or MultipleConsistent", res.Kind)
	}

	mem := res.Single.Memory
	if res.Kind == ourochronos.ResultMultipleConsistent {
		mem = res.Multiple[0].Memory
	}
	x1, x2, x3 := mem.Read(0).Val != 0, mem.Read(1).Val != 0, mem.Read(2).Val != 0
	if !(x1 || x2) {
		t.Fatalf("clause (x1 ∨ x2) unsatisfied: x1=%v x2=%v", x1, x2)
	}
	if !(!x1 || x3) {
		t.Fatalf("clause (¬x1 ∨ x3) unsatisfied: x1=%v x3=%v", x1, x3)
	}
	if !(!x2 || !x3) {
		t.Fatalf("clause (¬x2 ∨ ¬x3) unsatisfied: x2=%v x3=%v", x2, x3)
	}

	enc := ourochronos.NewSmtEncoder(16)
	if _, err := enc.Encode(program); err != nil {
		t.Fatalf("SMT encode failed: %v", err)
	}
}
