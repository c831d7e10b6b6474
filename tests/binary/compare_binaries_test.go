package binary_test

import (
	"bytes"
	"testing"

	"github.com/averagestudentdontfail/Ourochronos/internal/vm"
)

// roundTrip encodes, decodes, and re-encodes p's compiled bytecode,
// returning both byte strings for comparison (spec §8 "Compile(Decompile(
// bytecode)) = bytecode" property, applied at the canonical byte-string
// level since DecodeBytecode/Bytes is our bytecode form's round trip).
func roundTrip(t *testing.T, p *vm.Program) ([]byte, []byte) {
	t.Helper()
	original := vm.Compile(p).Bytes()
	decoded, err := vm.DecodeBytecode(original)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return original, decoded.Bytes()
}

func TestRoundTripStraightLineProgram(t *testing.T) {
	p := vm.NewProgram()
	p.Append(vm.Lit{Value: 10}, vm.Lit{Value: 20}, vm.Op{Code: vm.Add}, vm.Op{Code: vm.Output}, vm.Op{Code: vm.Halt})

	original, roundTripped := roundTrip(t, p)
	if !bytes.Equal(original, roundTripped) {
		t.Errorf("round trip mismatch: %x != %x", original, roundTripped)
	}
}

func TestRoundTripOracleProphecyProgram(t *testing.T) {
	p := vm.NewProgram()
	p.Append(
		vm.Lit{Value: 0}, vm.Op{Code: vm.Oracle}, vm.Op{Code: vm.Not},
		vm.Lit{Value: 0}, vm.Op{Code: vm.Prophecy}, vm.Op{Code: vm.Halt},
	)

	original, roundTripped := roundTrip(t, p)
	if !bytes.Equal(original, roundTripped) {
		t.Errorf("round trip mismatch: %x != %x", original, roundTripped)
	}
}

func TestRoundTripIfElseProgram(t *testing.T) {
	p := vm.NewProgram()
	p.Append(
		vm.Lit{Value: 1},
		vm.If{
			Then: []vm.Stmt{vm.Lit{Value: 10}, vm.Op{Code: vm.Output}},
			Else: []vm.Stmt{vm.Lit{Value: 20}, vm.Op{Code: vm.Output}},
		},
		vm.Op{Code: vm.Halt},
	)

	original, roundTripped := roundTrip(t, p)
	if !bytes.Equal(original, roundTripped) {
		t.Errorf("round trip mismatch: %x != %x", original, roundTripped)
	}
}

func TestRoundTripWhileProgram(t *testing.T) {
	p := vm.NewProgram()
	p.Append(
		vm.Lit{Value: 0}, vm.Lit{Value: 0}, vm.Op{Code: vm.Prophecy},
		vm.While{
			Cond: []vm.Stmt{vm.Lit{Value: 0}, vm.Op{Code: vm.Present}, vm.Lit{Value: 3}, vm.Op{Code: vm.Lt}},
			Body: []vm.Stmt{
				vm.Lit{Value: 0}, vm.Op{Code: vm.Present}, vm.Lit{Value: 1}, vm.Op{Code: vm.Add},
				vm.Lit{Value: 0}, vm.Op{Code: vm.Prophecy},
			},
		},
		vm.Op{Code: vm.Halt},
	)

	original, roundTripped := roundTrip(t, p)
	if !bytes.Equal(original, roundTripped) {
		t.Errorf("round trip mismatch: %x != %x", original, roundTripped)
	}
}

func TestRoundTripNeqLteGteLowering(t *testing.T) {
	// Neq/Lte/Gte have no dedicated byte opcode and lower to Eq/Gt/Lt + Not
	// (see vm/bytecode.go compileStmt); confirm that lowering still
	// round-trips byte-for-byte.
	p := vm.NewProgram()
	p.Append(
		vm.Lit{Value: 1}, vm.Lit{Value: 2}, vm.Op{Code: vm.Neq},
		vm.Lit{Value: 1}, vm.Lit{Value: 2}, vm.Op{Code: vm.Lte},
		vm.Lit{Value: 1}, vm.Lit{Value: 2}, vm.Op{Code: vm.Gte},
		vm.Op{Code: vm.Halt},
	)

	original, roundTripped := roundTrip(t, p)
	if !bytes.Equal(original, roundTripped) {
		t.Errorf("round trip mismatch: %x != %x", original, roundTripped)
	}
}
