package vm

import (
	"encoding/binary"
	"fmt"
)

// Byte opcodes for the optional persistent bytecode form of spec §6.
// Structured IF/WHILE in the AST compile down to JMP/JZ/JNZ here; the AST
// remains the authoritative program form.
const (
	bcNop      byte = 0x00
	bcHalt     byte = 0x01
	bcParadox  byte = 0x02
	bcPushImm  byte = 0x10
	bcDup      byte = 0x11
	bcDrop     byte = 0x12
	bcSwap     byte = 0x13
	bcOver     byte = 0x14
	bcRot      byte = 0x15
	bcPRead    byte = 0x20
	bcPWrite   byte = 0x21
	bcARead    byte = 0x22
	bcAdd      byte = 0x30
	bcSub      byte = 0x31
	bcMul      byte = 0x32
	bcDiv      byte = 0x33
	bcMod      byte = 0x34
	bcAnd      byte = 0x35
	bcOr       byte = 0x36
	bcXorOp    byte = 0x37
	bcNot      byte = 0x38
	bcBNot     byte = 0x39
	bcNeg      byte = 0x3A
	bcEq       byte = 0x3B
	bcLt       byte = 0x3C
	bcGt       byte = 0x3D
	bcJmp      byte = 0x40
	bcJz       byte = 0x41
	bcJnz      byte = 0x42
	bcInput    byte = 0x50
	bcOutput   byte = 0x51
	bcDepth    byte = 0x60
)

// BInstr is one decoded bytecode instruction: an opcode byte plus, for
// PUSH_IMM, a u64 immediate, or for JMP/JZ/JNZ, a u32 target offset.
type BInstr struct {
	Op    byte
	Imm64 uint64
	Imm32 uint32
}

// Bytecode is a flat, linear instruction sequence — the persistent
// rendering of a Program's structured control flow as explicit jumps.
type Bytecode struct {
	Instrs []BInstr
}

func hasU64Imm(op byte) bool { return op == bcPushImm }
func hasU32Imm(op byte) bool { return op == bcJmp || op == bcJz || op == bcJnz }

// Bytes encodes the bytecode to its canonical byte-string form.
func (bc *Bytecode) Bytes() []byte {
	out := make([]byte, 0, len(bc.Instrs)*2)
	for _, in := range bc.Instrs {
		out = append(out, in.Op)
		switch {
		case hasU64Imm(in.Op):
			var buf [8]byte
			binary.LittleEndian.PutUint64(buf[:], in.Imm64)
			out = append(out, buf[:]...)
		case hasU32Imm(in.Op):
			var buf [4]byte
			binary.LittleEndian.PutUint32(buf[:], in.Imm32)
			out = append(out, buf[:]...)
		}
	}
	return out
}

// DecodeBytecode parses a canonical byte string into a Bytecode value.
func DecodeBytecode(data []byte) (*Bytecode, error) {
	bc := &Bytecode{}
	i := 0
	for i < len(data) {
		op := data[i]
		i++
		in := BInstr{Op: op}
		switch {
		case hasU64Imm(op):
			if i+8 > len(data) {
				return nil, fmt.Errorf("truncated u64 immediate for opcode 0x%02x at offset %d", op, i-1)
			}
			in.Imm64 = binary.LittleEndian.Uint64(data[i : i+8])
			i += 8
		case hasU32Imm(op):
			if i+4 > len(data) {
				return nil, fmt.Errorf("truncated u32 immediate for opcode 0x%02x at offset %d", op, i-1)
			}
			in.Imm32 = binary.LittleEndian.Uint32(data[i : i+4])
			i += 4
		}
		bc.Instrs = append(bc.Instrs, in)
	}
	return bc, nil
}

// Compile lowers an AST Program to its bytecode form, compiling structured
// If/While into JMP/JZ/JNZ the way spec §6 specifies.
func Compile(p *Program) *Bytecode {
	bc := &Bytecode{}
	compileBlock(bc, p.Stmts)
	bc.Instrs = append(bc.Instrs, BInstr{Op: bcHalt})
	return bc
}

func compileBlock(bc *Bytecode, stmts []Stmt) {
	for _, s := range stmts {
		compileStmt(bc, s)
	}
}

func compileStmt(bc *Bytecode, stmt Stmt) {
	switch s := stmt.(type) {
	case Lit:
		bc.Instrs = append(bc.Instrs, BInstr{Op: bcPushImm, Imm64: s.Value})

	case Op:
		// NEQ/LTE/GTE have no dedicated byte opcode in spec §6's table;
		// they lower to the negation of EQ/GT/LT, matching that table's
		// smaller 14-opcode arithmetic/comparison group.
		switch s.Code {
		case Neq:
			bc.Instrs = append(bc.Instrs, BInstr{Op: bcEq}, BInstr{Op: bcNot})
		case Lte:
			bc.Instrs = append(bc.Instrs, BInstr{Op: bcGt}, BInstr{Op: bcNot})
		case Gte:
			bc.Instrs = append(bc.Instrs, BInstr{Op: bcLt}, BInstr{Op: bcNot})
		default:
			bc.Instrs = append(bc.Instrs, BInstr{Op: opcodeToByte(s.Code)})
		}

	case If:
		// JZ else_target; then...; JMP end_target; else_target: else...; end_target:
		jz := bc.placeholder(bcJz)
		compileBlock(bc, s.Then)
		jmp := bc.placeholder(bcJmp)
		bc.patch(jz, len(bc.Instrs))
		compileBlock(bc, s.Else)
		bc.patch(jmp, len(bc.Instrs))

	case While:
		// cond_target: cond...; JZ end_target; body...; JMP cond_target; end_target:
		condTarget := len(bc.Instrs)
		compileBlock(bc, s.Cond)
		jz := bc.placeholder(bcJz)
		compileBlock(bc, s.Body)
		bc.Instrs = append(bc.Instrs, BInstr{Op: bcJmp, Imm32: uint32(condTarget)})
		bc.patch(jz, len(bc.Instrs))
	}
}

// placeholder appends an instruction with a not-yet-known jump target and
// returns its index for a later patch call.
func (bc *Bytecode) placeholder(op byte) int {
	bc.Instrs = append(bc.Instrs, BInstr{Op: op})
	return len(bc.Instrs) - 1
}

func (bc *Bytecode) patch(idx, target int) {
	bc.Instrs[idx].Imm32 = uint32(target)
}

func opcodeToByte(op Opcode) byte {
	switch op {
	case Nop:
		return bcNop
	case Pop:
		return bcDrop
	case Dup:
		return bcDup
	case Swap:
		return bcSwap
	case Over:
		return bcOver
	case Rot:
		return bcRot
	case Depth:
		return bcDepth
	case Add:
		return bcAdd
	case Sub:
		return bcSub
	case Mul:
		return bcMul
	case Div:
		return bcDiv
	case Mod:
		return bcMod
	case Not:
		return bcNot
	case And:
		return bcAnd
	case Or:
		return bcOr
	case Xor:
		return bcXorOp
	case Eq:
		return bcEq
	case Lt:
		return bcLt
	case Gt:
		return bcGt
	case Oracle:
		return bcARead
	case Prophecy:
		return bcPWrite
	case Present:
		return bcPRead
	case Paradox:
		return bcParadox
	case Input:
		return bcInput
	case Output:
		return bcOutput
	case Halt:
		return bcHalt
	default:
		return bcNop
	}
}
