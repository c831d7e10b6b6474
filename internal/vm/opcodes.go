// Package vm implements the stack-machine epoch executor: given a program,
// an anamnesis memory, and an input stream, it runs one epoch to Halted,
// Paradox, Timeout, or Error and returns the resulting EpochRecord.
package vm

import "fmt"

// Opcode enumerates every opcode of spec §6's surface grammar.
type Opcode int

const (
	Nop Opcode = iota
	Pop
	Dup
	Swap
	Over
	Rot
	Depth

	Add
	Sub
	Mul
	Div
	Mod
	Not
	And
	Or
	Xor

	Eq
	Neq
	Lt
	Gt
	Lte
	Gte

	Oracle
	Prophecy
	Present
	Paradox

	Input
	Output
	Halt
)

// OpcodeInfo mirrors the teacher's InstructionInfo: a table-driven
// description of each opcode's name, static stack effect, and side-effect
// class, read through String, StackEffect, and Effect.
type OpcodeInfo struct {
	Name        string
	StackEffect int // positive = net pushes, negative = net pops
	Effect      StmtEffect
}

// StmtEffect is the per-statement side-effect descriptor of spec §3.
type StmtEffect int

const (
	Pure StmtEffect = iota
	ReadsAnamnesis
	WritesPresent
	ReadsPresent
)

var opcodeTable = map[Opcode]OpcodeInfo{
	Nop:   {"NOP", 0, Pure},
	Pop:   {"POP", -1, Pure},
	Dup:   {"DUP", 1, Pure},
	Swap:  {"SWAP", 0, Pure},
	Over:  {"OVER", 1, Pure},
	Rot:   {"ROT", 0, Pure},
	Depth: {"DEPTH", 1, Pure},

	Add: {"ADD", -1, Pure},
	Sub: {"SUB", -1, Pure},
	Mul: {"MUL", -1, Pure},
	Div: {"DIV", -1, Pure},
	Mod: {"MOD", -1, Pure},
	Not: {"NOT", 0, Pure},
	And: {"AND", -1, Pure},
	Or:  {"OR", -1, Pure},
	Xor: {"XOR", -1, Pure},

	Eq:  {"EQ", -1, Pure},
	Neq: {"NEQ", -1, Pure},
	Lt:  {"LT", -1, Pure},
	Gt:  {"GT", -1, Pure},
	Lte: {"LTE", -1, Pure},
	Gte: {"GTE", -1, Pure},

	Oracle:   {"ORACLE", 0, ReadsAnamnesis},
	Prophecy: {"PROPHECY", -2, WritesPresent},
	Present:  {"PRESENT", 0, ReadsPresent},
	Paradox:  {"PARADOX", 0, Pure},

	Input:  {"INPUT", 1, Pure},
	Output: {"OUTPUT", -1, Pure},
	Halt:   {"HALT", 0, Pure},
}

// String returns the opcode's surface-syntax mnemonic.
func (o Opcode) String() string {
	if info, ok := opcodeTable[o]; ok {
		return info.Name
	}
	return fmt.Sprintf("unknown(%d)", int(o))
}

// Info returns the opcode's table entry, or an error for an unknown opcode.
func (o Opcode) Info() (OpcodeInfo, error) {
	info, ok := opcodeTable[o]
	if !ok {
		return OpcodeInfo{}, fmt.Errorf("unknown opcode: %d", int(o))
	}
	return info, nil
}

// StackEffect returns the opcode's static stack-depth delta.
func (o Opcode) StackEffect() int {
	info, err := o.Info()
	if err != nil {
		return 0
	}
	return info.StackEffect
}

// Effect returns the opcode's side-effect classification.
func (o Opcode) Effect() StmtEffect {
	info, err := o.Info()
	if err != nil {
		return Pure
	}
	return info.Effect
}

// mnemonicToOpcode supports parsing surface syntax tokens into Opcodes.
var mnemonicToOpcode = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeTable))
	for op, info := range opcodeTable {
		m[info.Name] = op
	}
	return m
}()

// OpcodeByMnemonic looks up an opcode by its surface-syntax name.
func OpcodeByMnemonic(name string) (Opcode, bool) {
	op, ok := mnemonicToOpcode[name]
	return op, ok
}
