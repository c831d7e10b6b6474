// Package memory implements the two flat 65,536-cell memories an epoch
// reads from and writes to: anamnesis (read-only) and present (mutable).
package memory

import "github.com/averagestudentdontfail/Ourochronos/internal/value"

// Size is the number of addressable cells (16-bit address space).
const Size = 65536

// Memory is a total function from 16-bit addresses to Value. Address
// arithmetic is taken modulo Size; an undefined cell reads as
// Value{0, Bottom}.
type Memory struct {
	cells [Size]value.Value
}

func index(addr uint32) uint16 {
	return uint16(addr % Size)
}

// Read returns the value stored at addr (mod Size).
func (m *Memory) Read(addr uint32) value.Value {
	return m.cells[index(addr)]
}

// Write stores v at addr (mod Size).
func (m *Memory) Write(addr uint32, v value.Value) {
	m.cells[index(addr)] = v
}

// Snapshot returns an immutable copy suitable for an EpochRecord.
func (m *Memory) Snapshot() Memory {
	return *m
}

// EqualValues reports whether two memories agree on every cell's Val,
// ignoring provenance. This is the fixed-point equality of spec §4.4:
// present = anamnesis iff EqualValues(present, anamnesis).
func EqualValues(a, b *Memory) bool {
	for i := 0; i < Size; i++ {
		if a.cells[i].Val != b.cells[i].Val {
			return false
		}
	}
	return true
}

// ForEach calls fn for every cell address and its value, in address order.
func (m *Memory) ForEach(fn func(addr uint16, v value.Value)) {
	for i := 0; i < Size; i++ {
		fn(uint16(i), m.cells[i])
	}
}

// Anamnesis is a read-only view over a Memory, immutable during an epoch.
type Anamnesis struct {
	mem Memory
}

// NewAnamnesis wraps a memory snapshot as an Anamnesis.
func NewAnamnesis(snapshot Memory) Anamnesis {
	return Anamnesis{mem: snapshot}
}

// Read returns the value stored at addr (mod Size).
func (a Anamnesis) Read(addr uint32) value.Value {
	return a.mem.Read(addr)
}

// Memory exposes the underlying snapshot, e.g. for hashing or diffing.
func (a Anamnesis) Memory() *Memory {
	return &a.mem
}

// Present is a mutable memory written during an epoch. It tracks, per
// cell, the provenance last recorded there within the current epoch so
// that reads of present inherit it (spec §3).
type Present struct {
	mem Memory
}

// NewPresent returns a freshly zeroed Present (all cells Value{0, Bottom}).
func NewPresent() *Present {
	return &Present{}
}

// Read returns the value last written to addr this epoch, or the zero
// value if addr was never written.
func (p *Present) Read(addr uint32) value.Value {
	return p.mem.Read(addr)
}

// Write records v's value and provenance atomically into addr.
func (p *Present) Write(addr uint32, v value.Value) {
	p.mem.Write(addr, v)
}

// Snapshot returns an immutable copy of the present memory.
func (p *Present) Snapshot() Memory {
	return p.mem.Snapshot()
}
