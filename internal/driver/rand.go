package driver

import (
	"encoding/binary"
	mrand "math/rand/v2"

	"golang.org/x/crypto/sha3"

	"github.com/averagestudentdontfail/Ourochronos/internal/memory"
	"github.com/averagestudentdontfail/Ourochronos/internal/value"
)

// newRNG derives a ChaCha8-backed *rand.Rand from a u64 seed, expanding it
// to the 32-byte key ChaCha8 requires via one sha3 pass — the same
// transcript-to-randomness role the teacher's utils.Channel plays, without
// a transcript to absorb into.
func newRNG(seed uint64) *mrand.Rand {
	var in [8]byte
	binary.LittleEndian.PutUint64(in[:], seed)
	key := sha3.Sum256(in[:])
	return mrand.New(mrand.NewChaCha8(key))
}

// perturb flips one random cell of anamnesis by adding a random non-zero
// delta modulo 2^64 (spec §4.4 "Perturbation").
func perturb(anamnesis *memory.Memory, rng *mrand.Rand) uint16 {
	addr := uint16(rng.Uint64() % memory.Size)
	var delta uint64
	for delta == 0 {
		delta = rng.Uint64()
	}
	cur := anamnesis.Read(uint32(addr))
	anamnesis.Write(uint32(addr), value.Value{Val: cur.Val + delta, Prov: cur.Prov})
	return addr
}

// buildInitial materialises an InitialAnamnesis into a concrete Memory.
// cells restricts Random/Seeded fills to the addresses a program actually
// touches (see fillRandom).
func buildInitial(ia InitialAnamnesis, driverSeed uint64, cells []uint16) memory.Memory {
	var m memory.Memory
	switch ia.Kind {
	case Zero:
		return m
	case Random:
		fillRandom(&m, newRNG(driverSeed), cells)
	case Seeded:
		fillRandom(&m, newRNG(ia.Seed), cells)
	case Guided:
		for addr, val := range ia.Guided {
			m.Write(uint32(addr), value.Lit(val))
		}
	}
	return m
}

// fillRandom randomizes only the addresses listed in cells, leaving every
// other cell at zero. A dense fill across all 65,536 cells can never equal
// a sparse program's present (present starts zeroed each epoch and a
// sparse program only ever writes a handful of cells), so a random seed
// with every cell nonzero is not a candidate fixed point for such a
// program. When cells is empty (the static scan in seeds.go found no
// literal-addressed Oracle/Present/Prophecy to anchor on) a small fixed
// low-address range is randomized instead, so Random/Seeded anamnesis is
// never entirely inert.
func fillRandom(m *memory.Memory, rng *mrand.Rand, cells []uint16) {
	if len(cells) == 0 {
		const fallbackCells = 16
		for addr := 0; addr < fallbackCells; addr++ {
			m.Write(uint32(addr), value.Lit(rng.Uint64()))
		}
		return
	}
	for _, addr := range cells {
		m.Write(uint32(addr), value.Lit(rng.Uint64()))
	}
}
