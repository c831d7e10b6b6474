package driver

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/averagestudentdontfail/Ourochronos/internal/memory"
	"github.com/averagestudentdontfail/Ourochronos/internal/value"
)

// digestMemory hashes every cell's value (not its provenance) into a
// single trajectory digest, continuing the teacher's utils.Channel.hash
// pattern of reducing state through sha3 — here repurposed as a
// present-memory fingerprint rather than a Fiat-Shamir transcript absorb.
// Cell values are folded through an FNV-1a accumulator first so no 512KiB
// byte buffer needs to be materialised per epoch; the accumulator's final
// state is then passed through one sha3.Sum256 so cycle detection still
// rides on the teacher's chosen hash primitive.
func digestMemory(m *memory.Memory) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	m.ForEach(func(addr uint16, v value.Value) {
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v.Val)
		for _, c := range b {
			h ^= uint64(c)
			h *= prime64
		}
	})
	var seed [8]byte
	binary.LittleEndian.PutUint64(seed[:], h)
	sum := sha3.Sum256(seed[:])
	return binary.LittleEndian.Uint64(sum[:8])
}
