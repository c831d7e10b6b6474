package driver

import (
	"sort"

	"github.com/averagestudentdontfail/Ourochronos/internal/memory"
	"github.com/averagestudentdontfail/Ourochronos/internal/vm"
)

// involvedCells statically scans a program for the memory addresses it
// reads or writes through Oracle, Present, and Prophecy, so Diagnostic
// mode's seed set (spec §4.4 "single-cell variants ... structured
// patterns") can be built over the cells a program actually touches
// instead of a hardcoded guess. The address operand of each of those
// three opcodes is always the most recently pushed literal in program
// order; non-literal (computed) addresses are not tracked and simply
// contribute no cell, same as a program with no Oracle/Present/Prophecy
// at all.
func involvedCells(p *vm.Program) []uint16 {
	seen := make(map[uint16]bool)
	var walk func(stmts []vm.Stmt)
	walk = func(stmts []vm.Stmt) {
		var lastLit uint64
		haveLit := false
		for _, s := range stmts {
			switch st := s.(type) {
			case vm.Lit:
				lastLit = st.Value
				haveLit = true
			case vm.Op:
				switch st.Code {
				case vm.Oracle, vm.Present, vm.Prophecy:
					if haveLit && lastLit < memory.Size {
						seen[uint16(lastLit)] = true
					}
				}
				haveLit = false
			case vm.If:
				walk(st.Then)
				walk(st.Else)
				haveLit = false
			case vm.While:
				walk(st.Cond)
				walk(st.Body)
				haveLit = false
			default:
				haveLit = false
			}
		}
	}
	walk(p.Stmts)

	cells := make([]uint16, 0, len(seen))
	for c := range seen {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i] < cells[j] })
	return cells
}

// structuredSeeds builds the "structured patterns" component of spec
// §4.4's Diagnostic seed set: an all-ones assignment over every involved
// cell, and an alternating assignment over them, both plausible
// satisfying shapes for boolean-encoded fixed points (spec §8 scenario
// 6) that neither the all-zero seed nor any single-cell variant reaches.
func structuredSeeds(cells []uint16) []InitialAnamnesis {
	if len(cells) == 0 {
		return nil
	}
	allOnes := make(map[uint16]uint64, len(cells))
	alternating := make(map[uint16]uint64, len(cells))
	for i, c := range cells {
		allOnes[c] = 1
		if i%2 == 0 {
			alternating[c] = 1
		}
	}
	return []InitialAnamnesis{GuidedAnamnesis(allOnes), GuidedAnamnesis(alternating)}
}
