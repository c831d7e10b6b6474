package diagnose

import (
	"github.com/averagestudentdontfail/Ourochronos/internal/causal"
)

// Diagnose applies the witness-hierarchy priority of spec §4.6: a cycle
// witness is reported first if the trajectory repeats; otherwise a
// monotonic divergence witness; otherwise a negative causal loop; otherwise
// a conflict core (multiple cells jointly inconsistent with no single
// negative loop); otherwise Unknown.
func Diagnose(g *causal.Graph, sccs []causal.SCC, histories map[uint16][]uint64, cfg causal.StabilityConfig, cycleDigests []uint64) Diagnosis {
	if period, cellIdx := detectCycle(cycleDigests); period >= 2 {
		cells := make([]uint16, 0, len(histories))
		for addr := range histories {
			cells = append(cells, addr)
		}
		d := Diagnosis{
			Kind:             CycleWitness,
			Period:           period,
			States:           cycleDigests[cellIdx:],
			OscillatingCells: cells,
		}
		d.Class, d.Repair = classifyAndRepair(g, sccs, d)
		return d
	}

	for addr, hist := range histories {
		if causal.ClassifyCell(hist, cfg) == causal.Diverging {
			dir := Ascending
			if len(hist) >= 2 && hist[len(hist)-1] < hist[len(hist)-2] {
				dir = Descending
			}
			d := Diagnosis{
				Kind:          DivergenceWitness,
				DivergentCell: addr,
				Direction:     dir,
			}
			d.Class, d.Repair = classifyAndRepair(g, sccs, d)
			return d
		}
	}

	loops := causal.FindNegativeLoops(g, sccs)
	if len(loops) > 0 {
		loop := loops[0]
		d := Diagnosis{
			Kind:             NegativeLoopWitness,
			NegLoopCells:     loop.Cells,
			NegLoopEdgeChain: loop.EdgeChain,
		}
		d.Class, d.Repair = classifyAndRepair(g, sccs, d)
		return d
	}

	core := causal.TemporalCore(g, sccs)
	if len(core) > 1 {
		d := Diagnosis{
			Kind:          ConflictCoreWitness,
			ConflictCells: core,
			ProofFragment: "",
		}
		d.Class, d.Repair = classifyAndRepair(g, sccs, d)
		return d
	}

	tail := cycleDigests
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return Diagnosis{Kind: UnknownWitness, TrajectoryTail: tail}
}

// detectCycle scans digests from the end for the shortest repeating
// period, returning (period, startIndexOfRepeatingSuffix). 0 means none.
func detectCycle(digests []uint64) (int, int) {
	n := len(digests)
	for period := 1; period <= n/2; period++ {
		start := n - 2*period
		ok := true
		for i := 0; i < period; i++ {
			if digests[start+i] != digests[start+period+i] {
				ok = false
				break
			}
		}
		if ok {
			return period, n - period
		}
	}
	return 0, 0
}

// classifyAndRepair derives the Type I-V classification and a repair
// suggestion from the witness shape (spec §4.6).
func classifyAndRepair(g *causal.Graph, sccs []causal.SCC, d Diagnosis) (Class, Repair) {
	switch d.Kind {
	case NegativeLoopWitness:
		if len(d.NegLoopCells) == 1 {
			return ClassI, Repair{
				Description: "break the single-cell self-negation, e.g. seed the cell from a constant instead of its own prior value",
				Cell:        d.NegLoopCells[0],
				Template:    "PROPHECY <addr> ; NOT",
			}
		}
		if len(d.NegLoopCells) == 2 {
			return ClassII, Repair{
				Description: "the two-cell loop negates an offset relationship; try decoupling one cell's write from the other's read",
				Cell:        d.NegLoopCells[0],
			}
		}
		return ClassIII, Repair{
			Description: "the loop permutes several cells before negating; consider breaking the cycle at its highest-fan-in vertex",
			Cell:        d.NegLoopCells[0],
		}
	case CycleWitness:
		return ClassIV, Repair{
			Description: "the trajectory oscillates; consider a PRESENT-gated branch that only conditions on the first epoch",
		}
	case ConflictCoreWitness:
		return ClassV, Repair{
			Description: "multiple cells are jointly inconsistent with no single negative loop explaining it; inspect the temporal core as a whole",
		}
	default:
		return ClassNone, Repair{}
	}
}
