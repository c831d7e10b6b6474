package driver

import (
	"sort"

	"github.com/averagestudentdontfail/Ourochronos/internal/causal"
	"github.com/averagestudentdontfail/Ourochronos/internal/memory"
	"github.com/averagestudentdontfail/Ourochronos/internal/vm"
)

// Trajectory is the ordered sequence of epochs explored by one driver
// search, used both for cycle detection (trajectory hashing) and, on
// failure to converge, as the Paradox Diagnoser's input (spec §4.4/§4.6).
type Trajectory struct {
	Epochs []EpochSample
}

// EpochSample is everything the diagnoser and the result type need from
// one epoch, without retaining full instruction traces unless requested.
type EpochSample struct {
	Anamnesis memory.Memory
	Present   memory.Memory
	Writes    []vm.MemWrite
	Status    vm.Status
	Digest    uint64
}

func (t *Trajectory) append(s EpochSample) {
	t.Epochs = append(t.Epochs, s)
}

// Digests returns the per-epoch trajectory digests in order, used by the
// diagnoser's cycle-period detector.
func (t *Trajectory) Digests() []uint64 {
	out := make([]uint64, len(t.Epochs))
	for i, e := range t.Epochs {
		out[i] = e.Digest
	}
	return out
}

// touchedAddrs returns the sorted, deduplicated set of addresses written
// across the whole trajectory.
func (t *Trajectory) touchedAddrs() []uint16 {
	seen := make(map[uint16]bool)
	for _, e := range t.Epochs {
		for _, w := range e.Writes {
			seen[w.Addr] = true
		}
	}
	out := make([]uint16, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// presents returns just the present-memory snapshots, in epoch order, for
// causal.CellHistories.
func (t *Trajectory) presents() []memory.Memory {
	out := make([]memory.Memory, len(t.Epochs))
	for i, e := range t.Epochs {
		out[i] = e.Present
	}
	return out
}

// causalGraph builds the union causal graph over every write in the
// trajectory, and the SCCs derived from it.
func (t *Trajectory) causalGraph() (*causal.Graph, []causal.SCC) {
	var allWrites []vm.MemWrite
	for _, e := range t.Epochs {
		allWrites = append(allWrites, e.Writes...)
	}
	g := causal.BuildFromWrites(allWrites)
	sccs := causal.Tarjan(g)
	return g, sccs
}
