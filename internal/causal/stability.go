package causal

import "github.com/averagestudentdontfail/Ourochronos/internal/memory"

// StabilityClass classifies one cell's behaviour across a trajectory (spec
// §4.5).
type StabilityClass int

const (
	Unused StabilityClass = iota
	Stable
	Oscillating
	Diverging
	Indeterminate
)

func (c StabilityClass) String() string {
	switch c {
	case Stable:
		return "Stable"
	case Oscillating:
		return "Oscillating"
	case Diverging:
		return "Diverging"
	case Unused:
		return "Unused"
	default:
		return "Indeterminate"
	}
}

// StabilityConfig tunes the classification thresholds of spec §4.5.
type StabilityConfig struct {
	StableEpochs    int // N: unchanged for >= N consecutive epochs
	DivergeWindow   int // W: sliding window width for monotonic divergence
}

// DefaultStabilityConfig returns the spec's defaults (N=3, W=5).
func DefaultStabilityConfig() StabilityConfig {
	return StabilityConfig{StableEpochs: 3, DivergeWindow: 5}
}

// ClassifyCell classifies a single cell's value history across presents,
// one entry per epoch in trajectory order.
func ClassifyCell(history []uint64, cfg StabilityConfig) StabilityClass {
	if len(history) == 0 {
		return Unused
	}
	if allZero(history) {
		return Unused
	}

	if n := cfg.StableEpochs; n > 0 && len(history) >= n {
		tail := history[len(history)-n:]
		stable := true
		for i := 1; i < len(tail); i++ {
			if tail[i] != tail[0] {
				stable = false
				break
			}
		}
		if stable {
			return Stable
		}
	}

	if w := cfg.DivergeWindow; w > 1 && len(history) >= w {
		tail := history[len(history)-w:]
		if isMonotonic(tail) {
			return Diverging
		}
	}

	if period := findPeriod(history); period >= 2 {
		return Oscillating
	}

	return Indeterminate
}

func allZero(h []uint64) bool {
	for _, v := range h {
		if v != 0 {
			return false
		}
	}
	return true
}

func isMonotonic(tail []uint64) bool {
	ascending, descending := true, true
	for i := 1; i < len(tail); i++ {
		if tail[i] <= tail[i-1] {
			ascending = false
		}
		if tail[i] >= tail[i-1] {
			descending = false
		}
	}
	return ascending || descending
}

// findPeriod returns the smallest period k>=2 such that the trailing
// history repeats with that period, or 0 if none is found.
func findPeriod(history []uint64) int {
	n := len(history)
	for k := 2; k <= n/2; k++ {
		periodic := true
		for i := 0; i < n-k; i++ {
			if history[n-1-i] != history[n-1-i-k] {
				periodic = false
				break
			}
		}
		if periodic {
			return k
		}
	}
	return 0
}

// CellHistories extracts, for every address touched by any write, its
// value across a sequence of present-memory snapshots (one per epoch, in
// trajectory order). Addresses whose entire history is zero are omitted,
// matching ClassifyCell's Unused verdict on such cells.
func CellHistories(presents []memory.Memory, touched []uint16) map[uint16][]uint64 {
	histories := make(map[uint16][]uint64, len(touched))
	for _, addr := range touched {
		hist := make([]uint64, len(presents))
		nonzero := false
		for i := range presents {
			v := presents[i].Read(uint32(addr))
			hist[i] = v.Val
			if v.Val != 0 {
				nonzero = true
			}
		}
		if nonzero {
			histories[addr] = hist
		}
	}
	return histories
}
