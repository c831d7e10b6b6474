// Package driver implements the Fixed-Point Driver: the orchestration loop
// that runs a program across repeated epochs until it converges, cycles,
// diverges, or exhausts its budget (spec §4.4).
package driver

import "fmt"

// Mode selects one of the three orchestration strategies of spec §4.4.
type Mode int

const (
	Pure Mode = iota
	Bounded
	Diagnostic
)

func (m Mode) String() string {
	switch m {
	case Pure:
		return "Pure"
	case Bounded:
		return "Bounded"
	case Diagnostic:
		return "Diagnostic"
	default:
		return "Unknown"
	}
}

// InitialKind selects how the first epoch's anamnesis is populated.
type InitialKind int

const (
	Zero InitialKind = iota
	Random
	Seeded
	Guided
)

// InitialAnamnesis describes the starting anamnesis (spec §6 runtime
// interface). Seeded carries a u64 seed for a deterministic pseudo-random
// fill; Guided carries an explicit address->value map.
type InitialAnamnesis struct {
	Kind   InitialKind
	Seed   uint64
	Guided map[uint16]uint64
}

// ZeroAnamnesis is the all-zero starting anamnesis.
func ZeroAnamnesis() InitialAnamnesis { return InitialAnamnesis{Kind: Zero} }

// RandomAnamnesis fills anamnesis from the driver's own configured seed.
func RandomAnamnesis() InitialAnamnesis { return InitialAnamnesis{Kind: Random} }

// SeededAnamnesis fills anamnesis deterministically from seed, independent
// of the driver's perturbation seed.
func SeededAnamnesis(seed uint64) InitialAnamnesis {
	return InitialAnamnesis{Kind: Seeded, Seed: seed}
}

// GuidedAnamnesis starts from an explicit partial assignment; unlisted
// cells remain zero.
func GuidedAnamnesis(values map[uint16]uint64) InitialAnamnesis {
	return InitialAnamnesis{Kind: Guided, Guided: values}
}

// Config configures one driver invocation (spec §6 Config fields).
type Config struct {
	Mode              Mode
	MaxEpochs         uint64 // 0 = unbounded (only meaningful for Pure)
	MaxEpochSteps     uint64 // per-epoch instruction budget, 0 = vm.DefaultStepBudget
	MaxPerturbations  uint64 // 0 = unbounded
	Seed              uint64
	InitialAnamnesis  InitialAnamnesis
	CaptureTrace      bool
	Workers           uint32
	DiagnosticSeeds   uint32 // number of seeds Diagnostic mode enumerates beyond the fixed set
	MaxTraceEntries   uint64 // per-trajectory trace cap (spec §5 "memory discipline")
}

// DefaultConfig returns the spec's sensible defaults: Bounded mode, a
// generous but finite epoch budget, single-threaded.
func DefaultConfig() Config {
	return Config{
		Mode:             Bounded,
		MaxEpochs:        1000,
		MaxEpochSteps:    0,
		MaxPerturbations: 1000,
		Seed:             1,
		InitialAnamnesis: ZeroAnamnesis(),
		Workers:          1,
		DiagnosticSeeds:  8,
		MaxTraceEntries:  1_000_000,
	}
}

// WithMode returns a copy of cfg with Mode set, matching the teacher's
// fluent Config.With* builder in utils/config.go.
func (c Config) WithMode(m Mode) Config { c.Mode = m; return c }

// WithMaxEpochs returns a copy of cfg with MaxEpochs set.
func (c Config) WithMaxEpochs(n uint64) Config { c.MaxEpochs = n; return c }

// WithSeed returns a copy of cfg with Seed set.
func (c Config) WithSeed(s uint64) Config { c.Seed = s; return c }

// WithInitialAnamnesis returns a copy of cfg with InitialAnamnesis set.
func (c Config) WithInitialAnamnesis(a InitialAnamnesis) Config { c.InitialAnamnesis = a; return c }

// WithCaptureTrace returns a copy of cfg with CaptureTrace set.
func (c Config) WithCaptureTrace(b bool) Config { c.CaptureTrace = b; return c }

// WithWorkers returns a copy of cfg with Workers set.
func (c Config) WithWorkers(n uint32) Config { c.Workers = n; return c }

// Validate checks cfg for internal consistency, mirroring the teacher's
// Config.Validate.
func (c Config) Validate() error {
	if c.Mode == Bounded && c.MaxEpochs == 0 {
		return fmt.Errorf("driver: Bounded mode requires MaxEpochs > 0")
	}
	if c.Workers == 0 {
		return fmt.Errorf("driver: Workers must be >= 1")
	}
	if c.InitialAnamnesis.Kind == Guided && c.InitialAnamnesis.Guided == nil {
		return fmt.Errorf("driver: Guided initial anamnesis requires a non-nil map")
	}
	return nil
}

// Clone returns a deep-enough copy of cfg safe to hand to a worker
// goroutine (the Guided map is shared read-only, matching the teacher's
// Config.Clone which shares immutable sub-structures).
func (c Config) Clone() Config {
	return c
}
