package driver

import (
	"context"
	"sync"

	"github.com/averagestudentdontfail/Ourochronos/internal/causal"
	"github.com/averagestudentdontfail/Ourochronos/internal/diagnose"
	"github.com/averagestudentdontfail/Ourochronos/internal/memory"
	"github.com/averagestudentdontfail/Ourochronos/internal/vm"
)

// Driver orchestrates repeated epochs of program against one of the three
// modes of spec §4.4. It holds only its configuration and program, no
// package-level mutable state (spec §9 "no global state").
type Driver struct {
	program *vm.Program
	cfg     Config
	cells   []uint16 // addresses program touches, per seeds.go's static scan
}

// NewDriver validates cfg and returns a Driver ready to Run.
func NewDriver(program *vm.Program, cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Driver{program: program, cfg: cfg, cells: involvedCells(program)}, nil
}

// Run executes program against input under the driver's configured mode
// (spec §6 execute(program, input, config) -> RunResult).
func (d *Driver) Run(ctx context.Context, input []uint64) RunResult {
	switch d.cfg.Mode {
	case Diagnostic:
		return d.runDiagnostic(ctx, input)
	default:
		initial := buildInitial(d.cfg.InitialAnamnesis, d.cfg.Seed, d.cells)
		return d.runSingleSeed(ctx, input, d.cfg.Seed, initial)
	}
}

// runEpoch runs one epoch and records it into traj, returning the record.
func (d *Driver) runEpoch(anamnesis memory.Memory, input []uint64, traj *Trajectory) *vm.EpochRecord {
	vmCfg := vm.Config{StepBudget: d.cfg.MaxEpochSteps, CaptureTrace: d.cfg.CaptureTrace}
	rec := vm.Run(d.program, memory.NewAnamnesis(anamnesis), input, vmCfg)
	present := rec.FinalPresent
	traj.append(EpochSample{
		Anamnesis: anamnesis,
		Present:   present,
		Writes:    rec.Writes,
		Status:    rec.Status,
		Digest:    digestMemory(&present),
	})
	if d.cfg.MaxTraceEntries > 0 && uint64(len(traj.Epochs)) > d.cfg.MaxTraceEntries {
		keep := int(d.cfg.MaxTraceEntries)
		traj.Epochs = traj.Epochs[len(traj.Epochs)-keep:]
	}
	return rec
}

// runSingleSeed drives Pure or Bounded mode from one initial anamnesis,
// sharing the convergence/perturbation-construction logic spec §4.4
// assigns to both. Pure and Bounded part ways on two points, both gated
// below on d.cfg.Mode: Pure has no epoch cap, and Pure never surrenders —
// a detected cycle or an exhausted perturbation budget perturbs and keeps
// going instead of returning Cyclic/Paradox ("termination is not
// guaranteed" per spec §4.4).
func (d *Driver) runSingleSeed(ctx context.Context, input []uint64, rngSeed uint64, initial memory.Memory) RunResult {
	traj := &Trajectory{}
	rng := newRNG(rngSeed)
	seenHashes := make(map[uint64]bool)

	anamnesis := initial
	var epoch uint64
	var perturbations uint64

	for {
		select {
		case <-ctx.Done():
			return RunResult{Kind: ResultTimeout, PartialTrajectory: traj}
		default:
		}

		if d.cfg.Mode == Bounded && d.cfg.MaxEpochs > 0 && epoch >= d.cfg.MaxEpochs {
			return d.diagnoseFailure(traj, ResultTimeout)
		}

		rec := d.runEpoch(anamnesis, input, traj)
		epoch++

		switch rec.Status {
		case vm.Timeout:
			return RunResult{Kind: ResultTimeout, PartialTrajectory: traj}

		case vm.ErrorStatus:
			return RunResult{Kind: ResultError, ErrorKind: rec.ErrorKind.String(), ErrorMessage: "epoch terminated with an error"}

		case vm.ParadoxStatus:
			if d.perturbationsExhausted(perturbations) {
				return d.diagnoseFailure(traj, ResultParadox)
			}
			perturb(&anamnesis, rng)
			perturbations++
			continue

		case vm.Halted:
			if memory.EqualValues(&rec.FinalPresent, &anamnesis) {
				return RunResult{Kind: ResultConsistent, Single: FixedPoint{
					Output: rec.Output,
					Memory: rec.FinalPresent,
					Epochs: epoch,
				}}
			}
			digest := traj.Epochs[len(traj.Epochs)-1].Digest
			if seenHashes[digest] {
				if d.cfg.Mode != Pure {
					return d.diagnoseFailure(traj, ResultCyclic)
				}
				anamnesis = rec.FinalPresent
				perturb(&anamnesis, rng)
				perturbations++
				continue
			}
			seenHashes[digest] = true
			anamnesis = rec.FinalPresent
			continue
		}
	}
}

// perturbationsExhausted reports whether the run has used up its
// perturbation budget. Pure mode has none — it is never exhausted, and
// MaxPerturbations (a Bounded-mode knob) is ignored for it.
func (d *Driver) perturbationsExhausted(count uint64) bool {
	if d.cfg.Mode == Pure {
		return false
	}
	return d.cfg.MaxPerturbations > 0 && count >= d.cfg.MaxPerturbations
}

// diagnoseFailure builds the causal graph and stability histories for the
// trajectory accumulated so far and runs the Paradox Diagnoser, tagging
// the result with the caller's best guess at result kind (the diagnoser's
// witness kind, once known, is authoritative for the Diagnosis payload
// itself — spec §4.6 "the diagnoser is authoritative once it produces a
// witness").
func (d *Driver) diagnoseFailure(traj *Trajectory, fallback ResultKind) RunResult {
	g, sccs := traj.causalGraph()
	touched := traj.touchedAddrs()
	histories := causal.CellHistories(traj.presents(), touched)
	cfg := causal.DefaultStabilityConfig()
	digests := traj.Digests()

	diag := diagnose.Diagnose(g, sccs, histories, cfg, digests)

	kind := fallback
	switch diag.Kind {
	case diagnose.CycleWitness:
		kind = ResultCyclic
	case diagnose.DivergenceWitness:
		kind = ResultDivergent
	case diagnose.NegativeLoopWitness, diagnose.ConflictCoreWitness:
		kind = ResultParadox
	}
	return RunResult{Kind: kind, Diagnosis: diag, PartialTrajectory: traj}
}

// runDiagnostic enumerates the fixed seed set of spec §4.4 (all-zero,
// single-cell variants, random seeds, structured patterns), runs each
// through runSingleSeed concurrently across d.cfg.Workers goroutines, and
// aggregates the outcomes.
func (d *Driver) runDiagnostic(ctx context.Context, input []uint64) RunResult {
	seeds := d.diagnosticSeeds()

	results := make([]RunResult, len(seeds))
	workers := int(d.cfg.Workers)
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, ia := range seeds {
		i, ia := i, ia
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			sub := d.cfg.Clone()
			sub.Mode = Bounded
			subDriver := &Driver{program: d.program, cfg: sub, cells: d.cells}
			initial := buildInitial(ia, d.cfg.Seed+uint64(i), d.cells)
			results[i] = subDriver.runSingleSeed(ctx, input, d.cfg.Seed+uint64(i), initial)
		}()
	}
	wg.Wait()

	return aggregateDiagnostic(results)
}

// diagnosticSeeds returns the fixed seed set Diagnostic mode explores
// (spec §4.4): all-zero, one single-cell variant per cell the program
// actually touches, two structured patterns over those cells, and
// DiagnosticSeeds random seeds. Enumerating single-cell variants over
// every involved cell (not just a fixed address) is what lets Diagnostic
// mode reach fixed points that require setting a cell other than the
// first one touched.
func (d *Driver) diagnosticSeeds() []InitialAnamnesis {
	seeds := []InitialAnamnesis{ZeroAnamnesis()}
	for _, c := range d.cells {
		seeds = append(seeds, GuidedAnamnesis(map[uint16]uint64{c: 1}))
	}
	seeds = append(seeds, structuredSeeds(d.cells)...)
	for i := uint32(0); i < d.cfg.DiagnosticSeeds; i++ {
		seeds = append(seeds, SeededAnamnesis(d.cfg.Seed+uint64(i)+1000))
	}
	return seeds
}

// aggregateDiagnostic collects per-seed results into a single RunResult:
// every consistent fixed point found, deduplicated by memory digest, plus
// the first non-consistent diagnosis encountered if no fixed point
// converged at all.
func aggregateDiagnostic(results []RunResult) RunResult {
	var fixedPoints []FixedPoint
	seen := make(map[uint64]bool)
	var firstFailure *RunResult

	for i := range results {
		r := results[i]
		if r.Kind == ResultConsistent {
			d := digestMemory(&r.Single.Memory)
			if !seen[d] {
				seen[d] = true
				fixedPoints = append(fixedPoints, r.Single)
			}
			continue
		}
		if firstFailure == nil {
			firstFailure = &results[i]
		}
	}

	switch {
	case len(fixedPoints) == 1:
		return RunResult{Kind: ResultConsistent, Single: fixedPoints[0]}
	case len(fixedPoints) > 1:
		return RunResult{Kind: ResultMultipleConsistent, Multiple: fixedPoints}
	case firstFailure != nil:
		return *firstFailure
	default:
		return RunResult{Kind: ResultError, ErrorKind: "NoSeeds", ErrorMessage: "diagnostic mode explored no seeds"}
	}
}
