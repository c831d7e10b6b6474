// Package ourochronos is the public entry point: Execute runs a program
// under the Fixed-Point Driver and returns one of the RunResult variants
// of spec §6. The surface types here are aliases over the internal
// packages that do the actual work, so callers never import internal/*
// directly.
package ourochronos

import (
	"context"

	"github.com/averagestudentdontfail/Ourochronos/internal/causal"
	"github.com/averagestudentdontfail/Ourochronos/internal/diagnose"
	"github.com/averagestudentdontfail/Ourochronos/internal/driver"
	"github.com/averagestudentdontfail/Ourochronos/internal/vm"
)

// Program, statement, and opcode types, re-exported from internal/vm so
// callers can build programs without importing an internal package.
type (
	Program = vm.Program
	Stmt    = vm.Stmt
	Lit     = vm.Lit
	Op      = vm.Op
	If      = vm.If
	While   = vm.While
	Opcode  = vm.Opcode
)

// NewProgram returns an empty program.
func NewProgram() *Program { return vm.NewProgram() }

// Opcode constants, re-exported from internal/vm's opcode table (spec §6).
const (
	Nop   = vm.Nop
	Pop   = vm.Pop
	Dup   = vm.Dup
	Swap  = vm.Swap
	Over  = vm.Over
	Rot   = vm.Rot
	Depth = vm.Depth

	Add = vm.Add
	Sub = vm.Sub
	Mul = vm.Mul
	Div = vm.Div
	Mod = vm.Mod
	Not = vm.Not
	And = vm.And
	Or  = vm.Or
	Xor = vm.Xor

	Eq  = vm.Eq
	Neq = vm.Neq
	Lt  = vm.Lt
	Gt  = vm.Gt
	Lte = vm.Lte
	Gte = vm.Gte

	Oracle   = vm.Oracle
	Prophecy = vm.Prophecy
	Present  = vm.Present
	Paradox  = vm.Paradox

	Input  = vm.Input
	Output = vm.Output
	Halt   = vm.Halt
)

// Mode, InitialAnamnesis, and Config mirror spec §6's runtime interface.
type (
	Mode             = driver.Mode
	InitialAnamnesis = driver.InitialAnamnesis
	Config           = driver.Config
)

const (
	Pure       = driver.Pure
	Bounded    = driver.Bounded
	Diagnostic = driver.Diagnostic
)

// DefaultConfig returns Bounded mode with sensible epoch/perturbation
// budgets (spec §6 Config defaults).
func DefaultConfig() Config { return driver.DefaultConfig() }

// ZeroAnamnesis, RandomAnamnesis, SeededAnamnesis, and GuidedAnamnesis
// construct the four InitialAnamnesis variants of spec §6.
func ZeroAnamnesis() InitialAnamnesis { return driver.ZeroAnamnesis() }
func RandomAnamnesis() InitialAnamnesis { return driver.RandomAnamnesis() }
func SeededAnamnesis(seed uint64) InitialAnamnesis { return driver.SeededAnamnesis(seed) }
func GuidedAnamnesis(values map[uint16]uint64) InitialAnamnesis { return driver.GuidedAnamnesis(values) }

// ResultKind, RunResult, FixedPoint, and Diagnosis mirror spec §6's
// RunResult variants and §4.6's Diagnosis.
type (
	ResultKind = driver.ResultKind
	RunResult  = driver.RunResult
	FixedPoint = driver.FixedPoint
	Diagnosis  = diagnose.Diagnosis
	Graph      = causal.Graph
)

const (
	ResultConsistent         = driver.ResultConsistent
	ResultMultipleConsistent = driver.ResultMultipleConsistent
	ResultCyclic             = driver.ResultCyclic
	ResultDivergent          = driver.ResultDivergent
	ResultParadox            = driver.ResultParadox
	ResultTimeout            = driver.ResultTimeout
	ResultError              = driver.ResultError
)

// Execute runs program against input under config, returning the driver's
// verdict (spec §6 execute(program, input, config) -> RunResult).
func Execute(ctx context.Context, program *Program, input []uint64, config Config) (RunResult, error) {
	d, err := driver.NewDriver(program, config)
	if err != nil {
		return RunResult{}, &Error{Code: ErrInvalidConfig, Message: "invalid driver configuration", Cause: err}
	}
	return d.Run(ctx, input), nil
}
