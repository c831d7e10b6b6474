// Command ourochronos-run drives one program through the Fixed-Point
// Driver from a JSON request on stdin: one JSON object per run, one JSON
// result printed to stdout. Structured programs (If/While) are not expressible
// over this flat wire format — build those with the Go API directly —
// this host covers straight-line instruction sequences.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/averagestudentdontfail/Ourochronos/pkg/ourochronos"
)

// Instruction is one flat program step: either a literal push ("LIT",
// Value set) or a bare opcode mnemonic ("ADD", "ORACLE", ...).
type Instruction struct {
	Op    string `json:"op"`
	Value uint64 `json:"value,omitempty"`
}

// Request is one run request.
type Request struct {
	Instructions []Instruction     `json:"instructions"`
	Input        []uint64          `json:"input"`
	Mode         string            `json:"mode"` // "Pure" | "Bounded" | "Diagnostic"
	MaxEpochs    uint64            `json:"max_epochs"`
	Seed         uint64            `json:"seed"`
	Guided       map[string]uint64 `json:"guided_anamnesis,omitempty"`
}

// Response is one run result, rendered to JSON.
type Response struct {
	Kind      string   `json:"kind"`
	Output    []uint64 `json:"output,omitempty"`
	Epochs    uint64   `json:"epochs,omitempty"`
	Diagnosis string   `json:"diagnosis,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func main() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		fatal("failed to read request line")
	}
	var req Request
	if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
		fatal(fmt.Sprintf("failed to parse request: %v", err))
	}

	program, err := buildProgram(req.Instructions)
	if err != nil {
		fatal(fmt.Sprintf("failed to build program: %v", err))
	}

	cfg := ourochronos.DefaultConfig()
	switch req.Mode {
	case "Pure":
		cfg.Mode = ourochronos.Pure
	case "Diagnostic":
		cfg.Mode = ourochronos.Diagnostic
	default:
		cfg.Mode = ourochronos.Bounded
	}
	if req.MaxEpochs > 0 {
		cfg.MaxEpochs = req.MaxEpochs
	}
	if req.Seed > 0 {
		cfg.Seed = req.Seed
	}
	if len(req.Guided) > 0 {
		guided := make(map[uint16]uint64, len(req.Guided))
		for k, v := range req.Guided {
			var addr uint16
			if _, err := fmt.Sscanf(k, "%d", &addr); err != nil {
				fatal(fmt.Sprintf("invalid guided anamnesis address %q: %v", k, err))
			}
			guided[addr] = v
		}
		cfg.InitialAnamnesis = ourochronos.GuidedAnamnesis(guided)
	}

	res, err := ourochronos.Execute(context.Background(), program, req.Input, cfg)
	if err != nil {
		fatal(err.Error())
	}

	resp := Response{Kind: res.Kind.String()}
	switch res.Kind {
	case ourochronos.ResultConsistent:
		resp.Output = res.Single.Output
		resp.Epochs = res.Single.Epochs
	case ourochronos.ResultCyclic, ourochronos.ResultDivergent, ourochronos.ResultParadox:
		resp.Diagnosis = res.Diagnosis.Render()
	case ourochronos.ResultError:
		resp.Error = res.ErrorMessage
	}

	out, err := json.Marshal(resp)
	if err != nil {
		fatal(fmt.Sprintf("failed to marshal response: %v", err))
	}
	fmt.Println(string(out))
}

func buildProgram(instrs []Instruction) (*ourochronos.Program, error) {
	p := ourochronos.NewProgram()
	for _, in := range instrs {
		if strings.EqualFold(in.Op, "LIT") {
			p.Append(ourochronos.Lit{Value: in.Value})
			continue
		}
		op, ok := opcodeByName(strings.ToUpper(in.Op))
		if !ok {
			return nil, fmt.Errorf("unknown opcode %q", in.Op)
		}
		p.Append(ourochronos.Op{Code: op})
	}
	return p, nil
}

func opcodeByName(name string) (ourochronos.Opcode, bool) {
	table := map[string]ourochronos.Opcode{
		"NOP": ourochronos.Nop, "POP": ourochronos.Pop, "DUP": ourochronos.Dup,
		"SWAP": ourochronos.Swap, "OVER": ourochronos.Over, "ROT": ourochronos.Rot,
		"DEPTH": ourochronos.Depth, "ADD": ourochronos.Add, "SUB": ourochronos.Sub,
		"MUL": ourochronos.Mul, "DIV": ourochronos.Div, "MOD": ourochronos.Mod,
		"NOT": ourochronos.Not, "AND": ourochronos.And, "OR": ourochronos.Or,
		"XOR": ourochronos.Xor, "EQ": ourochronos.Eq, "NEQ": ourochronos.Neq,
		"LT": ourochronos.Lt, "GT": ourochronos.Gt, "LTE": ourochronos.Lte,
		"GTE": ourochronos.Gte, "ORACLE": ourochronos.Oracle, "PROPHECY": ourochronos.Prophecy,
		"PRESENT": ourochronos.Present, "PARADOX": ourochronos.Paradox,
		"INPUT": ourochronos.Input, "OUTPUT": ourochronos.Output, "HALT": ourochronos.Halt,
	}
	op, ok := table[name]
	return op, ok
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
