// Package smtenc symbolically executes a program into a QF_ABV SMT-LIB2
// script whose models correspond to fixed points of the program (spec
// §4.7). No solver is invoked in-process; Solver is a pluggable interface
// so the package is usable without a concrete backend.
package smtenc

import "strings"

// Script is a finished SMT-LIB2 script plus bookkeeping about whether the
// encoding is exact or a bounded-unrolling over-approximation.
type Script struct {
	text       strings.Builder
	Incomplete bool // true if a While loop was unrolled to its bound
	Inputs     []string
}

// String returns the finished SMT-LIB2 text.
func (s *Script) String() string {
	return s.text.String()
}

func (s *Script) emit(line string) {
	s.text.WriteString(line)
	s.text.WriteByte('\n')
}

// bv64 renders a u64 constant as an SMT-LIB2 bitvector literal.
func bv64(v uint64) string {
	return "(_ bv" + uitoa(v) + " 64)"
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
