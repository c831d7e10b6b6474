package causal

import "sort"

// NegativeLoop is a cycle within the causal graph whose negating-edge
// count is odd: a "grandfather" structure with no fixed point in its basin
// (spec §4.5/§7, GLOSSARY "Negative causal loop").
type NegativeLoop struct {
	Cells     []uint16
	EdgeChain []Edge
}

// FindNegativeLoops enumerates elementary cycles within each SCC of the
// temporal core and returns those with an odd count of negating edges.
// SCCs in this language are small (bounded by the number of distinct
// memory cells a program actually writes), so a direct DFS enumeration of
// elementary cycles is sufficient; no SCC-size cap is imposed beyond what
// the causal graph itself already bounds.
func FindNegativeLoops(g *Graph, sccs []SCC) []NegativeLoop {
	var loops []NegativeLoop
	for _, scc := range sccs {
		members := make(map[uint16]bool, len(scc.Members))
		for _, m := range scc.Members {
			members[m] = true
		}
		if len(scc.Members) == 1 {
			v := scc.Members[0]
			for _, e := range g.Out(v) {
				if e.To == v && e.Negating {
					loops = append(loops, cycleFromChain([]Edge{e}))
				}
			}
			continue
		}
		loops = append(loops, findCyclesInSubgraph(g, members)...)
	}
	return dedupLoops(loops)
}

func cycleFromChain(chain []Edge) NegativeLoop {
	negCount := 0
	cells := make([]uint16, 0, len(chain))
	for _, e := range chain {
		if e.Negating {
			negCount++
		}
		cells = append(cells, e.From)
	}
	sort.Slice(cells, func(i, j int) bool { return cells[i] < cells[j] })
	return NegativeLoop{Cells: cells, EdgeChain: append([]Edge(nil), chain...)}
}

// findCyclesInSubgraph enumerates elementary cycles restricted to the
// given vertex set via DFS from each start vertex, returning only
// odd-parity (negating) ones.
func findCyclesInSubgraph(g *Graph, members map[uint16]bool) []NegativeLoop {
	starts := make([]uint16, 0, len(members))
	for v := range members {
		starts = append(starts, v)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	var out []NegativeLoop
	for _, start := range starts {
		var path []Edge
		visited := map[uint16]bool{start: true}
		var dfs func(v uint16)
		dfs = func(v uint16) {
			edges := append([]Edge(nil), g.Out(v)...)
			sort.Slice(edges, func(i, j int) bool { return edges[i].To < edges[j].To })
			for _, e := range edges {
				if !members[e.To] {
					continue
				}
				if e.To == start && len(path) > 0 {
					chain := append(append([]Edge(nil), path...), e)
					negCount := 0
					for _, c := range chain {
						if c.Negating {
							negCount++
						}
					}
					if negCount%2 == 1 {
						out = append(out, cycleFromChain(chain))
					}
					continue
				}
				if visited[e.To] {
					continue
				}
				visited[e.To] = true
				path = append(path, e)
				dfs(e.To)
				path = path[:len(path)-1]
				visited[e.To] = false
			}
		}
		dfs(start)
	}
	return out
}

func dedupLoops(loops []NegativeLoop) []NegativeLoop {
	seen := make(map[string]bool)
	var out []NegativeLoop
	for _, l := range loops {
		key := ""
		for _, c := range l.Cells {
			key += string(rune(c)) + ","
		}
		if !seen[key] {
			seen[key] = true
			out = append(out, l)
		}
	}
	return out
}
