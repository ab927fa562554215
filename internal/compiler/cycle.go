package compiler

import (
	"fmt"
	"strings"
)

// Cycle is a set of derived variables whose bases lead back to themselves.
type Cycle struct {
	Path    []string `json:"path"`    // e.g. ["A", "B", "A"]
	Message string   `json:"message"` // human-readable description
}

// FindCycles reports every derivation cycle among decls.
//
// Each derived declaration is an edge from the variable to its base. A
// strongly connected component of more than one variable, or a variable
// derived from itself, can never be built. Components are found with
// Tarjan's algorithm; nodes are visited in declaration order so the result is
// deterministic.
func FindCycles(decls []Decl) []Cycle {
	graph := make(derivationGraph)
	var order []string
	for _, d := range decls {
		if _, seen := graph[d.Name]; !seen {
			order = append(order, d.Name)
		}
		if d.Kind == DeclDerived {
			graph[d.Name] = append(graph[d.Name], d.Base)
		} else if graph[d.Name] == nil {
			graph[d.Name] = []string{}
		}
	}

	var cycles []Cycle
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) > 1 || hasSelfLoop(scc[0], graph) {
			cycles = append(cycles, sccToCycle(scc, graph))
		}
	}
	return cycles
}

// derivationGraph maps a variable name to the names it derives from.
type derivationGraph map[string][]string

func hasSelfLoop(node string, graph derivationGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Edges to names missing from graph are ignored.
func tarjanSCC(graph derivationGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, known := graph[w]; !known {
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func sccToCycle(scc []string, graph derivationGraph) Cycle {
	if len(scc) == 1 {
		name := scc[0]
		return Cycle{
			Path:    []string{name, name},
			Message: fmt.Sprintf("%s is derived from itself", name),
		}
	}

	path := reconstructCyclePath(scc, graph)
	return Cycle{
		Path:    path,
		Message: fmt.Sprintf("derivation cycle: %s", strings.Join(path, " → ")),
	}
}

// reconstructCyclePath follows edges inside the SCC from its first node
// until it returns there. Every derived variable has exactly one base, so
// the walk is unique.
func reconstructCyclePath(scc []string, graph derivationGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[len(scc)-1]
	path := []string{start}
	visited := map[string]bool{start: true}
	current := start
	for {
		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}
	return path
}
