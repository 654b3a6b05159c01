// Package graph provides a generic directed dependency graph over named
// resources, with cycle, duplicate-transitive, and depth detection.
//
// A graph is rebuilt fresh for each rule execution and is read-only once
// built, so it is safe for concurrent read access without locking.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vigil-dev/vigil/pkg/errors"
)

// Resource is one named node with its declared dependencies
type Resource struct {
	// Name uniquely identifies the resource
	Name string

	// Dependencies are declared dependency names, in declaration order
	Dependencies []string

	// Path is the file the resource was discovered from, when known
	Path string
}

// Graph is a directed graph over named resources
type Graph struct {
	nodes map[string]Resource
	order []string // insertion order, for deterministic traversal
}

// New creates an empty graph
func New() *Graph {
	return &Graph{nodes: make(map[string]Resource)}
}

// Add inserts a resource. Re-adding a name replaces the earlier node.
func (g *Graph) Add(r Resource) {
	if _, exists := g.nodes[r.Name]; !exists {
		g.order = append(g.order, r.Name)
	}
	g.nodes[r.Name] = r
}

// Len returns the node count
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Names returns all node names in insertion order
func (g *Graph) Names() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Get returns the resource for a name
func (g *Graph) Get(name string) (Resource, bool) {
	r, ok := g.nodes[name]
	return r, ok
}

// deps returns the declared dependencies of a node; dependencies on
// undeclared resources are kept and treated as leaves
func (g *Graph) deps(name string) []string {
	return g.nodes[name].Dependencies
}

// Cycle is an ordered node path including the repeated start (A→B→C→A).
// A self-loop is the one-node cycle [A, A].
type Cycle []string

// String renders the cycle as "A → B → A"
func (c Cycle) String() string {
	return strings.Join(c, " → ")
}

// FindCycles returns all distinct cycles in the graph. Detection is a DFS
// with a recursion stack: any back-edge yields a cycle. Cycles that are
// rotations of one another are reported once.
func (g *Graph) FindCycles() []Cycle {
	var cycles []Cycle
	seen := make(map[string]bool) // canonical form → reported

	state := make(map[string]int) // 0 white, 1 grey, 2 black
	var stack []string

	var visit func(name string)
	visit = func(name string) {
		state[name] = 1
		stack = append(stack, name)

		for _, dep := range g.deps(name) {
			if _, known := g.nodes[dep]; !known {
				continue
			}
			switch state[dep] {
			case 0:
				visit(dep)
			case 1:
				// back-edge: the cycle is the stack suffix from dep
				start := -1
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i] == dep {
						start = i
						break
					}
				}
				cycle := make(Cycle, 0, len(stack)-start+1)
				cycle = append(cycle, stack[start:]...)
				cycle = append(cycle, dep)

				key := canonicalCycle(cycle)
				if !seen[key] {
					seen[key] = true
					cycles = append(cycles, cycle)
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = 2
	}

	for _, name := range g.order {
		if state[name] == 0 {
			visit(name)
		}
	}

	return cycles
}

// canonicalCycle rotates the cycle so the lexicographically smallest node
// comes first, making rotations compare equal
func canonicalCycle(c Cycle) string {
	body := c[:len(c)-1] // drop the repeated start
	min := 0
	for i := range body {
		if body[i] < body[min] {
			min = i
		}
	}
	rotated := make([]string, 0, len(body))
	rotated = append(rotated, body[min:]...)
	rotated = append(rotated, body[:min]...)
	return strings.Join(rotated, "\x00")
}

// Duplicate reports a redundant declared dependency: Redundant is already
// reachable transitively through Via, so declaring it on Resource adds
// nothing.
type Duplicate struct {
	Resource  string
	Redundant string
	Via       string
}

// FindDuplicates reports, for each resource R with declared deps
// {D1..Dn}, every Dj reachable in the transitive closure of some Di
// (i≠j). Each redundant dep is attributed to the first declared Di that
// covers it.
func (g *Graph) FindDuplicates() []Duplicate {
	var dups []Duplicate

	for _, name := range g.order {
		declared := g.deps(name)
		if len(declared) < 2 {
			continue
		}

		for j, dj := range declared {
			for i, di := range declared {
				if i == j || di == dj {
					continue
				}
				if g.reachable(di, dj) {
					dups = append(dups, Duplicate{Resource: name, Redundant: dj, Via: di})
					break
				}
			}
		}
	}

	return dups
}

// reachable reports whether to is in the transitive closure of from
func (g *Graph) reachable(from, to string) bool {
	visited := make(map[string]bool)
	var walk func(name string) bool
	walk = func(name string) bool {
		if visited[name] {
			return false
		}
		visited[name] = true
		for _, dep := range g.deps(name) {
			if dep == to {
				return true
			}
			if _, known := g.nodes[dep]; known && walk(dep) {
				return true
			}
		}
		return false
	}
	return walk(from)
}

// DepthViolation reports a resource whose dependency depth exceeds the
// configured limit
type DepthViolation struct {
	Resource    string
	ActualDepth int
	Limit       int

	// Chain is the longest dependency chain starting at Resource
	Chain []string
}

// ChainString renders the longest chain as "A → B → C"
func (v DepthViolation) ChainString() string {
	return strings.Join(v.Chain, " → ")
}

// MaxDepth checks every node against the depth limit. depth(node) is 0
// for a node with no dependencies, else 1 + max over its dependencies.
// A node revisited on the active path means the depth is undefined; that
// is a distinct ErrGraphCycle error, not a limit violation.
func (g *Graph) MaxDepth(limit int) ([]DepthViolation, error) {
	type memo struct {
		depth int
		chain []string
	}
	memos := make(map[string]memo)
	onPath := make(map[string]bool)

	var measure func(name string) (memo, error)
	measure = func(name string) (memo, error) {
		if m, ok := memos[name]; ok {
			return m, nil
		}
		if onPath[name] {
			return memo{}, errors.Newf(errors.ErrGraphCycle,
				"dependency cycle through %q prevents depth computation", name)
		}
		onPath[name] = true
		defer delete(onPath, name)

		best := memo{depth: 0, chain: []string{name}}
		for _, dep := range g.deps(name) {
			if _, known := g.nodes[dep]; !known {
				continue
			}
			sub, err := measure(dep)
			if err != nil {
				return memo{}, err
			}
			if sub.depth+1 > best.depth {
				chain := make([]string, 0, len(sub.chain)+1)
				chain = append(chain, name)
				chain = append(chain, sub.chain...)
				best = memo{depth: sub.depth + 1, chain: chain}
			}
		}

		memos[name] = best
		return best, nil
	}

	var violations []DepthViolation
	for _, name := range g.order {
		m, err := measure(name)
		if err != nil {
			return nil, err
		}
		if m.depth > limit {
			violations = append(violations, DepthViolation{
				Resource:    name,
				ActualDepth: m.depth,
				Limit:       limit,
				Chain:       m.chain,
			})
		}
	}

	// Deterministic output regardless of insertion order quirks
	sort.Slice(violations, func(i, j int) bool {
		return violations[i].Resource < violations[j].Resource
	})

	return violations, nil
}

// Describe summarizes the graph for logging
func (g *Graph) Describe() string {
	edges := 0
	for _, name := range g.order {
		edges += len(g.deps(name))
	}
	return fmt.Sprintf("%d nodes, %d declared dependencies", len(g.nodes), edges)
}
