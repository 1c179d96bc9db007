package scenario

import "slices"

// graph is the dependency graph of the Formula entries of a Config.
// An edge from dep to id means id needs the output of dep.
type graph struct {
	// order holds node IDs in declaration order for a stable sort.
	order []string
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
}

type node struct {
	id         string
	deps       map[string]*node
	dependents []*node
}

func newGraph() *graph {
	return &graph{nodes: make(map[string]*node)}
}

// addNode adds a node with the given ID. Adding an existing ID does nothing.
func (g *graph) addNode(id string) {
	if _, ok := g.nodes[id]; ok {
		return
	}

	g.order = append(g.order, id)
	g.nodes[id] = &node{id: id, deps: make(map[string]*node)}
}

// addEdge records that to depends on from. Unknown IDs are ignored.
// A self edge is kept, leaving its node unresolvable.
func (g *graph) addEdge(from, to string) {
	f, ok := g.nodes[from]
	if !ok {
		return
	}

	t, ok := g.nodes[to]
	if !ok {
		return
	}

	if _, dup := t.deps[from]; dup {
		return
	}

	t.deps[from] = f
	f.dependents = append(f.dependents, t)
}

// sort returns the nodes in topological order, breaking ties by declaration
// order, followed by the nodes that lie on or behind a cycle.
func (g *graph) sort() (sorted, unresolved []string) {
	pending := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		pending[id] = len(n.deps)
	}

	rank := make(map[string]int, len(g.order))
	for i, id := range g.order {
		rank[id] = i
	}

	var ready []string

	for _, id := range g.order {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)

		for _, d := range g.nodes[id].dependents {
			pending[d.id]--
			if pending[d.id] == 0 {
				i, _ := slices.BinarySearchFunc(ready, rank[d.id], func(s string, r int) int {
					return rank[s] - r
				})
				ready = slices.Insert(ready, i, d.id)
			}
		}
	}

	for _, id := range g.order {
		if pending[id] > 0 {
			unresolved = append(unresolved, id)
		}
	}

	return sorted, unresolved
}
