package scenario

import (
	"slices"
	"testing"
)

func TestGraphSort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		nodes      []string
		edges      [][2]string
		sorted     []string
		unresolved []string
	}{
		{
			name:   "declaration order",
			nodes:  []string{"c", "a", "b"},
			sorted: []string{"c", "a", "b"},
		},
		{
			name:   "dependencies first",
			nodes:  []string{"total", "sub", "base"},
			edges:  [][2]string{{"sub", "total"}, {"base", "sub"}},
			sorted: []string{"base", "sub", "total"},
		},
		{
			name:   "released in declaration order",
			nodes:  []string{"x", "a", "y", "b"},
			edges:  [][2]string{{"b", "x"}, {"b", "y"}, {"a", "y"}},
			sorted: []string{"a", "b", "x", "y"},
		},
		{
			name:       "self edge",
			nodes:      []string{"a", "b"},
			edges:      [][2]string{{"a", "a"}, {"a", "b"}},
			unresolved: []string{"a", "b"},
		},
		{
			name:       "cycle",
			nodes:      []string{"free", "a", "b", "after"},
			edges:      [][2]string{{"a", "b"}, {"b", "a"}, {"b", "after"}, {"unknown", "free"}},
			sorted:     []string{"free"},
			unresolved: []string{"a", "b", "after"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			g := newGraph()
			for _, n := range tt.nodes {
				g.addNode(n)
			}

			for _, e := range tt.edges {
				g.addEdge(e[0], e[1])
			}

			sorted, unresolved := g.sort()

			if !slices.Equal(sorted, tt.sorted) {
				t.Errorf("sorted = %v, want %v", sorted, tt.sorted)
			}

			if !slices.Equal(unresolved, tt.unresolved) {
				t.Errorf("unresolved = %v, want %v", unresolved, tt.unresolved)
			}
		})
	}
}
