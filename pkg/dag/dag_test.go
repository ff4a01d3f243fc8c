package dag

import (
	"errors"
	"slices"
	"testing"
)

func buildDAG(t *testing.T, ids []string, edges [][2]string) *DAG {
	t.Helper()
	g := New()
	for _, id := range ids {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(Edge{From: e[0], To: e[1]}); err != nil {
			t.Fatalf("AddEdge(%s→%s): %v", e[0], e[1], err)
		}
	}
	return g
}

func TestAddNodeErrors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("empty ID: got %v, want ErrInvalidNodeID", err)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("duplicate: got %v, want ErrDuplicateNodeID", err)
	}
	n, _ := g.Node("a")
	if n.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestAddEdgeErrors(t *testing.T) {
	g := buildDAG(t, []string{"a"}, nil)
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("got %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("got %v, want ErrUnknownTargetNode", err)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestInsertionOrder(t *testing.T) {
	ids := []string{"zeta", "alpha", "mid", "beta"}
	g := buildDAG(t, ids, nil)
	if got := NodeIDs(g.Nodes()); !slices.Equal(got, ids) {
		t.Errorf("Nodes() = %v, want %v", got, ids)
	}
}

func TestSourcesSinks(t *testing.T) {
	g := buildDAG(t, []string{"a", "b", "c", "d"}, [][2]string{{"a", "c"}, {"b", "c"}, {"c", "d"}})
	if got := NodeIDs(g.Sources()); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Sources() = %v", got)
	}
	if got := NodeIDs(g.Sinks()); !slices.Equal(got, []string{"d"}) {
		t.Errorf("Sinks() = %v", got)
	}
	if g.InDegree("c") != 2 || g.OutDegree("c") != 1 {
		t.Errorf("degree(c) = in %d out %d", g.InDegree("c"), g.OutDegree("c"))
	}
}

func TestRemoveEdge(t *testing.T) {
	g := buildDAG(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	g.RemoveEdge("a", "b")
	g.RemoveEdge("a", "b")
	if g.EdgeCount() != 0 || len(g.Children("a")) != 0 || len(g.Parents("b")) != 0 {
		t.Error("edge not fully removed")
	}
}

func TestRanks(t *testing.T) {
	g := buildDAG(t, []string{"a", "b", "c"}, nil)
	g.SetRanks(map[string]int{"a": 0, "b": 2, "c": 2, "missing": 5})
	if got := g.Ranks(); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("Ranks() = %v", got)
	}
	if got := NodeIDs(g.NodesInRank(2)); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("NodesInRank(2) = %v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  error
	}{
		{"empty", nil, nil},
		{"chain", [][2]string{{"a", "b"}, {"b", "c"}}, nil},
		{"diamond", [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}}, nil},
		{"self loop", [][2]string{{"a", "a"}}, ErrGraphHasCycle},
		{"triangle", [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}}, ErrGraphHasCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := buildDAG(t, []string{"a", "b", "c", "d"}, tt.edges)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	g := buildDAG(t, []string{"a", "b"}, [][2]string{{"a", "b"}})
	a, _ := g.Node("a")
	a.Meta["k"] = "v"

	c := g.Clone()
	c.RemoveEdge("a", "b")
	ca, _ := c.Node("a")
	ca.Meta["k"] = "changed"
	ca.Rank = 3

	if g.EdgeCount() != 1 {
		t.Error("Clone shares edges with the original")
	}
	if a.Meta["k"] != "v" || a.Rank != 0 {
		t.Error("Clone shares nodes with the original")
	}
}

func TestCountCrossings(t *testing.T) {
	// K2,2 between ranks 0 and 1 always has one crossing.
	g := buildDAG(t, []string{"a", "b", "x", "y"},
		[][2]string{{"a", "x"}, {"a", "y"}, {"b", "x"}, {"b", "y"}})
	orders := [][]string{{"a", "b"}, {"x", "y"}}
	if got := CountCrossings(g, orders); got != 1 {
		t.Errorf("CountCrossings() = %d, want 1", got)
	}
	if got := CountCrossings(g, [][]string{{"a", "b"}}); got != 0 {
		t.Errorf("single rank: got %d, want 0", got)
	}
}
