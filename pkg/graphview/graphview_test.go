package graphview

import (
	"errors"
	"strings"
	"testing"

	"github.com/matzehuels/loomviz/pkg/dag"
	"github.com/matzehuels/loomviz/pkg/descriptor"
	errs "github.com/matzehuels/loomviz/pkg/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		required bool
		terminal bool
		want     Class
	}{
		{"required", true, false, ClassRequired},
		{"optional", false, false, ClassOptional},
		{"terminal required", true, true, ClassTerminal},
		{"terminal wins over optional", false, true, ClassTerminal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := descriptor.Node{Name: "x", Required: tt.required, Terminal: tt.terminal}
			if got := Classify(n); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		node descriptor.Node
		opts Options
		want string
	}{
		{"name only", descriptor.Node{Name: "fetch", Required: true}, Options{}, "fetch"},
		{"output type", descriptor.Node{Name: "fetchUser", OutputType: "UserProfile", Required: true}, Options{}, "fetchUser\n→ UserProfile"},
		{"optional", descriptor.Node{Name: "recs", OutputType: "Recs"}, Options{}, "recs\n→ Recs\n(optional)"},
		{"terminal unmarked", descriptor.Node{Name: "assemble", Required: true, Terminal: true}, Options{}, "assemble"},
		{"terminal marked", descriptor.Node{Name: "assemble", Required: true, Terminal: true}, Options{MarkTerminal: true}, "assemble\n★ terminal"},
		{"detailed", descriptor.Node{Name: "slow", Required: true, TimeoutMs: 250}, Options{Detailed: true}, "slow\ntimeout: 250ms"},
		{"detailed without timeout", descriptor.Node{Name: "slow", Required: true}, Options{Detailed: true}, "slow"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Label(tt.node, tt.opts); got != tt.want {
				t.Errorf("Label() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildSingleTerminal(t *testing.T) {
	g, err := Build([]descriptor.Node{{Name: "fetch", Required: true, Terminal: true}}, nil, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if g.Len() != 1 || len(g.Edges) != 0 {
		t.Fatalf("got %d nodes, %d edges", g.Len(), len(g.Edges))
	}
	n, ok := g.Node("fetch")
	if !ok || n.Class != ClassTerminal {
		t.Errorf("fetch = %+v, want terminal", n)
	}
	if n.Class.CSSClass() != "node-terminal" {
		t.Errorf("CSSClass() = %s", n.Class.CSSClass())
	}
}

func TestBuildEmpty(t *testing.T) {
	g, err := Build(nil, nil, Options{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !g.IsEmpty() || len(g.Edges) != 0 {
		t.Errorf("expected empty graph, got %+v", g)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() on empty graph: %v", err)
	}
}

func TestBuildDanglingEdge(t *testing.T) {
	nodes := []descriptor.Node{{Name: "a", Required: true}}
	tests := []struct {
		name string
		edge descriptor.Edge
	}{
		{"missing target", descriptor.Edge{From: "a", To: "missing"}},
		{"missing source", descriptor.Edge{From: "missing", To: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Build(nodes, []descriptor.Edge{tt.edge}, Options{})
			if g != nil {
				t.Error("no partial graph should be returned")
			}
			if !errs.Is(err, errs.ErrCodeDanglingEdge) {
				t.Fatalf("error = %v, want DANGLING_EDGE", err)
			}
			if !strings.Contains(err.Error(), `"missing"`) {
				t.Errorf("error should name the missing node: %v", err)
			}
		})
	}
}

func TestBuildInvalidNames(t *testing.T) {
	tests := []struct {
		name  string
		nodes []descriptor.Node
	}{
		{"duplicate", []descriptor.Node{{Name: "a"}, {Name: "a"}}},
		{"empty", []descriptor.Node{{Name: ""}}},
		{"control char", []descriptor.Node{{Name: "a\nb"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.nodes, nil, Options{}); !errs.Is(err, errs.ErrCodeInvalidGraph) {
				t.Errorf("error = %v, want INVALID_GRAPH", err)
			}
		})
	}
}

func TestValidateCycle(t *testing.T) {
	nodes := []descriptor.Node{{Name: "a"}, {Name: "b"}}
	edges := []descriptor.Edge{{From: "a", To: "b"}, {From: "b", To: "a"}}
	g, err := Build(nodes, edges, Options{})
	if err != nil {
		t.Fatalf("Build() should accept cycles: %v", err)
	}
	if err := g.Validate(); !errors.Is(err, dag.ErrGraphHasCycle) {
		t.Errorf("Validate() = %v, want ErrGraphHasCycle", err)
	}
}

func TestDAG(t *testing.T) {
	g, _ := Build(
		[]descriptor.Node{{Name: "fetchUser", Required: true}, {Name: "assemble", Required: true, Terminal: true}},
		[]descriptor.Edge{{From: "fetchUser", To: "assemble"}},
		Options{},
	)
	d, err := g.DAG()
	if err != nil {
		t.Fatalf("DAG() error: %v", err)
	}
	if d.NodeCount() != 2 || d.EdgeCount() != 1 {
		t.Errorf("DAG has %d nodes, %d edges", d.NodeCount(), d.EdgeCount())
	}
	n, _ := d.Node("assemble")
	if n.Meta[MetaClass] != ClassTerminal {
		t.Errorf("class meta = %v", n.Meta[MetaClass])
	}
}
