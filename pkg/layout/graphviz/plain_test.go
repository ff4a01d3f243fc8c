package graphviz

import (
	"math"
	"slices"
	"testing"
)

const samplePlain = `graph 1 4.5 1.5
node fetchUser 1.25 1 2.5 0.83333 "fetchUser\n→ UserProfile" filled box "#1e88e5" "#e3f2fd"
node "step two" 3.75 0.5 2.5 0.83333 "step two" filled box black lightgrey
edge fetchUser "step two" 4 2.5 1 2.8 0.9 3.1 0.6 3.3 0.5 solid "#607d8b"
stop
`

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestParsePlain(t *testing.T) {
	pos, err := ParsePlain([]byte(samplePlain), 40, 20)
	if err != nil {
		t.Fatalf("ParsePlain() error: %v", err)
	}

	if !near(pos.BBox.Width, 4.5*72+80) || !near(pos.BBox.Height, 1.5*72+40) {
		t.Errorf("BBox = %+v", pos.BBox)
	}

	if len(pos.Nodes) != 2 {
		t.Fatalf("len(Nodes) = %d, want 2", len(pos.Nodes))
	}
	fetch := pos.Nodes[0]
	if fetch.Name != "fetchUser" || !near(fetch.X, 1.25*72+40) || !near(fetch.Y, 0.5*72+20) {
		t.Errorf("fetchUser = %+v", fetch)
	}
	if !near(fetch.Width, 180) {
		t.Errorf("Width = %g, want 180", fetch.Width)
	}
	if pos.Nodes[1].Name != "step two" {
		t.Errorf("quoted name = %q", pos.Nodes[1].Name)
	}

	if len(pos.Edges) != 1 {
		t.Fatalf("len(Edges) = %d, want 1", len(pos.Edges))
	}
	e := pos.Edges[0]
	if e.From != "fetchUser" || e.To != "step two" || len(e.Points) != 4 {
		t.Errorf("edge = %+v", e)
	}
	if !near(e.Points[0].X, 2.5*72+40) || !near(e.Points[0].Y, 0.5*72+20) {
		t.Errorf("first point = %+v", e.Points[0])
	}
}

func TestParsePlainErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no graph", "node a 1 1 1 1 a filled box black white\nstop\n"},
		{"bad number", "graph 1 x 1\nstop\n"},
		{"short edge", "graph 1 1 1\nedge a b 3 0 0\nstop\n"},
		{"unterminated quote", "graph 1 1 1\nnode \"a 1 1 1 1\nstop\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePlain([]byte(tt.input), 0, 0); err == nil {
				t.Error("ParsePlain() should fail")
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got, err := tokenize(`node "a \"b\"" 1  2 "x\ny"`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"node", `a "b"`, "1", "2", "x\ny"}
	if !slices.Equal(got, want) {
		t.Errorf("tokenize() = %q, want %q", got, want)
	}
}
