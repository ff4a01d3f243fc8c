package graphview

import (
	"fmt"

	"github.com/matzehuels/loomviz/pkg/dag"
	"github.com/matzehuels/loomviz/pkg/descriptor"
	errs "github.com/matzehuels/loomviz/pkg/errors"
)

// Class is the visual style class of a step.
type Class string

// Style classes in precedence order.
const (
	ClassTerminal Class = "terminal"
	ClassOptional Class = "optional"
	ClassRequired Class = "required"
)

// CSSClass returns the class name used by the HTML and SVG views.
func (c Class) CSSClass() string { return "node-" + string(c) }

// Metadata keys set on DAG nodes by [Graph.DAG].
const (
	MetaLabel = "label"
	MetaClass = "class"
)

// Options controls label composition.
type Options struct {
	// MarkTerminal appends "★ terminal" to terminal step labels.
	MarkTerminal bool
	// Detailed appends "timeout: Nms" when a step timeout is known.
	Detailed bool
}

// Node is a classified, labelled step.
type Node struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Class      Class  `json:"class"`
	OutputType string `json:"outputType,omitempty"`
	TimeoutMs  int64  `json:"timeoutMs,omitempty"`
}

// Edge is a data-flow dependency between two steps of the graph.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is the abstract graph of one API: steps keyed by name plus the edge
// list in input order.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
	index map[string]int
}

// Classify returns the style class of a step. Terminal takes precedence over
// optional.
func Classify(n descriptor.Node) Class {
	switch {
	case n.Terminal:
		return ClassTerminal
	case !n.Required:
		return ClassOptional
	default:
		return ClassRequired
	}
}

// Label composes the display label of a step.
func Label(n descriptor.Node, opts Options) string {
	label := n.Name
	if n.OutputType != "" {
		label += "\n→ " + n.OutputType
	}
	if !n.Required {
		label += "\n(optional)"
	}
	if n.Terminal && opts.MarkTerminal {
		label += "\n★ terminal"
	}
	if opts.Detailed && n.TimeoutMs > 0 {
		label += fmt.Sprintf("\ntimeout: %dms", n.TimeoutMs)
	}
	return label
}

// Build classifies and labels nodes and checks that every edge endpoint names
// one of them.
//
// Errors:
//   - INVALID_GRAPH for an empty, malformed or duplicate step name
//   - DANGLING_EDGE for an edge whose endpoint is not a step
func Build(nodes []descriptor.Node, edges []descriptor.Edge, opts Options) (*Graph, error) {
	g := &Graph{
		Nodes: make([]Node, 0, len(nodes)),
		Edges: make([]Edge, 0, len(edges)),
		index: make(map[string]int, len(nodes)),
	}

	for _, n := range nodes {
		if err := errs.ValidateNodeName(n.Name); err != nil {
			return nil, err
		}
		if _, dup := g.index[n.Name]; dup {
			return nil, errs.New(errs.ErrCodeInvalidGraph, "duplicate node name %q", n.Name)
		}
		g.index[n.Name] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			Name:       n.Name,
			Label:      Label(n, opts),
			Class:      Classify(n),
			OutputType: n.OutputType,
			TimeoutMs:  n.TimeoutMs,
		})
	}

	for _, e := range edges {
		if _, ok := g.index[e.From]; !ok {
			return nil, errs.DanglingEdgeError(e.From, e.To, e.From)
		}
		if _, ok := g.index[e.To]; !ok {
			return nil, errs.DanglingEdgeError(e.From, e.To, e.To)
		}
		g.Edges = append(g.Edges, Edge{From: e.From, To: e.To})
	}

	return g, nil
}

// Node returns the step with the given name.
func (g *Graph) Node(name string) (Node, bool) {
	i, ok := g.index[name]
	if !ok {
		return Node{}, false
	}
	return g.Nodes[i], true
}

// Len returns the number of steps.
func (g *Graph) Len() int { return len(g.Nodes) }

// IsEmpty reports whether the graph has no steps.
func (g *Graph) IsEmpty() bool { return len(g.Nodes) == 0 }

// DAG converts the graph into a step DAG. Node metadata carries the label and
// class under [MetaLabel] and [MetaClass].
func (g *Graph) DAG() (*dag.DAG, error) {
	d := dag.New()
	for _, n := range g.Nodes {
		if err := d.AddNode(dag.Node{
			ID:   n.Name,
			Meta: dag.Metadata{MetaLabel: n.Label, MetaClass: n.Class},
		}); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidGraph, err, "add node %q", n.Name)
		}
	}
	for _, e := range g.Edges {
		if err := d.AddEdge(dag.Edge{From: e.From, To: e.To}); err != nil {
			return nil, errs.Wrap(errs.ErrCodeDanglingEdge, err, "add edge %s → %s", e.From, e.To)
		}
	}
	return d, nil
}

// Validate reports dag.ErrGraphHasCycle (wrapped as INVALID_GRAPH) when the
// edges form a cycle.
func (g *Graph) Validate() error {
	d, err := g.DAG()
	if err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidGraph, err, "validate graph")
	}
	return nil
}
