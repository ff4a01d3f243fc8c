package graphviz

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/loomviz/pkg/graphview"
	"github.com/matzehuels/loomviz/pkg/layout"
)

// pointsPerInch converts Graphviz inches to display units.
const pointsPerInch = 72

var classColors = map[graphview.Class][2]string{
	graphview.ClassRequired: {"#1e88e5", "#e3f2fd"},
	graphview.ClassOptional: {"#9e9e9e", "#fafafa"},
	graphview.ClassTerminal: {"#43a047", "#e8f5e9"},
}

// ToDOT converts an API graph to Graphviz DOT. Boxes have the fixed size from
// opts and are filled by class; edges keep input order.
func ToDOT(g *graphview.Graph, opts layout.Options) string {
	opts.SetDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.Direction)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  pad=\"%s,%s\";\n", inches(opts.MarginX), inches(opts.MarginY))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSep))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSep))
	if opts.Curved {
		buf.WriteString("  splines=spline;\n")
	} else {
		buf.WriteString("  splines=polyline;\n")
	}
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fixedsize=true, width=%s, height=%s, margin=\"%s\", fontname=\"Helvetica\", fontsize=11];\n",
		inches(opts.NodeWidth), inches(opts.NodeHeight), inches(opts.Padding))
	fmt.Fprintf(&buf, "  edge [arrowhead=%s, color=\"#607d8b\"];\n", opts.Arrowhead)
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.Name, strings.Join(fmtAttrs(n), ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n graphview.Node) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", n.Label),
		fmt.Sprintf("id=%q", "node-"+n.Name),
		fmt.Sprintf("class=%q", n.Class.CSSClass()),
	}
	if c, ok := classColors[n.Class]; ok {
		attrs = append(attrs, fmt.Sprintf("color=%q", c[0]), fmt.Sprintf("fillcolor=%q", c[1]))
	}
	switch n.Class {
	case graphview.ClassOptional:
		attrs = append(attrs, `style="rounded,filled,dashed"`)
	case graphview.ClassTerminal:
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

func inches(units float64) string {
	return fmt.Sprintf("%.4g", units/pointsPerInch)
}
