package layout

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/matzehuels/loomviz/pkg/graphview"
)

// Step styles shared by the viewer page and standalone SVG files.
const nodeCSS = `
    .node rect { stroke-width: 1.5; rx: 6; }
    .node text { font: 13px sans-serif; fill: #1f2933; }
    .node-required rect { fill: #e3f2fd; stroke: #1e88e5; }
    .node-optional rect { fill: #fafafa; stroke: #9e9e9e; stroke-dasharray: 5 3; }
    .node-terminal rect { fill: #e8f5e9; stroke: #43a047; stroke-width: 2.5; }
    .edge path { fill: none; stroke: #607d8b; stroke-width: 1.5; }`

// RenderSVG draws positioned geometry as a standalone SVG document sized to
// the bounding box. Engines without a native renderer use it.
func RenderSVG(p *Positioned, opts Options) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		p.BBox.Width, p.BBox.Height, p.BBox.Width, p.BBox.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", nodeCSS)
	renderArrowhead(&buf, opts.Arrowhead)

	buf.WriteString(`  <g class="edges">` + "\n")
	for _, e := range p.Edges {
		fmt.Fprintf(&buf, `    <g class="edge"><path d="%s" marker-end="url(#arrow)"/></g>`+"\n", edgePath(e.Points, opts.Curved))
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="nodes">` + "\n")
	for _, n := range p.Nodes {
		renderNode(&buf, n)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderArrowhead(buf *bytes.Buffer, style string) {
	path := "M0,0 L10,5 L0,10 L3,5 z" // vee
	if style == "normal" {
		path = "M0,0 L10,5 L0,10 z"
	}
	fmt.Fprintf(buf, `  <defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto"><path d="%s" fill="#607d8b"/></marker></defs>`+"\n", path)
}

func renderNode(buf *bytes.Buffer, n NodeBox) {
	class := n.Class
	if class == "" {
		class = graphview.ClassRequired
	}
	x, y := n.X-n.Width/2, n.Y-n.Height/2
	fmt.Fprintf(buf, `    <g class="node %s" id="node-%s">`+"\n", class.CSSClass(), html.EscapeString(n.Name))
	fmt.Fprintf(buf, `      <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n", x, y, n.Width, n.Height)

	lines := strings.Split(n.Label, "\n")
	const lineHeight = 15.0
	top := n.Y - lineHeight*float64(len(lines)-1)/2
	fmt.Fprintf(buf, `      <text text-anchor="middle" dominant-baseline="middle">`)
	for i, line := range lines {
		fmt.Fprintf(buf, `<tspan x="%.2f" y="%.2f">%s</tspan>`, n.X, top+lineHeight*float64(i), html.EscapeString(line))
	}
	buf.WriteString("</text>\n    </g>\n")
}

// edgePath builds path data through pts. Curved paths use a Catmull-Rom
// spline converted to cubic Béziers, which passes through every point.
func edgePath(pts []Point, curved bool) string {
	if len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "M%.2f,%.2f", pts[0].X, pts[0].Y)
	if !curved || len(pts) < 3 {
		for _, p := range pts[1:] {
			fmt.Fprintf(&b, " L%.2f,%.2f", p.X, p.Y)
		}
		return b.String()
	}
	for i := 0; i+1 < len(pts); i++ {
		p0 := pts[max(i-1, 0)]
		p1, p2 := pts[i], pts[i+1]
		p3 := pts[min(i+2, len(pts)-1)]
		c1 := Point{X: p1.X + (p2.X-p0.X)/6, Y: p1.Y + (p2.Y-p0.Y)/6}
		c2 := Point{X: p2.X - (p3.X-p1.X)/6, Y: p2.Y - (p3.Y-p1.Y)/6}
		fmt.Fprintf(&b, " C%.2f,%.2f %.2f,%.2f %.2f,%.2f", c1.X, c1.Y, c2.X, c2.Y, p2.X, p2.Y)
	}
	return b.String()
}

var svgOpenRe = regexp.MustCompile(`<svg[^>]*>`)

// Frame resizes an SVG document to the viewport and wraps its content in a
// group carrying t, so the drawing appears exactly as fitted on screen.
// Input without an <svg> root is returned unchanged.
func Frame(svg []byte, t Transform, vp Viewport) []byte {
	loc := svgOpenRe.FindIndex(svg)
	end := bytes.LastIndex(svg, []byte("</svg>"))
	if loc == nil || end < loc[1] {
		return svg
	}

	var buf bytes.Buffer
	buf.Grow(len(svg) + 256)
	buf.Write(svg[:loc[0]])
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		vp.Width, vp.Height, vp.Width, vp.Height)
	fmt.Fprintf(&buf, `<g class="loom-fit" transform="%s">`, t)
	buf.Write(svg[loc[1]:end])
	buf.WriteString("</g></svg>\n")
	return buf.Bytes()
}
