// Package graphviz lays out API graphs with Graphviz dot, running the
// WebAssembly build shipped by github.com/goccy/go-graphviz.
//
// The engine generates DOT from a [graphview.Graph] with [ToDOT], renders it
// twice (the "plain" format for geometry and SVG for display) and converts
// Graphviz inches with a bottom-left origin into display units with a
// top-left origin, so positions line up with the SVG.
//
//	eng := graphviz.New()
//	defer eng.Close()
//	pos, err := eng.Layout(ctx, g, layout.DefaultOptions())
//
// [graphview.Graph]: github.com/matzehuels/loomviz/pkg/graphview
package graphviz
