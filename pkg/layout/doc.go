// Package layout positions an abstract API graph and fits the drawing to a
// viewport.
//
// # Engines
//
// An [Engine] turns a [graphview.Graph] into [Positioned] geometry: one box per
// step, one polyline per edge and the axis-aligned bounding box of the
// drawing. Two engines are provided:
//
//   - graphviz: Graphviz dot via goccy/go-graphviz, also yields SVG
//   - layered: a pure-Go longest-path layering, no cgo or WASM runtime
//
// # Fit
//
// [Fit] computes the transform that centers a drawing in a viewport:
//
//	scale = min(vw/(bw+80), vh/(bh+80), maxScale)
//	tx    = (vw - bw*scale) / 2
//	ty    = (vh - bh*scale) / 2
//
// The cap keeps small graphs from being blown up. [MaxScaleDetail] and
// [MaxScaleOverview] are the two presets used by the viewer.
//
// # Zoom
//
// [Zoom] layers pan and zoom gestures on top of a fit. Every new selection
// resets it to the fresh fit; gestures replace the current transform.
//
// [graphview.Graph]: github.com/matzehuels/loomviz/pkg/graphview
package layout
