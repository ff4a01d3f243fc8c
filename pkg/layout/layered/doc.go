// Package layered is a pure-Go [layout.Engine].
//
// Steps are placed on ranks by longest path from the entry steps
// ([transform.AssignLayers]); cycles in malformed feeds are broken first so
// they still draw. Within a rank, steps start in feed order and a few
// barycenter sweeps reorder them, keeping an ordering only when it reduces
// edge crossings. Ranks are centered on the widest one.
//
// The engine needs no Graphviz runtime and is deterministic, which makes it
// the default for tests and the terminal browser.
//
// [layout.Engine]: github.com/matzehuels/loomviz/pkg/layout
// [transform.AssignLayers]: github.com/matzehuels/loomviz/pkg/dag/transform
package layered
