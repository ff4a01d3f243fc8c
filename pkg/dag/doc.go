// Package dag provides the directed graph of processing steps behind one API.
//
// # Overview
//
// Every builder API in a descriptor feed runs a small dependency graph: each
// step consumes the outputs of its parents and produces one typed value. This
// package stores that graph with stable insertion order so that every
// algorithm built on top of it (layering, in-rank ordering, rendering) is
// deterministic for a given feed.
//
// # Basic Usage
//
// Create a graph with [New], add steps with [DAG.AddNode] and dependencies
// with [DAG.AddEdge]. Step IDs must be unique and edges can only connect
// existing steps:
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "fetchUser"})
//	g.AddNode(dag.Node{ID: "assemble"})
//	g.AddEdge(dag.Edge{From: "fetchUser", To: "assemble"})
//
// Query the structure with [DAG.Children], [DAG.Parents], [DAG.Sources] and
// [DAG.Sinks]. Use [DAG.Validate] to reject cyclic graphs before layout.
//
// # Ranks
//
// A [Node.Rank] is the step's layer in a layered drawing. Ranks are assigned
// by the transform subpackage and queried with [DAG.NodesInRank] and
// [DAG.Ranks]. Unlike a strict layered graph, edges may span several ranks.
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree to count
// inversions in O(E log V) time. The layered layout engine uses them to keep
// the best in-rank ordering found while sweeping.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. Read-only operations on a
// graph nobody mutates can run in parallel.
//
// [transform]: github.com/matzehuels/loomviz/pkg/dag/transform
package dag
