package transform_test

import (
	"fmt"

	"github.com/matzehuels/loomviz/pkg/dag"
	"github.com/matzehuels/loomviz/pkg/dag/transform"
)

func ExampleAssignLayers() {
	g := dag.New()
	_ = g.AddNode(dag.Node{ID: "fetchUser"})
	_ = g.AddNode(dag.Node{ID: "loadOrders"})
	_ = g.AddNode(dag.Node{ID: "assemble"})
	_ = g.AddEdge(dag.Edge{From: "fetchUser", To: "loadOrders"})
	_ = g.AddEdge(dag.Edge{From: "loadOrders", To: "assemble"})
	_ = g.AddEdge(dag.Edge{From: "assemble", To: "fetchUser"}) // malformed feed

	fmt.Println("Removed:", transform.BreakCycles(g))
	fmt.Println("Ranks:", transform.AssignLayers(g))
	for _, n := range g.Nodes() {
		fmt.Printf("%s=%d\n", n.ID, n.Rank)
	}
	// Output:
	// Removed: 1
	// Ranks: 3
	// fetchUser=0
	// loadOrders=1
	// assemble=2
}
