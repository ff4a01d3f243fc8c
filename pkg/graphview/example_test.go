package graphview_test

import (
	"fmt"

	"github.com/matzehuels/loomviz/pkg/descriptor"
	"github.com/matzehuels/loomviz/pkg/graphview"
)

func ExampleBuild() {
	g, err := graphview.Build(
		[]descriptor.Node{
			{Name: "fetchUser", OutputType: "UserProfile", Required: true},
			{Name: "fetchRecs", OutputType: "Recommendations"},
			{Name: "assemble", OutputType: "Dashboard", Required: true, Terminal: true},
		},
		[]descriptor.Edge{
			{From: "fetchUser", To: "assemble"},
			{From: "fetchRecs", To: "assemble"},
		},
		graphview.Options{},
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, n := range g.Nodes {
		fmt.Printf("%s: %s\n", n.Name, n.Class)
	}
	// Output:
	// fetchUser: required
	// fetchRecs: optional
	// assemble: terminal
}
