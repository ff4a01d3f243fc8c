package transform

import "github.com/matzehuels/loomviz/pkg/dag"

// AssignLayers assigns each step a rank equal to its longest distance from a
// source step, using Kahn's algorithm. Sources are placed at rank 0 and every
// parent ends up at a strictly smaller rank than its children.
//
// The queue is seeded in insertion order, so the result is deterministic.
// Existing ranks are overwritten. Steps caught in a cycle never reach zero
// in-degree and keep rank 0; run [BreakCycles] first.
//
// Returns the number of ranks (0 for an empty graph).
func AssignLayers(g *dag.DAG) int {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return 0
	}

	inDegree := make(map[string]int, len(nodes))
	ranks := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		ranks[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	depth := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
				depth = max(depth, r)
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.SetRanks(ranks)
	return depth + 1
}
