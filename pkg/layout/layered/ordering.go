package layered

import (
	"cmp"
	"slices"

	"github.com/matzehuels/loomviz/pkg/dag"
)

// DefaultSweeps is the number of barycenter passes (alternating down and up).
const DefaultSweeps = 4

// Orderer determines the sequence of steps within each rank.
type Orderer interface {
	OrderRanks(g *dag.DAG, ranks int) [][]string
}

// InputOrder keeps steps in feed order.
type InputOrder struct{}

// OrderRanks returns each rank's steps in insertion order.
func (InputOrder) OrderRanks(g *dag.DAG, ranks int) [][]string {
	orders := make([][]string, ranks)
	for r := range ranks {
		orders[r] = dag.NodeIDs(g.NodesInRank(r))
	}
	return orders
}

// Barycenter refines the input order with barycenter sweeps. The best
// ordering seen (fewest crossings, earliest on ties) is returned.
type Barycenter struct {
	Sweeps int
}

// OrderRanks implements [Orderer].
func (b Barycenter) OrderRanks(g *dag.DAG, ranks int) [][]string {
	orders := InputOrder{}.OrderRanks(g, ranks)
	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, orders)

	sweeps := b.Sweeps
	if sweeps <= 0 {
		sweeps = DefaultSweeps
	}
	for i := 0; i < sweeps && bestCrossings > 0; i++ {
		if i%2 == 0 {
			for r := 1; r < ranks; r++ {
				orders[r] = byBarycenter(orders[r], orders, g.Parents)
			}
		} else {
			for r := ranks - 2; r >= 0; r-- {
				orders[r] = byBarycenter(orders[r], orders, g.Children)
			}
		}
		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = cloneOrders(orders), c
		}
	}
	return best
}

// byBarycenter stable-sorts rank by the mean position of each step's
// neighbours. Steps without neighbours keep their current position as key.
func byBarycenter(rank []string, orders [][]string, neighbours func(string) []string) []string {
	pos := make(map[string]int)
	for _, o := range orders {
		for i, id := range o {
			pos[id] = i
		}
	}

	keys := make(map[string]float64, len(rank))
	for i, id := range rank {
		ns := neighbours(id)
		if len(ns) == 0 {
			keys[id] = float64(i)
			continue
		}
		sum := 0
		for _, n := range ns {
			sum += pos[n]
		}
		keys[id] = float64(sum) / float64(len(ns))
	}

	out := slices.Clone(rank)
	slices.SortStableFunc(out, func(a, b string) int { return cmp.Compare(keys[a], keys[b]) })
	return out
}

func cloneOrders(orders [][]string) [][]string {
	out := make([][]string, len(orders))
	for i, o := range orders {
		out[i] = slices.Clone(o)
	}
	return out
}
