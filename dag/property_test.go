package dag_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/kbukum/capdag/dag"
	"github.com/kbukum/capdag/dag/testutil"
	"github.com/kbukum/capdag/errors"
)

// randomDAG draws an acyclic graph: edges only point from lower to higher
// index. Every node outputs 1 plus the sum of its int inputs.
func randomDAG(t *rapid.T) ([]*testutil.MockNode, [][]string) {
	n := rapid.IntRange(1, 12).Draw(t, "nodes")
	successors := make([][]string, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rapid.Bool().Draw(t, fmt.Sprintf("edge_%d_%d", i, j)) {
				successors[i] = append(successors[i], nodeID(j))
			}
		}
	}

	nodes := make([]*testutil.MockNode, n)
	for i := range nodes {
		nodes[i] = testutil.NewMockNodeFunc(nodeID(i), func(_ context.Context, in []any) (any, error) {
			total := 1
			for _, v := range in {
				total += v.(int)
			}
			return total, nil
		}, successors[i]...)
	}
	return nodes, successors
}

func nodeID(i int) string { return fmt.Sprintf("n%02d", i) }

func buildGraph(t *rapid.T, nodes []*testutil.MockNode, perm []int) *dag.Graph {
	b := testutil.NewGraphBuilder()
	for _, i := range perm {
		b.Add(nodes[i])
	}
	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func TestProperty_EveryNodeRunsOnceAfterPredecessors(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes, successors := randomDAG(t)
		perm := rapid.Permutation(indexes(len(nodes))).Draw(t, "registration")
		mode := rapid.SampledFrom(modes).Draw(t, "mode")
		g := buildGraph(t, nodes, perm)

		res, err := (&dag.Engine{Mode: mode, Workers: 3}).Process(context.Background(), g, nil)
		require.NoError(t, err)

		position := make(map[string]int, len(res.Order))
		for i, id := range res.Order {
			position[id] = i
		}
		require.Len(t, position, len(nodes))

		for i, node := range nodes {
			assert.Equal(t, 1, node.Calls(), "node %s", node.ID())
			assert.Len(t, node.Inputs()[0], g.InDegree(node.ID()), "fan-in of %s", node.ID())
			for _, s := range successors[i] {
				assert.Less(t, position[node.ID()], position[s])
			}
		}

		assert.ElementsMatch(t, g.EndNodeIDs(), keys(res.Outputs))
	})
}

func TestProperty_ModesAgree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes, _ := randomDAG(t)
		g := buildGraph(t, nodes, indexes(len(nodes)))

		seq, err := (&dag.Engine{Mode: dag.ModeSequential}).Process(context.Background(), g, nil)
		require.NoError(t, err)
		par, err := (&dag.Engine{Mode: dag.ModeParallel, Workers: 4}).Process(context.Background(), g, nil)
		require.NoError(t, err)

		assert.Equal(t, seq.Outputs, par.Outputs)
	})
}

func TestProperty_CycleRunsNothing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes, _ := randomDAG(t)
		n := len(nodes)
		from := rapid.IntRange(0, n-1).Draw(t, "from")
		to := rapid.IntRange(0, from).Draw(t, "to")

		// Close a loop between "to" and "from" (a self-loop when they are equal).
		nodes[from] = testutil.NewMockNode(nodeID(from), 0, nil, append(nodes[from].Successors(), nodeID(to))...)
		if to != from {
			nodes[to] = testutil.NewMockNode(nodeID(to), 0, nil, append(nodes[to].Successors(), nodeID(from))...)
		}

		g := buildGraph(t, nodes, indexes(n))
		mode := rapid.SampledFrom(modes).Draw(t, "mode")

		_, err := (&dag.Engine{Mode: mode}).Process(context.Background(), g, nil)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGraph), "got %v", err)
		for _, node := range nodes {
			assert.Zero(t, node.Calls())
		}
	})
}

func TestProperty_TopologicalOrderIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes, _ := randomDAG(t)
		g := buildGraph(t, nodes, indexes(len(nodes)))

		first, err := g.TopologicalOrder()
		require.NoError(t, err)
		second, err := g.TopologicalOrder()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
