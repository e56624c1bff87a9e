package dag

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/kbukum/capdag/errors"
)

// TopologicalOrder orders the registered nodes with Kahn's algorithm. The
// ready queue is seeded with zero in-degree nodes in registration order and
// drained FIFO, so the order is deterministic for a given graph. A cycle is
// reported as INVALID_GRAPH with the ids that could not be ordered.
func (g *Graph) TopologicalOrder() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.topologicalOrder()
}

func (g *Graph) topologicalOrder() ([]string, error) {
	remaining := make(map[string]int, len(g.order))
	var queue []string
	for _, id := range g.order {
		remaining[id] = g.inDegree[id]
		if remaining[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, s := range g.entries[id].successors {
			if _, ok := g.entries[s]; !ok {
				continue
			}
			remaining[s]--
			if remaining[s] == 0 {
				queue = append(queue, s)
			}
		}
	}

	if len(order) < len(g.order) {
		return nil, cycleError(order, g.order)
	}
	return order, nil
}

func cycleError(order, all []string) error {
	done := make(map[string]bool, len(order))
	for _, id := range order {
		done[id] = true
	}
	var unresolved []string
	for _, id := range all {
		if !done[id] {
			unresolved = append(unresolved, id)
		}
	}
	sort.Strings(unresolved)

	return errors.InvalidGraph(fmt.Sprintf("cycle detected, processed %d of %d nodes", len(order), len(all))).
		WithDetail("processed", len(order)).
		WithDetail("total", len(all)).
		WithDetail("unresolved", unresolved)
}

// Levels groups nodes by dependency depth: every node sits one level after
// the deepest of its predecessors. Nodes within a level do not depend on each
// other and keep registration order.
func (g *Graph) Levels() ([][]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	order, err := g.topologicalOrder()
	if err != nil {
		return nil, err
	}

	depth := make(map[string]int, len(order))
	maxDepth := 0
	for _, id := range order {
		for _, s := range g.entries[id].successors {
			if _, ok := g.entries[s]; ok && depth[s] < depth[id]+1 {
				depth[s] = depth[id] + 1
			}
		}
		if depth[id] > maxDepth {
			maxDepth = depth[id]
		}
	}

	if len(order) == 0 {
		return nil, nil
	}
	levels := make([][]string, maxDepth+1)
	for _, id := range g.order {
		levels[depth[id]] = append(levels[depth[id]], id)
	}
	return levels, nil
}

// Validate checks the graph structure: every declared successor must be
// registered, every edge whose producer has a concrete output type must feed
// a consumer that accepts it, and the graph must be acyclic. All failures
// are INVALID_GRAPH.
func (g *Graph) Validate() error {
	_, err := g.validate()
	return err
}

// validate runs the structural checks and returns the topological order.
func (g *Graph) validate() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, id := range g.order {
		e := g.entries[id]
		for _, s := range e.successors {
			succ, ok := g.entries[s]
			if !ok {
				return nil, errors.InvalidGraph(fmt.Sprintf("node %q declares unknown successor %q", id, s)).
					WithDetail("node", id).
					WithDetail("successor", s)
			}
			if !edgeCompatible(e.node.OutputType(), succ.expected) {
				return nil, errors.InvalidGraph(fmt.Sprintf(
					"node %q produces %s but successor %q expects %s",
					id, e.node.OutputType(), s, succ.expected,
				)).WithDetail("node", id).WithDetail("successor", s)
			}
		}
	}

	return g.topologicalOrder()
}

// edgeCompatible reports whether values of type out can feed a consumer
// expecting in. Interface-typed producers are checked per value at run time.
func edgeCompatible(out, in reflect.Type) bool {
	if out == nil || out.Kind() == reflect.Interface {
		return true
	}
	return out.AssignableTo(in)
}
